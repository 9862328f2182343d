package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/recera/synapse/internal/config"
	"github.com/recera/synapse/internal/store"
	"github.com/recera/synapse/pkg/graphview"
	"github.com/recera/synapse/pkg/svg"
)

// maxSettleTicks bounds --settle on graphs that never cool
const maxSettleTicks = 20000

type renderOptions struct {
	output        string
	ticks         int
	settle        bool
	fit           bool
	padding       float64
	seed          int64
	savePositions bool
	noCache       bool
}

func newRenderCommand() *cobra.Command {
	var opts renderOptions
	var width, height int
	var threshold float64

	cmd := &cobra.Command{
		Use:   "render [graph]",
		Short: "Lay out a graph and write an SVG snapshot",
		Long: `Runs the simulation headless for a fixed number of ticks (or until it cools)
and writes the rendered frame as SVG. Use -o - for stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("width") {
				cfg.View.Width = width
			}
			if cmd.Flags().Changed("height") {
				cfg.View.Height = height
			}
			if cmd.Flags().Changed("threshold") {
				cfg.View.Threshold = threshold
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if opts.ticks < 0 {
				return fmt.Errorf("--ticks must not be negative")
			}
			path, err := graphPath(cfg, args)
			if err != nil {
				return err
			}
			return runRender(cfg, path, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "graph.svg", "Output file")
	cmd.Flags().IntVar(&opts.ticks, "ticks", 300, "Simulation ticks to run")
	cmd.Flags().BoolVar(&opts.settle, "settle", false, "Tick until the simulation cools instead of a fixed count")
	cmd.Flags().BoolVar(&opts.fit, "fit", true, "Fit the graph to the surface before drawing")
	cmd.Flags().Float64Var(&opts.padding, "padding", 40, "Padding used by --fit")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Seed for initial placement (0 uses the clock)")
	cmd.Flags().BoolVar(&opts.savePositions, "save-positions", false, "Write settled positions back into the graph file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Do not reuse or store settled layouts")
	cmd.Flags().IntVar(&width, "width", 1200, "Surface width")
	cmd.Flags().IntVar(&height, "height", 800, "Surface height")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Hide connections weaker than this")

	return cmd
}

func runRender(cfg *config.Config, path string, opts renderOptions) error {
	_, nodes, conns, err := loadGraph(path)
	if err != nil {
		return err
	}
	layouts := openCache(opts.noCache)
	restored := restoreLayout(layouts, nodes, conns)

	w, h := float64(cfg.View.Width), float64(cfg.View.Height)
	view := graphview.NewSession(nodes, conns, sessionOptions(cfg, w, h, opts.seed))

	start := time.Now()
	ticks := simulate(view, opts)
	elapsed := time.Since(start)

	if opts.fit {
		view.FitGraph(opts.padding)
	}
	surface := svg.New(w, h, view.Renderer().Palette().Background)
	view.Draw(surface)

	if err := writeOutput(opts.output, surface); err != nil {
		return err
	}
	storeLayout(layouts, view.Nodes(), view.Connections())

	if opts.savePositions {
		if err := store.Save(path, store.FromView(view.Nodes(), view.Connections())); err != nil {
			return fmt.Errorf("failed to save positions: %w", err)
		}
	}

	// stdout carries the SVG itself
	if opts.output == "-" {
		return nil
	}
	fmt.Printf("%s %s\n", Good.Sprint("wrote"), opts.output)
	rows := [][2]string{
		{"nodes", fmt.Sprint(len(view.Nodes()))},
		{"connections", fmt.Sprint(len(view.Connections()))},
		{"ticks", fmt.Sprintf("%d in %s", ticks, elapsed.Round(time.Millisecond))},
		{"alpha", fmt.Sprintf("%.3f", view.Engine().Alpha())},
		{"zoom", fmt.Sprintf("%.2f", view.Controller().Camera().Zoom)},
	}
	if restored > 0 {
		rows = append(rows, [2]string{"cached", fmt.Sprintf("%d positions", restored)})
	}
	if opts.savePositions {
		rows = append(rows, [2]string{"saved", path})
	}
	table(rows)
	return nil
}

// simulate advances the view and returns the number of ticks run
func simulate(view *graphview.Session, opts renderOptions) int {
	if !opts.settle {
		for i := 0; i < opts.ticks; i++ {
			view.Tick()
		}
		return opts.ticks
	}
	floor := view.Engine().Config().MinAlpha
	n := 0
	for n < maxSettleTicks {
		view.Tick()
		n++
		if view.Engine().Alpha() <= floor {
			break
		}
	}
	return n
}

func writeOutput(path string, surface *svg.Surface) error {
	var out io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}
	if _, err := surface.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write svg: %w", err)
	}
	return nil
}
