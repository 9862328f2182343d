package main

import (
	"fmt"
	"io"
	"log"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/recera/synapse/internal/config"
	"github.com/recera/synapse/internal/store"
	"github.com/recera/synapse/internal/tui"
	"github.com/recera/synapse/pkg/debug"
	"github.com/recera/synapse/pkg/graphview"
)

func newViewCommand() *cobra.Command {
	var fps int
	var threshold float64
	var seed int64
	var noWatch bool
	var noCache bool
	var logFile string

	cmd := &cobra.Command{
		Use:   "view [graph]",
		Short: "Explore a graph in the terminal",
		Long: `Opens an interactive terminal view. Drag nodes with the mouse, ctrl+wheel
to zoom, / to search, f to fit, r to reset, +/- to filter weak connections.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("fps") {
				cfg.View.FPS = fps
			}
			if cmd.Flags().Changed("threshold") {
				cfg.View.Threshold = threshold
			}
			if noWatch {
				cfg.Serve.Watch = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			path, err := graphPath(cfg, args)
			if err != nil {
				return err
			}
			return runView(cfg, path, seed, noCache, logFile)
		},
	}

	cmd.Flags().IntVar(&fps, "fps", 30, "Frames per second")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Hide connections weaker than this")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for initial placement (0 uses the clock)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload the graph when the file changes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Do not reuse or store settled layouts")
	cmd.Flags().StringVar(&logFile, "log", "", "Write logs to this file")

	return cmd
}

func runView(cfg *config.Config, path string, seed int64, noCache bool, logFile string) error {
	_, nodes, conns, err := loadGraph(path)
	if err != nil {
		return err
	}

	// the alternate screen owns the terminal; logs go to a file or nowhere
	if logFile != "" {
		f, err := tea.LogToFile(logFile, "synapse")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		if debugLogging {
			debug.EnableLogging(f)
		}
	} else {
		log.SetOutput(io.Discard)
		debug.DisableLogging()
	}

	layouts := openCache(noCache)
	if n := restoreLayout(layouts, nodes, conns); n > 0 {
		log.Printf("[View] restored %d cached positions", n)
	}

	view := graphview.NewSession(nodes, conns, sessionOptions(cfg, float64(cfg.View.Width), float64(cfg.View.Height), seed))
	p := tui.NewProgram(tui.NewModel(view, tui.Options{
		Title: filepath.Base(path),
		FPS:   cfg.View.FPS,
	}))

	if cfg.Serve.Watch {
		w, err := store.NewWatcher(path, func(g *store.Graph) {
			nodes, conns := g.View()
			p.Send(tui.ReloadMsg{Nodes: nodes, Connections: conns})
		})
		if err != nil {
			log.Printf("[View] not watching %s: %v", path, err)
		} else {
			w.OnError = func(err error) { p.Send(tui.ErrorMsg{Err: err}) }
			go w.Run()
			defer w.Close()
		}
	}

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(tui.Model); ok {
		s := m.Session()
		storeLayout(layouts, s.Nodes(), s.Connections())
	}
	return nil
}
