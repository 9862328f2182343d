package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/recera/synapse/internal/cache"
	"github.com/recera/synapse/internal/config"
	"github.com/recera/synapse/internal/metrics"
	"github.com/recera/synapse/internal/store"
	"github.com/recera/synapse/pkg/graphview"
	"github.com/recera/synapse/pkg/live"
)

func newServeCommand() *cobra.Command {
	var host string
	var port int
	var seed int64
	var noWatch bool
	var noMetrics bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve [graph]",
		Short: "Serve the graph to browsers",
		Long: `Starts an HTTP server with a canvas client. Every browser tab gets its own
simulation driven over a websocket; edits to the graph file are pushed live.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Serve.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Serve.Port = port
			}
			if noWatch {
				cfg.Serve.Watch = false
			}
			if noMetrics {
				cfg.Serve.Metrics = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			path, err := graphPath(cfg, args)
			if err != nil {
				return err
			}
			return runServe(cfg, path, seed, noCache)
		},
	}

	cmd.Flags().StringVar(&host, "host", "localhost", "Server host")
	cmd.Flags().IntVarP(&port, "port", "p", 7070, "Server port")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for initial placement (0 uses the clock)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not push graph file changes to clients")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "Do not expose /metrics")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Do not seed sessions from cached layouts")

	return cmd
}

// graphState holds the latest document for new sessions
type graphState struct {
	mu     sync.RWMutex
	graph  *store.Graph
	layout cache.Layout
}

func (s *graphState) set(g *store.Graph) {
	s.mu.Lock()
	s.graph = g
	s.mu.Unlock()
}

// source hands every session its own copy of the graph
func (s *graphState) source() ([]*graphview.Node, []graphview.Connection) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes, conns := s.graph.View()
	if s.layout != nil {
		var unplaced []*graphview.Node
		for _, n := range nodes {
			if !n.Placed() {
				unplaced = append(unplaced, n)
			}
		}
		s.layout.Apply(unplaced)
	}
	return nodes, conns
}

func runServe(cfg *config.Config, path string, seed int64, noCache bool) error {
	g, err := store.Load(path)
	if err != nil {
		return err
	}
	state := &graphState{graph: g}
	if layouts := openCache(noCache); layouts != nil {
		nodes, conns := g.View()
		if layout, ok := layouts.Get(cache.Key(nodes, conns)); ok {
			state.layout = layout
			log.Printf("[Serve] seeding sessions from a cached layout (%d nodes)", len(layout))
		}
	}

	reg := metrics.DefaultRegistry()
	srv := live.NewServer(live.Options{
		Graph:    state.source,
		View:     sessionOptions(cfg, float64(cfg.View.Width), float64(cfg.View.Height), seed),
		Interval: frameInterval(cfg.View.FPS),
		Recorder: reg,
	})

	mux := http.NewServeMux()
	if cfg.Serve.Metrics {
		mux.Handle("/metrics", reg.Handler())
	}
	mux.Handle("/", srv.Handler())

	if cfg.Serve.Watch {
		w, err := store.NewWatcher(path, func(g *store.Graph) {
			state.set(g)
			n := srv.Broadcast(func(view *graphview.Session) {
				nodes, conns := g.View()
				merged, added := store.Merge(view.Nodes(), nodes)
				view.SetGraph(merged, conns)
				if added > 0 {
					view.Engine().Energize()
				}
			})
			log.Printf("[Serve] %s changed, updated %d sessions", path, n)
		})
		if err != nil {
			log.Printf("[Serve] not watching %s: %v", path, err)
		} else {
			go w.Run()
			defer w.Close()
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Serve.Host, cfg.Serve.Port)
	fmt.Printf("%s %s at %s\n", Brand.Sprint("synapse"), path, Good.Sprintf("http://%s", addr))
	if cfg.Serve.Metrics {
		fmt.Println(Subtle.Sprintf("metrics at http://%s/metrics", addr))
	}

	httpSrv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("[Serve] shutting down...")
		srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(ctx)
	}()

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// frameInterval converts frames per second into a loop interval
func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Second / time.Duration(fps)
}
