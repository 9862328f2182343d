package main

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/fatih/color"

	"github.com/recera/synapse/internal/cache"
	"github.com/recera/synapse/internal/config"
	"github.com/recera/synapse/internal/store"
	"github.com/recera/synapse/pkg/graphview"
)

// Persistent flags
var (
	configPath   string
	debugLogging bool
)

// Output colors
var (
	Brand  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

// loadConfig reads --config or the project config, falling back to defaults
// when nothing is found. Invalid files are errors.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load(".")
}

// graphPath picks the graph file from args or the config
func graphPath(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Graph != "" {
		return cfg.Graph, nil
	}
	return "", errors.New("no graph file given (pass one or set graph in synapse.yaml)")
}

// loadGraph loads the document and converts it into view nodes
func loadGraph(path string) (*store.Graph, []*graphview.Node, []graphview.Connection, error) {
	g, err := store.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	nodes, conns := g.View()
	return g, nodes, conns, nil
}

// sessionOptions builds graphview options from the config
func sessionOptions(cfg *config.Config, width, height float64, seed int64) graphview.Options {
	opts := graphview.Options{
		Physics:   cfg.EnginePhysics(),
		Palette:   cfg.Palette(),
		Width:     width,
		Height:    height,
		Threshold: cfg.View.Threshold,
	}
	if seed != 0 {
		opts.Rand = rand.New(rand.NewSource(seed))
	}
	return opts
}

// openCache opens the layout cache; failures only disable caching
func openCache(disabled bool) *cache.Cache {
	if disabled {
		return nil
	}
	c, err := cache.New(cache.DefaultConfig())
	if err != nil {
		log.Printf("layout cache disabled: %v", err)
		return nil
	}
	return c
}

// restoreLayout seeds unplaced nodes from a cached layout
func restoreLayout(c *cache.Cache, nodes []*graphview.Node, conns []graphview.Connection) int {
	if c == nil {
		return 0
	}
	layout, ok := c.Get(cache.Key(nodes, conns))
	if !ok {
		return 0
	}
	var unplaced []*graphview.Node
	for _, n := range nodes {
		if n != nil && !n.Placed() {
			unplaced = append(unplaced, n)
		}
	}
	return layout.Apply(unplaced)
}

// storeLayout saves the current positions for the next run
func storeLayout(c *cache.Cache, nodes []*graphview.Node, conns []graphview.Connection) {
	if c == nil {
		return
	}
	if err := c.Put(cache.Key(nodes, conns), cache.Snapshot(nodes)); err != nil {
		log.Printf("failed to cache layout: %v", err)
	}
}

// table prints an aligned two-column listing
func table(rows [][2]string) {
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	for _, r := range rows {
		fmt.Printf("  %s  %s\n", Subtle.Sprint(r[0]+strings.Repeat(" ", width-len(r[0]))), r[1])
	}
}
