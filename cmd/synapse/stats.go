package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/recera/synapse/internal/store"
)

func newStatsCommand() *cobra.Command {
	var nodeID string

	cmd := &cobra.Command{
		Use:   "stats [graph]",
		Short: "Summarize a graph document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path, err := graphPath(cfg, args)
			if err != nil {
				return err
			}
			g, err := store.Load(path)
			if err != nil {
				return err
			}
			if nodeID != "" {
				return printNode(g, nodeID)
			}
			printStats(path, g)
			return nil
		},
	}

	cmd.Flags().StringVar(&nodeID, "node", "", "Show one node and its connections")

	return cmd
}

func printStats(path string, g *store.Graph) {
	s := g.Stats()
	fmt.Println(Brand.Sprint(path))
	table([][2]string{
		{"nodes", fmt.Sprint(s.Nodes)},
		{"placed", fmt.Sprintf("%d/%d", s.Placed, s.Nodes)},
		{"connections", fmt.Sprint(s.Connections)},
		{"surprising", fmt.Sprint(s.Surprising)},
		{"mean strength", fmt.Sprintf("%.2f", s.MeanStrength)},
	})
	if s.Dangling > 0 {
		fmt.Println(Warn.Sprintf("  %d connections reference missing nodes", s.Dangling))
	}
}

func printNode(g *store.Graph, id string) error {
	n, err := g.Find(id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no node %q in this graph", id)
	}
	if err != nil {
		return err
	}

	fmt.Println(Brand.Sprint(n.Label))
	rows := [][2]string{{"id", n.ID}}
	if n.X != nil && n.Y != nil {
		rows = append(rows, [2]string{"position", fmt.Sprintf("%.1f, %.1f", *n.X, *n.Y)})
	} else {
		rows = append(rows, [2]string{"position", "unplaced"})
	}
	keys := make([]string, 0, len(n.Payload))
	for k := range n.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, [2]string{k, fmt.Sprint(n.Payload[k])})
	}
	table(rows)

	var links []store.ConnectionDoc
	for _, c := range g.Connections {
		if c.Source == id || c.Target == id {
			links = append(links, c)
		}
	}
	if len(links) == 0 {
		fmt.Println(Subtle.Sprint("  no connections"))
		return nil
	}
	sort.SliceStable(links, func(i, j int) bool { return links[i].Strength > links[j].Strength })

	fmt.Println()
	for _, c := range links {
		other := c.Target
		if other == id {
			other = c.Source
		}
		label := other
		if o, err := g.Find(other); err == nil {
			label = o.Label
		}
		line := fmt.Sprintf("  %.2f  %s", c.Strength, label)
		if c.Surprising {
			line = Warn.Sprint(line + " *")
		}
		if c.Reason != "" {
			line += Subtle.Sprint("  " + c.Reason)
		}
		fmt.Println(line)
	}
	return nil
}
