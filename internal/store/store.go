// Package store loads and saves concept graph documents for the synapse
// hosts. The graphview core never touches it.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/recera/synapse/pkg/graphview"
)

// ErrNotFound is returned when a graph file or node does not exist
var ErrNotFound = errors.New("not found")

// Graph is the on-disk concept graph document
type Graph struct {
	Nodes       []NodeDoc       `json:"nodes" yaml:"nodes"`
	Connections []ConnectionDoc `json:"connections,omitempty" yaml:"connections,omitempty"`
}

// NodeDoc is a stored concept. X and Y are optional; nodes without them are
// placed by the engine on the first tick.
type NodeDoc struct {
	ID      string         `json:"id,omitempty" yaml:"id,omitempty"`
	Label   string         `json:"label" yaml:"label"`
	X       *float64       `json:"x,omitempty" yaml:"x,omitempty"`
	Y       *float64       `json:"y,omitempty" yaml:"y,omitempty"`
	Payload map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// ConnectionDoc is a stored relationship
type ConnectionDoc struct {
	Source     string  `json:"source" yaml:"source"`
	Target     string  `json:"target" yaml:"target"`
	Strength   float64 `json:"strength" yaml:"strength"`
	Surprising bool    `json:"surprising,omitempty" yaml:"surprising,omitempty"`
	Reason     string  `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Load reads a graph document, choosing the format by extension. Nodes
// without an id are given one.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("graph %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read graph: %w", err)
	}
	g, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return g, nil
}

// Parse decodes a graph document. ext is ".json", ".yaml" or ".yml".
func Parse(data []byte, ext string) (*Graph, error) {
	var g Graph
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &g); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported graph format %q", ext)
	}
	g.assignIDs()
	return &g, nil
}

// Save writes a graph document, choosing the format by extension
func Save(path string, g *Graph) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(g, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(g)
	default:
		return fmt.Errorf("unsupported graph format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// assignIDs names id-less nodes from their label so the same document
// always yields the same ids. Repeated labels are told apart by occurrence.
func (g *Graph) assignIDs() {
	seen := make(map[string]int)
	for i := range g.Nodes {
		if g.Nodes[i].ID != "" {
			continue
		}
		label := g.Nodes[i].Label
		name := fmt.Sprintf("%s#%d", label, seen[label])
		seen[label]++
		g.Nodes[i].ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
	}
}

// Find returns the node with the given id
func (g *Graph) Find(id string) (*NodeDoc, error) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], nil
		}
	}
	return nil, fmt.Errorf("node %q: %w", id, ErrNotFound)
}

// View converts the document into fresh graphview nodes and connections
func (g *Graph) View() ([]*graphview.Node, []graphview.Connection) {
	nodes := make([]*graphview.Node, 0, len(g.Nodes))
	for _, d := range g.Nodes {
		var n *graphview.Node
		if d.X != nil && d.Y != nil {
			n = graphview.NewPlacedNode(d.ID, d.Label, *d.X, *d.Y)
		} else {
			n = graphview.NewNode(d.ID, d.Label)
		}
		n.Payload = d.Payload
		nodes = append(nodes, n)
	}
	conns := make([]graphview.Connection, 0, len(g.Connections))
	for _, c := range g.Connections {
		conns = append(conns, graphview.Connection{
			Source:     c.Source,
			Target:     c.Target,
			Strength:   c.Strength,
			Surprising: c.Surprising,
			Reason:     c.Reason,
		})
	}
	return nodes, conns
}

// FromView builds a document from a live node set, recording positions of
// placed nodes
func FromView(nodes []*graphview.Node, conns []graphview.Connection) *Graph {
	g := &Graph{}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		d := NodeDoc{ID: n.ID, Label: n.Label, Payload: n.Payload}
		if n.Placed() {
			x, y := n.X, n.Y
			d.X, d.Y = &x, &y
		}
		g.Nodes = append(g.Nodes, d)
	}
	for _, c := range conns {
		g.Connections = append(g.Connections, ConnectionDoc{
			Source:     c.Source,
			Target:     c.Target,
			Strength:   c.Strength,
			Surprising: c.Surprising,
			Reason:     c.Reason,
		})
	}
	return g
}

// Merge reconciles a reloaded node set with the live one. Nodes whose ids
// survive keep their live position and velocity; the rest come from next.
// added counts nodes that were not present before, so the caller can decide
// whether to energize.
func Merge(current, next []*graphview.Node) (merged []*graphview.Node, added int) {
	live := make(map[string]*graphview.Node, len(current))
	for _, n := range current {
		if n != nil {
			live[n.ID] = n
		}
	}
	merged = make([]*graphview.Node, 0, len(next))
	for _, n := range next {
		if n == nil {
			continue
		}
		old, ok := live[n.ID]
		if !ok {
			added++
			merged = append(merged, n)
			continue
		}
		old.Label = n.Label
		old.Payload = n.Payload
		merged = append(merged, old)
	}
	return merged, added
}

// Stats summarizes a document
type Stats struct {
	Nodes        int
	Placed       int
	Connections  int
	Surprising   int
	Dangling     int
	MeanStrength float64
}

// Stats computes document statistics. Dangling connections reference an id
// with no node.
func (g *Graph) Stats() Stats {
	s := Stats{Nodes: len(g.Nodes), Connections: len(g.Connections)}
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = true
		if n.X != nil && n.Y != nil {
			s.Placed++
		}
	}
	var total float64
	for _, c := range g.Connections {
		if c.Surprising {
			s.Surprising++
		}
		if !ids[c.Source] || !ids[c.Target] {
			s.Dangling++
		}
		total += c.Strength
	}
	if s.Connections > 0 {
		s.MeanStrength = total / float64(s.Connections)
	}
	return s
}
