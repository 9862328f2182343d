// Package graphview is the layout-and-interaction engine behind the concept
// graph: a force simulation that positions nodes, a renderer that draws them
// under a camera transform, and a controller that turns pointer input into
// simulation and camera mutations.
package graphview

import "strings"

// Node represents a graph node.
// The host owns the node; the engine only writes X, Y, VX and VY.
type Node struct {
	ID      string
	Label   string
	Payload map[string]any

	X  float64
	Y  float64
	VX float64
	VY float64

	placed bool
}

// NewNode creates an unplaced node. The engine assigns a position the first
// time it observes the node.
func NewNode(id, label string) *Node {
	return &Node{ID: id, Label: label}
}

// NewPlacedNode creates a node at a known world position
func NewPlacedNode(id, label string, x, y float64) *Node {
	return &Node{ID: id, Label: label, X: x, Y: y, placed: true}
}

// Placed reports whether the node has a defined position
func (n *Node) Placed() bool { return n.placed }

// Place sets the node position and marks it initialized
func (n *Node) Place(x, y float64) {
	n.X, n.Y = x, y
	n.placed = true
}

// Connection represents a weighted relationship between two nodes by ID
type Connection struct {
	Source     string
	Target     string
	Strength   float64 // [0,1]; spring force and opacity
	Surprising bool    // dashed accent stroke
	Reason     string
}

// Point is a 2D coordinate in either screen or world space
type Point struct {
	X float64
	Y float64
}

// Zoom bounds for the camera
const (
	MinZoom = 0.5
	MaxZoom = 3.0
)

// Camera holds the view transform. Pan is in screen pixels, size in
// device-independent pixels.
type Camera struct {
	Zoom   float64
	PanX   float64
	PanY   float64
	Width  float64
	Height float64
}

// DefaultCamera returns an identity camera for a surface of the given size
func DefaultCamera(width, height float64) Camera {
	return Camera{Zoom: 1, Width: width, Height: height}
}

// Center returns the surface center in screen space
func (c Camera) Center() Point {
	return Point{X: c.Width / 2, Y: c.Height / 2}
}

func clampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// PinSet is the set of node ids the simulation must not move
type PinSet map[string]struct{}

// Pins builds a PinSet from ids, ignoring empty ones
func Pins(ids ...string) PinSet {
	p := make(PinSet, len(ids))
	for _, id := range ids {
		if id != "" {
			p[id] = struct{}{}
		}
	}
	return p
}

// Has reports whether id is pinned
func (p PinSet) Has(id string) bool {
	_, ok := p[id]
	return ok
}

// MatchesSearch reports a case-insensitive substring match of query in label.
// An empty query matches nothing.
func MatchesSearch(label, query string) bool {
	if query == "" {
		return false
	}
	return strings.Contains(strings.ToLower(label), strings.ToLower(query))
}

// indexNodes maps node ids to their nodes for the current frame
func indexNodes(nodes []*Node) map[string]*Node {
	idx := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if _, dup := idx[n.ID]; !dup {
			idx[n.ID] = n
		}
	}
	return idx
}
