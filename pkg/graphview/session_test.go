package graphview

import (
	"math/rand"
	"testing"
)

func newTestSession() *Session {
	nodes := []*Node{
		NewPlacedNode("a", "Attention", 0, 0),
		NewPlacedNode("b", "Backprop", 120, 0),
		NewNode("c", "Curriculum"),
	}
	conns := []Connection{
		{Source: "a", Target: "b", Strength: 0.9},
		{Source: "b", Target: "c", Strength: 0.4, Surprising: true},
	}
	return NewSession(nodes, conns, Options{
		Width:  800,
		Height: 600,
		Rand:   rand.New(rand.NewSource(3)),
	})
}

func TestSession_StepTicksThenDraws(t *testing.T) {
	s := newTestSession()
	dl := NewDisplayList()

	s.Step(dl)

	if s.Frames() != 1 {
		t.Errorf("Frames = %d, want 1", s.Frames())
	}
	if !s.Node("c").Placed() {
		t.Error("Tick should place new nodes before drawing")
	}
	// the freshly placed node is drawn in the same frame
	if got := len(dl.Filter(OpCircle)); got != 3 {
		t.Errorf("Expected 3 circles, got %d", got)
	}
	if got := len(dl.Filter(OpLine)); got != 2 {
		t.Errorf("Expected 2 lines, got %d", got)
	}
}

func TestSession_DragPinsNodeAcrossTicks(t *testing.T) {
	var updates int
	s := newTestSession()
	s.opts.OnNodePositionUpdate = func(string, float64, float64) { updates++ }

	s.PointerDown(Point{X: 400, Y: 300})
	s.PointerMove(Point{X: 450, Y: 330})
	for i := 0; i < 100; i++ {
		s.Tick()
		a := s.Node("a")
		if a.X != 50 || a.Y != 30 {
			t.Fatalf("Dragged node moved by simulation at tick %d: (%v, %v)", i, a.X, a.Y)
		}
	}
	if s.Selected() != "a" {
		t.Errorf("Selected = %q, want a", s.Selected())
	}
	if updates != 1 {
		t.Errorf("Host position callback fired %d times, want 1", updates)
	}

	s.PointerUp()
	s.Tick()
	if a := s.Node("a"); a.X == 50 && a.Y == 30 {
		t.Error("Released node should rejoin the simulation")
	}
}

func TestSession_MissClearsSelection(t *testing.T) {
	var last *Node
	called := false
	s := newTestSession()
	s.opts.OnNodeSelect = func(n *Node) { last, called = n, true }

	s.PointerDown(Point{X: 400, Y: 300})
	s.PointerUp()
	if s.Selected() != "a" || last == nil {
		t.Fatal("Expected a selected")
	}

	s.PointerDown(Point{X: 5, Y: 5})
	if s.Selected() != "" || last != nil || !called {
		t.Errorf("Miss should clear selection, got %q", s.Selected())
	}
}

func TestSession_AddNodesEnergizes(t *testing.T) {
	s := newTestSession()
	for i := 0; i < 1000; i++ {
		s.Tick()
	}
	before := s.Engine().Alpha()

	s.AddNodes(NewNode("d", "Dropout"))
	if s.Engine().Alpha() <= before {
		t.Error("Adding nodes should energize the simulation")
	}
	s.AddConnections(Connection{Source: "d", Target: "a", Strength: 1})
	s.Tick()
	if !s.Node("d").Placed() {
		t.Error("Added node should be placed on the next tick")
	}

	alpha := s.Engine().Alpha()
	s.AddNodes()
	if s.Engine().Alpha() != alpha {
		t.Error("Adding nothing should not energize")
	}
}

func TestSession_RemoveNode(t *testing.T) {
	s := newTestSession()
	s.PointerMove(Point{X: 520, Y: 300}) // hover b
	s.Select("b")

	if !s.RemoveNode("b") {
		t.Fatal("RemoveNode should report success")
	}
	if s.Node("b") != nil || len(s.Nodes()) != 2 {
		t.Error("Node b should be gone")
	}
	if len(s.Connections()) != 0 {
		t.Errorf("Connections touching b should be gone, got %v", s.Connections())
	}
	if s.Selected() != "" || s.Controller().Hovered() != "" {
		t.Error("Selection and hover should be cleared")
	}
	if s.RemoveNode("b") {
		t.Error("Second removal should report false")
	}
}

func TestSession_RemoveNodeLeavesCallerSlices(t *testing.T) {
	nodes := []*Node{NewPlacedNode("a", "A", 0, 0), NewPlacedNode("b", "B", 50, 0)}
	conns := []Connection{{Source: "a", Target: "b", Strength: 1}}
	s := NewSession(nodes, conns, Options{Width: 400, Height: 300})

	s.RemoveNode("a")

	if nodes[0] == nil || nodes[0].ID != "a" || nodes[1] == nil || nodes[1].ID != "b" {
		t.Errorf("Caller node slice was rewritten: %v", nodes)
	}
	if conns[0].Source != "a" {
		t.Errorf("Caller connection slice was rewritten: %v", conns)
	}
	if len(s.Nodes()) != 1 || s.Nodes()[0].ID != "b" {
		t.Errorf("Session should hold only b, got %v", s.Nodes())
	}
}

func TestSession_SetGraphDropsStaleReferences(t *testing.T) {
	s := newTestSession()
	s.Select("a")
	s.PointerMove(Point{X: 400, Y: 300})

	s.SetGraph([]*Node{NewPlacedNode("z", "Zero-shot", 0, 0)}, nil)
	if s.Selected() != "" || s.Controller().Hovered() != "" {
		t.Error("References to vanished nodes should be dropped")
	}
}

func TestSession_SearchAndThreshold(t *testing.T) {
	s := newTestSession()
	s.SetSearch("PROP")
	s.SetThreshold(0.5)
	s.Tick()

	f := s.Frame()
	if f.Search != "PROP" || f.Threshold != 0.5 {
		t.Errorf("Frame = %+v", f)
	}
	if got := len(VisibleConnections(f)); got != 1 {
		t.Errorf("Visible connections = %d, want 1", got)
	}
	if f.Highlight(s.Node("b")) != HighlightMatch {
		t.Error("Backprop should match PROP")
	}

	s.SetThreshold(7)
	if s.Threshold() != 1 {
		t.Errorf("Threshold should clamp to 1, got %v", s.Threshold())
	}
}

func TestSession_ViewControls(t *testing.T) {
	var api API = newTestSession()
	s := api.(*Session)

	api.ZoomIn()
	if !near(s.Controller().Camera().Zoom, 1.1, 1e-12) {
		t.Errorf("ZoomIn = %v", s.Controller().Camera().Zoom)
	}
	api.ZoomOut()
	api.ResetView()
	if s.Controller().Camera().Zoom != 1 {
		t.Error("ResetView should restore zoom")
	}
	if !api.FocusNode("b") {
		t.Error("FocusNode should find b")
	}
	api.FitGraph(20)
	api.ResetView()

	s.PointerDown(Point{X: 400, Y: 300})
	if _, ok := s.Controller().Popup(); !ok {
		t.Fatal("Expected popup after picking a")
	}
	api.ClosePopup()
	if _, ok := s.Controller().Popup(); ok {
		t.Error("ClosePopup should hide the popup")
	}

	if s.Wheel(-1, 0) {
		t.Error("Unmodified wheel must pass through the session")
	}
	s.Resize(1000, 500)
	if cam := s.Controller().Camera(); cam.Width != 1000 || cam.Height != 500 {
		t.Errorf("Resize = %+v", cam)
	}
}
