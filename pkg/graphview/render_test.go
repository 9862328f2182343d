package graphview

import (
	"reflect"
	"testing"
)

func testFrame() Frame {
	return Frame{
		Nodes: []*Node{
			NewPlacedNode("go", "Golang", 0, 0),
			NewPlacedNode("rust", "Rust", 100, 0),
			NewPlacedNode("zig", "Zig", 0, 100),
		},
		Connections: []Connection{
			{Source: "go", Target: "rust", Strength: 0.8},
			{Source: "go", Target: "zig", Strength: 0.3, Surprising: true},
		},
		Camera: DefaultCamera(800, 600),
	}
}

func draw(f Frame) *DisplayList {
	dl := NewDisplayList()
	NewRenderer(Palette{}).Draw(dl, f)
	return dl
}

func TestRenderer_OperationOrder(t *testing.T) {
	f := testFrame()
	f.Camera.PanX, f.Camera.PanY, f.Camera.Zoom = 15, -5, 2
	f.Hovered = "go"
	dl := draw(f)

	kinds := make([]OpKind, 0, len(dl.Ops))
	for _, op := range dl.Ops {
		kinds = append(kinds, op.Kind)
	}
	want := []OpKind{
		OpClear, OpSave, OpTranslate, OpScale,
		OpLine, OpLine,
		OpCircle, OpCircle, OpCircle,
		OpText, OpText, OpText,
		OpRestore,
	}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("Op order = %v, want %v", kinds, want)
	}

	tr := dl.Ops[2]
	if tr.X != 400+15 || tr.Y != 300-5 {
		t.Errorf("Translate = (%v, %v), want center+pan", tr.X, tr.Y)
	}
	if dl.Ops[3].X != 2 {
		t.Errorf("Scale = %v, want zoom", dl.Ops[3].X)
	}
}

func TestRenderer_ThresholdIsInclusive(t *testing.T) {
	f := testFrame()

	f.Threshold = 0.3
	if got := len(draw(f).Filter(OpLine)); got != 2 {
		t.Errorf("Strength == threshold should render: got %d lines", got)
	}
	if got := len(VisibleConnections(f)); got != 2 {
		t.Errorf("VisibleConnections = %d, want 2", got)
	}

	f.Threshold = 0.31
	lines := draw(f).Filter(OpLine)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line above threshold, got %d", len(lines))
	}
	if lines[0].X2 != 100 {
		t.Errorf("Wrong connection survived the filter: %+v", lines[0])
	}

	f.Threshold = 1.5
	if got := len(draw(f).Filter(OpLine)); got != 0 {
		t.Errorf("Out-of-range threshold should hide everything, got %d", got)
	}
}

func TestRenderer_ConnectionStyles(t *testing.T) {
	p := DefaultPalette()
	lines := draw(testFrame()).Filter(OpLine)

	plain, surprising := lines[0].Stroke, lines[1].Stroke
	if plain.Color != p.Connection || plain.Width != 1 || plain.Dash != nil || plain.Opacity != 0.8 {
		t.Errorf("Plain stroke = %+v", *plain)
	}
	if surprising.Color != p.Surprising || surprising.Width != 2 || len(surprising.Dash) == 0 || surprising.Opacity != 0.3 {
		t.Errorf("Surprising stroke = %+v", *surprising)
	}
}

func TestRenderer_SkipsStaleReferences(t *testing.T) {
	f := testFrame()
	f.Connections = append(f.Connections, Connection{Source: "go", Target: "gone", Strength: 1})
	f.Nodes = append(f.Nodes, nil, NewNode("unplaced", "Unplaced"))
	f.Hovered = "gone"
	f.Selected = "missing"

	dl := draw(f)
	if got := len(dl.Filter(OpLine)); got != 2 {
		t.Errorf("Dangling connection should be skipped, got %d lines", got)
	}
	if got := len(dl.Filter(OpCircle)); got != 3 {
		t.Errorf("Nil and unplaced nodes should be skipped, got %d circles", got)
	}
}

func TestRenderer_FillPrecedence(t *testing.T) {
	p := DefaultPalette()
	tests := []struct {
		name     string
		hovered  string
		selected string
		search   string
		want     string
		radius   float64
		outlined bool
	}{
		{"default", "", "", "", p.Node, NodeRadius, false},
		{"hovered", "go", "", "", p.Hovered, HoveredNodeRadius, true},
		{"selected", "", "go", "", p.Selected, NodeRadius, true},
		{"selected beats hovered", "go", "go", "", p.Selected, HoveredNodeRadius, true},
		{"match beats selected", "", "go", "lang", p.Match, NodeRadius, true},
		{"match beats all", "go", "go", "GOLANG", p.Match, HoveredNodeRadius, true},
		{"match alone", "", "", "gol", p.Match, NodeRadius, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testFrame()
			f.Hovered, f.Selected, f.Search = tt.hovered, tt.selected, tt.search
			c := draw(f).Filter(OpCircle)[0]
			if c.Fill != tt.want {
				t.Errorf("Fill = %s, want %s", c.Fill, tt.want)
			}
			if c.R != tt.radius {
				t.Errorf("Radius = %v, want %v", c.R, tt.radius)
			}
			if (c.Stroke != nil) != tt.outlined {
				t.Errorf("Outline = %v, want %v", c.Stroke != nil, tt.outlined)
			}
			if c.Stroke != nil && c.Stroke.Width != OutlineWidth {
				t.Errorf("Outline width = %v", c.Stroke.Width)
			}
		})
	}
}

func TestRenderer_LabelVisibility(t *testing.T) {
	f := testFrame()
	if got := len(draw(f).Filter(OpText)); got != 0 {
		t.Errorf("No labels expected at default zoom, got %d", got)
	}

	f.Hovered = "rust"
	f.Selected = "zig"
	f.Search = "gol"
	texts := draw(f).Filter(OpText)
	if len(texts) != 3 {
		t.Fatalf("Expected 3 labels, got %d", len(texts))
	}
	for _, tx := range texts {
		if tx.Text == "Rust" && tx.Y >= 0 {
			t.Errorf("Label should sit above the node, got y=%v", tx.Y)
		}
	}

	f = testFrame()
	f.Camera.Zoom = 1.5
	if got := len(draw(f).Filter(OpText)); got != 0 {
		t.Errorf("Zoom of exactly 1.5 should not show labels, got %d", got)
	}
	f.Camera.Zoom = 1.51
	if got := len(draw(f).Filter(OpText)); got != 3 {
		t.Errorf("Zoom above 1.5 should show every label, got %d", got)
	}
}

func TestRenderer_DoesNotMutateInputs(t *testing.T) {
	f := testFrame()
	f.Nodes[0].VX = 1.5
	before := make([]Node, len(f.Nodes))
	for i, n := range f.Nodes {
		before[i] = *n
	}
	conns := append([]Connection(nil), f.Connections...)

	draw(f)

	for i, n := range f.Nodes {
		if !reflect.DeepEqual(*n, before[i]) {
			t.Errorf("Node %d mutated: %+v -> %+v", i, before[i], *n)
		}
	}
	if !reflect.DeepEqual(conns, f.Connections) {
		t.Error("Connections mutated")
	}
}

func TestDisplayList_Replay(t *testing.T) {
	f := testFrame()
	f.Selected = "rust"
	src := draw(f)

	dst := NewDisplayList()
	src.Replay(dst)
	if !reflect.DeepEqual(src.Ops, dst.Ops) {
		t.Error("Replay should reproduce the same operations")
	}

	src.Reset()
	if len(src.Ops) != 0 {
		t.Error("Reset should drop operations")
	}
}

func TestTransformStack(t *testing.T) {
	ts := NewTransformStack()
	ts.Save()
	ts.Translate(400, 300)
	ts.Scale(2)
	x, y := ts.Current().Apply(10, -10)
	if x != 420 || y != 280 {
		t.Errorf("Apply = (%v, %v), want (420, 280)", x, y)
	}
	ts.Restore()
	if ts.Current() != Identity() {
		t.Error("Restore should return to identity")
	}
	ts.Restore() // unbalanced, ignored
}
