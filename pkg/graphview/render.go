package graphview

// Node geometry in world units
const (
	NodeRadius        = 10.0
	HoveredNodeRadius = 12.0
	OutlineWidth      = 2.0
	LabelZoomLevel    = 1.5
	labelOffset       = 6.0
	labelSize         = 12.0
)

// Palette holds render colors
type Palette struct {
	Background string // default "#0b0e14"
	Node       string // default "#6ea8fe"
	Hovered    string // default "#9ad0ff"
	Selected   string // default "#ffcf33"
	Match      string // default "#22c55e"
	Outline    string // default "#ffffff"
	Connection string // default "#94a3b8"
	Surprising string // default "#f97316"
	Label      string // default "#eaeef3"
}

// DefaultPalette returns the dark-theme colors
func DefaultPalette() Palette {
	return Palette{
		Background: "#0b0e14",
		Node:       "#6ea8fe",
		Hovered:    "#9ad0ff",
		Selected:   "#ffcf33",
		Match:      "#22c55e",
		Outline:    "#ffffff",
		Connection: "#94a3b8",
		Surprising: "#f97316",
		Label:      "#eaeef3",
	}
}

func (p Palette) withDefaults() Palette {
	d := DefaultPalette()
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&d.Background, p.Background)
	set(&d.Node, p.Node)
	set(&d.Hovered, p.Hovered)
	set(&d.Selected, p.Selected)
	set(&d.Match, p.Match)
	set(&d.Outline, p.Outline)
	set(&d.Connection, p.Connection)
	set(&d.Surprising, p.Surprising)
	set(&d.Label, p.Label)
	return d
}

// surprisingDash is the dash pattern for surprising connections
var surprisingDash = []float64{5, 5}

// Frame is everything the renderer reads to produce one picture
type Frame struct {
	Nodes       []*Node
	Connections []Connection
	Camera      Camera
	Hovered     string
	Selected    string
	Search      string
	Threshold   float64 // minimum strength drawn, inclusive
}

// NodeHighlight is the single fill category applied to a node
type NodeHighlight int

const (
	HighlightNone NodeHighlight = iota
	HighlightHovered
	HighlightSelected
	HighlightMatch
)

// Highlight resolves the fill category for n.
// Precedence: search match > selected > hovered > default.
func (f Frame) Highlight(n *Node) NodeHighlight {
	switch {
	case MatchesSearch(n.Label, f.Search):
		return HighlightMatch
	case f.Selected != "" && n.ID == f.Selected:
		return HighlightSelected
	case f.Hovered != "" && n.ID == f.Hovered:
		return HighlightHovered
	}
	return HighlightNone
}

// Renderer draws frames. It holds only styling and never mutates its inputs.
type Renderer struct {
	palette Palette
}

// NewRenderer creates a renderer; zero palette fields take defaults
func NewRenderer(p Palette) *Renderer {
	return &Renderer{palette: p.withDefaults()}
}

// Palette returns the effective colors
func (r *Renderer) Palette() Palette { return r.palette }

// Draw paints connections, then nodes, then labels under the camera transform
func (r *Renderer) Draw(s Surface, f Frame) {
	cam := f.Camera
	zoom := cam.Zoom
	if zoom == 0 {
		zoom = 1
	}
	idx := indexNodes(f.Nodes)

	s.Clear(cam.Width, cam.Height)
	s.Save()
	c := cam.Center()
	s.Translate(c.X+cam.PanX, c.Y+cam.PanY)
	s.Scale(zoom)

	for _, conn := range f.Connections {
		if conn.Strength < f.Threshold {
			continue
		}
		a, ok := idx[conn.Source]
		if !ok || !a.placed {
			continue
		}
		b, ok := idx[conn.Target]
		if !ok || !b.placed {
			continue
		}
		s.Line(a.X, a.Y, b.X, b.Y, r.connectionStroke(conn))
	}

	type label struct {
		x, y float64
		text string
	}
	var labels []label
	for _, n := range f.Nodes {
		if n == nil || !n.placed {
			continue
		}
		hl := f.Highlight(n)
		hovered := f.Hovered != "" && n.ID == f.Hovered
		selected := f.Selected != "" && n.ID == f.Selected

		radius := NodeRadius
		if hovered {
			radius = HoveredNodeRadius
		}
		var outline *Stroke
		if hovered || selected {
			outline = &Stroke{Color: r.palette.Outline, Width: OutlineWidth, Opacity: 1}
		}
		s.Circle(n.X, n.Y, radius, r.fill(hl), outline)

		if hovered || selected || hl == HighlightMatch || zoom > LabelZoomLevel {
			labels = append(labels, label{x: n.X, y: n.Y - radius - labelOffset, text: n.Label})
		}
	}
	for _, l := range labels {
		s.Text(l.x, l.y, l.text, TextStyle{Color: r.palette.Label, Size: labelSize})
	}

	s.Restore()
}

func (r *Renderer) fill(hl NodeHighlight) string {
	switch hl {
	case HighlightMatch:
		return r.palette.Match
	case HighlightSelected:
		return r.palette.Selected
	case HighlightHovered:
		return r.palette.Hovered
	}
	return r.palette.Node
}

func (r *Renderer) connectionStroke(c Connection) Stroke {
	if c.Surprising {
		return Stroke{
			Color:   r.palette.Surprising,
			Width:   2,
			Opacity: clamp01(c.Strength),
			Dash:    surprisingDash,
		}
	}
	return Stroke{Color: r.palette.Connection, Width: 1, Opacity: clamp01(c.Strength)}
}

// VisibleConnections returns the connections Draw would paint for f
func VisibleConnections(f Frame) []Connection {
	idx := indexNodes(f.Nodes)
	var out []Connection
	for _, c := range f.Connections {
		if c.Strength < f.Threshold {
			continue
		}
		a, okA := idx[c.Source]
		b, okB := idx[c.Target]
		if !okA || !okB || !a.placed || !b.placed {
			continue
		}
		out = append(out, c)
	}
	return out
}
