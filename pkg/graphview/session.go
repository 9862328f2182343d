package graphview

import "math/rand"

// Options configures a Session
type Options struct {
	Physics PhysicsConfig
	Palette Palette

	Width     float64
	Height    float64
	Threshold float64 // initial strength filter

	// Rand seeds initial placement; nil uses the clock
	Rand *rand.Rand

	// Host notifications, all optional
	OnNodeSelect         func(n *Node)
	OnNodeActivate       func(n *Node)
	OnNodePositionUpdate func(id string, x, y float64)
	OnViewportChange     func(cam Camera)
}

// Session is one visualization: a node/connection set, an engine, a
// controller and a renderer. It is not safe for concurrent use; confine it
// to a single goroutine (see scheduler.Loop).
type Session struct {
	engine   *Engine
	ctrl     *Controller
	renderer *Renderer

	nodes []*Node
	conns []Connection

	selected  string
	search    string
	threshold float64

	opts   Options
	frames uint64
}

// NewSession creates a session over nodes and conns. The slices are adopted,
// not copied.
func NewSession(nodes []*Node, conns []Connection, opts Options) *Session {
	s := &Session{
		engine:    NewEngine(opts.Physics, opts.Rand),
		renderer:  NewRenderer(opts.Palette),
		nodes:     nodes,
		conns:     conns,
		threshold: clamp01(opts.Threshold),
		opts:      opts,
	}
	s.ctrl = NewController(opts.Width, opts.Height, Callbacks{
		OnNodeSelect:         s.handleSelect,
		OnNodePositionUpdate: s.handlePosition,
		OnNodeActivate:       opts.OnNodeActivate,
		OnViewportChange:     opts.OnViewportChange,
	})
	return s
}

func (s *Session) handleSelect(n *Node) {
	if n == nil {
		s.selected = ""
	} else {
		s.selected = n.ID
	}
	if s.opts.OnNodeSelect != nil {
		s.opts.OnNodeSelect(n)
	}
}

func (s *Session) handlePosition(id string, x, y float64) {
	if n := s.Node(id); n != nil {
		n.Place(x, y)
		n.VX, n.VY = 0, 0
	}
	if s.opts.OnNodePositionUpdate != nil {
		s.opts.OnNodePositionUpdate(id, x, y)
	}
}

// Step runs exactly one simulation tick followed by one render pass
func (s *Session) Step(surface Surface) {
	s.Tick()
	s.Draw(surface)
}

// Tick advances the simulation once, respecting the dragged node
func (s *Session) Tick() {
	s.engine.Tick(s.nodes, s.conns, s.ctrl.Pinned(), s.ctrl.Camera())
	s.frames++
}

// Draw renders the current state without advancing it
func (s *Session) Draw(surface Surface) {
	if surface == nil {
		return
	}
	s.renderer.Draw(surface, s.Frame())
}

// Frame snapshots the renderer inputs
func (s *Session) Frame() Frame {
	return Frame{
		Nodes:       s.nodes,
		Connections: s.conns,
		Camera:      s.ctrl.Camera(),
		Hovered:     s.ctrl.Hovered(),
		Selected:    s.selected,
		Search:      s.search,
		Threshold:   s.threshold,
	}
}

// Frames returns the number of ticks run so far
func (s *Session) Frames() uint64 { return s.frames }

func (s *Session) Engine() *Engine         { return s.engine }
func (s *Session) Controller() *Controller { return s.ctrl }
func (s *Session) Renderer() *Renderer     { return s.renderer }
func (s *Session) Nodes() []*Node          { return s.nodes }
func (s *Session) Connections() []Connection {
	return s.conns
}

// Node looks up a node by id
func (s *Session) Node(id string) *Node {
	for _, n := range s.nodes {
		if n != nil && n.ID == id {
			return n
		}
	}
	return nil
}

// SetGraph replaces the node and connection sets. Energize is the caller's
// decision; see AddNodes.
func (s *Session) SetGraph(nodes []*Node, conns []Connection) {
	s.nodes = nodes
	s.conns = conns
	if s.selected != "" && s.Node(s.selected) == nil {
		s.selected = ""
	}
	for _, id := range []string{s.ctrl.Hovered(), s.ctrl.Dragged()} {
		if id != "" && s.Node(id) == nil {
			s.ctrl.Forget(id)
		}
	}
}

// AddNodes appends nodes and energizes the simulation
func (s *Session) AddNodes(nodes ...*Node) {
	if len(nodes) == 0 {
		return
	}
	s.nodes = append(s.nodes, nodes...)
	s.engine.Energize()
}

// AddConnections appends connections
func (s *Session) AddConnections(conns ...Connection) {
	s.conns = append(s.conns, conns...)
}

// RemoveNode drops a node and every connection touching it. The session
// switches to new slices; the caller's arrays are left untouched.
func (s *Session) RemoveNode(id string) bool {
	if s.Node(id) == nil {
		return false
	}
	kept := make([]*Node, 0, len(s.nodes)-1)
	for _, n := range s.nodes {
		if n != nil && n.ID == id {
			continue
		}
		kept = append(kept, n)
	}
	s.nodes = kept

	conns := make([]Connection, 0, len(s.conns))
	for _, c := range s.conns {
		if c.Source != id && c.Target != id {
			conns = append(conns, c)
		}
	}
	s.conns = conns

	if s.selected == id {
		s.selected = ""
	}
	s.ctrl.Forget(id)
	return true
}

// Select sets the selected node id; "" clears
func (s *Session) Select(id string) { s.selected = id }

// Selected returns the selected node id
func (s *Session) Selected() string { return s.selected }

// SetSearch sets the label search query
func (s *Session) SetSearch(q string) { s.search = q }

// Search returns the label search query
func (s *Session) Search() string { return s.search }

// SetThreshold sets the minimum connection strength drawn
func (s *Session) SetThreshold(t float64) { s.threshold = clamp01(t) }

// Threshold returns the minimum connection strength drawn
func (s *Session) Threshold() float64 { return s.threshold }

// PointerDown forwards to the controller with the session's nodes
func (s *Session) PointerDown(p Point) { s.ctrl.PointerDown(s.nodes, p) }

// PointerMove forwards to the controller with the session's nodes
func (s *Session) PointerMove(p Point) { s.ctrl.PointerMove(s.nodes, p) }

// PointerUp forwards to the controller
func (s *Session) PointerUp() { s.ctrl.PointerUp() }

// PointerLeave forwards to the controller
func (s *Session) PointerLeave() { s.ctrl.PointerLeave() }

// DoubleClick forwards to the controller with the session's nodes
func (s *Session) DoubleClick(p Point) { s.ctrl.DoubleClick(s.nodes, p) }

// Wheel forwards to the controller and reports whether it was consumed
func (s *Session) Wheel(deltaY float64, mods Modifier) bool {
	return s.ctrl.Wheel(deltaY, mods)
}

// Resize forwards the new surface size to the controller
func (s *Session) Resize(width, height float64) { s.ctrl.Resize(width, height) }
