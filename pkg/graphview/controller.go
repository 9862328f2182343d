package graphview

import "math"

// State is the interaction controller's mode
type State int

const (
	Idle State = iota
	PanningCanvas
	DraggingNode
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PanningCanvas:
		return "panning"
	case DraggingNode:
		return "dragging"
	}
	return "unknown"
}

// PickRadius is the hit-test radius in world units
const PickRadius = 12.0

const (
	zoomInFactor  = 1.1
	zoomOutFactor = 0.9
)

// Modifier is a bitmask of keys held during a wheel event
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModMeta
	ModShift
	ModAlt
)

// zooms reports whether the modifier set turns a wheel into a zoom
func (m Modifier) zooms() bool { return m&(ModCtrl|ModMeta) != 0 }

// Callbacks connect the controller to its host. All are optional.
type Callbacks struct {
	// OnNodeSelect receives the picked node, or nil when selection clears
	OnNodeSelect func(n *Node)
	// OnNodePositionUpdate overwrites a dragged node's position. When nil the
	// controller writes the node directly.
	OnNodePositionUpdate func(id string, x, y float64)
	// OnNodeActivate fires on double click over a node
	OnNodeActivate func(n *Node)
	// OnViewportChange fires after zoom, pan or size changes
	OnViewportChange func(cam Camera)
}

// Controller turns pointer and wheel input into camera and node mutations.
// It owns camera and interaction state for the session.
type Controller struct {
	cam   Camera
	state State

	hovered string
	dragged string
	last    Point
	popup   *Point

	cb Callbacks
}

// NewController creates a controller for a surface of the given size
func NewController(width, height float64, cb Callbacks) *Controller {
	return &Controller{
		cam: DefaultCamera(width, height),
		cb:  cb,
	}
}

// SetCallbacks replaces the host callbacks
func (c *Controller) SetCallbacks(cb Callbacks) { c.cb = cb }

// Camera returns the current camera
func (c *Controller) Camera() Camera { return c.cam }

// State returns the current interaction mode
func (c *Controller) State() State { return c.state }

// Hovered returns the hovered node id or ""
func (c *Controller) Hovered() string { return c.hovered }

// Dragged returns the dragged node id or ""
func (c *Controller) Dragged() string { return c.dragged }

// Popup returns the popup anchor in screen space, if visible
func (c *Controller) Popup() (Point, bool) {
	if c.popup == nil {
		return Point{}, false
	}
	return *c.popup, true
}

// Pinned returns the ids the simulation must leave alone
func (c *Controller) Pinned() PinSet {
	return Pins(c.dragged)
}

// HitTest returns the nearest node within PickRadius of the screen point
func (c *Controller) HitTest(nodes []*Node, screen Point) *Node {
	return HitTest(nodes, ToWorld(screen, c.cam))
}

// HitTest returns the nearest placed node within PickRadius of the world
// point. Exact ties go to the earlier node in array order.
func HitTest(nodes []*Node, world Point) *Node {
	var hit *Node
	best := PickRadius * PickRadius
	for _, n := range nodes {
		if n == nil || !n.placed {
			continue
		}
		dx := world.X - n.X
		dy := world.Y - n.Y
		d2 := dx*dx + dy*dy
		if d2 > best || (hit != nil && d2 == best) {
			continue
		}
		hit, best = n, d2
	}
	return hit
}

// PointerDown starts a node drag on a hit, or a canvas pan otherwise
func (c *Controller) PointerDown(nodes []*Node, p Point) {
	c.last = p
	if n := c.HitTest(nodes, p); n != nil {
		c.state = DraggingNode
		c.dragged = n.ID
		if c.cb.OnNodeSelect != nil {
			c.cb.OnNodeSelect(n)
		}
		anchor := p
		c.popup = &anchor
		return
	}
	c.state = PanningCanvas
	c.dragged = ""
	c.popup = nil
	if c.cb.OnNodeSelect != nil {
		c.cb.OnNodeSelect(nil)
	}
}

// PointerMove tracks hover and advances a drag or pan
func (c *Controller) PointerMove(nodes []*Node, p Point) {
	switch c.state {
	case DraggingNode:
		w := ToWorld(p, c.cam)
		c.moveNode(nodes, c.dragged, w)
		if c.popup != nil {
			anchor := p
			c.popup = &anchor
		}
	case PanningCanvas:
		c.cam.PanX += p.X - c.last.X
		c.cam.PanY += p.Y - c.last.Y
		c.viewportChanged()
	}
	c.last = p

	if n := c.HitTest(nodes, p); n != nil {
		c.hovered = n.ID
	} else {
		c.hovered = ""
	}
}

func (c *Controller) moveNode(nodes []*Node, id string, w Point) {
	if c.cb.OnNodePositionUpdate != nil {
		c.cb.OnNodePositionUpdate(id, w.X, w.Y)
		return
	}
	for _, n := range nodes {
		if n != nil && n.ID == id {
			n.Place(w.X, w.Y)
			n.VX, n.VY = 0, 0
			return
		}
	}
}

// PointerUp ends any drag or pan. Hover is untouched.
func (c *Controller) PointerUp() {
	c.state = Idle
	c.dragged = ""
}

// PointerLeave clears hover when the pointer exits the surface
func (c *Controller) PointerLeave() {
	c.hovered = ""
}

// DoubleClick activates the node under the pointer, if any
func (c *Controller) DoubleClick(nodes []*Node, p Point) {
	if n := c.HitTest(nodes, p); n != nil && c.cb.OnNodeActivate != nil {
		c.cb.OnNodeActivate(n)
	}
}

// Wheel zooms when ctrl or meta is held and reports whether the event was
// consumed. Unmodified wheel events are left to the host (page scrolling).
func (c *Controller) Wheel(deltaY float64, mods Modifier) bool {
	if !mods.zooms() {
		return false
	}
	switch {
	case deltaY < 0:
		c.ZoomBy(zoomInFactor)
	case deltaY > 0:
		c.ZoomBy(zoomOutFactor)
	}
	return true
}

// ZoomBy multiplies zoom by factor, clamped to [MinZoom, MaxZoom]
func (c *Controller) ZoomBy(factor float64) {
	c.cam.Zoom = clampZoom(c.cam.Zoom * factor)
	c.viewportChanged()
}

// Resize updates the surface size without touching zoom or pan
func (c *Controller) Resize(width, height float64) {
	c.cam.Width = width
	c.cam.Height = height
	c.viewportChanged()
}

// ResetView restores zoom 1 and zero pan; selection and hover are kept
func (c *Controller) ResetView() {
	c.cam.Zoom = 1
	c.cam.PanX, c.cam.PanY = 0, 0
	c.viewportChanged()
}

// ClosePopup hides the popup
func (c *Controller) ClosePopup() { c.popup = nil }

// Forget drops interaction references to a removed node
func (c *Controller) Forget(id string) {
	if c.hovered == id {
		c.hovered = ""
	}
	if c.dragged == id {
		c.dragged = ""
		c.state = Idle
		c.popup = nil
	}
}

// FitGraph sets zoom and pan so every placed node fits inside the surface
// with padding screen pixels on each side
func (c *Controller) FitGraph(nodes []*Node, padding float64) {
	minx, miny := math.Inf(1), math.Inf(1)
	maxx, maxy := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		if n == nil || !n.placed {
			continue
		}
		minx, maxx = math.Min(minx, n.X), math.Max(maxx, n.X)
		miny, maxy = math.Min(miny, n.Y), math.Max(maxy, n.Y)
	}
	if math.IsInf(minx, 1) {
		return
	}
	gw := math.Max(maxx-minx, 1)
	gh := math.Max(maxy-miny, 1)
	sx := (c.cam.Width - 2*padding) / gw
	sy := (c.cam.Height - 2*padding) / gh
	s := math.Min(sx, sy)
	if s <= 0 {
		s = 1
	}
	c.cam.Zoom = clampZoom(s)
	c.cam.PanX = -c.cam.Zoom * (minx + (maxx-minx)/2)
	c.cam.PanY = -c.cam.Zoom * (miny + (maxy-miny)/2)
	c.viewportChanged()
}

// FocusNode pans so the node sits at the surface center, keeping zoom
func (c *Controller) FocusNode(nodes []*Node, id string) bool {
	for _, n := range nodes {
		if n != nil && n.ID == id && n.placed {
			c.cam.PanX = -c.cam.Zoom * n.X
			c.cam.PanY = -c.cam.Zoom * n.Y
			c.viewportChanged()
			return true
		}
	}
	return false
}

func (c *Controller) viewportChanged() {
	if c.cb.OnViewportChange != nil {
		c.cb.OnViewportChange(c.cam)
	}
}
