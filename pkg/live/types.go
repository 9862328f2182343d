package live

import "github.com/recera/synapse/pkg/graphview"

// Client event types
const (
	EventPointerDown  = "pointerdown"
	EventPointerMove  = "pointermove"
	EventPointerUp    = "pointerup"
	EventPointerLeave = "pointerleave"
	EventDoubleClick  = "dblclick"
	EventWheel        = "wheel"
	EventResize       = "resize"
	EventReset        = "reset"
	EventFit          = "fit"
	EventClosePopup   = "closePopup"
	EventSearch       = "search"
	EventThreshold    = "threshold"
)

// Event is a JSON message from the browser. Coordinates are canvas pixels.
type Event struct {
	Type   string  `json:"type"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DeltaY float64 `json:"deltaY,omitempty"`
	Ctrl   bool    `json:"ctrl,omitempty"`
	Meta   bool    `json:"meta,omitempty"`
	Shift  bool    `json:"shift,omitempty"`
	Alt    bool    `json:"alt,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Query  string  `json:"query,omitempty"`
	Value  float64 `json:"value,omitempty"`
}

// Point returns the event position
func (e Event) Point() graphview.Point { return graphview.Point{X: e.X, Y: e.Y} }

// Modifiers returns the held modifier keys
func (e Event) Modifiers() graphview.Modifier {
	var m graphview.Modifier
	if e.Ctrl {
		m |= graphview.ModCtrl
	}
	if e.Meta {
		m |= graphview.ModMeta
	}
	if e.Shift {
		m |= graphview.ModShift
	}
	if e.Alt {
		m |= graphview.ModAlt
	}
	return m
}

// Server message types
const (
	MessageHello    = "hello"
	MessageFrame    = "frame"
	MessageSelect   = "select"
	MessageActivate = "activate"
)

// Message is a JSON message to the browser
type Message struct {
	Type       string            `json:"type"`
	Session    string            `json:"session,omitempty"`
	Background string            `json:"background,omitempty"`
	Ops        []graphview.Op    `json:"ops,omitempty"`
	Camera     *graphview.Camera `json:"camera,omitempty"`
	Alpha      float64           `json:"alpha,omitempty"`
	Popup      *Popup            `json:"popup,omitempty"`
	Node       *NodeInfo         `json:"node,omitempty"`
}

// Popup is the detail card anchored at a screen position
type Popup struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	ID    string  `json:"id"`
	Label string  `json:"label"`
}

// NodeInfo describes a node for select/activate notifications
type NodeInfo struct {
	ID      string         `json:"id"`
	Label   string         `json:"label"`
	Payload map[string]any `json:"payload,omitempty"`
}

func nodeInfo(n *graphview.Node) *NodeInfo {
	if n == nil {
		return nil
	}
	return &NodeInfo{ID: n.ID, Label: n.Label, Payload: n.Payload}
}
