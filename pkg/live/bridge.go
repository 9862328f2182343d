package live

import (
	"bytes"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/recera/synapse/pkg/graphview"
	"github.com/recera/synapse/pkg/scheduler"
)

// bridge drives one graphview.Session on its own scheduler loop and hands
// encoded frames to the connection writer. Everything touching view runs on
// the loop goroutine.
type bridge struct {
	id   string
	view *graphview.Session
	loop *scheduler.Loop
	dl   *graphview.DisplayList

	// last is the most recent frame accepted by out; identical frames are
	// not resent once the layout has settled
	last []byte
	out  func([]byte) bool
	rec  Recorder

	started atomic.Bool
}

func newBridge(id string, nodes []*graphview.Node, conns []graphview.Connection, opts Options, out func([]byte) bool) *bridge {
	b := &bridge{
		id:  id,
		dl:  graphview.NewDisplayList(),
		out: out,
		rec: opts.Recorder,
	}

	viewOpts := opts.View
	viewOpts.OnNodeSelect = func(n *graphview.Node) { b.notify(MessageSelect, n) }
	viewOpts.OnNodeActivate = func(n *graphview.Node) { b.notify(MessageActivate, n) }
	b.view = graphview.NewSession(nodes, conns, viewOpts)

	b.loop = scheduler.NewLoop(opts.Interval, b.frame)
	b.loop.SetErrorHandler(func(err interface{}) bool {
		log.Printf("[Live Session %s] frame panic: %v", id, err)
		return false
	})
	return b
}

func (b *bridge) start() {
	b.started.Store(true)
	b.loop.Start()
}

// stop halts the loop and waits for the frame in flight, if any
func (b *bridge) stop() {
	b.loop.Stop()
	if b.started.Load() {
		<-b.loop.Done()
	}
}

// post queues an event for the loop goroutine
func (b *bridge) post(e Event) bool {
	return b.loop.Post(func() { b.handle(e) })
}

func (b *bridge) frame(time.Time) {
	start := time.Now()
	b.dl.Reset()
	b.view.Step(b.dl)

	cam := b.view.Controller().Camera()
	msg := Message{
		Type:   MessageFrame,
		Ops:    b.dl.Ops,
		Camera: &cam,
		Alpha:  b.view.Engine().Alpha(),
		Popup:  b.popup(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Live Session %s] Failed to encode frame: %v", b.id, err)
		return
	}
	if !bytes.Equal(data, b.last) && b.out(data) {
		b.last = data
	}
	if b.rec != nil {
		b.rec.RecordFrame("live", b.id, b.view, time.Since(start))
	}
}

func (b *bridge) popup() *Popup {
	p, ok := b.view.Controller().Popup()
	if !ok {
		return nil
	}
	n := b.view.Node(b.view.Selected())
	if n == nil {
		return nil
	}
	return &Popup{X: p.X, Y: p.Y, ID: n.ID, Label: n.Label}
}

func (b *bridge) notify(msgType string, n *graphview.Node) {
	data, err := json.Marshal(Message{Type: msgType, Node: nodeInfo(n)})
	if err != nil {
		return
	}
	b.out(data)
}

// handle applies a client event to the view
func (b *bridge) handle(e Event) {
	v := b.view
	switch e.Type {
	case EventPointerDown:
		v.PointerDown(e.Point())
	case EventPointerMove:
		v.PointerMove(e.Point())
	case EventPointerUp:
		v.PointerUp()
	case EventPointerLeave:
		v.PointerLeave()
	case EventDoubleClick:
		v.DoubleClick(e.Point())
	case EventWheel:
		v.Wheel(e.DeltaY, e.Modifiers())
	case EventResize:
		v.Resize(e.Width, e.Height)
	case EventReset:
		v.ResetView()
	case EventFit:
		v.FitGraph(40)
	case EventClosePopup:
		v.ClosePopup()
	case EventSearch:
		v.SetSearch(e.Query)
	case EventThreshold:
		v.SetThreshold(e.Value)
	default:
		log.Printf("[Live Session %s] Unknown event type: %q", b.id, e.Type)
	}
}
