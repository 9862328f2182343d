// Package scheduler drives frame callbacks and input handlers on a single
// goroutine so that the state they share never needs a lock.
package scheduler

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// FrameFunc is called once per frame on the loop goroutine
type FrameFunc func(now time.Time)

// ErrorHandler handles panics raised by frames or posted tasks.
// Returns true to keep the loop running, false to stop it.
type ErrorHandler func(err interface{}) bool

// DefaultInterval is one display refresh at 60Hz
const DefaultInterval = time.Second / 60

// debugLog is set by the host
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Loop runs exactly one frame per interval and interleaves posted tasks
// between frames. Nothing it runs ever overlaps.
type Loop struct {
	interval time.Duration
	frame    FrameFunc
	tasks    chan func()

	running  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}

	frames atomic.Uint64
	onErr  ErrorHandler
}

// NewLoop creates a loop. A non-positive interval uses DefaultInterval.
func NewLoop(interval time.Duration, frame FrameFunc) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		interval: interval,
		frame:    frame,
		tasks:    make(chan func(), 256), // buffered for bursts of pointer moves
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// SetErrorHandler sets the panic handler. Call before Start.
func (l *Loop) SetErrorHandler(handler ErrorHandler) {
	l.onErr = handler
}

// Start begins the loop
func (l *Loop) Start() {
	if l.running.CompareAndSwap(false, true) {
		if debugLog != nil {
			debugLog("[Scheduler] Starting frame loop, interval", l.interval)
		}
		go l.loop()
	} else if debugLog != nil {
		debugLog("[Scheduler] Loop already running")
	}
}

// Stop stops scheduling further frames. Safe to call from inside a frame.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		l.running.Store(false)
		close(l.stopCh)
	})
}

// Done is closed once the loop goroutine has exited
func (l *Loop) Done() <-chan struct{} { return l.done }

// IsRunning returns whether the loop is running
func (l *Loop) IsRunning() bool {
	return l.running.Load()
}

// Frames returns how many frames have run
func (l *Loop) Frames() uint64 { return l.frames.Load() }

// Post queues fn to run on the loop goroutine between frames.
// Returns false if the loop is stopped or the queue is full.
func (l *Loop) Post(fn func()) bool {
	if fn == nil || !l.running.Load() {
		return false
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.stopCh:
		return false
	default:
		if debugLog != nil {
			debugLog("[Scheduler] Task queue full, dropping task")
		}
		return false
	}
}

// Do runs fn on the loop goroutine and waits for it. It must not be called
// from the loop goroutine itself.
func (l *Loop) Do(fn func()) bool {
	if fn == nil || !l.running.Load() {
		return false
	}
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}
	select {
	case l.tasks <- wrapped:
	case <-l.stopCh:
		return false
	}
	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

// loop is the main frame loop
func (l *Loop) loop() {
	defer close(l.done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	if debugLog != nil {
		debugLog("[Scheduler] Loop started")
	}
	for {
		select {
		case <-l.stopCh:
			if debugLog != nil {
				debugLog("[Scheduler] Loop ended after", l.frames.Load(), "frames")
			}
			return
		case fn := <-l.tasks:
			l.run(fn)
		case now := <-ticker.C:
			if l.frame == nil {
				continue
			}
			l.run(func() { l.frame(now) })
			l.frames.Add(1)
		}
	}
}

// run executes fn with panic recovery
func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.handleError(r)
		}
	}()
	fn()
}

// handleError reports a panic and decides whether to keep going
func (l *Loop) handleError(err interface{}) {
	errorMsg := fmt.Sprintf("frame loop panic: %v\n%s", err, debug.Stack())

	shouldContinue := false
	if l.onErr != nil {
		shouldContinue = l.onErr(errorMsg)
	}
	if !shouldContinue {
		l.Stop()
	}
}
