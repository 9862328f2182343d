package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoop_RunsFrames(t *testing.T) {
	var frameCount atomic.Int32
	loop := NewLoop(5*time.Millisecond, func(time.Time) {
		frameCount.Add(1)
	})

	if frameCount.Load() != 0 {
		t.Error("Frame should not run before Start")
	}

	loop.Start()
	time.Sleep(60 * time.Millisecond)
	loop.Stop()
	<-loop.Done()

	if frameCount.Load() == 0 {
		t.Fatal("Expected frames to run")
	}
	if uint64(frameCount.Load()) != loop.Frames() {
		t.Errorf("Frames() = %d, counted %d", loop.Frames(), frameCount.Load())
	}
}

func TestLoop_FramesNeverOverlap(t *testing.T) {
	var inFrame atomic.Bool
	var overlapped atomic.Bool
	loop := NewLoop(time.Millisecond, func(time.Time) {
		if !inFrame.CompareAndSwap(false, true) {
			overlapped.Store(true)
		}
		time.Sleep(3 * time.Millisecond) // slower than the interval
		inFrame.Store(false)
	})
	loop.Start()
	time.Sleep(40 * time.Millisecond)
	loop.Stop()
	<-loop.Done()

	if overlapped.Load() {
		t.Error("Frames overlapped")
	}
}

func TestLoop_PostRunsOnLoopGoroutine(t *testing.T) {
	// Unsynchronized state shared between frames and tasks; the race
	// detector flags this if tasks and frames ever run concurrently.
	counter := 0
	loop := NewLoop(time.Millisecond, func(time.Time) {
		counter++
	})
	loop.Start()
	defer loop.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loop.Post(func() { counter++ })
		}()
	}
	wg.Wait()

	var snapshot int
	if !loop.Do(func() { snapshot = counter }) {
		t.Fatal("Do should succeed on a running loop")
	}
	if snapshot < 50 {
		t.Errorf("Expected at least 50 increments, got %d", snapshot)
	}
}

func TestLoop_ErrorHandling(t *testing.T) {
	var errorHandled atomic.Bool
	var shouldContinue atomic.Bool
	shouldContinue.Store(true)

	loop := NewLoop(time.Millisecond, nil)
	loop.SetErrorHandler(func(err interface{}) bool {
		errorHandled.Store(true)
		return shouldContinue.Load()
	})
	loop.Start()
	defer loop.Stop()

	loop.Post(func() { panic("test panic") })
	time.Sleep(20 * time.Millisecond)

	if !errorHandled.Load() {
		t.Error("Error handler was not called")
	}
	if !loop.IsRunning() {
		t.Error("Loop stopped despite error handler returning true")
	}

	shouldContinue.Store(false)
	errorHandled.Store(false)
	loop.Post(func() { panic("test panic") })

	select {
	case <-loop.Done():
	case <-time.After(time.Second):
		t.Fatal("Loop did not stop when error handler returned false")
	}
	if !errorHandled.Load() {
		t.Error("Error handler was not called for second panic")
	}
}

func TestLoop_StopFromInsideFrame(t *testing.T) {
	var loop *Loop
	loop = NewLoop(time.Millisecond, func(time.Time) {
		loop.Stop()
	})
	loop.Start()

	select {
	case <-loop.Done():
	case <-time.After(time.Second):
		t.Fatal("Loop did not stop from inside a frame")
	}
	if loop.IsRunning() {
		t.Error("Loop should not be running after Stop")
	}
}

func TestLoop_StoppedRejectsWork(t *testing.T) {
	loop := NewLoop(time.Millisecond, nil)

	if loop.Post(func() {}) {
		t.Error("Post should fail before Start")
	}

	loop.Start()
	loop.Stop()
	<-loop.Done()

	if loop.Post(func() {}) {
		t.Error("Post should fail after Stop")
	}
	if loop.Do(func() {}) {
		t.Error("Do should fail after Stop")
	}
	// Should not panic
	loop.Stop()
}

func BenchmarkLoop_Post(b *testing.B) {
	loop := NewLoop(time.Millisecond, nil)
	loop.Start()
	defer loop.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		loop.Post(func() {})
	}
}
