package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeProcessor struct {
	processFn func(ctx context.Context) error
}

func (f *fakeProcessor) ProcessDue(ctx context.Context) error {
	if f.processFn != nil {
		return f.processFn(ctx)
	}
	return nil
}

func TestSchedulerLoopRunsInitialPass(t *testing.T) {
	t.Parallel()

	firstPass := make(chan struct{}, 1)
	processor := &fakeProcessor{
		processFn: func(ctx context.Context) error {
			select {
			case firstPass <- struct{}{}:
			default:
			}
			return nil
		},
	}

	loop, err := NewSchedulerLoop(processor, time.Hour, nil)
	if err != nil {
		t.Fatalf("NewSchedulerLoop() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- loop.Start(ctx)
	}()

	select {
	case <-firstPass:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an initial pass before the first tick")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after cancellation")
	}
}

func TestSchedulerLoopSkipsOverlappingTicks(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	processor := &fakeProcessor{
		processFn: func(ctx context.Context) error {
			calls.Add(1)
			<-release
			return nil
		},
	}

	loop, err := NewSchedulerLoop(processor, 5*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewSchedulerLoop() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- loop.Start(ctx)
	}()

	// Several tick intervals elapse while the first pass is still blocked;
	// each of those ticks must be skipped, not queued.
	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		close(release)
		cancel()
		t.Fatalf("processor calls = %d, want 1 while first pass is in flight", got)
	}

	close(release)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after cancellation")
	}
}

func TestSchedulerLoopDrainsInFlightPassOnStop(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	processor := &fakeProcessor{
		processFn: func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		},
	}

	loop, err := NewSchedulerLoop(processor, time.Hour, nil)
	if err != nil {
		t.Fatalf("NewSchedulerLoop() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- loop.Start(ctx)
	}()

	<-started
	cancel()

	select {
	case <-done:
		t.Fatal("Start() returned while a pass was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after the pass finished")
	}
}

func TestSchedulerLoopDefaultsInterval(t *testing.T) {
	t.Parallel()

	loop, err := NewSchedulerLoop(&fakeProcessor{}, 0, nil)
	if err != nil {
		t.Fatalf("NewSchedulerLoop() error = %v", err)
	}
	if loop.interval != defaultTickInterval {
		t.Fatalf("interval = %v, want %v", loop.interval, defaultTickInterval)
	}
}
