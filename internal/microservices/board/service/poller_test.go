package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPollerTicksUntilStopped(t *testing.T) {
	var runs atomic.Int32
	p := NewPoller(10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, testLogger())

	p.Start(context.Background())
	p.Start(context.Background())
	waitFor(t, func() bool { return runs.Load() >= 3 })

	p.Stop()
	p.Wait()
	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	if runs.Load() != after {
		t.Fatalf("cycles ran after Stop: %d -> %d", after, runs.Load())
	}
	p.Stop()
}

func TestPollerStopDoesNotAbortInFlightCycle(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var ctxErr atomic.Value

	p := NewPoller(10*time.Millisecond, func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
			return nil
		}
		<-release
		if err := ctx.Err(); err != nil {
			ctxErr.Store(err)
		}
		return nil
	}, testLogger())

	p.Start(context.Background())
	<-started
	p.Stop()
	close(release)
	p.Wait()

	if v := ctxErr.Load(); v != nil {
		t.Fatalf("in-flight cycle was canceled: %v", v)
	}
}

func TestPollerParentCancelStopsTicking(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}, testLogger())

	p.Start(ctx)
	waitFor(t, func() bool { return runs.Load() >= 1 })
	cancel()
	time.Sleep(30 * time.Millisecond)
	p.Wait()
	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	if runs.Load() != after {
		t.Fatalf("poller kept ticking after its context ended")
	}
	p.Stop()
}
