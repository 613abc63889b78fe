package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"offer-tracker/internal/utils"
)

type recorder struct {
	mu      sync.Mutex
	targets []string
	ran     chan string
}

func newRecorder() *recorder {
	return &recorder{ran: make(chan string, 1024)}
}

func (r *recorder) task(_ context.Context, target string) {
	r.mu.Lock()
	r.targets = append(r.targets, target)
	r.mu.Unlock()
	select {
	case r.ran <- target:
	default:
	}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.targets...)
}

func waitRun(t *testing.T, r *recorder) string {
	t.Helper()
	select {
	case target := <-r.ran:
		return target
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a run")
		return ""
	}
}

func TestPollerRunsImmediately(t *testing.T) {
	r := newRecorder()
	p := New("selection", true, r.task)
	defer p.Stop()

	if err := p.Start("99", time.Hour); err != nil {
		t.Fatal(err)
	}
	if got := waitRun(t, r); got != "99" {
		t.Errorf("expected immediate run for 99, got %q", got)
	}
}

func TestPollerWaitsForFirstTick(t *testing.T) {
	r := newRecorder()
	p := New("dashboard", false, r.task)
	defer p.Stop()

	if err := p.Start("all", time.Hour); err != nil {
		t.Fatal(err)
	}
	select {
	case <-r.ran:
		t.Fatal("dashboard poller must not run before its first tick")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPollerTicks(t *testing.T) {
	r := newRecorder()
	p := New("dashboard", false, r.task)
	defer p.Stop()

	if err := p.Start("all", 5*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		waitRun(t, r)
	}
	if st := p.Status(); !st.Running || st.Runs < 3 || st.RunID == "" || st.Interval != "5ms" {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestPollerRestartReplacesLoop(t *testing.T) {
	r := newRecorder()
	p := New("selection", true, r.task)
	defer p.Stop()

	if err := p.Start("a", 2*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	waitRun(t, r)
	firstRun := p.Status().RunID

	if err := p.Start("b", 2*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	settled := len(r.snapshot())
	for i := 0; i < 5; i++ {
		for waitRun(t, r) != "b" {
		}
	}

	for i, target := range r.snapshot()[settled:] {
		if target != "b" {
			t.Fatalf("run %d after restart targeted %q", settled+i, target)
		}
	}
	if p.Status().RunID == firstRun {
		t.Errorf("restart must allocate a new run id")
	}
}

func TestPollerStop(t *testing.T) {
	r := newRecorder()
	p := New("selection", true, r.task)

	if err := p.Start("a", time.Millisecond); err != nil {
		t.Fatal(err)
	}
	waitRun(t, r)
	p.Stop()
	p.Stop()

	stopped := len(r.snapshot())
	time.Sleep(20 * time.Millisecond)
	if got := len(r.snapshot()); got != stopped {
		t.Errorf("task ran %d times after Stop", got-stopped)
	}
	if st := p.Status(); st.Running || st.Target != "" || st.RunID != "" {
		t.Errorf("expected idle status after Stop, got %+v", st)
	}
}

func TestPollerStopCancelsInFlightTask(t *testing.T) {
	started := make(chan struct{})
	p := New("selection", true, func(ctx context.Context, _ string) {
		close(started)
		<-ctx.Done()
	})

	if err := p.Start("slow", time.Hour); err != nil {
		t.Fatal(err)
	}
	<-started

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while a task was in flight")
	}
}

func TestPollerRejectsNonPositiveInterval(t *testing.T) {
	p := New("selection", true, func(context.Context, string) {})
	for _, d := range []time.Duration{0, -time.Second} {
		err := p.Start("a", d)
		if !utils.IsValidationError(err) {
			t.Errorf("Start(%v) = %v, want a validation error", d, err)
		}
	}
	if p.Running() {
		t.Errorf("poller must stay stopped after a rejected Start")
	}
}
