// Package scheduler runs periodic refresh tasks with at most one active
// loop per Poller.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"offer-tracker/internal/api/models"
	"offer-tracker/internal/utils"
)

// Task is one refresh of target. ctx is cancelled when the loop stops.
type Task func(ctx context.Context, target string)

// Poller owns a single ticker loop. Start replaces the running loop and
// Stop tears it down; both return only after the old loop has exited.
// The task must not call Start or Stop on its own Poller.
type Poller struct {
	name       string
	task       Task
	runOnStart bool

	lifecycle sync.Mutex // serializes Start and Stop

	mu       sync.RWMutex
	cancel   context.CancelFunc
	done     chan struct{}
	target   string
	interval time.Duration
	runID    string

	runs atomic.Uint64
}

// New creates a stopped poller. With runOnStart the task also runs once
// right after Start, before the first tick.
func New(name string, runOnStart bool, task Task) *Poller {
	return &Poller{name: name, task: task, runOnStart: runOnStart}
}

// Start begins polling target every interval, replacing any running loop.
func (p *Poller) Start(target string, interval time.Duration) error {
	if interval <= 0 {
		return utils.NewValidationError("interval", fmt.Sprintf("%s: interval must be positive, got %v", p.name, interval), utils.ErrInvalidPreference)
	}

	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	p.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	runID := uuid.NewString()

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.target = target
	p.interval = interval
	p.runID = runID
	p.mu.Unlock()

	utils.LogDebug("%s: started run %s for %q every %v", p.name, runID, target, interval)
	go p.loop(ctx, done, target, interval)
	return nil
}

// Stop cancels the running loop, if any, and waits for it to exit.
func (p *Poller) Stop() {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	p.stopLocked()
}

func (p *Poller) stopLocked() {
	p.mu.Lock()
	cancel, done, runID := p.cancel, p.done, p.runID
	p.cancel, p.done = nil, nil
	p.target, p.interval, p.runID = "", 0, ""
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	utils.LogDebug("%s: stopped run %s", p.name, runID)
}

func (p *Poller) loop(ctx context.Context, done chan struct{}, target string, interval time.Duration) {
	defer close(done)

	if p.runOnStart {
		p.run(ctx, target)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.run(ctx, target)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) run(ctx context.Context, target string) {
	if ctx.Err() != nil {
		return
	}
	p.task(ctx, target)
	p.runs.Add(1)
}

// Running reports whether a loop is active.
func (p *Poller) Running() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cancel != nil
}

// Status snapshots the poller for the status endpoint.
func (p *Poller) Status() models.SchedulerStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := models.SchedulerStatus{
		Name:    p.name,
		Running: p.cancel != nil,
		Target:  p.target,
		RunID:   p.runID,
		Runs:    p.runs.Load(),
	}
	if p.interval > 0 {
		s.Interval = p.interval.String()
	}
	return s
}
