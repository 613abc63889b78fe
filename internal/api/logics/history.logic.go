package logics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"offer-tracker/internal/api/models"
	"offer-tracker/internal/chart"
	"offer-tracker/internal/scheduler"
	"offer-tracker/internal/utils"
)

// SampleSource fetches the samples of one observation. Implementations
// return an empty list on failure.
type SampleSource interface {
	Samples(ctx context.Context, observationKey string) []models.Sample
}

// PriceHistory is the chart state of the selected observation. Every fetch
// is tagged with the selection generation it was issued for; results of an
// older generation are dropped.
type PriceHistory struct {
	src    SampleSource
	poller *scheduler.Poller

	// life serializes selection changes with the poller restart they cause,
	// so the poller target always matches the selection.
	life sync.Mutex

	mu         sync.RWMutex
	selection  string
	generation uint64
	rng        chart.Range
	averaging  bool
	frame      chart.Frame
	interval   time.Duration
	samples    []models.Sample
	view       chart.View
	updatedAt  time.Time
}

func NewPriceHistory(src SampleSource, cfg models.TrackerConfig, interval time.Duration) *PriceHistory {
	h := &PriceHistory{
		src:       src,
		rng:       chart.RangeOrDefault(cfg.DefaultRange),
		averaging: cfg.Averaging,
		frame:     chart.FrameFromConfig(cfg.Frame),
		interval:  interval,
	}
	h.poller = scheduler.New("selection-poller", true, h.poll)
	h.rebuildLocked()
	return h
}

// Select switches to key, discards the previous samples and restarts the
// poller. An empty key clears the selection.
func (h *PriceHistory) Select(key string) error {
	h.life.Lock()
	defer h.life.Unlock()

	if utils.IsEmptyOrWhitespace(key) {
		h.clearLocked()
		return nil
	}

	h.mu.Lock()
	h.selection = key
	h.generation++
	h.samples = nil
	h.updatedAt = time.Time{}
	h.rebuildLocked()
	interval := h.interval
	h.mu.Unlock()

	return h.poller.Start(key, interval)
}

// Clear drops the selection and destroys its poller.
func (h *PriceHistory) Clear() {
	h.life.Lock()
	defer h.life.Unlock()
	h.clearLocked()
}

func (h *PriceHistory) clearLocked() {
	h.mu.Lock()
	h.selection = ""
	h.generation++
	h.samples = nil
	h.updatedAt = time.Time{}
	h.rebuildLocked()
	h.mu.Unlock()

	h.poller.Stop()
}

// SetRange switches the granularity and recomputes the chart from the
// samples already held.
func (h *PriceHistory) SetRange(key string) error {
	r, ok := chart.LookupRange(key)
	if !ok {
		return utils.NewValidationError("range", fmt.Sprintf("unknown range %q", key), utils.ErrInvalidRange)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rng = r
	h.rebuildLocked()
	return nil
}

func (h *PriceHistory) SetAveraging(on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.averaging = on
	h.rebuildLocked()
}

// SetFrame applies a new chart geometry, e.g. after a config reload.
func (h *PriceHistory) SetFrame(frame chart.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frame = frame
	h.rebuildLocked()
}

// SetInterval changes the refresh interval and restarts a running poller.
func (h *PriceHistory) SetInterval(d time.Duration) error {
	if d <= 0 {
		return utils.NewValidationError("interval", "interval must be positive", utils.ErrInvalidPreference)
	}
	h.life.Lock()
	defer h.life.Unlock()

	h.mu.Lock()
	h.interval = d
	key := h.selection
	h.mu.Unlock()

	if key == "" {
		return nil
	}
	return h.poller.Start(key, d)
}

// Refresh fetches the current selection once, outside the poller.
func (h *PriceHistory) Refresh(ctx context.Context) error {
	h.mu.RLock()
	key, gen := h.selection, h.generation
	h.mu.RUnlock()
	if key == "" {
		return utils.NewValidationError("selection", "select an observation first", utils.ErrMissingSelection)
	}
	h.apply(gen, h.src.Samples(ctx, key))
	return nil
}

func (h *PriceHistory) poll(ctx context.Context, key string) {
	h.mu.RLock()
	gen, current := h.generation, h.selection
	h.mu.RUnlock()
	if key != current {
		return
	}
	h.apply(gen, h.src.Samples(ctx, key))
}

// apply installs samples fetched for generation gen. Within one generation
// the last response to arrive wins.
func (h *PriceHistory) apply(gen uint64, samples []models.Sample) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.generation {
		utils.LogDebug("selection-poller: dropped stale response of generation %d (current %d)", gen, h.generation)
		return false
	}
	h.samples = samples
	h.updatedAt = utils.NowUTC()
	h.rebuildLocked()
	return true
}

func (h *PriceHistory) rebuildLocked() {
	h.view = chart.Build(h.samples, chart.Options{Range: h.rng, Averaging: h.averaging, Frame: h.frame})
}

// View returns the chart computed from the latest samples.
func (h *PriceHistory) View() chart.View {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.view
}

func (h *PriceHistory) Selection() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.selection
}

// Settings returns the selection key, range and averaging flag.
func (h *PriceHistory) Settings() (string, chart.Range, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.selection, h.rng, h.averaging
}

func (h *PriceHistory) UpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.updatedAt
}

func (h *PriceHistory) SampleCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples)
}

func (h *PriceHistory) PollerStatus() models.SchedulerStatus {
	return h.poller.Status()
}

// Close stops the poller.
func (h *PriceHistory) Close() {
	h.life.Lock()
	defer h.life.Unlock()
	h.poller.Stop()
}
