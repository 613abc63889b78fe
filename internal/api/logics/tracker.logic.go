package logics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"offer-tracker/internal/api/models"
	"offer-tracker/internal/chart"
	"offer-tracker/internal/scheduler"
	"offer-tracker/internal/source"
	"offer-tracker/internal/utils"
)

// ListingsAPI is the part of the listings API the tracker depends on.
type ListingsAPI interface {
	SampleSource
	ListObservations(ctx context.Context) ([]models.Observation, error)
	RefreshAll(ctx context.Context) (int, error)
}

// Tracker wires the price history session, the dashboard-wide refresher and
// the preference store together.
type Tracker struct {
	api       ListingsAPI
	prefs     utils.PreferenceStore
	history   *PriceHistory
	dashboard *scheduler.Poller

	mu  sync.RWMutex
	cfg models.TrackerConfig
	loc *time.Location
}

var (
	tracker   *Tracker
	trackerMu sync.RWMutex
)

// NewTracker builds a stopped tracker. Call Start to begin polling.
func NewTracker(ctx context.Context, api ListingsAPI, prefs utils.PreferenceStore, cfg models.TrackerConfig) *Tracker {
	if prefs == nil {
		prefs = utils.NewMemoryPreferences()
	}
	p := LoadPreferences(ctx, prefs)
	t := &Tracker{
		api:     api,
		prefs:   prefs,
		history: NewPriceHistory(api, cfg, p.PollInterval()),
		cfg:     cfg,
		loc:     utils.ResolveTimezone(cfg.Timezone),
	}
	t.dashboard = scheduler.New("dashboard-poller", false, t.refreshAll)
	return t
}

// InitTracker installs t as the process-wide tracker used by the handlers.
func InitTracker(t *Tracker) {
	trackerMu.Lock()
	defer trackerMu.Unlock()
	tracker = t
}

// GetTracker returns the process-wide tracker, or nil before InitTracker.
func GetTracker() *Tracker {
	trackerMu.RLock()
	defer trackerMu.RUnlock()
	return tracker
}

// Start launches the dashboard-wide refresher.
func (t *Tracker) Start(ctx context.Context) error {
	p := LoadPreferences(ctx, t.prefs)
	return t.dashboard.Start("all", p.DashboardInterval())
}

func (t *Tracker) refreshAll(ctx context.Context, _ string) {
	started := time.Now()
	n, err := t.api.RefreshAll(ctx)
	if err != nil {
		switch {
		case ctx.Err() != nil:
		case utils.IsNetworkError(err):
			utils.LogWarnWithContext("dashboard-poller", "refresh-all failed", err)
		default:
			utils.LogError("dashboard-poller: refresh-all failed after %v: %v", time.Since(started).Round(time.Millisecond), err)
		}
		return
	}
	utils.LogInfo("dashboard-poller: refreshed %d observations in %v", n, time.Since(started).Round(time.Millisecond))
}

// ApplyConfig updates the chart geometry and timezone after a reload.
func (t *Tracker) ApplyConfig(cfg models.TrackerConfig) {
	t.mu.Lock()
	t.cfg = cfg
	t.loc = utils.ResolveTimezone(cfg.Timezone)
	t.mu.Unlock()

	if c, ok := t.api.(*source.Client); ok {
		c.SetFields(cfg.Fields)
	}
	t.history.SetFrame(chart.FrameFromConfig(cfg.Frame))
}

func (t *Tracker) Config() models.TrackerConfig {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cfg
}

// Location is the timezone used for tick labels and exports.
func (t *Tracker) Location() *time.Location {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loc
}

func (t *Tracker) History() *PriceHistory {
	return t.history
}

func (t *Tracker) Observations(ctx context.Context) ([]models.Observation, error) {
	return t.api.ListObservations(ctx)
}

// HistoryOptions are the inputs of a one-shot chart request.
type HistoryOptions struct {
	Observation string
	Range       string
	Averaging   bool
}

// HistoryView fetches and charts one observation without touching the
// selection session. An empty range uses the configured default.
func (t *Tracker) HistoryView(ctx context.Context, opts HistoryOptions) (chart.View, error) {
	if utils.IsEmptyOrWhitespace(opts.Observation) {
		return chart.View{}, utils.NewValidationError("observation", "observation is required", utils.ErrMissingSelection)
	}
	rng := chart.RangeOrDefault(t.Config().DefaultRange)
	if opts.Range != "" {
		r, ok := chart.LookupRange(opts.Range)
		if !ok {
			return chart.View{}, utils.NewValidationError("range", fmt.Sprintf("unknown range %q", opts.Range), utils.ErrInvalidRange)
		}
		rng = r
	}

	samples := t.api.Samples(ctx, opts.Observation)
	return chart.Build(samples, chart.Options{
		Range:     rng,
		Averaging: opts.Averaging,
		Frame:     chart.FrameFromConfig(t.Config().Frame),
	}), nil
}

func (t *Tracker) Preferences(ctx context.Context) models.Preferences {
	return LoadPreferences(ctx, t.prefs)
}

// UpdatePreferences stores new intervals and restarts the running pollers.
func (t *Tracker) UpdatePreferences(ctx context.Context, p models.Preferences) error {
	if err := SavePreferences(ctx, t.prefs, p); err != nil {
		return err
	}
	if err := t.history.SetInterval(p.PollInterval()); err != nil {
		return err
	}
	if t.dashboard.Running() {
		return t.dashboard.Start("all", p.DashboardInterval())
	}
	return nil
}

// Status reports the pollers and, when withProcess is set, process stats.
func (t *Tracker) Status(withProcess bool) models.TrackerStatus {
	st := models.TrackerStatus{
		Selection:  t.history.Selection(),
		Samples:    t.history.SampleCount(),
		Schedulers: []models.SchedulerStatus{t.history.PollerStatus(), t.dashboard.Status()},
	}
	if withProcess {
		st.Process = processStatus()
	}
	return st
}

// PreferencesBackend names the store preferences are kept in.
func (t *Tracker) PreferencesBackend() string {
	return t.prefs.Backend()
}

// Close stops both pollers and closes the preference store.
func (t *Tracker) Close() error {
	t.history.Close()
	t.dashboard.Stop()
	return t.prefs.Close()
}
