package logics

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"offer-tracker/internal/api/models"
	"offer-tracker/internal/chart"
	"offer-tracker/internal/utils"
)

type stubListings struct {
	stubSource
	refreshes atomic.Int32
	refreshed chan struct{}
}

func (s *stubListings) ListObservations(context.Context) ([]models.Observation, error) {
	return []models.Observation{{ID: "1", CategoryID: "A", Label: "A"}}, nil
}

func (s *stubListings) RefreshAll(context.Context) (int, error) {
	s.refreshes.Add(1)
	if s.refreshed != nil {
		select {
		case s.refreshed <- struct{}{}:
		default:
		}
	}
	return 1, nil
}

func newStubTracker(t *testing.T, api *stubListings, prefs utils.PreferenceStore) *Tracker {
	t.Helper()
	tr := NewTracker(context.Background(), api, prefs, models.TrackerConfig{DefaultRange: "1h", Timezone: "UTC"})
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestTrackerHistoryView(t *testing.T) {
	api := &stubListings{stubSource: stubSource{samples: map[string][]models.Sample{"A": hourly(3, 0)}}}
	tr := newStubTracker(t, api, nil)
	ctx := context.Background()

	v, err := tr.HistoryView(ctx, HistoryOptions{Observation: "A"})
	if err != nil {
		t.Fatal(err)
	}
	if v.Range.Key != chart.GranularityHour || len(v.Points) != 3 {
		t.Errorf("unexpected view: range %s, %d points", v.Range.Key, len(v.Points))
	}
	if tr.History().Selection() != "" {
		t.Errorf("one-shot views must not touch the selection")
	}

	if _, err := tr.HistoryView(ctx, HistoryOptions{Observation: "A", Range: "5m"}); !errors.Is(err, utils.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := tr.HistoryView(ctx, HistoryOptions{}); !errors.Is(err, utils.ErrMissingSelection) {
		t.Errorf("expected ErrMissingSelection, got %v", err)
	}
}

func TestTrackerUpdatePreferences(t *testing.T) {
	api := &stubListings{refreshed: make(chan struct{}, 1)}
	prefs := utils.NewMemoryPreferences()
	tr := newStubTracker(t, api, prefs)
	ctx := context.Background()

	if err := tr.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := tr.History().Select("A"); err != nil {
		t.Fatal(err)
	}

	want := models.Preferences{PollIntervalMs: 20, DashboardIntervalMs: 20}
	if err := tr.UpdatePreferences(ctx, want); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, tr.Preferences(ctx)); diff != "" {
		t.Errorf("preferences mismatch (-want +got):\n%s", diff)
	}

	status := tr.Status(false)
	for _, s := range status.Schedulers {
		if !s.Running || s.Interval != "20ms" {
			t.Errorf("scheduler %s not restarted with the new interval: %+v", s.Name, s)
		}
	}
	if status.Selection != "A" || status.Process != nil {
		t.Errorf("unexpected status %+v", status)
	}

	select {
	case <-api.refreshed:
	case <-time.After(5 * time.Second):
		t.Fatal("dashboard poller never refreshed all observations")
	}

	if err := tr.UpdatePreferences(ctx, models.Preferences{PollIntervalMs: -1, DashboardIntervalMs: 5}); !utils.IsValidationError(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestTrackerApplyConfig(t *testing.T) {
	tr := newStubTracker(t, &stubListings{}, nil)

	tr.ApplyConfig(models.TrackerConfig{DefaultRange: "1h", Timezone: "UTC", Frame: models.ChartFrameConfig{Width: 1200}})
	if got := tr.History().View().Scale.Frame.Width; got != 1200 {
		t.Errorf("expected frame width 1200 after reload, got %v", got)
	}
	if tr.Location() != time.UTC {
		t.Errorf("expected UTC location, got %v", tr.Location())
	}
	if tr.PreferencesBackend() != "memory" {
		t.Errorf("nil store must fall back to memory, got %s", tr.PreferencesBackend())
	}
}

func TestExportWorkbook(t *testing.T) {
	samples := []models.Sample{
		{Timestamp: 0, Value: 10, Label: "first"},
		{Timestamp: 3_600_000, Value: 20, Label: "second"},
	}
	view := chart.Build(samples, chart.Options{Range: chart.RangeOrDefault("1h")})

	buf, err := ExportWorkbook(view, "A", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(seriesSheet)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"A", "range 1 Hour", "averaging false"},
		{"Time", "Price", "Label"},
		{"1970-01-01 00:00:00", "10", "first"},
		{"1970-01-01 01:00:00", "20", "second"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("series sheet mismatch (-want +got):\n%s", diff)
	}

	raw, err := f.GetRows(rawSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 3 {
		t.Errorf("expected header plus 2 raw rows, got %d", len(raw))
	}
}

func TestTrackerRejectedPreferencesKeepStartup(t *testing.T) {
	prefs := utils.NewMemoryPreferences()
	tr := newStubTracker(t, &stubListings{}, prefs)
	ctx := context.Background()

	err := tr.UpdatePreferences(ctx, models.Preferences{PollIntervalMs: 60_000, DashboardIntervalMs: 10_000_000_000_000})
	if !utils.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if diff := cmp.Diff(DefaultPreferences(), tr.Preferences(ctx)); diff != "" {
		t.Errorf("rejected update must not be stored (-want +got):\n%s", diff)
	}

	_ = prefs.Set(ctx, utils.PrefDashboardInterval, "10000000000000")
	next := newStubTracker(t, &stubListings{}, prefs)
	if err := next.Start(ctx); err != nil {
		t.Fatalf("out of range stored interval must fall back to the default, got %v", err)
	}
}
