package models

import "time"

// Sample is one raw observation pulled from the listings API.
type Sample struct {
	Timestamp int64   `json:"timestamp"` // Milliseconds since epoch
	Value     float64 `json:"value"`     // Charted attribute (price)
	Label     string  `json:"label"`     // Offer title
}

// ChartPoint is the unit handed to the scale mapper and renderers.
type ChartPoint struct {
	X     int64   `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// ActivityBar counts raw samples in the half-open interval [Start, End).
type ActivityBar struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
	Count int   `json:"count"`
}

type Observation struct {
	ID         string         `json:"id"`
	CategoryID string         `json:"category_id"`
	Filters    map[string]any `json:"filters"`
	Label      string         `json:"label"` // e.g. "1234 keywords:iphone state:used"
}

type Preferences struct {
	PollIntervalMs      int64 `json:"poll_interval_ms"`
	DashboardIntervalMs int64 `json:"dashboard_interval_ms"`
}

// PollInterval returns the per-selection interval as a duration.
func (p Preferences) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalMs) * time.Millisecond
}

// DashboardInterval returns the dashboard-wide interval as a duration.
func (p Preferences) DashboardInterval() time.Duration {
	return time.Duration(p.DashboardIntervalMs) * time.Millisecond
}

// FieldPaths are JSONPath expressions used to project listing records into samples.
type FieldPaths struct {
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Value     string `json:"value" yaml:"value"`
	Label     string `json:"label" yaml:"label"`
}

type ChartFrameConfig struct {
	Width         float64 `json:"width" yaml:"width"`
	Height        float64 `json:"height" yaml:"height"`
	PaddingTop    float64 `json:"padding_top" yaml:"padding_top"`
	PaddingRight  float64 `json:"padding_right" yaml:"padding_right"`
	PaddingBottom float64 `json:"padding_bottom" yaml:"padding_bottom"`
	PaddingLeft   float64 `json:"padding_left" yaml:"padding_left"`
}

// TrackerConfig is the hot-reloadable tracker file (configs.yaml or configs.json).
type TrackerConfig struct {
	APIURL       string           `json:"api_url" yaml:"api_url"`
	Fields       FieldPaths       `json:"fields" yaml:"fields"`
	DefaultRange string           `json:"default_range" yaml:"default_range"`
	Averaging    bool             `json:"averaging" yaml:"averaging"`
	Timezone     string           `json:"timezone" yaml:"timezone"`
	Frame        ChartFrameConfig `json:"frame" yaml:"frame"`
}

type SchedulerStatus struct {
	Name     string `json:"name"`
	Running  bool   `json:"running"`
	Target   string `json:"target,omitempty"`
	Interval string `json:"interval,omitempty"`
	RunID    string `json:"run_id,omitempty"`
	Runs     uint64 `json:"runs"`
}

type ProcessStatus struct {
	PID         int32   `json:"pid"`
	RSSBytes    uint64  `json:"rss_bytes"`
	CPUPercent  float64 `json:"cpu_percent"`
	Goroutines  int     `json:"goroutines"`
	LoadAvg1    float64 `json:"load_avg_1"`
	LoadAvg5    float64 `json:"load_avg_5"`
	LoadAvg15   float64 `json:"load_avg_15"`
	MemUsedPct  float64 `json:"mem_used_pct"`
	CollectedAt string  `json:"collected_at"`
}

type TrackerStatus struct {
	Selection  string            `json:"selection,omitempty"`
	Samples    int               `json:"samples"`
	Schedulers []SchedulerStatus `json:"schedulers"`
	Process    *ProcessStatus    `json:"process,omitempty"`
}
