// Package chart turns sorted price samples into chart series, axis ticks,
// activity histograms and draw-space coordinates.
package chart

import (
	"encoding/json"
	"strings"
	"time"
)

type Granularity string

const (
	GranularityMinute    Granularity = "1m"
	GranularityHour      Granularity = "1h"
	GranularityFourHours Granularity = "4h"
	GranularityDay       Granularity = "1d"
	GranularityAuto      Granularity = "auto"
)

// Range is one selectable time step. A zero Width means the step is
// derived from the data span.
type Range struct {
	Key   Granularity
	Label string
	Width time.Duration
}

var catalog = [...]Range{
	{Key: GranularityMinute, Label: "1 Minute", Width: time.Minute},
	{Key: GranularityHour, Label: "1 Hour", Width: time.Hour},
	{Key: GranularityFourHours, Label: "4 Hours", Width: 4 * time.Hour},
	{Key: GranularityDay, Label: "1 Day", Width: 24 * time.Hour},
	{Key: GranularityAuto, Label: "Auto"},
}

// Ranges returns the catalog in display order.
func Ranges() []Range {
	out := make([]Range, len(catalog))
	copy(out, catalog[:])
	return out
}

// LookupRange resolves a range key. "all" is accepted as an alias of "auto".
func LookupRange(key string) (Range, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "all" {
		k = string(GranularityAuto)
	}
	for _, r := range catalog {
		if string(r.Key) == k {
			return r, true
		}
	}
	return Range{}, false
}

// DefaultRange is the range selected when nothing else is configured.
func DefaultRange() Range {
	r, _ := LookupRange(string(GranularityHour))
	return r
}

// RangeOrDefault resolves key, falling back to DefaultRange.
func RangeOrDefault(key string) Range {
	if r, ok := LookupRange(key); ok {
		return r
	}
	return DefaultRange()
}

func (r Range) IsAuto() bool {
	return r.Width <= 0
}

// Stride is the bucket and tick width in milliseconds; 0 for auto.
func (r Range) Stride() int64 {
	if r.IsAuto() {
		return 0
	}
	return r.Width.Milliseconds()
}

func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key     Granularity `json:"key"`
		Label   string      `json:"label"`
		WidthMs int64       `json:"width_ms"`
		Auto    bool        `json:"auto"`
	}{r.Key, r.Label, r.Stride(), r.IsAuto()})
}

// UnmarshalJSON resolves the key against the catalog; unknown keys fall back
// to DefaultRange.
func (r *Range) UnmarshalJSON(data []byte) error {
	var raw struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = RangeOrDefault(raw.Key)
	return nil
}
