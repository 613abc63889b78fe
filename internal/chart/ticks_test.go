package chart

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"offer-tracker/internal/api/models"
)

func mustRange(t *testing.T, key string) Range {
	t.Helper()
	r, ok := LookupRange(key)
	if !ok {
		t.Fatalf("range %q not in catalog", key)
	}
	return r
}

func TestPlanTicks(t *testing.T) {
	const minute = int64(60_000)

	tests := []struct {
		name  string
		minX  int64
		maxX  int64
		rng   string
		ticks []int64
	}{
		{
			name:  "degenerate span returns a single tick",
			minX:  1000,
			maxX:  1000,
			rng:   "1h",
			ticks: []int64{1000},
		},
		{
			name:  "auto uses six even intervals",
			minX:  0,
			maxX:  60_000,
			rng:   "auto",
			ticks: []int64{0, 10_000, 20_000, 30_000, 40_000, 50_000, 60_000},
		},
		{
			name:  "stride appends max when not aligned",
			minX:  0,
			maxX:  90_000,
			rng:   "1m",
			ticks: []int64{0, minute, 90_000},
		},
		{
			name:  "stride prepends min and appends max",
			minX:  30_000,
			maxX:  150_000,
			rng:   "1m",
			ticks: []int64{30_000, 60_000, 120_000, 150_000},
		},
		{
			name:  "stride wider than span falls back to even ticks",
			minX:  1000,
			maxX:  5000,
			rng:   "1d",
			ticks: []int64{1000, 1666, 2333, 3000, 3666, 4333, 5000},
		},
		{
			name:  "aligned bounds add nothing",
			minX:  0,
			maxX:  2 * minute,
			rng:   "1m",
			ticks: []int64{0, minute, 2 * minute},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanTicksForSpan(tt.minX, tt.maxX, mustRange(t, tt.rng))
			if diff := cmp.Diff(tt.ticks, got); diff != "" {
				t.Errorf("ticks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlanTicksEmptySeries(t *testing.T) {
	if got := PlanTicks(nil, DefaultRange()); len(got) != 0 {
		t.Errorf("expected no ticks for an empty series, got %v", got)
	}
	single := []models.ChartPoint{{X: 1000, Y: 5}}
	if diff := cmp.Diff([]int64{1000}, PlanTicks(single, mustRange(t, "auto"))); diff != "" {
		t.Errorf("single point ticks mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanTicksDownsamplesEvenly(t *testing.T) {
	const minute = int64(60_000)
	got := PlanTicksForSpan(0, 99*minute, mustRange(t, "1m"))

	if len(got) != MaxVisibleTicks {
		t.Fatalf("expected %d ticks, got %d", MaxVisibleTicks, len(got))
	}
	if got[0] != 0 || got[len(got)-1] != 99*minute {
		t.Errorf("expected first/last candidates to survive, got %d..%d", got[0], got[len(got)-1])
	}
	// index i maps to candidate round(i*99/19)
	if got[1] != 5*minute || got[2] != 10*minute {
		t.Errorf("unexpected sampling positions: %v", got[:3])
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("ticks must increase, got %d after %d", got[i], got[i-1])
		}
	}
}

func TestPlanTicksBoundsAndBudget(t *testing.T) {
	start := time.Date(2024, 3, 1, 7, 13, 21, 123_000_000, time.UTC).UnixMilli()
	spans := []time.Duration{
		time.Second,
		59 * time.Second,
		90 * time.Minute,
		5 * time.Hour,
		36 * time.Hour,
		30 * 24 * time.Hour,
		10 * 365 * 24 * time.Hour,
	}

	for _, rng := range Ranges() {
		for _, span := range spans {
			minX := start
			maxX := start + span.Milliseconds()
			ticks := PlanTicksForSpan(minX, maxX, rng)

			if len(ticks) == 0 || len(ticks) > MaxVisibleTicks {
				t.Fatalf("%s/%v: tick count %d out of bounds", rng.Key, span, len(ticks))
			}
			if ticks[0] != minX || ticks[len(ticks)-1] != maxX {
				t.Errorf("%s/%v: ticks %d..%d do not cover %d..%d", rng.Key, span, ticks[0], ticks[len(ticks)-1], minX, maxX)
			}
			for i := 1; i < len(ticks); i++ {
				if ticks[i] < ticks[i-1] {
					t.Errorf("%s/%v: ticks decrease at %d", rng.Key, span, i)
				}
			}
		}
	}
}

func TestCeilMultiple(t *testing.T) {
	tests := []struct{ x, step, want int64 }{
		{0, 10, 0},
		{1, 10, 10},
		{10, 10, 10},
		{11, 10, 20},
		{-5, 10, 0},
		{-15, 10, -10},
		{-20, 10, -20},
	}
	for _, tt := range tests {
		if got := ceilMultiple(tt.x, tt.step); got != tt.want {
			t.Errorf("ceilMultiple(%d, %d) = %d, want %d", tt.x, tt.step, got, tt.want)
		}
	}
}
