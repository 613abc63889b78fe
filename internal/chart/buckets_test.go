package chart

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"offer-tracker/internal/api/models"
)

func pts(xy ...float64) []models.ChartPoint {
	out := make([]models.ChartPoint, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, models.ChartPoint{X: int64(xy[i]), Y: xy[i+1]})
	}
	return out
}

func TestAggregate(t *testing.T) {
	const minute = 60_000

	tests := []struct {
		name   string
		points []models.ChartPoint
		stride int64
		want   []models.ChartPoint
	}{
		{
			name:   "boundary forcing keeps first and last samples",
			points: pts(0, 10, 30_000, 20, 90_000, 30),
			stride: minute,
			want: []models.ChartPoint{
				{X: 0, Y: 10, Label: "Avg (1)"},
				{X: 60_000, Y: 20, Label: "Avg (1)"},
				{X: 90_000, Y: 30, Label: "Avg (1)"},
			},
		},
		{
			name:   "leading edge at min produces an uneven first bucket",
			points: pts(10_000, 1, 20_000, 3, 70_000, 5),
			stride: minute,
			want: []models.ChartPoint{
				{X: 10_000, Y: 1, Label: "Avg (1)"},
				{X: 60_000, Y: 3, Label: "Avg (1)"},
				{X: 70_000, Y: 5, Label: "Avg (1)"},
			},
		},
		{
			name:   "means per right-aligned bucket",
			points: pts(0, 2, 10_000, 4, 50_000, 6, 60_000, 8, 61_000, 10, 119_000, 20, 130_000, 30),
			stride: minute,
			want: []models.ChartPoint{
				{X: 0, Y: 2, Label: "Avg (1)"},
				{X: 60_000, Y: 6, Label: "Avg (3)"},
				{X: 120_000, Y: 15, Label: "Avg (2)"},
				{X: 130_000, Y: 30, Label: "Avg (1)"},
			},
		},
		{
			name:   "empty buckets are dropped",
			points: pts(0, 1, 10*minute, 2),
			stride: minute,
			want: []models.ChartPoint{
				{X: 0, Y: 1, Label: "Avg (1)"},
				{X: 10 * minute, Y: 2, Label: "Avg (1)"},
			},
		},
		{
			name:   "ties share a bucket",
			points: pts(5_000, 1, 5_000, 3),
			stride: minute,
			want: []models.ChartPoint{
				{X: 5_000, Y: 2, Label: "Avg (2)"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.points, tt.stride)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("aggregate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAggregateDegenerateInput(t *testing.T) {
	if got := Aggregate(nil, 60_000); got != nil {
		t.Errorf("expected nil for no points, got %v", got)
	}
	if got := Aggregate(pts(0, 1), 0); got != nil {
		t.Errorf("expected nil for a zero stride, got %v", got)
	}
}

func randomSeries(r *rand.Rand, n int) []models.ChartPoint {
	out := make([]models.ChartPoint, n)
	x := r.Int63n(10_000_000)
	for i := range out {
		x += r.Int63n(200_000)
		out[i] = models.ChartPoint{X: x, Y: float64(r.Intn(5000))}
	}
	return out
}

func TestBucketsProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	strides := []int64{60_000, 3_600_000, 4 * 3_600_000, 86_400_000}

	for trial := 0; trial < 200; trial++ {
		points := randomSeries(r, 1+r.Intn(300))
		stride := strides[trial%len(strides)]

		buckets := Buckets(points, stride)
		members := 0
		for i, b := range buckets {
			if len(b.Members) == 0 {
				t.Fatalf("trial %d: empty bucket emitted", trial)
			}
			if i > 0 && b.Edge <= buckets[i-1].Edge {
				t.Fatalf("trial %d: edges not increasing: %d after %d", trial, b.Edge, buckets[i-1].Edge)
			}
			lo, hi := b.Members[0].Y, b.Members[0].Y
			for _, m := range b.Members {
				if m.X > b.Edge {
					t.Fatalf("trial %d: member %d after edge %d", trial, m.X, b.Edge)
				}
				lo, hi = min(lo, m.Y), max(hi, m.Y)
			}
			if mean := b.Mean(); mean < lo || mean > hi {
				t.Fatalf("trial %d: mean %f outside [%f, %f]", trial, mean, lo, hi)
			}
			members += len(b.Members)
		}
		if members != len(points) {
			t.Fatalf("trial %d: %d of %d samples assigned", trial, members, len(points))
		}

		first := Aggregate(points, stride)
		second := Aggregate(points, stride)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("trial %d: aggregate is not idempotent:\n%s", trial, diff)
		}
		if first[0].X != points[0].X || first[len(first)-1].X != points[len(points)-1].X {
			t.Fatalf("trial %d: series does not span the samples", trial)
		}
	}
}

func TestActivity(t *testing.T) {
	raw := pts(0, 1, 10, 1, 20, 1, 30, 1)

	got := Activity(raw, []int64{0, 15, 30})
	want := []models.ActivityBar{
		{Start: 0, End: 15, Count: 2},
		{Start: 15, End: 30, Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("activity mismatch (-want +got):\n%s", diff)
	}
	if MaxActivity(got) != 2 {
		t.Errorf("expected max activity 2, got %d", MaxActivity(got))
	}

	if got := Activity(raw, []int64{0}); got != nil {
		t.Errorf("expected no bars for a single tick, got %v", got)
	}
	if got := Activity(nil, []int64{0, 10}); got != nil {
		t.Errorf("expected no bars without samples, got %v", got)
	}
	if MaxActivity(nil) != 1 {
		t.Errorf("expected max activity floor of 1")
	}
}
