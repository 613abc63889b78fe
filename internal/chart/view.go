package chart

import (
	"math"

	"offer-tracker/internal/api/models"
)

// InsufficientDataMessage is shown instead of a chart with fewer than two points.
const InsufficientDataMessage = "Not enough price data to display a graph for this observation."

type Options struct {
	Range     Range
	Averaging bool
	Frame     Frame
}

// View is everything needed to draw the price chart and the activity chart.
// It is rebuilt from scratch on every refresh or option change.
type View struct {
	Range        Range                `json:"range"`
	Averaging    bool                 `json:"averaging"`
	Raw          []models.ChartPoint  `json:"raw"`
	Points       []models.ChartPoint  `json:"points"`
	Ticks        []int64              `json:"ticks"`
	YTicks       []float64            `json:"y_ticks"`
	Activity     []models.ActivityBar `json:"activity"`
	MaxActivity  int                  `json:"max_activity"`
	Scale        Scale                `json:"scale"`
	Insufficient bool                 `json:"insufficient"`
	Message      string               `json:"message,omitempty"`
}

// Points converts sorted samples into chart points one to one.
func Points(samples []models.Sample) []models.ChartPoint {
	points := make([]models.ChartPoint, 0, len(samples))
	for _, s := range samples {
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			continue
		}
		points = append(points, models.ChartPoint{X: s.Timestamp, Y: s.Value, Label: s.Label})
	}
	return points
}

// Build runs the whole pipeline over samples sorted by timestamp.
func Build(samples []models.Sample, opts Options) View {
	if opts.Frame == (Frame{}) {
		opts.Frame = DefaultFrame()
	}
	if opts.Range.Key == "" {
		opts.Range = DefaultRange()
	}

	raw := Points(samples)
	points := raw
	if opts.Averaging && len(raw) > 0 && !opts.Range.IsAuto() {
		points = Aggregate(raw, opts.Range.Stride())
	}

	v := View{
		Range:     opts.Range,
		Averaging: opts.Averaging,
		Raw:       raw,
		Points:    points,
		Scale:     NewScale(opts.Frame, points),
		Ticks:     PlanTicks(points, opts.Range),
	}
	v.Activity = Activity(raw, v.Ticks)
	v.MaxActivity = MaxActivity(v.Activity)
	if len(points) > 0 {
		v.YTicks = v.Scale.YTicks()
	}
	if len(points) <= 1 {
		v.Insufficient = true
		v.Message = InsufficientDataMessage
	}
	return v
}
