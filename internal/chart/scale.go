package chart

import "offer-tracker/internal/api/models"

type Padding struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Frame is the drawing area of a chart including its padding.
type Frame struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding Padding `json:"padding"`
}

func DefaultFrame() Frame {
	return Frame{
		Width:   800,
		Height:  400,
		Padding: Padding{Top: 40, Right: 60, Bottom: 60, Left: 80},
	}
}

// FrameFromConfig applies non-zero values of cfg over DefaultFrame.
func FrameFromConfig(cfg models.ChartFrameConfig) Frame {
	f := DefaultFrame()
	set := func(dst *float64, v float64) {
		if v > 0 {
			*dst = v
		}
	}
	set(&f.Width, cfg.Width)
	set(&f.Height, cfg.Height)
	set(&f.Padding.Top, cfg.PaddingTop)
	set(&f.Padding.Right, cfg.PaddingRight)
	set(&f.Padding.Bottom, cfg.PaddingBottom)
	set(&f.Padding.Left, cfg.PaddingLeft)
	return f
}

func (f Frame) InnerWidth() float64 {
	return f.Width - f.Padding.Left - f.Padding.Right
}

func (f Frame) InnerHeight() float64 {
	return f.Height - f.Padding.Top - f.Padding.Bottom
}

// Baseline is the y coordinate of the x axis.
func (f Frame) Baseline() float64 {
	return f.Height - f.Padding.Bottom
}

// Scale maps data space onto a Frame. A zero-width domain maps every value
// onto the padding origin instead of dividing by zero.
type Scale struct {
	Frame Frame   `json:"frame"`
	MinX  int64   `json:"min_x"`
	MaxX  int64   `json:"max_x"`
	MinY  float64 `json:"min_y"`
	MaxY  float64 `json:"max_y"`
}

// NewScale derives the domain from sorted points. The y domain always
// includes 0 and 1, so an empty series maps onto [0, 1].
func NewScale(frame Frame, points []models.ChartPoint) Scale {
	s := Scale{Frame: frame, MinY: 0, MaxY: 1}
	if len(points) == 0 {
		return s
	}
	s.MinX, s.MaxX = points[0].X, points[len(points)-1].X
	for _, p := range points {
		s.MinY = min(s.MinY, p.Y)
		s.MaxY = max(s.MaxY, p.Y)
	}
	return s
}

func (s Scale) MapX(t int64) float64 {
	span := float64(s.MaxX - s.MinX)
	if span == 0 {
		span = 1
	}
	return s.Frame.Padding.Left + float64(t-s.MinX)/span*s.Frame.InnerWidth()
}

func (s Scale) MapY(v float64) float64 {
	span := s.MaxY - s.MinY
	if span == 0 {
		span = 1
	}
	return s.Frame.Baseline() - (v-s.MinY)/span*s.Frame.InnerHeight()
}

// YTicks returns minY, four evenly spaced interior values, and maxY.
func (s Scale) YTicks() []float64 {
	ticks := make([]float64, 0, 6)
	ticks = append(ticks, s.MinY)
	for i := 1; i <= 4; i++ {
		ticks = append(ticks, s.MinY+(s.MaxY-s.MinY)*float64(i)/5)
	}
	return append(ticks, s.MaxY)
}
