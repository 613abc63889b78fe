package chart

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"offer-tracker/internal/api/models"
)

func TestScaleMapping(t *testing.T) {
	frame := DefaultFrame()
	s := NewScale(frame, pts(0, 0, 100, 10))

	if got := s.MapX(50); got != 410 {
		t.Errorf("MapX(50) = %f, want 410", got)
	}
	if got := s.MapX(0); got != frame.Padding.Left {
		t.Errorf("MapX(min) = %f, want left padding", got)
	}
	if got := s.MapX(100); got != frame.Width-frame.Padding.Right {
		t.Errorf("MapX(max) = %f, want right edge", got)
	}
	if got := s.MapY(5); got != 190 {
		t.Errorf("MapY(5) = %f, want 190", got)
	}
	if got := s.MapY(10); got != frame.Padding.Top {
		t.Errorf("MapY(max) = %f, want top padding", got)
	}
}

func TestScaleZeroSpan(t *testing.T) {
	frame := DefaultFrame()
	points := []models.ChartPoint{{X: 5000, Y: 1}, {X: 5000, Y: 2}, {X: 5000, Y: 3}}
	s := NewScale(frame, points)

	for _, p := range points {
		x := s.MapX(p.X)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			t.Fatalf("MapX produced %f for a zero-width domain", x)
		}
		if x != frame.Padding.Left {
			t.Errorf("MapX(%d) = %f, want %f", p.X, x, frame.Padding.Left)
		}
	}

	flat := Scale{Frame: frame, MinY: 4, MaxY: 4}
	if y := flat.MapY(4); y != frame.Baseline() {
		t.Errorf("flat MapY = %f, want baseline %f", y, frame.Baseline())
	}
}

func TestScaleEmptySeries(t *testing.T) {
	s := NewScale(DefaultFrame(), nil)
	if s.MinY != 0 || s.MaxY != 1 {
		t.Errorf("expected default y domain [0, 1], got [%f, %f]", s.MinY, s.MaxY)
	}
	if y := s.MapY(0); y != 340 {
		t.Errorf("MapY(0) = %f, want 340", y)
	}
	if x := s.MapX(0); x != 80 {
		t.Errorf("MapX(0) = %f, want 80", x)
	}
}

func TestScaleYDomainIncludesZero(t *testing.T) {
	s := NewScale(DefaultFrame(), pts(0, 120, 10, 80))
	if s.MinY != 0 || s.MaxY != 120 {
		t.Errorf("expected y domain [0, 120], got [%f, %f]", s.MinY, s.MaxY)
	}
	s = NewScale(DefaultFrame(), pts(0, -20, 10, 0.5))
	if s.MinY != -20 || s.MaxY != 1 {
		t.Errorf("expected y domain [-20, 1], got [%f, %f]", s.MinY, s.MaxY)
	}
}

func TestYTicks(t *testing.T) {
	s := NewScale(DefaultFrame(), pts(0, 0, 1, 10))
	if diff := cmp.Diff([]float64{0, 2, 4, 6, 8, 10}, s.YTicks()); diff != "" {
		t.Errorf("y ticks mismatch (-want +got):\n%s", diff)
	}
}

func TestFrameFromConfig(t *testing.T) {
	f := FrameFromConfig(models.ChartFrameConfig{Width: 1200, PaddingLeft: 100})
	want := DefaultFrame()
	want.Width = 1200
	want.Padding.Left = 100
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("frame mismatch (-want +got):\n%s", diff)
	}
	if f.InnerWidth() != 1040 || f.InnerHeight() != 300 {
		t.Errorf("unexpected inner size %fx%f", f.InnerWidth(), f.InnerHeight())
	}
}
