package chart

import "offer-tracker/internal/api/models"

const (
	// MaxVisibleTicks caps the number of x axis ticks regardless of span.
	MaxVisibleTicks = 20

	autoTickIntervals = 6
	minStrideTicks    = 3
)

// PlanTicks returns the x axis ticks for a sorted chart series.
func PlanTicks(points []models.ChartPoint, rng Range) []int64 {
	if len(points) == 0 {
		return nil
	}
	return PlanTicksForSpan(points[0].X, points[len(points)-1].X, rng)
}

// PlanTicksForSpan returns at most MaxVisibleTicks ticks covering [minX, maxX].
// The first tick is minX and the last is maxX.
func PlanTicksForSpan(minX, maxX int64, rng Range) []int64 {
	if maxX <= minX {
		return []int64{minX}
	}
	if rng.IsAuto() {
		return evenTicks(minX, maxX)
	}

	seq := newStrideSequence(minX, maxX, rng.Stride())
	if seq.Len() < minStrideTicks {
		return evenTicks(minX, maxX)
	}
	return seq.sample(MaxVisibleTicks)
}

func evenTicks(minX, maxX int64) []int64 {
	span := maxX - minX
	ticks := make([]int64, autoTickIntervals+1)
	for i := range ticks {
		ticks[i] = minX + span*int64(i)/autoTickIntervals
	}
	return ticks
}

// strideSequence addresses the candidate tick list
// [minX?] + aligned multiples of stride + [maxX?] without materializing it.
type strideSequence struct {
	minX, maxX  int64
	first       int64
	stride      int64
	aligned     int64
	lead, trail bool
}

func newStrideSequence(minX, maxX, stride int64) strideSequence {
	s := strideSequence{
		minX:   minX,
		maxX:   maxX,
		first:  ceilMultiple(minX, stride),
		stride: stride,
	}
	if s.first <= maxX {
		s.aligned = (maxX-s.first)/stride + 1
	}
	if s.aligned == 0 {
		s.lead, s.trail = true, true
		return s
	}
	s.lead = s.first != minX
	s.trail = s.first+(s.aligned-1)*stride != maxX
	return s
}

func (s strideSequence) Len() int64 {
	n := s.aligned
	if s.lead {
		n++
	}
	if s.trail {
		n++
	}
	return n
}

func (s strideSequence) At(i int64) int64 {
	if s.lead {
		if i == 0 {
			return s.minX
		}
		i--
	}
	if i < s.aligned {
		return s.first + i*s.stride
	}
	return s.maxX
}

// sample keeps every candidate when they fit the budget, otherwise picks
// index round(i*(n-1)/(budget-1)) so the first and last candidates survive.
func (s strideSequence) sample(budget int64) []int64 {
	n := s.Len()
	if n <= budget {
		out := make([]int64, n)
		for i := range out {
			out[i] = s.At(int64(i))
		}
		return out
	}

	out := make([]int64, budget)
	den := budget - 1
	for i := range out {
		idx := (2*int64(i)*(n-1) + den) / (2 * den)
		out[i] = s.At(idx)
	}
	return out
}

// ceilMultiple returns the smallest multiple of step that is >= x.
func ceilMultiple(x, step int64) int64 {
	q := x / step
	if x%step != 0 && x > 0 {
		q++
	}
	return q * step
}
