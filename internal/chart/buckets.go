package chart

import (
	"fmt"
	"slices"
	"sort"

	"offer-tracker/internal/api/models"
)

// Bucket groups the points whose timestamp falls at or before Edge and
// after the previous edge.
type Bucket struct {
	Edge    int64
	Members []models.ChartPoint
}

// Buckets partitions sorted points into right-aligned buckets of width stride.
// Edges are the multiples of stride inside [minX, maxX], plus minX when the
// first multiple lies after it and maxX when the last multiple lies before it.
// Each point goes to the first edge >= its timestamp. Only non-empty buckets
// are returned.
func Buckets(points []models.ChartPoint, stride int64) []Bucket {
	if len(points) == 0 || stride <= 0 {
		return nil
	}

	e := newEdgeSet(points[0].X, points[len(points)-1].X, stride)
	var buckets []Bucket
	for i := 0; i < len(points); {
		edge := e.edgeFor(points[i].X)
		j := i + 1
		for j < len(points) && points[j].X <= edge {
			j++
		}
		buckets = append(buckets, Bucket{Edge: edge, Members: slices.Clone(points[i:j])})
		i = j
	}
	return buckets
}

// Aggregate reduces each non-empty bucket to one point at the bucket edge
// holding the mean value.
func Aggregate(points []models.ChartPoint, stride int64) []models.ChartPoint {
	buckets := Buckets(points, stride)
	if len(buckets) == 0 {
		return nil
	}

	out := make([]models.ChartPoint, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, models.ChartPoint{
			X:     b.Edge,
			Y:     b.Mean(),
			Label: fmt.Sprintf("Avg (%d)", len(b.Members)),
		})
	}
	return out
}

// Mean is the arithmetic mean of the member values, clamped to their range.
func (b Bucket) Mean() float64 {
	if len(b.Members) == 0 {
		return 0
	}
	lo, hi := b.Members[0].Y, b.Members[0].Y
	sum := 0.0
	for _, m := range b.Members {
		sum += m.Y
		lo = min(lo, m.Y)
		hi = max(hi, m.Y)
	}
	return min(max(sum/float64(len(b.Members)), lo), hi)
}

type edgeSet struct {
	minX, maxX int64
	first      int64
	stride     int64
	lead       bool
}

func newEdgeSet(minX, maxX, stride int64) edgeSet {
	first := ceilMultiple(minX, stride)
	return edgeSet{minX: minX, maxX: maxX, first: first, stride: stride, lead: first > minX}
}

func (e edgeSet) edgeFor(x int64) int64 {
	if e.lead && x <= e.minX {
		return e.minX
	}
	if c := ceilMultiple(x, e.stride); c <= e.maxX {
		return c
	}
	return e.maxX
}

// Activity counts raw points per consecutive tick pair [t_i, t_i+1).
func Activity(raw []models.ChartPoint, ticks []int64) []models.ActivityBar {
	if len(ticks) < 2 || len(raw) == 0 {
		return nil
	}

	bars := make([]models.ActivityBar, 0, len(ticks)-1)
	for i := 0; i+1 < len(ticks); i++ {
		start, end := ticks[i], ticks[i+1]
		lo := sort.Search(len(raw), func(k int) bool { return raw[k].X >= start })
		hi := sort.Search(len(raw), func(k int) bool { return raw[k].X >= end })
		bars = append(bars, models.ActivityBar{Start: start, End: end, Count: max(hi-lo, 0)})
	}
	return bars
}

// MaxActivity is the largest bar count, never less than 1.
func MaxActivity(bars []models.ActivityBar) int {
	m := 1
	for _, b := range bars {
		m = max(m, b.Count)
	}
	return m
}
