// Package views renders the dashboard and its SVG charts as templ components.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"offer-tracker/internal/chart"
)

const (
	tickSlotPx         = 40
	activitySlotPx     = 60
	activityAxisX      = 40.0
	minPriceChartPx    = 800
	minActivityChartPx = 400
)

// ChartProps is the input of the chart fragment.
type ChartProps struct {
	View     chart.View
	Location *time.Location
	Title    string
}

// ChartSection renders the price chart next to the activity histogram, or
// the insufficient data message when there is nothing to draw.
func ChartSection(props ChartProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if props.View.Insufficient {
			return InsufficientData(props.View.Message).Render(ctx, w)
		}
		if _, err := io.WriteString(w, `<div class="chart-row" id="chart-row">`); err != nil {
			return err
		}
		if err := PriceChart(props).Render(ctx, w); err != nil {
			return err
		}
		if err := ActivityChart(props).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func InsufficientData(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if message == "" {
			message = chart.InsufficientDataMessage
		}
		_, err := fmt.Fprintf(w, `<p class="chart-empty" id="chart-empty">%s</p>`, templ.EscapeString(message))
		return err
	})
}

// PriceChart draws axes, tick labels, the series line, its dots and price labels.
func PriceChart(props ChartProps) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		v := props.View
		s := v.Scale
		f := s.Frame
		base := f.Baseline()
		width := max(minPriceChartPx, tickSlotPx*len(v.Ticks))

		var b strings.Builder
		fmt.Fprintf(&b, `<svg class="price-chart" width="%d" height="%s" role="img" aria-label="%s">`,
			width, num(f.Height), templ.EscapeString(props.Title))
		fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#888"/>`,
			num(f.Padding.Left), num(base), num(f.Width-f.Padding.Right), num(base))
		fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#888"/>`,
			num(f.Padding.Left), num(f.Padding.Top), num(f.Padding.Left), num(base))

		for _, t := range v.Ticks {
			x := s.MapX(t)
			fmt.Fprintf(&b, `<g class="x-tick"><line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#888"/>`,
				num(x), num(base), num(x), num(base+5))
			fmt.Fprintf(&b, `<text x="%s" y="%s" text-anchor="middle" fill="#666">%s</text></g>`,
				num(x), num(base+20), templ.EscapeString(chart.FormatTick(t, v.Range.Key, props.Location)))
		}
		for _, yv := range v.YTicks {
			y := s.MapY(yv)
			fmt.Fprintf(&b, `<g class="y-tick"><line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#888"/>`,
				num(f.Padding.Left), num(y), num(f.Padding.Left-5), num(y))
			fmt.Fprintf(&b, `<text x="%s" y="%s" text-anchor="end" dominant-baseline="middle" fill="#666">%s</text></g>`,
				num(f.Padding.Left-10), num(y), templ.EscapeString(chart.FormatPrice(yv)))
		}

		fmt.Fprintf(&b, `<text x="%s" y="%s" text-anchor="middle" fill="#666">Date</text>`, num(f.Width/2), num(f.Height-10))
		fmt.Fprintf(&b, `<text x="%s" y="20" text-anchor="middle" fill="#666" transform="rotate(-90)">Price (PLN)</text>`, num(-f.Height/2))

		coords := make([]string, 0, len(v.Points))
		for _, p := range v.Points {
			coords = append(coords, num(s.MapX(p.X))+","+num(s.MapY(p.Y)))
		}
		fmt.Fprintf(&b, `<polyline fill="none" stroke="#2563eb" stroke-width="2" points="%s"/>`, strings.Join(coords, " "))

		for _, p := range v.Points {
			x, y := s.MapX(p.X), s.MapY(p.Y)
			fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="4" fill="#2563eb"><title>%s</title></circle>`,
				num(x), num(y), templ.EscapeString(p.Label))
			fmt.Fprintf(&b, `<text class="price-label" x="%s" y="%s" font-size="10" text-anchor="middle" fill="#2563eb">%s</text>`,
				num(x), num(y-10), templ.EscapeString(chart.FormatPrice(p.Y)))
		}
		b.WriteString(`</svg>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ActivityChart draws one bar per tick interval scaled to the busiest one.
func ActivityChart(props ChartProps) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		v := props.View
		f := v.Scale.Frame
		base := f.Baseline()
		inner := f.InnerHeight()
		width := max(minActivityChartPx, activitySlotPx*len(v.Ticks))
		peak := float64(max(v.MaxActivity, 1))

		var b strings.Builder
		fmt.Fprintf(&b, `<svg class="activity-chart" width="%d" height="%s" role="img" aria-label="Offer activity">`, width, num(f.Height))
		fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#888"/>`,
			num(activityAxisX), num(f.Padding.Top), num(activityAxisX), num(base))
		fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%d" y2="%s" stroke="#888"/>`,
			num(activityAxisX), num(base), width-10, num(base))

		for i, bar := range v.Activity {
			h := float64(bar.Count) / peak * inner
			x := activityAxisX + float64(i*activitySlotPx)
			fmt.Fprintf(&b, `<rect x="%s" y="%s" width="%d" height="%s" fill="#60a5fa"><title>%s to %s: %d</title></rect>`,
				num(x+8), num(base-h), activitySlotPx-16, num(h),
				templ.EscapeString(chart.FormatTick(bar.Start, v.Range.Key, props.Location)),
				templ.EscapeString(chart.FormatTick(bar.End, v.Range.Key, props.Location)),
				bar.Count)
			if bar.Count > 0 {
				fmt.Fprintf(&b, `<text x="%s" y="%s" text-anchor="middle" font-size="10" fill="#2563eb">%d</text>`,
					num(x+activitySlotPx/2), num(base-h-6), bar.Count)
			}
		}
		b.WriteString(`</svg>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// num prints coordinates with at most two decimals.
func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
