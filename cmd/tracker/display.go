package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"offer-tracker/internal/api/models"
	"offer-tracker/internal/chart"
)

const (
	barWidth   = 40
	labelWidth = 14
	priceWidth = 14
)

func renderChart(w io.Writer, view chart.View, label string, loc *time.Location) {
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintf(w, "PRICE HISTORY  %s\n", label)
	mode := "raw"
	if view.Averaging {
		mode = "averaged"
	}
	fmt.Fprintf(w, "Time step: %s (%s)\n\n", view.Range.Label, mode)

	if view.Insufficient {
		color.New(color.FgYellow).Fprintln(w, view.Message)
		return
	}

	title.Fprintln(w, "Points")
	var prev float64
	for i, p := range view.Points {
		price := fmt.Sprintf("%*s", priceWidth, chart.FormatPrice(p.Y))
		fmt.Fprintf(w, "  %-*s %s  %s\n",
			labelWidth, chart.FormatTick(p.X, view.Range.Key, loc),
			trendColor(i, prev, p.Y).Sprint(price),
			truncateString(p.Label, 40))
		prev = p.Y
	}

	fmt.Fprintln(w)
	title.Fprintln(w, "Activity")
	for _, b := range view.Activity {
		fmt.Fprintf(w, "  %-*s %s %d\n",
			labelWidth, chart.FormatTick(b.Start, view.Range.Key, loc),
			color.New(color.FgBlue).Sprint(bar(b.Count, view.MaxActivity, barWidth)),
			b.Count)
	}
}

// trendColor paints a price green when it dropped against the previous
// point and red when it rose.
func trendColor(i int, prev, cur float64) *color.Color {
	switch {
	case i == 0 || cur == prev:
		return color.New(color.Reset)
	case cur < prev:
		return color.New(color.FgGreen, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// bar scales count against peak onto width cells.
func bar(count, peak, width int) string {
	if count <= 0 || peak <= 0 {
		return ""
	}
	n := max(count*width/peak, 1)
	return strings.Repeat("█", min(n, width))
}

func printRanges(w io.Writer) {
	for _, r := range chart.Ranges() {
		stride := "adaptive"
		if !r.IsAuto() {
			stride = time.Duration(r.Stride() * int64(time.Millisecond)).String()
		}
		fmt.Fprintf(w, "%-5s %-10s %s\n", r.Key, r.Label, stride)
	}
}

func printObservations(w io.Writer, observations []models.Observation) {
	if len(observations) == 0 {
		fmt.Fprintln(w, "No observations registered")
		return
	}
	for _, o := range observations {
		fmt.Fprintf(w, "%-8s %s\n", o.CategoryID, o.Label)
	}
}

func printError(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "ERROR: %v\n", err)
}

func clearScreen() {
	fmt.Print("\033[H\033[2J")
}

func cleanup() {
	fmt.Print("\033[?25h") // Show cursor
	fmt.Print("\033[0m")   // Reset colors
	fmt.Println("\nGoodbye!")
}

func truncateString(s string, length int) string {
	if len([]rune(s)) <= length {
		return s
	}
	return string([]rune(s)[:length-3]) + "..."
}
