package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"offer-tracker/internal/api/models"
	"offer-tracker/internal/chart"
)

type DashboardProps struct {
	Observations []models.Observation
	Selected     string
	Range        chart.Range
	Averaging    bool
	Preferences  models.Preferences
	Chart        ChartProps
	// Error is shown above the selector when the observation list failed to load.
	Error string
}

// DashboardPage is the full price history page. The chart area is refreshed
// from /components/price-chart.html by dashboard.js.
func DashboardPage(props DashboardProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString(`<title>Price History</title><link rel="stylesheet" href="/assets/dashboard.css"></head>`)
		fmt.Fprintf(&b, `<body><main class="page" data-poll-ms="%d">`, props.Preferences.PollIntervalMs)
		b.WriteString(`<h2>Price History</h2>`)
		if props.Error != "" {
			fmt.Fprintf(&b, `<p class="error">%s</p>`, templ.EscapeString(props.Error))
		}

		b.WriteString(`<section class="controls"><label for="observation">Select Observation</label>`)
		b.WriteString(`<select id="observation" name="observation"><option value="">-- Select --</option>`)
		for _, obs := range props.Observations {
			selected := ""
			if obs.CategoryID == props.Selected {
				selected = " selected"
			}
			fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`,
				templ.EscapeString(obs.CategoryID), selected, templ.EscapeString(obs.Label))
		}
		b.WriteString(`</select>`)

		b.WriteString(`<label>Time Step</label><div class="ranges" role="group">`)
		for _, r := range chart.Ranges() {
			class := "range"
			if r.Key == props.Range.Key {
				class += " active"
			}
			fmt.Fprintf(&b, `<button type="button" class="%s" data-range="%s">%s</button>`,
				class, templ.EscapeString(string(r.Key)), templ.EscapeString(r.Label))
		}
		b.WriteString(`</div>`)

		checked := ""
		if props.Averaging {
			checked = " checked"
		}
		fmt.Fprintf(&b, `<label class="toggle"><input type="checkbox" id="averaging"%s> Averaging</label>`, checked)

		b.WriteString(`<form id="preferences" class="preferences">`)
		fmt.Fprintf(&b, `<label>Refresh every (ms) <input type="number" min="1" name="poll_interval_ms" value="%d"></label>`,
			props.Preferences.PollIntervalMs)
		fmt.Fprintf(&b, `<label>Refresh all observations every (ms) <input type="number" min="1" name="dashboard_interval_ms" value="%d"></label>`,
			props.Preferences.DashboardIntervalMs)
		b.WriteString(`<button type="submit">Save</button></form></section>`)

		b.WriteString(`<section id="chart" class="chart">`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if props.Selected != "" {
			if err := ChartSection(props.Chart).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</section></main><script src="/js/dashboard.js" defer></script></body></html>`)
		return err
	})
}
