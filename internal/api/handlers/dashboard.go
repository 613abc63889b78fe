package handlers

import (
	"net/http"

	"github.com/a-h/templ"

	"offer-tracker/internal/api/logics"
	"offer-tracker/web/views"
)

const noSelectionMessage = "Select an observation to see its price history."

// DashboardHandler serves the main dashboard page
func DashboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	t, ok := requireTracker(w)
	if !ok {
		return
	}

	selection, rng, averaging := t.History().Settings()
	props := views.DashboardProps{
		Selected:    selection,
		Range:       rng,
		Averaging:   averaging,
		Preferences: t.Preferences(r.Context()),
		Chart:       chartProps(t, selection),
	}
	observations, err := t.Observations(r.Context())
	if err != nil {
		props.Error = "Could not load observations: " + err.Error()
	}
	props.Observations = observations

	templ.Handler(views.DashboardPage(props)).ServeHTTP(w, r)
}

// PriceChartComponentHandler serves the chart fragment polled by dashboard.js.
func PriceChartComponentHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := requireTracker(w)
	if !ok {
		return
	}
	selection := t.History().Selection()
	if selection == "" {
		templ.Handler(views.InsufficientData(noSelectionMessage)).ServeHTTP(w, r)
		return
	}
	templ.Handler(views.ChartSection(chartProps(t, selection))).ServeHTTP(w, r)
}

func chartProps(t *logics.Tracker, title string) views.ChartProps {
	return views.ChartProps{
		View:     t.History().View(),
		Location: t.Location(),
		Title:    title,
	}
}
