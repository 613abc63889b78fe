package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"offer-tracker/internal/api/handlers"
	webstatic "offer-tracker/web"
)

// NewRouter creates and configures the main Chi router
func NewRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	setupDashboardRoutes(r)
	setupAPIRoutes(r)
	setupStaticRoutes(r)

	return r
}

// setupDashboardRoutes configures the page and its chart fragment
func setupDashboardRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(dashboardMiddleware)
		r.Use(wrapHandlerFuncMiddleware(handlers.RateLimitMiddleware))
		r.Use(wrapHandlerFuncMiddleware(handlers.CORSMiddleware))

		r.Get("/", handlers.DashboardHandler)
		r.Get("/components/price-chart.html", handlers.PriceChartComponentHandler)
	})
}

// setupAPIRoutes configures all API endpoints
func setupAPIRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(wrapHandlerFuncMiddleware(handlers.RateLimitMiddleware))
		r.Use(wrapHandlerFuncMiddleware(handlers.CORSMiddleware))

		// Read-only chart data, available regardless of dashboard status
		r.With(methodMiddleware("GET", "OPTIONS")).Get("/ranges", handlers.RangesHandler)
		r.With(methodMiddleware("GET", "OPTIONS")).Get("/observations", handlers.ObservationsHandler)
		r.With(methodMiddleware("GET", "OPTIONS")).Get("/history", handlers.HistoryHandler)
		r.With(methodMiddleware("GET", "OPTIONS")).Get("/history/export.xlsx", handlers.HistoryExportHandler)
		r.With(methodMiddleware("GET", "OPTIONS")).Get("/status", handlers.StatusHandler)

		// Session state driven by the dashboard
		r.Group(func(r chi.Router) {
			r.Use(dashboardMiddleware)
			r.Post("/selection", handlers.SelectionHandler)
			r.Delete("/selection", handlers.ClearSelectionHandler)
			r.Get("/selection/chart", handlers.SelectionChartHandler)
			r.Get("/preferences", handlers.PreferencesHandler)
			r.Put("/preferences", handlers.PreferencesHandler)
		})
	})
}

// setupStaticRoutes configures static file serving
func setupStaticRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(dashboardMiddleware)
		r.Use(wrapHandlerFuncMiddleware(handlers.RateLimitMiddleware))
		r.Use(wrapHandlerFuncMiddleware(handlers.CORSMiddleware))

		r.Handle("/js/*", http.StripPrefix("/js/", webstatic.GetJSHandler()))
		r.Handle("/assets/*", http.StripPrefix("/assets/", webstatic.GetAssetsHandler()))
	})
}

// dashboardMiddleware checks if dashboard is enabled
func dashboardMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !handlers.IsDashboardEnabled() {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// methodMiddleware restricts HTTP methods for endpoints
func methodMiddleware(allowedMethods ...string) func(http.Handler) http.Handler {
	return wrapHandlerFuncMiddleware(handlers.MethodMiddleware(allowedMethods...))
}

// wrapHandlerFuncMiddleware adapts http.HandlerFunc middleware to work with Chi's http.Handler middleware
func wrapHandlerFuncMiddleware(middleware func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return middleware(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
		})
	}
}
