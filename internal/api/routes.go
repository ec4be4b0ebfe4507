package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all routes.
// metricsHandler may be nil.
func SetupRoutes(h *Handlers, health *HealthChecker, allowedOrigins []string, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", SessionHeader},
		ExposedHeaders:   []string{SessionHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if health != nil {
		r.Get("/health", health.HandleHealth)
		r.Get("/health/ready", health.HandleReadiness)
	} else {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	}

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", h.GetDashboard)
			r.Post("/refresh", h.Refresh)
			r.Post("/live", h.ToggleLive)
			r.Get("/departments/{name}", h.SelectDepartment)
			r.Delete("/drilldown", h.ExitDrillDown)
			r.Get("/stream", h.Stream)
		})

		r.Get("/notifications", h.Notifications)
		r.Delete("/data", h.ConfirmWipe)

		r.Post("/email-logs/{id}/click", h.SimulateClick)
		r.Post("/email-logs/{id}/respond", h.SimulateResponse)
		r.Post("/users/complete-all-training", h.CompleteAllTraining)
		r.Post("/users/{id}/complete-training", h.CompleteTraining)
		r.Post("/departments/{id}/complete-training", h.CompleteDepartmentTraining)

		r.Get("/view-state", h.GetViewState)
		r.Put("/view-state", h.UpdateViewState)
	})

	return r
}
