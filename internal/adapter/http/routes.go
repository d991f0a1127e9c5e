package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/AdForge/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router. apiKeyHash
// guards the mutating evaluation route; read routes stay open.
func MountRoutes(r chi.Router, h *Handlers, apiKeyHash string) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Evaluations
		r.With(middleware.APIKey(apiKeyHash)).Post("/evaluations", h.StartEvaluation)
		r.Get("/runs/{id}", h.GetRun)
		r.Get("/runs/{id}/report", h.GetReport)
		r.Get("/ads/{id}/records", h.ListAdRecords)

		// Actors
		r.Get("/actors", h.ListActors)
		r.Get("/actors/{id}", h.GetActor)

		// Graph
		r.Get("/graph", h.GetGraph)
		r.Get("/graph/plan", h.GetPlan)
		r.Get("/graph/{id}/neighbors", h.GetNeighbors)
	})
}
