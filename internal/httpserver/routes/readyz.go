package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/handlers"
)

func init() { Register(registerProbes) }

// Liveness stays open for orchestrator probes; readiness and the component
// report are restricted like the other ops endpoints.
func registerProbes(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.With(opsGuard(d)...).Get("/readyz", handlers.Readyz(d))
	r.With(opsGuard(d)...).Get("/infra", handlers.Infra(d))
}
