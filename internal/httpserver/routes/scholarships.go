package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerScholarships) }

func registerScholarships(r chi.Router, d deps.Deps) {
	r.Route("/scholarships", func(r chi.Router) {
		r.Get("/", handlers.ListScholarships(d))
		r.Get("/suggest", handlers.SuggestScholarships(d))
		r.Get("/upcoming", handlers.UpcomingScholarships(d))
		r.Get("/{id}", handlers.GetScholarship(d))
	})
	r.Get("/calendar", handlers.Calendar(d))
}
