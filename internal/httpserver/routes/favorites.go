package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerFavorites) }

func registerFavorites(r chi.Router, d deps.Deps) {
	r.Route("/favorites", func(r chi.Router) {
		r.Get("/", handlers.ListFavorites(d))
		r.Put("/{id}", handlers.AddFavorite(d))
		r.Delete("/{id}", handlers.RemoveFavorite(d))
		r.Post("/{id}/toggle", handlers.ToggleFavorite(d))
	})
}
