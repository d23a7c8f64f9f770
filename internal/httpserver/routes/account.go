package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerAccount) }

func registerAccount(r chi.Router, d deps.Deps) {
	r.Get("/me", handlers.Me(d))
	r.Post("/auth/signout", handlers.SignOut(d))
	r.Get("/profile", handlers.GetProfile(d))
	r.Put("/profile", handlers.UpdateProfile(d))
	r.Post("/suggestions", handlers.CreateSuggestion(d))
}
