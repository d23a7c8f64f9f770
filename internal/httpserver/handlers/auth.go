package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/scholardesk/internal/auth"
	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/deps"
)

type meResponse struct {
	Authenticated bool       `json:"authenticated"`
	User          *auth.User `json:"user,omitempty"`
	SignUp        string     `json:"signUp,omitempty"`
}

// Me reports the current identity. Anonymous callers get 200 with the
// sign-up path so the front end can offer it.
func Me(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusOK, meResponse{SignUp: signUpPath})
			return
		}
		writeJSON(w, http.StatusOK, meResponse{Authenticated: true, User: u})
	}
}

// SignOut publishes a sign-out event, which releases the user's favorites
// state. The upstream proxy owns the session itself.
func SignOut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := requireUser(w, r)
		if !ok {
			return
		}
		if d.Auth != nil {
			d.Auth.SignOut(*u)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
