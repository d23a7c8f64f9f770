package handlers

import (
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/MrSnakeDoc/scholardesk/internal/auth"
	"github.com/MrSnakeDoc/scholardesk/internal/domain"
	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scholardesk/internal/logger"
)

const maxSuggestionMessage = 5000

type suggestionRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (s *suggestionRequest) normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Message = strings.TrimSpace(s.Message)
}

func (s suggestionRequest) validate() string {
	switch {
	case s.Name == "":
		return "name is required"
	case utf8.RuneCountInString(s.Name) > maxProfileField:
		return "name is too long"
	case s.Email == "":
		return "email is required"
	case s.Message == "":
		return "message is required"
	case utf8.RuneCountInString(s.Message) > maxSuggestionMessage:
		return "message is too long"
	}
	if _, err := mail.ParseAddress(s.Email); err != nil {
		return "email is not a valid address"
	}
	return ""
}

// CreateSuggestion stores a contact-form suggestion and relays it in the
// background. Relay failures never reach the caller.
func CreateSuggestion(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req suggestionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid suggestion: "+err.Error())
			return
		}
		req.normalize()
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, CodeBadRequest, msg)
			return
		}

		s := &domain.Suggestion{Name: req.Name, Email: req.Email, Message: req.Message}
		if u, ok := auth.UserFromContext(r.Context()); ok {
			s.UserID = u.ID
		}
		if err := d.Store.SaveSuggestion(r.Context(), s); err != nil {
			d.Logger.Warn("failed to store suggestion", logger.Error(err))
			writeError(w, http.StatusBadGateway, CodeStoreFailed, "could not store suggestion")
			return
		}

		d.Relay.Dispatch(s)
		writeJSON(w, http.StatusCreated, map[string]string{"id": s.ID})
	}
}
