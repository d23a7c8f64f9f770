package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/scholardesk/internal/auth"
	"github.com/MrSnakeDoc/scholardesk/internal/domain"
	"github.com/MrSnakeDoc/scholardesk/internal/favorites"
)

// Error codes carried in JSON error bodies.
const (
	CodeCatalogUnavailable = "catalog_unavailable"
	CodeUnauthenticated    = "unauthenticated"
	CodeWriteFailed        = "favorite_write_failed"
	CodeQueryFailed        = "favorites_query_failed"
	CodeFavoritesUnknown   = "favorites_unknown"
	CodeStoreFailed        = "store_failed"
	CodeNotFound           = "not_found"
	CodeBadRequest         = "bad_request"
)

const signUpPath = favorites.SignUpPath

type errorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code"`
	Redirect string `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeUnauthenticated tells the client to send the user to sign-up.
func writeUnauthenticated(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{
		Error:    "sign in to keep favorites",
		Code:     CodeUnauthenticated,
		Redirect: signUpPath,
	})
}

// writeCatalogError maps a catalog failure to 503.
func writeCatalogError(w http.ResponseWriter, err error) {
	msg := "scholarship catalog is unavailable"
	if err != nil && !errors.Is(err, domain.ErrCatalogUnavailable) {
		msg = err.Error()
	}
	writeError(w, http.StatusServiceUnavailable, CodeCatalogUnavailable, msg)
}

// requireUser returns the signed-in user or answers 401.
func requireUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return nil, false
	}
	return u, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}
