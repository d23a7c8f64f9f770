package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready  bool   `json:"ready"`
	Reason string `json:"reason,omitempty"`
}

// Readyz is ready once a catalog is being served.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.MemoryIndex.Count() == 0 {
			reason := "catalog not loaded"
			if err := d.MemoryIndex.LastError(); err != nil {
				reason = err.Error()
			}
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false, Reason: reason})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
