package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/deps"
)

type buildInfo struct {
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

type healthzResponse struct {
	Status         string    `json:"status"`
	UptimeSeconds  float64   `json:"uptime_seconds"`
	Scholarships   int       `json:"scholarships"`
	ActiveSessions int       `json:"active_sessions"`
	Build          buildInfo `json:"build"`
}

// Healthz reports liveness. It only reads in-memory state, never Redis or
// the catalog source, so a slow dependency cannot fail the probe.
func Healthz(d deps.Deps) http.HandlerFunc {
	build := buildInfo{
		Version:   d.Version,
		Commit:    d.Commit,
		BuildDate: d.BuildDate,
		GoVersion: d.GoVersion,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthzResponse{
			Status:        "ok",
			UptimeSeconds: time.Since(d.StartTime).Seconds(),
			Build:         build,
		}
		if d.MemoryIndex != nil {
			resp.Scholarships = d.MemoryIndex.Count()
		}
		if d.Favorites != nil {
			resp.ActiveSessions = d.Favorites.Len()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
