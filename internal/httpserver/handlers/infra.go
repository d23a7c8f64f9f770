package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Loaded     *int   `json:"loaded,omitempty"`
	Source     string `json:"source,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the catalog, Redis and the favorites layer.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := d.MemoryIndex.Count()
		lastReload := d.MemoryIndex.GetLastReload()
		lastReloadStr := "never"
		if !lastReload.IsZero() {
			lastReloadStr = lastReload.Format("2006-01-02 15:04:05")
		}

		catalogStatus := componentStatus{
			OK:         count > 0,
			Loaded:     &count,
			Source:     d.MemoryIndex.Source(),
			LastReload: lastReloadStr,
		}
		if err := d.MemoryIndex.LastError(); err != nil {
			catalogStatus.Error = err.Error()
		}

		controllers := 0
		if d.Favorites != nil {
			controllers = d.Favorites.Len()
		}

		components := map[string]componentStatus{
			"catalog": catalogStatus,
			"redis":   checkRedis(r.Context(), d),
			"favorites": {
				OK:     true,
				Loaded: &controllers,
				Mode:   "optimistic",
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	// No catalog means nothing can be browsed
	if c, exists := components["catalog"]; exists && !c.OK {
		return "critical"
	}

	// Redis down still serves the catalog, without favorites or profiles
	if redis, exists := components["redis"]; exists && !redis.OK {
		return "degraded"
	}

	return "operational"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "favorites-disabled",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "favorites-disabled",
			Error:  err.Error(),
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "favorites-enabled",
	}
}
