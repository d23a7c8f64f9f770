package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

// Group selects where a registrar is mounted.
type Group int

const (
	// GroupRoot routes sit at the router root (ops endpoints).
	GroupRoot Group = iota
	// GroupAPI routes sit under /api, behind rate limiting and identity.
	GroupAPI
)

type entry struct {
	group Group
	reg   Registrar
	mws   []Middleware
}

var registry []entry

// Register a root registrar with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{group: GroupRoot, reg: reg, mws: mws})
}

// RegisterAPI registers a registrar mounted under /api.
func RegisterAPI(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{group: GroupAPI, reg: reg, mws: mws})
}

// RegisterAll mounts every registrar of group g on r.
// Called once per group from server.New()
func RegisterAll(g Group, r chi.Router, d deps.Deps) {
	for _, e := range registry {
		if e.group != g {
			continue
		}
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		sub := r.With(e.mws...) // apply per-route middlewares
		e.reg(sub, d)
	}
}
