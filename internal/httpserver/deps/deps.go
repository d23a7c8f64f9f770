package deps

import (
	"time"

	"github.com/MrSnakeDoc/scholardesk/internal/auth"
	"github.com/MrSnakeDoc/scholardesk/internal/favorites"
	"github.com/MrSnakeDoc/scholardesk/internal/index"
	"github.com/MrSnakeDoc/scholardesk/internal/logger"
	"github.com/MrSnakeDoc/scholardesk/internal/relay"
	redisstore "github.com/MrSnakeDoc/scholardesk/internal/store/redis"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time    // for testing, defaults to time.Now
	AllowedHosts    []string            // Host headers allowed to reach ops endpoints
	AllowedCIDRS    []string            // IPs allowed to reach ops endpoints
	TrustProxy      bool                // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins     []string            // browser origins allowed on /api
	RateLimitBurst  int                 // per-IP burst on /api
	RateLimitPerMin int                 // per-IP refill on /api
	RequestTimeout  time.Duration       // per-request handler timeout
	Store           *redisstore.Store   // Redis store (favorites, profiles, suggestions)
	MemoryIndex     *index.MemoryIndex  // In-memory scholarship catalog
	Favorites       *favorites.Registry // One favorites controller per user
	Auth            *auth.Provider      // Auth-state hub
	Identity        auth.HeaderNames    // Trusted identity headers
	Relay           *relay.Client       // Suggestion relay (disabled when endpoint empty)
	ReloadTrigger   chan struct{}       // Channel to trigger manual catalog reload
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
