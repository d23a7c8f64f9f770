package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "SCHOLARDESK_"

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request handler timeout

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Catalog
	CatalogSource         string        // file path (.json/.yaml) or http(s) URL
	CatalogReloadInterval time.Duration // periodic reload (default: 1h)
	CatalogFetchTimeout   time.Duration // per load (default: 10s)
	CatalogWatch          bool          // reload on file change (file sources only)
	CatalogWatchDebounce  time.Duration // coalesce bursts of file events

	// Favorites
	FavoritesIdleTTL      time.Duration // evict per-user controllers idle this long
	FavoritesWriteTimeout time.Duration // bound on a single reconciliation write

	// Suggestions relay
	RelayEndpoint string        // optional form endpoint, empty = relay disabled
	RelayTimeout  time.Duration // per relay POST

	// Identity headers set by the upstream auth proxy
	HeaderUserID string
	HeaderName   string
	HeaderEmail  string
	HeaderAvatar string

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Rate limiting on /api
	RateLimitBurst     int
	RateLimitPerMinute int

	CORSOrigins []string // origins allowed to call /api from a browser

	AllowedHosts []string // optional, restrict ops endpoints to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// Load reads the configuration from the environment, after merging a .env
// file if one exists. Variables already set in the environment win.
func Load() *Config {
	loadDotEnv(os.Getenv(envPrefix + "ENV_FILE"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("REQUEST_TIMEOUT", 15*time.Second),

		// Logging
		LogLevel:  getenv("LOG_LEVEL", "info"),
		PrettyLog: mustBool("PRETTY_LOG", true),

		// Catalog
		CatalogSource:         requireEnv("CATALOG_SOURCE"),
		CatalogReloadInterval: mustDuration("CATALOG_RELOAD_INTERVAL", time.Hour),
		CatalogFetchTimeout:   mustDuration("CATALOG_FETCH_TIMEOUT", 10*time.Second),
		CatalogWatch:          mustBool("CATALOG_WATCH", true),
		CatalogWatchDebounce:  mustDuration("CATALOG_WATCH_DEBOUNCE", 500*time.Millisecond),

		// Favorites
		FavoritesIdleTTL:      mustDuration("FAVORITES_IDLE_TTL", 30*time.Minute),
		FavoritesWriteTimeout: mustDuration("FAVORITES_WRITE_TIMEOUT", 5*time.Second),

		// Relay
		RelayEndpoint: getenv("RELAY_ENDPOINT", ""),
		RelayTimeout:  mustDuration("RELAY_TIMEOUT", 10*time.Second),

		// Identity
		HeaderUserID: getenv("HEADER_USER_ID", "X-Auth-Request-User"),
		HeaderName:   getenv("HEADER_NAME", "X-Auth-Request-Preferred-Username"),
		HeaderEmail:  getenv("HEADER_EMAIL", "X-Auth-Request-Email"),
		HeaderAvatar: getenv("HEADER_AVATAR", "X-Auth-Request-Avatar"),

		// Redis settings
		RedisAddr:             requireEnv("REDIS_ADDR"),
		RedisUser:             getenv("REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		RateLimitBurst:     getenvInt("RATE_LIMIT_BURST", 60),
		RateLimitPerMinute: getenvInt("RATE_LIMIT_PER_MINUTE", 120),

		CORSOrigins: splitAndTrim(getenv("CORS_ORIGINS", "")),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("TRUST_PROXY", true),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: " + envPrefix + "REDIS_PASSWORD is required when " + envPrefix + "REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	if cp.RelayEndpoint != "" {
		cp.RelayEndpoint = "***REDACTED***"
	}
	return cp
}

// IsRemoteCatalog reports whether the catalog is fetched over HTTP.
func (c *Config) IsRemoteCatalog() bool {
	return strings.HasPrefix(c.CatalogSource, "http://") || strings.HasPrefix(c.CatalogSource, "https://")
}

// loadDotEnv merges path (".env" when empty) into the environment.
// A missing file is not an error.
func loadDotEnv(path string) {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[WARN] could not load %s: %v\n", path, err)
	}
}

// helpers, every key is read with the SCHOLARDESK_ prefix
func getenv(key, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s%s is not set", envPrefix, key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(envPrefix + key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(envPrefix + key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(envPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
