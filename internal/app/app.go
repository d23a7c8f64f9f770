package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/scholardesk/internal/auth"
	"github.com/MrSnakeDoc/scholardesk/internal/config"
	"github.com/MrSnakeDoc/scholardesk/internal/favorites"
	"github.com/MrSnakeDoc/scholardesk/internal/httpserver"
	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scholardesk/internal/index"
	"github.com/MrSnakeDoc/scholardesk/internal/logger"
	"github.com/MrSnakeDoc/scholardesk/internal/redis"
	"github.com/MrSnakeDoc/scholardesk/internal/relay"
	"github.com/MrSnakeDoc/scholardesk/internal/scheduler"
	"github.com/MrSnakeDoc/scholardesk/internal/sources/catalog"
	redisstore "github.com/MrSnakeDoc/scholardesk/internal/store/redis"
	"github.com/MrSnakeDoc/scholardesk/internal/utils"
	"github.com/MrSnakeDoc/scholardesk/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	memIndex    *index.MemoryIndex
	restorer    *scheduler.SnapshotRestorer
	reloader    *scheduler.CatalogReloader
	watcher     *scheduler.CatalogWatcher
	favorites   *favorites.Registry
	authState   *auth.Provider
	relay       *relay.Client
	detach      func()
}

// New wires every component. It exits the process when Redis cannot be
// reached within the configured connect budget.
func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.Connect(context.Background(), redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient)
	memIndex := index.NewMemoryIndex()

	// Create manual reload trigger channel, shared by /reload and the watcher
	reloadTrigger := make(chan struct{}, 1)

	loader := catalog.NewLoader(cfg.CatalogSource, cfg.CatalogFetchTimeout)
	reloader := scheduler.NewCatalogReloader(
		loader,
		store,
		memIndex,
		loggerClient,
		cfg.CatalogReloadInterval,
		reloadTrigger,
	)

	var watcher *scheduler.CatalogWatcher
	if cfg.CatalogWatch && !cfg.IsRemoteCatalog() {
		watcher, err = scheduler.NewCatalogWatcher(cfg.CatalogSource, reloadTrigger, cfg.CatalogWatchDebounce, loggerClient)
		if err != nil {
			loggerClient.Warn("catalog watcher disabled", logger.Error(err))
			watcher = nil
		}
	}

	authState := auth.NewProvider()
	registry := favorites.NewRegistry(store, loggerClient, cfg.FavoritesIdleTTL, cfg.FavoritesWriteTimeout)
	detach := registry.Attach(authState)

	relayClient := relay.NewClient(cfg.RelayEndpoint, cfg.RelayTimeout, loggerClient)
	if !relayClient.Enabled() {
		loggerClient.Info("relay endpoint not configured, suggestions are stored only")
	}

	// Dependencies passed to routes
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMinute,
		RequestTimeout:  cfg.RequestTimeout,
		Store:           store,
		MemoryIndex:     memIndex,
		Favorites:       registry,
		Auth:            authState,
		Identity: auth.HeaderNames{
			UserID: cfg.HeaderUserID,
			Name:   cfg.HeaderName,
			Email:  cfg.HeaderEmail,
			Avatar: cfg.HeaderAvatar,
		},
		Relay:         relayClient,
		ReloadTrigger: reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		memIndex:    memIndex,
		restorer:    scheduler.NewSnapshotRestorer(store, memIndex, loggerClient),
		reloader:    reloader,
		watcher:     watcher,
		favorites:   registry,
		authState:   authState,
		relay:       relayClient,
		detach:      detach,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting scholardesk v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Seed from the last good catalog before trying the source
	if err := a.restorer.Restore(ctx); err != nil {
		a.logger.Warn("failed to restore catalog snapshot, waiting for source",
			logger.Error(err))
	}

	a.reloader.Start(ctx)
	a.logger.Info("catalog reloader started",
		logger.String("source", a.cfg.CatalogSource),
		logger.Duration("interval", a.cfg.CatalogReloadInterval))

	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			a.logger.Warn("catalog watcher not started, relying on periodic reload",
				logger.Error(err))
		}
	}

	a.favorites.Start(ctx)
	a.logger.Info("favorites registry started",
		logger.Duration("idle_ttl", a.cfg.FavoritesIdleTTL))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
		a.logger.Error("http server stopped", logger.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	if a.watcher != nil {
		a.watcher.Stop()
	}
	a.reloader.Stop()

	// Let in-flight favorite writes and relays land before Redis goes away
	a.detach()
	a.favorites.Stop()
	a.favorites.Wait()
	a.relay.Wait()

	if a.redisClient != nil {
		utils.MustClose(a.redisClient, "redis", a.logger)
	}

	a.logger.Info("✅ scholardesk stopped cleanly")
	_ = a.logger.Sync()
	return runErr
}
