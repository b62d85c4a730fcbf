package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"stocktracker/internal/announcements"
	"stocktracker/internal/config"
	"stocktracker/internal/database"
	"stocktracker/internal/handlers"
	"stocktracker/internal/logger"
	"stocktracker/internal/pricing"
	"stocktracker/internal/server"
	"stocktracker/internal/services"
	"stocktracker/internal/session"
	"stocktracker/internal/validator"
)

// @title           Stock Tracker API
// @version         1.0
// @description     Personal stock tracker: accounts, watchlists and portfolios valued at live prices.

// @BasePath  /api

// @securityDefinitions.apikey SessionCookie
// @in header
// @name Cookie
// @description session=<token> cookie set by /auth/login.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

const (
	shutdownTimeout     = 10 * time.Second
	sessionPurgeEvery   = time.Hour
	redisConnectTimeout = 2 * time.Second

	// announcementRetention is how long a feed stays available as a stale
	// fallback after it stops being fresh.
	announcementRetention = 24 * time.Hour
)

func main() {
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

// loadConfig reads the configuration, .env included, and only then builds
// the logger so ENV and LOG_LEVEL from .env take effect.
func loadConfig() (*config.Config, error) {
	appConfig, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(appConfig.Env, appConfig.LogLevel)
	return appConfig, nil
}

func run() error {
	appConfig, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Get()

	dbConfig, err := database.NewConfig(appConfig)
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := dbManager.DB()
	healthChecks := map[string]handlers.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	var rdb *redis.Client
	if appConfig.RedisURL != "" {
		rdb, err = connectRedis(appConfig.RedisURL)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		healthChecks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	store, err := newSessionStore(ctx, appConfig, dbManager, rdb)
	if err != nil {
		return err
	}
	authority := session.NewAuthority(store, appConfig.SecretKey, appConfig.SessionTTL)

	// Pricing: one shared cache when Redis is available, per-process otherwise.
	var cache pricing.Cache = pricing.NewMemoryCache(appConfig.PriceCacheTTL)
	if rdb != nil {
		cache = pricing.NewRedisCache(rdb, appConfig.PriceCacheTTL)
	}
	provider := pricing.NewYahooProvider(&http.Client{Timeout: appConfig.PriceTimeout})
	prices := pricing.NewService(provider, cache, appConfig.PriceTimeout)

	// Announcements: BSE first, NSE when BSE has nothing for a symbol.
	var feedCache announcements.Cache = announcements.NewMemoryCache(announcementRetention)
	if rdb != nil {
		feedCache = announcements.NewRedisCache(rdb, announcementRetention)
	}
	exchangeClient := &http.Client{Timeout: appConfig.AnnouncementTimeout}
	feed := announcements.NewService(feedCache, appConfig.AnnouncementCacheTTL, appConfig.AnnouncementTimeout,
		announcements.NewBSESource(exchangeClient),
		announcements.NewNSESource(exchangeClient),
	)

	validator.Register()

	router := server.NewRouter(server.Deps{
		Users:         services.NewUserService(db),
		Watchlist:     services.NewWatchlistService(db),
		Portfolio:     services.NewPortfolioService(db),
		Audit:         services.NewAuditService(db),
		Prices:        prices,
		Announcements: feed,
		Authority:     authority,
		HealthChecks:  healthChecks,
		CORSOrigins:   appConfig.CORSOrigins,
		CookieSecure:  appConfig.CookieSecure,
		AdminAPIKey:   appConfig.AdminAPIKey,
		StaticDir:     appConfig.StaticDir,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("starting stock tracker server",
			"port", appConfig.Port,
			"env", appConfig.Env,
			"db_driver", dbConfig.Driver,
			"session_store", appConfig.SessionStore,
		)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func connectRedis(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// newSessionStore selects the session backend named by SESSION_STORE. The
// database store also gets a background sweeper for expired rows.
func newSessionStore(ctx context.Context, cfg *config.Config, dbManager *database.Manager, rdb *redis.Client) (session.Store, error) {
	switch cfg.SessionStore {
	case "db", "":
		store := session.NewDBStore(dbManager.DB())
		go purgeSessions(ctx, store)
		return store, nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("SESSION_STORE=redis requires REDIS_URL")
		}
		return session.NewRedisStore(rdb), nil
	case "memory":
		logger.Get().Warn("using in-memory session store; sessions are lost on restart")
		return session.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported SESSION_STORE %q: must be db, redis or memory", cfg.SessionStore)
	}
}

func purgeSessions(ctx context.Context, store *session.DBStore) {
	log := logger.Named("session")
	ticker := time.NewTicker(sessionPurgeEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				log.Warnw("failed to purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				log.Infow("purged expired sessions", "count", n)
			}
		}
	}
}
