// SPDX-License-Identifier: MIT

// Command contactd runs the contacts REST API daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"contactd/internal/api"
	"contactd/internal/auth"
	"contactd/internal/avatar"
	"contactd/internal/cache"
	"contactd/internal/config"
	"contactd/internal/health"
	ctlog "contactd/internal/log"
	"contactd/internal/mail"
	"contactd/internal/store/sqlite"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Configure logger with safe defaults until config is loaded
	ctlog.Configure(ctlog.Config{
		Level:   "info",
		Service: "contactd",
		Version: version,
	})
	logger := ctlog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Determine config path:
	// - Explicit via --config
	// - Otherwise auto-load ${CONTACTD_DATA}/config.yaml if it exists
	effectiveConfigPath := *configPath
	if effectiveConfigPath == "" {
		dataDir := config.ParseString("CONTACTD_DATA", config.Default().DataDir)
		autoPath := filepath.Join(dataDir, "config.yaml")
		if _, err := os.Stat(autoPath); err == nil {
			effectiveConfigPath = autoPath
		}
	}

	cfg, err := config.Load(effectiveConfigPath)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	// Re-configure logger with loaded configuration
	ctlog.Configure(ctlog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: version,
	})

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "datadir.create_failed").
			Str("path", cfg.DataDir).
			Msg("failed to create data directory")
	}

	st, err := sqlite.Open(cfg.DBPath, sqlite.DefaultConfig())
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "store.open_failed").
			Str("path", cfg.DBPath).
			Msg("failed to open store")
	}
	defer func() { _ = st.Close() }()

	healthManager := health.NewManager(version)
	healthManager.Register(health.CheckerFunc{CheckName: "sqlite", Fn: st.Ping})

	// Redis is optional: without an address the user cache is in-process.
	var users cache.UserCache
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 5,
		})
		users, err = cache.NewRedisUserCache(redisClient, ctlog.WithComponent("cache"))
		if err != nil {
			logger.Fatal().
				Err(err).
				Str("event", "redis.connect_failed").
				Str("addr", cfg.Redis.Addr).
				Msg("failed to connect to Redis")
		}
		defer func() { _ = redisClient.Close() }()
		healthManager.Register(health.CheckerFunc{
			CheckName: "redis",
			Fn:        func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	} else {
		logger.Info().Str("event", "cache.memory").Msg("no Redis configured, using in-memory user cache")
		users = cache.NewMemoryUserCache(cache.NewMemoryCache(time.Minute))
	}

	avatars, err := avatar.NewStore(cfg.DataDir)
	if err != nil {
		logger.Fatal().Err(err).Str("event", "avatar.init_failed").Msg("failed to init avatar store")
	}

	mailer := mail.NewSender(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, 64)

	tokens := auth.NewManager([]byte(cfg.JWTSecret), "contactd", cfg.AccessTTL, cfg.RefreshTTL, cfg.EmailTTL)

	srv := api.New(api.Deps{
		Config:  cfg,
		Store:   st,
		Users:   users,
		Tokens:  tokens,
		Mailer:  mailer,
		Avatars: avatars,
		Health:  healthManager,
	})

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("event", "server.listening").
			Str("addr", cfg.ListenAddr).
			Msg("contactd listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Str("event", "server.shutdown").Msg("shutdown signal received")
	case err := <-errCh:
		logger.Error().Err(err).Str("event", "server.failed").Msg("http server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Str("event", "server.shutdown_failed").Msg("graceful shutdown failed")
	}

	// Drain queued mail before exit.
	mailer.Close()
	logger.Info().Str("event", "server.stopped").Msg("contactd stopped")
}
