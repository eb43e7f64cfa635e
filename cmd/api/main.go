package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"manimrunner/internal/config"
	"manimrunner/internal/httpapi"
	"manimrunner/internal/httpapi/handlers"
	"manimrunner/internal/notify"
	"manimrunner/internal/pkg/logger"
	"manimrunner/internal/pkg/shutdown"
	"manimrunner/internal/render"
	"manimrunner/internal/storage"
	"manimrunner/internal/stream"
)

func main() {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	log := logger.NewDefault()

	cfg, err := config.Load()
	if err != nil {
		log.LogFatal("failed to load configuration", err)
	}

	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	var rdb *redis.Client
	var notifiers []notify.Notifier
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.LogFatal("failed to connect to redis", err, "addr", cfg.RedisAddr)
		}
		log.Info("connected to redis", "addr", cfg.RedisAddr)
		shutdownMgr.Register("redis", func(ctx context.Context) error {
			return rdb.Close()
		})
		notifiers = append(notifiers, notify.NewStatusPublisher(rdb, cfg.RedisChannel))
	}
	if cfg.CallbackURL != "" {
		notifiers = append(notifiers, notify.NewCallback(cfg.CallbackURL))
	}

	provider, err := storage.NewProvider(context.Background(), cfg)
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	log.Info("storage provider ready", "provider", provider.Provider())

	registry := stream.NewRegistry()

	executor := render.NewExecutor(render.Deps{
		Registry: registry,
		Storage:  provider,
		Notifier: notify.NewBestEffort(log, notifiers...),
		Log:      log,
		Binary:   cfg.RendererBin,
		Scene:    cfg.RendererScene,
	})

	h := handlers.New(handlers.Deps{
		Registry:    registry,
		Runner:      executor,
		Log:         log,
		Redis:       rdb,
		Provider:    provider.Provider(),
		IdleTimeout: cfg.StreamIdleTimeout,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpapi.NewRouter(h, log, nil),
		ReadHeaderTimeout: 10 * time.Second,
		// No write timeout: event streams stay open for the whole render.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		return srv.Shutdown(ctx)
	})

	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("server failed", err)
		}
	}()

	shutdownMgr.Wait()
}
