package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"rentwatch/internal/api"
	"rentwatch/internal/config"
	"rentwatch/internal/monitoring"
	"rentwatch/internal/notify"
	"rentwatch/internal/scan"
	"rentwatch/internal/scheduler"
	"rentwatch/internal/scraper"
	"rentwatch/internal/sites"
	"rentwatch/internal/storage"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration; a missing or malformed config is fatal, the
	// pipeline must not run with partial config.
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}
	registry, err := sites.Load(cfg.SitesFile)
	if err != nil {
		logger.Fatal("could not load site rule sets", zap.Error(err))
	}
	if cfg.TelegramToken == "" || cfg.TelegramChatID == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set")
	}

	// Initialize Storage Layer
	ctx := context.Background()
	pgStore, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pgStore.Close()

	var redisStore *storage.RedisStore
	var locker scan.Locker
	if cfg.RedisAddr != "" {
		redisStore = storage.NewRedisStore(cfg.RedisAddr)
		locker = redisStore
	}

	// Initialize Core Pipeline
	metrics := monitoring.NewMetrics()
	fetcher := scraper.NewHTTPFetcher(registry.Settings(), cfg.FetchTimeoutDuration())
	sc := scraper.New(fetcher, metrics, logger)
	notifier := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	runner := scan.NewRunner(registry, sc, pgStore, notifier, locker, metrics, logger,
		cfg.AgingWindow(), cfg.BatchCap)

	// Daily trigger
	schedCtx, stopSched := context.WithCancel(ctx)
	defer stopSched()
	sched, err := scheduler.New(cfg.ScanTime, runner, logger)
	if err != nil {
		logger.Fatal("could not set up scheduler", zap.Error(err))
	}
	go sched.Start(schedCtx)

	// Initialize API Server
	server := api.NewServer(cfg, runner, registry, pgStore, redisStore, logger)

	// Graceful Shutdown
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started",
		zap.String("port", cfg.ServerPort),
		zap.Strings("enabled_sites", registry.EnabledNames()),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopSched()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
