// Package main wires together the link monitor service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/zaplinks/linkmonitor/internal/api"
	"github.com/zaplinks/linkmonitor/internal/archive"
	"github.com/zaplinks/linkmonitor/internal/auth"
	"github.com/zaplinks/linkmonitor/internal/clock/system"
	"github.com/zaplinks/linkmonitor/internal/config"
	headlessfetcher "github.com/zaplinks/linkmonitor/internal/fetcher/headless"
	staticfetcher "github.com/zaplinks/linkmonitor/internal/fetcher/static"
	"github.com/zaplinks/linkmonitor/internal/logging"
	"github.com/zaplinks/linkmonitor/internal/metrics"
	"github.com/zaplinks/linkmonitor/internal/notify/telegram"
	pubsubpublisher "github.com/zaplinks/linkmonitor/internal/publish/pubsub"
	"github.com/zaplinks/linkmonitor/internal/scrape"
	"github.com/zaplinks/linkmonitor/internal/storage/postgres"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	pool, err := postgres.Connect(ctx, postgres.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
	})
	if err != nil {
		logger.Fatal("postgres connect failed", zap.Error(err))
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		logger.Fatal("schema migration failed", zap.Error(err))
	}

	pageStore := postgres.NewPageStore(pool, logger.Named("pages"))
	linkStore := postgres.NewLinkStore(pool, logger.Named("links"))
	runStore := postgres.NewRunStore(pool)
	userStore := postgres.NewUserStore(pool)

	var fetcher scrape.Fetcher
	if cfg.Headless.Enabled {
		headless, err := headlessfetcher.New(headlessfetcher.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.Fetch.UserAgent,
			NavigationTimeout: cfg.NavTimeout(),
		})
		if err != nil {
			logger.Fatal("headless fetcher init failed", zap.Error(err))
		}
		defer headless.Close()
		fetcher = headless
	} else {
		fetcher = staticfetcher.New(staticfetcher.Config{
			UserAgent: cfg.Fetch.UserAgent,
			Timeout:   cfg.FetchTimeout(),
		})
	}

	var archiver scrape.Archiver = archive.NoOp{}
	if cfg.Archive.GCSBucket != "" {
		gcs, err := archive.NewGCS(ctx, cfg.Archive.GCSBucket, logger.Named("archive"))
		if err != nil {
			logger.Fatal("gcs archiver init failed", zap.Error(err))
		}
		defer func() {
			if closeErr := gcs.Close(); closeErr != nil {
				logger.Warn("gcs client close failed", zap.Error(closeErr))
			}
		}()
		archiver = gcs
	}

	var events scrape.EventPublisher
	if cfg.PubSub.ProjectID != "" && cfg.PubSub.TopicName != "" {
		publisher, err := pubsubpublisher.New(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName, logger.Named("pubsub"))
		if err != nil {
			logger.Fatal("pubsub publisher init failed", zap.Error(err))
		}
		defer publisher.Close()
		events = publisher
	}

	notifier := telegram.New(telegram.Config{
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
	}, logger.Named("telegram"))

	collector := scrape.NewPageCollector(fetcher, archiver, logger.Named("collector"))
	runner := scrape.NewRunner(
		pageStore,
		collector,
		linkStore,
		runStore,
		notifier,
		events,
		system.New(),
		logger.Named("runner"),
	)

	tokenManager, err := auth.NewManager(cfg.Auth.JWTSecret, cfg.TokenTTL())
	if err != nil {
		logger.Fatal("auth manager init failed", zap.Error(err))
	}

	apiServer := api.NewServer(
		pageStore,
		linkStore,
		runStore,
		userStore,
		runner,
		tokenManager,
		logger.Named("api"),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
