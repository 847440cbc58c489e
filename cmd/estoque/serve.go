package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"estoque/internal/amqp"
	"estoque/internal/apiclient"
	"estoque/internal/backend"
	"estoque/internal/cache"
	"estoque/internal/chatbot"
	"estoque/internal/cli"
	"estoque/internal/config"
	apphttp "estoque/internal/http"
	"estoque/internal/live"
	"estoque/internal/log"
	"estoque/internal/statistics"
	"estoque/internal/worker"
)

const (
	shutdownTimeout      = 30 * time.Second
	cacheCleanupInterval = time.Minute
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard web server (default command)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(flags)
		},
	}
}

func serve(flags *globalFlags) error {
	cfg, logger, err := flags.load()
	if err != nil {
		return err
	}
	if err := runServe(cfg, logger); err != nil {
		logger.Error("Server error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

func runServe(cfg *config.Config, logger *log.Logger) error {
	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	// the API is optional for local backends; without it the chat is disabled
	var (
		api  *apiclient.Client
		chat apphttp.ChatClient
	)
	if cfg.APIBaseURL != "" {
		var err error
		if api, err = apiclient.New(cfg.APIBaseURL, apiclient.WithTimeout(cfg.APITimeout)); err != nil {
			return err
		}
		chat = chatbot.New(api)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(logger, api).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := result.Close(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	stats := statistics.NewService(result.Source,
		statistics.WithCacheTTL(cfg.StatsCacheTTL),
		statistics.WithLogger(logger))

	caches := cache.NewManager(logger)
	if c := stats.Cache(); c != nil {
		caches.Register(c)
		caches.StartCleanup(cacheCleanupInterval)
	}
	defer caches.Stop()

	hub := live.NewHub(logger)
	refresher := worker.NewRefreshWorker(stats, hub, logger)

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Stats:              stats,
		Writer:             result.Writer,
		Chat:               chat,
		Hub:                hub,
		Refresher:          refresher,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})
	if err != nil {
		return err
	}
	srv.ReadTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	if cfg.AMQPEnabled() {
		consumer, err := amqp.NewConsumer(amqp.Config{
			URL:      cfg.AMQPURL,
			Exchange: cfg.AMQPExchange,
			Queue:    queueName(cfg.AMQPQueue),
		}, logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := refresher.Run(gctx, consumer); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		logger.Info("AMQP disabled, live refresh limited to local writes")
	}

	g.Go(func() error {
		logger.Info("Starting estoque server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"chat_enabled", chat != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		return nil
	})

	return g.Wait()
}

// queueName gives every instance its own queue unless one is configured,
// so each dashboard replica sees every event.
func queueName(configured string) string {
	if configured != "" {
		return configured
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	return "estoque.dashboard." + host
}
