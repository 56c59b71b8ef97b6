package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/judo-pools/app"
	"github.com/Dosada05/judo-pools/brackets"
	"github.com/Dosada05/judo-pools/config"
	"github.com/Dosada05/judo-pools/handlers"
	"github.com/Dosada05/judo-pools/routes"
	"github.com/Dosada05/judo-pools/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.Int("default_tables", cfg.DefaultTableCount))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hubDone := make(chan struct{})
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(hubDone)
	defer close(hubDone)
	logger.Info("WebSocket Hub started")

	a, err := app.New(ctx, cfg, wsHub, logger)
	if err != nil {
		logger.Error("failed to initialize application", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if res, err := a.ApplySeedFile(ctx, cfg.SeedFile); err != nil {
		logger.Error("failed to apply seed file", slog.String("path", cfg.SeedFile), slog.Any("error", err))
		os.Exit(1)
	} else if cfg.SeedFile != "" {
		logger.Info("seed file applied", slog.Int("categories", res.Categories), slog.Int("competitors", res.Competitors))
	}

	refresher := services.NewRefresher(a.Loader, wsHub, a.Metrics, cfg.RefreshInterval, logger)
	refresherDone := make(chan struct{})
	go func() {
		defer close(refresherDone)
		refresher.Run(ctx)
	}()

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Handlers{
		Category:  handlers.NewCategoryHandler(a.Pools),
		Pool:      handlers.NewPoolHandler(a.Pools, a.Bouts),
		Table:     handlers.NewTableHandler(a.Tables),
		Report:    handlers.NewReportHandler(a.Stats, a.Exports),
		WebSocket: handlers.NewWebSocketHandler(wsHub, cfg.CORSOrigins),
		Metrics:   a.Metrics.Handler(),
	}, cfg.CORSOrigins)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
			<-refresherDone
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}

	<-refresherDone
	logger.Info("application exited")
}
