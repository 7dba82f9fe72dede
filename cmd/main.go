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

	"github.com/KotFed0t/paper_trading_api/config"
	"github.com/KotFed0t/paper_trading_api/data"
	"github.com/KotFed0t/paper_trading_api/data/cache"
	"github.com/KotFed0t/paper_trading_api/data/repository/postgres"
	"github.com/KotFed0t/paper_trading_api/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/paper_trading_api/internal/externalApi/finnhubApi"
	"github.com/KotFed0t/paper_trading_api/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/paper_trading_api/internal/scheduler"
	"github.com/KotFed0t/paper_trading_api/internal/service/tradingService"
	"github.com/KotFed0t/paper_trading_api/internal/transport/rest"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)

	finnhubApiClient := finnhubApi.New(cfg)

	reportGenerator := xslsxGenerator.New()

	googleCloudStorage := googleDriveApi.New(ctx, cfg)

	tradingSrv := tradingService.New(cfg, pgRepo, redisCache, finnhubApiClient, reportGenerator, googleCloudStorage)

	sched := scheduler.New()
	sched.NewIntervalJob("refresh quote cache", tradingSrv.RefreshQuoteCache, cfg.Jobs.RefreshQuotesInterval, true)
	sched.Start()
	defer sched.Stop()

	controller := rest.NewController(cfg, tradingSrv)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      rest.NewRouter(controller),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		slog.Info("http server started", slog.Int("port", cfg.HTTP.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	select {
	case <-interrupt:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", slog.String("err", err.Error()))
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
