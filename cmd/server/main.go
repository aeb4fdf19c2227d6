package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/utakatalp/assistant-manager-sim/internal/api"
	"github.com/utakatalp/assistant-manager-sim/internal/cache"
	"github.com/utakatalp/assistant-manager-sim/internal/config"
	"github.com/utakatalp/assistant-manager-sim/internal/forecast"
	"github.com/utakatalp/assistant-manager-sim/internal/fpl"
	"github.com/utakatalp/assistant-manager-sim/internal/logger"
	"github.com/utakatalp/assistant-manager-sim/internal/store"
)

// Scheduled forecasts are abandoned after this long.
const forecastTimeout = 30 * time.Minute

func main() {
	cfg, err := config.Load(nil)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	logger.WithComponent("server").WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting forecast server")

	ctx := context.Background()

	svcCfg := forecast.ServiceConfig{
		Source: &forecast.FPLSource{
			API:         fpl.NewClient(cfg.FPLBaseURL, cfg.FPLTimeout, log),
			RatingsPath: cfg.RatingsPath,
		},
		CacheTTL: cfg.CacheTTL,
		Defaults: forecast.Params{
			Horizon:  cfg.Horizon,
			Runs:     cfg.NumSimulations,
			Workers:  cfg.Workers,
			Seed:     cfg.Seed,
			MaxGoals: cfg.MaxGoals,
		},
		Logger: log,
	}

	if cfg.DatabaseURL != "" {
		db, err := store.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.WithComponent("server").Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			logger.WithComponent("server").Fatalf("Failed to migrate database: %v", err)
		}
		svcCfg.Repository = db
	}

	if cfg.RedisURL != "" {
		redisClient, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.WithComponent("server").Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		svcCfg.Cache = cache.NewProjectionCache(redisClient, log)
	}

	svc, err := forecast.NewService(svcCfg)
	if err != nil {
		logger.WithComponent("server").Fatalf("Failed to create forecast service: %v", err)
	}

	var scheduler *forecast.Scheduler
	if cfg.ForecastSchedule != "" {
		scheduler, err = forecast.NewScheduler(svc, cfg.ForecastSchedule, forecastTimeout, log)
		if err != nil {
			logger.WithComponent("server").Fatalf("Failed to schedule forecasts: %v", err)
		}
		scheduler.Start()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           api.NewServer(svc, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithComponent("server").WithField("port", cfg.Port).Info("Forecast server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithComponent("server").Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.WithComponent("server").Info("Shutting down forecast server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithComponent("server").Errorf("Forced shutdown: %v", err)
	}

	logger.WithComponent("server").Info("Forecast server exited")
}
