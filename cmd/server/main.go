// Command server runs the KindCoins dashboard API: an in-memory family
// reward tracker with a REST surface, Prometheus metrics, and a daily
// streak maintenance job.
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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kindcoins/kindcoins/internal/api/dashboard"
	"github.com/kindcoins/kindcoins/internal/cache"
	"github.com/kindcoins/kindcoins/internal/config"
	"github.com/kindcoins/kindcoins/internal/repository"
	"github.com/kindcoins/kindcoins/internal/seed"
	"github.com/kindcoins/kindcoins/internal/service/goals"
	"github.com/kindcoins/kindcoins/internal/service/logging"
	"github.com/kindcoins/kindcoins/internal/service/overview"
	"github.com/kindcoins/kindcoins/internal/service/scheduler"
	"github.com/kindcoins/kindcoins/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("driver", cfg.Database.Driver).
		Msg("Starting KindCoins server")

	db, err := repository.NewDB(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	if err := db.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate store")
	}

	childRepo := repository.NewChildRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	if err := seed.New(childRepo, catalogRepo, goalRepo, historyRepo, log).Run(); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed demo data")
	}

	var overviewCache cache.Cache
	if cfg.Database.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close redis connection")
			}
		}()
		overviewCache = redisCache
	}

	loggingService := logging.NewService(
		childRepo, catalogRepo, historyRepo, overviewCache,
		logging.TimerDelayer{},
		logging.Options{
			EnterDelay: cfg.Animation.EnterDelay(),
			ExitDelay:  cfg.Animation.ExitDelay(),
			ClearDelay: cfg.Celebration.ClearDelay(),
		},
		log,
	)
	goalService := goals.NewService(goalRepo, childRepo, overviewCache, log)

	location, err := cfg.Scheduler.GetLocation()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid scheduler timezone")
	}
	overviewService := overview.NewService(
		childRepo, catalogRepo, goalRepo, historyRepo,
		overviewCache, cfg.Database.Redis.CacheTTL(), location, log,
	)

	schedulerService := scheduler.NewService(cfg, childRepo, historyRepo, overviewCache, log)
	if err := schedulerService.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer schedulerService.Stop()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	handler := dashboard.NewHandler(loggingService, goalService, overviewService, catalogRepo, db, log)
	handler.RegisterRoutes(router)

	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("API server listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("API server failed")
		}
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info().Int("port", cfg.Metrics.Port).Str("path", cfg.Metrics.Path).Msg("Metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("API server shutdown failed")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Metrics server shutdown failed")
		}
	}

	log.Info().Msg("Server stopped")
}
