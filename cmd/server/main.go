package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-optimizer/internal/api"
	"github.com/stitts-dev/fpl-optimizer/internal/api/handlers"
	"github.com/stitts-dev/fpl-optimizer/internal/api/middleware"
	"github.com/stitts-dev/fpl-optimizer/internal/cache"
	"github.com/stitts-dev/fpl-optimizer/internal/optimizer"
	"github.com/stitts-dev/fpl-optimizer/internal/store"
	"github.com/stitts-dev/fpl-optimizer/pkg/config"
	"github.com/stitts-dev/fpl-optimizer/pkg/database"
	"github.com/stitts-dev/fpl-optimizer/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	structuredLogger := logger.InitLogger("", cfg.IsDevelopment())
	log := logger.WithService("fpl-optimizer")
	log.WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
		"driver":      cfg.DatabaseDriver,
	}).Info("Starting FPL optimizer")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := store.NewRepository(db, structuredLogger)
	if err := repo.AutoMigrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis only backs the result cache; without it every request is solved fresh
	redisClient := connectRedis(cfg.RedisURL, log)
	if redisClient != nil {
		defer redisClient.Close()
	}
	resultCache := cache.NewOptimizationCache(redisClient, cfg.CacheTTL, structuredLogger)

	var source handlers.SnapshotSource = repo
	if cfg.SnapshotRefresh != "" {
		snapshots := store.NewSnapshotCache(repo, structuredLogger)
		if err := snapshots.Start(cfg.SnapshotRefresh); err != nil {
			log.Fatalf("Failed to schedule snapshot refresh: %v", err)
		}
		defer snapshots.Stop()
		source = snapshots
	}

	engine := optimizer.NewEngine(engineConfig(cfg), structuredLogger)

	router := api.NewRouter(structuredLogger)
	api.SetupRoutes(router,
		handlers.NewOptimizationHandler(source, engine, resultCache, cfg, structuredLogger),
		handlers.NewHealthHandler(db, resultCache, structuredLogger),
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("FPL optimizer started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down FPL optimizer...")

	// The server has 5 seconds to finish the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("FPL optimizer forced to shutdown: %v", err)
	}

	log.Info("FPL optimizer exited")
}

func connectRedis(redisURL string, log *logrus.Entry) *redis.Client {
	if redisURL == "" {
		log.Warn("REDIS_URL not set, result caching disabled")
		return nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.WithError(err).Warn("Invalid REDIS_URL, result caching disabled")
		return nil
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("Redis unreachable, result caching disabled")
		client.Close()
		return nil
	}
	return client
}

func engineConfig(cfg *config.Config) optimizer.EngineConfig {
	ec := optimizer.DefaultEngineConfig()
	ec.Scoring.HomeBonus = cfg.HomeBonus
	ec.Scoring.DifficultyStep = cfg.DifficultyStep
	ec.Scoring.FirstWeekWeight = cfg.FirstGWWeight
	ec.Scoring.WeeklyDecay = cfg.GWDecay
	ec.Scoring.MinWeekWeight = cfg.MinGWWeight
	ec.Timeout = cfg.OptimizationDeadline()
	ec.MaxHorizon = cfg.HorizonMaxGameweeks
	ec.MaxTransferResults = cfg.TransferMaxSuggestions
	return ec
}
