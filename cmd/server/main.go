package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fardaevm/diversify/internal/api"
	"github.com/fardaevm/diversify/internal/api/handlers"
	"github.com/fardaevm/diversify/internal/cache"
	"github.com/fardaevm/diversify/internal/config"
	"github.com/fardaevm/diversify/internal/database"
	"github.com/fardaevm/diversify/internal/graph"
	"github.com/fardaevm/diversify/internal/logging"
	"github.com/fardaevm/diversify/internal/marketdata"
	"github.com/fardaevm/diversify/internal/services"
	"github.com/fardaevm/diversify/internal/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)

	// Initialize tracing
	provider, err := telemetry.Init(cfg.Telemetry.Enabled)
	if err != nil {
		logger.Fatalf("Failed to initialize telemetry: %v", err)
	}

	// Load the price store
	var dbHealth handlers.HealthChecker
	var store *marketdata.Store
	switch cfg.MarketData.Source {
	case "postgres":
		db, err := database.NewPostgresConnection(&cfg.Database)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		dbHealth = db

		store, err = marketdata.LoadFromPostgres(context.Background(), db.Pool)
		if err != nil {
			logger.Fatalf("Failed to load price data from postgres: %v", err)
		}
	default:
		f, err := os.Open(cfg.MarketData.CSVPath)
		if err != nil {
			logger.Fatalf("Failed to open price CSV %s: %v", cfg.MarketData.CSVPath, err)
		}
		store, err = marketdata.LoadCSV(f)
		closeErr := f.Close()
		if err != nil {
			logger.Fatalf("Failed to load price CSV: %v", err)
		}
		if closeErr != nil {
			logger.Warnf("Failed to close price CSV: %v", closeErr)
		}
	}
	logger.Infof("Loaded price series for %d tickers", store.Len())

	// Build the correlation engine and warm the Pearson cache so
	// misaligned input fails at startup, not on the first query.
	engine := services.NewCorrelationEngine(store, cfg.MarketData.DiffPeriod, logger)
	if _, err := engine.Pearson(); err != nil {
		logger.Fatalf("Failed to compute correlation matrix: %v", err)
	}

	graphClient := graph.NewClient(&cfg.Graph)
	similarity := services.NewSimilarityService(store, engine, graphClient, logger)

	// Optional Redis response cache
	var respCache *cache.ResponseCache
	var redisHealth handlers.HealthChecker
	if cfg.Redis.Enabled {
		redis, err := database.NewRedisConnection(cfg.Redis)
		if err != nil {
			logger.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redis.Close()
		redisHealth = redis

		ttl := time.Duration(cfg.Ranking.CacheTTLSeconds) * time.Second
		respCache = cache.NewResponseCache(redis.Client, ttl, logger)
	}

	// Setup Gin router
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	api.SetupRoutes(router, api.Deps{
		Store:       store,
		Similarity:  similarity,
		Cache:       respCache,
		Ranking:     cfg.Ranking,
		Logger:      logger,
		DBHealth:    dbHealth,
		RedisHealth: redisHealth,
		GraphHealth: graphClient,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}
	if err := provider.Shutdown(ctx); err != nil {
		logger.Warnf("Telemetry shutdown: %v", err)
	}

	logger.Info("Server exited")
}
