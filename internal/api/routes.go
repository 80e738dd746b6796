package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fardaevm/diversify/internal/api/handlers"
	"github.com/fardaevm/diversify/internal/cache"
	"github.com/fardaevm/diversify/internal/config"
	"github.com/fardaevm/diversify/internal/marketdata"
	"github.com/fardaevm/diversify/internal/middleware"
	"github.com/fardaevm/diversify/internal/services"
)

// Deps carries everything the route tree needs. Database, Redis and
// Graph health checkers may be nil when the corresponding backend is
// not configured.
type Deps struct {
	Store      *marketdata.Store
	Similarity *services.SimilarityService
	Cache      *cache.ResponseCache
	Ranking    config.RankingConfig
	Logger     *logrus.Logger

	DBHealth    handlers.HealthChecker
	RedisHealth handlers.HealthChecker
	GraphHealth handlers.HealthChecker
}

// SetupRoutes registers all endpoints on the router.
func SetupRoutes(router *gin.Engine, deps Deps) {
	router.Use(middleware.TelemetryMiddleware())

	health := handlers.NewHealthHandler(deps.DBHealth, deps.RedisHealth, deps.GraphHealth)
	router.GET("/health", health.Health)

	similarity := handlers.NewSimilarityHandler(deps.Similarity, deps.Cache, deps.Ranking, deps.Logger)
	matrix := handlers.NewMatrixHandler(deps.Similarity, deps.Logger)
	tickers := handlers.NewTickersHandler(deps.Store)

	v1 := router.Group("/api/v1")
	{
		t := v1.Group("/tickers")
		{
			t.GET("", tickers.ListTickers)
			t.GET("/:ticker", tickers.GetTickerMeta)
			t.GET("/:ticker/similar", similarity.GetSimilar)
			t.GET("/:ticker/groups", similarity.GetGroups)
		}

		v1.GET("/matrix/:method", matrix.GetMatrix)

		graph := v1.Group("/graph")
		{
			graph.GET("/edges", matrix.GetEdges)
		}
	}
}
