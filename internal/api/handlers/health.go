package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker is anything that can report its own liveness.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler reports service health including optional backing
// services. Nil checkers are skipped.
type HealthHandler struct {
	db    HealthChecker
	redis HealthChecker
	graph HealthChecker
}

func NewHealthHandler(db, redis, graph HealthChecker) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, graph: graph}
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Services:  make(map[string]string),
	}

	checks := map[string]HealthChecker{
		"database": h.db,
		"redis":    h.redis,
		"graph":    h.graph,
	}
	for name, checker := range checks {
		if checker == nil {
			continue
		}
		if err := checker.HealthCheck(c.Request.Context()); err != nil {
			response.Services[name] = "error"
			response.Status = "degraded"
		} else {
			response.Services[name] = "ok"
		}
	}

	statusCode := http.StatusOK
	if response.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}
