package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fardaevm/diversify/internal/models"
	"github.com/fardaevm/diversify/internal/services"
)

// MatrixHandler serves the full-matrix and graph-export endpoints.
type MatrixHandler struct {
	service *services.SimilarityService
	logger  *logrus.Logger
}

func NewMatrixHandler(service *services.SimilarityService, logger *logrus.Logger) *MatrixHandler {
	return &MatrixHandler{service: service, logger: logger}
}

// GetMatrix handles GET /api/v1/matrix/:method (pearson or cosine).
func (h *MatrixHandler) GetMatrix(c *gin.Context) {
	resp, err := h.service.MatrixFor(c.Param("method"))
	if err != nil {
		h.logger.WithError(err).WithField("method", c.Param("method")).Warn("matrix query failed")
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EdgesResponse wraps the correlation edge export.
type EdgesResponse struct {
	Relationship string                   `json:"relationship"`
	Threshold    float64                  `json:"threshold"`
	Edges        []models.CorrelationEdge `json:"edges"`
}

// GetEdges handles GET /api/v1/graph/edges?threshold=<t>. The edge
// list feeds the external graph loader.
func (h *MatrixHandler) GetEdges(c *gin.Context) {
	threshold := 0.0
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, models.CodeInvalidParameter, "threshold must be a number")
			return
		}
		threshold = parsed
	}

	edges, err := h.service.Edges(threshold)
	if err != nil {
		h.logger.WithError(err).Warn("edge export failed")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, EdgesResponse{
		Relationship: "pearson",
		Threshold:    threshold,
		Edges:        edges,
	})
}
