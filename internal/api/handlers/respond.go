package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fardaevm/diversify/internal/models"
	"github.com/fardaevm/diversify/internal/services"
)

// respondError writes the structured error payload.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{Error: message, Code: code})
}

// respondServiceError maps engine errors onto HTTP statuses and
// machine-readable codes.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownTicker):
		respondError(c, http.StatusBadRequest, models.CodeUnknownTicker, "unknown stock ticker")
	case errors.Is(err, services.ErrUnknownAlgorithm):
		respondError(c, http.StatusBadRequest, models.CodeUnknownAlgorithm, "unknown algorithm")
	case errors.Is(err, services.ErrTargetNotGrouped):
		respondError(c, http.StatusBadRequest, models.CodeTargetNotGrouped, "target ticker absent from group assignments")
	case errors.Is(err, services.ErrGraphUnavailable):
		respondError(c, http.StatusBadGateway, models.CodeGraphUnavailable, "graph service unavailable")
	default:
		respondError(c, http.StatusInternalServerError, models.CodeInternal, "internal error")
	}
}
