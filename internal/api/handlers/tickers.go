package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fardaevm/diversify/internal/marketdata"
	"github.com/fardaevm/diversify/internal/models"
)

// TickersHandler serves the ticker-universe endpoints.
type TickersHandler struct {
	store *marketdata.Store
}

func NewTickersHandler(store *marketdata.Store) *TickersHandler {
	return &TickersHandler{store: store}
}

// TickersResponse lists the ticker universe.
type TickersResponse struct {
	Tickers []string `json:"tickers"`
	Total   int      `json:"total"`
}

// ListTickers handles GET /api/v1/tickers.
func (h *TickersHandler) ListTickers(c *gin.Context) {
	tickers := h.store.Tickers()
	c.JSON(http.StatusOK, TickersResponse{Tickers: tickers, Total: len(tickers)})
}

// GetTickerMeta handles GET /api/v1/tickers/:ticker.
func (h *TickersHandler) GetTickerMeta(c *gin.Context) {
	ticker := strings.ToUpper(c.Param("ticker"))
	meta, ok := h.store.Meta(ticker)
	if !ok {
		respondError(c, http.StatusBadRequest, models.CodeUnknownTicker, "unknown stock ticker")
		return
	}
	c.JSON(http.StatusOK, meta)
}
