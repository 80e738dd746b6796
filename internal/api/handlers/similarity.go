package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fardaevm/diversify/internal/cache"
	"github.com/fardaevm/diversify/internal/config"
	"github.com/fardaevm/diversify/internal/models"
	"github.com/fardaevm/diversify/internal/services"
)

// groupedSuffix on an algorithm selector requests the grouped view of
// the same algorithm (e.g. "louvain_g").
const groupedSuffix = "_g"

// SimilarityHandler serves the similarity and grouping endpoints.
type SimilarityHandler struct {
	service *services.SimilarityService
	cache   *cache.ResponseCache
	ranking config.RankingConfig
	logger  *logrus.Logger
}

func NewSimilarityHandler(service *services.SimilarityService, respCache *cache.ResponseCache, ranking config.RankingConfig, logger *logrus.Logger) *SimilarityHandler {
	return &SimilarityHandler{
		service: service,
		cache:   respCache,
		ranking: ranking,
		logger:  logger,
	}
}

// GetSimilar handles GET /api/v1/tickers/:ticker/similar?a=<algo>&n=<N>.
// A selector with the "_g" suffix dispatches to the grouped view.
func (h *SimilarityHandler) GetSimilar(c *gin.Context) {
	ticker := strings.ToUpper(c.Param("ticker"))

	rawAlgo := c.Query("a")
	if strings.HasSuffix(strings.ToLower(rawAlgo), groupedSuffix) {
		h.serveGrouped(c, ticker, strings.TrimSuffix(strings.ToLower(rawAlgo), groupedSuffix))
		return
	}

	algo, err := services.ParseAlgorithm(rawAlgo)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	n, ok := h.limitParam(c)
	if !ok {
		return
	}

	key := cache.SimilarityKey(ticker, string(algo), n)
	if cached, hit := h.cache.GetSimilarity(c.Request.Context(), key); hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	resp, err := h.service.Similar(c.Request.Context(), ticker, algo, n)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Warn("similarity query failed")
		respondServiceError(c, err)
		return
	}

	h.cache.SetSimilarity(c.Request.Context(), key, resp)
	c.JSON(http.StatusOK, resp)
}

// GetGroups handles GET /api/v1/tickers/:ticker/groups?a=<algo>&n=<N>.
func (h *SimilarityHandler) GetGroups(c *gin.Context) {
	ticker := strings.ToUpper(c.Param("ticker"))
	h.serveGrouped(c, ticker, c.Query("a"))
}

func (h *SimilarityHandler) serveGrouped(c *gin.Context, ticker, rawAlgo string) {
	algo, err := services.ParseAlgorithm(rawAlgo)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if algo == services.AlgoPageRank {
		respondError(c, http.StatusBadRequest, models.CodeInvalidParameter, "page_rank has no grouped view")
		return
	}

	n, ok := h.limitParam(c)
	if !ok {
		return
	}

	key := cache.GroupedKey(ticker, string(algo), n)
	if cached, hit := h.cache.GetGrouped(c.Request.Context(), key); hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	resp, err := h.service.Grouped(c.Request.Context(), ticker, algo, n)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Warn("grouped query failed")
		respondServiceError(c, err)
		return
	}

	h.cache.SetGrouped(c.Request.Context(), key, resp)
	c.JSON(http.StatusOK, resp)
}

// limitParam parses and caps the n query parameter.
func (h *SimilarityHandler) limitParam(c *gin.Context) (int, bool) {
	raw := c.Query("n")
	if raw == "" {
		return h.ranking.DefaultLimit, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		respondError(c, http.StatusBadRequest, models.CodeInvalidParameter, "n must be a positive integer")
		return 0, false
	}
	if n > h.ranking.MaxLimit {
		n = h.ranking.MaxLimit
	}
	return n, true
}
