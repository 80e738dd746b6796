package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fardaevm/diversify/internal/config"
	"github.com/fardaevm/diversify/internal/marketdata"
	"github.com/fardaevm/diversify/internal/models"
	"github.com/fardaevm/diversify/internal/services"
)

type fakeGraph struct {
	members     []string
	assignments []models.GroupAssignment
	scores      []models.ScoredTicker
	err         error
}

func (f *fakeGraph) CommunityMembers(ctx context.Context, ticker, property string) ([]string, error) {
	return f.members, f.err
}

func (f *fakeGraph) GroupAssignments(ctx context.Context, property string) ([]models.GroupAssignment, error) {
	return f.assignments, f.err
}

func (f *fakeGraph) PersonalizedPageRank(ctx context.Context, ticker string) ([]models.ScoredTicker, error) {
	return f.scores, f.err
}

type failingChecker struct{}

func (failingChecker) HealthCheck(ctx context.Context) error { return errors.New("down") }

func newTestRouter(t *testing.T, graph services.GraphClient) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// Per-period diffs: A=[1,2,1], B=D=[2,4,2], C=[-1,-2,-1], so B and
	// D correlate perfectly with A and C anti-correlates.
	prices := map[string][]float64{
		"A": {1, 2, 4, 5},
		"B": {10, 12, 16, 18},
		"C": {20, 19, 17, 16},
		"D": {5, 7, 11, 13},
	}

	var rows []models.PriceRow
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for _, ticker := range []string{"A", "B", "C", "D"} {
		for i, close := range prices[ticker] {
			rows = append(rows, models.PriceRow{
				Ticker: ticker,
				Date:   base.AddDate(0, 0, i),
				Close:  decimal.NewFromFloat(close),
				Sector: "Test",
			})
		}
	}

	store, err := marketdata.NewStore(rows)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	engine := services.NewCorrelationEngine(store, 1, logger)
	similarity := services.NewSimilarityService(store, engine, graph, logger)

	router := gin.New()
	SetupRoutes(router, Deps{
		Store:      store,
		Similarity: similarity,
		Ranking:    config.RankingConfig{DefaultLimit: 6, MaxLimit: 100},
		Logger:     logger,
	})
	return router
}

func doRequest(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestListTickers(t *testing.T) {
	router := newTestRouter(t, &fakeGraph{})
	w := doRequest(t, router, "/api/v1/tickers")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Tickers []string `json:"tickers"`
		Total   int      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"A", "B", "C", "D"}, resp.Tickers)
	assert.Equal(t, 4, resp.Total)
}

func TestGetTickerMeta(t *testing.T) {
	router := newTestRouter(t, &fakeGraph{})

	w := doRequest(t, router, "/api/v1/tickers/a")
	require.Equal(t, http.StatusOK, w.Code)
	var meta models.SecurityMeta
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, "A", meta.Ticker)
	assert.Equal(t, "Test", meta.Sector)

	w = doRequest(t, router, "/api/v1/tickers/ZZZZ")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.CodeUnknownTicker, decodeError(t, w).Code)
}

func TestGetSimilar(t *testing.T) {
	router := newTestRouter(t, &fakeGraph{members: []string{"B", "C", "D"}})

	w := doRequest(t, router, "/api/v1/tickers/a/similar?a=louvain&n=2")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.SimilarityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "A", resp.Ticker)
	require.Len(t, resp.Rank, 2)
	assert.Equal(t, "B", resp.Rank[0].Ticker)
	assert.Equal(t, "D", resp.Rank[1].Ticker)
	assert.Contains(t, resp.TS, "A")
}

func TestGetSimilarDefaultsToLouvain(t *testing.T) {
	router := newTestRouter(t, &fakeGraph{members: []string{"B"}})

	w := doRequest(t, router, "/api/v1/tickers/A/similar")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.SimilarityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Rank, 1)
	assert.Equal(t, "B", resp.Rank[0].Ticker)
}

func TestGetSimilarErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		graph      *fakeGraph
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown ticker",
			path:       "/api/v1/tickers/ZZZZ/similar",
			graph:      &fakeGraph{},
			wantStatus: http.StatusBadRequest,
			wantCode:   models.CodeUnknownTicker,
		},
		{
			name:       "unknown algorithm",
			path:       "/api/v1/tickers/A/similar?a=spectral",
			graph:      &fakeGraph{},
			wantStatus: http.StatusBadRequest,
			wantCode:   models.CodeUnknownAlgorithm,
		},
		{
			name:       "non integer n",
			path:       "/api/v1/tickers/A/similar?n=abc",
			graph:      &fakeGraph{},
			wantStatus: http.StatusBadRequest,
			wantCode:   models.CodeInvalidParameter,
		},
		{
			name:       "zero n",
			path:       "/api/v1/tickers/A/similar?n=0",
			graph:      &fakeGraph{},
			wantStatus: http.StatusBadRequest,
			wantCode:   models.CodeInvalidParameter,
		},
		{
			name:       "graph unavailable",
			path:       "/api/v1/tickers/A/similar",
			graph:      &fakeGraph{err: errors.New("connection refused")},
			wantStatus: http.StatusBadGateway,
			wantCode:   models.CodeGraphUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.graph)
			w := doRequest(t, router, tt.path)
			require.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
		})
	}
}

func TestGetSimilarPageRank(t *testing.T) {
	router := newTestRouter(t, &fakeGraph{scores: []models.ScoredTicker{
		{Ticker: "B", Score: 0.6},
		{Ticker: "D", Score: 0.4},
	}})

	w := doRequest(t, router, "/api/v1/tickers/A/similar?a=page_rank&n=1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.SimilarityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Rank, 1)
	assert.Equal(t, "B", resp.Rank[0].Ticker)
	assert.Equal(t, 0.6, resp.Rank[0].Score)
}

func TestGroupedSuffixDispatch(t *testing.T) {
	graph := &fakeGraph{assignments: []models.GroupAssignment{
		{GroupID: "1", Ticker: "A"},
		{GroupID: "1", Ticker: "B"},
		{GroupID: "2", Ticker: "C"},
		{GroupID: "2", Ticker: "D"},
	}}
	router := newTestRouter(t, graph)

	// louvain_g on the similar endpoint serves the grouped view.
	w := doRequest(t, router, "/api/v1/tickers/A/similar?a=louvain_g")
	require.Equal(t, http.StatusOK, w.Code)

	var resp []models.GroupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "1", resp[0].Group)
	assert.Equal(t, "A", resp[0].Ticker)
	assert.Equal(t, "2", resp[1].Group)
	assert.Empty(t, resp[1].Ticker)
}

func TestGetGroups(t *testing.T) {
	graph := &fakeGraph{assignments: []models.GroupAssignment{
		{GroupID: "1", Ticker: "A"},
		{GroupID: "2", Ticker: "C"},
	}}
	router := newTestRouter(t, graph)

	w := doRequest(t, router, "/api/v1/tickers/A/groups?a=leiden")
	require.Equal(t, http.StatusOK, w.Code)

	var resp []models.GroupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "A", resp[0].Ticker)
}

func TestGetGroupsRejectsPageRank(t *testing.T) {
	router := newTestRouter(t, &fakeGraph{})

	for _, path := range []string{
		"/api/v1/tickers/A/groups?a=page_rank",
		"/api/v1/tickers/A/similar?a=page_rank_g",
	} {
		w := doRequest(t, router, path)
		require.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, models.CodeInvalidParameter, decodeError(t, w).Code, path)
	}
}

func TestGetGroupsTargetNotGrouped(t *testing.T) {
	graph := &fakeGraph{assignments: []models.GroupAssignment{
		{GroupID: "1", Ticker: "B"},
	}}
	router := newTestRouter(t, graph)

	w := doRequest(t, router, "/api/v1/tickers/A/groups")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.CodeTargetNotGrouped, decodeError(t, w).Code)
}

func TestGetMatrix(t *testing.T) {
	router := newTestRouter(t, &fakeGraph{})

	for _, method := range []string{"pearson", "cosine"} {
		w := doRequest(t, router, "/api/v1/matrix/"+method)
		require.Equal(t, http.StatusOK, w.Code)

		var resp models.MatrixResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, method, resp.Method)
		assert.Equal(t, []string{"A", "B", "C", "D"}, resp.Tickers)
		require.Len(t, resp.Matrix, 4)
	}

	w := doRequest(t, router, "/api/v1/matrix/spearman")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.CodeUnknownAlgorithm, decodeError(t, w).Code)
}

func TestGetEdges(t *testing.T) {
	router := newTestRouter(t, &fakeGraph{})

	w := doRequest(t, router, "/api/v1/graph/edges?threshold=0.5")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Relationship string                   `json:"relationship"`
		Threshold    float64                  `json:"threshold"`
		Edges        []models.CorrelationEdge `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pearson", resp.Relationship)
	assert.Equal(t, 0.5, resp.Threshold)
	require.NotEmpty(t, resp.Edges)
	for _, edge := range resp.Edges {
		assert.Greater(t, edge.Weight, 500.0)
	}

	w = doRequest(t, router, "/api/v1/graph/edges?threshold=abc")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.CodeInvalidParameter, decodeError(t, w).Code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, &fakeGraph{})
	w := doRequest(t, router, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status   string            `json:"status"`
		Services map[string]string `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Services)
}

func TestHealthDegraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	router := gin.New()
	SetupRoutes(router, Deps{
		Ranking:  config.RankingConfig{DefaultLimit: 6, MaxLimit: 100},
		Logger:   logger,
		DBHealth: failingChecker{},
	})

	w := doRequest(t, router, "/health")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp struct {
		Status   string            `json:"status"`
		Services map[string]string `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "error", resp.Services["database"])
}
