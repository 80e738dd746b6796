package graph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fardaevm/diversify/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(&config.GraphConfig{ServiceURL: server.URL, Timeout: 5})
}

func TestCommunityMembers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/community/leiden_community/members/AAPL", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tickers": ["MSFT", "GOOG", "AMZN"]}`))
	})

	members, err := client.CommunityMembers(context.Background(), "AAPL", "leiden_community")
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT", "GOOG", "AMZN"}, members)
}

func TestGroupAssignments(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/community/community/assignments", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		// Group ids arrive as the raw integers the algorithms emit.
		w.Write([]byte(`{"assignments": [
			{"group_id": 1, "ticker": "AAPL"},
			{"group_id": 1, "ticker": "MSFT"},
			{"group_id": 2, "ticker": "XOM"}
		]}`))
	})

	assignments, err := client.GroupAssignments(context.Background(), "community")
	require.NoError(t, err)
	require.Len(t, assignments, 3)
	assert.Equal(t, "1", assignments[0].GroupID)
	assert.Equal(t, "AAPL", assignments[0].Ticker)
	assert.Equal(t, "2", assignments[2].GroupID)
}

func TestGroupAssignmentsStringIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"assignments": [{"group_id": "tech", "ticker": "AAPL"}]}`))
	})

	assignments, err := client.GroupAssignments(context.Background(), "community")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "tech", assignments[0].GroupID)
}

func TestPersonalizedPageRank(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pagerank/AAPL", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"scores": [
			{"ticker": "MSFT", "score": 0.42},
			{"ticker": "GOOG", "score": 0.17},
			{"ticker": "XOM", "score": 0}
		]}`))
	})

	scores, err := client.PersonalizedPageRank(context.Background(), "AAPL")
	require.NoError(t, err)
	// Zero scores are dropped.
	require.Len(t, scores, 2)
	assert.Equal(t, "MSFT", scores[0].Ticker)
	assert.Equal(t, 0.42, scores[0].Score)
}

func TestHealthCheck(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"status": "ok"}`))
	})

	assert.NoError(t, client.HealthCheck(context.Background()))
}

func TestErrorPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "neo4j unavailable"}`))
	})

	_, err := client.CommunityMembers(context.Background(), "AAPL", "community")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "graph service error (500)")
	assert.Contains(t, err.Error(), "neo4j unavailable")
}

func TestErrorWithoutJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream timeout"))
	})

	_, err := client.PersonalizedPageRank(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "graph service error (502)")
	assert.Contains(t, err.Error(), "upstream timeout")
}

func TestBaseURLTrimsTrailingSlash(t *testing.T) {
	client := NewClient(&config.GraphConfig{ServiceURL: "http://graph:7000/"})
	assert.Equal(t, "http://graph:7000", client.BaseURL())
}
