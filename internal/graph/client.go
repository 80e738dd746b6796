// Package graph is the HTTP client for the external graph service,
// which owns the Neo4j database and the Louvain/Leiden/PageRank
// computations. This service only ever reads their outputs.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fardaevm/diversify/internal/config"
	"github.com/fardaevm/diversify/internal/models"
)

// Client talks to the graph service over HTTP.
type Client struct {
	HTTPClient *http.Client
	baseURL    string
}

// NewClient creates a graph service client from configuration.
func NewClient(cfg *config.GraphConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.ServiceURL, "/"),
	}
}

// BaseURL returns the configured service URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HealthCheck checks whether the graph service is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	var response HealthResponse
	return c.makeRequest(ctx, "/health", &response)
}

// CommunityMembers returns the tickers sharing the target's community
// under the given node property.
func (c *Client) CommunityMembers(ctx context.Context, ticker, property string) ([]string, error) {
	path := fmt.Sprintf("/api/community/%s/members/%s", url.PathEscape(property), url.PathEscape(ticker))
	var response MembersResponse
	if err := c.makeRequest(ctx, path, &response); err != nil {
		return nil, err
	}
	return response.Tickers, nil
}

// GroupAssignments returns the full (group id, ticker) partition for
// the given node property.
func (c *Client) GroupAssignments(ctx context.Context, property string) ([]models.GroupAssignment, error) {
	path := fmt.Sprintf("/api/community/%s/assignments", url.PathEscape(property))
	var response AssignmentsResponse
	if err := c.makeRequest(ctx, path, &response); err != nil {
		return nil, err
	}

	assignments := make([]models.GroupAssignment, 0, len(response.Assignments))
	for _, entry := range response.Assignments {
		assignments = append(assignments, models.GroupAssignment{
			GroupID: string(entry.GroupID),
			Ticker:  entry.Ticker,
		})
	}
	return assignments, nil
}

// PersonalizedPageRank returns per-ticker relevance scores for the
// source ticker. The service sorts them descending; zero scores are
// dropped here since they carry no signal.
func (c *Client) PersonalizedPageRank(ctx context.Context, ticker string) ([]models.ScoredTicker, error) {
	path := fmt.Sprintf("/api/pagerank/%s", url.PathEscape(ticker))
	var response PageRankResponse
	if err := c.makeRequest(ctx, path, &response); err != nil {
		return nil, err
	}

	scores := make([]models.ScoredTicker, 0, len(response.Scores))
	for _, entry := range response.Scores {
		if entry.Score == 0 {
			continue
		}
		scores = append(scores, models.ScoredTicker{Ticker: entry.Ticker, Score: entry.Score})
	}
	return scores, nil
}

func (c *Client) makeRequest(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Error != "" {
			return fmt.Errorf("graph service error (%d): %s", resp.StatusCode, errorResp.Error)
		}
		return fmt.Errorf("graph service error (%d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
