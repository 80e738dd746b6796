package graph

import (
	"encoding/json"
	"fmt"
)

// GroupID accepts either a JSON number or a JSON string, since the
// graph service reports community ids as the integers its algorithms
// produce while callers treat them as opaque labels.
type GroupID string

func (g *GroupID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*g = GroupID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*g = GroupID(n.String())
		return nil
	}
	return fmt.Errorf("group id must be a string or number, got %s", string(data))
}

// MembersResponse lists the tickers sharing a community.
type MembersResponse struct {
	Tickers []string `json:"tickers"`
}

// AssignmentsResponse is a full partition snapshot.
type AssignmentsResponse struct {
	Assignments []AssignmentEntry `json:"assignments"`
}

type AssignmentEntry struct {
	GroupID GroupID `json:"group_id"`
	Ticker  string  `json:"ticker"`
}

// PageRankResponse carries personalized PageRank scores, sorted
// descending by the graph service.
type PageRankResponse struct {
	Scores []PageRankEntry `json:"scores"`
}

type PageRankEntry struct {
	Ticker string  `json:"ticker"`
	Score  float64 `json:"score"`
}

// HealthResponse is the graph service health payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the graph service error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
