package models

// SimilarityResponse is the payload for a single-ticker similarity
// query: ranked neighbours plus the time series backing the ranking
// (including the target's own series).
type SimilarityResponse struct {
	Ticker string        `json:"ticker"`
	Rank   []RankedEntry `json:"rank"`
	TS     TimeSeriesMap `json:"ts"`
}

// GroupResponse is one element of a grouped similarity payload. The
// element for the target's own group carries the target ticker and its
// series; callers rely on it being first in the sequence.
type GroupResponse struct {
	Group  string        `json:"group"`
	Rank   []RankedEntry `json:"rank"`
	TS     TimeSeriesMap `json:"ts"`
	Ticker string        `json:"ticker,omitempty"`
}

// MatrixResponse carries a full similarity matrix together with the
// ticker order of its rows and columns.
type MatrixResponse struct {
	Method  string      `json:"method"`
	Tickers []string    `json:"tickers"`
	Matrix  [][]float64 `json:"matrix"`
}

// ErrorResponse is the structured error payload returned by the API.
// Code is the machine-readable error kind.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Machine-readable error codes surfaced in ErrorResponse.
const (
	CodeUnknownTicker    = "unknown_ticker"
	CodeUnknownAlgorithm = "unknown_algorithm"
	CodeTargetNotGrouped = "target_not_grouped"
	CodeGraphUnavailable = "graph_unavailable"
	CodeInvalidParameter = "invalid_parameter"
	CodeInternal         = "internal_error"
)
