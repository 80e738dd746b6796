package models

// RankedEntry is a ticker and its similarity score relative to a query
// target. A slice of these is sorted descending by score; ties keep the
// candidate input order.
type RankedEntry struct {
	Ticker string  `json:"ticker"`
	Score  float64 `json:"score"`
}

// GroupAssignment is one (group id, ticker) pair from an externally
// computed graph partition. Group ids are opaque.
type GroupAssignment struct {
	GroupID string `json:"group_id"`
	Ticker  string `json:"ticker"`
}

// Group is a reconstructed community. The group containing the query
// target carries the target ticker; all other groups do not.
type Group struct {
	ID      string   `json:"group"`
	Members []string `json:"members"`
	Target  string   `json:"ticker,omitempty"`
}

// ScoredTicker is one entry of an externally supplied personalized-rank
// result, already sorted descending by the supplier.
type ScoredTicker struct {
	Ticker string  `json:"ticker"`
	Score  float64 `json:"score"`
}

// CorrelationEdge is one undirected edge of the correlation graph
// export consumed by the external graph loader. Weight is the
// correlation coefficient scaled by 1000.
type CorrelationEdge struct {
	A            string  `json:"a"`
	B            string  `json:"b"`
	Relationship string  `json:"relationship"`
	Weight       float64 `json:"weight"`
}
