package services

import (
	"errors"
	"strings"
)

// Algorithm selects which externally computed graph artifact backs a
// similarity query.
type Algorithm string

const (
	AlgoLouvain  Algorithm = "louvain"
	AlgoLeiden   Algorithm = "leiden"
	AlgoPageRank Algorithm = "page_rank"
)

// ErrUnknownAlgorithm is returned for an unrecognized algorithm
// selector. Unrecognized selectors are rejected rather than silently
// defaulted; only an absent selector falls back to Louvain.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// algoProperties maps each algorithm to the node property the graph
// service stores its result under.
var algoProperties = map[Algorithm]string{
	AlgoLouvain:  "community",
	AlgoLeiden:   "leiden_community",
	AlgoPageRank: "pageRank",
}

// ParseAlgorithm validates a selector from a request. The empty string
// selects the Louvain default.
func ParseAlgorithm(s string) (Algorithm, error) {
	if s == "" {
		return AlgoLouvain, nil
	}
	algo := Algorithm(strings.ToLower(s))
	if _, ok := algoProperties[algo]; !ok {
		return "", ErrUnknownAlgorithm
	}
	return algo, nil
}

// Property returns the graph node property backing this algorithm.
func (a Algorithm) Property() string {
	return algoProperties[a]
}
