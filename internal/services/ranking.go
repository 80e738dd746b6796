package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fardaevm/diversify/internal/models"
)

// ErrUnknownTicker is returned when a query target is not in the
// ticker universe. Unknown *candidates* are a silent filter, never an
// error.
var ErrUnknownTicker = errors.New("unknown stock ticker")

// RankingService orders candidate tickers by Pearson correlation
// strength against a target.
type RankingService struct {
	engine *CorrelationEngine
	logger *logrus.Logger
}

func NewRankingService(engine *CorrelationEngine, logger *logrus.Logger) *RankingService {
	return &RankingService{engine: engine, logger: logger}
}

// Rank scores the given candidates against the target and returns at
// most n entries, sorted descending by score. The sort is stable, so
// ties keep the candidate input order. Candidates outside the universe
// are dropped; the target never ranks against itself.
func (s *RankingService) Rank(target string, candidates []string, n int) ([]models.RankedEntry, error) {
	matrix, err := s.engine.Pearson()
	if err != nil {
		return nil, err
	}

	target = strings.ToUpper(target)
	row, ok := matrix.Row(target)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, target)
	}

	entries := make([]models.RankedEntry, 0, len(candidates))
	for _, candidate := range candidates {
		candidate = strings.ToUpper(candidate)
		if candidate == target {
			continue
		}
		ix, ok := matrix.Index(candidate)
		if !ok {
			continue
		}
		entries = append(entries, models.RankedEntry{Ticker: candidate, Score: row[ix]})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	if n < 0 {
		n = 0
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Nearest ranks the entire universe against the target, excluding the
// target itself. Used for exploratory closest-N queries that do not
// depend on an external candidate set.
func (s *RankingService) Nearest(target string, n int) ([]models.RankedEntry, error) {
	matrix, err := s.engine.Pearson()
	if err != nil {
		return nil, err
	}
	return s.Rank(target, matrix.Names(), n)
}
