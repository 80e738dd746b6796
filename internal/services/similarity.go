package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fardaevm/diversify/internal/marketdata"
	"github.com/fardaevm/diversify/internal/models"
)

// ErrGraphUnavailable wraps failures of the external graph service.
var ErrGraphUnavailable = errors.New("graph service unavailable")

// GraphClient is the surface of the external graph service. The graph
// database owns community detection and personalized PageRank; this
// engine only consumes their outputs.
type GraphClient interface {
	// CommunityMembers returns the tickers sharing the target's
	// community under the given node property.
	CommunityMembers(ctx context.Context, ticker, property string) ([]string, error)
	// GroupAssignments returns the full partition snapshot for the
	// given node property, one (group id, ticker) pair per ticker.
	GroupAssignments(ctx context.Context, property string) ([]models.GroupAssignment, error)
	// PersonalizedPageRank returns per-ticker relevance scores for the
	// source ticker, sorted descending by the supplier.
	PersonalizedPageRank(ctx context.Context, ticker string) ([]models.ScoredTicker, error)
}

// SimilarityService assembles the payloads consumed by the API layer:
// ranked neighbours, grouped rankings and the time-series slices
// backing them.
type SimilarityService struct {
	store   *marketdata.Store
	engine  *CorrelationEngine
	ranking *RankingService
	groups  *GroupService
	graph   GraphClient
	logger  *logrus.Logger
}

func NewSimilarityService(store *marketdata.Store, engine *CorrelationEngine, graph GraphClient, logger *logrus.Logger) *SimilarityService {
	ranking := NewRankingService(engine, logger)
	return &SimilarityService{
		store:   store,
		engine:  engine,
		ranking: ranking,
		groups:  NewGroupService(ranking),
		graph:   graph,
		logger:  logger,
	}
}

// Ranking exposes the underlying ranking service.
func (s *SimilarityService) Ranking() *RankingService {
	return s.ranking
}

// Universe returns the sorted ticker universe.
func (s *SimilarityService) Universe() []string {
	return s.store.Tickers()
}

// Similar answers a single-ticker similarity query. Community
// algorithms rank the target's community by Pearson correlation;
// page_rank passes through the externally computed scores.
func (s *SimilarityService) Similar(ctx context.Context, ticker string, algo Algorithm, n int) (*models.SimilarityResponse, error) {
	ticker = strings.ToUpper(ticker)
	if !s.store.HasTicker(ticker) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}

	if algo == AlgoPageRank {
		return s.similarByPageRank(ctx, ticker, n)
	}

	members, err := s.graph.CommunityMembers(ctx, ticker, algo.Property())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGraphUnavailable, err)
	}

	rank, err := s.ranking.Rank(ticker, members, n)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"ticker":     ticker,
		"algorithm":  algo,
		"candidates": len(members),
		"ranked":     len(rank),
	}).Debug("similarity query ranked")

	return &models.SimilarityResponse{
		Ticker: ticker,
		Rank:   rank,
		TS:     s.attachSeries(rank, ticker),
	}, nil
}

func (s *SimilarityService) similarByPageRank(ctx context.Context, ticker string, n int) (*models.SimilarityResponse, error) {
	scores, err := s.graph.PersonalizedPageRank(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGraphUnavailable, err)
	}

	// Scores arrive sorted descending; zero scores carry no signal.
	rank := make([]models.RankedEntry, 0, n)
	for _, sc := range scores {
		if sc.Score == 0 {
			continue
		}
		entry := models.RankedEntry{Ticker: strings.ToUpper(sc.Ticker), Score: sc.Score}
		if entry.Ticker == ticker {
			continue
		}
		rank = append(rank, entry)
		if len(rank) == n {
			break
		}
	}

	return &models.SimilarityResponse{
		Ticker: ticker,
		Rank:   rank,
		TS:     s.attachSeries(rank, ticker),
	}, nil
}

// Grouped answers a grouped similarity query: the latest partition
// snapshot bucketed into groups, each ranked against the target, with
// the target's group first.
func (s *SimilarityService) Grouped(ctx context.Context, ticker string, algo Algorithm, n int) ([]models.GroupResponse, error) {
	ticker = strings.ToUpper(ticker)
	if !s.store.HasTicker(ticker) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}

	assignments, err := s.graph.GroupAssignments(ctx, algo.Property())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGraphUnavailable, err)
	}

	groups, err := s.groups.CollectGroups(ticker, assignments)
	if err != nil {
		return nil, err
	}

	rankings, err := s.groups.RankGroups(ticker, groups, n)
	if err != nil {
		return nil, err
	}

	out := make([]models.GroupResponse, 0, len(rankings))
	for _, r := range rankings {
		resp := models.GroupResponse{
			Group: r.GroupID,
			Rank:  r.Entries,
		}
		if r.HasTarget {
			resp.Ticker = ticker
			resp.TS = s.attachSeries(r.Entries, ticker)
		} else {
			resp.TS = s.attachSeries(r.Entries)
		}
		out = append(out, resp)
	}
	return out, nil
}

// MatrixFor returns the full similarity matrix for "pearson" or
// "cosine".
func (s *SimilarityService) MatrixFor(method string) (*models.MatrixResponse, error) {
	var (
		matrix *Matrix
		err    error
	)
	switch strings.ToLower(method) {
	case "pearson":
		matrix, err = s.engine.Pearson()
	case "cosine":
		matrix, err = s.engine.Cosine()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, method)
	}
	if err != nil {
		return nil, err
	}

	return &models.MatrixResponse{
		Method:  strings.ToLower(method),
		Tickers: matrix.Names(),
		Matrix:  matrix.Rows(),
	}, nil
}

// Edges exports the correlation graph for the external graph loader.
func (s *SimilarityService) Edges(threshold float64) ([]models.CorrelationEdge, error) {
	return s.engine.Edges(threshold)
}

// attachSeries pulls time series for exactly the ranked tickers plus
// any extras (the query target for personalized queries). Pure; the
// caller owns any caching of the result.
func (s *SimilarityService) attachSeries(rank []models.RankedEntry, extras ...string) models.TimeSeriesMap {
	tickers := make([]string, 0, len(rank)+len(extras))
	for _, entry := range rank {
		tickers = append(tickers, entry.Ticker)
	}
	tickers = append(tickers, extras...)
	return s.store.SeriesForMany(tickers)
}
