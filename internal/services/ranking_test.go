package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fardaevm/diversify/internal/models"
)

func newRankingService(t *testing.T) *RankingService {
	t.Helper()
	engine := NewCorrelationEngine(newCorrelatedStore(t), 1, testLogger())
	return NewRankingService(engine, testLogger())
}

func tickersOf(entries []models.RankedEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Ticker
	}
	return out
}

func TestRank(t *testing.T) {
	ranking := newRankingService(t)

	entries, err := ranking.Rank("A", []string{"B", "C", "D"}, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "D", "C"}, tickersOf(entries))
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i].Score, entries[i-1].Score, "scores must be non-increasing")
	}
}

func TestRankDropsUnknownCandidates(t *testing.T) {
	ranking := newRankingService(t)

	// Z is not in the universe; it cannot be scored and is silently
	// dropped rather than erroring.
	entries, err := ranking.Rank("A", []string{"B", "C", "Z"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, tickersOf(entries))
}

func TestRankTruncates(t *testing.T) {
	ranking := newRankingService(t)

	entries, err := ranking.Rank("A", []string{"B", "C", "D"}, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "B", entries[0].Ticker)
}

func TestRankExcludesTarget(t *testing.T) {
	ranking := newRankingService(t)

	entries, err := ranking.Rank("A", []string{"A", "B"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, tickersOf(entries))
}

func TestRankUnknownTarget(t *testing.T) {
	ranking := newRankingService(t)

	_, err := ranking.Rank("ZZZZ", []string{"B"}, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTicker)
}

func TestRankEmptyCandidates(t *testing.T) {
	ranking := newRankingService(t)

	entries, err := ranking.Rank("A", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRankStableTieBreak(t *testing.T) {
	ranking := newRankingService(t)

	// B and D have identical diff vectors, so identical scores; ties
	// keep candidate input order.
	entries, err := ranking.Rank("A", []string{"D", "B"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "B"}, tickersOf(entries))

	entries, err = ranking.Rank("A", []string{"B", "D"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "D"}, tickersOf(entries))
}

func TestRankDeterministic(t *testing.T) {
	ranking := newRankingService(t)

	first, err := ranking.Rank("A", []string{"B", "C", "D"}, 3)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ranking.Rank("A", []string{"B", "C", "D"}, 3)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestNearest(t *testing.T) {
	ranking := newRankingService(t)

	entries, err := ranking.Nearest("A", 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.NotContains(t, tickersOf(entries), "A", "nearest never includes the target")
	assert.Equal(t, []string{"B", "D"}, tickersOf(entries))
}

func TestNearestUnknownTarget(t *testing.T) {
	ranking := newRankingService(t)

	_, err := ranking.Nearest("ZZZZ", 3)
	assert.ErrorIs(t, err, ErrUnknownTicker)
}
