package marketdata

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fardaevm/diversify/internal/models"
)

// ErrMalformedInput marks ingestion-time schema violations. Store
// construction aborts on the first one; a store is never built from
// partially valid input.
var ErrMalformedInput = errors.New("malformed market data input")

// Store holds per-ticker closing-price time series. It is immutable
// after construction, so concurrent readers need no locking.
type Store struct {
	series map[string][]models.PricePoint
	meta   map[string]models.SecurityMeta
	names  []string
}

// NewStore builds a store from tabular price rows. Tickers are
// normalized to uppercase. Rows for one ticker must arrive in strictly
// increasing date order; anything else is a construction error.
func NewStore(rows []models.PriceRow) (*Store, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no price rows", ErrMalformedInput)
	}

	s := &Store{
		series: make(map[string][]models.PricePoint),
		meta:   make(map[string]models.SecurityMeta),
	}

	for i, row := range rows {
		ticker := strings.ToUpper(strings.TrimSpace(row.Ticker))
		if ticker == "" {
			return nil, fmt.Errorf("%w: row %d has an empty ticker", ErrMalformedInput, i)
		}
		if row.Date.IsZero() {
			return nil, fmt.Errorf("%w: row %d for %s has no date", ErrMalformedInput, i, ticker)
		}

		points := s.series[ticker]
		if len(points) > 0 && !row.Date.After(points[len(points)-1].Date) {
			return nil, fmt.Errorf("%w: series for %s is not strictly increasing at %s",
				ErrMalformedInput, ticker, row.Date.Format("2006-01-02"))
		}

		s.series[ticker] = append(points, models.PricePoint{Date: row.Date, Close: row.Close})

		if _, ok := s.meta[ticker]; !ok {
			s.meta[ticker] = models.SecurityMeta{
				Ticker:    ticker,
				ShortName: row.ShortName,
				Sector:    row.Sector,
				Industry:  row.Industry,
			}
		}
	}

	s.names = make([]string, 0, len(s.series))
	for name := range s.series {
		s.names = append(s.names, name)
	}
	sort.Strings(s.names)

	return s, nil
}

// Tickers returns the sorted ticker universe.
func (s *Store) Tickers() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// HasTicker reports whether the ticker is in the universe. Lookup is
// case-insensitive.
func (s *Store) HasTicker(ticker string) bool {
	_, ok := s.series[strings.ToUpper(ticker)]
	return ok
}

// Len returns the number of tickers in the store.
func (s *Store) Len() int {
	return len(s.names)
}

// SeriesFor returns the ordered price series for a ticker. Unknown
// tickers yield an empty slice, not an error: callers may request a
// superset of the universe.
func (s *Store) SeriesFor(ticker string) []models.PricePoint {
	points, ok := s.series[strings.ToUpper(ticker)]
	if !ok {
		return nil
	}
	out := make([]models.PricePoint, len(points))
	copy(out, points)
	return out
}

// SeriesForMany returns the series for every known ticker in the given
// set. Unknown tickers are mapped to empty series.
func (s *Store) SeriesForMany(tickers []string) models.TimeSeriesMap {
	out := make(models.TimeSeriesMap, len(tickers))
	for _, t := range tickers {
		out[strings.ToUpper(t)] = s.SeriesFor(t)
	}
	return out
}

// Meta returns the descriptive attributes recorded for a ticker.
func (s *Store) Meta(ticker string) (models.SecurityMeta, bool) {
	m, ok := s.meta[strings.ToUpper(ticker)]
	return m, ok
}
