package services

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/fardaevm/diversify/internal/marketdata"
	"github.com/fardaevm/diversify/internal/models"
)

// ErrUnalignedSeries is returned when the per-ticker diff vectors do
// not all have the same length. The matrix stacks one row per ticker,
// so unequal observation counts would silently corrupt every
// correlation; the engine refuses instead.
var ErrUnalignedSeries = errors.New("ticker series are not aligned")

// Matrix is a square similarity matrix over a fixed, sorted ticker
// universe. The name-to-index mapping is built once at construction and
// is bijective with the backing store's ticker set.
type Matrix struct {
	names []string
	index map[string]int
	data  [][]float64
}

func newMatrix(names []string, data [][]float64) *Matrix {
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}
	return &Matrix{names: names, index: index, data: data}
}

// Names returns the tickers in row/column order.
func (m *Matrix) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Index returns the row index of a ticker.
func (m *Matrix) Index(name string) (int, bool) {
	i, ok := m.index[name]
	return i, ok
}

// At returns the entry at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i][j]
}

// Row returns the similarity row for a ticker.
func (m *Matrix) Row(name string) ([]float64, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.data[i], true
}

// Rows returns a copy of the full matrix.
func (m *Matrix) Rows() [][]float64 {
	out := make([][]float64, len(m.data))
	for i, row := range m.data {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}

// CorrelationEngine turns the store's price series into per-ticker diff
// vectors and pairwise similarity matrices. Matrices are derived,
// cached artifacts: each is computed at most once per store snapshot
// and published read-only, so concurrent callers share the result
// without locking.
type CorrelationEngine struct {
	store  *marketdata.Store
	period int
	logger *logrus.Logger

	diffOnce sync.Once
	diff     [][]float64
	diffErr  error

	pearsonOnce sync.Once
	pearson     *Matrix
	pearsonErr  error

	cosineOnce sync.Once
	cosine     *Matrix
	cosineErr  error
}

// NewCorrelationEngine creates an engine over an immutable store
// snapshot. period is the diff lag in observations, at least 1.
func NewCorrelationEngine(store *marketdata.Store, period int, logger *logrus.Logger) *CorrelationEngine {
	if period < 1 {
		period = 1
	}
	return &CorrelationEngine{
		store:  store,
		period: period,
		logger: logger,
	}
}

// DiffMatrix returns one diff vector per ticker, rows in sorted-ticker
// order. For each ticker the vector is value[i] - value[i-period] over
// its own series with the first period entries dropped. Every ticker
// must end up with the same number of observations.
func (e *CorrelationEngine) DiffMatrix() ([][]float64, error) {
	e.diffOnce.Do(func() {
		e.diff, e.diffErr = e.computeDiff()
	})
	return e.diff, e.diffErr
}

func (e *CorrelationEngine) computeDiff() ([][]float64, error) {
	names := e.store.Tickers()
	rows := make([][]float64, 0, len(names))

	want := -1
	for _, name := range names {
		series := e.store.SeriesFor(name)
		if len(series) <= e.period {
			return nil, fmt.Errorf("%w: %s has %d observations, need more than %d",
				ErrUnalignedSeries, name, len(series), e.period)
		}

		diff := make([]float64, len(series)-e.period)
		for i := e.period; i < len(series); i++ {
			cur := series[i].Close.InexactFloat64()
			prev := series[i-e.period].Close.InexactFloat64()
			diff[i-e.period] = cur - prev
		}

		if want == -1 {
			want = len(diff)
		} else if len(diff) != want {
			return nil, fmt.Errorf("%w: %s has %d diff observations, expected %d",
				ErrUnalignedSeries, name, len(diff), want)
		}
		rows = append(rows, diff)
	}

	return rows, nil
}

// Pearson returns the cached Pearson correlation matrix, computing it
// on first use. Zero-variance series get similarity 0 against every
// ticker; NaN never reaches a caller.
func (e *CorrelationEngine) Pearson() (*Matrix, error) {
	e.pearsonOnce.Do(func() {
		e.pearson, e.pearsonErr = e.computePearson()
	})
	return e.pearson, e.pearsonErr
}

func (e *CorrelationEngine) computePearson() (*Matrix, error) {
	diff, err := e.DiffMatrix()
	if err != nil {
		return nil, err
	}

	names := e.store.Tickers()
	n := len(diff)

	// Center each row once; a zero norm marks a degenerate series.
	centered := make([][]float64, n)
	norms := make([]float64, n)
	for i, row := range diff {
		mean := 0.0
		for _, v := range row {
			mean += v
		}
		mean /= float64(len(row))

		c := make([]float64, len(row))
		sq := 0.0
		for j, v := range row {
			c[j] = v - mean
			sq += c[j] * c[j]
		}
		centered[i] = c
		norms[i] = math.Sqrt(sq)
	}

	data := make([][]float64, n)
	for i := range data {
		data[i] = make([]float64, n)
	}
	degenerate := 0
	for i := 0; i < n; i++ {
		if norms[i] == 0 {
			degenerate++
			continue
		}
		data[i][i] = 1.0
		for j := i + 1; j < n; j++ {
			if norms[j] == 0 {
				continue
			}
			dot := 0.0
			for k := range centered[i] {
				dot += centered[i][k] * centered[j][k]
			}
			r := dot / (norms[i] * norms[j])
			data[i][j] = r
			data[j][i] = r
		}
	}

	if degenerate > 0 && e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"tickers": degenerate,
			"method":  "pearson",
		}).Warn("zero-variance series scored as 0 similarity")
	}

	return newMatrix(names, data), nil
}

// Cosine returns the cached cosine similarity matrix over the same
// diff rows, computing it on first use.
func (e *CorrelationEngine) Cosine() (*Matrix, error) {
	e.cosineOnce.Do(func() {
		e.cosine, e.cosineErr = e.computeCosine()
	})
	return e.cosine, e.cosineErr
}

func (e *CorrelationEngine) computeCosine() (*Matrix, error) {
	diff, err := e.DiffMatrix()
	if err != nil {
		return nil, err
	}

	names := e.store.Tickers()
	n := len(diff)

	norms := make([]float64, n)
	for i, row := range diff {
		sq := 0.0
		for _, v := range row {
			sq += v * v
		}
		norms[i] = math.Sqrt(sq)
	}

	data := make([][]float64, n)
	for i := range data {
		data[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		if norms[i] == 0 {
			continue
		}
		data[i][i] = 1.0
		for j := i + 1; j < n; j++ {
			if norms[j] == 0 {
				continue
			}
			dot := 0.0
			for k := range diff[i] {
				dot += diff[i][k] * diff[j][k]
			}
			s := dot / (norms[i] * norms[j])
			data[i][j] = s
			data[j][i] = s
		}
	}

	return newMatrix(names, data), nil
}

// Edges exports the lower triangle of the Pearson matrix as undirected
// graph edges for the external graph loader. Entries at or below the
// threshold are dropped; weights are scaled by 1000.
func (e *CorrelationEngine) Edges(threshold float64) ([]models.CorrelationEdge, error) {
	matrix, err := e.Pearson()
	if err != nil {
		return nil, err
	}

	var edges []models.CorrelationEdge
	for i := 1; i < len(matrix.names); i++ {
		for j := 0; j < i; j++ {
			val := matrix.At(i, j)
			if val <= threshold {
				continue
			}
			edges = append(edges, models.CorrelationEdge{
				A:            matrix.names[i],
				B:            matrix.names[j],
				Relationship: "pearson",
				Weight:       val * 1000,
			})
		}
	}
	return edges, nil
}
