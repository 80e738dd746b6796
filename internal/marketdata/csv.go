package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fardaevm/diversify/internal/models"
)

// Required columns of the price CSV. Column order is irrelevant; the
// header row decides.
const (
	colDate   = "Date"
	colTicker = "Ticker"
	colClose  = "Close"

	colSector    = "Sector"
	colIndustry  = "Industry"
	colShortName = "Short Name"
)

var csvDateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// LoadCSV parses tabular price data and builds a store from it. A
// missing required column or an unparseable cell aborts the load.
func LoadCSV(r io.Reader) (*Store, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformedInput, err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, required := range []string{colDate, colTicker, colClose} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w: missing required column %q", ErrMalformedInput, required)
		}
	}

	var rows []models.PriceRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, line, err)
		}

		date, err := parseCSVDate(record[idx[colDate]])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, line, err)
		}

		closePrice, err := decimal.NewFromString(record[idx[colClose]])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid close price %q", ErrMalformedInput, line, record[idx[colClose]])
		}

		row := models.PriceRow{
			Date:   date,
			Ticker: record[idx[colTicker]],
			Close:  closePrice,
		}
		if i, ok := idx[colSector]; ok {
			row.Sector = record[i]
		}
		if i, ok := idx[colIndustry]; ok {
			row.Industry = record[i]
		}
		if i, ok := idx[colShortName]; ok {
			row.ShortName = record[i]
		}
		rows = append(rows, row)
	}

	return NewStore(rows)
}

func parseCSVDate(value string) (time.Time, error) {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}
