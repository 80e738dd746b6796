package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single closing-price observation for a ticker.
type PricePoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// PriceRow is one tabular input row as supplied by an ingestion source
// (CSV export or the price table). Sector, industry and short name are
// optional metadata columns.
type PriceRow struct {
	Date      time.Time       `json:"date"`
	Ticker    string          `json:"ticker"`
	Close     decimal.Decimal `json:"close"`
	Sector    string          `json:"sector,omitempty"`
	Industry  string          `json:"industry,omitempty"`
	ShortName string          `json:"short_name,omitempty"`
}

// SecurityMeta holds the descriptive attributes of one ticker.
type SecurityMeta struct {
	Ticker    string `json:"ticker"`
	ShortName string `json:"name,omitempty"`
	Sector    string `json:"sector,omitempty"`
	Industry  string `json:"industry,omitempty"`
}

// TimeSeriesMap maps ticker symbols to their ordered price series.
type TimeSeriesMap map[string][]PricePoint
