package marketdata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fardaevm/diversify/internal/models"
)

// PriceQuerier is the query surface needed to load price rows. It is
// satisfied by *pgxpool.Pool and by pgxmock in tests.
type PriceQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const selectPriceRows = `
	SELECT date, ticker, close, sector, industry, short_name
	FROM stock_prices
	ORDER BY ticker, date`

// LoadFromPostgres reads the full price table and builds a store from
// it. Ordering by (ticker, date) gives NewStore the strictly increasing
// per-ticker sequences it requires.
func LoadFromPostgres(ctx context.Context, db PriceQuerier) (*Store, error) {
	rows, err := db.Query(ctx, selectPriceRows)
	if err != nil {
		return nil, fmt.Errorf("query price rows: %w", err)
	}
	defer rows.Close()

	var priceRows []models.PriceRow
	for rows.Next() {
		var row models.PriceRow
		if err := rows.Scan(&row.Date, &row.Ticker, &row.Close, &row.Sector, &row.Industry, &row.ShortName); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		priceRows = append(priceRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price rows: %w", err)
	}

	return NewStore(priceRows)
}
