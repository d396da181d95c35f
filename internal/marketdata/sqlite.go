package marketdata

import (
	"context"
	"database/sql"
	"time"

	"github.com/quantrun/sigval/internal/core"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// LoadSQLite materializes a Store from a SQLite database.
//
// Expected schema:
//
//	prices(asset TEXT, date TEXT, price REAL, volume INTEGER)
//	economic(date TEXT, series TEXT, value REAL)
//
// Dates are ISO 8601 (YYYY-MM-DD). Rows are read in ascending date
// order; the resulting series satisfy the store's ordering invariant.
func LoadSQLite(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	defer db.Close()

	prices, err := loadPrices(ctx, db)
	if err != nil {
		return nil, err
	}
	economic, err := loadEconomic(ctx, db)
	if err != nil {
		return nil, err
	}
	return NewStore(prices, economic), nil
}

func loadPrices(ctx context.Context, db *sql.DB) (map[string][]core.PricePoint, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT asset, date, price, COALESCE(volume, 0) FROM prices ORDER BY asset, date`)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	defer rows.Close()

	prices := make(map[string][]core.PricePoint)
	for rows.Next() {
		var asset, date string
		var p core.PricePoint
		if err := rows.Scan(&asset, &date, &p.Price, &p.Volume); err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}
		p.Date, err = time.Parse("2006-01-02", date)
		if err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}
		prices[asset] = append(prices[asset], p)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	return prices, nil
}

func loadEconomic(ctx context.Context, db *sql.DB) ([]core.EconomicPoint, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT date, series, value FROM economic ORDER BY date`)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	defer rows.Close()

	// Fold multiple series rows for the same date into one point.
	var points []core.EconomicPoint
	byDate := make(map[string]int)

	for rows.Next() {
		var date, series string
		var value float64
		if err := rows.Scan(&date, &series, &value); err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}

		idx, seen := byDate[date]
		if !seen {
			d, err := time.Parse("2006-01-02", date)
			if err != nil {
				return nil, core.WrapError(core.ErrStoreFailed, err)
			}
			points = append(points, core.EconomicPoint{
				Date:   d,
				Fields: make(map[string]float64),
			})
			idx = len(points) - 1
			byDate[date] = idx
		}
		points[idx].Fields[series] = value
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	return points, nil
}
