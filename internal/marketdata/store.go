// Package marketdata holds the read-only price and economic data a
// backtest run consumes. All data is materialized before a run starts;
// a Store is safe to share across concurrent runs.
package marketdata

import (
	"time"

	"github.com/quantrun/sigval/internal/core"
)

// Store maps assets to chronological price series and exposes the
// macro data point sequence. Series are trusted to be sorted ascending
// by date; the store does not verify or re-sort.
type Store struct {
	prices   map[string][]core.PricePoint
	economic []core.EconomicPoint
}

// NewStore creates a Store over the given series.
func NewStore(prices map[string][]core.PricePoint, economic []core.EconomicPoint) *Store {
	if prices == nil {
		prices = make(map[string][]core.PricePoint)
	}
	return &Store{prices: prices, economic: economic}
}

// AddSeries registers the price series for an asset, replacing any
// existing series. Call before the first run; a Store must not be
// mutated while runs are in flight.
func (s *Store) AddSeries(asset string, series []core.PricePoint) {
	s.prices[asset] = series
}

// Assets returns the number of assets with a price series.
func (s *Store) Assets() int {
	return len(s.prices)
}

// PriceOnOrAfter returns the first observation for asset with
// date >= target. The second return is false when the asset has no
// series or no observation on or after the target date; missing data
// is not an error.
func (s *Store) PriceOnOrAfter(asset string, target time.Time) (core.PricePoint, bool) {
	series, ok := s.prices[asset]
	if !ok {
		return core.PricePoint{}, false
	}
	for _, p := range series {
		if !p.Date.Before(target) {
			return p, true
		}
	}
	return core.PricePoint{}, false
}

// SeriesFrom returns the suffix of the asset's series starting at the
// first observation with date >= target. Nil when nothing matches.
func (s *Store) SeriesFrom(asset string, target time.Time) []core.PricePoint {
	series, ok := s.prices[asset]
	if !ok {
		return nil
	}
	for i, p := range series {
		if !p.Date.Before(target) {
			return series[i:]
		}
	}
	return nil
}

// NearestEconomic returns the economic point closest to date within
// ±window that carries a policy rate.
func (s *Store) NearestEconomic(date time.Time, window time.Duration) (core.EconomicPoint, bool) {
	var best core.EconomicPoint
	bestDist := window + 1
	found := false

	for _, p := range s.economic {
		if _, ok := p.PolicyRate(); !ok {
			continue
		}
		dist := date.Sub(p.Date)
		if dist < 0 {
			dist = -dist
		}
		if dist <= window && dist < bestDist {
			best = p
			bestDist = dist
			found = true
		}
	}
	return best, found
}

// EconomicWindow returns the economic points within ±window of date
// that carry a policy rate, in chronological order.
func (s *Store) EconomicWindow(date time.Time, window time.Duration) []core.EconomicPoint {
	var out []core.EconomicPoint
	lo := date.Add(-window)
	hi := date.Add(window)

	for _, p := range s.economic {
		if _, ok := p.PolicyRate(); !ok {
			continue
		}
		if p.Date.Before(lo) || p.Date.After(hi) {
			continue
		}
		out = append(out, p)
	}
	return out
}
