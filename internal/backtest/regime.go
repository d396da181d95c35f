package backtest

import (
	"sort"
	"time"

	"github.com/quantrun/sigval/internal/core"
	"github.com/quantrun/sigval/internal/marketdata"
)

// Regime classifies the monetary-policy trend around a date.
type Regime string

const (
	RegimeEasing       Regime = "easing"
	RegimeTightening   Regime = "tightening"
	RegimeHold         Regime = "hold"
	RegimeUnclassified Regime = "unclassified"
)

// ClassifyRegime compares the earliest and latest policy rates within
// ±90 days of the date. A move above +0.25 is tightening, below -0.25
// easing, anything between is hold. Fewer than two observations in the
// window cannot establish a trend.
func ClassifyRegime(store *marketdata.Store, date time.Time) Regime {
	points := store.EconomicWindow(date, regimeWindow)
	if len(points) < 2 {
		return RegimeUnclassified
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	first, _ := points[0].PolicyRate()
	last, _ := points[len(points)-1].PolicyRate()

	switch delta := last - first; {
	case delta > regimeRateThreshold:
		return RegimeTightening
	case delta < -regimeRateThreshold:
		return RegimeEasing
	default:
		return RegimeHold
	}
}

// RegimeStats aggregates trade outcomes for one regime bucket.
type RegimeStats struct {
	Regime       Regime
	Trades       int
	AvgReturnPct float64
	WinRatePct   float64
}

// Attribution partitions the trade list by the policy regime at each
// trade's entry date. Unclassified trades are excluded from every
// bucket and only counted.
type Attribution struct {
	Easing       RegimeStats
	Tightening   RegimeStats
	Hold         RegimeStats
	Unclassified int
}

// Attribute classifies every trade and computes per-bucket statistics.
func Attribute(store *marketdata.Store, trades []core.TradeResult) Attribution {
	buckets := map[Regime][]core.TradeResult{}
	var unclassified int

	for _, t := range trades {
		regime := ClassifyRegime(store, t.EntryDate)
		if regime == RegimeUnclassified {
			unclassified++
			continue
		}
		buckets[regime] = append(buckets[regime], t)
	}

	return Attribution{
		Easing:       bucketStats(RegimeEasing, buckets[RegimeEasing]),
		Tightening:   bucketStats(RegimeTightening, buckets[RegimeTightening]),
		Hold:         bucketStats(RegimeHold, buckets[RegimeHold]),
		Unclassified: unclassified,
	}
}

func bucketStats(regime Regime, trades []core.TradeResult) RegimeStats {
	stats := RegimeStats{Regime: regime, Trades: len(trades)}
	if len(trades) == 0 {
		return stats
	}

	var sum float64
	var wins int
	for _, t := range trades {
		sum += t.ReturnPct
		if t.IsWin() {
			wins++
		}
	}
	stats.AvgReturnPct = sum / float64(len(trades))
	stats.WinRatePct = float64(wins) / float64(len(trades)) * 100
	return stats
}
