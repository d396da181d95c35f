package backtest

import (
	"math"

	"github.com/quantrun/sigval/internal/core"
)

// Analyze computes the performance bundle from one completed replay.
// It is a pure function: identical inputs yield identical output.
//
// Division-by-zero policy: win rate is 0 with no trades, Sharpe is 0
// with zero volatility, profit factor is +Inf for lossless profitable
// runs and 1 when there is neither profit nor loss. The report layer
// distinguishes "no trades" from a genuine zero via TotalTrades.
func Analyze(initialCapital, finalValue float64, snapshots []core.PortfolioSnapshot, trades []core.TradeResult, period core.Period) Performance {
	perf := Performance{
		TotalReturnPct:      (finalValue - initialCapital) / initialCapital * 100,
		AnnualizedReturnPct: annualizedReturn(initialCapital, finalValue, period.Years()),
		MaxDrawdownPct:      maxDrawdown(snapshots) * 100,
	}

	daily := dailyReturns(snapshots)
	perf.SharpeRatio = sharpeRatio(daily)

	var wins int
	var grossProfit, grossLoss float64
	for _, t := range trades {
		if t.IsWin() {
			wins++
			grossProfit += t.ReturnPct
		} else {
			grossLoss += -t.ReturnPct
		}
	}

	if len(trades) > 0 {
		perf.WinRatePct = float64(wins) / float64(len(trades)) * 100
	}
	perf.ProfitFactor = profitFactor(grossProfit, grossLoss)

	return perf
}

func annualizedReturn(initial, final, years float64) float64 {
	if years <= 0 || initial <= 0 || final <= 0 {
		return 0
	}
	return (math.Pow(final/initial, 1/years) - 1) * 100
}

// dailyReturns computes simple percent changes between consecutive
// snapshots. Zero-valued snapshots terminate the ratio chain and are
// skipped.
func dailyReturns(snapshots []core.PortfolioSnapshot) []float64 {
	var returns []float64
	for i := 1; i < len(snapshots); i++ {
		prev := snapshots[i-1].Value
		if prev == 0 {
			continue
		}
		returns = append(returns, (snapshots[i].Value-prev)/prev)
	}
	return returns
}

func sharpeRatio(daily []float64) float64 {
	if len(daily) < 2 {
		return 0
	}

	var sum float64
	for _, r := range daily {
		sum += r
	}
	mean := sum / float64(len(daily))

	var variance float64
	for _, r := range daily {
		variance += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(daily)-1))
	if stdDev == 0 {
		return 0
	}

	annualized := mean * tradingDaysPerYear
	return (annualized - riskFreeRate) / (stdDev * math.Sqrt(tradingDaysPerYear))
}

// maxDrawdown finds the largest peak-to-trough decline in the snapshot
// series using the running-peak method. Returned as a fraction.
func maxDrawdown(snapshots []core.PortfolioSnapshot) float64 {
	var peak, maxDD float64
	for _, s := range snapshots {
		if s.Value > peak {
			peak = s.Value
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - s.Value) / peak
		if dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func profitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 1
	}
	return grossProfit / grossLoss
}
