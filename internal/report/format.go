// Package report renders completed backtest results for the CLI and
// the archive. It is a read-only consumer of the engine's output.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/quantrun/sigval/internal/backtest"
	"github.com/quantrun/sigval/internal/core"
	"github.com/quantrun/sigval/internal/reference"
)

// Render produces the plain-text report. Metrics that are undefined
// for lack of data render as "n/a" — a missing number is not a zero.
func Render(result *core.BacktestResult, attr *backtest.Attribution, tables *reference.Tables) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== SIGVAL Backtest Report ===\n")
	fmt.Fprintf(&b, "Run:      %s\n", result.RunID)
	fmt.Fprintf(&b, "Period:   %s to %s\n",
		result.Period.Start.Format("2006-01-02"), result.Period.End.Format("2006-01-02"))
	fmt.Fprintf(&b, "Capital:  %.2f -> %.2f\n", result.InitialCapital, result.FinalValue)
	fmt.Fprintf(&b, "\n")

	fmt.Fprintf(&b, "Total return:      %.2f%%\n", result.TotalReturnPct)
	fmt.Fprintf(&b, "Annualized return: %.2f%%\n", result.AnnualizedReturnPct)
	fmt.Fprintf(&b, "Sharpe ratio:      %.2f\n", result.SharpeRatio)
	fmt.Fprintf(&b, "Max drawdown:      %.2f%%\n", result.MaxDrawdownPct)
	fmt.Fprintf(&b, "Trades:            %d\n", result.TotalTrades)

	if result.TotalTrades == 0 {
		fmt.Fprintf(&b, "Win rate:          n/a (no trades)\n")
		fmt.Fprintf(&b, "Profit factor:     n/a (no trades)\n")
	} else {
		fmt.Fprintf(&b, "Win rate:          %.1f%%\n", result.WinRatePct)
		fmt.Fprintf(&b, "Profit factor:     %s\n", formatRatio(result.ProfitFactor))
	}

	if result.Benchmark != nil {
		bm := result.Benchmark
		fmt.Fprintf(&b, "\nBenchmark (%s):\n", bm.Asset)
		fmt.Fprintf(&b, "  Return:            %.2f%%\n", bm.ReturnPct)
		fmt.Fprintf(&b, "  Alpha:             %.2f%%\n", bm.AlphaPct)
		fmt.Fprintf(&b, "  Beta:              %.2f\n", bm.Beta)
		fmt.Fprintf(&b, "  Information ratio: %.2f\n", bm.InformationRatio)
	}

	if attr != nil {
		fmt.Fprintf(&b, "\nRegime attribution:\n")
		for _, stats := range []backtest.RegimeStats{attr.Easing, attr.Tightening, attr.Hold} {
			fmt.Fprintf(&b, "  %-12s %3d trades", stats.Regime, stats.Trades)
			if stats.Trades > 0 {
				fmt.Fprintf(&b, "  avg %.2f%%  win %.1f%%", stats.AvgReturnPct, stats.WinRatePct)
				if tables != nil {
					if hr, ok := tables.HedgeRatio(string(stats.Regime)); ok {
						fmt.Fprintf(&b, "  hedge %.2f", hr)
					}
				}
			}
			fmt.Fprintf(&b, "\n")
		}
		if attr.Unclassified > 0 {
			fmt.Fprintf(&b, "  %-12s %3d trades (excluded)\n", "unclassified", attr.Unclassified)
		}
	}

	return b.String()
}

// RenderTrades produces the per-trade detail block.
func RenderTrades(trades []core.TradeResult) string {
	if len(trades) == 0 {
		return "no trades\n"
	}

	var b strings.Builder
	for _, t := range trades {
		fmt.Fprintf(&b, "%s  %-5s %-8s %9.2f -> %9.2f  %+7.2f%%  %3dd",
			t.EntryDate.Format("2006-01-02"), t.Action, t.Asset,
			t.EntryPrice, t.ExitPrice, t.ReturnPct, t.Duration)
		if t.FedEventContext != "" {
			fmt.Fprintf(&b, "  [%s]", t.FedEventContext)
		}
		fmt.Fprintf(&b, "\n")
	}
	return b.String()
}

func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
