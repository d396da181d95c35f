package backtest

import (
	"fmt"
	"time"

	"github.com/quantrun/sigval/internal/core"
)

// Simulation constants. These mirror the reference strategy rules:
// a fixed six-month holding horizon in trading days, a 10% stop-loss,
// and 10%-of-capital position sizing.
const (
	maxHoldingObservations = 126
	stopLossRatio          = 0.90
	positionSizePct        = 0.10

	riskFreeRate        = 0.045
	tradingDaysPerYear  = 252
	fedContextWindow    = 7 * 24 * time.Hour
	regimeWindow        = 90 * 24 * time.Hour
	regimeRateThreshold = 0.25
)

// Config holds the options for one backtest run.
type Config struct {
	Start          time.Time
	End            time.Time
	InitialCapital float64
	BenchmarkAsset string
	// RebalanceFrequency is carried for reporting only; the simulation
	// loop does not enforce it.
	RebalanceFrequency string
	TransactionCostBps float64
	SlippageBps        float64
}

// Validate checks the run configuration.
func (c Config) Validate() error {
	if c.InitialCapital <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial capital must be positive, got %f", c.InitialCapital))
	}
	if c.End.Before(c.Start) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("end date %s before start date %s",
				c.End.Format("2006-01-02"), c.Start.Format("2006-01-02")))
	}
	if c.TransactionCostBps < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("transaction cost cannot be negative, got %f bps", c.TransactionCostBps))
	}
	if c.SlippageBps < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("slippage cannot be negative, got %f bps", c.SlippageBps))
	}
	return nil
}

// Period returns the run period bounds.
func (c Config) Period() core.Period {
	return core.Period{Start: c.Start, End: c.End}
}

// Performance is the metrics bundle produced by Analyze.
type Performance struct {
	TotalReturnPct      float64
	AnnualizedReturnPct float64
	SharpeRatio         float64
	MaxDrawdownPct      float64
	WinRatePct          float64
	ProfitFactor        float64
}
