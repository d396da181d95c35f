package core

import (
	"fmt"
	"time"
)

// Action represents a trading signal action
type Action string

const (
	ActionBuy   Action = "BUY"
	ActionSell  Action = "SELL"
	ActionHold  Action = "HOLD"
	ActionShort Action = "SHORT"
)

// ParseAction validates a raw action string against the closed set.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionBuy, ActionSell, ActionHold, ActionShort:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// PricePoint is one observed price for an asset on one day.
// Series are assumed sorted ascending by date on ingestion; lookups
// trust that ordering and do not verify it.
type PricePoint struct {
	Date   time.Time
	Price  float64
	Volume int64
}

// EconomicPoint is one dated macro observation. Fields carries raw
// series values keyed by series name; the engine only reads DFF.
type EconomicPoint struct {
	Date   time.Time
	Fields map[string]float64
}

// FieldDFF is the federal funds effective rate series key.
const FieldDFF = "DFF"

// PolicyRate returns the DFF field if the point carries one.
func (e EconomicPoint) PolicyRate() (float64, bool) {
	v, ok := e.Fields[FieldDFF]
	return v, ok
}

// Signal is a dated trading instruction for one asset.
type Signal struct {
	Asset          string
	Action         Action
	Confidence     float64
	Reasoning      string
	ExpectedReturn float64 // profit target, percent
}

// SignalEvent groups the signals issued on one date. A backtest run
// consumes events in non-decreasing date order; ordering is the
// caller's responsibility.
type SignalEvent struct {
	Date    time.Time
	Signals []Signal
}

// Position is an open long position tracked by the ledger.
// At most one per asset at a time.
type Position struct {
	Asset      string
	Shares     int64
	EntryPrice float64
	EntryDate  time.Time
}

// TradeResult is one completed round-trip. Immutable once created.
type TradeResult struct {
	EntryDate       time.Time
	ExitDate        time.Time
	Asset           string
	Action          Action
	EntryPrice      float64
	ExitPrice       float64
	ReturnPct       float64
	Duration        int // observation-index distance, a trading-day proxy
	FedEventContext string
}

// IsWin reports whether the trade was profitable.
func (t TradeResult) IsWin() bool {
	return t.ReturnPct > 0
}

// PortfolioSnapshot is the portfolio valuation after one signal event:
// cash plus open positions marked at that date's price.
type PortfolioSnapshot struct {
	Date  time.Time
	Value float64
}

// Period bounds a backtest run.
type Period struct {
	Start time.Time
	End   time.Time
}

// Years returns the period length in years (365.25-day convention).
func (p Period) Years() float64 {
	return p.End.Sub(p.Start).Hours() / 24 / 365.25
}

// Benchmark holds the optional benchmark comparison.
type Benchmark struct {
	Asset            string
	ReturnPct        float64
	AlphaPct         float64
	Beta             float64
	InformationRatio float64
}

// BacktestResult is the aggregate output of one run. Computed once at
// the end of a run and read-only thereafter.
type BacktestResult struct {
	RunID               string
	Period              Period
	InitialCapital      float64
	FinalValue          float64
	TotalReturnPct      float64
	AnnualizedReturnPct float64
	SharpeRatio         float64
	MaxDrawdownPct      float64
	WinRatePct          float64
	ProfitFactor        float64
	TotalTrades         int
	Trades              []TradeResult
	Snapshots           []PortfolioSnapshot
	Benchmark           *Benchmark
}
