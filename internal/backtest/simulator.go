package backtest

import (
	"fmt"
	"time"

	"github.com/quantrun/sigval/internal/core"
	"github.com/quantrun/sigval/internal/marketdata"
)

// Simulator converts one signal event into at most one realized trade.
// Missing price data never produces an error: the signal is dropped and
// the run keeps going.
type Simulator struct {
	store       *marketdata.Store
	slippageBps float64
}

// NewSimulator creates a Simulator over the given store.
func NewSimulator(store *marketdata.Store, slippageBps float64) *Simulator {
	return &Simulator{store: store, slippageBps: slippageBps}
}

// Simulate processes one signal at the event date. pos is the ledger's
// open position for the signal's asset, nil when there is none. HOLD
// and SHORT signals record nothing; SHORT is accepted input but the
// ledger is long-only.
func (s *Simulator) Simulate(sig core.Signal, date time.Time, pos *core.Position) *core.TradeResult {
	switch sig.Action {
	case core.ActionBuy:
		return s.simulateBuy(sig, date)
	case core.ActionSell:
		return s.simulateSell(sig, date, pos)
	}
	return nil
}

// simulateBuy opens at the first price on or after the event date and
// scans forward for an exit: stop-loss first, then profit target, then
// horizon expiry.
func (s *Simulator) simulateBuy(sig core.Signal, date time.Time) *core.TradeResult {
	series := s.store.SeriesFrom(sig.Asset, date)
	if len(series) == 0 {
		return nil
	}

	entry := series[0].Price * (1 + s.slippageBps/10000)
	stop := entry * stopLossRatio
	target := entry * (1 + sig.ExpectedReturn/100)

	exitPrice := entry
	exitDate := series[0].Date
	duration := 0

	forward := series[1:]
	if len(forward) > maxHoldingObservations {
		forward = forward[:maxHoldingObservations]
	}

	for i, p := range forward {
		exitPrice = p.Price
		exitDate = p.Date
		duration = i + 1

		// Stop-loss wins the tie when both thresholds hit on the
		// same observation.
		if p.Price <= stop {
			break
		}
		if p.Price >= target {
			break
		}
	}

	return &core.TradeResult{
		EntryDate:       date,
		ExitDate:        exitDate,
		Asset:           sig.Asset,
		Action:          core.ActionBuy,
		EntryPrice:      entry,
		ExitPrice:       exitPrice,
		ReturnPct:       (exitPrice - entry) / entry * 100,
		Duration:        duration,
		FedEventContext: s.fedContext(date),
	}
}

// simulateSell closes an open position at the current date's slipped
// price. Entry price and date come from the ledger's record.
func (s *Simulator) simulateSell(sig core.Signal, date time.Time, pos *core.Position) *core.TradeResult {
	if pos == nil {
		return nil
	}

	p, ok := s.store.PriceOnOrAfter(sig.Asset, date)
	if !ok {
		return nil
	}
	exit := p.Price * (1 - s.slippageBps/10000)

	return &core.TradeResult{
		EntryDate:       pos.EntryDate,
		ExitDate:        date,
		Asset:           sig.Asset,
		Action:          core.ActionSell,
		EntryPrice:      pos.EntryPrice,
		ExitPrice:       exit,
		ReturnPct:       (exit - pos.EntryPrice) / pos.EntryPrice * 100,
		Duration:        int(date.Sub(pos.EntryDate).Hours() / 24),
		FedEventContext: s.fedContext(date),
	}
}

// fedContext tags a trade with the policy rate nearest the trade date,
// empty when nothing lies within ±7 days.
func (s *Simulator) fedContext(date time.Time) string {
	pt, ok := s.store.NearestEconomic(date, fedContextWindow)
	if !ok {
		return ""
	}
	rate, _ := pt.PolicyRate()
	return fmt.Sprintf("Fed funds rate %.2f%% as of %s", rate, pt.Date.Format("2006-01-02"))
}
