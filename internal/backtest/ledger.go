package backtest

import (
	"context"
	"math"

	"github.com/quantrun/sigval/internal/core"
	"github.com/quantrun/sigval/internal/marketdata"
	"go.uber.org/zap"
)

// Ledger replays an ordered sequence of signal events against starting
// capital, tracking open positions and cash, and accumulating the trade
// list and valuation series the analyzers consume. State at step n
// depends on steps 1..n-1; each run owns its own Ledger.
type Ledger struct {
	store *marketdata.Store
	sim   *Simulator
	log   *zap.Logger
	cfg   Config

	capital   float64
	positions map[string]core.Position
	trades    []core.TradeResult
	snapshots []core.PortfolioSnapshot
	dropped   int
}

// NewLedger creates a Ledger for one run.
func NewLedger(store *marketdata.Store, cfg Config, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{
		store:     store,
		sim:       NewSimulator(store, cfg.SlippageBps),
		log:       log,
		cfg:       cfg,
		capital:   cfg.InitialCapital,
		positions: make(map[string]core.Position),
	}
}

// Replay processes every event in order. The context is checked
// between events; a cancelled replay leaves partial state that must
// not be analyzed.
func (l *Ledger) Replay(ctx context.Context, events []core.SignalEvent) error {
	for _, ev := range events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		l.processEvent(ev)
	}
	return nil
}

func (l *Ledger) processEvent(ev core.SignalEvent) {
	for _, sig := range ev.Signals {
		l.processSignal(sig, ev)
	}

	l.snapshots = append(l.snapshots, core.PortfolioSnapshot{
		Date:  ev.Date,
		Value: l.capital + l.openPositionsValue(ev),
	})
}

func (l *Ledger) processSignal(sig core.Signal, ev core.SignalEvent) {
	var pos *core.Position
	if p, ok := l.positions[sig.Asset]; ok {
		pos = &p
	}

	trade := l.sim.Simulate(sig, ev.Date, pos)
	if trade == nil {
		if sig.Action == core.ActionBuy || sig.Action == core.ActionSell {
			// Missing data or sell-with-no-position. A sell against an
			// open position with no price match keeps the position: the
			// signal is dropped, not force-liquidated.
			l.dropped++
			l.log.Debug("signal dropped",
				zap.String("asset", sig.Asset),
				zap.String("action", string(sig.Action)),
				zap.Time("date", ev.Date),
			)
		}
		return
	}

	l.trades = append(l.trades, *trade)

	// Entry price stands in for notional traded value here; P&L does
	// not scale with share count. Kept for parity with the reference
	// implementation.
	cost := trade.EntryPrice * l.cfg.TransactionCostBps / 10000
	l.capital += trade.ReturnPct/100*trade.EntryPrice - cost

	switch sig.Action {
	case core.ActionBuy:
		if pos == nil {
			l.positions[sig.Asset] = core.Position{
				Asset:      sig.Asset,
				Shares:     int64(math.Floor(l.capital * positionSizePct / trade.EntryPrice)),
				EntryPrice: trade.EntryPrice,
				EntryDate:  ev.Date,
			}
		}
	case core.ActionSell:
		delete(l.positions, sig.Asset)
	}
}

// openPositionsValue marks every open position at the event date's
// price. Positions with no observation on or after the date contribute
// nothing to the snapshot.
func (l *Ledger) openPositionsValue(ev core.SignalEvent) float64 {
	var total float64
	for asset, pos := range l.positions {
		p, ok := l.store.PriceOnOrAfter(asset, ev.Date)
		if !ok {
			continue
		}
		total += float64(pos.Shares) * p.Price
	}
	return total
}

// Trades returns the accumulated trade list.
func (l *Ledger) Trades() []core.TradeResult {
	return l.trades
}

// Snapshots returns the accumulated valuation series.
func (l *Ledger) Snapshots() []core.PortfolioSnapshot {
	return l.snapshots
}

// FinalValue returns the last snapshot value, or the starting capital
// when no events were replayed.
func (l *Ledger) FinalValue() float64 {
	if len(l.snapshots) == 0 {
		return l.cfg.InitialCapital
	}
	return l.snapshots[len(l.snapshots)-1].Value
}

// DroppedSignals returns how many actionable signals were dropped for
// missing data.
func (l *Ledger) DroppedSignals() int {
	return l.dropped
}
