package backtest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quantrun/sigval/internal/core"
	"github.com/quantrun/sigval/internal/marketdata"
	"github.com/quantrun/sigval/internal/metrics"
	"go.uber.org/zap"
)

// Backtester runs signal timelines against historical data. The store
// is read-only and shared; every run owns its own ledger state, so
// independent runs may execute concurrently.
type Backtester struct {
	store   *marketdata.Store
	log     *zap.Logger
	metrics *metrics.Registry
}

// New creates a Backtester over the given store.
func New(store *marketdata.Store, log *zap.Logger) *Backtester {
	if log == nil {
		log = zap.NewNop()
	}
	return &Backtester{store: store, log: log}
}

// WithMetrics attaches a metrics registry. Optional; a nil registry
// records nothing.
func (b *Backtester) WithMetrics(reg *metrics.Registry) *Backtester {
	b.metrics = reg
	return b
}

// Run replays the full event timeline once, then derives the
// performance bundle and benchmark comparison from the accumulated
// trade and snapshot history.
func (b *Backtester) Run(ctx context.Context, cfg Config, events []core.SignalEvent) (*core.BacktestResult, error) {
	started := time.Now()

	result, err := b.run(ctx, cfg, events)

	if b.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		b.metrics.RecordBacktest(status, time.Since(started).Seconds())
	}
	return result, err
}

func (b *Backtester) run(ctx context.Context, cfg Config, events []core.SignalEvent) (*core.BacktestResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, core.ErrEmptyTimeline
	}

	ledger := NewLedger(b.store, cfg, b.log)
	if err := ledger.Replay(ctx, events); err != nil {
		return nil, err
	}

	trades := ledger.Trades()
	snapshots := ledger.Snapshots()
	finalValue := ledger.FinalValue()
	period := cfg.Period()

	perf := Analyze(cfg.InitialCapital, finalValue, snapshots, trades, period)

	result := &core.BacktestResult{
		RunID:               uuid.NewString(),
		Period:              period,
		InitialCapital:      cfg.InitialCapital,
		FinalValue:          finalValue,
		TotalReturnPct:      perf.TotalReturnPct,
		AnnualizedReturnPct: perf.AnnualizedReturnPct,
		SharpeRatio:         perf.SharpeRatio,
		MaxDrawdownPct:      perf.MaxDrawdownPct,
		WinRatePct:          perf.WinRatePct,
		ProfitFactor:        perf.ProfitFactor,
		TotalTrades:         len(trades),
		Trades:              trades,
		Snapshots:           snapshots,
	}

	if cfg.BenchmarkAsset != "" {
		result.Benchmark = CompareBenchmark(b.store, cfg.BenchmarkAsset, period, perf.TotalReturnPct, snapshots)
	}

	if b.metrics != nil {
		for _, t := range trades {
			b.metrics.RecordTrade(string(t.Action))
		}
		b.metrics.AddDroppedSignals("missing_data", ledger.DroppedSignals())
	}

	b.log.Info("backtest complete",
		zap.String("run_id", result.RunID),
		zap.Int("events", len(events)),
		zap.Int("trades", len(trades)),
		zap.Int("dropped_signals", ledger.DroppedSignals()),
		zap.Float64("total_return_pct", perf.TotalReturnPct),
	)

	return result, nil
}

// Attribute partitions a run's trades by entry-date policy regime.
func (b *Backtester) Attribute(trades []core.TradeResult) Attribution {
	return Attribute(b.store, trades)
}

// Sweep executes independent configurations concurrently against the
// shared store. results[i] corresponds to cfgs[i]; failed runs leave a
// nil slot and their errors are joined.
func (b *Backtester) Sweep(ctx context.Context, cfgs []Config, events []core.SignalEvent) ([]*core.BacktestResult, error) {
	results := make([]*core.BacktestResult, len(cfgs))
	errs := make([]error, len(cfgs))

	var wg sync.WaitGroup
	for i, cfg := range cfgs {
		wg.Add(1)
		go func(i int, cfg Config) {
			defer wg.Done()
			results[i], errs[i] = b.Run(ctx, cfg, events)
		}(i, cfg)
	}
	wg.Wait()

	return results, errors.Join(errs...)
}
