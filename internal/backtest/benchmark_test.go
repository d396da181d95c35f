package backtest

import (
	"math"
	"testing"

	"github.com/quantrun/sigval/internal/core"
	"github.com/quantrun/sigval/internal/marketdata"
)

func TestCompareBenchmark_ReturnAndAlpha(t *testing.T) {
	// Benchmark rises 100 -> 110 over the period: +10%.
	store := storeWith("SPY", series(100, 102, 104, 106, 108, 110))
	period := core.Period{Start: day(0), End: day(5)}
	snaps := snapshotSeries(100000, 101000, 102000, 103000, 104000, 105000)

	b := CompareBenchmark(store, "SPY", period, 5.0, snaps)
	if b == nil {
		t.Fatal("expected benchmark comparison")
	}

	if math.Abs(b.ReturnPct-10) > 1e-9 {
		t.Errorf("ReturnPct = %v, want 10", b.ReturnPct)
	}
	if math.Abs(b.AlphaPct-(-5)) > 1e-9 {
		t.Errorf("AlphaPct = %v, want -5", b.AlphaPct)
	}
	if b.Asset != "SPY" {
		t.Errorf("Asset = %q, want SPY", b.Asset)
	}
}

func TestCompareBenchmark_MissingData(t *testing.T) {
	store := marketdata.NewStore(nil, nil)
	period := core.Period{Start: day(0), End: day(5)}

	if b := CompareBenchmark(store, "SPY", period, 5.0, nil); b != nil {
		t.Errorf("expected nil for missing benchmark data, got %+v", b)
	}

	// Start price exists but nothing on or after the period end.
	short := storeWith("SPY", series(100, 101))
	if b := CompareBenchmark(short, "SPY", core.Period{Start: day(0), End: day(30)}, 5.0, nil); b != nil {
		t.Errorf("expected nil when the end price is missing, got %+v", b)
	}
}

func TestRegressionBeta_Doubled(t *testing.T) {
	// Portfolio moves exactly twice the benchmark each step.
	bench := []float64{0.01, -0.02, 0.015, 0.005}
	portfolio := make([]float64, len(bench))
	for i, r := range bench {
		portfolio[i] = 2 * r
	}

	beta := regressionBeta(portfolio, bench)
	if math.Abs(beta-2) > 1e-9 {
		t.Errorf("beta = %v, want 2", beta)
	}
}

func TestRegressionBeta_Degenerate(t *testing.T) {
	if beta := regressionBeta([]float64{0.01}, []float64{0.01}); beta != 0 {
		t.Errorf("single pair beta = %v, want 0", beta)
	}
	// Flat benchmark has no variance to regress against.
	if beta := regressionBeta([]float64{0.01, 0.02, 0.03}, []float64{0.01, 0.01, 0.01}); beta != 0 {
		t.Errorf("flat benchmark beta = %v, want 0", beta)
	}
}

func TestTrackingError(t *testing.T) {
	// Identical series track perfectly.
	same := []float64{0.01, -0.01, 0.02}
	if te := trackingError(same, same); te != 0 {
		t.Errorf("perfect tracking error = %v, want 0", te)
	}

	portfolio := []float64{0.02, -0.02, 0.03}
	bench := []float64{0.01, -0.01, 0.01}
	if te := trackingError(portfolio, bench); te <= 0 {
		t.Errorf("tracking error = %v, want positive", te)
	}
}

func TestCompareBenchmark_BetaFromAlignedReturns(t *testing.T) {
	// Benchmark and portfolio snapshots move in lockstep: beta 1.
	store := storeWith("SPY", series(100, 102, 104, 103, 105))
	period := core.Period{Start: day(0), End: day(4)}
	snaps := snapshotSeries(100, 102, 104, 103, 105)

	b := CompareBenchmark(store, "SPY", period, 5.0, snaps)
	if b == nil {
		t.Fatal("expected benchmark comparison")
	}
	if math.Abs(b.Beta-1) > 1e-9 {
		t.Errorf("Beta = %v, want 1", b.Beta)
	}
	// Perfect tracking leaves the information ratio undefined -> 0.
	if b.InformationRatio != 0 {
		t.Errorf("InformationRatio = %v, want 0 at zero tracking error", b.InformationRatio)
	}
}
