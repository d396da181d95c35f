package metrics

import (
	"testing"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("expected non-nil registry")
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(mfs) == 0 {
		t.Error("expected some metrics to be registered")
	}
}

func gatherValue(t *testing.T, reg *Registry, name string) (float64, bool) {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			if m.GetCounter() != nil {
				total += m.GetCounter().GetValue()
			}
		}
		return total, true
	}
	return 0, false
}

func TestRegistry_RecordBacktest(t *testing.T) {
	reg := NewRegistry()

	reg.RecordBacktest("ok", 0.2)
	reg.RecordBacktest("error", 0.1)

	total, found := gatherValue(t, reg, "sigval_backtests_total")
	if !found {
		t.Fatal("expected sigval_backtests_total metric")
	}
	if total != 2 {
		t.Errorf("backtests_total = %v, want 2", total)
	}
}

func TestRegistry_RecordTrade(t *testing.T) {
	reg := NewRegistry()

	reg.RecordTrade("BUY")
	reg.RecordTrade("BUY")
	reg.RecordTrade("SELL")

	total, found := gatherValue(t, reg, "sigval_trades_simulated_total")
	if !found {
		t.Fatal("expected sigval_trades_simulated_total metric")
	}
	if total != 3 {
		t.Errorf("trades_simulated_total = %v, want 3", total)
	}
}

func TestRegistry_AddDroppedSignals(t *testing.T) {
	reg := NewRegistry()

	reg.AddDroppedSignals("missing_data", 4)
	reg.AddDroppedSignals("missing_data", 0)  // no-op
	reg.AddDroppedSignals("missing_data", -1) // no-op

	total, found := gatherValue(t, reg, "sigval_signals_dropped_total")
	if !found {
		t.Fatal("expected sigval_signals_dropped_total metric")
	}
	if total != 4 {
		t.Errorf("signals_dropped_total = %v, want 4", total)
	}
}

func TestRegistry_RecordRequest(t *testing.T) {
	reg := NewRegistry()

	reg.RecordRequest("POST", "/api/backtest", 200, 0.05)

	total, found := gatherValue(t, reg, "http_requests_total")
	if !found {
		t.Fatal("expected http_requests_total metric")
	}
	if total != 1 {
		t.Errorf("http_requests_total = %v, want 1", total)
	}
}

func TestStatusToString(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{503, "5xx"},
	}

	for _, tt := range tests {
		if got := statusToString(tt.status); got != tt.expected {
			t.Errorf("statusToString(%d) = %s, want %s", tt.status, got, tt.expected)
		}
	}
}
