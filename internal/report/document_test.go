package report

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestNewDocument_Marshal(t *testing.T) {
	generated := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	doc := NewDocument(sampleResult(), nil, generated)

	data, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("round-trip: %v", err)
	}

	if decoded["run_id"] != "run-123" {
		t.Errorf("run_id = %v", decoded["run_id"])
	}
	if decoded["period_start"] != "2024-01-02" {
		t.Errorf("period_start = %v", decoded["period_start"])
	}
	if decoded["total_trades"].(float64) != 5 {
		t.Errorf("total_trades = %v", decoded["total_trades"])
	}
}

func TestNewDocument_InfiniteProfitFactorIsNull(t *testing.T) {
	result := sampleResult()
	result.ProfitFactor = math.Inf(1)

	doc := NewDocument(result, nil, time.Now())

	// encoding/json rejects +Inf outright; the document must still
	// marshal, with the undefined ratio as null.
	data, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal with +Inf profit factor: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("round-trip: %v", err)
	}
	if decoded["profit_factor"] != nil {
		t.Errorf("profit_factor = %v, want null", decoded["profit_factor"])
	}
}

func TestNewDocument_NoTrades(t *testing.T) {
	result := sampleResult()
	result.TotalTrades = 0
	result.Trades = nil

	doc := NewDocument(result, nil, time.Now())

	if doc.WinRatePct != nil || doc.ProfitFactor != nil {
		t.Error("undefined metrics must be null, not zero")
	}
}
