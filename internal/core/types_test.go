package core

import (
	"math"
	"testing"
	"time"
)

func TestParseAction(t *testing.T) {
	valid := []string{"BUY", "SELL", "HOLD", "SHORT"}
	for _, s := range valid {
		a, err := ParseAction(s)
		if err != nil {
			t.Errorf("ParseAction(%q) error = %v", s, err)
		}
		if string(a) != s {
			t.Errorf("ParseAction(%q) = %v", s, a)
		}
	}

	for _, s := range []string{"buy", "COVER", ""} {
		if _, err := ParseAction(s); err == nil {
			t.Errorf("ParseAction(%q) expected error", s)
		}
	}
}

func TestEconomicPoint_PolicyRate(t *testing.T) {
	p := EconomicPoint{
		Date:   time.Now(),
		Fields: map[string]float64{FieldDFF: 5.33, "UNRATE": 3.9},
	}

	rate, ok := p.PolicyRate()
	if !ok || rate != 5.33 {
		t.Errorf("PolicyRate() = %v, %v, want 5.33, true", rate, ok)
	}

	empty := EconomicPoint{Fields: map[string]float64{"UNRATE": 3.9}}
	if _, ok := empty.PolicyRate(); ok {
		t.Error("expected no policy rate")
	}

	var nilFields EconomicPoint
	if _, ok := nilFields.PolicyRate(); ok {
		t.Error("expected no policy rate on nil fields")
	}
}

func TestTradeResult_IsWin(t *testing.T) {
	if !(TradeResult{ReturnPct: 0.01}).IsWin() {
		t.Error("positive return should be a win")
	}
	if (TradeResult{ReturnPct: 0}).IsWin() {
		t.Error("flat return should not be a win")
	}
	if (TradeResult{ReturnPct: -3}).IsWin() {
		t.Error("negative return should not be a win")
	}
}

func TestPeriod_Years(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	p := Period{Start: start, End: start.AddDate(0, 0, 365)}

	got := p.Years()
	want := 365.0 / 365.25
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Years() = %f, want %f", got, want)
	}
}
