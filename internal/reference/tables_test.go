package reference

import (
	"errors"
	"testing"

	"github.com/quantrun/sigval/internal/core"
)

func TestNewTables(t *testing.T) {
	tables, err := NewTables(
		map[string]float64{"easing": 0.25, "tightening": 0.60, "hold": 0.40},
		map[string]float64{"tightening": 1.8},
	)
	if err != nil {
		t.Fatalf("NewTables: %v", err)
	}

	hr, ok := tables.HedgeRatio("tightening")
	if !ok || hr != 0.60 {
		t.Errorf("HedgeRatio(tightening) = %v, %v, want 0.60", hr, ok)
	}

	if _, ok := tables.OptionCostBaseline("easing"); ok {
		t.Error("expected miss for unset baseline")
	}
}

func TestNewTables_UnknownKey(t *testing.T) {
	_, err := NewTables(map[string]float64{"stagflation": 1.0}, nil)
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("err = %v, want CONFIG_INVALID", err)
	}
}

func TestNewTables_CopiesInput(t *testing.T) {
	raw := map[string]float64{"hold": 0.5}
	tables, err := NewTables(raw, nil)
	if err != nil {
		t.Fatalf("NewTables: %v", err)
	}

	raw["hold"] = 9.9
	if hr, _ := tables.HedgeRatio("hold"); hr != 0.5 {
		t.Errorf("HedgeRatio(hold) = %v, caller mutation leaked in", hr)
	}
}
