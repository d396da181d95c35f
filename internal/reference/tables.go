// Package reference holds the static lookup tables the report layer
// consumes. Tables are injected as configuration, never compiled-in
// constants, and reject unknown regime keys at construction.
package reference

import (
	"fmt"

	"github.com/quantrun/sigval/internal/core"
)

var validRegimeKeys = map[string]struct{}{
	"easing":     {},
	"tightening": {},
	"hold":       {},
}

// Tables is an immutable bundle of regime-keyed heuristics.
type Tables struct {
	hedgeRatios         map[string]float64
	optionCostBaselines map[string]float64
}

// NewTables validates and copies the raw maps. Every key must be one
// of the closed regime set; an unknown key is a construction error,
// not a silent miss later.
func NewTables(hedgeRatios, optionCostBaselines map[string]float64) (*Tables, error) {
	for _, m := range []map[string]float64{hedgeRatios, optionCostBaselines} {
		for k := range m {
			if _, ok := validRegimeKeys[k]; !ok {
				return nil, core.WrapError(core.ErrConfigInvalid,
					fmt.Errorf("unknown regime key %q in reference table", k))
			}
		}
	}

	t := &Tables{
		hedgeRatios:         make(map[string]float64, len(hedgeRatios)),
		optionCostBaselines: make(map[string]float64, len(optionCostBaselines)),
	}
	for k, v := range hedgeRatios {
		t.hedgeRatios[k] = v
	}
	for k, v := range optionCostBaselines {
		t.optionCostBaselines[k] = v
	}
	return t, nil
}

// HedgeRatio returns the suggested hedge ratio for a regime.
func (t *Tables) HedgeRatio(regime string) (float64, bool) {
	v, ok := t.hedgeRatios[regime]
	return v, ok
}

// OptionCostBaseline returns the option cost heuristic for a regime.
func (t *Tables) OptionCostBaseline(regime string) (float64, bool) {
	v, ok := t.optionCostBaselines[regime]
	return v, ok
}
