package marketdata

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/quantrun/sigval/internal/core"
)

type signalEventDoc struct {
	Date    string      `json:"date"`
	Signals []signalDoc `json:"signals"`
}

type signalDoc struct {
	Asset          string  `json:"asset"`
	Action         string  `json:"action"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
	ExpectedReturn float64 `json:"expected_return"`
}

// LoadSignalEvents reads a JSON array of signal events from path.
func LoadSignalEvents(path string) ([]core.SignalEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(core.ErrNoData, err)
	}
	return ParseSignalEvents(data)
}

// ParseSignalEvents decodes a JSON array of signal events. Actions are
// validated against the closed set; dates are ISO 8601. Event ordering
// in the input is preserved — the caller owns the ordered-by-date
// invariant.
func ParseSignalEvents(data []byte) ([]core.SignalEvent, error) {
	var docs []signalEventDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, core.WrapError(core.ErrNoData, err)
	}

	events := make([]core.SignalEvent, 0, len(docs))
	for i, doc := range docs {
		date, err := time.Parse("2006-01-02", doc.Date)
		if err != nil {
			return nil, core.WrapError(core.ErrNoData,
				fmt.Errorf("event %d: bad date %q: %w", i, doc.Date, err))
		}

		ev := core.SignalEvent{Date: date}
		for _, sd := range doc.Signals {
			action, err := core.ParseAction(sd.Action)
			if err != nil {
				return nil, core.WrapError(core.ErrNoData,
					fmt.Errorf("event %d: %w", i, err))
			}
			ev.Signals = append(ev.Signals, core.Signal{
				Asset:          sd.Asset,
				Action:         action,
				Confidence:     sd.Confidence,
				Reasoning:      sd.Reasoning,
				ExpectedReturn: sd.ExpectedReturn,
			})
		}
		events = append(events, ev)
	}
	return events, nil
}
