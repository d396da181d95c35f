package report

import (
	"encoding/json"
	"math"
	"time"

	"github.com/quantrun/sigval/internal/backtest"
	"github.com/quantrun/sigval/internal/core"
)

// Document is the JSON shape archived for a completed run. Non-finite
// ratios encode as null so the document stays valid JSON.
type Document struct {
	RunID               string          `json:"run_id"`
	GeneratedAt         time.Time       `json:"generated_at"`
	PeriodStart         string          `json:"period_start"`
	PeriodEnd           string          `json:"period_end"`
	InitialCapital      float64         `json:"initial_capital"`
	FinalValue          float64         `json:"final_value"`
	TotalReturnPct      float64         `json:"total_return_pct"`
	AnnualizedReturnPct float64         `json:"annualized_return_pct"`
	SharpeRatio         float64         `json:"sharpe_ratio"`
	MaxDrawdownPct      float64         `json:"max_drawdown_pct"`
	WinRatePct          *float64        `json:"win_rate_pct"`
	ProfitFactor        *float64        `json:"profit_factor"`
	TotalTrades         int             `json:"total_trades"`
	Trades              []tradeDoc      `json:"trades"`
	Benchmark           *benchmarkDoc   `json:"benchmark,omitempty"`
	Attribution         *attributionDoc `json:"attribution,omitempty"`
}

type tradeDoc struct {
	EntryDate       string  `json:"entry_date"`
	ExitDate        string  `json:"exit_date"`
	Asset           string  `json:"asset"`
	Action          string  `json:"action"`
	EntryPrice      float64 `json:"entry_price"`
	ExitPrice       float64 `json:"exit_price"`
	ReturnPct       float64 `json:"return_pct"`
	Duration        int     `json:"duration"`
	FedEventContext string  `json:"fed_event_context,omitempty"`
}

type benchmarkDoc struct {
	Asset            string  `json:"asset"`
	ReturnPct        float64 `json:"return_pct"`
	AlphaPct         float64 `json:"alpha_pct"`
	Beta             float64 `json:"beta"`
	InformationRatio float64 `json:"information_ratio"`
}

type attributionDoc struct {
	Easing       regimeDoc `json:"easing"`
	Tightening   regimeDoc `json:"tightening"`
	Hold         regimeDoc `json:"hold"`
	Unclassified int       `json:"unclassified"`
}

type regimeDoc struct {
	Trades       int     `json:"trades"`
	AvgReturnPct float64 `json:"avg_return_pct"`
	WinRatePct   float64 `json:"win_rate_pct"`
}

// NewDocument builds the archive document for a run. generatedAt is
// passed in rather than read from the wall clock so archived reports
// stay reproducible.
func NewDocument(result *core.BacktestResult, attr *backtest.Attribution, generatedAt time.Time) *Document {
	doc := &Document{
		RunID:               result.RunID,
		GeneratedAt:         generatedAt,
		PeriodStart:         result.Period.Start.Format("2006-01-02"),
		PeriodEnd:           result.Period.End.Format("2006-01-02"),
		InitialCapital:      result.InitialCapital,
		FinalValue:          result.FinalValue,
		TotalReturnPct:      result.TotalReturnPct,
		AnnualizedReturnPct: result.AnnualizedReturnPct,
		SharpeRatio:         result.SharpeRatio,
		MaxDrawdownPct:      result.MaxDrawdownPct,
		TotalTrades:         result.TotalTrades,
	}

	if result.TotalTrades > 0 {
		doc.WinRatePct = finiteOrNil(result.WinRatePct)
		doc.ProfitFactor = finiteOrNil(result.ProfitFactor)
	}

	for _, t := range result.Trades {
		doc.Trades = append(doc.Trades, tradeDoc{
			EntryDate:       t.EntryDate.Format("2006-01-02"),
			ExitDate:        t.ExitDate.Format("2006-01-02"),
			Asset:           t.Asset,
			Action:          string(t.Action),
			EntryPrice:      t.EntryPrice,
			ExitPrice:       t.ExitPrice,
			ReturnPct:       t.ReturnPct,
			Duration:        t.Duration,
			FedEventContext: t.FedEventContext,
		})
	}

	if result.Benchmark != nil {
		doc.Benchmark = &benchmarkDoc{
			Asset:            result.Benchmark.Asset,
			ReturnPct:        result.Benchmark.ReturnPct,
			AlphaPct:         result.Benchmark.AlphaPct,
			Beta:             result.Benchmark.Beta,
			InformationRatio: result.Benchmark.InformationRatio,
		}
	}

	if attr != nil {
		doc.Attribution = &attributionDoc{
			Easing:       regimeDoc{attr.Easing.Trades, attr.Easing.AvgReturnPct, attr.Easing.WinRatePct},
			Tightening:   regimeDoc{attr.Tightening.Trades, attr.Tightening.AvgReturnPct, attr.Tightening.WinRatePct},
			Hold:         regimeDoc{attr.Hold.Trades, attr.Hold.AvgReturnPct, attr.Hold.WinRatePct},
			Unclassified: attr.Unclassified,
		}
	}

	return doc
}

// Marshal encodes the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// UnmarshalDocument decodes an archived report document.
func UnmarshalDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func finiteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
