// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/quantrun/sigval/internal/api/job"
	"github.com/quantrun/sigval/internal/api/response"
	"github.com/quantrun/sigval/internal/backtest"
	"github.com/quantrun/sigval/internal/core"
	"github.com/quantrun/sigval/internal/marketdata"
	"github.com/quantrun/sigval/internal/report"
)

const backtestTimeout = 5 * time.Minute

// BacktestRequest is the request body for starting a backtest run.
// Omitted option fields fall back to the server's defaults; events use
// the same JSON shape as signal files.
type BacktestRequest struct {
	Start              string          `json:"start"`
	End                string          `json:"end"`
	InitialCapital     *float64        `json:"initial_capital,omitempty"`
	BenchmarkAsset     *string         `json:"benchmark_asset,omitempty"`
	TransactionCostBps *float64        `json:"transaction_cost_bps,omitempty"`
	SlippageBps        *float64        `json:"slippage_bps,omitempty"`
	Events             json.RawMessage `json:"events"`
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		wrapped := core.WrapError(core.ErrConfigInvalid, err)
		response.Error(w, response.StatusFor(wrapped), wrapped)
		return
	}

	cfg, err := s.runConfig(req)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	events, err := marketdata.ParseSignalEvents(req.Events)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	j := s.jobs.Create("backtest")
	jobID := j.ID
	status := j.Status

	go s.runBacktest(jobID, cfg, events)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": jobID,
		"status": status,
	})
}

// runConfig merges request overrides onto the server defaults.
func (s *Server) runConfig(req BacktestRequest) (backtest.Config, error) {
	cfg := s.defaults

	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		return cfg, core.WrapError(core.ErrConfigInvalid, err)
	}
	end, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		return cfg, core.WrapError(core.ErrConfigInvalid, err)
	}
	cfg.Start = start
	cfg.End = end

	if req.InitialCapital != nil {
		cfg.InitialCapital = *req.InitialCapital
	}
	if req.BenchmarkAsset != nil {
		cfg.BenchmarkAsset = *req.BenchmarkAsset
	}
	if req.TransactionCostBps != nil {
		cfg.TransactionCostBps = *req.TransactionCostBps
	}
	if req.SlippageBps != nil {
		cfg.SlippageBps = *req.SlippageBps
	}

	return cfg, cfg.Validate()
}

// runBacktest executes the run and updates job status. The archived
// document, not the raw result, is stored on the job so the payload is
// always JSON-safe.
func (s *Server) runBacktest(jobID string, cfg backtest.Config, events []core.SignalEvent) {
	s.jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})

	ctx, cancel := context.WithTimeout(context.Background(), backtestTimeout)
	defer cancel()
	result, err := s.backtester.Run(ctx, cfg, events)

	if err != nil {
		s.jobs.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = asCoreError(err)
		})
		return
	}

	attr := s.backtester.Attribute(result.Trades)
	doc := report.NewDocument(result, &attr, time.Now().UTC())

	if s.archiver != nil {
		if _, err := s.archiver.Save(ctx, result, &attr, doc.GeneratedAt); err != nil {
			s.logger.Warn("archiving report failed",
				zap.String("run_id", result.RunID), zap.Error(err))
		}
	}

	s.jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Result = doc
	})
}

func (s *Server) handleBacktestStatus(w http.ResponseWriter, r *http.Request) {
	j, err := s.jobs.Get(r.PathValue("id"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	resp := map[string]any{
		"job_id": j.ID,
		"status": j.Status,
	}
	if j.Status == job.StatusComplete {
		resp["result"] = j.Result
	}
	if j.Status == job.StatusFailed && j.Error != nil {
		resp["error"] = map[string]string{
			"code":    j.Error.Code,
			"message": j.Error.Message,
		}
	}

	response.JSON(w, http.StatusOK, resp)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.archiver == nil {
		response.JSON(w, http.StatusOK, map[string]any{"reports": []string{}})
		return
	}

	year := 0
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			wrapped := core.WrapError(core.ErrConfigInvalid, err)
			response.Error(w, response.StatusFor(wrapped), wrapped)
			return
		}
		year = parsed
	}

	paths, err := s.archiver.ListReports(r.Context(), year)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	if paths == nil {
		paths = []string{}
	}

	response.JSON(w, http.StatusOK, map[string]any{"reports": paths})
}

func asCoreError(err error) *core.Error {
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		return coreErr
	}
	return core.WrapError(core.ErrInsufficientData, err)
}
