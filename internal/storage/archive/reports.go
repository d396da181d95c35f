// internal/storage/archive/reports.go
package archive

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quantrun/sigval/internal/backtest"
	"github.com/quantrun/sigval/internal/core"
	"github.com/quantrun/sigval/internal/metrics"
	"github.com/quantrun/sigval/internal/report"
)

// Archiver persists backtest report documents to a storage backend
// under reports/<year>/<run-id>.json.
type Archiver struct {
	storage Storage
	log     *zap.Logger
	metrics *metrics.Registry
}

// NewArchiver creates an archiver over the given backend.
func NewArchiver(storage Storage, log *zap.Logger) *Archiver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Archiver{storage: storage, log: log}
}

// WithMetrics attaches a metrics registry.
func (a *Archiver) WithMetrics(m *metrics.Registry) *Archiver {
	a.metrics = m
	return a
}

// ReportPath returns the archive path for a run.
func ReportPath(runID string, generatedAt time.Time) string {
	return fmt.Sprintf("reports/%04d/%s.json", generatedAt.Year(), runID)
}

// Save writes the report document for a completed run. generatedAt is
// the caller's clock so the path and document agree.
func (a *Archiver) Save(ctx context.Context, result *core.BacktestResult, attr *backtest.Attribution, generatedAt time.Time) (string, error) {
	doc := report.NewDocument(result, attr, generatedAt)
	data, err := doc.Marshal()
	if err != nil {
		a.recordArchive("error")
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}

	path := ReportPath(result.RunID, generatedAt)
	if err := a.storage.Write(ctx, path, data); err != nil {
		a.recordArchive("error")
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}

	a.recordArchive("ok")
	a.log.Info("report archived",
		zap.String("run_id", result.RunID),
		zap.String("path", path))
	return path, nil
}

// Load reads back an archived report document.
func (a *Archiver) Load(ctx context.Context, path string) (*report.Document, error) {
	data, err := a.storage.Read(ctx, path)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	doc, err := report.UnmarshalDocument(data)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	return doc, nil
}

// ListReports returns archived report paths, optionally scoped to a year.
func (a *Archiver) ListReports(ctx context.Context, year int) ([]string, error) {
	prefix := "reports"
	if year > 0 {
		prefix = fmt.Sprintf("reports/%04d", year)
	}
	paths, err := a.storage.List(ctx, prefix)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	return paths, nil
}

func (a *Archiver) recordArchive(status string) {
	if a.metrics != nil {
		a.metrics.RecordReportArchived(status)
	}
}
