package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quantrun/sigval/internal/core"
)

func archivedResult() *core.BacktestResult {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return &core.BacktestResult{
		RunID:          "run-abc",
		Period:         core.Period{Start: start, End: start.AddDate(1, 0, 0)},
		InitialCapital: 100000,
		FinalValue:     112000,
		TotalReturnPct: 12,
		WinRatePct:     55,
		ProfitFactor:   1.8,
		TotalTrades:    4,
	}
}

func TestArchiver_SaveAndLoad(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}
	arch := NewArchiver(fs, nil)
	ctx := context.Background()
	generated := time.Date(2024, 12, 31, 18, 0, 0, 0, time.UTC)

	path, err := arch.Save(ctx, archivedResult(), nil, generated)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != "reports/2024/run-abc.json" {
		t.Errorf("path = %q", path)
	}

	doc, err := arch.Load(ctx, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.RunID != "run-abc" || doc.TotalReturnPct != 12 {
		t.Errorf("round-trip mismatch: %+v", doc)
	}
}

func TestArchiver_ListReports(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}
	arch := NewArchiver(fs, nil)
	ctx := context.Background()

	result := archivedResult()
	if _, err := arch.Save(ctx, result, nil, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	result2 := archivedResult()
	result2.RunID = "run-def"
	if _, err := arch.Save(ctx, result2, nil, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	paths, err := arch.ListReports(ctx, 2024)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(paths) != 1 || paths[0] != "reports/2024/run-abc.json" {
		t.Errorf("ListReports(2024) = %v", paths)
	}

	all, err := arch.ListReports(ctx, 0)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListReports(all) = %v", all)
	}
}

type failingStorage struct{}

func (failingStorage) Write(context.Context, string, []byte) error     { return errors.New("disk full") }
func (failingStorage) Read(context.Context, string) ([]byte, error)   { return nil, errors.New("gone") }
func (failingStorage) List(context.Context, string) ([]string, error) { return nil, errors.New("gone") }
func (failingStorage) Exists(context.Context, string) (bool, error)   { return false, nil }

func TestArchiver_SaveWrapsBackendError(t *testing.T) {
	arch := NewArchiver(failingStorage{}, nil)

	_, err := arch.Save(context.Background(), archivedResult(), nil, time.Now())
	if !errors.Is(err, core.ErrArchiveFailed) {
		t.Errorf("err = %v, want ErrArchiveFailed", err)
	}
}
