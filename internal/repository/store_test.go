package repository

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"EconDash/internal/domain/models"
)

type recordingExecer struct {
	queries []string
	args    [][]any
}

func (r *recordingExecer) ExecContext(_ context.Context, q string, args ...any) (sql.Result, error) {
	r.queries = append(r.queries, q)
	r.args = append(r.args, args)
	return nil, nil
}

func TestInsertRowsChunks(t *testing.T) {
	rows := make([]models.CleanedRow, insertChunkSize*2+5)
	for i := range rows {
		rows[i] = models.CleanedRow{Date: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)}
	}

	rec := &recordingExecer{}
	err := insertRows(context.Background(), rec, "econ_data", rows, func(r models.CleanedRow) any { return r.Date })
	if err != nil {
		t.Fatalf("insertRows: %v", err)
	}
	if len(rec.queries) != 3 {
		t.Fatalf("statements = %d, want 3", len(rec.queries))
	}
	if n := strings.Count(rec.queries[2], "(?, ?, ?, ?)"); n != 5 {
		t.Fatalf("last chunk placeholders = %d, want 5", n)
	}
	if len(rec.args[0]) != insertChunkSize*4 {
		t.Fatalf("first chunk args = %d", len(rec.args[0]))
	}
	if !strings.HasPrefix(rec.queries[0], "INSERT INTO econ_data (Date, GDP, CPI, Unemployment) VALUES") {
		t.Fatalf("unexpected statement %q", rec.queries[0][:60])
	}
}

func TestInsertRowsEmpty(t *testing.T) {
	rec := &recordingExecer{}
	if err := insertRows(context.Background(), rec, "t", nil, nil); err != nil || len(rec.queries) != 0 {
		t.Fatalf("empty input must not execute, got %d statements err=%v", len(rec.queries), err)
	}
}

func TestNewClickHouseStoreValidatesTable(t *testing.T) {
	if _, err := NewClickHouseStore(nil, "econ-data", nil); err == nil {
		t.Fatalf("expected invalid table error")
	}
	s, err := NewClickHouseStore(nil, "econ_data", nil)
	if err != nil {
		t.Fatalf("NewClickHouseStore: %v", err)
	}
	if s.staging != "econ_data_staging" {
		t.Fatalf("staging = %q", s.staging)
	}
	if !strings.Contains(s.createStmt("x"), "ENGINE = MergeTree ORDER BY Date") {
		t.Fatalf("unexpected DDL %q", s.createStmt("x"))
	}
}
