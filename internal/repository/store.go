package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"EconDash/internal/domain/models"
)

// insertChunkSize bounds the rows per multi-VALUES INSERT.
const insertChunkSize = 200

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateTable(name string) error {
	if !tableNameRe.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertRows writes rows in chunks using multi-row VALUES. dateArg converts
// the row date to the driver's representation.
func insertRows(ctx context.Context, db execer, table string, rows []models.CleanedRow, dateArg func(models.CleanedRow) any) error {
	for start := 0; start < len(rows); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(rows) {
			end = len(rows)
		}

		values := make([]string, 0, end-start)
		args := make([]any, 0, (end-start)*4)
		for _, r := range rows[start:end] {
			values = append(values, "(?, ?, ?, ?)")
			args = append(args, dateArg(r), r.GDP, r.CPI, r.Unemployment)
		}
		q := fmt.Sprintf("INSERT INTO %s (Date, GDP, CPI, Unemployment) VALUES %s", table, strings.Join(values, ","))
		if _, err := db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert rows %d-%d: %w", start, end, err)
		}
	}
	return nil
}

func storageErr(op string, err error) error {
	return models.NewPipelineError(models.FailureStorage, op, err)
}
