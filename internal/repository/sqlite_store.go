package repository

import (
	"context"
	"fmt"
	"time"

	"EconDash/internal/domain/models"
	domrepo "EconDash/internal/domain/repository"
	applogger "EconDash/pkg/logger"
	pkgsqlite "EconDash/pkg/sqlite"
	"EconDash/pkg/util"
)

// SQLiteStore persists the cleaned table into a local SQLite file.
type SQLiteStore struct {
	cli   *pkgsqlite.Client
	table string
	l     *applogger.Logger
}

var _ domrepo.Store = (*SQLiteStore)(nil)

func NewSQLiteStore(cli *pkgsqlite.Client, table string, l *applogger.Logger) (*SQLiteStore, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &SQLiteStore{cli: cli, table: table, l: l}, nil
}

// Replace drops and recreates the table inside one transaction so readers
// never observe a partially written dataset.
func (s *SQLiteStore) Replace(ctx context.Context, rows []models.CleanedRow) error {
	const op = "sqlite.Replace"
	start := time.Now()

	tx, err := s.cli.DB().BeginTx(ctx, nil)
	if err != nil {
		return storageErr(op, fmt.Errorf("begin: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.table),
		fmt.Sprintf(`CREATE TABLE %s (
			Date TEXT NOT NULL,
			GDP REAL NOT NULL,
			CPI REAL NOT NULL,
			Unemployment REAL NOT NULL
		)`, s.table),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return storageErr(op, fmt.Errorf("recreate %s: %w", s.table, err))
		}
	}

	dateArg := func(r models.CleanedRow) any { return util.FormatDate(r.Date) }
	if err := insertRows(ctx, tx, s.table, rows, dateArg); err != nil {
		return storageErr(op, err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr(op, fmt.Errorf("commit: %w", err))
	}

	s.l.Debug("sqlite table replaced",
		applogger.String("table", s.table),
		applogger.Int("rows", len(rows)),
		applogger.Duration("took_ms", time.Since(start)),
	)
	return nil
}

// ReadAll returns the stored rows ordered by date.
func (s *SQLiteStore) ReadAll(ctx context.Context) ([]models.CleanedRow, error) {
	const op = "sqlite.ReadAll"

	ok, err := s.tableExists(ctx)
	if err != nil {
		return nil, storageErr(op, err)
	}
	if !ok {
		return []models.CleanedRow{}, nil
	}

	q := fmt.Sprintf("SELECT Date, GDP, CPI, Unemployment FROM %s ORDER BY Date ASC", s.table)
	rows, err := s.cli.DB().QueryContext(ctx, q)
	if err != nil {
		return nil, storageErr(op, fmt.Errorf("query: %w", err))
	}
	defer rows.Close()

	out := make([]models.CleanedRow, 0, 512)
	for rows.Next() {
		var (
			r    models.CleanedRow
			date string
		)
		if err := rows.Scan(&date, &r.GDP, &r.CPI, &r.Unemployment); err != nil {
			return nil, storageErr(op, fmt.Errorf("scan: %w", err))
		}
		if r.Date, err = util.ParseDate(date); err != nil {
			return nil, storageErr(op, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, fmt.Errorf("rows: %w", err))
	}
	return out, nil
}

// AggregateYearly averages every column per calendar year.
func (s *SQLiteStore) AggregateYearly(ctx context.Context) ([]models.YearlyAggregate, error) {
	const op = "sqlite.AggregateYearly"

	ok, err := s.tableExists(ctx)
	if err != nil {
		return nil, storageErr(op, err)
	}
	if !ok {
		return []models.YearlyAggregate{}, nil
	}

	q := fmt.Sprintf(`
		SELECT CAST(strftime('%%Y', Date) AS INTEGER) AS Year,
		       AVG(GDP) AS GDP,
		       AVG(CPI) AS CPI,
		       AVG(Unemployment) AS Unemployment
		FROM %s
		GROUP BY Year
		ORDER BY Year ASC`, s.table)
	rows, err := s.cli.DB().QueryContext(ctx, q)
	if err != nil {
		return nil, storageErr(op, fmt.Errorf("query: %w", err))
	}
	defer rows.Close()

	out := make([]models.YearlyAggregate, 0, 128)
	for rows.Next() {
		var a models.YearlyAggregate
		if err := rows.Scan(&a.Year, &a.GDP, &a.CPI, &a.Unemployment); err != nil {
			return nil, storageErr(op, fmt.Errorf("scan: %w", err))
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, fmt.Errorf("rows: %w", err))
	}
	return out, nil
}

func (s *SQLiteStore) Health(ctx context.Context) error {
	return s.cli.Health(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.cli.Close()
}

func (s *SQLiteStore) tableExists(ctx context.Context) (bool, error) {
	var n int
	err := s.cli.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, s.table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup table %s: %w", s.table, err)
	}
	return n > 0, nil
}
