package repository

import (
	"context"
	"fmt"
	"time"

	"EconDash/internal/domain/models"
	domrepo "EconDash/internal/domain/repository"
	pkgch "EconDash/pkg/clickhouse"
	applogger "EconDash/pkg/logger"
)

// ClickHouseStore persists the cleaned table into ClickHouse. Replace
// fills a staging table and swaps it in with EXCHANGE TABLES.
type ClickHouseStore struct {
	ch      *pkgch.Client
	table   string
	staging string
	l       *applogger.Logger
}

var _ domrepo.Store = (*ClickHouseStore)(nil)

func NewClickHouseStore(ch *pkgch.Client, table string, l *applogger.Logger) (*ClickHouseStore, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &ClickHouseStore{ch: ch, table: table, staging: table + "_staging", l: l}, nil
}

func (s *ClickHouseStore) createStmt(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		Date Date,
		GDP Float64,
		CPI Float64,
		Unemployment Float64
	) ENGINE = MergeTree ORDER BY Date`, table)
}

func (s *ClickHouseStore) Replace(ctx context.Context, rows []models.CleanedRow) error {
	const op = "clickhouse.Replace"
	start := time.Now()

	prepare := []string{
		s.createStmt(s.table),
		fmt.Sprintf("DROP TABLE IF EXISTS %s", s.staging),
		s.createStmt(s.staging),
	}
	if err := s.ch.InitSchema(ctx, prepare); err != nil {
		return storageErr(op, err)
	}

	dateArg := func(r models.CleanedRow) any { return r.Date }
	if err := insertRows(ctx, s.ch.DB(), s.staging, rows, dateArg); err != nil {
		return storageErr(op, err)
	}

	swap := []string{
		fmt.Sprintf("EXCHANGE TABLES %s AND %s", s.staging, s.table),
		fmt.Sprintf("DROP TABLE IF EXISTS %s", s.staging),
	}
	if err := s.ch.InitSchema(ctx, swap); err != nil {
		return storageErr(op, err)
	}

	s.l.Debug("clickhouse table replaced",
		applogger.String("table", s.table),
		applogger.Int("rows", len(rows)),
		applogger.Duration("took_ms", time.Since(start)),
	)
	return nil
}

func (s *ClickHouseStore) ReadAll(ctx context.Context) ([]models.CleanedRow, error) {
	const op = "clickhouse.ReadAll"

	ok, err := s.tableExists(ctx)
	if err != nil {
		return nil, storageErr(op, err)
	}
	if !ok {
		return []models.CleanedRow{}, nil
	}

	q := fmt.Sprintf("SELECT Date, GDP, CPI, Unemployment FROM %s ORDER BY Date ASC", s.table)
	rows, err := s.ch.DB().QueryContext(ctx, q)
	if err != nil {
		return nil, storageErr(op, fmt.Errorf("query: %w", err))
	}
	defer rows.Close()

	out := make([]models.CleanedRow, 0, 512)
	for rows.Next() {
		var r models.CleanedRow
		if err := rows.Scan(&r.Date, &r.GDP, &r.CPI, &r.Unemployment); err != nil {
			return nil, storageErr(op, fmt.Errorf("scan: %w", err))
		}
		r.Date = r.Date.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, fmt.Errorf("rows: %w", err))
	}
	return out, nil
}

func (s *ClickHouseStore) AggregateYearly(ctx context.Context) ([]models.YearlyAggregate, error) {
	const op = "clickhouse.AggregateYearly"

	ok, err := s.tableExists(ctx)
	if err != nil {
		return nil, storageErr(op, err)
	}
	if !ok {
		return []models.YearlyAggregate{}, nil
	}

	q := fmt.Sprintf(`
		SELECT toInt32(toYear(Date)) AS Year,
		       avg(GDP), avg(CPI), avg(Unemployment)
		FROM %s
		GROUP BY Year
		ORDER BY Year ASC`, s.table)
	rows, err := s.ch.DB().QueryContext(ctx, q)
	if err != nil {
		s.l.Error("clickhouse aggregate query error",
			applogger.String("table", s.table),
			applogger.Error(err),
		)
		return nil, storageErr(op, fmt.Errorf("query: %w", err))
	}
	defer rows.Close()

	out := make([]models.YearlyAggregate, 0, 128)
	for rows.Next() {
		var (
			a    models.YearlyAggregate
			year int32
		)
		if err := rows.Scan(&year, &a.GDP, &a.CPI, &a.Unemployment); err != nil {
			return nil, storageErr(op, fmt.Errorf("scan: %w", err))
		}
		a.Year = int(year)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, fmt.Errorf("rows: %w", err))
	}
	return out, nil
}

func (s *ClickHouseStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *ClickHouseStore) Close() error {
	return s.ch.Close()
}

func (s *ClickHouseStore) tableExists(ctx context.Context) (bool, error) {
	var n uint64
	err := s.ch.DB().QueryRowContext(ctx,
		"SELECT count() FROM system.tables WHERE database = ? AND name = ?",
		s.ch.Database(), s.table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup table %s: %w", s.table, err)
	}
	return n > 0, nil
}
