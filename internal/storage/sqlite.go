package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/chrissnell/climatedash/internal/climate"
	"github.com/chrissnell/climatedash/internal/database"
	_ "modernc.org/sqlite"
)

// SQLite loads and stores the daily table in a SQLite database. Dates are
// kept as YYYY-MM-DD text in the primary key column.
type SQLite struct {
	db         *sql.DB
	table      string
	dateColumn string
}

// NewSQLite opens the database at path
func NewSQLite(path, table, dateColumn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	return &SQLite{db: db, table: table, dateColumn: dateColumn}, nil
}

// Load reads every row ordered by date
func (s *SQLite) Load(ctx context.Context) (climate.Table, error) {
	table, err := database.QuoteIdentifier(s.table)
	if err != nil {
		return climate.Table{}, err
	}
	date, err := database.QuoteIdentifier(s.dateColumn)
	if err != nil {
		return climate.Table{}, err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s ORDER BY %s`, table, date))
	if err != nil {
		return climate.Table{}, fmt.Errorf("error querying %s: %w", s.table, err)
	}
	defer rows.Close()

	return scanTable(rows, s.dateColumn)
}

// Save creates the table if needed and upserts every record in one transaction
func (s *SQLite) Save(ctx context.Context, t climate.Table) error {
	table, err := database.QuoteIdentifier(s.table)
	if err != nil {
		return err
	}
	cols := make([]string, 0, len(t.Fields)+1)
	date, err := database.QuoteIdentifier(s.dateColumn)
	if err != nil {
		return err
	}
	cols = append(cols, date)

	defs := []string{date + " TEXT PRIMARY KEY"}
	for _, f := range t.Fields {
		q, err := database.QuoteIdentifier(f)
		if err != nil {
			return err
		}
		cols = append(cols, q)
		defs = append(defs, q+" REAL")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s)`, table, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`,
		table, strings.Join(cols, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for _, r := range t.Records {
		args[0] = r.Date.Format(climate.DateLayout)
		for i, f := range t.Fields {
			args[i+1] = nullable(r.Values, f)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert %s: %w", r.Date.Format(climate.DateLayout), err)
		}
	}

	return tx.Commit()
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

// nullable returns nil for blank measurements so they are stored as NULL
func nullable(values map[string]float64, field string) any {
	v, ok := values[field]
	if !ok || math.IsNaN(v) {
		return nil
	}
	return v
}
