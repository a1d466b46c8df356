package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/chrissnell/climatedash/internal/climate"
	"github.com/chrissnell/climatedash/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// insertBatchSize bounds the rows sent per INSERT
const insertBatchSize = 500

// TimescaleDB loads and stores the daily table through GORM
type TimescaleDB struct {
	conn       *gorm.DB
	table      string
	dateColumn string
}

// NewTimescaleDB connects to the database described by connectionString
func NewTimescaleDB(ctx context.Context, connectionString, table, dateColumn string) (*TimescaleDB, error) {
	db, err := database.CreateConnection(connectionString)
	if err != nil {
		return nil, err
	}
	return newTimescaleDBFromConn(db.WithContext(ctx), table, dateColumn), nil
}

func newTimescaleDBFromConn(db *gorm.DB, table, dateColumn string) *TimescaleDB {
	return &TimescaleDB{conn: db, table: table, dateColumn: dateColumn}
}

// Load reads every row ordered by date
func (t *TimescaleDB) Load(ctx context.Context) (climate.Table, error) {
	if _, err := database.QuoteIdentifier(t.table); err != nil {
		return climate.Table{}, err
	}
	date, err := database.QuoteIdentifier(t.dateColumn)
	if err != nil {
		return climate.Table{}, err
	}

	rows, err := t.conn.WithContext(ctx).Table(t.table).Order(date).Rows()
	if err != nil {
		return climate.Table{}, fmt.Errorf("error querying %s: %w", t.table, err)
	}
	defer rows.Close()

	return scanTable(rows, t.dateColumn)
}

// Save creates the table if needed and upserts every record
func (t *TimescaleDB) Save(ctx context.Context, tbl climate.Table) error {
	table, err := database.QuoteIdentifier(t.table)
	if err != nil {
		return err
	}
	date, err := database.QuoteIdentifier(t.dateColumn)
	if err != nil {
		return err
	}

	defs := []string{date + " DATE PRIMARY KEY"}
	for _, f := range tbl.Fields {
		q, err := database.QuoteIdentifier(f)
		if err != nil {
			return err
		}
		defs = append(defs, q+" DOUBLE PRECISION")
	}

	db := t.conn.WithContext(ctx)
	if err := db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s)`, table, strings.Join(defs, ", "))).Error; err != nil {
		return fmt.Errorf("could not create table %s: %w", t.table, err)
	}

	rows := make([]map[string]interface{}, 0, len(tbl.Records))
	for _, r := range tbl.Records {
		row := map[string]interface{}{t.dateColumn: r.Date}
		for _, f := range tbl.Fields {
			row[f] = nullable(r.Values, f)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}

	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: t.dateColumn}},
		DoUpdates: clause.AssignmentColumns(tbl.Fields),
	}
	if len(tbl.Fields) == 0 {
		onConflict.DoUpdates = nil
		onConflict.DoNothing = true
	}

	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Table(t.table).
			Clauses(onConflict).
			CreateInBatches(rows, insertBatchSize).Error
		if err != nil {
			return fmt.Errorf("could not store records: %w", err)
		}
		return nil
	})
}

// Close releases the underlying connection pool
func (t *TimescaleDB) Close() error {
	sqlDB, err := t.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
