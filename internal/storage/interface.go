// Package storage loads the cleaned daily climate table from CSV files,
// SQLite databases or TimescaleDB, and writes it back for the import tool.
package storage

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/chrissnell/climatedash/internal/climate"
	"github.com/chrissnell/climatedash/pkg/config"
	"go.uber.org/zap"
)

// Loader reads the full daily table from a backend
type Loader interface {
	Load(ctx context.Context) (climate.Table, error)
	Close() error
}

// Writer stores a daily table into a backend, replacing rows for the same dates
type Writer interface {
	Save(ctx context.Context, t climate.Table) error
	Close() error
}

// New returns the loader selected by the data configuration
func New(ctx context.Context, c config.DataData, logger *zap.SugaredLogger) (Loader, error) {
	if logger != nil {
		logger.Infow("opening climate data", "backend", c.Backend, "path", c.Path, "table", c.Table)
	}

	switch c.Backend {
	case config.BackendCSV, "":
		return NewCSV(c.Path, c.DateColumn), nil
	case config.BackendSQLite:
		return NewSQLite(c.Path, c.Table, c.DateColumn)
	case config.BackendTimescaleDB:
		return NewTimescaleDB(ctx, c.ConnectionString, c.Table, c.DateColumn)
	}
	return nil, fmt.Errorf("unsupported data backend: %s", c.Backend)
}

// toFloat converts a value scanned from a database driver
func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return math.NaN(), nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case []byte:
		return climate.ParseMeasurement(string(x))
	case string:
		return climate.ParseMeasurement(x)
	}
	return 0, fmt.Errorf("unsupported value type %T", v)
}

// toDate converts a date value scanned from a database driver
func toDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return climate.Day(x), nil
	case []byte:
		return parseDate(string(x))
	case string:
		return parseDate(x)
	}
	return time.Time{}, fmt.Errorf("unsupported date type %T", v)
}

// parseDate accepts a bare date or a timestamp whose first ten characters are one
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(climate.DateLayout) {
		s = s[:len(climate.DateLayout)]
	}
	return climate.ParseDate(s)
}
