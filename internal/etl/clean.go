// Package etl turns the raw daily export into the cleaned table the
// dashboard reads.
package etl

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chrissnell/climatedash/internal/climate"
	"go.uber.org/zap"
)

// DefaultDays covers 2001-01-01 through 2025-12-31
const DefaultDays = 9131

// DefaultColumns are the measurements kept from the raw export
var DefaultColumns = []string{
	"max_temperature",
	"avg_temperature",
	"min_temperature",
	"avg_relative_humidity",
	"avg_dew_point",
	"avg_wind_speed",
	"avg_pressure_sea",
	"avg_visibility",
	"min_visibility",
	"avg_health_index",
	"precipitation",
	"daylight",
	"solar_radiation",
	"avg_cloud_cover_8",
	"heatdegdays",
	"cooldegdays",
	"growdegdays_7",
}

// ErrMissingColumn is returned when the raw header lacks a required column
var ErrMissingColumn = errors.New("missing column")

// Options controls which part of the raw export is kept
type Options struct {
	DateColumn string
	Columns    []string
	// SkipRows leading data rows are dropped before Days rows are kept
	SkipRows int
	Days     int
}

// DefaultOptions drops the partial current day at the top of the export and
// keeps the next 25 years.
func DefaultOptions() Options {
	return Options{
		DateColumn: "date",
		Columns:    DefaultColumns,
		SkipRows:   1,
		Days:       DefaultDays,
	}
}

// Clean reads the raw export from r and returns the selected columns of the
// selected rows, sorted by date. A non-positive Days keeps every remaining row.
func Clean(ctx context.Context, r io.Reader, opts Options, logger *zap.SugaredLogger) (climate.Table, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.DateColumn == "" {
		opts.DateColumn = "date"
	}
	if len(opts.Columns) == 0 {
		opts.Columns = DefaultColumns
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return climate.Table{}, fmt.Errorf("error reading raw header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	dateIdx, ok := index[opts.DateColumn]
	if !ok {
		return climate.Table{}, fmt.Errorf("%w: %s", ErrMissingColumn, opts.DateColumn)
	}
	colIdx := make([]int, len(opts.Columns))
	for i, c := range opts.Columns {
		idx, ok := index[c]
		if !ok {
			return climate.Table{}, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
		colIdx[i] = idx
	}

	var records []climate.Record
	skipped := 0
	for line := 2; opts.Days <= 0 || len(records) < opts.Days; line++ {
		if err := ctx.Err(); err != nil {
			return climate.Table{}, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return climate.Table{}, fmt.Errorf("line %d: %w", line, err)
		}
		if skipped < opts.SkipRows {
			skipped++
			continue
		}

		date, err := climate.ParseDate(cell(row, dateIdx))
		if err != nil {
			return climate.Table{}, fmt.Errorf("line %d: %w", line, err)
		}

		values := make(map[string]float64, len(opts.Columns))
		for i, c := range opts.Columns {
			v, err := climate.ParseMeasurement(cell(row, colIdx[i]))
			if err != nil {
				return climate.Table{}, fmt.Errorf("line %d column %s: %w", line, c, err)
			}
			values[c] = v
		}
		records = append(records, climate.Record{Date: date, Values: values})
	}

	if opts.Days > 0 && len(records) < opts.Days {
		logger.Warnf("raw export has only %d rows after skipping %d, expected %d", len(records), skipped, opts.Days)
	}

	t, err := climate.NewTable(append([]string(nil), opts.Columns...), records)
	if err != nil {
		return climate.Table{}, err
	}
	if w, ok := t.Range(); ok {
		logger.Infof("cleaned %d days covering %s", t.Len(), w)
	}
	return t, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
