package storage

import (
	"database/sql"
	"fmt"

	"github.com/chrissnell/climatedash/internal/climate"
)

// scanTable reads every row into a table. The date column is located by
// name; every other column becomes a measurement field.
func scanTable(rows *sql.Rows, dateColumn string) (climate.Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return climate.Table{}, err
	}

	dateIdx := -1
	var fields []string
	for i, c := range cols {
		if c == dateColumn {
			dateIdx = i
			continue
		}
		fields = append(fields, c)
	}
	if dateIdx == -1 {
		return climate.Table{}, fmt.Errorf("date column %q not found in %v", dateColumn, cols)
	}

	var records []climate.Record
	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return climate.Table{}, fmt.Errorf("error scanning row: %w", err)
		}

		date, err := toDate(raw[dateIdx])
		if err != nil {
			return climate.Table{}, fmt.Errorf("row %d: %w", len(records)+1, err)
		}

		values := make(map[string]float64, len(fields))
		for i, c := range cols {
			if i == dateIdx {
				continue
			}
			v, err := toFloat(raw[i])
			if err != nil {
				return climate.Table{}, fmt.Errorf("row %d column %s: %w", len(records)+1, c, err)
			}
			values[c] = v
		}

		records = append(records, climate.Record{Date: date, Values: values})
	}
	if err := rows.Err(); err != nil {
		return climate.Table{}, err
	}

	return climate.NewTable(fields, records)
}
