package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/chrissnell/climatedash/internal/climate"
)

// CSV loads a cleaned table from a comma-separated file with a header row
type CSV struct {
	path       string
	dateColumn string
}

// NewCSV creates a CSV loader
func NewCSV(path, dateColumn string) *CSV {
	if dateColumn == "" {
		dateColumn = "date"
	}
	return &CSV{path: path, dateColumn: dateColumn}
}

// Load reads the whole file
func (c *CSV) Load(ctx context.Context) (climate.Table, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return climate.Table{}, err
	}
	defer f.Close()

	return ReadCSV(ctx, f, c.dateColumn)
}

// Close is a no-op
func (c *CSV) Close() error {
	return nil
}

// ReadCSV parses a table from r. Blank, NA and NaN cells become NaN.
func ReadCSV(ctx context.Context, r io.Reader, dateColumn string) (climate.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return climate.Table{}, fmt.Errorf("error reading CSV header: %w", err)
	}

	dateIdx := -1
	var fields []string
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		header[i] = h
		if h == dateColumn {
			dateIdx = i
			continue
		}
		fields = append(fields, h)
	}
	if dateIdx == -1 {
		return climate.Table{}, fmt.Errorf("date column %q not found in CSV header", dateColumn)
	}

	var records []climate.Record
	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return climate.Table{}, err
			}
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return climate.Table{}, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := parseDate(row[dateIdx])
		if err != nil {
			return climate.Table{}, fmt.Errorf("line %d: %w", line, err)
		}

		values := make(map[string]float64, len(fields))
		for i, cell := range row {
			if i == dateIdx {
				continue
			}
			v, err := climate.ParseMeasurement(cell)
			if err != nil {
				return climate.Table{}, fmt.Errorf("line %d column %s: %w", line, header[i], err)
			}
			values[header[i]] = v
		}

		records = append(records, climate.Record{Date: date, Values: values})
	}

	return climate.NewTable(fields, records)
}

// WriteCSV writes t with the date column first and NaN as a blank cell
func WriteCSV(w io.Writer, t climate.Table, dateColumn string) error {
	cw := csv.NewWriter(w)

	header := append([]string{dateColumn}, t.Fields...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, r := range t.Records {
		row[0] = r.Date.Format(climate.DateLayout)
		for i, f := range t.Fields {
			v, ok := r.Values[f]
			if !ok || math.IsNaN(v) {
				row[i+1] = ""
				continue
			}
			row[i+1] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
