// Package climate holds the daily climate table and the operations that slice
// it: date/season filtering, granularity grouping and baseline window resolution.
// Every operation returns a new Table and leaves its input untouched, so one
// loaded Table can be shared by any number of concurrent queries.
package climate

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/chrissnell/climatedash/pkg/season"
)

// DateLayout is the calendar date format used by every input and output boundary
const DateLayout = "2006-01-02"

// ErrDuplicateDate is returned when a table is built with two records for the same day
var ErrDuplicateDate = errors.New("duplicate date")

// Record is one calendar day of measurements
type Record struct {
	Date   time.Time
	Season season.Season
	Values map[string]float64
}

// Value returns the measurement for field. A field that is present but was
// blank in the source is reported as NaN.
func (r Record) Value(field string) (float64, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// Table is an ordered-by-date collection of records sharing one column set
type Table struct {
	Fields  []string
	Records []Record
}

// Day truncates t to midnight UTC of its calendar date
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar date at midnight UTC
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// NewTable normalizes record dates to calendar days, derives each record's
// season, sorts by date and rejects duplicate days. Gaps between days are allowed.
func NewTable(fields []string, records []Record) (Table, error) {
	out := make([]Record, len(records))
	for i, r := range records {
		r.Date = Day(r.Date)
		r.Season = season.Of(r.Date)
		out[i] = r
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	for i := 1; i < len(out); i++ {
		if out[i].Date.Equal(out[i-1].Date) {
			return Table{}, fmt.Errorf("%w: %s", ErrDuplicateDate, out[i].Date.Format(DateLayout))
		}
	}

	f := make([]string, len(fields))
	copy(f, fields)

	return Table{Fields: f, Records: out}, nil
}

// Len returns the number of records
func (t Table) Len() int {
	return len(t.Records)
}

// Empty reports whether the table has no records
func (t Table) Empty() bool {
	return len(t.Records) == 0
}

// HasField reports whether field is one of the table's columns
func (t Table) HasField(field string) bool {
	for _, f := range t.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Column returns the values of field in record order, NaN for blank cells
func (t Table) Column(field string) []float64 {
	out := make([]float64, 0, len(t.Records))
	for _, r := range t.Records {
		if v, ok := r.Values[field]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Range returns the window spanning the first and last record
func (t Table) Range() (Window, bool) {
	if t.Empty() {
		return Window{}, false
	}
	return Window{Start: t.Records[0].Date, End: t.Records[len(t.Records)-1].Date}, true
}

// MinDate returns the earliest date in the table
func (t Table) MinDate() (time.Time, bool) {
	if t.Empty() {
		return time.Time{}, false
	}
	return t.Records[0].Date, true
}

// withRecords returns a table sharing t's columns with a new record slice
func (t Table) withRecords(records []Record) Table {
	return Table{Fields: t.Fields, Records: records}
}
