package climate

import (
	"testing"
	"time"
)

// dailyTable builds a contiguous table from start for n days with a single
// "avg_temperature" field holding the day index.
func dailyTable(t *testing.T, start time.Time, n int) Table {
	t.Helper()
	records := make([]Record, n)
	for i := 0; i < n; i++ {
		records[i] = Record{
			Date:   start.AddDate(0, 0, i),
			Values: map[string]float64{"avg_temperature": float64(i)},
		}
	}
	table, err := NewTable([]string{"avg_temperature"}, records)
	if err != nil {
		t.Fatalf("NewTable returned error: %v", err)
	}
	return table
}
