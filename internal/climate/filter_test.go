package climate

import (
	"errors"
	"testing"
	"time"

	"github.com/chrissnell/climatedash/pkg/season"
)

func TestFilterDateBounds(t *testing.T) {
	table := dailyTable(t, Date(2020, 1, 1), 366)
	w, _ := NewWindow(Date(2020, 3, 1), Date(2020, 3, 31))

	got, err := Filter(table, w, nil)
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if got.Len() != 31 {
		t.Fatalf("Filter kept %d records, expected 31", got.Len())
	}
	if !got.Records[0].Date.Equal(w.Start) || !got.Records[30].Date.Equal(w.End) {
		t.Error("Filter did not keep both window ends")
	}
	for i := 1; i < got.Len(); i++ {
		if !got.Records[i-1].Date.Before(got.Records[i].Date) {
			t.Fatal("Filter did not preserve ordering")
		}
	}
	if table.Len() != 366 {
		t.Error("Filter modified its input table")
	}
}

func TestFilterSeasons(t *testing.T) {
	table := dailyTable(t, Date(2020, 1, 1), 366)
	w, _ := table.Range()

	tests := []struct {
		name     string
		seasons  []season.Season
		expected int
	}{
		{name: "no selection keeps everything", seasons: nil, expected: 366},
		{name: "empty slice keeps everything", seasons: []season.Season{}, expected: 366},
		{name: "all seasons", seasons: season.All(), expected: 366},
		// Jan 31 + Feb 29 + Dec 31
		{name: "winter", seasons: []season.Season{season.Winter}, expected: 91},
		// Jun 30 + Jul 31 + Aug 31 + Sep 30 + Oct 31 + Nov 30
		{name: "summer and fall", seasons: []season.Season{season.Summer, season.Fall}, expected: 183},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(table, w, tt.seasons)
			if err != nil {
				t.Fatalf("Filter returned error: %v", err)
			}
			if got.Len() != tt.expected {
				t.Errorf("Filter kept %d records, expected %d", got.Len(), tt.expected)
			}
			if len(tt.seasons) == 0 {
				return
			}
			for _, r := range got.Records {
				found := false
				for _, s := range tt.seasons {
					if season.Of(r.Date) == s {
						found = true
					}
				}
				if !found {
					t.Fatalf("record %s has season %s outside selection", r.Date.Format(DateLayout), season.Of(r.Date))
				}
			}
		})
	}
}

func TestFilterToleratesGaps(t *testing.T) {
	records := []Record{
		{Date: Date(2020, 1, 1)},
		{Date: Date(2020, 1, 5)},
		{Date: Date(2020, 2, 10)},
	}
	table, _ := NewTable(nil, records)
	w, _ := NewWindow(Date(2020, 1, 2), Date(2020, 2, 10))

	got, err := Filter(table, w, nil)
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if got.Len() != 2 {
		t.Errorf("Filter kept %d records, expected 2", got.Len())
	}
}

func TestFilterInvalidWindow(t *testing.T) {
	table := dailyTable(t, Date(2020, 1, 1), 10)
	w := Window{Start: Date(2020, 1, 5), End: Date(2020, 1, 1)}
	if _, err := Filter(table, w, nil); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("Filter error = %v, expected ErrInvalidWindow", err)
	}
}

func TestFilterAgreesWithWindowContains(t *testing.T) {
	table := dailyTable(t, Date(2019, 12, 25), 20)
	windows := []Window{
		{Start: Date(2020, 1, 1), End: Date(2020, 1, 1)},
		{Start: Date(2019, 12, 25), End: Date(2019, 12, 31)},
		{Start: Date(2020, 1, 10), End: Date(2020, 3, 1)},
	}

	for _, w := range windows {
		t.Run(w.String(), func(t *testing.T) {
			got, err := Filter(table, w, nil)
			if err != nil {
				t.Fatalf("Filter returned error: %v", err)
			}
			kept := make(map[time.Time]bool, got.Len())
			for _, r := range got.Records {
				kept[r.Date] = true
			}
			for _, r := range table.Records {
				if kept[r.Date] != w.Contains(r.Date) {
					t.Errorf("%s: kept = %v, Contains = %v", r.Date.Format(DateLayout), kept[r.Date], w.Contains(r.Date))
				}
			}
		})
	}
}
