// Package dashboard runs one climate query end to end: it filters the current
// window, resolves and filters the baseline, groups the current records and
// evaluates the KPI registry against both windows.
package dashboard

import (
	"sort"
	"strconv"
	"strings"

	"github.com/chrissnell/climatedash/internal/climate"
	"github.com/chrissnell/climatedash/pkg/season"
)

// QueryParameters is everything the caller can vary between two runs. It is
// a value: the constructor copies the season list so later changes by the
// caller are not seen.
type QueryParameters struct {
	Window      climate.Window
	Granularity climate.Granularity
	Comparison  bool
	seasons     []season.Season
}

// NewQuery builds query parameters. An empty season list selects all seasons.
func NewQuery(w climate.Window, seasons []season.Season, g climate.Granularity, comparison bool) QueryParameters {
	s := make([]season.Season, len(seasons))
	copy(s, seasons)
	return QueryParameters{
		Window:      w,
		Granularity: g,
		Comparison:  comparison,
		seasons:     s,
	}
}

// DefaultQuery covers the whole dataset with all seasons, monthly groups and
// the baseline comparison switched on
func DefaultQuery(dataset climate.Window) QueryParameters {
	return NewQuery(dataset, season.All(), climate.Monthly, true)
}

// Seasons returns a copy of the selected seasons
func (q QueryParameters) Seasons() []season.Season {
	s := make([]season.Season, len(q.seasons))
	copy(s, q.seasons)
	return s
}

// Key returns a canonical string for the parameters. Equivalent selections
// (season order, duplicates, "all four" versus "none") share one key.
func (q QueryParameters) Key() string {
	uniq := make(map[season.Season]bool)
	for _, s := range q.seasons {
		uniq[s] = true
	}
	seasons := make([]season.Season, 0, len(uniq))
	for s := range uniq {
		seasons = append(seasons, s)
	}
	sort.Slice(seasons, func(i, j int) bool {
		return seasons[i].Order() < seasons[j].Order()
	})

	names := "all"
	if len(seasons) > 0 && len(seasons) < len(season.All()) {
		parts := make([]string, len(seasons))
		for i, s := range seasons {
			parts[i] = s.String()
		}
		names = strings.Join(parts, ",")
	}

	return strings.Join([]string{
		q.Window.String(),
		names,
		q.Granularity.String(),
		strconv.FormatBool(q.Comparison),
	}, "|")
}
