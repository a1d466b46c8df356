package climate

import "github.com/chrissnell/climatedash/pkg/season"

// Filter keeps the records dated inside w whose season is in seasons.
// An empty season list selects every season.
func Filter(t Table, w Window, seasons []season.Season) (Table, error) {
	if err := w.Validate(); err != nil {
		return Table{}, err
	}

	var allowed map[season.Season]bool
	if len(seasons) > 0 {
		allowed = make(map[season.Season]bool, len(seasons))
		for _, s := range seasons {
			allowed[s] = true
		}
	}

	out := make([]Record, 0)
	for _, r := range t.Records {
		if !w.Contains(r.Date) {
			continue
		}
		if allowed != nil && !allowed[season.Of(r.Date)] {
			continue
		}
		out = append(out, r)
	}

	return t.withRecords(out), nil
}
