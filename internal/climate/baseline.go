package climate

import "time"

// ResolveBaseline derives the historical window a KPI is compared against.
//
// The span in whole years is n = max(end.Year - start.Year, 1) and both ends
// move back n+1 years with month and day unchanged, so the baseline does not
// sit directly against the current window. A Feb 29 that lands in a common
// year becomes Feb 28. Start is then clamped up to datasetMin; when the
// clamp passes End the returned window is degenerate and covers no days.
func ResolveBaseline(current Window, datasetMin time.Time) (Window, error) {
	if err := current.Validate(); err != nil {
		return Window{}, err
	}

	years := current.End.Year() - current.Start.Year()
	if years < 1 {
		years = 1
	}
	shift := years + 1

	baseline := Window{
		Start: shiftYears(current.Start, shift),
		End:   shiftYears(current.End, shift),
	}

	if floor := Day(datasetMin); baseline.Start.Before(floor) {
		baseline.Start = floor
	}

	return baseline, nil
}

// shiftYears moves t back by years, clamping the day to the last day of the
// target month.
func shiftYears(t time.Time, years int) time.Time {
	y := t.Year() - years
	d := t.Day()
	if last := daysIn(y, t.Month()); d > last {
		d = last
	}
	return Date(y, t.Month(), d)
}

func daysIn(year int, month time.Month) int {
	return Date(year, month+1, 0).Day()
}
