package climate

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWindow is returned when a window starts after it ends
var ErrInvalidWindow = errors.New("invalid window")

// Window is a closed date interval [Start, End]
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window from two dates, normalized to calendar days
func NewWindow(start, end time.Time) (Window, error) {
	w := Window{Start: Day(start), End: Day(end)}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// ParseWindow builds a window from two YYYY-MM-DD strings
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Window{}, err
	}
	return NewWindow(s, e)
}

// Validate returns ErrInvalidWindow when Start is after End
func (w Window) Validate() error {
	if w.Start.After(w.End) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidWindow,
			w.Start.Format(DateLayout), w.End.Format(DateLayout))
	}
	return nil
}

// Degenerate reports whether clamping pushed Start past End.
// A degenerate window covers no days.
func (w Window) Degenerate() bool {
	return w.Start.After(w.End)
}

// Contains reports whether t's calendar day lies inside the window
func (w Window) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Days returns the number of calendar days covered, 0 for a degenerate window
func (w Window) Days() int {
	if w.Degenerate() {
		return 0
	}
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

func (w Window) String() string {
	return w.Start.Format(DateLayout) + ".." + w.End.Format(DateLayout)
}
