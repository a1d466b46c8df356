// Package season maps calendar dates onto meteorological seasons. Seasons are
// whole calendar months (Dec-Feb, Mar-May, Jun-Aug, Sep-Nov) and never span a
// year boundary: a December day belongs to the winter of its own year.
package season

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Season is a meteorological season label
type Season string

const (
	Winter Season = "Winter"
	Spring Season = "Spring"
	Summer Season = "Summer"
	Fall   Season = "Fall"
)

var (
	// ErrInvalidMonth is returned for month numbers outside 1..12
	ErrInvalidMonth = errors.New("invalid month")

	// ErrUnknownSeason is returned when a season name cannot be parsed
	ErrUnknownSeason = errors.New("unknown season")
)

// byMonth is indexed by month number; index 0 is unused
var byMonth = [13]Season{
	"",
	Winter, Winter,
	Spring, Spring, Spring,
	Summer, Summer, Summer,
	Fall, Fall, Fall,
	Winter,
}

// All returns the four seasons in calendar order
func All() []Season {
	return []Season{Winter, Spring, Summer, Fall}
}

// FromMonth returns the season for a month number in 1..12
func FromMonth(month int) (Season, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return byMonth[month], nil
}

// Of returns the season of a calendar date
func Of(t time.Time) Season {
	return byMonth[t.Month()]
}

// Parse converts a season name, in any letter case, to a Season.
// "Autumn" is accepted as a synonym for Fall.
func Parse(name string) (Season, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "winter":
		return Winter, nil
	case "spring":
		return Spring, nil
	case "summer":
		return Summer, nil
	case "fall", "autumn":
		return Fall, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSeason, name)
}

// ParseList parses a list of season names, dropping duplicates while keeping
// the order in which they first appear.
func ParseList(names []string) ([]Season, error) {
	var out []Season
	seen := make(map[Season]bool, len(names))
	for _, n := range names {
		s, err := Parse(n)
		if err != nil {
			return nil, err
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out, nil
}

// Order returns the position of the season within a calendar year (Winter=0)
func (s Season) Order() int {
	switch s {
	case Winter:
		return 0
	case Spring:
		return 1
	case Summer:
		return 2
	case Fall:
		return 3
	}
	return 4
}

// String implements fmt.Stringer
func (s Season) String() string {
	return string(s)
}
