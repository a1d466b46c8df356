package climate

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/climatedash/pkg/season"
)

// ErrUnknownGranularity is returned when a granularity name cannot be parsed
var ErrUnknownGranularity = errors.New("unknown granularity")

// Granularity is the grouping resolution used for drill-down views
type Granularity int

const (
	// Daily keeps the whole table in a single group
	Daily Granularity = iota
	Monthly
	Seasonal
	Annual
)

func (g Granularity) String() string {
	switch g {
	case Daily:
		return "Daily"
	case Monthly:
		return "Monthly"
	case Seasonal:
		return "Seasonal"
	case Annual:
		return "Annual"
	}
	return "Granularity(" + strconv.Itoa(int(g)) + ")"
}

// Granularities lists every supported granularity
func Granularities() []Granularity {
	return []Granularity{Daily, Monthly, Seasonal, Annual}
}

// ParseGranularity converts a granularity name, in any letter case, to a Granularity
func ParseGranularity(name string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "daily":
		return Daily, nil
	case "monthly":
		return Monthly, nil
	case "seasonal":
		return Seasonal, nil
	case "annual", "yearly":
		return Annual, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGranularity, name)
}

// Key identifies one group. Each granularity has its own key type; keys of
// the same granularity are totally ordered by Less.
type Key interface {
	Granularity() Granularity
	String() string
	Less(other Key) bool
}

// AllKey is the single key used by Daily grouping
type AllKey struct{}

func (AllKey) Granularity() Granularity { return Daily }
func (AllKey) String() string           { return "all" }

func (k AllKey) Less(other Key) bool {
	return k.Granularity() < other.Granularity()
}

// MonthKey groups by calendar month
type MonthKey struct {
	Year  int
	Month time.Month
}

func (MonthKey) Granularity() Granularity { return Monthly }

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

func (k MonthKey) Less(other Key) bool {
	o, ok := other.(MonthKey)
	if !ok {
		return k.Granularity() < other.Granularity()
	}
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}

// SeasonKey groups by season within a calendar year
type SeasonKey struct {
	Year   int
	Season season.Season
}

func (SeasonKey) Granularity() Granularity { return Seasonal }

func (k SeasonKey) String() string {
	return fmt.Sprintf("%04d %s", k.Year, k.Season)
}

func (k SeasonKey) Less(other Key) bool {
	o, ok := other.(SeasonKey)
	if !ok {
		return k.Granularity() < other.Granularity()
	}
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Season.Order() < o.Season.Order()
}

// YearKey groups by calendar year
type YearKey struct {
	Year int
}

func (YearKey) Granularity() Granularity { return Annual }

func (k YearKey) String() string {
	return fmt.Sprintf("%04d", k.Year)
}

func (k YearKey) Less(other Key) bool {
	o, ok := other.(YearKey)
	if !ok {
		return k.Granularity() < other.Granularity()
	}
	return k.Year < o.Year
}

// Groups maps each key to the records that fall under it
type Groups map[Key]Table

// Keys returns the group keys in ascending order
func (g Groups) Keys() []Key {
	keys := make([]Key, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})
	return keys
}

// Records returns the total number of records across all groups
func (g Groups) Records() int {
	n := 0
	for _, t := range g {
		n += t.Len()
	}
	return n
}

// KeyOf returns the key a record falls under at granularity g
func KeyOf(r Record, g Granularity) (Key, error) {
	switch g {
	case Daily:
		return AllKey{}, nil
	case Monthly:
		return MonthKey{Year: r.Date.Year(), Month: r.Date.Month()}, nil
	case Seasonal:
		return SeasonKey{Year: r.Date.Year(), Season: season.Of(r.Date)}, nil
	case Annual:
		return YearKey{Year: r.Date.Year()}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownGranularity, g)
}

// GroupBy partitions t by granularity g. Every record lands in exactly one
// group and record order is preserved inside each group. Daily returns the
// whole table unchanged under AllKey.
func GroupBy(t Table, g Granularity) (Groups, error) {
	if g == Daily {
		return Groups{AllKey{}: t}, nil
	}

	buckets := make(map[Key][]Record)
	for _, r := range t.Records {
		k, err := KeyOf(r, g)
		if err != nil {
			return nil, err
		}
		buckets[k] = append(buckets[k], r)
	}

	groups := make(Groups, len(buckets))
	for k, records := range buckets {
		groups[k] = t.withRecords(records)
	}
	return groups, nil
}
