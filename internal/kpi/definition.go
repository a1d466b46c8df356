// Package kpi reduces a climate table to headline indicators and compares a
// selected period against its baseline.
package kpi

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownReduction is returned for a reduction other than mean, sum, max or min
	ErrUnknownReduction = errors.New("unknown reduction")

	// ErrMissingField is returned when a definition reads a column the table lacks
	ErrMissingField = errors.New("missing field")

	// ErrInvalidDefinition is returned when a definition registry fails validation
	ErrInvalidDefinition = errors.New("invalid KPI definition")
)

// Reduction names how a column collapses to a single value
type Reduction string

const (
	Mean Reduction = "mean"
	Sum  Reduction = "sum"
	Max  Reduction = "max"
	Min  Reduction = "min"
)

// ParseReduction converts a reduction name to a Reduction
func ParseReduction(name string) (Reduction, error) {
	r := Reduction(strings.ToLower(strings.TrimSpace(name)))
	switch r {
	case Mean, Sum, Max, Min:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReduction, name)
}

// Additive reports whether the reduction of a union equals the sum of the
// reductions of its parts
func (r Reduction) Additive() bool {
	return r == Sum
}

// DefaultFormat is used when a definition does not carry a format template
const DefaultFormat = "%.1f"

// Definition describes one KPI
type Definition struct {
	Name      string
	Field     string
	Reduction Reduction
	Unit      string
	Format    string // printf verb for the value, e.g. "%.1f"
	Help      string
}

// DefaultDefinitions returns the built-in KPI registry in display order
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Name:      "Average Temperature",
			Field:     "avg_temperature",
			Reduction: Mean,
			Unit:      "°C",
			Format:    "%.1f",
			Help:      "Mean of the daily average temperature over the selected days",
		},
		{
			Name:      "Highest Temperature",
			Field:     "max_temperature",
			Reduction: Max,
			Unit:      "°C",
			Format:    "%.1f",
			Help:      "Warmest daily maximum recorded in the selection",
		},
		{
			Name:      "Lowest Temperature",
			Field:     "min_temperature",
			Reduction: Min,
			Unit:      "°C",
			Format:    "%.1f",
			Help:      "Coldest daily minimum recorded in the selection",
		},
		{
			Name:      "Total Precipitation",
			Field:     "precipitation",
			Reduction: Sum,
			Unit:      "mm",
			Format:    "%.0f",
			Help:      "Sum of daily precipitation",
		},
		{
			Name:      "Heating Degree Days",
			Field:     "heatdegdays",
			Reduction: Sum,
			Unit:      "HDD",
			Format:    "%.0f",
			Help:      "Accumulated heating degree days",
		},
		{
			Name:      "Cooling Degree Days",
			Field:     "cooldegdays",
			Reduction: Sum,
			Unit:      "CDD",
			Format:    "%.0f",
			Help:      "Accumulated cooling degree days",
		},
		{
			Name:      "Growing Degree Days",
			Field:     "growdegdays_7",
			Reduction: Sum,
			Unit:      "GDD",
			Format:    "%.0f",
			Help:      "Accumulated growing degree days above a 7 °C base",
		},
		{
			Name:      "Solar Radiation",
			Field:     "solar_radiation",
			Reduction: Mean,
			Unit:      "MJ/m²",
			Format:    "%.2f",
			Help:      "Mean daily solar radiation",
		},
		{
			Name:      "Health Index",
			Field:     "avg_health_index",
			Reduction: Mean,
			Unit:      "",
			Format:    "%.2f",
			Help:      "Mean of the daily composite health index",
		},
	}
}

// ValidateDefinitions checks that every definition names a field and a known
// reduction and that names are unique. Missing formats are filled with DefaultFormat.
func ValidateDefinitions(defs []Definition) ([]Definition, error) {
	out := make([]Definition, len(defs))
	seen := make(map[string]bool, len(defs))

	for i, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: definition %d has no name", ErrInvalidDefinition, i)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidDefinition, d.Name)
		}
		seen[d.Name] = true

		if d.Field == "" {
			return nil, fmt.Errorf("%w: %q has no field", ErrInvalidDefinition, d.Name)
		}

		r, err := ParseReduction(string(d.Reduction))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidDefinition, d.Name, err)
		}
		d.Reduction = r

		if d.Format == "" {
			d.Format = DefaultFormat
		}
		out[i] = d
	}

	return out, nil
}
