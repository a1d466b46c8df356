package kpi

import (
	"fmt"
	"math"

	"github.com/chrissnell/climatedash/internal/climate"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Compute reduces d.Field over every record of t.
//
// An empty table yields Absent. NaN cells (blank source values) are skipped;
// a column with nothing but NaN also yields Absent.
func Compute(t climate.Table, d Definition) (Value, error) {
	r, err := ParseReduction(string(d.Reduction))
	if err != nil {
		return Absent, fmt.Errorf("kpi %q: %w", d.Name, err)
	}

	if t.Empty() {
		return Absent, nil
	}

	if !t.HasField(d.Field) {
		return Absent, fmt.Errorf("kpi %q: %w: %s", d.Name, ErrMissingField, d.Field)
	}

	return Reduce(t.Column(d.Field), r)
}

// Reduce applies r to values, skipping NaN
func Reduce(values []float64, r Reduction) (Value, error) {
	x := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			x = append(x, v)
		}
	}

	switch r {
	case Mean, Sum, Max, Min:
	default:
		return Absent, fmt.Errorf("%w: %q", ErrUnknownReduction, r)
	}

	if len(x) == 0 {
		return Absent, nil
	}

	switch r {
	case Mean:
		return Present(stat.Mean(x, nil)), nil
	case Sum:
		return Present(floats.Sum(x)), nil
	case Max:
		return Present(floats.Max(x)), nil
	default:
		return Present(floats.Min(x)), nil
	}
}

// Comparison pairs a KPI over the current window with its baseline
type Comparison struct {
	Current  Value
	Baseline Value
	Delta    Value
}

// Compare computes d over both tables. Delta is present only when both sides are.
func Compare(current, baseline climate.Table, d Definition) (Comparison, error) {
	cur, err := Compute(current, d)
	if err != nil {
		return Comparison{}, err
	}
	base, err := Compute(baseline, d)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{
		Current:  cur,
		Baseline: base,
		Delta:    cur.Sub(base),
	}, nil
}

// Result is the outcome of one definition within Evaluate
type Result struct {
	Definition Definition
	Comparison
	Err error
}

// Evaluate compares every definition in registry order. A failing definition
// records its error and does not stop the others.
func Evaluate(current, baseline climate.Table, defs []Definition) []Result {
	results := make([]Result, len(defs))
	for i, d := range defs {
		c, err := Compare(current, baseline, d)
		results[i] = Result{Definition: d, Comparison: c, Err: err}
	}
	return results
}

// Summarize computes every definition over t, keyed by definition name.
// Definitions that fail are left out.
func Summarize(t climate.Table, defs []Definition) map[string]Value {
	out := make(map[string]Value, len(defs))
	for _, d := range defs {
		v, err := Compute(t, d)
		if err != nil {
			continue
		}
		out[d.Name] = v
	}
	return out
}
