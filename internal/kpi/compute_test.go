package kpi

import (
	"errors"
	"math"
	"testing"

	"github.com/chrissnell/climatedash/internal/climate"
)

func table(t *testing.T, field string, values ...float64) climate.Table {
	t.Helper()
	start := climate.Date(2020, 1, 1)
	records := make([]climate.Record, len(values))
	for i, v := range values {
		records[i] = climate.Record{
			Date:   start.AddDate(0, 0, i),
			Values: map[string]float64{field: v},
		}
	}
	tbl, err := climate.NewTable([]string{field}, records)
	if err != nil {
		t.Fatalf("NewTable returned error: %v", err)
	}
	return tbl
}

func TestCompute(t *testing.T) {
	tbl := table(t, "avg_temperature", 10.0, 20.0, 30.0)

	tests := []struct {
		reduction Reduction
		expected  float64
	}{
		{Mean, 20.0},
		{Sum, 60.0},
		{Max, 30.0},
		{Min, 10.0},
	}

	for _, tt := range tests {
		t.Run(string(tt.reduction), func(t *testing.T) {
			d := Definition{Name: "t", Field: "avg_temperature", Reduction: tt.reduction}
			got, err := Compute(tbl, d)
			if err != nil {
				t.Fatalf("Compute returned error: %v", err)
			}
			if !got.Valid {
				t.Fatal("Compute returned an absent value")
			}
			if math.Abs(got.Float64-tt.expected) > 1e-9 {
				t.Errorf("Compute = %v, expected %v", got.Float64, tt.expected)
			}
		})
	}
}

func TestComputeEmptyTableIsAbsent(t *testing.T) {
	empty := table(t, "avg_temperature")
	for _, d := range DefaultDefinitions() {
		got, err := Compute(empty, d)
		if err != nil {
			t.Errorf("%s: Compute returned error: %v", d.Name, err)
		}
		if got.Valid {
			t.Errorf("%s: Compute on empty table = %v, expected absent", d.Name, got.Float64)
		}
	}
}

func TestComputeSkipsNaN(t *testing.T) {
	tbl := table(t, "precipitation", 1.5, math.NaN(), 2.5)
	got, err := Compute(tbl, Definition{Name: "p", Field: "precipitation", Reduction: Mean})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if !got.Valid || got.Float64 != 2.0 {
		t.Errorf("Compute = %+v, expected 2.0", got)
	}

	allNaN := table(t, "precipitation", math.NaN(), math.NaN())
	got, _ = Compute(allNaN, Definition{Name: "p", Field: "precipitation", Reduction: Max})
	if got.Valid {
		t.Errorf("Compute over all-NaN column = %v, expected absent", got.Float64)
	}
}

func TestComputeErrors(t *testing.T) {
	tbl := table(t, "avg_temperature", 1, 2, 3)

	_, err := Compute(tbl, Definition{Name: "x", Field: "avg_temperature", Reduction: "median"})
	if !errors.Is(err, ErrUnknownReduction) {
		t.Errorf("Compute error = %v, expected ErrUnknownReduction", err)
	}

	_, err = Compute(tbl, Definition{Name: "x", Field: "snowfall", Reduction: Sum})
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("Compute error = %v, expected ErrMissingField", err)
	}
}

func TestCompare(t *testing.T) {
	d := Definition{Name: "avg", Field: "avg_temperature", Reduction: Mean}
	current := table(t, "avg_temperature", 12, 14)
	baseline := table(t, "avg_temperature", 10, 10)
	empty := table(t, "avg_temperature")

	tests := []struct {
		name     string
		current  climate.Table
		baseline climate.Table
		delta    Value
	}{
		{name: "both present", current: current, baseline: baseline, delta: Present(3)},
		{name: "no baseline", current: current, baseline: empty, delta: Absent},
		{name: "no current", current: empty, baseline: baseline, delta: Absent},
		{name: "nothing", current: empty, baseline: empty, delta: Absent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Compare(tt.current, tt.baseline, d)
			if err != nil {
				t.Fatalf("Compare returned error: %v", err)
			}
			if c.Delta != tt.delta {
				t.Errorf("Delta = %+v, expected %+v", c.Delta, tt.delta)
			}
		})
	}
}

func TestEvaluateIsolatesFailures(t *testing.T) {
	defs := []Definition{
		{Name: "temp", Field: "avg_temperature", Reduction: Mean},
		{Name: "snow", Field: "snowfall", Reduction: Sum},
		{Name: "peak", Field: "avg_temperature", Reduction: Max},
	}
	cur := table(t, "avg_temperature", 1, 2, 3)

	results := Evaluate(cur, cur, defs)
	if len(results) != 3 {
		t.Fatalf("Evaluate returned %d results, expected 3", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("unexpected errors: %v, %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, ErrMissingField) {
		t.Errorf("results[1].Err = %v, expected ErrMissingField", results[1].Err)
	}
	if results[2].Current.Float64 != 3 || results[2].Delta.Float64 != 0 {
		t.Errorf("results[2] = %+v", results[2].Comparison)
	}
}

func TestSumIsAdditiveAcrossAnnualGroups(t *testing.T) {
	values := make([]float64, 1000)
	for i := range values {
		values[i] = float64(i%17) * 0.25
	}
	tbl := table(t, "precipitation", values...)

	groups, err := climate.GroupBy(tbl, climate.Annual)
	if err != nil {
		t.Fatalf("GroupBy returned error: %v", err)
	}

	checked := 0
	for _, r := range []Reduction{Mean, Sum, Max, Min} {
		if !r.Additive() {
			continue
		}
		d := Definition{Name: string(r), Field: "precipitation", Reduction: r}
		t.Run(d.Name, func(t *testing.T) {
			whole, err := Compute(tbl, d)
			if err != nil {
				t.Fatalf("Compute returned error: %v", err)
			}
			var total float64
			for _, g := range groups {
				v, err := Compute(g, d)
				if err != nil {
					t.Fatalf("Compute returned error: %v", err)
				}
				total += v.Float64
			}
			if math.Abs(total-whole.Float64) > 1e-6 {
				t.Errorf("%s over annual groups = %v, over table = %v", r, total, whole.Float64)
			}
		})
		checked++
	}
	if checked == 0 {
		t.Fatal("no additive reduction was checked")
	}
}

func TestSummarize(t *testing.T) {
	tbl := table(t, "avg_temperature", 4, 6)
	got := Summarize(tbl, []Definition{
		{Name: "mean", Field: "avg_temperature", Reduction: Mean},
		{Name: "missing", Field: "nope", Reduction: Mean},
	})
	if len(got) != 1 || got["mean"].Float64 != 5 {
		t.Errorf("Summarize = %+v", got)
	}
}
