package kpi

import (
	"errors"
	"testing"
)

func TestDefaultDefinitionsValidate(t *testing.T) {
	defs, err := ValidateDefinitions(DefaultDefinitions())
	if err != nil {
		t.Fatalf("default registry failed validation: %v", err)
	}
	if len(defs) != len(DefaultDefinitions()) {
		t.Errorf("ValidateDefinitions dropped definitions")
	}
}

func TestValidateDefinitions(t *testing.T) {
	tests := []struct {
		name    string
		defs    []Definition
		wantErr error
	}{
		{
			name:    "duplicate names",
			defs:    []Definition{{Name: "a", Field: "x", Reduction: Sum}, {Name: "a", Field: "y", Reduction: Sum}},
			wantErr: ErrInvalidDefinition,
		},
		{
			name:    "no field",
			defs:    []Definition{{Name: "a", Reduction: Sum}},
			wantErr: ErrInvalidDefinition,
		},
		{
			name:    "bad reduction",
			defs:    []Definition{{Name: "a", Field: "x", Reduction: "p90"}},
			wantErr: ErrUnknownReduction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateDefinitions(tt.defs); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDefinitions error = %v, expected %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefinitionsNormalizes(t *testing.T) {
	defs, err := ValidateDefinitions([]Definition{{Name: "a", Field: "x", Reduction: "MEAN"}})
	if err != nil {
		t.Fatalf("ValidateDefinitions returned error: %v", err)
	}
	if defs[0].Reduction != Mean || defs[0].Format != DefaultFormat {
		t.Errorf("normalized definition = %+v", defs[0])
	}
}

func TestReductionAdditive(t *testing.T) {
	tests := map[Reduction]bool{Sum: true, Mean: false, Max: false, Min: false}
	for r, want := range tests {
		if got := r.Additive(); got != want {
			t.Errorf("%s.Additive() = %v, expected %v", r, got, want)
		}
	}
}

func TestFormat(t *testing.T) {
	temp := Definition{Unit: "°C", Format: "%.1f"}
	rain := Definition{Unit: "mm", Format: "%.0f"}
	index := Definition{Format: "%.2f"}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"temperature", temp.FormatValue(Present(12.345)), "12.3°C"},
		{"rain", rain.FormatValue(Present(812.6)), "813 mm"},
		{"unitless", index.FormatValue(Present(0.5)), "0.50"},
		{"absent", temp.FormatValue(Absent), NotAvailable},
		{"positive delta", temp.FormatDelta(Present(1.26)), "+1.3°C"},
		{"negative delta", rain.FormatDelta(Present(-40)), "-40 mm"},
		{"absent delta", rain.FormatDelta(Absent), NotAvailable},
		{"default format", Definition{}.FormatValue(Present(3)), "3.0"},
	}

	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s: got %q, expected %q", tt.name, tt.got, tt.expected)
		}
	}
}

func TestValueSub(t *testing.T) {
	if got := Present(5).Sub(Present(2)); got != Present(3) {
		t.Errorf("Present(5).Sub(Present(2)) = %+v", got)
	}
	if got := Present(5).Sub(Absent); got.Valid {
		t.Errorf("Present(5).Sub(Absent) = %+v, expected absent", got)
	}
	if Absent.Ptr() != nil {
		t.Error("Absent.Ptr() is not nil")
	}
	if p := Present(1.5).Ptr(); p == nil || *p != 1.5 {
		t.Error("Present(1.5).Ptr() is wrong")
	}
}
