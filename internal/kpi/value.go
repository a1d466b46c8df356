package kpi

// Value is a KPI result that may be absent, in the manner of sql.NullFloat64.
// Absent values stand for "no data" and are never an error.
type Value struct {
	Float64 float64
	Valid   bool
}

// Absent is the value of a KPI computed over no data
var Absent = Value{}

// Present wraps a computed value
func Present(v float64) Value {
	return Value{Float64: v, Valid: true}
}

// Ptr returns the value as a pointer, nil when absent
func (v Value) Ptr() *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// Sub returns v - o, absent unless both sides are present
func (v Value) Sub(o Value) Value {
	if !v.Valid || !o.Valid {
		return Absent
	}
	return Present(v.Float64 - o.Float64)
}
