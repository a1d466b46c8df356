package kpi

import (
	"fmt"
	"strings"
)

// NotAvailable is displayed in place of an absent value
const NotAvailable = "N/A"

// FormatValue renders v with the definition's template and unit
func (d Definition) FormatValue(v Value) string {
	if !v.Valid {
		return NotAvailable
	}
	return d.withUnit(fmt.Sprintf(d.format(), v.Float64))
}

// FormatDelta renders a delta with an explicit sign
func (d Definition) FormatDelta(v Value) string {
	if !v.Valid {
		return NotAvailable
	}
	tmpl := d.format()
	if !strings.Contains(tmpl, "%+") {
		tmpl = strings.Replace(tmpl, "%", "%+", 1)
	}
	return d.withUnit(fmt.Sprintf(tmpl, v.Float64))
}

func (d Definition) format() string {
	if d.Format == "" {
		return DefaultFormat
	}
	return d.Format
}

func (d Definition) withUnit(s string) string {
	switch {
	case d.Unit == "":
		return s
	case strings.HasPrefix(d.Unit, "°"), d.Unit == "%":
		return s + d.Unit
	}
	return s + " " + d.Unit
}
