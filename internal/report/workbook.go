// Package report renders a dashboard result as an XLSX workbook or a plain
// text summary.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/chrissnell/climatedash/internal/dashboard"
	"github.com/chrissnell/climatedash/internal/kpi"
	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook
const (
	SheetKPIs   = "KPIs"
	SheetGroups = "Groups"
	SheetQuery  = "Query"
)

// ContentType is the MIME type of the exported workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var kpiHeader = []any{"KPI", "Unit", "Current", "Baseline", "Delta", "Current (display)", "Baseline (display)", "Delta (display)", "Error"}

// Workbook builds a workbook with the KPI comparison, the drill-down groups
// and the query parameters on separate sheets. Absent values are left blank.
func Workbook(r *dashboard.Result, groups []dashboard.GroupSummary, defs []kpi.Definition) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetKPIs); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetGroups, SheetQuery} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	steps := []func() error{
		func() error { return writeKPIs(f, r.KPIs, bold) },
		func() error { return writeGroups(f, groups, defs, bold) },
		func() error { return writeQuery(f, r, bold) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// WriteWorkbook builds the workbook and writes it to w
func WriteWorkbook(w io.Writer, r *dashboard.Result, groups []dashboard.GroupSummary, defs []kpi.Definition) error {
	f, err := Workbook(r, groups, defs)
	if err != nil {
		return fmt.Errorf("error building workbook: %w", err)
	}
	defer f.Close()

	return f.Write(w)
}

func writeKPIs(f *excelize.File, results []kpi.Result, bold int) error {
	if err := writeHeader(f, SheetKPIs, kpiHeader, bold); err != nil {
		return err
	}

	for i, res := range results {
		d := res.Definition
		errText := ""
		if res.Err != nil {
			errText = res.Err.Error()
		}
		row := []any{
			d.Name,
			d.Unit,
			cellValue(res.Current),
			cellValue(res.Baseline),
			cellValue(res.Delta),
			d.FormatValue(res.Current),
			d.FormatValue(res.Baseline),
			d.FormatDelta(res.Delta),
			errText,
		}
		if err := setRow(f, SheetKPIs, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetKPIs, "A", "A", 24)
}

func writeGroups(f *excelize.File, groups []dashboard.GroupSummary, defs []kpi.Definition, bold int) error {
	header := []any{"Group", "Days"}
	for _, d := range defs {
		label := d.Name
		if d.Unit != "" {
			label += " (" + d.Unit + ")"
		}
		header = append(header, label)
	}
	if err := writeHeader(f, SheetGroups, header, bold); err != nil {
		return err
	}

	for i, g := range groups {
		row := []any{g.Key.String(), g.Count}
		for _, d := range defs {
			row = append(row, cellValue(g.Values[d.Name]))
		}
		if err := setRow(f, SheetGroups, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeQuery(f *excelize.File, r *dashboard.Result, bold int) error {
	q := r.Query
	seasons := make([]string, 0, 4)
	for _, s := range q.Seasons() {
		seasons = append(seasons, s.String())
	}
	if len(seasons) == 0 {
		seasons = append(seasons, "All")
	}

	baseline := ""
	if r.BaselineWindow != nil {
		baseline = r.BaselineWindow.String()
	}

	rows := [][]any{
		{"Window", q.Window.String()},
		{"Seasons", strings.Join(seasons, ", ")},
		{"Granularity", q.Granularity.String()},
		{"Comparison", q.Comparison},
		{"Baseline window", baseline},
		{"Current days", r.Current.Len()},
		{"Baseline days", r.Baseline.Len()},
	}
	for i, row := range rows {
		if err := setRow(f, SheetQuery, i+1, row); err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetQuery, cell, cell, bold); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetQuery, "A", "B", 22)
}

func writeHeader(f *excelize.File, sheet string, header []any, bold int) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, bold)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// cellValue leaves absent values blank
func cellValue(v kpi.Value) any {
	if !v.Valid {
		return nil
	}
	return v.Float64
}
