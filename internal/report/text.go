package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/chrissnell/climatedash/internal/dashboard"
	"github.com/chrissnell/climatedash/internal/kpi"
	"github.com/dustin/go-humanize"
)

// WriteText prints the KPI comparison followed by the group table
func WriteText(w io.Writer, r *dashboard.Result, groups []dashboard.GroupSummary, defs []kpi.Definition) error {
	q := r.Query
	fmt.Fprintf(w, "Window:      %s (%s days)\n", q.Window, humanize.Comma(int64(r.Current.Len())))
	if r.BaselineWindow != nil {
		fmt.Fprintf(w, "Baseline:    %s (%s days)\n", r.BaselineWindow, humanize.Comma(int64(r.Baseline.Len())))
	} else {
		fmt.Fprintln(w, "Baseline:    off")
	}
	fmt.Fprintf(w, "Granularity: %s\n\n", q.Granularity)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KPI\tCURRENT\tBASELINE\tDELTA")
	for _, res := range r.KPIs {
		d := res.Definition
		if res.Err != nil {
			fmt.Fprintf(tw, "%s\terror: %v\t\t\n", d.Name, res.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name, d.FormatValue(res.Current), d.FormatValue(res.Baseline), d.FormatDelta(res.Delta))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(groups) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "GROUP\tDAYS")
	for _, d := range defs {
		fmt.Fprintf(tw, "\t%s", d.Name)
	}
	fmt.Fprintln(tw)
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%s", g.Key, humanize.Comma(int64(g.Count)))
		for _, d := range defs {
			fmt.Fprintf(tw, "\t%s", d.FormatValue(g.Values[d.Name]))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
