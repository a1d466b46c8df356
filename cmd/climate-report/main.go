// climate-report runs one dashboard query against a cleaned table and prints
// the KPI comparison, optionally saving it as an XLSX workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chrissnell/climatedash/internal/app"
	"github.com/chrissnell/climatedash/internal/climate"
	"github.com/chrissnell/climatedash/internal/dashboard"
	"github.com/chrissnell/climatedash/internal/log"
	"github.com/chrissnell/climatedash/internal/report"
	"github.com/chrissnell/climatedash/pkg/config"
	"github.com/chrissnell/climatedash/pkg/season"
)

func main() {
	data := flag.String("data", "data/cleaned/climate_cleaned.csv", "Cleaned CSV file or SQLite database")
	backend := flag.String("backend", config.BackendCSV, "Data backend: 'csv' or 'sqlite'")
	start := flag.String("start", "", "First day of the window, YYYY-MM-DD (default: dataset start)")
	end := flag.String("end", "", "Last day of the window, YYYY-MM-DD (default: dataset end)")
	seasons := flag.String("season", "", "Comma-separated seasons to keep (default: all)")
	granularity := flag.String("granularity", "monthly", "Grouping: daily, monthly, seasonal or annual")
	comparison := flag.Bool("comparison", true, "Compare against the baseline window")
	xlsx := flag.String("xlsx", "", "Also write the report to this XLSX file")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := &config.ConfigData{
		Data: config.DataData{Backend: *backend, Path: *data},
	}
	if err := config.ApplyDefaults(cfg); err != nil {
		log.Fatalf("invalid data options: %v", err)
	}

	engine, err := app.LoadEngine(context.Background(), cfg, log.Named("report"))
	if err != nil {
		log.Fatalf("%v", err)
	}

	q, err := buildQuery(engine, *start, *end, *seasons, *granularity, *comparison)
	if err != nil {
		log.Fatalf("invalid query: %v", err)
	}

	r, err := engine.Run(q)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}
	groups := engine.Summaries(r)
	defs := engine.Definitions()

	if err := report.WriteText(os.Stdout, r, groups, defs); err != nil {
		log.Fatalf("error writing report: %v", err)
	}

	if *xlsx != "" {
		f, err := os.Create(*xlsx)
		if err != nil {
			log.Fatalf("%v", err)
		}
		if err := report.WriteWorkbook(f, r, groups, defs); err != nil {
			f.Close()
			log.Fatalf("error writing %s: %v", *xlsx, err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("%v", err)
		}
		log.Infof("workbook saved to %s", *xlsx)
	}
}

func buildQuery(engine *dashboard.Engine, start, end, seasons, granularity string, comparison bool) (dashboard.QueryParameters, error) {
	defaults, err := engine.DefaultQuery()
	if err != nil {
		return dashboard.QueryParameters{}, err
	}

	w := defaults.Window
	if start != "" {
		if w.Start, err = climate.ParseDate(start); err != nil {
			return dashboard.QueryParameters{}, err
		}
	}
	if end != "" {
		if w.End, err = climate.ParseDate(end); err != nil {
			return dashboard.QueryParameters{}, err
		}
	}
	if err := w.Validate(); err != nil {
		return dashboard.QueryParameters{}, err
	}

	var selected []season.Season
	if seasons != "" {
		if selected, err = season.ParseList(strings.Split(seasons, ",")); err != nil {
			return dashboard.QueryParameters{}, err
		}
	}

	g, err := climate.ParseGranularity(granularity)
	if err != nil {
		return dashboard.QueryParameters{}, err
	}

	return dashboard.NewQuery(w, selected, g, comparison), nil
}
