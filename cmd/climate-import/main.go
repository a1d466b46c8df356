// climate-import cleans the raw daily export into the table climatedash
// serves, writing a CSV file and optionally loading a SQLite database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chrissnell/climatedash/internal/etl"
	"github.com/chrissnell/climatedash/internal/log"
	"github.com/chrissnell/climatedash/internal/storage"
	"github.com/chrissnell/climatedash/pkg/config"
)

func main() {
	in := flag.String("in", "data/raw/climate_raw.csv", "Raw daily export to clean")
	out := flag.String("out", "data/cleaned/climate_cleaned.csv", "Cleaned CSV to write; empty to skip")
	sqlitePath := flag.String("sqlite", "", "SQLite database to load the cleaned table into")
	timescale := flag.String("timescaledb", "", "TimescaleDB/PostgreSQL connection string to load the cleaned table into")
	table := flag.String("table", config.DefaultTable, "Table name inside the target database")
	days := flag.Int("days", etl.DefaultDays, "Number of days to keep; 0 keeps every row")
	skip := flag.Int("skip", 1, "Leading data rows to drop before keeping -days rows")
	columns := flag.String("columns", "", "Comma-separated measurement columns to keep (default: the standard 17)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := etl.DefaultOptions()
	opts.Days = *days
	opts.SkipRows = *skip
	if *columns != "" {
		opts.Columns = strings.Split(*columns, ",")
	}

	if err := run(ctx, *in, *out, *sqlitePath, *timescale, *table, opts); err != nil {
		log.Errorf("import failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, in, out, sqlitePath, timescale, table string, opts etl.Options) error {
	logger := log.Named("import")

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	logger.Infof("cleaning %s", in)
	cleaned, err := etl.Clean(ctx, f, opts, logger)
	if err != nil {
		return err
	}

	if out != "" {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		w, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := storage.WriteCSV(w, cleaned, opts.DateColumn); err != nil {
			w.Close()
			return fmt.Errorf("error writing %s: %w", out, err)
		}
		if err := w.Close(); err != nil {
			return err
		}
		logger.Infof("cleaned data saved to %s", out)
	}

	if sqlitePath != "" {
		db, err := storage.NewSQLite(sqlitePath, table, opts.DateColumn)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Save(ctx, cleaned); err != nil {
			return fmt.Errorf("error loading %s: %w", sqlitePath, err)
		}
		logger.Infof("loaded %d days into %s table %s", cleaned.Len(), sqlitePath, table)
	}

	if timescale != "" {
		db, err := storage.NewTimescaleDB(ctx, timescale, table, opts.DateColumn)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Save(ctx, cleaned); err != nil {
			return fmt.Errorf("error loading TimescaleDB: %w", err)
		}
		logger.Infof("loaded %d days into TimescaleDB table %s", cleaned.Len(), table)
	}

	return nil
}
