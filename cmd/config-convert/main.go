package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"

	"github.com/chrissnell/climatedash/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file (required)")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite database file (required)")
		force      = flag.Bool("force", false, "Overwrite existing SQLite database")
		dryRun     = flag.Bool("dry-run", false, "Show what would be done without executing")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Check if SQLite file already exists
	if _, err := os.Stat(*sqliteFile); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: SQLite file already exists: %s\n", *sqliteFile)
		fmt.Fprintf(os.Stderr, "Use -force to overwrite or choose a different filename\n")
		os.Exit(1)
	}

	fmt.Printf("Converting YAML configuration to SQLite...\n")
	fmt.Printf("  Source: %s\n", *yamlFile)
	fmt.Printf("  Target: %s\n", *sqliteFile)

	configData, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML configuration: %v\n", err)
		os.Exit(1)
	}
	printConfigSummary(configData)

	if *dryRun {
		fmt.Println("DRY RUN complete - no database created")
		return
	}

	// Remove existing SQLite file if force is specified
	if *force {
		if err := os.Remove(*sqliteFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error removing existing SQLite file: %v\n", err)
			os.Exit(1)
		}
	}

	if err := convert(*sqliteFile, configData); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Conversion completed successfully!\n")
	fmt.Printf("You can now use the SQLite backend with: -config-backend sqlite -config %s\n", *sqliteFile)
}

// convert stores c in a new SQLite database and reads it back to make sure
// nothing was lost on the way
func convert(path string, c *config.ConfigData) error {
	provider, err := config.NewSQLiteProvider(path)
	if err != nil {
		return fmt.Errorf("error creating SQLite database: %w", err)
	}
	defer provider.Close()

	if err := provider.SaveConfig(c); err != nil {
		return fmt.Errorf("error loading configuration into SQLite: %w", err)
	}

	stored, err := provider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error reading back SQLite configuration: %w", err)
	}
	if !reflect.DeepEqual(normalize(stored), normalize(c)) {
		return fmt.Errorf("SQLite configuration differs from YAML after conversion")
	}
	fmt.Println("✓ SQLite configuration matches YAML")
	return nil
}

// normalize treats a nil and an empty KPI list as equal
func normalize(c *config.ConfigData) config.ConfigData {
	out := *c
	if len(out.KPIs) == 0 {
		out.KPIs = nil
	}
	return out
}

func printConfigSummary(c *config.ConfigData) {
	fmt.Println("\nConfiguration Summary:")
	fmt.Printf("  Data: %s", c.Data.Backend)
	if c.Data.Path != "" {
		fmt.Printf(" (%s)", c.Data.Path)
	}
	fmt.Printf(", table %s, date column %s\n", c.Data.Table, c.Data.DateColumn)
	fmt.Printf("  REST: %s:%d", c.REST.ListenAddr, c.REST.Port)
	if c.REST.Cert != "" {
		fmt.Print(" (TLS)")
	}
	fmt.Println()
	if c.Cache.Disabled {
		fmt.Println("  Cache: disabled")
	} else {
		fmt.Printf("  Cache: %s\n", c.Cache.TTL)
	}
	if len(c.KPIs) == 0 {
		fmt.Println("  KPIs: built-in defaults")
		return
	}
	fmt.Printf("  KPIs: %d\n", len(c.KPIs))
	for _, k := range c.KPIs {
		fmt.Printf("    - %s: %s(%s)\n", k.Name, k.Reduction, k.Field)
	}
}
