package config

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS settings (
	section TEXT NOT NULL,
	name    TEXT NOT NULL,
	value   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (section, name)
);
CREATE TABLE IF NOT EXISTS kpi_definitions (
	position  INTEGER PRIMARY KEY,
	name      TEXT NOT NULL UNIQUE,
	field     TEXT NOT NULL,
	reduction TEXT NOT NULL,
	unit      TEXT NOT NULL DEFAULT '',
	format    TEXT NOT NULL DEFAULT '',
	help      TEXT NOT NULL DEFAULT ''
);
`

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create config schema: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	settings, err := s.settings()
	if err != nil {
		return nil, err
	}

	config := &ConfigData{
		Data: DataData{
			Backend:          settings["data"]["backend"],
			Path:             settings["data"]["path"],
			ConnectionString: settings["data"]["connection_string"],
			Table:            settings["data"]["table"],
			DateColumn:       settings["data"]["date_column"],
		},
		REST: RESTServerData{
			Cert:       settings["rest"]["cert"],
			Key:        settings["rest"]["key"],
			ListenAddr: settings["rest"]["listen_addr"],
			EnableCORS: settings["rest"]["enable_cors"] == "true",
		},
		Cache: CacheData{
			Disabled: settings["cache"]["disabled"] == "true",
			TTL:      settings["cache"]["ttl"],
		},
	}

	if p := settings["rest"]["port"]; p != "" {
		config.REST.Port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid rest.port %q: %w", p, err)
		}
	}
	if n := settings["cache"]["max_entries"]; n != "" {
		config.Cache.MaxEntries, err = strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("invalid cache.max_entries %q: %w", n, err)
		}
	}

	config.KPIs, err = s.GetKPIs()
	if err != nil {
		return nil, err
	}

	if err := ApplyDefaults(config); err != nil {
		return nil, err
	}
	return config, nil
}

func (s *SQLiteProvider) settings() (map[string]map[string]string, error) {
	rows, err := s.db.Query(`SELECT section, name, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	out := map[string]map[string]string{
		"data":  {},
		"rest":  {},
		"cache": {},
	}
	for rows.Next() {
		var section, key, value string
		if err := rows.Scan(&section, &key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		if out[section] == nil {
			out[section] = map[string]string{}
		}
		out[section][key] = value
	}
	return out, rows.Err()
}

// GetDataConfig returns the data source configuration
func (s *SQLiteProvider) GetDataConfig() (*DataData, error) {
	c, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &c.Data, nil
}

// GetRESTConfig returns the REST server configuration
func (s *SQLiteProvider) GetRESTConfig() (*RESTServerData, error) {
	c, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &c.REST, nil
}

// GetKPIs returns the KPI registry in position order
func (s *SQLiteProvider) GetKPIs() ([]KPIData, error) {
	rows, err := s.db.Query(`
		SELECT name, field, reduction, unit, format, help
		FROM kpi_definitions
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query KPI definitions: %w", err)
	}
	defer rows.Close()

	var kpis []KPIData
	for rows.Next() {
		var k KPIData
		if err := rows.Scan(&k.Name, &k.Field, &k.Reduction, &k.Unit, &k.Format, &k.Help); err != nil {
			return nil, fmt.Errorf("failed to scan KPI definition: %w", err)
		}
		kpis = append(kpis, k)
	}
	return kpis, rows.Err()
}

// SaveConfig replaces the stored configuration with c
func (s *SQLiteProvider) SaveConfig(c *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM settings`); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM kpi_definitions`); err != nil {
		return fmt.Errorf("failed to clear KPI definitions: %w", err)
	}

	settings := []struct{ section, key, value string }{
		{"data", "backend", c.Data.Backend},
		{"data", "path", c.Data.Path},
		{"data", "connection_string", c.Data.ConnectionString},
		{"data", "table", c.Data.Table},
		{"data", "date_column", c.Data.DateColumn},
		{"rest", "cert", c.REST.Cert},
		{"rest", "key", c.REST.Key},
		{"rest", "listen_addr", c.REST.ListenAddr},
		{"rest", "enable_cors", strconv.FormatBool(c.REST.EnableCORS)},
		{"cache", "disabled", strconv.FormatBool(c.Cache.Disabled)},
		{"cache", "ttl", c.Cache.TTL},
	}
	if c.REST.Port != 0 {
		settings = append(settings, struct{ section, key, value string }{"rest", "port", strconv.Itoa(c.REST.Port)})
	}
	if c.Cache.MaxEntries != 0 {
		settings = append(settings, struct{ section, key, value string }{"cache", "max_entries", strconv.Itoa(c.Cache.MaxEntries)})
	}

	for _, st := range settings {
		if _, err := tx.Exec(`INSERT INTO settings (section, name, value) VALUES (?, ?, ?)`, st.section, st.key, st.value); err != nil {
			return fmt.Errorf("failed to store setting %s.%s: %w", st.section, st.key, err)
		}
	}

	for i, k := range c.KPIs {
		_, err := tx.Exec(`
			INSERT INTO kpi_definitions (position, name, field, reduction, unit, format, help)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, i, k.Name, k.Field, k.Reduction, k.Unit, k.Format, k.Help)
		if err != nil {
			return fmt.Errorf("failed to store KPI definition %q: %w", k.Name, err)
		}
	}

	return tx.Commit()
}

// IsReadOnly returns false since SQLite supports writes
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
