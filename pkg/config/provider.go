package config

import (
	"fmt"
	"time"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetDataConfig() (*DataData, error)
	GetRESTConfig() (*RESTServerData, error)
	GetKPIs() ([]KPIData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Data  DataData       `json:"data"`
	REST  RESTServerData `json:"rest"`
	Cache CacheData      `json:"cache"`
	KPIs  []KPIData      `json:"kpis,omitempty"`
}

// Data backend types
const (
	BackendCSV         = "csv"
	BackendSQLite      = "sqlite"
	BackendTimescaleDB = "timescaledb"
)

// DataData describes where the cleaned daily table is loaded from
type DataData struct {
	Backend          string `json:"backend"`
	Path             string `json:"path,omitempty"`              // CSV file or SQLite database
	ConnectionString string `json:"connection_string,omitempty"` // TimescaleDB/PostgreSQL
	Table            string `json:"table,omitempty"`
	DateColumn       string `json:"date_column,omitempty"`
}

// RESTServerData holds the HTTP API listener configuration
type RESTServerData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
	EnableCORS bool   `json:"enable_cors,omitempty"`
}

// CacheData controls query result memoization
type CacheData struct {
	Disabled   bool   `json:"disabled,omitempty"`
	TTL        string `json:"ttl,omitempty"`
	MaxEntries int    `json:"max_entries,omitempty"` // 0 selects the engine default
}

// KPIData is one entry of the KPI registry
type KPIData struct {
	Name      string `json:"name"`
	Field     string `json:"field"`
	Reduction string `json:"reduction"`
	Unit      string `json:"unit,omitempty"`
	Format    string `json:"format,omitempty"`
	Help      string `json:"help,omitempty"`
}

// Defaults applied by ApplyDefaults
const (
	DefaultListenAddr = "0.0.0.0"
	DefaultPort       = 8080
	DefaultTable      = "climate_daily"
	DefaultDateColumn = "date"
	DefaultCacheTTL   = 5 * time.Minute
)

// ApplyDefaults fills in omitted settings and checks the data backend
func ApplyDefaults(c *ConfigData) error {
	if c.Data.Backend == "" {
		c.Data.Backend = BackendCSV
	}
	if c.Data.Table == "" {
		c.Data.Table = DefaultTable
	}
	if c.Data.DateColumn == "" {
		c.Data.DateColumn = DefaultDateColumn
	}

	switch c.Data.Backend {
	case BackendCSV, BackendSQLite:
		if c.Data.Path == "" {
			return fmt.Errorf("data.path is required for the %s backend", c.Data.Backend)
		}
	case BackendTimescaleDB:
		if c.Data.ConnectionString == "" {
			return fmt.Errorf("data.connection_string is required for the timescaledb backend")
		}
	default:
		return fmt.Errorf("unsupported data backend: %s. Use 'csv', 'sqlite' or 'timescaledb'", c.Data.Backend)
	}

	if c.REST.ListenAddr == "" {
		c.REST.ListenAddr = DefaultListenAddr
	}
	if c.REST.Port == 0 {
		c.REST.Port = DefaultPort
	}

	if c.Cache.TTL == "" {
		c.Cache.TTL = DefaultCacheTTL.String()
	}
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("invalid cache.ttl %q: %w", c.Cache.TTL, err)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("invalid cache.max_entries %d", c.Cache.MaxEntries)
	}

	return nil
}

// CacheTTL returns the parsed cache TTL, zero when caching is disabled
func (c CacheData) CacheTTL() time.Duration {
	if c.Disabled {
		return 0
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return DefaultCacheTTL
	}
	return d
}
