package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleYAML = `
data:
  backend: sqlite
  path: data/climate.db
rest:
  port: 9090
  enable_cors: true
cache:
  ttl: 30s
  max_entries: 200
kpis:
  - name: Average Temperature
    field: avg_temperature
    reduction: mean
    unit: "°C"
    format: "%.1f"
  - name: Total Precipitation
    field: precipitation
    reduction: sum
    unit: mm
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestYAMLProviderLoadConfig(t *testing.T) {
	p := NewYAMLProvider(writeFile(t, sampleYAML))
	c, err := p.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if c.Data.Backend != BackendSQLite || c.Data.Path != "data/climate.db" {
		t.Errorf("Data = %+v", c.Data)
	}
	if c.Data.Table != DefaultTable || c.Data.DateColumn != DefaultDateColumn {
		t.Errorf("Data defaults not applied: %+v", c.Data)
	}
	if c.REST.Port != 9090 || c.REST.ListenAddr != DefaultListenAddr || !c.REST.EnableCORS {
		t.Errorf("REST = %+v", c.REST)
	}
	if c.Cache.CacheTTL() != 30*time.Second {
		t.Errorf("CacheTTL = %v, expected 30s", c.Cache.CacheTTL())
	}
	if c.Cache.MaxEntries != 200 {
		t.Errorf("MaxEntries = %d, expected 200", c.Cache.MaxEntries)
	}
	if len(c.KPIs) != 2 || c.KPIs[0].Unit != "°C" || c.KPIs[1].Reduction != "sum" {
		t.Errorf("KPIs = %+v", c.KPIs)
	}

	kpis, err := p.GetKPIs()
	if err != nil || len(kpis) != 2 {
		t.Errorf("GetKPIs = %v, %v", kpis, err)
	}
}

func TestYAMLProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{
			name:    "csv backend needs a path",
			content: "data:\n  backend: csv\n",
			errPart: "data.path",
		},
		{
			name:    "timescaledb needs a connection string",
			content: "data:\n  backend: timescaledb\n",
			errPart: "connection_string",
		},
		{
			name:    "unknown backend",
			content: "data:\n  backend: parquet\n  path: x\n",
			errPart: "unsupported data backend",
		},
		{
			name:    "bad ttl",
			content: "data:\n  path: x.csv\ncache:\n  ttl: soon\n",
			errPart: "cache.ttl",
		},
		{
			name:    "negative cache size",
			content: "data:\n  path: x.csv\ncache:\n  max_entries: -1\n",
			errPart: "cache.max_entries",
		},
		{
			name:    "unknown key",
			content: "data:\n  path: x.csv\n  colour: blue\n",
			errPart: "colour",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYAMLProvider(writeFile(t, tt.content)).LoadConfig()
			if err == nil || !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("LoadConfig error = %v, expected mention of %q", err, tt.errPart)
			}
		})
	}
}

func TestCacheDisabled(t *testing.T) {
	c := CacheData{Disabled: true, TTL: "1m"}
	if c.CacheTTL() != 0 {
		t.Errorf("CacheTTL = %v, expected 0 when disabled", c.CacheTTL())
	}
}

func TestSQLiteProviderRoundTrip(t *testing.T) {
	yc, err := NewYAMLProvider(writeFile(t, sampleYAML)).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	p, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
	if err != nil {
		t.Fatalf("NewSQLiteProvider returned error: %v", err)
	}
	defer p.Close()

	if err := p.SaveConfig(yc); err != nil {
		t.Fatalf("SaveConfig returned error: %v", err)
	}

	c, err := p.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if c.Data != yc.Data || c.REST != yc.REST || c.Cache != yc.Cache {
		t.Errorf("loaded %+v, expected %+v", c, yc)
	}
	if len(c.KPIs) != 2 || c.KPIs[0] != yc.KPIs[0] || c.KPIs[1] != yc.KPIs[1] {
		t.Errorf("KPIs = %+v, expected %+v", c.KPIs, yc.KPIs)
	}
	if p.IsReadOnly() {
		t.Error("SQLite provider reports read-only")
	}
}
