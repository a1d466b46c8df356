package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// yamlConfig mirrors ConfigData with YAML tags
type yamlConfig struct {
	Data struct {
		Backend          string `yaml:"backend"`
		Path             string `yaml:"path,omitempty"`
		ConnectionString string `yaml:"connection_string,omitempty"`
		Table            string `yaml:"table,omitempty"`
		DateColumn       string `yaml:"date_column,omitempty"`
	} `yaml:"data"`
	REST struct {
		Cert       string `yaml:"cert,omitempty"`
		Key        string `yaml:"key,omitempty"`
		Port       int    `yaml:"port,omitempty"`
		ListenAddr string `yaml:"listen_addr,omitempty"`
		EnableCORS bool   `yaml:"enable_cors,omitempty"`
	} `yaml:"rest"`
	Cache struct {
		Disabled   bool   `yaml:"disabled,omitempty"`
		TTL        string `yaml:"ttl,omitempty"`
		MaxEntries int    `yaml:"max_entries,omitempty"`
	} `yaml:"cache"`
	KPIs []struct {
		Name      string `yaml:"name"`
		Field     string `yaml:"field"`
		Reduction string `yaml:"reduction"`
		Unit      string `yaml:"unit,omitempty"`
		Format    string `yaml:"format,omitempty"`
		Help      string `yaml:"help,omitempty"`
	} `yaml:"kpis,omitempty"`
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}
	return y.parse(cfgFile)
}

func (y *YAMLProvider) parse(raw []byte) (*ConfigData, error) {
	var yc yamlConfig
	if err := yaml.UnmarshalStrict(raw, &yc); err != nil {
		return nil, err
	}

	config := &ConfigData{
		Data: DataData{
			Backend:          yc.Data.Backend,
			Path:             yc.Data.Path,
			ConnectionString: yc.Data.ConnectionString,
			Table:            yc.Data.Table,
			DateColumn:       yc.Data.DateColumn,
		},
		REST: RESTServerData{
			Cert:       yc.REST.Cert,
			Key:        yc.REST.Key,
			Port:       yc.REST.Port,
			ListenAddr: yc.REST.ListenAddr,
			EnableCORS: yc.REST.EnableCORS,
		},
		Cache: CacheData{
			Disabled:   yc.Cache.Disabled,
			TTL:        yc.Cache.TTL,
			MaxEntries: yc.Cache.MaxEntries,
		},
		KPIs: make([]KPIData, len(yc.KPIs)),
	}

	for i, k := range yc.KPIs {
		config.KPIs[i] = KPIData{
			Name:      k.Name,
			Field:     k.Field,
			Reduction: k.Reduction,
			Unit:      k.Unit,
			Format:    k.Format,
			Help:      k.Help,
		}
	}

	if err := ApplyDefaults(config); err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

func (y *YAMLProvider) loaded() (*ConfigData, error) {
	if y.config == nil {
		return y.LoadConfig()
	}
	return y.config, nil
}

// GetDataConfig returns the data source configuration
func (y *YAMLProvider) GetDataConfig() (*DataData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.Data, nil
}

// GetRESTConfig returns the REST server configuration
func (y *YAMLProvider) GetRESTConfig() (*RESTServerData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.REST, nil
}

// GetKPIs returns the configured KPI registry; empty means use the defaults
func (y *YAMLProvider) GetKPIs() ([]KPIData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return c.KPIs, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}
