package restserver

// RangeResponse describes the loaded dataset and the accepted filter values
type RangeResponse struct {
	Start         string   `json:"start"`
	End           string   `json:"end"`
	Days          int      `json:"days"`
	Fields        []string `json:"fields"`
	Seasons       []string `json:"seasons"`
	Granularities []string `json:"granularities"`
}

// DefinitionResponse is one entry of the KPI registry
type DefinitionResponse struct {
	Name      string `json:"name"`
	Field     string `json:"field"`
	Reduction string `json:"reduction"`
	Unit      string `json:"unit,omitempty"`
	Format    string `json:"format"`
	Help      string `json:"help,omitempty"`
}

// QueryResponse echoes the effective query after defaults were applied
type QueryResponse struct {
	Start         string   `json:"start"`
	End           string   `json:"end"`
	Seasons       []string `json:"seasons"`
	Granularity   string   `json:"granularity"`
	Comparison    bool     `json:"comparison"`
	BaselineStart string   `json:"baseline_start,omitempty"`
	BaselineEnd   string   `json:"baseline_end,omitempty"`
}

// KPIResponse is one KPI comparison. Numeric values are null when absent.
type KPIResponse struct {
	Name            string   `json:"name"`
	Field           string   `json:"field"`
	Unit            string   `json:"unit,omitempty"`
	Help            string   `json:"help,omitempty"`
	Current         *float64 `json:"current"`
	Baseline        *float64 `json:"baseline"`
	Delta           *float64 `json:"delta"`
	CurrentDisplay  string   `json:"current_display"`
	BaselineDisplay string   `json:"baseline_display"`
	DeltaDisplay    string   `json:"delta_display"`
	Error           string   `json:"error,omitempty"`
}

// KPIsResponse is the body of /api/kpis
type KPIsResponse struct {
	Query        QueryResponse `json:"query"`
	CurrentDays  int           `json:"current_days"`
	BaselineDays int           `json:"baseline_days"`
	KPIs         []KPIResponse `json:"kpis"`
}

// GroupResponse is one drill-down group
type GroupResponse struct {
	Key     string              `json:"key"`
	Count   int                 `json:"count"`
	Values  map[string]*float64 `json:"values"`
	Display map[string]string   `json:"display"`
}

// GroupsResponse is the body of /api/groups
type GroupsResponse struct {
	Query  QueryResponse   `json:"query"`
	Groups []GroupResponse `json:"groups"`
}
