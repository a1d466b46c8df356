package dashboard

import (
	"fmt"

	"github.com/chrissnell/climatedash/internal/climate"
	"github.com/chrissnell/climatedash/internal/kpi"
	"go.uber.org/zap"
)

// Engine answers queries against one loaded table. The table is never
// modified, so an Engine may serve concurrent callers.
type Engine struct {
	table  climate.Table
	defs   []kpi.Definition
	cache  *Cache
	logger *zap.SugaredLogger
}

// Result is the outcome of one query
type Result struct {
	Query          QueryParameters
	Current        climate.Table
	BaselineWindow *climate.Window // nil when comparison is off
	Baseline       climate.Table
	KPIs           []kpi.Result
	Groups         climate.Groups
}

// GroupSummary is one drill-down group with every KPI computed over it
type GroupSummary struct {
	Key    climate.Key
	Count  int
	Values map[string]kpi.Value
}

// NewEngine validates the KPI registry and returns an engine over table.
// cache may be nil to disable memoization.
func NewEngine(table climate.Table, defs []kpi.Definition, cache *Cache, logger *zap.SugaredLogger) (*Engine, error) {
	valid, err := kpi.ValidateDefinitions(defs)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	for _, d := range valid {
		if !table.HasField(d.Field) {
			logger.Warnf("KPI %q reads field %q which the dataset does not have", d.Name, d.Field)
		}
	}

	return &Engine{
		table:  table,
		defs:   valid,
		cache:  cache,
		logger: logger,
	}, nil
}

// Definitions returns the validated KPI registry in display order
func (e *Engine) Definitions() []kpi.Definition {
	out := make([]kpi.Definition, len(e.defs))
	copy(out, e.defs)
	return out
}

// Dataset returns the window spanned by the loaded table
func (e *Engine) Dataset() (climate.Window, bool) {
	return e.table.Range()
}

// Fields returns the measurement columns of the loaded table
func (e *Engine) Fields() []string {
	out := make([]string, len(e.table.Fields))
	copy(out, e.table.Fields)
	return out
}

// DefaultQuery returns the query a fresh dashboard opens with
func (e *Engine) DefaultQuery() (QueryParameters, error) {
	w, ok := e.table.Range()
	if !ok {
		return QueryParameters{}, fmt.Errorf("dataset is empty")
	}
	return DefaultQuery(w), nil
}

// Run executes q. Identical parameters always produce identical results.
func (e *Engine) Run(q QueryParameters) (*Result, error) {
	key := q.Key()
	if e.cache != nil {
		if r, ok := e.cache.Get(key); ok {
			e.logger.Debugf("query %s served from cache", key)
			out := *r
			out.Query = q
			return &out, nil
		}
	}

	current, err := climate.Filter(e.table, q.Window, q.seasons)
	if err != nil {
		return nil, err
	}

	groups, err := climate.GroupBy(current, q.Granularity)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Query:   q,
		Current: current,
		Groups:  groups,
	}

	baseline := climate.Table{Fields: e.table.Fields}
	if q.Comparison {
		bw, err := e.resolveBaseline(q.Window)
		if err != nil {
			return nil, err
		}
		result.BaselineWindow = &bw

		if bw.Degenerate() {
			e.logger.Debugf("baseline window %s is degenerate; no baseline for %s", bw, q.Window)
		} else if baseline, err = climate.Filter(e.table, bw, q.seasons); err != nil {
			return nil, err
		}
	}
	result.Baseline = baseline
	result.KPIs = kpi.Evaluate(current, baseline, e.defs)

	for _, r := range result.KPIs {
		if r.Err != nil {
			e.logger.Warnf("KPI evaluation failed: %v", r.Err)
		}
	}

	e.logger.Debugf("query %s: %d current records, %d baseline records, %d groups",
		key, current.Len(), baseline.Len(), len(groups))

	if e.cache != nil {
		e.cache.Set(key, result)
	}

	return result, nil
}

func (e *Engine) resolveBaseline(w climate.Window) (climate.Window, error) {
	floor, ok := e.table.MinDate()
	if !ok {
		floor = w.Start
	}
	return climate.ResolveBaseline(w, floor)
}

// Summaries computes every KPI for each group of r, ordered by key
func (e *Engine) Summaries(r *Result) []GroupSummary {
	keys := r.Groups.Keys()
	out := make([]GroupSummary, 0, len(keys))
	for _, k := range keys {
		g := r.Groups[k]
		out = append(out, GroupSummary{
			Key:    k,
			Count:  g.Len(),
			Values: kpi.Summarize(g, e.defs),
		})
	}
	return out
}

// CacheStats reports result cache hits and misses, zero when caching is off
func (e *Engine) CacheStats() (hits, misses uint64) {
	if e.cache == nil {
		return 0, 0
	}
	return e.cache.Stats()
}
