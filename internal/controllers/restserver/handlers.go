package restserver

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/chrissnell/climatedash/internal/climate"
	"github.com/chrissnell/climatedash/internal/dashboard"
	"github.com/chrissnell/climatedash/internal/kpi"
	"github.com/chrissnell/climatedash/internal/report"
	"github.com/chrissnell/climatedash/pkg/responseformat"
	"github.com/chrissnell/climatedash/pkg/season"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// GetRange handles requests for the dataset's date range and filter vocabulary
func (h *Handlers) GetRange(w http.ResponseWriter, req *http.Request) {
	engine := h.controller.engine
	dataset, ok := engine.Dataset()
	if !ok {
		h.writeError(w, http.StatusServiceUnavailable, "dataset is empty")
		return
	}

	seasons := make([]string, 0, 4)
	for _, s := range season.All() {
		seasons = append(seasons, s.String())
	}
	granularities := make([]string, 0, 4)
	for _, g := range climate.Granularities() {
		granularities = append(granularities, g.String())
	}

	h.write(w, req, RangeResponse{
		Start:         dataset.Start.Format(climate.DateLayout),
		End:           dataset.End.Format(climate.DateLayout),
		Days:          dataset.Days(),
		Fields:        engine.Fields(),
		Seasons:       seasons,
		Granularities: granularities,
	})
}

// GetDefinitions handles requests for the KPI registry
func (h *Handlers) GetDefinitions(w http.ResponseWriter, req *http.Request) {
	defs := h.controller.engine.Definitions()
	out := make([]DefinitionResponse, len(defs))
	for i, d := range defs {
		out[i] = DefinitionResponse{
			Name:      d.Name,
			Field:     d.Field,
			Reduction: string(d.Reduction),
			Unit:      d.Unit,
			Format:    d.Format,
			Help:      d.Help,
		}
	}
	h.write(w, req, out)
}

// GetKPIs handles requests for the KPI comparison of one query
func (h *Handlers) GetKPIs(w http.ResponseWriter, req *http.Request) {
	r, ok := h.run(w, req)
	if !ok {
		return
	}

	out := KPIsResponse{
		Query:        queryResponse(r),
		CurrentDays:  r.Current.Len(),
		BaselineDays: r.Baseline.Len(),
		KPIs:         make([]KPIResponse, len(r.KPIs)),
	}
	for i, res := range r.KPIs {
		out.KPIs[i] = kpiResponse(res)
	}
	h.write(w, req, out)
}

// GetGroups handles requests for the drill-down groups of one query
func (h *Handlers) GetGroups(w http.ResponseWriter, req *http.Request) {
	r, ok := h.run(w, req)
	if !ok {
		return
	}

	engine := h.controller.engine
	defs := engine.Definitions()
	summaries := engine.Summaries(r)

	out := GroupsResponse{
		Query:  queryResponse(r),
		Groups: make([]GroupResponse, len(summaries)),
	}
	for i, s := range summaries {
		g := GroupResponse{
			Key:     s.Key.String(),
			Count:   s.Count,
			Values:  make(map[string]*float64, len(defs)),
			Display: make(map[string]string, len(defs)),
		}
		for _, d := range defs {
			v, ok := s.Values[d.Name]
			if !ok {
				continue
			}
			g.Values[d.Name] = v.Ptr()
			g.Display[d.Name] = d.FormatValue(v)
		}
		out.Groups[i] = g
	}
	h.write(w, req, out)
}

// ExportWorkbook handles requests for an XLSX export of one query
func (h *Handlers) ExportWorkbook(w http.ResponseWriter, req *http.Request) {
	r, ok := h.run(w, req)
	if !ok {
		return
	}

	engine := h.controller.engine
	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, r, engine.Summaries(r), engine.Definitions()); err != nil {
		h.controller.logger.Errorf("error exporting workbook: %v", err)
		h.writeError(w, http.StatusInternalServerError, "error exporting workbook")
		return
	}

	filename := fmt.Sprintf("climate_%s_%s.xlsx",
		r.Query.Window.Start.Format(climate.DateLayout),
		r.Query.Window.End.Format(climate.DateLayout))
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.controller.logger.Warnf("error writing workbook: %v", err)
	}
}

// NotFound answers unknown routes with a JSON error
func (h *Handlers) NotFound(w http.ResponseWriter, req *http.Request) {
	h.writeError(w, http.StatusNotFound, "not found: "+req.URL.Path)
}

// MethodNotAllowed answers known routes called with the wrong method
func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, req *http.Request) {
	h.writeError(w, http.StatusMethodNotAllowed, "method not allowed: "+req.Method)
}

// run parses the request's query and executes it, writing the error
// response itself when that fails
func (h *Handlers) run(w http.ResponseWriter, req *http.Request) (*dashboard.Result, bool) {
	engine := h.controller.engine

	defaults, err := engine.DefaultQuery()
	if err != nil {
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
		return nil, false
	}

	q, err := parseQuery(req, defaults)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	r, err := engine.Run(q)
	if err != nil {
		if isClientError(err) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
		h.controller.logger.Errorf("error running query %s: %v", q.Key(), err)
		h.writeError(w, http.StatusInternalServerError, "error running query")
		return nil, false
	}
	return r, true
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, data any) {
	if err := h.formatter.WriteResponse(w, req, data); err != nil {
		h.controller.logger.Warnf("error encoding response: %v", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	if err := h.formatter.WriteError(w, status, msg); err != nil {
		h.controller.logger.Warnf("error encoding error response: %v", err)
	}
}

func queryResponse(r *dashboard.Result) QueryResponse {
	q := r.Query
	seasons := make([]string, 0, 4)
	for _, s := range q.Seasons() {
		seasons = append(seasons, s.String())
	}

	out := QueryResponse{
		Start:       q.Window.Start.Format(climate.DateLayout),
		End:         q.Window.End.Format(climate.DateLayout),
		Seasons:     seasons,
		Granularity: q.Granularity.String(),
		Comparison:  q.Comparison,
	}
	if r.BaselineWindow != nil {
		out.BaselineStart = r.BaselineWindow.Start.Format(climate.DateLayout)
		out.BaselineEnd = r.BaselineWindow.End.Format(climate.DateLayout)
	}
	return out
}

func kpiResponse(res kpi.Result) KPIResponse {
	d := res.Definition
	out := KPIResponse{
		Name:            d.Name,
		Field:           d.Field,
		Unit:            d.Unit,
		Help:            d.Help,
		Current:         res.Current.Ptr(),
		Baseline:        res.Baseline.Ptr(),
		Delta:           res.Delta.Ptr(),
		CurrentDisplay:  d.FormatValue(res.Current),
		BaselineDisplay: d.FormatValue(res.Baseline),
		DeltaDisplay:    d.FormatDelta(res.Delta),
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}
