package restserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chrissnell/climatedash/internal/climate"
	"github.com/chrissnell/climatedash/internal/dashboard"
	"github.com/chrissnell/climatedash/internal/kpi"
	"github.com/chrissnell/climatedash/pkg/config"
	"github.com/chrissnell/climatedash/pkg/responseformat"
	"github.com/xuri/excelize/v2"
)

var testDefs = []kpi.Definition{
	{Name: "Average Temperature", Field: "avg_temperature", Reduction: kpi.Mean, Unit: "°C"},
	{Name: "Total Precipitation", Field: "precipitation", Reduction: kpi.Sum, Unit: "mm", Format: "%.0f"},
}

// newTestController serves 2016-01-01..2020-12-31 with the year offset from
// 2000 as the daily temperature and 1mm of rain every day
func newTestController(t *testing.T) (*Controller, *dashboard.Engine) {
	t.Helper()

	var records []climate.Record
	for d := climate.Date(2016, 1, 1); d.Year() < 2021; d = d.AddDate(0, 0, 1) {
		records = append(records, climate.Record{
			Date: d,
			Values: map[string]float64{
				"avg_temperature": float64(d.Year() - 2000),
				"precipitation":   1,
			},
		})
	}
	table, err := climate.NewTable([]string{"avg_temperature", "precipitation"}, records)
	if err != nil {
		t.Fatalf("NewTable returned error: %v", err)
	}

	engine, err := dashboard.NewEngine(table, testDefs, dashboard.NewCache(time.Minute, 0), nil)
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ctrl, err := NewController(ctx, &sync.WaitGroup{}, engine, config.RESTServerData{EnableCORS: true}, nil)
	if err != nil {
		t.Fatalf("NewController returned error: %v", err)
	}
	return ctrl, engine
}

func get(t *testing.T, ctrl *Controller, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	ctrl.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestNewControllerDefaults(t *testing.T) {
	ctrl, _ := newTestController(t)
	if ctrl.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("Server.Addr = %q, expected 0.0.0.0:8080", ctrl.Server.Addr)
	}

	if _, err := NewController(context.Background(), &sync.WaitGroup{}, nil, config.RESTServerData{}, nil); err == nil {
		t.Error("NewController accepted a nil engine")
	}
}

func TestGetRange(t *testing.T) {
	ctrl, _ := newTestController(t)

	rec := get(t, ctrl, "/api/range")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body RangeResponse
	decode(t, rec, &body)
	if body.Start != "2016-01-01" || body.End != "2020-12-31" || body.Days != 1827 {
		t.Errorf("range = %+v", body)
	}
	if len(body.Seasons) != 4 || body.Seasons[0] != "Winter" {
		t.Errorf("seasons = %v", body.Seasons)
	}
	if len(body.Granularities) != 4 || body.Granularities[1] != "Monthly" {
		t.Errorf("granularities = %v", body.Granularities)
	}
}

func TestGetDefinitions(t *testing.T) {
	ctrl, _ := newTestController(t)

	var body []DefinitionResponse
	decode(t, get(t, ctrl, "/api/kpis/definitions"), &body)
	if len(body) != 2 {
		t.Fatalf("definitions = %+v", body)
	}
	if body[0].Reduction != "mean" || body[0].Format != kpi.DefaultFormat {
		t.Errorf("first definition = %+v", body[0])
	}
}

func TestGetKPIs(t *testing.T) {
	ctrl, _ := newTestController(t)

	rec := get(t, ctrl, "/api/kpis?start=2020-01-01&end=2020-12-31")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body KPIsResponse
	decode(t, rec, &body)

	if body.Query.BaselineStart != "2018-01-01" || body.Query.BaselineEnd != "2018-12-31" {
		t.Errorf("baseline window = %s..%s", body.Query.BaselineStart, body.Query.BaselineEnd)
	}
	if body.CurrentDays != 366 || body.BaselineDays != 365 {
		t.Errorf("days = %d/%d, expected 366/365", body.CurrentDays, body.BaselineDays)
	}

	temp := body.KPIs[0]
	if temp.Current == nil || *temp.Current != 20 || temp.Baseline == nil || *temp.Baseline != 18 {
		t.Errorf("temperature = %+v", temp)
	}
	if temp.DeltaDisplay != "+2.0°C" {
		t.Errorf("temperature delta display = %q, expected +2.0°C", temp.DeltaDisplay)
	}
	rain := body.KPIs[1]
	if rain.CurrentDisplay != "366 mm" || rain.DeltaDisplay != "+1 mm" {
		t.Errorf("precipitation = %+v", rain)
	}
}

func TestGetKPIsComparisonOff(t *testing.T) {
	ctrl, _ := newTestController(t)

	var body KPIsResponse
	decode(t, get(t, ctrl, "/api/kpis?start=2020-01-01&end=2020-12-31&comparison=off"), &body)

	if body.Query.Comparison || body.Query.BaselineStart != "" {
		t.Errorf("query = %+v, expected no baseline", body.Query)
	}
	temp := body.KPIs[0]
	if temp.Baseline != nil || temp.Delta != nil || temp.BaselineDisplay != kpi.NotAvailable {
		t.Errorf("temperature = %+v, expected absent baseline", temp)
	}
}

func TestGetGroups(t *testing.T) {
	ctrl, _ := newTestController(t)

	rec := get(t, ctrl, "/api/groups?start=2020-01-01&end=2020-12-31&granularity=seasonal&season=winter")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body GroupsResponse
	decode(t, rec, &body)
	if len(body.Groups) != 1 {
		t.Fatalf("groups = %+v", body.Groups)
	}
	g := body.Groups[0]
	if g.Key != "2020 Winter" || g.Count != 91 {
		t.Errorf("group = %s with %d days, expected 2020 Winter with 91", g.Key, g.Count)
	}
	if v := g.Values["Total Precipitation"]; v == nil || *v != 91 {
		t.Errorf("winter precipitation = %v", v)
	}
	if g.Display["Average Temperature"] != "20.0°C" {
		t.Errorf("display = %v", g.Display)
	}
}

func TestBadParameters(t *testing.T) {
	ctrl, _ := newTestController(t)

	tests := []struct {
		name   string
		target string
	}{
		{"bad date", "/api/kpis?start=2020-13-01"},
		{"start after end", "/api/kpis?start=2020-06-01&end=2020-01-01"},
		{"unknown season", "/api/kpis?season=monsoon"},
		{"unknown granularity", "/api/groups?granularity=weekly"},
		{"bad comparison", "/api/kpis?comparison=maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, ctrl, tt.target)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, expected 400", rec.Code)
			}
			var body responseformat.ErrorBody
			decode(t, rec, &body)
			if body.Status != http.StatusBadRequest || body.Error == "" {
				t.Errorf("error body = %+v", body)
			}
		})
	}
}

func TestMsgPackResponse(t *testing.T) {
	ctrl, _ := newTestController(t)

	rec := get(t, ctrl, "/api/kpis?format=msgpack")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != responseformat.ContentTypeMsgPack {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestExportWorkbook(t *testing.T) {
	ctrl, _ := newTestController(t)

	rec := get(t, ctrl, "/api/export.xlsx?start=2020-01-01&end=2020-12-31&granularity=annual")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "climate_2020-01-01_2020-12-31.xlsx") {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("failed to open exported workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Groups", "A2")
	if err != nil || got != "2020" {
		t.Errorf("Groups!A2 = %q (%v), expected 2020", got, err)
	}
}

func TestCacheAndMetrics(t *testing.T) {
	ctrl, engine := newTestController(t)

	for i := 0; i < 2; i++ {
		if rec := get(t, ctrl, "/api/kpis?season=Summer&season=Winter"); rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	// same selection in a different order
	if rec := get(t, ctrl, "/api/kpis?season=winter,summer"); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	hits, misses := engine.CacheStats()
	if hits != 2 || misses != 1 {
		t.Errorf("cache hits/misses = %d/%d, expected 2/1", hits, misses)
	}

	rec := get(t, ctrl, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	out := rec.Body.String()
	for _, want := range []string{
		`climatedash_http_requests_total{route="/api/kpis",status="200"} 3`,
		"climatedash_query_cache_hits_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNotFound(t *testing.T) {
	ctrl, _ := newTestController(t)

	rec := get(t, ctrl, "/api/nothing")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != responseformat.ContentTypeJSON {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestCORSHeaders(t *testing.T) {
	ctrl, _ := newTestController(t)

	req := httptest.NewRequest(http.MethodGet, "/api/range", nil)
	req.Header.Set("Origin", "https://example.org")
	rec := httptest.NewRecorder()
	ctrl.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, expected *", got)
	}
}
