package restserver

import (
	"net/http"
	"strconv"

	"github.com/chrissnell/climatedash/internal/dashboard"
	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the server's Prometheus collectors
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers request metrics and the engine's cache counters with reg
func NewMetrics(reg prometheus.Registerer, engine *dashboard.Engine) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climatedash",
			Name:      "http_requests_total",
			Help:      "HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "climatedash",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	cacheHits := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "climatedash",
		Name:      "query_cache_hits_total",
		Help:      "Queries answered from the result cache.",
	}, func() float64 {
		hits, _ := engine.CacheStats()
		return float64(hits)
	})
	cacheMisses := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "climatedash",
		Name:      "query_cache_misses_total",
		Help:      "Queries that had to be computed.",
	}, func() float64 {
		_, misses := engine.CacheStats()
		return float64(misses)
	})

	for _, c := range []prometheus.Collector{
		m.requests,
		m.duration,
		cacheHits,
		cacheMisses,
		collectors.NewGoCollector(),
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Middleware records the status and latency of each request by route template
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		route := "unmatched"
		if cur := mux.CurrentRoute(req); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		snoop := httpsnoop.CaptureMetrics(next, w, req)

		m.requests.WithLabelValues(route, strconv.Itoa(snoop.Code)).Inc()
		m.duration.WithLabelValues(route).Observe(snoop.Duration.Seconds())
	})
}
