// Package restserver serves the climate dashboard's HTTP API.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/climatedash/internal/dashboard"
	"github.com/chrissnell/climatedash/internal/log"
	"github.com/chrissnell/climatedash/pkg/config"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	engine     *dashboard.Engine
	registry   *prometheus.Registry
	metrics    *Metrics
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, engine *dashboard.Engine, rc config.RESTServerData, logger *zap.SugaredLogger) (*Controller, error) {
	if engine == nil {
		return nil, fmt.Errorf("REST server requires a dashboard engine")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Infof("rest.listen_addr not provided; defaulting to %s (all interfaces)", config.DefaultListenAddr)
		rc.ListenAddr = config.DefaultListenAddr
	}

	// Set default HTTP port if not specified
	if rc.Port == 0 {
		logger.Infof("rest.port not provided; defaulting to %d", config.DefaultPort)
		rc.Port = config.DefaultPort
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		engine:     engine,
		registry:   prometheus.NewRegistry(),
		logger:     logger,
	}

	var err error
	ctrl.metrics, err = NewMetrics(ctrl.registry, engine)
	if err != nil {
		return nil, fmt.Errorf("error registering metrics: %w", err)
	}

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.wrap(ctrl.setupRouter())
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// Handler returns the fully wrapped HTTP handler
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// StartController starts the REST server and stops it when the context ends
func (c *Controller) StartController() error {
	log.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		var err error
		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			err = c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key)
		} else {
			err = c.Server.ListenAndServe()
		}
		if err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := c.Server.Shutdown(ctx); err != nil {
			log.Errorf("REST server shutdown error: %v", err)
		}
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.metrics.Middleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/range", c.handlers.GetRange).Methods(http.MethodGet)
	api.HandleFunc("/kpis/definitions", c.handlers.GetDefinitions).Methods(http.MethodGet)
	api.HandleFunc("/kpis", c.handlers.GetKPIs).Methods(http.MethodGet)
	api.HandleFunc("/groups", c.handlers.GetGroups).Methods(http.MethodGet)
	api.HandleFunc("/export.xlsx", c.handlers.ExportWorkbook).Methods(http.MethodGet)

	router.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(c.handlers.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(c.handlers.MethodNotAllowed)

	return router
}

// wrap applies the middleware shared by every route: panic recovery,
// compression, optional CORS and request logging, outermost last.
func (c *Controller) wrap(h http.Handler) http.Handler {
	stdLogger := zap.NewStdLog(c.logger.Desugar())

	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(stdLogger),
		handlers.PrintRecoveryStack(true),
	)(h)
	h = handlers.CompressHandler(h)

	if c.restConfig.EnableCORS {
		h = handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Accept", "Content-Type", log.RequestIDHeader}),
		)(h)
	}

	return log.HTTPMiddleware(c.logger)(h)
}
