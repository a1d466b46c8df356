// Package app wires configuration, the data loader, the dashboard engine and
// the REST server together and runs them until shutdown.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/climatedash/internal/controllers/restserver"
	"github.com/chrissnell/climatedash/internal/dashboard"
	"github.com/chrissnell/climatedash/internal/kpi"
	"github.com/chrissnell/climatedash/internal/log"
	"github.com/chrissnell/climatedash/internal/storage"
	"github.com/chrissnell/climatedash/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	engine, err := LoadEngine(ctx, cfg, a.logger)
	if err != nil {
		return err
	}

	rest, err := restserver.NewController(ctx, &wg, engine, cfg.REST, log.Named("rest"))
	if err != nil {
		return fmt.Errorf("error creating REST server: %w", err)
	}
	if err := rest.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}

// LoadEngine reads the configured table and builds a dashboard engine over it
func LoadEngine(ctx context.Context, cfg *config.ConfigData, logger *zap.SugaredLogger) (*dashboard.Engine, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	loader, err := storage.New(ctx, cfg.Data, logger.Named("storage"))
	if err != nil {
		return nil, fmt.Errorf("error opening %s data: %w", cfg.Data.Backend, err)
	}
	defer loader.Close()

	table, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading climate data: %w", err)
	}
	if w, ok := table.Range(); ok {
		logger.Infof("loaded %d days covering %s with %d fields", table.Len(), w, len(table.Fields))
	} else {
		logger.Warn("climate data is empty")
	}

	var cache *dashboard.Cache
	if ttl := cfg.Cache.CacheTTL(); ttl > 0 {
		cache = dashboard.NewCache(ttl, cfg.Cache.MaxEntries)
	}

	engine, err := dashboard.NewEngine(table, Definitions(cfg.KPIs), cache, logger.Named("dashboard"))
	if err != nil {
		return nil, fmt.Errorf("invalid KPI configuration: %w", err)
	}
	return engine, nil
}

// Definitions converts the configured KPI registry, falling back to the
// built-in registry when none is configured
func Definitions(kpis []config.KPIData) []kpi.Definition {
	if len(kpis) == 0 {
		return kpi.DefaultDefinitions()
	}

	defs := make([]kpi.Definition, len(kpis))
	for i, k := range kpis {
		defs[i] = kpi.Definition{
			Name:      k.Name,
			Field:     k.Field,
			Reduction: kpi.Reduction(k.Reduction),
			Unit:      k.Unit,
			Format:    k.Format,
			Help:      k.Help,
		}
	}
	return defs
}
