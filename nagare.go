// Package nagare is the public API for embedding the nagare drift monitor.
//
// There are two ways to use it. The library entry point scores windows
// against a reference baseline in memory:
//
//	reports, err := nagare.RunMonitor(ctx, reference, windows, nagare.Thresholds{})
//
// The server entry point loads datasets from CSV, persists reports, and
// serves them over HTTP:
//
//	app, err := nagare.New(
//	    nagare.WithVersion(version),
//	    nagare.WithLogger(logger),
//	)
//	if err != nil { ... }
//	if err := app.Run(ctx); err != nil { ... }
//
// The import graph enforces a strict no-cycle rule: nagare (root) imports
// internal/*, but internal/* never imports nagare (root). Public types
// (Dataset, Report, etc.) are standalone structs with no internal imports;
// conversion helpers live in types.go because the root is the only package
// that sees both sides of the boundary.
package nagare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nagare-ml/nagare/internal/config"
	"github.com/nagare-ml/nagare/internal/dataset"
	"github.com/nagare-ml/nagare/internal/model"
	"github.com/nagare-ml/nagare/internal/monitor"
	"github.com/nagare-ml/nagare/internal/server"
	"github.com/nagare-ml/nagare/internal/storage"
	"github.com/nagare-ml/nagare/internal/telemetry"
	"github.com/nagare-ml/nagare/migrations"
)

// ErrMissingReference is returned by RunMonitor when no usable reference
// baseline is supplied.
var ErrMissingReference = monitor.ErrMissingReference

// RunMonitor scores every window against the reference baseline and returns
// one report per window, in input order. It is a pure in-memory entry point:
// no storage, no HTTP, no environment access. Zero-valued thresholds fall
// back to the documented defaults.
func RunMonitor(ctx context.Context, reference Dataset, windows []Dataset, thresholds Thresholds) ([]Report, error) {
	mon := monitor.New(slog.Default(), toInternalThresholds(thresholds))

	internalWindows := make([]*model.Dataset, len(windows))
	for i, w := range windows {
		internalWindows[i] = toInternalDataset(w)
	}

	internalReports, err := mon.Run(ctx, toInternalDataset(reference), internalWindows)
	if err != nil {
		return nil, err
	}

	reports := make([]Report, len(internalReports))
	for i, r := range internalReports {
		reports[i] = toPublicReport(r)
	}
	return reports, nil
}

// App is the nagare server lifecycle. Construct with New(), run with Run().
// App has no public fields — use New() options to configure it.
type App struct {
	cfg          config.Config
	store        storage.ReportStore
	srv          *server.Server
	mon          *monitor.Monitor
	sinks        []ReportSink
	otelShutdown func(context.Context) error
	logger       *slog.Logger
	version      string
}

// New initialises the nagare server. It opens the report store, runs
// migrations when backed by Postgres, wires all subsystems, and returns a
// ready-to-run App. It does NOT start any goroutines or accept HTTP
// connections — call Run().
func New(opts ...Option) (*App, error) {
	o := resolvedOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.port != 0 {
		cfg.Port = o.port
	}
	if o.databaseURL != "" {
		cfg.DatabaseURL = o.databaseURL
	}
	if o.sqlitePath != "" {
		cfg.SQLitePath = o.sqlitePath
	}
	version := o.version
	if version == "" {
		version = "dev"
	}

	logger.Info("nagare starting", "version", version, "port", cfg.Port)

	otelShutdown, err := telemetry.Init(context.Background(), cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	// Open the report store. A database URL selects Postgres; otherwise
	// the embedded SQLite store is used.
	var (
		store     storage.ReportStore
		storeName string
	)
	if cfg.DatabaseURL != "" {
		pg, pgErr := storage.NewPostgres(context.Background(), cfg.DatabaseURL, logger)
		if pgErr != nil {
			_ = otelShutdown(context.Background())
			return nil, fmt.Errorf("storage: %w", pgErr)
		}
		if err := pg.RunMigrations(context.Background(), migrations.FS); err != nil {
			_ = pg.Close()
			_ = otelShutdown(context.Background())
			return nil, fmt.Errorf("migrations: %w", err)
		}
		store, storeName = pg, "postgres"
	} else {
		sq, sqErr := storage.NewSQLite(context.Background(), cfg.SQLitePath, logger)
		if sqErr != nil {
			_ = otelShutdown(context.Background())
			return nil, fmt.Errorf("storage: %w", sqErr)
		}
		store, storeName = sq, "sqlite"
	}

	thresholds := cfg.Thresholds()
	if o.thresholds != nil {
		thresholds = toInternalThresholds(*o.thresholds)
	}

	srv := server.New(server.Config{
		Store:        store,
		Logger:       logger,
		Port:         cfg.Port,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Version:      version,
		StoreName:    storeName,
	})

	return &App{
		cfg:          cfg,
		store:        store,
		srv:          srv,
		mon:          monitor.New(logger, thresholds),
		sinks:        o.sinks,
		otelShutdown: otelShutdown,
		logger:       logger,
		version:      version,
	}, nil
}

// Run processes any configured CSV datasets, then serves the HTTP API until
// the context is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.ReferencePath != "" {
		if err := a.ProcessFromConfig(ctx); err != nil {
			a.logger.Error("dataset processing failed", "error", err)
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	return a.Shutdown(context.Background())
}

// ProcessFromConfig loads the configured reference and window CSV files,
// runs the monitor, and persists one report per window. Reports are also
// delivered to any registered sinks.
func (a *App) ProcessFromConfig(ctx context.Context) error {
	if a.cfg.ReferencePath == "" {
		return fmt.Errorf("nagare: no reference CSV configured")
	}
	if len(a.cfg.WindowPaths) == 0 {
		return fmt.Errorf("nagare: no window CSVs configured")
	}

	loadOpts := dataset.LoadOptions{
		Target:      a.cfg.TargetColumn,
		Prediction:  a.cfg.PredictionColumn,
		Time:        a.cfg.TimeColumn,
		TimeLayout:  a.cfg.TimeLayout,
		Categorical: a.cfg.CategoricalColumns,
	}

	loadOpts.ID = "reference"
	reference, err := dataset.LoadCSVFile(a.cfg.ReferencePath, loadOpts)
	if err != nil {
		return fmt.Errorf("nagare: load reference: %w", err)
	}

	windows := make([]*model.Dataset, len(a.cfg.WindowPaths))
	for i, path := range a.cfg.WindowPaths {
		loadOpts.ID = windowID(path)
		win, loadErr := dataset.LoadCSVFile(path, loadOpts)
		if loadErr != nil {
			return fmt.Errorf("nagare: load window %s: %w", path, loadErr)
		}
		windows[i] = win
	}

	reports, err := a.mon.Run(ctx, reference, windows)
	if err != nil {
		return fmt.Errorf("nagare: monitor: %w", err)
	}

	for _, report := range reports {
		if err := a.store.SaveReport(ctx, report); err != nil {
			return fmt.Errorf("nagare: save report %s: %w", report.WindowID, err)
		}
		for _, sink := range a.sinks {
			if sinkErr := sink.Deliver(ctx, toPublicReport(report)); sinkErr != nil {
				a.logger.Warn("report sink failed", "window_id", report.WindowID, "error", sinkErr)
			}
		}
	}

	a.logger.Info("datasets processed", "windows", len(reports))
	return nil
}

// Shutdown drains the HTTP server, closes the report store, and flushes the
// OTEL providers.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("nagare shutting down")

	httpCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(httpCtx); err != nil {
		a.logger.Error("http shutdown error", "error", err)
	}

	if err := a.store.Close(); err != nil {
		a.logger.Error("store close error", "error", err)
	}

	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.logger.Error("otel shutdown error", "error", err)
		}
	}
	return nil
}

// windowID derives a window identifier from a CSV path: the base name
// without its extension.
func windowID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
