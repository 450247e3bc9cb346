package nagare

import "log/slog"

// Option configures an App.
type Option func(*resolvedOptions)

// resolvedOptions holds all extension points after applying defaults.
// Unexported — callers use the With* functions.
type resolvedOptions struct {
	port        int
	databaseURL string
	sqlitePath  string
	logger      *slog.Logger
	version     string
	thresholds  *Thresholds
	sinks       []ReportSink
}

// WithPort overrides the TCP port from config (NAGARE_PORT env var).
func WithPort(port int) Option {
	return func(o *resolvedOptions) { o.port = port }
}

// WithDatabaseURL overrides the Postgres connection string from config
// (DATABASE_URL env var). A non-empty value selects the Postgres store.
func WithDatabaseURL(url string) Option {
	return func(o *resolvedOptions) { o.databaseURL = url }
}

// WithSQLitePath overrides the SQLite database path from config
// (NAGARE_SQLITE_PATH env var). Ignored when a database URL is set.
func WithSQLitePath(path string) Option {
	return func(o *resolvedOptions) { o.sqlitePath = path }
}

// WithLogger sets the structured logger for the App.
// If not set, the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithVersion sets the version string reported in the health endpoint and logs.
func WithVersion(version string) Option {
	return func(o *resolvedOptions) { o.version = version }
}

// WithThresholds overrides the drift thresholds from config. Zero-valued
// fields still fall back to the documented defaults.
func WithThresholds(t Thresholds) Option {
	return func(o *resolvedOptions) { o.thresholds = &t }
}

// WithReportSink registers an additional destination for generated reports.
// Sinks are invoked in registration order after the report is persisted;
// a sink error is logged but does not fail the run.
func WithReportSink(s ReportSink) Option {
	return func(o *resolvedOptions) { o.sinks = append(o.sinks, s) }
}
