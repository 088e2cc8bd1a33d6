// Package app provides the application context and dependency management
// for the carryon CLI. It centralizes configuration, logging and the
// lifecycle of the database and the reconciliation client.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/carryon"
	"github.com/agentstation/carryon/internal/appcontext"
	"github.com/agentstation/carryon/internal/metrics"
	"github.com/agentstation/carryon/internal/oracle/gemini"
	"github.com/agentstation/carryon/internal/store"
	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/oracle"
	"github.com/agentstation/carryon/pkg/repository"
)

// App represents the carryon application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	metrics *metrics.Metrics

	// Lazily opened dependencies
	mu     sync.Mutex
	store  repository.Store
	closer func() error
	client carryon.Client
	oracle oracle.Oracle
}

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	m, err := metrics.New()
	if err != nil {
		return nil, errors.WrapResource("create", "metrics", "", err)
	}
	app.metrics = m

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Metrics returns the metrics collectors.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Store returns the database, opening and migrating it on first use.
func (a *App) Store(ctx context.Context) (repository.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.storeLocked(ctx)
}

func (a *App) storeLocked(ctx context.Context) (repository.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	st, err := store.Open(ctx, store.Config{
		Path:  a.config.DatabasePath,
		Debug: a.config.DatabaseDebug,
	})
	if err != nil {
		return nil, errors.WrapResource("open", "database", a.config.DatabasePath, err)
	}
	a.logger.Debug().Str("path", a.config.DatabasePath).Msg("Opened database")

	a.store = st
	a.closer = st.Close
	return st, nil
}

// Client returns the reconciliation client, creating it on first use.
func (a *App) Client(ctx context.Context) (carryon.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	st, err := a.storeLocked(ctx)
	if err != nil {
		return nil, err
	}

	client, err := carryon.New(st, a.clientOptions(ctx)...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	client.OnEntrySynthesized(func(e catalog.Entry) {
		a.logger.Info().Str("item_name", e.Name).Str("packing", e.Packing().String()).Msg("Added catalog entry from oracle")
	})

	a.client = client
	return client, nil
}

// clientOptions constructs client options from the app configuration.
func (a *App) clientOptions(ctx context.Context) []carryon.Option {
	opts := []carryon.Option{
		carryon.WithRecorder(a.metrics),
		carryon.WithOracleTimeout(a.config.OracleTimeout),
		carryon.WithIndexRefreshInterval(a.config.IndexRefreshInterval),
		carryon.WithAcceptThreshold(a.config.AcceptThreshold),
		carryon.WithSuggestCutoff(a.config.SuggestCutoff),
		carryon.WithLabelThreshold(a.config.LabelThreshold),
	}
	if o := a.oracleLocked(ctx); o != nil {
		opts = append(opts, carryon.WithOracle(o))
	}
	return opts
}

// oracleLocked returns the configured oracle, or nil when none is available.
func (a *App) oracleLocked(ctx context.Context) oracle.Oracle {
	if a.oracle != nil {
		return a.oracle
	}
	if a.config.GeminiAPIKey == "" && a.config.GeminiProject == "" {
		a.logger.Debug().Msg("No Gemini credentials configured, oracle disabled")
		return nil
	}

	client, err := gemini.New(ctx, gemini.Config{
		APIKey:   a.config.GeminiAPIKey,
		Model:    a.config.GeminiModel,
		Project:  a.config.GeminiProject,
		Location: a.config.GeminiLocation,
	})
	if err != nil {
		a.logger.Warn().Err(err).Msg("Gemini oracle unavailable, synthesis and weight estimation disabled")
		return nil
	}
	a.logger.Debug().Str("model", client.Model()).Msg("Gemini oracle ready")

	a.oracle = client
	return client
}

// Shutdown closes the database and writes the metrics textfile if configured.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var firstErr error
	if a.config.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.config.MetricsFile); err != nil {
			a.logger.Error().Err(err).Str("path", a.config.MetricsFile).Msg("Failed to write metrics")
			firstErr = errors.WrapResource("write", "metrics", a.config.MetricsFile, err)
		}
	}

	if a.closer != nil {
		if err := a.closer(); err != nil && firstErr == nil {
			firstErr = errors.WrapResource("close", "database", a.config.DatabasePath, err)
		}
		a.closer = nil
	}
	a.store = nil
	a.client = nil

	return firstErr
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithStore sets a custom storage backend (useful for testing).
func WithStore(s repository.Store) Option {
	return func(a *App) error {
		a.store = s
		return nil
	}
}

// WithOracle sets a custom oracle (useful for testing).
func WithOracle(o oracle.Oracle) Option {
	return func(a *App) error {
		a.oracle = o
		return nil
	}
}
