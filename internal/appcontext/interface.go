// Package appcontext provides the shared application context interface
// used by all commands. Commands accept this interface rather than the
// concrete App type so they can be tested against an in-memory store.
package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/carryon"
	"github.com/agentstation/carryon/pkg/repository"
)

// Interface defines the application context interface that commands need.
type Interface interface {
	// Client returns the reconciliation client, creating it lazily if needed.
	// The first call opens the database.
	Client(ctx context.Context) (carryon.Client, error)

	// Store returns the storage backend, opening it lazily if needed.
	Store(ctx context.Context) (repository.Store, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
