// Package constants provides shared constants used throughout the carryon codebase.
// This includes matching thresholds, refresh intervals, timeouts and file permissions
// that should be consistent across the application.
package constants

import "time"

// Matching thresholds, all on the 0..100 similarity scale.
const (
	// SuggestCutoff is the minimum score for autocomplete suggestions and best-match lookups.
	SuggestCutoff = 30.0

	// AcceptThreshold is the minimum score for reusing a catalog entry during reconciliation.
	// Stricter than SuggestCutoff because the decision is persisted.
	AcceptThreshold = 90.0

	// LabelThreshold is the minimum score for mapping an unknown detector label onto a catalog name.
	LabelThreshold = 80.0

	// DefaultSuggestLimit is the number of autocomplete suggestions returned by default.
	DefaultSuggestLimit = 5
)

// Timing constants
const (
	// DefaultIndexRefreshInterval is how long a name index snapshot stays fresh.
	DefaultIndexRefreshInterval = 1 * time.Hour

	// DefaultOracleTimeout bounds a single oracle call.
	DefaultOracleTimeout = 60 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// ShutdownTimeout bounds graceful shutdown after a failed command.
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limits and defaults
const (
	// MaxNameLength is the maximum accepted length of an item name or raw label.
	MaxNameLength = 255

	// DefaultGeminiModel is the Gemini model used when none is configured.
	DefaultGeminiModel = "gemini-2.5-flash"

	// DefaultDatabasePath is the SQLite database used when none is configured.
	DefaultDatabasePath = "carryon.db"
)
