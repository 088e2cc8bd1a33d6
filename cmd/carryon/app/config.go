package app

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/carryon/pkg/constants"
	"github.com/agentstation/carryon/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Storage
	DatabasePath  string
	DatabaseDebug bool

	// Oracle
	GeminiAPIKey   string
	GeminiModel    string
	GeminiProject  string
	GeminiLocation string
	OracleTimeout  time.Duration

	// Matching
	IndexRefreshInterval time.Duration
	AcceptThreshold      float64
	SuggestCutoff        float64
	LabelThreshold       float64

	// MetricsFile receives a Prometheus textfile snapshot on shutdown.
	MetricsFile string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (configFile, $CARRYON_CONFIG, or .carryon.yaml in $HOME or .)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	setDefaults(v)
	bindEnvAliases(v)

	if configFile == "" {
		configFile = os.Getenv("CARRYON_CONFIG")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".carryon")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "failed to read config file", err)
		}
	}

	config := &Config{
		ConfigFile: v.ConfigFileUsed(),

		DatabasePath:  v.GetString("database_path"),
		DatabaseDebug: v.GetBool("database_debug"),

		GeminiAPIKey:   v.GetString("gemini_api_key"),
		GeminiModel:    v.GetString("gemini_model"),
		GeminiProject:  v.GetString("gemini_project"),
		GeminiLocation: v.GetString("gemini_location"),
		OracleTimeout:  v.GetDuration("oracle_timeout"),

		IndexRefreshInterval: v.GetDuration("index_refresh_interval"),
		AcceptThreshold:      v.GetFloat64("accept_threshold"),
		SuggestCutoff:        v.GetFloat64("suggest_cutoff"),
		LabelThreshold:       v.GetFloat64("label_threshold"),

		MetricsFile: v.GetString("metrics_file"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// setDefaults registers the default value of every key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database_path", constants.DefaultDatabasePath)
	v.SetDefault("gemini_model", constants.DefaultGeminiModel)
	v.SetDefault("oracle_timeout", constants.DefaultOracleTimeout)
	v.SetDefault("index_refresh_interval", constants.DefaultIndexRefreshInterval)
	v.SetDefault("accept_threshold", constants.AcceptThreshold)
	v.SetDefault("suggest_cutoff", constants.SuggestCutoff)
	v.SetDefault("label_threshold", constants.LabelThreshold)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// bindEnvAliases binds the conventional Google variables to the oracle keys.
// The first variable that is set wins.
func bindEnvAliases(v *viper.Viper) {
	aliases := map[string][]string{
		"gemini_api_key":  {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"gemini_project":  {"GEMINI_PROJECT", "GOOGLE_CLOUD_PROJECT"},
		"gemini_location": {"GEMINI_LOCATION", "GOOGLE_CLOUD_LOCATION"},
	}

	for key, envs := range aliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			// Log warning but continue - this isn't critical
			fmt.Fprintf(os.Stderr, "Warning: failed to bind environment variables for %s: %v\n", key, err)
		}
	}
}

// validate checks ranges that would otherwise fail deep inside a command.
func (c *Config) validate() error {
	for name, v := range map[string]float64{
		"accept_threshold": c.AcceptThreshold,
		"suggest_cutoff":   c.SuggestCutoff,
		"label_threshold":  c.LabelThreshold,
	} {
		if v < 0 || v > 100 {
			return errors.NewConfigError("config", fmt.Sprintf("%s must be between 0 and 100, got %g", name, v), nil)
		}
	}
	if c.OracleTimeout < 0 {
		return errors.NewConfigError("config", "oracle_timeout must not be negative", nil)
	}
	if c.IndexRefreshInterval <= 0 {
		return errors.NewConfigError("config", "index_refresh_interval must be positive", nil)
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel, dbPath string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if dbPath != "" {
		c.DatabasePath = dbPath
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		// Load never overrides variables that are already set.
		_ = godotenv.Load(envFile)
	}
}
