package app

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/agentstation/carryon/internal/cmd/output"
	"github.com/agentstation/carryon/pkg/logging"
)

// Execute runs the carryon CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "carryon",
		Short:   "Baggage regulation lookup for detected items",
		Version: a.version,
		Long: `carryon reconciles object detections against a catalog of airline
baggage regulations.

Each detected label is mapped onto a catalog item, matched against the
catalog by name, and stored with its packing verdict (carry-on, checked,
both or none). Items the catalog does not know are looked up through the
Gemini API when an API key is configured.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "catalog",
		Title: "Catalog Commands:",
	})

	// Add global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.carryon.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringP("format", "o", "", "output format: table, wide, json, yaml")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (default \"carryon.db\")")
	rootCmd.PersistentFlags().StringVar(&a.config.MetricsFile, "metrics-file", a.config.MetricsFile, "write Prometheus metrics to this file on exit")

	rootCmd.SetVersionTemplate("carryon {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// These flags are defined as persistent flags in createRootCommand, so errors indicate programming errors
	configFile := mustGetString(cmd, "config")
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")
	dbPath := mustGetString(cmd, "db")
	metricsFile := mustGetString(cmd, "metrics-file")

	parsed, err := output.ParseFormat(format)
	if err != nil {
		return err
	}

	// An explicit config file replaces the one found at startup.
	if configFile != "" && configFile != a.config.ConfigFile {
		config, err := LoadConfig(configFile)
		if err != nil {
			return err
		}
		config.MetricsFile = metricsFile
		a.config = config
	}

	a.config.UpdateFromFlags(verbose, quiet, noColor, string(parsed), logLevel, dbPath)
	if a.config.Format == "" {
		a.config.Format = string(output.DetectFormat(""))
	}

	logger := NewLogger(a.config)
	a.logger = &logger

	ctx := logging.WithLogger(cmd.Context(), a.logger)
	ctx = logging.WithRequestID(ctx, uuid.NewString())
	cmd.SetContext(ctx)

	return nil
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
