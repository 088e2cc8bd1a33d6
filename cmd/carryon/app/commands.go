package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/carryon/cmd/carryon/cmd/batch"
	"github.com/agentstation/carryon/cmd/carryon/cmd/catalog"
	"github.com/agentstation/carryon/cmd/carryon/cmd/detections"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(detections.NewReconcileCommand(a))
	rootCmd.AddCommand(detections.NewResultsCommand(a))
	rootCmd.AddCommand(detections.NewDeleteCommand(a))
	rootCmd.AddCommand(detections.NewWeightsCommand(a))
	rootCmd.AddCommand(batch.NewCommand(a))

	// Catalog commands
	rootCmd.AddCommand(catalog.NewSeedCommand(a))
	rootCmd.AddCommand(catalog.NewAutocompleteCommand(a))
	rootCmd.AddCommand(catalog.NewMatchCommand(a))
	rootCmd.AddCommand(catalog.NewShowCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.NewVersionCommand())
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("carryon %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
