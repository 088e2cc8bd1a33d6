// Package catalog provides the catalog commands: seed, autocomplete, match and show.
package catalog

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/carryon/internal/appcontext"
	"github.com/agentstation/carryon/internal/cmd/output"
	"github.com/agentstation/carryon/internal/seed"
	"github.com/agentstation/carryon/pkg/errors"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "seed [file]",
		GroupID: "catalog",
		Short:   "Load catalog entries into the database",
		Long: `Seed inserts catalog entries with source "seed".

Without a file the built-in starter catalog is loaded. A file must hold a
YAML list of entries with the keys name, name_en, carry_on_allowed,
checked_allowed, notes, notes_en and an optional weight block. Names that
already exist are skipped, so seeding twice is harmless.`,
		Example: `  carryon seed                 # Load the built-in catalog
  carryon seed extra.yaml      # Load entries from a file`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := app.Store(ctx)
			if err != nil {
				return err
			}

			var result seed.Result
			if len(args) == 0 {
				result, err = seed.LoadDefault(ctx, st)
			} else {
				f, openErr := os.Open(args[0])
				if openErr != nil {
					return errors.WrapResource("open", "seed file", args[0], openErr)
				}
				defer f.Close() //nolint:errcheck // read-only
				result, err = seed.Load(ctx, f, st)
			}
			if err != nil {
				return err
			}

			return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), result, func() output.Data {
				return output.SeedResultToTableData(result.Inserted, result.Skipped)
			})
		},
	}
}
