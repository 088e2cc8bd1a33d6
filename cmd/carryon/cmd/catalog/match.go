package catalog

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/carryon/internal/appcontext"
	"github.com/agentstation/carryon/internal/cmd/output"
	"github.com/agentstation/carryon/pkg/constants"
	"github.com/agentstation/carryon/pkg/errors"
)

// NewAutocompleteCommand creates the autocomplete command.
func NewAutocompleteCommand(app appcontext.Interface) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "autocomplete <query>",
		GroupID: "catalog",
		Short:   "Suggest catalog names for a partial query",
		Example: `  carryon autocomplete lap
  carryon autocomplete "power b" --limit 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}

			names := client.Autocomplete(cmd.Context(), strings.Join(args, " "), limit)
			if names == nil {
				names = []string{}
			}
			return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), names, func() output.Data {
				return output.NamesToTableData(names)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", constants.DefaultSuggestLimit, "maximum number of suggestions")
	return cmd
}

// NewMatchCommand creates the match command.
func NewMatchCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "match <query>",
		GroupID: "catalog",
		Short:   "Find the closest catalog name",
		Example: `  carryon match "lap top"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			m, ok := client.BestMatch(cmd.Context(), query)
			if !ok {
				return errors.NewNotFoundError("catalog match", query)
			}
			return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), m, func() output.Data {
				return output.MatchToTableData(m)
			})
		},
	}
}

// NewShowCommand creates the show command.
func NewShowCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "show <name>",
		GroupID: "catalog",
		Short:   "Show one catalog entry",
		Long: fmt.Sprintf(`Show prints the catalog entry with exactly the given name.

Use "carryon match" first when the exact name is unknown. Names are at most
%d characters.`, constants.MaxNameLength),
		Example: `  carryon show Laptops`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}

			entry, err := client.Entry(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), entry, func() output.Data {
				return output.EntryToTableData(entry)
			})
		},
	}
}
