package detections

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/carryon/internal/appcontext"
	"github.com/agentstation/carryon/internal/cmd/filter"
	"github.com/agentstation/carryon/internal/cmd/output"
	"github.com/agentstation/carryon/pkg/catalog"
)

// NewResultsCommand creates the results command.
func NewResultsCommand(app appcontext.Interface) *cobra.Command {
	var (
		label         string
		packing       string
		minConfidence float64
		weighted      bool
	)

	cmd := &cobra.Command{
		Use:     "results <batch-id>",
		GroupID: "core",
		Short:   "List the stored detection records of a batch",
		Long: `Results lists the detection records stored for a batch.

The --label pattern matches the raw label or the resolved name. Globs
such as "lap*" and regular expressions such as "^knife|scissors$" are
both accepted, case-insensitively.`,
		Example: `  carryon results img-1
  carryon results img-1 -o wide
  carryon results img-1 --packing none
  carryon results img-1 --label 'power*' --weighted`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filter.New(label, packing, minConfidence, weighted)
			if err != nil {
				return err
			}

			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}

			records, err := client.Results(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeRecords(cmd, app, f.Apply(records))
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "Keep records whose label or resolved name matches a glob or regex")
	cmd.Flags().StringVar(&packing, "packing", "", "Keep records of one packing class (none, carry_on, checked, both)")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "Keep records with at least this detector confidence")
	cmd.Flags().BoolVar(&weighted, "weighted", false, "Keep only records with a weight estimate")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <batch-id> <id>...",
		GroupID: "core",
		Short:   "Delete detection records and list what remains",
		Long: `Delete removes the given detection records and prints the records that
remain in the batch. Ids that do not exist are ignored.`,
		Example: `  carryon delete img-1 3 4`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}

			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}

			remaining, err := client.DeleteDetections(cmd.Context(), args[0], ids)
			if err != nil {
				return err
			}
			return writeRecords(cmd, app, remaining)
		},
	}
}

func writeRecords(cmd *cobra.Command, app appcontext.Interface, records []catalog.DetectionRecord) error {
	if records == nil {
		records = []catalog.DetectionRecord{}
	}
	format := output.Format(app.OutputFormat())
	return output.Write(cmd.OutOrStdout(), format, records, func() output.Data {
		return output.RecordsToTableData(records, format == output.FormatWide)
	})
}
