package detections

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/carryon/internal/appcontext"
	"github.com/agentstation/carryon/internal/cmd/output"
	"github.com/agentstation/carryon/pkg/catalog"
)

// NewWeightsCommand creates the weights command.
func NewWeightsCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "weights <batch-id>",
		GroupID: "core",
		Short:   "Estimate the weight of each detected item",
		Long: `Weights asks the oracle for a weight estimate of every record in the
batch that has none yet, using the catalog weight reference of the item and
the share of the image its bounding box covers. Records whose catalog entry
has no weight reference are skipped. Existing estimates are kept.`,
		Example: `  carryon weights img-1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}

			estimates, err := client.EstimateWeights(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if estimates == nil {
				estimates = []catalog.WeightEstimate{}
			}
			return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), estimates, func() output.Data {
				return output.EstimatesToTableData(estimates)
			})
		},
	}
}
