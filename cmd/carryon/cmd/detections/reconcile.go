package detections

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/carryon/internal/appcontext"
	"github.com/agentstation/carryon/internal/cmd/output"
	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/reconcile"
)

// report is the json and yaml view of a reconcile call.
type report struct {
	BatchID  string                    `json:"batch_id" yaml:"batch_id"`
	Summary  string                    `json:"summary" yaml:"summary"`
	Records  []catalog.DetectionRecord `json:"records" yaml:"records"`
	Outcomes []reconcile.Outcome       `json:"outcomes" yaml:"outcomes"`
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(app appcontext.Interface) *cobra.Command {
	var (
		file          string
		width, height int
	)

	cmd := &cobra.Command{
		Use:     "reconcile <batch-id>",
		GroupID: "core",
		Short:   "Resolve detections and store them with their packing verdict",
		Long: `Reconcile reads detector output as a JSON array and stores one record
per resolved item under the batch id.

Each element has a label, a bbox [xMin, yMin, xMax, yMax] in pixels and an
optional confidence. Labels are mapped onto catalog names, matched exactly
or approximately, and looked up through the oracle when the catalog has no
close entry. Items that cannot be resolved are reported and dropped.

Pass --width and --height to record the image size used by "carryon weights".`,
		Example: `  carryon reconcile img-1 -f detections.json
  echo '[{"label":"laptop","bbox":[0,0,300,200]}]' | carryon reconcile img-1
  carryon reconcile img-1 -f detections.json --width 1280 --height 720`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			batchID := args[0]

			detections, err := readDetections(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			client, err := app.Client(ctx)
			if err != nil {
				return err
			}

			if width > 0 || height > 0 {
				if err := client.SaveBatch(ctx, catalog.Batch{ID: batchID, ImageWidth: width, ImageHeight: height}); err != nil {
					return err
				}
			}

			result, err := client.Reconcile(ctx, batchID, detections)
			if err != nil {
				return err
			}

			format := output.Format(app.OutputFormat())
			if format.IsTable() {
				if err := output.Write(cmd.OutOrStdout(), format, nil, func() output.Data {
					return output.OutcomesToTableData(result.Outcomes)
				}); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
				return err
			}

			return output.Write(cmd.OutOrStdout(), format, report{
				BatchID:  result.Metadata.BatchID,
				Summary:  result.Summary(),
				Records:  result.Records,
				Outcomes: result.Outcomes,
			}, nil)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "detections JSON file (default stdin)")
	cmd.Flags().IntVar(&width, "width", 0, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "image height in pixels")

	return cmd
}
