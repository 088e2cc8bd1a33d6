// Package batch provides the batch command.
package batch

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/carryon/internal/appcontext"
	"github.com/agentstation/carryon/internal/cmd/output"
	"github.com/agentstation/carryon/pkg/catalog"
)

// NewCommand creates the batch command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "batch",
		GroupID: "core",
		Short:   "Manage analysed images",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(NewCreateCommand(app))
	return cmd
}

// NewCreateCommand creates the batch create subcommand.
func NewCreateCommand(app appcontext.Interface) *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:     "create <batch-id>",
		Aliases: []string{"set"},
		Short:   "Record the image size of a batch",
		Long: `Create records the pixel size of the image behind a batch. Weight
estimation uses it to compute how much of the image each item covers.
Running it again for the same id replaces the size.`,
		Example: `  carryon batch create img-1 --width 1280 --height 720`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}

			batch := catalog.Batch{ID: args[0], ImageWidth: width, ImageHeight: height}
			if err := client.SaveBatch(cmd.Context(), batch); err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), batch, nil)
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "image height in pixels")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")

	return cmd
}
