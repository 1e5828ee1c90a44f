// Package importcmd implements the import command.
package importcmd

import (

	"github.com/spf13/cobra"

	"github.com/agentstation/fwmap/internal/appcontext"
	"github.com/agentstation/fwmap/internal/cmd/output"
)

// NewCommand creates the import command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "import <export-file>",
		GroupID: "core",
		Short:   "Ingest a site crawl export",
		Long: `Import reads link fragments written by the site crawler, as a JSON
array or JSON lines of {"text", "href", "context", "filename"} objects.
Fragments whose only link is a license agreement page are rejected unless
the archive is already in the firmware directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			result, err := client.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			formatter := output.NewFormatter(output.DetectFormat(app.OutputFormat()))
			return formatter.Format(cmd.OutOrStdout(), output.Run(result))
		},
	}
}
