// Package sync implements the sync command.
package sync

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/fwmap"
	"github.com/agentstation/fwmap/internal/appcontext"
	"github.com/agentstation/fwmap/internal/cmd/output"
	"github.com/agentstation/fwmap/pkg/constants"
)

// NewCommand creates the sync command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		skipReleases bool
		timeout      time.Duration
		readme       bool
	)

	cmd := &cobra.Command{
		Use:     "sync",
		GroupID: "core",
		Short:   "Reconcile the catalog with releases and the firmware directory",
		Long: `Sync runs one reconciliation:

1. Ingest assets from the GitHub releases feed (when a repository is set)
2. Ingest archives found in the firmware directory
3. Remove directory placeholders that can never gain evidence
4. Remove unidentified records whose file and download link are gone
5. Remove unidentified devices nothing refers to

A release feed that cannot be reached is recorded in status.json and the
remaining passes still run.`,
		Example: `  fwmap sync
  fwmap sync --skip-releases
  fwmap sync --readme -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			result, err := client.Sync(cmd.Context(),
				fwmap.WithTimeout(timeout),
				fwmap.WithSkipReleases(skipReleases),
			)
			if err != nil {
				return err
			}
			if readme {
				if err := client.WriteReport(); err != nil {
					return err
				}
			}

			format := output.DetectFormat(app.OutputFormat())
			if err := output.NewFormatter(format).Format(cmd.OutOrStdout(), output.Run(result)); err != nil {
				return err
			}
			if format == output.FormatTable {
				state := client.State()
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "\n%s\n", result.Summary())
				if result.Artifacts >= 0 {
					fmt.Fprintf(w, "Directory: %d archives\n", result.Artifacts)
				}
				fmt.Fprintf(w, "Catalog: %d firmwares across %d devices\n", state.Firmwares.Len(), state.Devices.Len())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipReleases, "skip-releases", false, "do not contact the release host")
	cmd.Flags().DurationVar(&timeout, "timeout", constants.CommandTimeout, "maximum duration of the run")
	cmd.Flags().BoolVar(&readme, "readme", false, "write README.md after syncing")
	return cmd
}
