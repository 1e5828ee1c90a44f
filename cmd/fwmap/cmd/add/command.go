// Package add implements the add command.
package add

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/fwmap/internal/appcontext"
	"github.com/agentstation/fwmap/internal/cmd/output"
	"github.com/agentstation/fwmap/pkg/catalogs"
	"github.com/agentstation/fwmap/pkg/reconciler"
)

// NewCommand creates the add command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var entry reconciler.ManualEntry

	cmd := &cobra.Command{
		Use:     "add",
		GroupID: "core",
		Short:   "Add a firmware record by hand",
		Long: `Add stores a trusted record. Manual records need no archive or
download link and are never removed by sync.`,
		Example: `  fwmap add --model DS-2CD2047G2 --version V5.7.0 --url https://example.com/fw.zip --date 220822`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			f, added, err := client.Add(cmd.Context(), entry)
			if err != nil {
				return err
			}
			if !added {
				app.Logger().Warn().Str("firmware", f.Key()).Msg("Firmware already in catalog, nothing changed")
			}

			format := output.DetectFormat(app.OutputFormat())
			if format == output.FormatTable && added {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (device %d)\n", f.Key(), f.DeviceID)
				return nil
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), output.Firmwares([]catalogs.Firmware{f}))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&entry.Model, "model", "", "device model (required)")
	flags.StringVar(&entry.HardwareVersion, "hw-version", "", "hardware version (default UNKNOWN)")
	flags.StringVar(&entry.Version, "version", "", "firmware version (required)")
	flags.StringVar(&entry.URL, "url", "", "download URL")
	flags.StringVar(&entry.Date, "date", "", "release date")
	flags.StringVar(&entry.Changes, "changes", "", "change log")
	flags.StringVar(&entry.Notes, "notes", "", "notes")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}
