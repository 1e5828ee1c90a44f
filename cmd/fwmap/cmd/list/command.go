// Package list implements the list command.
package list

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/fwmap/internal/appcontext"
	"github.com/agentstation/fwmap/internal/cmd/output"
	"github.com/agentstation/fwmap/pkg/catalogs"
)

// Filter selects records for listing.
type Filter struct {
	Model  string
	Source string
	Beta   bool
}

// Apply returns the records matching f, newest first per device.
func (f Filter) Apply(state *catalogs.State) []catalogs.Firmware {
	var out []catalogs.Firmware
	for _, dev := range state.Devices.List() {
		for _, fw := range state.Firmwares.ByDevice(dev.ID) {
			if f.Model != "" && !strings.Contains(strings.ToUpper(fw.Model), strings.ToUpper(f.Model)) {
				continue
			}
			if f.Source != "" && fw.Source.String() != f.Source {
				continue
			}
			if f.Beta && !fw.IsBeta {
				continue
			}
			out = append(out, fw)
		}
	}
	return out
}

// NewCommand creates the list command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		filter  Filter
		devices bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		GroupID: "output",
		Short:   "List firmware records or devices",
		Example: `  fwmap list
  fwmap list --model DS-2CD --source directory_sync
  fwmap list --devices -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			formatter := output.NewFormatter(output.DetectFormat(app.OutputFormat()))
			if devices {
				return formatter.Format(cmd.OutOrStdout(), output.Devices(client.State()))
			}
			return formatter.Format(cmd.OutOrStdout(), output.Firmwares(filter.Apply(client.State())))
		},
	}

	cmd.Flags().StringVar(&filter.Model, "model", "", "only models containing this text")
	cmd.Flags().StringVar(&filter.Source, "source", "", "only records from this source")
	cmd.Flags().BoolVar(&filter.Beta, "beta", false, "only pre-release firmware")
	cmd.Flags().BoolVar(&devices, "devices", false, "list devices instead of firmware")
	return cmd
}
