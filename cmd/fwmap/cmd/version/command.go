// Package version implements the version command.
package version

import (

	"github.com/spf13/cobra"

	"github.com/agentstation/fwmap/internal/appcontext"
	"github.com/agentstation/fwmap/internal/cmd/output"
)

// Info is the build identification.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// NewCommand creates the version command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := Info{Version: app.Version(), Commit: app.Commit(), Date: app.Date()}
			return output.NewFormatter(output.DetectFormat(app.OutputFormat())).Format(cmd.OutOrStdout(), info)
		},
	}
}
