// Package report implements the report command.
package report

import (

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/agentstation/fwmap/internal/appcontext"
	"github.com/agentstation/fwmap/pkg/errors"
	pkgreport "github.com/agentstation/fwmap/pkg/report"
)

// NewCommand creates the report command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		stdout bool
		title  string
		header string
	)

	cmd := &cobra.Command{
		Use:     "report",
		GroupID: "output",
		Short:   "Render the catalog as a Markdown README",
		Long: `Report writes README.md into the data directory: one section per
device, firmware newest first, with beta releases flagged.

--header takes a Markdown file placed at the top instead of the generated
title; the text "Total: 0" in it is replaced with the firmware count.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			opts := []pkgreport.Option{}
			if title != "" {
				opts = append(opts, pkgreport.WithTitle(title))
			}
			if header != "" {
				data, err := afero.ReadFile(afero.NewOsFs(), header)
				if err != nil {
					return errors.WrapIO("read", header, err)
				}
				opts = append(opts, pkgreport.WithHeader(string(data)))
			}

			if stdout {
				return client.Report(cmd.OutOrStdout(), opts...)
			}
			if err := client.WriteReport(opts...); err != nil {
				return err
			}
			app.Logger().Info().Msg("README generated")
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdout, "stdout", false, "print instead of writing README.md")
	cmd.Flags().StringVar(&title, "title", "", "document title")
	cmd.Flags().StringVar(&header, "header", "", "Markdown file to use as the header")
	return cmd
}
