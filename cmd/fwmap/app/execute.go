package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/fwmap/cmd/fwmap/cmd/add"
	importcmd "github.com/agentstation/fwmap/cmd/fwmap/cmd/import"
	"github.com/agentstation/fwmap/cmd/fwmap/cmd/list"
	"github.com/agentstation/fwmap/cmd/fwmap/cmd/report"
	syncmd "github.com/agentstation/fwmap/cmd/fwmap/cmd/sync"
	"github.com/agentstation/fwmap/cmd/fwmap/cmd/version"
	"github.com/agentstation/fwmap/pkg/logging"
)

// Execute runs the CLI with args.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "fwmap",
		Short:   "Firmware catalog for network cameras and recorders",
		Version: a.version,
		Long: `fwmap keeps a catalog of firmware releases for camera and recorder
devices. It merges records from a site crawl export, manual entries, a
directory of downloaded archives and a GitHub releases feed, and prunes
records whose evidence has disappeared.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "output", Title: "Output Commands:"})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.fwmap.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("fwmap {{.Version}}\n")

	rootCmd.AddCommand(syncmd.NewCommand(a))
	rootCmd.AddCommand(importcmd.NewCommand(a))
	rootCmd.AddCommand(add.NewCommand(a))
	rootCmd.AddCommand(list.NewCommand(a))
	rootCmd.AddCommand(report.NewCommand(a))
	rootCmd.AddCommand(version.NewCommand(a))
	return rootCmd
}

// setupCommand reloads an explicit config file, applies the persistent
// flags and installs the rebuilt logger as the process default.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if file := a.config.ConfigFile; file != "" {
		config, err := loadConfig(viper.New(), file)
		if err != nil {
			return err
		}
		a.config = config
	}

	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		mustGetString(cmd, "format"),
		mustGetString(cmd, "log-level"),
	)

	logging.Configure(loggerConfig(a.config))
	a.logger = logging.Default()
	return nil
}

// ExitOnError prints err and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
