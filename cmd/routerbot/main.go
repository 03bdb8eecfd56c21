// Routerbot - Discord bot for Cisco IOS-XE routers over RESTCONF
//
// The bot registers slash commands that read and change router state:
// interfaces, hostname, banner, DNS, static routes and the routing table.
// Every command is also available from the terminal through "exec", which
// runs the same dispatcher without Discord.
//
// Configuration comes from the environment, optionally loaded from a .env
// file. See pkg/config for the variables.
//
// Examples:
//
//	routerbot serve                                  # run the bot, metrics and monitor
//	routerbot exec get-interfaces                    # one command against the default router
//	routerbot exec set-hostname hostname=edge-2      # write commands take key=value options
//	routerbot exec get-hostname router=edge          # target an inventory router
//	routerbot monitor --once                         # probe inventory routers once
//	routerbot audit list --last 24h
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/routerbot/routerbot/pkg/cli"
	"github.com/routerbot/routerbot/pkg/config"
	"github.com/routerbot/routerbot/pkg/util"
	"github.com/routerbot/routerbot/pkg/version"
)

var (
	envFile    string
	verbose    bool
	jsonOutput bool

	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Red("Error:"), err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "routerbot",
	Short:             "Discord bot for IOS-XE routers over RESTCONF",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Routerbot serves router commands to Discord over RESTCONF.

Run "routerbot serve" to start the bot, or "routerbot exec <command>" to
run a single command from the terminal.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if isHelpOrVersion(cmd) {
			return nil
		}

		var err error
		cfg, err = config.Load(envFile)
		if err != nil {
			return err
		}
		if err := util.ConfigureLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
			return err
		}
		if verbose {
			util.SetLogLevel("debug")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "Environment file to load before reading settings")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "run", Title: "Running:"},
		&cobra.Group{ID: "ops", Title: "Operations:"},
		&cobra.Group{ID: "meta", Title: "Meta:"},
	)

	for _, cmd := range []*cobra.Command{serveCmd, execCmd} {
		cmd.GroupID = "run"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{monitorCmd, auditCmd} {
		cmd.GroupID = "ops"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{commandsCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if version.Version == "dev" {
			fmt.Println("routerbot dev build (no ldflags version info)")
		} else {
			fmt.Println("routerbot " + version.Info())
		}
	},
}

// isHelpOrVersion checks whether cmd (or any ancestor) needs no configuration.
func isHelpOrVersion(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version":
			return true
		}
	}
	return false
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
}
