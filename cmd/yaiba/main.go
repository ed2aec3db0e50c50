package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by ldflags)
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	verbose    bool
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "yaiba",
	Short: "VRChat log parser for Science Assembly experiments",
	Long: `yaiba parses VRChat log files into structured session logs.

It extracts room entries, player joins and leaves, player positions,
questionnaire answers and tag markers, pseudonymizes user names with a
salt, and exports the result as JSON or CSV.

Settings are read from the config file (see 'yaiba config path'), from
.env files in the working directory and from YAIBA_* environment
variables, in increasing priority.

This is an unofficial tool and is not affiliated with VRChat Inc.`,
	SilenceUsage: true, // Don't show usage on error
}

func init() {
	// Global flags (inherited by all subcommands)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default: user config dir/yaiba/config.toml)")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(csvCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "yaiba %s (commit: %s, built: %s)\n", version, commit, date)
	},
}
