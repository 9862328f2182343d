package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recera/synapse/pkg/debug"
)

var (
	version = "0.1.0-preview"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "synapse",
		Short: "synapse - interactive concept graph explorer",
		Long: `synapse lays out a concept graph with a force-directed simulation and
lets you explore it in the terminal, in a browser, or as an SVG snapshot.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: synapse.yaml|.toml|.json in the current directory)")
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Log frame loop activity to stderr")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if debugLogging {
			debug.EnableLogging(os.Stderr)
		}
	}

	// Add commands
	rootCmd.AddCommand(newViewCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newInitCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, Bad.Sprint("error: ")+err.Error())
		os.Exit(1)
	}
}
