package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recera/synapse/internal/config"
)

func newInitCommand() *cobra.Command {
	var force bool
	var graph string

	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write a default synapse config",
		Long: `Writes the default configuration to synapse.yaml (or the given file; the
extension picks YAML, TOML or JSON).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileNames[0]
			if len(args) > 0 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			cfg.Graph = graph
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			fmt.Printf("%s %s\n", Good.Sprint("created"), path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	cmd.Flags().StringVar(&graph, "graph", "graph.yaml", "Graph document the config points at")

	return cmd
}
