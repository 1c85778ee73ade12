package main

import (
	"os"

	"github.com/spf13/cobra"

	"hutch/internal/logger"
)

var configPath string

func main() {
	logger.Init()

	rootCmd := &cobra.Command{
		Use:   "hutch",
		Short: "Hutch runs isolated conversational agents",
		Long: "Hutch hosts configured agents, each bound to one model endpoint,\n" +
			"one filesystem sandbox, and one fixed tool set.",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "hutch.toml", "path to the runtime config")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(resetCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
