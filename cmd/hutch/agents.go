package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List configured agents",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		rt, shutdown, err := buildRuntime(ctx)
		if err != nil {
			slog.Error("startup failed", "error", err)
			os.Exit(1)
		}
		defer shutdown(ctx)

		for _, id := range rt.Agents() {
			fmt.Println(id)
		}
	},
}
