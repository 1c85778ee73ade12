package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var resetAgent string

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset an agent's conversation to its system instruction",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		rt, shutdown, err := buildRuntime(ctx)
		if err != nil {
			slog.Error("startup failed", "error", err)
			os.Exit(1)
		}
		defer shutdown(ctx)

		if err := rt.Reset(ctx, resetAgent); err != nil {
			slog.Error("reset failed", "agent", resetAgent, "error", err)
			os.Exit(1)
		}
		fmt.Printf("reset conversation for %s\n", resetAgent)
	},
}

func init() {
	resetCmd.Flags().StringVar(&resetAgent, "agent", "", "agent id to reset")
	resetCmd.MarkFlagRequired("agent")
}
