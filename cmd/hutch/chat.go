package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hutch/internal/agent"
)

var (
	chatAgent  string
	chatCaller string
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send a message to an agent and print its reply",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		emit := func(ev agent.Event) {
			switch ev.Type {
			case agent.EventToolCall:
				slog.Info("tool call", "name", ev.Data["name"])
			case agent.EventToolResult:
				slog.Debug("tool result", "name", ev.Data["name"], "content", ev.Data["content"])
			}
		}

		rt, shutdown, err := buildRuntime(ctx, agent.WithEmit(emit))
		if err != nil {
			slog.Error("startup failed", "error", err)
			os.Exit(1)
		}
		defer shutdown(ctx)

		reply, err := rt.Chat(ctx, chatAgent, chatCaller, strings.Join(args, " "))
		if err != nil {
			slog.Error("chat failed", "agent", chatAgent, "error", err)
			os.Exit(1)
		}
		fmt.Println(reply)
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatAgent, "agent", "", "agent id to talk to")
	chatCmd.Flags().StringVar(&chatCaller, "caller", os.Getenv("USER"), "caller identity checked against the agent allow-list")
	chatCmd.MarkFlagRequired("agent")
}
