// cmd/cinema-sage/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	chat := newChatCmd()

	root := &cobra.Command{
		Use:           "cinema-sage",
		Short:         "Movie recommendation chat bot backed by TMDB",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Chatting is the default when no subcommand is given.
		RunE: chat.RunE,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (default: configs/config.yaml)")

	root.AddCommand(chat, newWorkerCmd())
	return root
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Answer movie requests typed on stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Serve recommend-movie jobs from a Zeebe broker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(cmd.Context())
		},
	}
}
