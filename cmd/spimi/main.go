// Command spimi drives the index, search, evaluate, and verify subcommands
// described in SPEC_FULL.md §6.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "spimi",
		Short: "SPIMI inverted-index builder and query engine",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newIndexCmd(&configPath),
		newSearchCmd(&configPath),
		newEvaluateCmd(),
		newVerifyCmd(),
	)
	return root
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
