// Package main provides the entry point for the benchwalk CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/benchwalk/cmd/benchwalk/commands"
	"github.com/Sumatoshi-tech/benchwalk/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "benchwalk",
		Short: "Benchwalk - adaptive perft benchmarking across engine history",
		Long: `Benchwalk walks the historical versions of a chess engine, validates
each binary against a fixed perft workload, and measures its throughput
with hyperfine.

Commands:
  walk        Benchmark historical engine versions
  render      Render a results ledger as an HTML throughput chart
  tournament  Run a fastchess round-robin between engine versions`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands.
	rootCmd.AddCommand(commands.NewWalkCommand())
	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(commands.NewTournamentCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "benchwalk %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
