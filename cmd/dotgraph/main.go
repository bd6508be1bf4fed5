package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/dotgraph/internal/cli"
	"github.com/example/dotgraph/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "dotgraph",
		Short:   "dotgraph - knowledge graph for dotfiles across machines",
		Version: version.String(),
		Long: `dotgraph tracks configuration definitions, per-machine snapshots and the
knowledge attached to them (rationales, troubleshooting, roadmap items,
benchmarks), and classifies drift between each machine and the canonical
state.`,
	}

	// Setup and inventory
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DefinitionCmd())
	rootCmd.AddCommand(cli.MachineCmd())

	// Observation
	rootCmd.AddCommand(cli.IngestCmd())
	rootCmd.AddCommand(cli.ScanCmd())
	rootCmd.AddCommand(cli.BackfillCmd())

	// Knowledge
	rootCmd.AddCommand(cli.AnnotateCmd())
	rootCmd.AddCommand(cli.ResolveCmd())
	rootCmd.AddCommand(cli.QueryCmd())

	// Reconciliation
	rootCmd.AddCommand(cli.DriftCmd())

	// Agent integration
	rootCmd.AddCommand(cli.ServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
