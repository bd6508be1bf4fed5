package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/dotgraph/internal/ports/primary"
	"github.com/example/dotgraph/internal/wire"
)

var driftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Compute and inspect drift reports",
}

var driftComputeCmd = &cobra.Command{
	Use:   "compute [definition-path]",
	Short: "Classify every active machine against the canonical state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := wire.DriftService().ComputeDrift(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to compute drift: %w", err)
		}
		printDriftReport(report)
		return nil
	},
}

var driftShowCmd = &cobra.Command{
	Use:   "show [definition-path]",
	Short: "Show the stored drift report for a definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := wire.DriftService().GetDriftReport(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load drift report: %w", err)
		}
		printDriftReport(report)
		return nil
	},
}

func printDriftReport(report *primary.DriftReport) {
	fmt.Printf("Report:    %s\n", report.ID)
	fmt.Printf("Path:      %s\n", report.DefinitionPath)
	if report.CanonicalHash != "" {
		fmt.Printf("Canonical: %s (%s)\n", short(report.CanonicalHash), report.CanonicalSource)
	} else {
		fmt.Printf("Canonical: %s\n", color.New(color.FgHiBlack).Sprint("none"))
	}
	fmt.Printf("Generated: %s\n", report.GeneratedAt)
	fmt.Println()
	printDriftMachines(report)
}

func printDriftMachines(report *primary.DriftReport) {
	if len(report.Machines) == 0 {
		fmt.Println("No active machines have reported snapshots.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MACHINE\tCLASS\tHASH\tOBSERVED\tEXPLAINED BY")
	for _, m := range report.Machines {
		explained := m.RationaleID
		if explained == "" && len(m.TroubleshootingIDs) > 0 {
			explained = m.TroubleshootingIDs[0]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			m.MachineID, driftClass(m.Class), short(m.ContentHash), m.ObservedAt, explained)
	}
	w.Flush()
}

func driftClass(class string) string {
	switch class {
	case "in_sync":
		return color.New(color.FgGreen).Sprint(class)
	case "diverged_intentional":
		return color.New(color.FgCyan).Sprint(class)
	case "diverged_unexplained":
		return color.New(color.FgRed).Sprint(class)
	case "stale":
		return color.New(color.FgYellow).Sprint(class)
	default:
		return color.New(color.FgHiBlack).Sprint(class)
	}
}

func init() {
	driftCmd.AddCommand(driftComputeCmd)
	driftCmd.AddCommand(driftShowCmd)
}

// DriftCmd returns the drift command with its subcommands
func DriftCmd() *cobra.Command {
	return driftCmd
}
