package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/dotgraph/internal/ports/primary"
	"github.com/example/dotgraph/internal/wire"
)

var machineCmd = &cobra.Command{
	Use:   "machine",
	Short: "Manage machines in the fleet",
}

var machineRegisterCmd = &cobra.Command{
	Use:   "register [id]",
	Short: "Register a machine with baseline attributes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hostname, _ := cmd.Flags().GetString("hostname")
		hardwareClass, _ := cmd.Flags().GetString("hardware-class")

		machine, err := wire.MachineService().RegisterMachine(context.Background(), primary.RegisterMachineRequest{
			ID:            args[0],
			Hostname:      hostname,
			HardwareClass: hardwareClass,
		})
		if err != nil {
			return fmt.Errorf("failed to register machine: %w", err)
		}

		fmt.Printf("✓ Registered machine %s\n", machine.ID)
		return nil
	},
}

var machineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List machines",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")

		machines, err := wire.MachineService().ListMachines(context.Background(), primary.MachineFilters{Status: status})
		if err != nil {
			return fmt.Errorf("failed to list machines: %w", err)
		}

		if len(machines) == 0 {
			fmt.Println("No machines found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tHOSTNAME\tCLASS\tSTATUS\tLAST SEEN")
		fmt.Fprintln(w, "--\t--------\t-----\t------\t---------")
		for _, m := range machines {
			lastSeen := m.LastSeenAt
			if lastSeen == "" {
				lastSeen = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.Hostname, m.HardwareClass, m.Status, lastSeen)
		}
		return w.Flush()
	},
}

var machineRetireCmd = &cobra.Command{
	Use:   "retire [id]",
	Short: "Retire a machine (its snapshots are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.MachineService().RetireMachine(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to retire machine: %w", err)
		}
		fmt.Printf("✓ Retired machine %s\n", args[0])
		return nil
	},
}

func init() {
	machineRegisterCmd.Flags().String("hostname", "", "Machine hostname")
	machineRegisterCmd.Flags().String("hardware-class", "", "Hardware class, e.g. laptop, desktop, rpi")
	machineListCmd.Flags().String("status", "", "Filter by status (active, retired)")

	machineCmd.AddCommand(machineRegisterCmd)
	machineCmd.AddCommand(machineListCmd)
	machineCmd.AddCommand(machineRetireCmd)
}

// MachineCmd returns the machine command
func MachineCmd() *cobra.Command {
	return machineCmd
}
