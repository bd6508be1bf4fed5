package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/dotgraph/internal/ports/primary"
	"github.com/example/dotgraph/internal/wire"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [definition-path]",
	Short: "Record a snapshot observation for a definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		machineID, _ := cmd.Flags().GetString("machine")
		hash, _ := cmd.Flags().GetString("hash")
		revision, _ := cmd.Flags().GetString("revision")
		diffRef, _ := cmd.Flags().GetString("diff-ref")

		cfg := wire.Config()
		if machineID == "" {
			machineID = cfg.MachineID
		}

		resp, err := wire.IngestService().IngestSnapshot(context.Background(), primary.IngestSnapshotRequest{
			DefinitionPath:       args[0],
			MachineID:            machineID,
			ContentHash:          hash,
			RevisionID:           revision,
			DiffRef:              diffRef,
			MachineHostname:      cfg.Hostname,
			MachineHardwareClass: cfg.HardwareClass,
		})
		if err != nil {
			return fmt.Errorf("failed to ingest snapshot: %w", err)
		}

		if resp.NoOp {
			fmt.Printf("✓ Recorded no-op snapshot %s (content unchanged)\n", resp.Snapshot.ID)
		} else {
			fmt.Printf("✓ Recorded snapshot %s\n", resp.Snapshot.ID)
		}
		if resp.DefinitionCreated {
			fmt.Printf("  Auto-registered definition %s\n", args[0])
		}
		if resp.MachineCreated {
			fmt.Printf("  Auto-registered machine %s\n", machineID)
		}
		fmt.Printf("  Observed: %s on %s\n", resp.Snapshot.ObservedAt, machineID)
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("machine", "", "Machine ID (defaults to the configured local machine)")
	ingestCmd.Flags().String("hash", "", "Content hash of the observed state")
	ingestCmd.Flags().String("revision", "", "VCS revision the state corresponds to")
	ingestCmd.Flags().String("diff-ref", "", "Reference to a diff against the prior snapshot")
	ingestCmd.MarkFlagRequired("hash")
}

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	return ingestCmd
}
