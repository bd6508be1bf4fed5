package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/dotgraph/internal/config"
	"github.com/example/dotgraph/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the dotgraph state directory and database",
	RunE: func(cmd *cobra.Command, args []string) error {
		machineID, _ := cmd.Flags().GetString("machine")
		hardwareClass, _ := cmd.Flags().GetString("hardware-class")

		dir, err := config.Dir()
		if err != nil {
			return err
		}

		cfg := config.LoadOrDefault(dir)
		if machineID != "" {
			cfg.MachineID = machineID
		}
		if hardwareClass != "" {
			cfg.HardwareClass = hardwareClass
		}
		if err := config.Save(dir, cfg); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		// Opening the database creates the schema.
		if _, err := db.GetDB(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		fmt.Printf("✓ Initialized dotgraph in %s\n", dir)
		fmt.Printf("  Machine: %s\n", cfg.MachineID)
		return nil
	},
}

func init() {
	initCmd.Flags().String("machine", "", "Machine ID for this host (defaults to hostname)")
	initCmd.Flags().String("hardware-class", "", "Hardware class, e.g. laptop, desktop, rpi")
}

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return initCmd
}
