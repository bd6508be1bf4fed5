package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/dotgraph/internal/ports/primary"
	"github.com/example/dotgraph/internal/wire"
)

var definitionCmd = &cobra.Command{
	Use:     "definition",
	Aliases: []string{"def"},
	Short:   "Manage config definitions (logical dotfile paths)",
}

var definitionAddCmd = &cobra.Command{
	Use:   "add [path]",
	Short: "Register a new config definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, _ := cmd.Flags().GetStringSlice("tag")

		def, err := wire.DefinitionService().AddDefinition(context.Background(), primary.AddDefinitionRequest{
			Path: args[0],
			Tags: tags,
		})
		if err != nil {
			return fmt.Errorf("failed to add definition: %w", err)
		}

		fmt.Printf("✓ Added definition %s\n", def.Path)
		if len(def.Tags) > 0 {
			fmt.Printf("  Tags: %s\n", strings.Join(def.Tags, ", "))
		}
		return nil
	},
}

var definitionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List config definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		tag, _ := cmd.Flags().GetString("tag")

		defs, err := wire.DefinitionService().ListDefinitions(context.Background(), primary.DefinitionFilters{
			Status: status,
			Tag:    tag,
		})
		if err != nil {
			return fmt.Errorf("failed to list definitions: %w", err)
		}

		if len(defs) == 0 {
			fmt.Println("No definitions found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PATH\tSTATUS\tCANONICAL\tTAGS")
		fmt.Fprintln(w, "----\t------\t---------\t----")
		for _, d := range defs {
			canonical := d.CanonicalHash
			if canonical == "" {
				canonical = "-"
			} else if len(canonical) > 12 {
				canonical = canonical[:12]
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Path, d.Status, canonical, strings.Join(d.Tags, ","))
		}
		return w.Flush()
	},
}

var definitionShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Show a definition and its latest drift report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		def, err := wire.DefinitionService().GetDefinition(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Definition: %s\n", def.Path)
		fmt.Printf("  Status:    %s\n", def.Status)
		if def.CanonicalHash != "" {
			fmt.Printf("  Canonical: %s\n", def.CanonicalHash)
		} else {
			fmt.Printf("  Canonical: (not adopted)\n")
		}
		if len(def.Tags) > 0 {
			fmt.Printf("  Tags:      %s\n", strings.Join(def.Tags, ", "))
		}
		fmt.Printf("  Created:   %s\n", def.CreatedAt)

		report, err := wire.DriftService().GetDriftReport(ctx, def.Path)
		if err != nil {
			// No stored report yet is normal for a fresh definition.
			return nil
		}
		fmt.Printf("\nLast drift report (%s):\n", report.GeneratedAt)
		printDriftMachines(report)
		return nil
	},
}

var definitionAdoptCmd = &cobra.Command{
	Use:   "adopt [path]",
	Short: "Adopt a canonical content hash for a definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, _ := cmd.Flags().GetString("hash")
		fromSnapshot, _ := cmd.Flags().GetString("from-snapshot")

		err := wire.DefinitionService().AdoptCanonical(context.Background(), primary.AdoptCanonicalRequest{
			Path:           args[0],
			ContentHash:    hash,
			FromSnapshotID: fromSnapshot,
		})
		if err != nil {
			return fmt.Errorf("failed to adopt canonical: %w", err)
		}

		fmt.Printf("✓ Adopted canonical state for %s\n", args[0])
		return nil
	},
}

var definitionRetireCmd = &cobra.Command{
	Use:   "retire [path]",
	Short: "Retire a definition (history is kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.DefinitionService().RetireDefinition(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to retire definition: %w", err)
		}
		fmt.Printf("✓ Retired definition %s\n", args[0])
		return nil
	},
}

func init() {
	definitionAddCmd.Flags().StringSlice("tag", nil, "Tag for the definition (repeatable)")
	definitionListCmd.Flags().String("status", "", "Filter by status (active, retired)")
	definitionListCmd.Flags().String("tag", "", "Filter by tag")
	definitionAdoptCmd.Flags().String("hash", "", "Content hash to adopt")
	definitionAdoptCmd.Flags().String("from-snapshot", "", "Snapshot ID whose hash to adopt")

	definitionCmd.AddCommand(definitionAddCmd)
	definitionCmd.AddCommand(definitionListCmd)
	definitionCmd.AddCommand(definitionShowCmd)
	definitionCmd.AddCommand(definitionAdoptCmd)
	definitionCmd.AddCommand(definitionRetireCmd)
}

// DefinitionCmd returns the definition command
func DefinitionCmd() *cobra.Command {
	return definitionCmd
}
