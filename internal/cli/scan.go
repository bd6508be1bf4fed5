package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/dotgraph/internal/app"
	"github.com/example/dotgraph/internal/manifest"
	"github.com/example/dotgraph/internal/wire"
)

var scanCmd = &cobra.Command{
	Use:   "scan [repo-path]",
	Short: "Hash every manifest entry and ingest snapshots for this machine",
	Long: `Scan reads dotfiles.yaml from the given repository (default: current
directory), hashes the tracked files and records one snapshot per definition
for the configured local machine.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath := "."
		if len(args) > 0 {
			repoPath = args[0]
		}

		cfg := wire.Config()
		results, err := wire.ScanService().Scan(context.Background(), app.ScanRequest{
			ManifestPath:  filepath.Join(repoPath, manifest.DefaultFileName),
			MachineID:     cfg.MachineID,
			Hostname:      cfg.Hostname,
			HardwareClass: cfg.HardwareClass,
		})
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		failed := 0
		for _, r := range results {
			switch {
			case r.Err != nil:
				failed++
				fmt.Printf("%s %s: %v\n", color.New(color.FgRed).Sprint("✗"), r.DefinitionPath, r.Err)
			case r.NoOp:
				fmt.Printf("%s %s (unchanged)\n", color.New(color.FgHiBlack).Sprint("="), r.DefinitionPath)
			default:
				marker := color.New(color.FgGreen).Sprint("✓")
				dirty := ""
				if r.Dirty {
					dirty = color.New(color.FgYellow).Sprint(" [uncommitted]")
				}
				fmt.Printf("%s %s -> %s%s\n", marker, r.DefinitionPath, short(r.ContentHash), dirty)
			}
		}

		fmt.Printf("\nScanned %d definitions on %s", len(results), cfg.MachineID)
		if len(results) > 0 && results[0].VCSType != "" {
			fmt.Printf(" (%s repository)", results[0].VCSType)
		}
		if failed > 0 {
			fmt.Printf(" (%d failed)", failed)
		}
		fmt.Println()
		return nil
	},
}

var backfillCmd = &cobra.Command{
	Use:   "backfill [definition-path]",
	Short: "Seed rationale annotations from VCS history",
	Long: `Backfill walks the commit history of a manifest entry and records each
commit summary as a rationale annotation with source vcs-history, so
knowledge committed long ago becomes queryable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath, _ := cmd.Flags().GetString("repo")
		limit, _ := cmd.Flags().GetInt("limit")

		results, err := wire.ScanService().Backfill(context.Background(), app.BackfillRequest{
			ManifestPath:   filepath.Join(repoPath, manifest.DefaultFileName),
			DefinitionPath: args[0],
			Limit:          limit,
		})
		if err != nil {
			return fmt.Errorf("backfill failed: %w", err)
		}

		for _, r := range results {
			fmt.Printf("✓ %s <- %s %s\n", r.AnnotationID, short(r.RevisionID), r.Summary)
		}
		fmt.Printf("\nBackfilled %d revisions for %s\n", len(results), args[0])
		return nil
	},
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func init() {
	backfillCmd.Flags().String("repo", ".", "Dotfiles repository path")
	backfillCmd.Flags().Int("limit", 20, "Maximum revisions to backfill")
}

// ScanCmd returns the scan command
func ScanCmd() *cobra.Command {
	return scanCmd
}

// BackfillCmd returns the backfill command
func BackfillCmd() *cobra.Command {
	return backfillCmd
}
