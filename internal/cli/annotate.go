package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/dotgraph/internal/ports/primary"
	"github.com/example/dotgraph/internal/wire"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [body]",
	Short: "Attach a typed annotation to a graph entity",
	Long: `Annotate records a typed note against a definition, snapshot or machine.
Kinds: rationale, troubleshooting, roadmap, benchmark. Rationales explain
intentional divergence, troubleshooting entries track open incidents,
roadmap items queue planned changes and benchmarks carry a metric.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		primaryID, _ := cmd.Flags().GetString("on")
		secondary, _ := cmd.Flags().GetStringSlice("ref")
		source, _ := cmd.Flags().GetString("source")
		priority, _ := cmd.Flags().GetString("priority")
		trialDays, _ := cmd.Flags().GetInt("trial-days")
		trialCriteria, _ := cmd.Flags().GetString("trial-criteria")
		metricUnit, _ := cmd.Flags().GetString("metric-unit")

		req := primary.AnnotateRequest{
			Kind:          kind,
			Body:          args[0],
			Source:        source,
			PrimaryID:     primaryID,
			SecondaryIDs:  secondary,
			Priority:      priority,
			TrialDays:     trialDays,
			TrialCriteria: trialCriteria,
			MetricUnit:    metricUnit,
		}
		if cmd.Flags().Changed("metric-value") {
			req.MetricValue, _ = cmd.Flags().GetFloat64("metric-value")
			req.HasMetric = true
		}

		resp, err := wire.AnnotationService().Annotate(context.Background(), req)
		if err != nil {
			return fmt.Errorf("failed to annotate: %w", err)
		}

		fmt.Printf("✓ Created %s %s on %s\n", resp.Annotation.Kind, resp.Annotation.ID, primaryID)
		if resp.Annotation.Status != "" {
			fmt.Printf("  Status: %s\n", resp.Annotation.Status)
		}
		if resp.DegradedWarning != "" {
			fmt.Printf("%s %s\n", color.New(color.FgYellow).Sprint("⚠"), resp.DegradedWarning)
		}
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [annotation-id]",
	Short: "Mark an open troubleshooting annotation as resolved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		by, _ := cmd.Flags().GetString("by")

		err := wire.AnnotationService().ResolveAnnotation(context.Background(), primary.ResolveAnnotationRequest{
			AnnotationID: args[0],
			ResolvedByID: by,
		})
		if err != nil {
			return fmt.Errorf("failed to resolve: %w", err)
		}

		fmt.Printf("✓ Resolved %s", args[0])
		if by != "" {
			fmt.Printf(" (resolved by %s)", by)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	annotateCmd.Flags().String("kind", "rationale", "Annotation kind (rationale, troubleshooting, roadmap, benchmark)")
	annotateCmd.Flags().String("on", "", "Primary target entity ID")
	annotateCmd.Flags().StringSlice("ref", nil, "Additional entity IDs this annotation references")
	annotateCmd.Flags().String("source", "manual", "Provenance of the annotation")
	annotateCmd.Flags().String("priority", "", "Roadmap priority (LOW, MEDIUM, HIGH)")
	annotateCmd.Flags().Int("trial-days", 0, "Roadmap trial period in days")
	annotateCmd.Flags().String("trial-criteria", "", "Roadmap trial success criteria")
	annotateCmd.Flags().Float64("metric-value", 0, "Benchmark metric value")
	annotateCmd.Flags().String("metric-unit", "", "Benchmark metric unit")
	annotateCmd.MarkFlagRequired("on")

	resolveCmd.Flags().String("by", "", "Entity ID that resolves the annotation")
}

// AnnotateCmd returns the annotate command
func AnnotateCmd() *cobra.Command {
	return annotateCmd
}

// ResolveCmd returns the resolve command
func ResolveCmd() *cobra.Command {
	return resolveCmd
}
