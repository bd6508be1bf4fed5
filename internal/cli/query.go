package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/dotgraph/internal/ports/primary"
	"github.com/example/dotgraph/internal/wire"
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search annotations structurally and semantically",
	Long: `Query combines a structural filter pass (kind, status, definition scope,
recency) with a semantic search over annotation bodies. When the semantic
index is unavailable the structural results are still returned, with a
warning.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds, _ := cmd.Flags().GetStringSlice("kind")
		definition, _ := cmd.Flags().GetString("definition")
		openOnly, _ := cmd.Flags().GetBool("open")
		sinceDays, _ := cmd.Flags().GetInt("since-days")
		limit, _ := cmd.Flags().GetInt("limit")

		text := ""
		if len(args) > 0 {
			text = args[0]
		}

		resp, err := wire.QueryService().Query(context.Background(), primary.QueryRequest{
			Text:           text,
			Kinds:          kinds,
			DefinitionPath: definition,
			OpenOnly:       openOnly,
			SinceDays:      sinceDays,
			Limit:          limit,
		})
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}

		if resp.DegradedWarning != "" {
			fmt.Printf("%s %s\n\n", color.New(color.FgYellow).Sprint("⚠"), resp.DegradedWarning)
		}
		if len(resp.Results) == 0 {
			fmt.Println("No matches.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tSTATUS\tORIGIN\tBODY")
		for _, r := range resp.Results {
			if r.Annotation != nil {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					r.Annotation.ID, r.Annotation.Kind, r.Annotation.Status, r.Origin, excerpt(r.Annotation.Body))
			} else {
				fmt.Fprintf(w, "%s\t%s\t\t%s\t\n", r.EntityID, r.EntityKind, r.Origin)
			}
		}
		w.Flush()
		return nil
	},
}

// excerpt keeps table rows on one line.
func excerpt(body string) string {
	body = strings.ReplaceAll(body, "\n", " ")
	if len(body) > 72 {
		return body[:69] + "..."
	}
	return body
}

func init() {
	queryCmd.Flags().StringSlice("kind", nil, "Restrict to annotation kinds")
	queryCmd.Flags().String("definition", "", "Restrict to annotations touching this definition")
	queryCmd.Flags().Bool("open", false, "Only unresolved troubleshooting/roadmap entries")
	queryCmd.Flags().Int("since-days", 0, "Only entries created in the last N days")
	queryCmd.Flags().Int("limit", 0, "Maximum results (default 20)")
}

// QueryCmd returns the query command
func QueryCmd() *cobra.Command {
	return queryCmd
}
