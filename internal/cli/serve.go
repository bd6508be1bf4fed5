package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpadapter "github.com/example/dotgraph/internal/adapters/mcp"
	"github.com/example/dotgraph/internal/wire"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the knowledge graph over MCP on stdio",
	Long: `Serve exposes ingest, annotate, resolve, drift and query as MCP tools
over stdin/stdout so coding agents can read and extend the graph.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := mcpadapter.New(mcpadapter.Services{
			Ingest:      wire.IngestService(),
			Annotations: wire.AnnotationService(),
			Drift:       wire.DriftService(),
			Query:       wire.QueryService(),
		})
		if err := mcpadapter.ServeStdio(srv); err != nil {
			return fmt.Errorf("mcp server exited: %w", err)
		}
		return nil
	},
}

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	return serveCmd
}
