// Package mcp exposes the five public graph operations over the Model
// Context Protocol, so an agent session can read and write the dotfiles
// knowledge graph directly.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/example/dotgraph/internal/ports/primary"
	"github.com/example/dotgraph/internal/version"
)

// Services bundles the primary ports the MCP surface exposes.
type Services struct {
	Ingest      primary.IngestService
	Annotations primary.AnnotationService
	Drift       primary.DriftService
	Query       primary.QueryService
}

// New creates the MCP server with the five graph tools registered.
func New(svcs Services) *server.MCPServer {
	s := server.NewMCPServer(
		"dotgraph",
		version.String(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	ingestTool := NewIngestTool(svcs.Ingest)
	s.AddTool(ingestTool.Definition(), ingestTool.Handle)

	annotateTool := NewAnnotateTool(svcs.Annotations)
	s.AddTool(annotateTool.Definition(), annotateTool.Handle)

	resolveTool := NewResolveTool(svcs.Annotations)
	s.AddTool(resolveTool.Definition(), resolveTool.Handle)

	driftTool := NewDriftTool(svcs.Drift)
	s.AddTool(driftTool.Definition(), driftTool.Handle)

	queryTool := NewQueryTool(svcs.Query)
	s.AddTool(queryTool.Definition(), queryTool.Handle)

	return s
}

// ServeStdio runs the server over stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func serverInstructions() string {
	return `You have access to dotgraph, a semantic knowledge graph for dotfiles.

It stores config definitions, per-machine snapshots, and typed annotations
(rationale, troubleshooting, roadmap, benchmark), and classifies drift
between machines.

Guidelines:
- At the start of a session, call query with the definition you are working
  on to recover rationale and open troubleshooting entries before suggesting
  config changes.
- After changing a config file, call ingest_snapshot with the new content
  hash so drift stays accurate.
- When the user explains WHY a setting exists, save it with annotate
  (kind=rationale) against the definition or snapshot it concerns.
- When the user reports a config problem, save it with annotate
  (kind=troubleshooting); when it is fixed, call resolve_annotation pointing
  at the fixing snapshot or annotation.
- Call compute_drift to see which machines diverge and whether a divergence
  is already explained by a rationale. diverged_unexplained means you should
  ask the user whether the difference is intentional.`
}
