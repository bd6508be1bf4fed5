package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/example/dotgraph/internal/ports/primary"
)

// IngestTool exposes snapshot ingestion as an MCP tool.
type IngestTool struct {
	svc primary.IngestService
}

// NewIngestTool creates the ingest_snapshot tool.
func NewIngestTool(svc primary.IngestService) *IngestTool {
	return &IngestTool{svc: svc}
}

func (t *IngestTool) Definition() mcp.Tool {
	return mcp.NewTool("ingest_snapshot",
		mcp.WithDescription("Record an observation of a config definition on a machine. Idempotent: re-sending the same content hash records a no-op snapshot."),
		mcp.WithString("definition_path", mcp.Required(), mcp.Description("Logical config path, e.g. shell/zshrc")),
		mcp.WithString("machine_id", mcp.Required(), mcp.Description("Machine identity the state was observed on")),
		mcp.WithString("content_hash", mcp.Required(), mcp.Description("Content hash of the observed file state")),
		mcp.WithString("revision_id", mcp.Description("VCS revision the state corresponds to, if known")),
		mcp.WithString("diff_ref", mcp.Description("Reference to a diff against the prior snapshot")),
		mcp.WithNumber("observed_at", mcp.Description("Observation time in unix nanoseconds; omit for now")),
	)
}

func (t *IngestTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defPath, err := req.RequireString("definition_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	machineID, err := req.RequireString("machine_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	contentHash, err := req.RequireString("content_hash")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := t.svc.IngestSnapshot(ctx, primary.IngestSnapshotRequest{
		DefinitionPath: defPath,
		MachineID:      machineID,
		ContentHash:    contentHash,
		RevisionID:     req.GetString("revision_id", ""),
		DiffRef:        req.GetString("diff_ref", ""),
		ObservedAt:     int64(req.GetFloat("observed_at", 0)),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(resp)
}

// AnnotateTool exposes annotation creation as an MCP tool.
type AnnotateTool struct {
	svc primary.AnnotationService
}

// NewAnnotateTool creates the annotate tool.
func NewAnnotateTool(svc primary.AnnotationService) *AnnotateTool {
	return &AnnotateTool{svc: svc}
}

func (t *AnnotateTool) Definition() mcp.Tool {
	return mcp.NewTool("annotate",
		mcp.WithDescription("Attach typed knowledge (rationale, troubleshooting, roadmap, benchmark) to any graph entity. The structural write always succeeds or fails atomically; semantic indexing degrades gracefully."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("One of rationale, troubleshooting, roadmap, benchmark")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Free-text knowledge content")),
		mcp.WithString("primary_id", mcp.Required(), mcp.Description("Entity the annotation is about")),
		mcp.WithArray("secondary_ids", mcp.Description("Additional entities the annotation references"), mcp.WithStringItems()),
		mcp.WithString("source", mcp.Description("Provenance, e.g. user, vcs-history")),
		mcp.WithNumber("metric_value", mcp.Description("Benchmark metric value; required for kind benchmark")),
		mcp.WithString("metric_unit", mcp.Description("Benchmark metric unit, e.g. ms")),
		mcp.WithString("priority", mcp.Description("Roadmap priority: LOW, MEDIUM, or HIGH")),
		mcp.WithNumber("trial_days", mcp.Description("Roadmap trial period in days")),
		mcp.WithString("trial_criteria", mcp.Description("Roadmap trial success criteria")),
	)
}

func (t *AnnotateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	primaryID, err := req.RequireString("primary_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	areq := primary.AnnotateRequest{
		Kind:          kind,
		Body:          body,
		PrimaryID:     primaryID,
		SecondaryIDs:  req.GetStringSlice("secondary_ids", nil),
		Source:        req.GetString("source", "user"),
		MetricUnit:    req.GetString("metric_unit", ""),
		Priority:      req.GetString("priority", ""),
		TrialDays:     req.GetInt("trial_days", 0),
		TrialCriteria: req.GetString("trial_criteria", ""),
	}
	if args := req.GetArguments(); args != nil {
		if _, ok := args["metric_value"]; ok {
			areq.MetricValue = req.GetFloat("metric_value", 0)
			areq.HasMetric = true
		}
	}

	resp, err := t.svc.Annotate(ctx, areq)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(resp)
}

// ResolveTool exposes annotation resolution as an MCP tool.
type ResolveTool struct {
	svc primary.AnnotationService
}

// NewResolveTool creates the resolve_annotation tool.
func NewResolveTool(svc primary.AnnotationService) *ResolveTool {
	return &ResolveTool{svc: svc}
}

func (t *ResolveTool) Definition() mcp.Tool {
	return mcp.NewTool("resolve_annotation",
		mcp.WithDescription("Resolve an open troubleshooting or roadmap annotation, recording which entity resolved it."),
		mcp.WithString("annotation_id", mcp.Required(), mcp.Description("Annotation to resolve, e.g. ANN-004")),
		mcp.WithString("resolved_by_id", mcp.Required(), mcp.Description("Entity that resolved it (snapshot, annotation, definition, machine)")),
	)
}

func (t *ResolveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	annID, err := req.RequireString("annotation_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resolvedBy, err := req.RequireString("resolved_by_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.svc.ResolveAnnotation(ctx, primary.ResolveAnnotationRequest{
		AnnotationID: annID,
		ResolvedByID: resolvedBy,
	}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("resolved %s by %s", annID, resolvedBy)), nil
}

// DriftTool exposes drift computation as an MCP tool.
type DriftTool struct {
	svc primary.DriftService
}

// NewDriftTool creates the compute_drift tool.
func NewDriftTool(svc primary.DriftService) *DriftTool {
	return &DriftTool{svc: svc}
}

func (t *DriftTool) Definition() mcp.Tool {
	return mcp.NewTool("compute_drift",
		mcp.WithDescription("Classify every tracked machine for a definition (in_sync, diverged_intentional, diverged_unexplained, stale, unknown) and replace the stored drift report. Deterministic and idempotent."),
		mcp.WithString("definition_path", mcp.Required(), mcp.Description("Definition to classify, e.g. shell/zshrc")),
	)
}

func (t *DriftTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defPath, err := req.RequireString("definition_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report, err := t.svc.ComputeDrift(ctx, defPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

// QueryTool exposes the graph query facade as an MCP tool.
type QueryTool struct {
	svc primary.QueryService
}

// NewQueryTool creates the query tool.
func NewQueryTool(svc primary.QueryService) *QueryTool {
	return &QueryTool{svc: svc}
}

func (t *QueryTool) Definition() mcp.Tool {
	return mcp.NewTool("query",
		mcp.WithDescription("Search the knowledge graph: structural filters plus best-effort semantic search over annotation bodies. Structural matches come first."),
		mcp.WithString("text", mcp.Description("Search text for substring and semantic matching")),
		mcp.WithArray("kinds", mcp.Description("Restrict to annotation kinds"), mcp.WithStringItems()),
		mcp.WithString("definition_path", mcp.Description("Restrict to annotations touching this definition or its snapshots")),
		mcp.WithBoolean("open_only", mcp.Description("Only unresolved troubleshooting/roadmap entries")),
		mcp.WithNumber("since_days", mcp.Description("Only entries created in the last N days")),
		mcp.WithNumber("limit", mcp.Description("Maximum results, default 20")),
	)
}

func (t *QueryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := t.svc.Query(ctx, primary.QueryRequest{
		Text:           req.GetString("text", ""),
		Kinds:          req.GetStringSlice("kinds", nil),
		DefinitionPath: req.GetString("definition_path", ""),
		OpenOnly:       req.GetBool("open_only", false),
		SinceDays:      req.GetInt("since_days", 0),
		Limit:          req.GetInt("limit", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(resp)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
