// Package annotation contains the pure business logic for annotation
// operations. Guards are pure functions that evaluate preconditions without
// side effects.
package annotation

import (
	"fmt"

	"github.com/example/dotgraph/internal/core/graph"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CreateContext provides context for annotation creation guards.
type CreateContext struct {
	Kind          graph.AnnotationKind
	Body          string
	PrimaryExists bool
	PrimaryID     string
	HasMetric     bool
}

// ResolveContext provides context for annotation resolution guards.
type ResolveContext struct {
	AnnotationID     string
	Kind             graph.AnnotationKind
	Status           string // "open" or "resolved"
	ResolvedByExists bool
	ResolvedByID     string
}

// CanCreate evaluates whether an annotation can be created.
// Rules:
// - Kind must be one of the four known variants
// - Body must be non-empty
// - Primary target must exist
// - Benchmark annotations require a numeric metric payload
func CanCreate(ctx CreateContext) GuardResult {
	if !graph.ValidAnnotationKind(ctx.Kind) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown annotation kind: %s", ctx.Kind),
		}
	}

	if ctx.Body == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "annotation body must not be empty",
		}
	}

	if !ctx.PrimaryExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("primary target %s not found", ctx.PrimaryID),
		}
	}

	if ctx.Kind == graph.AnnotationBenchmark && !ctx.HasMetric {
		return GuardResult{
			Allowed: false,
			Reason:  "benchmark annotations require a numeric metric payload",
		}
	}

	return GuardResult{Allowed: true}
}

// InitialStatus returns the status a new annotation of kind k starts in.
// Resolvable kinds open, everything else has no lifecycle.
func InitialStatus(k graph.AnnotationKind) string {
	if k.Resolvable() {
		return "open"
	}
	return ""
}

// CanResolve evaluates whether an annotation can transition open -> resolved.
// Rules:
// - Kind must be resolvable (troubleshooting, roadmap)
// - Status must be "open"
// - The resolving entity must exist
func CanResolve(ctx ResolveContext) GuardResult {
	if !ctx.Kind.Resolvable() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("annotation %s of kind %s has no resolution lifecycle", ctx.AnnotationID, ctx.Kind),
		}
	}

	if ctx.Status != "open" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("annotation %s is already %s", ctx.AnnotationID, ctx.Status),
		}
	}

	if !ctx.ResolvedByExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("resolving entity %s not found", ctx.ResolvedByID),
		}
	}

	return GuardResult{Allowed: true}
}
