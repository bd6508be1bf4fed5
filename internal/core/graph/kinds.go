// Package graph defines the entity and edge vocabulary of the knowledge
// graph, plus the typed error taxonomy shared by all services.
package graph

// EntityKind identifies a node type in the graph.
type EntityKind string

const (
	KindDefinition  EntityKind = "definition"
	KindMachine     EntityKind = "machine"
	KindSnapshot    EntityKind = "snapshot"
	KindAnnotation  EntityKind = "annotation"
	KindDriftReport EntityKind = "drift_report"
)

// EdgeKind identifies a typed relation between two entities.
type EdgeKind string

const (
	// EdgeSnapshotOf links a snapshot to its definition.
	EdgeSnapshotOf EdgeKind = "snapshot_of"
	// EdgeObservedOn links a snapshot to the machine it was observed on.
	EdgeObservedOn EdgeKind = "observed_on"
	// EdgeAnnotates links an annotation to its primary target.
	EdgeAnnotates EdgeKind = "annotates"
	// EdgeReferences links an annotation to a secondary target.
	EdgeReferences EdgeKind = "references"
	// EdgeResolvedBy links a resolved annotation to the entity that resolved it.
	EdgeResolvedBy EdgeKind = "resolved_by"
	// EdgeExplains links a drift report to an annotation justifying a classification.
	EdgeExplains EdgeKind = "explains"
	// EdgeReportsOn links a drift report to its subject definition.
	EdgeReportsOn EdgeKind = "reports_on"
)

// AnnotationKind discriminates the annotation variants.
type AnnotationKind string

const (
	AnnotationRationale       AnnotationKind = "rationale"
	AnnotationTroubleshooting AnnotationKind = "troubleshooting"
	AnnotationRoadmap         AnnotationKind = "roadmap"
	AnnotationBenchmark       AnnotationKind = "benchmark"
)

// ValidAnnotationKind reports whether k is a known annotation kind.
func ValidAnnotationKind(k AnnotationKind) bool {
	switch k {
	case AnnotationRationale, AnnotationTroubleshooting, AnnotationRoadmap, AnnotationBenchmark:
		return true
	}
	return false
}

// Resolvable reports whether annotations of kind k carry an open/resolved status.
func (k AnnotationKind) Resolvable() bool {
	return k == AnnotationTroubleshooting || k == AnnotationRoadmap
}

// Classification is the per-machine drift verdict.
type Classification string

const (
	ClassInSync              Classification = "in_sync"
	ClassDivergedIntentional Classification = "diverged_intentional"
	ClassDivergedUnexplained Classification = "diverged_unexplained"
	ClassStale               Classification = "stale"
	ClassUnknown             Classification = "unknown"
)
