package primary

import "context"

// AnnotationService defines the primary port for annotation operations.
type AnnotationService interface {
	// Annotate attaches typed knowledge to a graph entity. The structural
	// write is authoritative; semantic indexing is best-effort and its
	// failure is reported via the response warning, not an error.
	Annotate(ctx context.Context, req AnnotateRequest) (*AnnotateResponse, error)

	// ResolveAnnotation transitions an open troubleshooting or roadmap
	// annotation to resolved, recording what resolved it.
	ResolveAnnotation(ctx context.Context, req ResolveAnnotationRequest) error

	// GetAnnotation retrieves an annotation by id.
	GetAnnotation(ctx context.Context, id string) (*Annotation, error)

	// ListAnnotations lists annotations with optional filters.
	ListAnnotations(ctx context.Context, filters AnnotationFilters) ([]*Annotation, error)
}

// AnnotateRequest contains parameters for creating an annotation.
type AnnotateRequest struct {
	Kind         string // rationale, troubleshooting, roadmap, benchmark
	Body         string
	Source       string
	PrimaryID    string
	SecondaryIDs []string

	// Benchmark payload.
	MetricValue float64
	MetricUnit  string
	HasMetric   bool

	// Roadmap extras.
	Priority      string // LOW, MEDIUM, HIGH
	TrialDays     int
	TrialCriteria string
}

// AnnotateResponse contains the result of creating an annotation.
type AnnotateResponse struct {
	Annotation *Annotation
	// DegradedWarning is non-empty when the structural write succeeded but
	// semantic indexing was unavailable.
	DegradedWarning string
}

// ResolveAnnotationRequest contains parameters for resolving an annotation.
type ResolveAnnotationRequest struct {
	AnnotationID string
	ResolvedByID string
}

// Annotation represents an annotation entity at the port boundary.
type Annotation struct {
	ID            string
	Kind          string
	Body          string
	Source        string
	Status        string
	PrimaryID     string
	PrimaryKind   string
	SecondaryIDs  []string
	ResolvedByID  string
	MetricValue   float64
	MetricUnit    string
	HasMetric     bool
	Priority      string
	TrialDays     int
	TrialCriteria string
	CreatedAt     string
	ResolvedAt    string
}

// AnnotationFilters contains filter options for listing annotations.
type AnnotationFilters struct {
	Kind      string
	Status    string
	PrimaryID string
	Limit     int
}
