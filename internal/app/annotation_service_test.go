package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/example/dotgraph/internal/core/graph"
	"github.com/example/dotgraph/internal/ports/primary"
)

func newTestAnnotationService() (*AnnotationServiceImpl, *mockResolver, *mockEdgeRepository, *mockSemanticIndex) {
	edgeRepo := newMockEdgeRepository()
	annRepo := newMockAnnotationRepository(edgeRepo)
	resolver := newMockResolver()
	index := newMockSemanticIndex()
	return NewAnnotationService(annRepo, edgeRepo, resolver, index), resolver, edgeRepo, index
}

func TestAnnotateCreatesRationale(t *testing.T) {
	svc, resolver, edgeRepo, index := newTestAnnotationService()
	resolver.add("shell/zshrc", graph.KindDefinition)
	resolver.add("laptop", graph.KindMachine)

	resp, err := svc.Annotate(context.Background(), primary.AnnotateRequest{
		Kind:         "rationale",
		Body:         "vi mode conflicts with fzf bindings on this machine",
		Source:       "user",
		PrimaryID:    "shell/zshrc",
		SecondaryIDs: []string{"laptop"},
	})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	ann := resp.Annotation
	if ann.ID != "ANN-001" {
		t.Errorf("expected ANN-001, got %s", ann.ID)
	}
	if ann.Status != "" {
		t.Errorf("rationale must carry no status, got %q", ann.Status)
	}
	if len(ann.SecondaryIDs) != 1 || ann.SecondaryIDs[0] != "laptop" {
		t.Errorf("unexpected secondary ids: %v", ann.SecondaryIDs)
	}
	if resp.DegradedWarning != "" {
		t.Errorf("unexpected degraded warning: %s", resp.DegradedWarning)
	}

	if !edgeRepo.has(graph.EdgeAnnotates, "ANN-001", "shell/zshrc") {
		t.Error("missing annotates edge")
	}
	if !edgeRepo.has(graph.EdgeReferences, "ANN-001", "laptop") {
		t.Error("missing references edge")
	}
	if _, ok := index.indexed["ANN-001"]; !ok {
		t.Error("body was not indexed")
	}
}

func TestAnnotateTroubleshootingOpensStatus(t *testing.T) {
	svc, resolver, _, _ := newTestAnnotationService()
	resolver.add("shell/zshrc", graph.KindDefinition)

	resp, err := svc.Annotate(context.Background(), primary.AnnotateRequest{
		Kind:      "troubleshooting",
		Body:      "prompt renders garbage after tmux attach",
		PrimaryID: "shell/zshrc",
	})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if resp.Annotation.Status != "open" {
		t.Errorf("expected open status, got %q", resp.Annotation.Status)
	}
}

func TestAnnotateUnknownPrimaryFails(t *testing.T) {
	svc, _, _, _ := newTestAnnotationService()

	_, err := svc.Annotate(context.Background(), primary.AnnotateRequest{
		Kind:      "rationale",
		Body:      "some body",
		PrimaryID: "ghost/path",
	})
	if !graph.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestAnnotateUnknownSecondaryFails(t *testing.T) {
	svc, resolver, _, _ := newTestAnnotationService()
	resolver.add("shell/zshrc", graph.KindDefinition)

	_, err := svc.Annotate(context.Background(), primary.AnnotateRequest{
		Kind:         "rationale",
		Body:         "some body",
		PrimaryID:    "shell/zshrc",
		SecondaryIDs: []string{"ghost-machine"},
	})
	if !graph.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestAnnotateBenchmarkRequiresMetric(t *testing.T) {
	svc, resolver, _, _ := newTestAnnotationService()
	resolver.add("shell/zshrc", graph.KindDefinition)

	_, err := svc.Annotate(context.Background(), primary.AnnotateRequest{
		Kind:      "benchmark",
		Body:      "startup feels faster",
		PrimaryID: "shell/zshrc",
	})
	if err == nil {
		t.Fatal("expected error for benchmark without metric")
	}

	resp, err := svc.Annotate(context.Background(), primary.AnnotateRequest{
		Kind:        "benchmark",
		Body:        "zsh startup time after lazy-loading nvm",
		PrimaryID:   "shell/zshrc",
		MetricValue: 180,
		MetricUnit:  "ms",
		HasMetric:   true,
	})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if resp.Annotation.MetricValue != 180 || resp.Annotation.MetricUnit != "ms" {
		t.Errorf("metric not recorded: %+v", resp.Annotation)
	}
}

func TestAnnotateInvalidKindFails(t *testing.T) {
	svc, resolver, _, _ := newTestAnnotationService()
	resolver.add("shell/zshrc", graph.KindDefinition)

	_, err := svc.Annotate(context.Background(), primary.AnnotateRequest{
		Kind:      "opinion",
		Body:      "some body",
		PrimaryID: "shell/zshrc",
	})
	if err == nil {
		t.Error("expected error for unknown annotation kind")
	}
}

func TestAnnotateIndexFailureDegrades(t *testing.T) {
	svc, resolver, _, index := newTestAnnotationService()
	resolver.add("shell/zshrc", graph.KindDefinition)
	index.indexErr = errors.New("index unavailable")

	resp, err := svc.Annotate(context.Background(), primary.AnnotateRequest{
		Kind:      "rationale",
		Body:      "some body",
		PrimaryID: "shell/zshrc",
	})
	if err != nil {
		t.Fatalf("structural write must survive index failure: %v", err)
	}
	if resp.Annotation == nil {
		t.Fatal("expected annotation despite degraded index")
	}
	if resp.DegradedWarning == "" {
		t.Error("expected degraded warning")
	}
}

func TestResolveAnnotation(t *testing.T) {
	svc, resolver, edgeRepo, _ := newTestAnnotationService()
	resolver.add("shell/zshrc", graph.KindDefinition)

	created, err := svc.Annotate(context.Background(), primary.AnnotateRequest{
		Kind:      "troubleshooting",
		Body:      "prompt renders garbage after tmux attach",
		PrimaryID: "shell/zshrc",
	})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	annID := created.Annotation.ID
	resolver.add(annID, graph.KindAnnotation)

	fix, err := svc.Annotate(context.Background(), primary.AnnotateRequest{
		Kind:      "rationale",
		Body:      "set TERM=tmux-256color in tmux.conf",
		PrimaryID: "shell/zshrc",
	})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	resolver.add(fix.Annotation.ID, graph.KindAnnotation)

	if err := svc.ResolveAnnotation(context.Background(), primary.ResolveAnnotationRequest{
		AnnotationID: annID,
		ResolvedByID: fix.Annotation.ID,
	}); err != nil {
		t.Fatalf("ResolveAnnotation failed: %v", err)
	}

	ann, err := svc.GetAnnotation(context.Background(), annID)
	if err != nil {
		t.Fatalf("GetAnnotation failed: %v", err)
	}
	if ann.Status != "resolved" || ann.ResolvedByID != fix.Annotation.ID {
		t.Errorf("resolution not recorded: %+v", ann)
	}
	if !edgeRepo.has(graph.EdgeResolvedBy, annID, fix.Annotation.ID) {
		t.Error("missing resolved_by edge")
	}
}

func TestResolveAnnotationTwiceFails(t *testing.T) {
	svc, resolver, _, _ := newTestAnnotationService()
	resolver.add("shell/zshrc", graph.KindDefinition)

	created, _ := svc.Annotate(context.Background(), primary.AnnotateRequest{
		Kind: "troubleshooting", Body: "issue", PrimaryID: "shell/zshrc",
	})
	annID := created.Annotation.ID
	resolver.add(annID, graph.KindAnnotation)

	req := primary.ResolveAnnotationRequest{AnnotationID: annID, ResolvedByID: "shell/zshrc"}
	if err := svc.ResolveAnnotation(context.Background(), req); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}

	err := svc.ResolveAnnotation(context.Background(), req)
	if !graph.IsInvalidTransition(err) {
		t.Errorf("expected InvalidTransitionError, got %v", err)
	}
}

func TestResolveNonResolvableKindFails(t *testing.T) {
	svc, resolver, _, _ := newTestAnnotationService()
	resolver.add("shell/zshrc", graph.KindDefinition)

	created, _ := svc.Annotate(context.Background(), primary.AnnotateRequest{
		Kind: "rationale", Body: "some body", PrimaryID: "shell/zshrc",
	})

	err := svc.ResolveAnnotation(context.Background(), primary.ResolveAnnotationRequest{
		AnnotationID: created.Annotation.ID,
		ResolvedByID: "shell/zshrc",
	})
	if !graph.IsInvalidTransition(err) {
		t.Errorf("expected InvalidTransitionError, got %v", err)
	}
}

func TestResolveUnknownAnnotationFails(t *testing.T) {
	svc, _, _, _ := newTestAnnotationService()

	err := svc.ResolveAnnotation(context.Background(), primary.ResolveAnnotationRequest{
		AnnotationID: "ANN-999",
		ResolvedByID: "whatever",
	})
	if !graph.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestListAnnotationsByKind(t *testing.T) {
	svc, resolver, _, _ := newTestAnnotationService()
	resolver.add("shell/zshrc", graph.KindDefinition)

	svc.Annotate(context.Background(), primary.AnnotateRequest{Kind: "rationale", Body: "a", PrimaryID: "shell/zshrc"})
	svc.Annotate(context.Background(), primary.AnnotateRequest{Kind: "troubleshooting", Body: "b", PrimaryID: "shell/zshrc"})

	anns, err := svc.ListAnnotations(context.Background(), primary.AnnotationFilters{Kind: "rationale"})
	if err != nil {
		t.Fatalf("ListAnnotations failed: %v", err)
	}
	if len(anns) != 1 || anns[0].Kind != "rationale" {
		t.Errorf("unexpected listing: %+v", anns)
	}
}

func TestAnnotateFailedWriteLeavesNothingBehind(t *testing.T) {
	svc, resolver, edgeRepo, _ := newTestAnnotationService()
	resolver.add("shell/zshrc", graph.KindDefinition)
	edgeRepo.createErr = errors.New("disk full")

	_, err := svc.Annotate(context.Background(), primary.AnnotateRequest{
		Kind:      "rationale",
		Body:      "some body",
		PrimaryID: "shell/zshrc",
	})
	if err == nil {
		t.Fatal("expected the write to fail")
	}

	// A failed write must not leave a half-linked annotation discoverable.
	if _, err := svc.GetAnnotation(context.Background(), "ANN-001"); !graph.IsNotFound(err) {
		t.Errorf("annotation survived a failed write: %v", err)
	}
	if edgeRepo.has(graph.EdgeAnnotates, "ANN-001", "shell/zshrc") {
		t.Error("annotates edge survived a failed write")
	}
}

func TestAnnotateConcurrentWritesGetDistinctIDs(t *testing.T) {
	svc, resolver, _, _ := newTestAnnotationService()
	resolver.add("shell/zshrc", graph.KindDefinition)

	const n = 8
	ids := make(chan string, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.Annotate(context.Background(), primary.AnnotateRequest{
				Kind:      "rationale",
				Body:      "some body",
				PrimaryID: "shell/zshrc",
			})
			if err != nil {
				errs <- err
				return
			}
			ids <- resp.Annotation.ID
		}()
	}
	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Annotate failed: %v", err)
	}
	seen := map[string]bool{}
	for id := range ids {
		if seen[id] {
			t.Errorf("id %s allocated twice", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("expected %d annotations, got %d", n, len(seen))
	}
}
