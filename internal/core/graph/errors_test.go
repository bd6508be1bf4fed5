package graph

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundDetection(t *testing.T) {
	err := NotFound(KindDefinition, "shell/zshrc")
	if !IsNotFound(err) {
		t.Error("expected IsNotFound to be true")
	}

	wrapped := fmt.Errorf("ingest failed: %w", err)
	if !IsNotFound(wrapped) {
		t.Error("expected IsNotFound to see through wrapping")
	}

	if IsNotFound(errors.New("plain")) {
		t.Error("plain error should not be a NotFoundError")
	}
}

func TestConflictMessage(t *testing.T) {
	err := &ConflictError{Kind: KindDefinition, ID: "shell/zshrc"}
	if err.Error() != "definition shell/zshrc already exists" {
		t.Errorf("unexpected message: %s", err.Error())
	}

	withDetail := &ConflictError{Kind: KindSnapshot, ID: "abc", Detail: "duplicate timestamp"}
	if withDetail.Error() != "snapshot abc conflict: duplicate timestamp" {
		t.Errorf("unexpected message: %s", withDetail.Error())
	}
	if !IsConflict(fmt.Errorf("wrap: %w", withDetail)) {
		t.Error("expected IsConflict through wrapping")
	}
}

func TestInvalidTransition(t *testing.T) {
	err := &InvalidTransitionError{Kind: KindAnnotation, ID: "ANN-001", From: "resolved", To: "resolved"}
	if !IsInvalidTransition(err) {
		t.Error("expected IsInvalidTransition to be true")
	}
	if IsNotFound(err) {
		t.Error("transition error should not match NotFound")
	}
}

func TestAmbiguousCanonical(t *testing.T) {
	err := &AmbiguousCanonicalError{DefinitionID: "shell/zshrc", Hashes: []string{"h1", "h2"}}
	if !IsAmbiguousCanonical(err) {
		t.Error("expected IsAmbiguousCanonical to be true")
	}
}

func TestDegradedModeUnwraps(t *testing.T) {
	cause := errors.New("index backend down")
	warn := &DegradedModeWarning{Op: "annotate", Err: cause}
	if !errors.Is(warn, cause) {
		t.Error("expected warning to unwrap to its cause")
	}
}

func TestValidAnnotationKind(t *testing.T) {
	for _, k := range []AnnotationKind{AnnotationRationale, AnnotationTroubleshooting, AnnotationRoadmap, AnnotationBenchmark} {
		if !ValidAnnotationKind(k) {
			t.Errorf("expected %s to be valid", k)
		}
	}
	if ValidAnnotationKind("trial") {
		t.Error("unexpected valid kind")
	}
}

func TestResolvableKinds(t *testing.T) {
	if !AnnotationTroubleshooting.Resolvable() || !AnnotationRoadmap.Resolvable() {
		t.Error("troubleshooting and roadmap must be resolvable")
	}
	if AnnotationRationale.Resolvable() || AnnotationBenchmark.Resolvable() {
		t.Error("rationale and benchmark must not be resolvable")
	}
}
