// Package drift contains the pure classification logic of the drift engine.
// Everything here is deterministic and derived only from its inputs, so a
// recomputation over an unchanged graph yields an identical result.
package drift

import (
	"sort"

	"github.com/example/dotgraph/internal/core/graph"
)

// Observation is the latest snapshot of one definition on one machine, plus
// the rationale lookup the caller already performed against the graph.
type Observation struct {
	MachineID   string
	SnapshotID  string
	ContentHash string
	ObservedAt  int64 // unix nanoseconds
	NoOp        bool

	// RationaleID is the annotation justifying an intentional divergence
	// on this machine, empty when none exists.
	RationaleID string
}

// Input carries everything the classifier needs for one definition.
type Input struct {
	DefinitionID string

	// CanonicalHash is the explicit canonical content hash, empty if the
	// definition has not adopted one.
	CanonicalHash string

	// MajorityFallback permits deriving the canonical hash from a strict
	// plurality of machine hashes when no explicit canonical is set.
	MajorityFallback bool

	// FreshnessWindow is the stale threshold in nanoseconds, relative to
	// the newest observation across all machines.
	FreshnessWindow int64

	// Machines lists every tracked machine id; machines without an
	// observation are classified unknown.
	Machines []string

	// Observations maps machine id to its latest snapshot at or before the
	// report's generation time.
	Observations map[string]Observation
}

// MachineResult is the classification of a single machine.
type MachineResult struct {
	MachineID   string
	Class       graph.Classification
	SnapshotID  string
	ContentHash string
	ObservedAt  int64
	RationaleID string
}

// Result is the full, deterministic classification for one definition.
type Result struct {
	DefinitionID    string
	CanonicalHash   string
	CanonicalSource string // "explicit", "majority", or "none"
	GeneratedAt     int64  // newest observed-at among considered snapshots
	Machines        []MachineResult
}

// Compute classifies every tracked machine for a definition.
//
// Precedence per machine: unknown (no snapshot), in_sync (hash matches
// canonical), stale (older than the freshness window), then diverged:
// intentional when a rationale exists, unexplained otherwise.
func Compute(in Input) (*Result, error) {
	canonical, source, err := canonicalHash(in)
	if err != nil {
		return nil, err
	}

	var newest int64
	for _, obs := range in.Observations {
		if obs.ObservedAt > newest {
			newest = obs.ObservedAt
		}
	}

	machines := append([]string(nil), in.Machines...)
	sort.Strings(machines)

	results := make([]MachineResult, 0, len(machines))
	for _, id := range machines {
		obs, ok := in.Observations[id]
		if !ok {
			results = append(results, MachineResult{MachineID: id, Class: graph.ClassUnknown})
			continue
		}

		r := MachineResult{
			MachineID:   id,
			SnapshotID:  obs.SnapshotID,
			ContentHash: obs.ContentHash,
			ObservedAt:  obs.ObservedAt,
		}

		switch {
		case canonical != "" && obs.ContentHash == canonical:
			r.Class = graph.ClassInSync
		case in.FreshnessWindow > 0 && obs.ObservedAt < newest-in.FreshnessWindow:
			r.Class = graph.ClassStale
		case obs.RationaleID != "":
			r.Class = graph.ClassDivergedIntentional
			r.RationaleID = obs.RationaleID
		default:
			r.Class = graph.ClassDivergedUnexplained
		}

		results = append(results, r)
	}

	return &Result{
		DefinitionID:    in.DefinitionID,
		CanonicalHash:   canonical,
		CanonicalSource: source,
		GeneratedAt:     newest,
		Machines:        results,
	}, nil
}

// canonicalHash establishes the canonical content hash for the input.
// With no explicit canonical and the majority fallback enabled, a strict
// plurality of latest machine hashes wins; an exact tie fails rather than
// guessing. No observations at all yields no canonical (every machine is
// unknown anyway).
func canonicalHash(in Input) (hash, source string, err error) {
	if in.CanonicalHash != "" {
		return in.CanonicalHash, "explicit", nil
	}

	if len(in.Observations) == 0 {
		return "", "none", nil
	}

	if !in.MajorityFallback {
		return "", "", &graph.AmbiguousCanonicalError{
			DefinitionID: in.DefinitionID,
			Hashes:       observedHashes(in.Observations),
		}
	}

	counts := make(map[string]int)
	for _, obs := range in.Observations {
		counts[obs.ContentHash]++
	}

	best, bestCount, tied := "", 0, false
	for h, c := range counts {
		switch {
		case c > bestCount:
			best, bestCount, tied = h, c, false
		case c == bestCount && h != best:
			tied = true
		}
	}

	if tied {
		return "", "", &graph.AmbiguousCanonicalError{
			DefinitionID: in.DefinitionID,
			Hashes:       observedHashes(in.Observations),
		}
	}

	return best, "majority", nil
}

func observedHashes(obs map[string]Observation) []string {
	seen := make(map[string]bool)
	var hashes []string
	for _, o := range obs {
		if !seen[o.ContentHash] {
			seen[o.ContentHash] = true
			hashes = append(hashes, o.ContentHash)
		}
	}
	sort.Strings(hashes)
	return hashes
}
