// Package snapshot contains the pure business logic for snapshot ingestion:
// observation-timeline ordering and no-op detection. No side effects.
package snapshot

// NextObservedAt returns the observed-at timestamp (unix nanoseconds) to
// record for a new snapshot, given the previous snapshot's timestamp for the
// same (definition, machine) pair. Timestamps for a pair are strictly
// increasing: on collision or clock regression the proposed value is bumped
// to prev+1.
func NextObservedAt(prev, proposed int64) int64 {
	if proposed > prev {
		return proposed
	}
	return prev + 1
}

// IsNoOp reports whether a new observation carries the same content hash as
// the machine's prior snapshot. No-op snapshots are still recorded, to keep
// the observation timeline truthful, but flagged so the drift engine can
// short-circuit.
func IsNoOp(prevHash, newHash string) bool {
	return prevHash != "" && prevHash == newHash
}
