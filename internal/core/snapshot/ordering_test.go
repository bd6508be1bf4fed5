package snapshot

import "testing"

func TestNextObservedAt(t *testing.T) {
	tests := []struct {
		name     string
		prev     int64
		proposed int64
		want     int64
	}{
		{name: "strictly newer proposal is kept", prev: 100, proposed: 200, want: 200},
		{name: "equal timestamp is bumped", prev: 100, proposed: 100, want: 101},
		{name: "clock regression is bumped", prev: 100, proposed: 50, want: 101},
		{name: "first snapshot with no prior", prev: 0, proposed: 42, want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextObservedAt(tt.prev, tt.proposed)
			if got != tt.want {
				t.Errorf("NextObservedAt(%d, %d) = %d, want %d", tt.prev, tt.proposed, got, tt.want)
			}
		})
	}
}

func TestIsNoOp(t *testing.T) {
	if !IsNoOp("h1", "h1") {
		t.Error("same hash should be a no-op")
	}
	if IsNoOp("h1", "h2") {
		t.Error("different hash should not be a no-op")
	}
	if IsNoOp("", "h1") {
		t.Error("first observation is never a no-op")
	}
}
