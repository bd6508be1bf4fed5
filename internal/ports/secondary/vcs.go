package secondary

import "context"

// Known VCS types for DetectType.
const (
	VCSTypeGit = "git"
	VCSTypeJJ  = "jj"
)

// VCS defines the secondary port for reading version-control state. It is
// read-only: dotgraph interprets repository state, it never writes it.
type VCS interface {
	// DetectType reports which VCS backs the repository at repoPath:
	// VCSTypeGit, VCSTypeJJ, or "" when no repository marker is present.
	DetectType(repoPath string) string

	// CurrentRevision returns the revision currently checked out for a
	// file inside the repository at repoPath.
	CurrentRevision(ctx context.Context, repoPath, filePath string) (*Revision, error)

	// History returns up to limit revisions touching filePath, newest first.
	History(ctx context.Context, repoPath, filePath string, limit int) ([]*Revision, error)

	// IsDirty reports whether filePath has uncommitted modifications.
	IsDirty(ctx context.Context, repoPath, filePath string) (bool, error)
}

// Revision describes one version-control revision of a file.
type Revision struct {
	ID      string // commit hash
	Author  string
	Summary string
	When    string // RFC3339
}
