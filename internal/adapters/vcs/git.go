// Package vcs provides the Git adapter for reading dotfiles repository state
// using go-git.
package vcs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/example/dotgraph/internal/ports/secondary"
)

// GitVCS implements secondary.VCS over a plain on-disk repository.
type GitVCS struct{}

// NewGitVCS creates a new Git VCS adapter.
func NewGitVCS() *GitVCS {
	return &GitVCS{}
}

// DetectType reports which VCS backs the repository at repoPath. A .jj
// marker wins over .git: jj colocates with git by keeping both directories,
// and the jj store is the authoritative one there.
func (g *GitVCS) DetectType(repoPath string) string {
	if info, err := os.Stat(filepath.Join(repoPath, ".jj")); err == nil && info.IsDir() {
		return secondary.VCSTypeJJ
	}
	// .git is a directory in a plain clone and a file in linked worktrees.
	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err == nil {
		return secondary.VCSTypeGit
	}
	return ""
}

// CurrentRevision returns the newest commit touching filePath, or nil when
// the file has no history yet.
func (g *GitVCS) CurrentRevision(ctx context.Context, repoPath, filePath string) (*secondary.Revision, error) {
	revisions, err := g.History(ctx, repoPath, filePath, 1)
	if err != nil {
		return nil, err
	}
	if len(revisions) == 0 {
		return nil, nil
	}
	return revisions[0], nil
}

// History returns up to limit commits touching filePath, newest first.
func (g *GitVCS) History(ctx context.Context, repoPath, filePath string, limit int) ([]*secondary.Revision, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", repoPath, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{
		From:     head.Hash(),
		FileName: &filePath,
		Order:    git.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	defer iter.Close()

	var revisions []*secondary.Revision
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		revisions = append(revisions, commitToRevision(c))
		if limit > 0 && len(revisions) >= limit {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk log: %w", err)
	}

	return revisions, nil
}

// IsDirty reports whether filePath has uncommitted modifications, staged or not.
func (g *GitVCS) IsDirty(ctx context.Context, repoPath, filePath string) (bool, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return false, fmt.Errorf("failed to open repository %s: %w", repoPath, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to open worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read worktree status: %w", err)
	}

	st := status.File(filePath)
	return st.Worktree != git.Unmodified || st.Staging != git.Unmodified, nil
}

func commitToRevision(c *object.Commit) *secondary.Revision {
	summary := c.Message
	if idx := strings.IndexByte(summary, '\n'); idx >= 0 {
		summary = summary[:idx]
	}
	return &secondary.Revision{
		ID:      c.Hash.String(),
		Author:  c.Author.Name,
		Summary: strings.TrimSpace(summary),
		When:    c.Author.When.UTC().Format(time.RFC3339),
	}
}
