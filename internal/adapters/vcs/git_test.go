package vcs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/example/dotgraph/internal/ports/secondary"
)

func initTestRepo(t *testing.T) (string, *git.Worktree) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to open worktree: %v", err)
	}
	return dir, worktree
}

func commitFile(t *testing.T, dir string, worktree *git.Worktree, rel, content, message string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := worktree.Add(rel); err != nil {
		t.Fatalf("failed to add file: %v", err)
	}
	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return hash.String()
}

func TestHistoryNewestFirst(t *testing.T) {
	dir, worktree := initTestRepo(t)
	commitFile(t, dir, worktree, "zsh/.zshrc", "v1\n", "add zshrc")
	second := commitFile(t, dir, worktree, "zsh/.zshrc", "v2\n", "lazy-load nvm")

	vcs := NewGitVCS()
	revisions, err := vcs.History(context.Background(), dir, "zsh/.zshrc", 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	if len(revisions) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(revisions))
	}
	if revisions[0].ID != second {
		t.Errorf("expected newest first, got %s", revisions[0].ID)
	}
	if revisions[0].Summary != "lazy-load nvm" {
		t.Errorf("unexpected summary: %q", revisions[0].Summary)
	}
	if revisions[0].Author != "tester" {
		t.Errorf("unexpected author: %q", revisions[0].Author)
	}
}

func TestHistoryRespectsLimit(t *testing.T) {
	dir, worktree := initTestRepo(t)
	commitFile(t, dir, worktree, "zsh/.zshrc", "v1\n", "one")
	commitFile(t, dir, worktree, "zsh/.zshrc", "v2\n", "two")
	commitFile(t, dir, worktree, "zsh/.zshrc", "v3\n", "three")

	vcs := NewGitVCS()
	revisions, err := vcs.History(context.Background(), dir, "zsh/.zshrc", 2)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(revisions) != 2 {
		t.Errorf("expected 2 revisions, got %d", len(revisions))
	}
}

func TestHistoryFiltersByFile(t *testing.T) {
	dir, worktree := initTestRepo(t)
	commitFile(t, dir, worktree, "zsh/.zshrc", "v1\n", "zshrc change")
	commitFile(t, dir, worktree, "nvim/init.lua", "v1\n", "nvim change")

	vcs := NewGitVCS()
	revisions, err := vcs.History(context.Background(), dir, "zsh/.zshrc", 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(revisions) != 1 || revisions[0].Summary != "zshrc change" {
		t.Errorf("unexpected history: %+v", revisions)
	}
}

func TestCurrentRevision(t *testing.T) {
	dir, worktree := initTestRepo(t)
	hash := commitFile(t, dir, worktree, "zsh/.zshrc", "v1\n", "add zshrc")

	vcs := NewGitVCS()
	rev, err := vcs.CurrentRevision(context.Background(), dir, "zsh/.zshrc")
	if err != nil {
		t.Fatalf("CurrentRevision failed: %v", err)
	}
	if rev == nil || rev.ID != hash {
		t.Errorf("unexpected revision: %+v", rev)
	}
}

func TestIsDirty(t *testing.T) {
	dir, worktree := initTestRepo(t)
	commitFile(t, dir, worktree, "zsh/.zshrc", "v1\n", "add zshrc")

	vcs := NewGitVCS()
	dirty, err := vcs.IsDirty(context.Background(), dir, "zsh/.zshrc")
	if err != nil {
		t.Fatalf("IsDirty failed: %v", err)
	}
	if dirty {
		t.Error("freshly committed file must be clean")
	}

	if err := os.WriteFile(filepath.Join(dir, "zsh/.zshrc"), []byte("v2\n"), 0o644); err != nil {
		t.Fatalf("failed to modify file: %v", err)
	}
	dirty, err = vcs.IsDirty(context.Background(), dir, "zsh/.zshrc")
	if err != nil {
		t.Fatalf("IsDirty failed: %v", err)
	}
	if !dirty {
		t.Error("modified file must be dirty")
	}
}

func TestDetectType(t *testing.T) {
	vcs := NewGitVCS()

	gitDir, _ := initTestRepo(t)
	if got := vcs.DetectType(gitDir); got != secondary.VCSTypeGit {
		t.Errorf("git repo detected as %q", got)
	}

	jjDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(jjDir, ".jj"), 0o755); err != nil {
		t.Fatalf("failed to create .jj: %v", err)
	}
	if got := vcs.DetectType(jjDir); got != secondary.VCSTypeJJ {
		t.Errorf("jj repo detected as %q", got)
	}

	// Colocated repos keep both markers; jj owns the store there.
	colocated, _ := initTestRepo(t)
	if err := os.Mkdir(filepath.Join(colocated, ".jj"), 0o755); err != nil {
		t.Fatalf("failed to create .jj: %v", err)
	}
	if got := vcs.DetectType(colocated); got != secondary.VCSTypeJJ {
		t.Errorf("colocated repo detected as %q", got)
	}

	if got := vcs.DetectType(t.TempDir()); got != "" {
		t.Errorf("bare directory detected as %q", got)
	}
}
