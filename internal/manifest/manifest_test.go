package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

func TestLoadValidManifest(t *testing.T) {
	path := writeManifest(t, `
repo: /home/user/dotfiles
definitions:
  shell/zshrc:
    file: zsh/.zshrc
    tags: [shell, zsh]
  editor/nvim:
    file: nvim/init.lua
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Repo != "/home/user/dotfiles" {
		t.Errorf("expected repo /home/user/dotfiles, got %s", m.Repo)
	}
	if len(m.Definitions) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(m.Definitions))
	}
	if got := m.Definitions["shell/zshrc"].File; got != "zsh/.zshrc" {
		t.Errorf("expected file zsh/.zshrc, got %s", got)
	}
	if tags := m.Definitions["shell/zshrc"].Tags; len(tags) != 2 || tags[0] != "shell" {
		t.Errorf("unexpected tags: %v", tags)
	}
}

func TestLoadDefaultsRepoToManifestDir(t *testing.T) {
	path := writeManifest(t, `
definitions:
  shell/zshrc:
    file: zsh/.zshrc
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Repo != filepath.Dir(path) {
		t.Errorf("expected repo %s, got %s", filepath.Dir(path), m.Repo)
	}
}

func TestLoadRejectsEmptyManifest(t *testing.T) {
	path := writeManifest(t, "repo: /tmp/dotfiles\n")

	if _, err := Load(path); err == nil {
		t.Error("expected error for manifest with no definitions")
	}
}

func TestLoadRejectsEntryWithoutFile(t *testing.T) {
	path := writeManifest(t, `
definitions:
  shell/zshrc:
    tags: [shell]
`)

	if _, err := Load(path); err == nil {
		t.Error("expected error for entry without file")
	}
}

func TestPathsAreSorted(t *testing.T) {
	m := &Manifest{Definitions: map[string]Entry{
		"shell/zshrc": {File: "a"},
		"editor/nvim": {File: "b"},
		"git/config":  {File: "c"},
	}}

	paths := m.Paths()
	want := []string{"editor/nvim", "git/config", "shell/zshrc"}
	for i, p := range want {
		if paths[i] != p {
			t.Fatalf("expected paths %v, got %v", want, paths)
		}
	}
}

func TestFilePathResolution(t *testing.T) {
	m := &Manifest{
		Repo: "/home/user/dotfiles",
		Definitions: map[string]Entry{
			"shell/zshrc":  {File: "zsh/.zshrc"},
			"system/hosts": {File: "/etc/hosts"},
		},
	}

	if got := m.FilePath("shell/zshrc"); got != "/home/user/dotfiles/zsh/.zshrc" {
		t.Errorf("unexpected relative resolution: %s", got)
	}
	if got := m.FilePath("system/hosts"); got != "/etc/hosts" {
		t.Errorf("absolute file must pass through, got %s", got)
	}
}
