// Package manifest loads the dotfiles scan manifest. The manifest maps
// logical definition paths to files inside a dotfiles repository, so a scan
// knows what to hash and ingest.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the manifest file looked up inside the dotfiles repo.
const DefaultFileName = "dotfiles.yaml"

// Manifest describes a dotfiles repository and its tracked definitions.
type Manifest struct {
	// Repo is the dotfiles repository root. Relative entry files resolve
	// against it.
	Repo string `yaml:"repo"`

	// Definitions maps logical definition path to its manifest entry.
	Definitions map[string]Entry `yaml:"definitions"`
}

// Entry is one tracked file in the manifest.
type Entry struct {
	// File is the path of the tracked file, relative to the repo root.
	File string   `yaml:"file"`
	Tags []string `yaml:"tags,omitempty"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	if m.Repo == "" {
		// Manifest next to the repo it describes is the common layout.
		m.Repo = filepath.Dir(path)
	}
	if len(m.Definitions) == 0 {
		return nil, fmt.Errorf("manifest %s tracks no definitions", path)
	}
	for defPath, entry := range m.Definitions {
		if entry.File == "" {
			return nil, fmt.Errorf("manifest entry %s has no file", defPath)
		}
	}

	return &m, nil
}

// Paths returns the logical definition paths in sorted order, so scans walk
// the manifest deterministically.
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.Definitions))
	for p := range m.Definitions {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// FilePath resolves an entry's file against the repo root.
func (m *Manifest) FilePath(defPath string) string {
	entry := m.Definitions[defPath]
	if filepath.IsAbs(entry.File) {
		return entry.File
	}
	return filepath.Join(m.Repo, entry.File)
}
