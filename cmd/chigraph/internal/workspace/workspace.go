// SPDX-License-Identifier: MIT

// Package workspace locates a Chigraph workspace root and loads its
// configuration, following liuprestin-relurpify/cmd/internal/workspacecfg's
// split between a config-directory resolver and a typed config struct,
// generalized from relurpify's JSON workspace.json to Chigraph's
// gopkg.in/yaml.v3-based chigraph.yaml (spec §6: "a workspace is
// identified by containing a recognizable marker directory").
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MarkerDir is the directory whose presence identifies a workspace root
// (spec §6's "recognizable marker directory").
const MarkerDir = ".chigraph"

// ConfigFile is the workspace configuration file's name, stored inside
// MarkerDir.
const ConfigFile = "chigraph.yaml"

// SrcDir and LibDir are the workspace-relative directories spec §6's
// Environment paragraph names: "src/<module-path>.chimod for source and
// lib/<module-path>.bc for cache".
const (
	SrcDir = "src"
	LibDir = "lib"
)

// Config is the persisted workspace configuration (spec §6's
// chigraph.yaml): the set of dependency modules this workspace has
// fetched, plus stored compile settings. The compile and run commands
// take their settings from their own flags and do not read DebugInfo or
// Validate from here.
type Config struct {
	// Dependencies maps a module path to the source location `get` fetched
	// it from (a filesystem path or URL, opaque to Chigraph itself).
	Dependencies map[string]string `yaml:"dependencies,omitempty"`
	// DebugInfo records whether debug-line emission is wanted.
	DebugInfo bool `yaml:"debug_info"`
	// Validate records whether the validation pass is wanted.
	Validate bool `yaml:"validate"`
}

// Workspace is a resolved workspace root plus its loaded Config.
type Workspace struct {
	Root   string
	Config Config
}

// Find walks up from start looking for MarkerDir, following the same
// upward-search idiom as liuprestin-relurpify's setup package locating a
// project root. Returns the directory containing MarkerDir.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("workspace: resolve %s: %w", start, err)
	}
	for {
		marker := filepath.Join(dir, MarkerDir)
		if info, statErr := os.Stat(marker); statErr == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s directory above %s", ErrNotAWorkspace, MarkerDir, start)
		}
		dir = parent
	}
}

// Load resolves root's workspace (searching upward from root if it is
// not itself a marked workspace) and reads its Config.
func Load(root string) (*Workspace, error) {
	found, err := Find(root)
	if err != nil {
		return nil, err
	}
	cfgPath := filepath.Join(found, MarkerDir, ConfigFile)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Workspace{Root: found}, nil
		}
		return nil, fmt.Errorf("workspace: reading %s: %w", cfgPath, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("workspace: parsing %s: %w", cfgPath, err)
	}
	return &Workspace{Root: found, Config: cfg}, nil
}

// Save writes w.Config back to its marker directory, creating the
// directory if necessary.
func (w *Workspace) Save() error {
	dir := filepath.Join(w.Root, MarkerDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("workspace: mkdir %s: %w", dir, err)
	}
	data, err := yaml.Marshal(w.Config)
	if err != nil {
		return fmt.Errorf("workspace: marshaling config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ConfigFile), data, 0o644)
}

// Init creates a new workspace skeleton at root: the marker directory
// with a default chigraph.yaml, plus empty src/ and lib/ directories
// (spec §6's "init: create workspace skeleton").
func Init(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve %s: %w", root, err)
	}
	if info, statErr := os.Stat(filepath.Join(abs, MarkerDir)); statErr == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyAWorkspace, abs)
	}
	for _, dir := range []string{SrcDir, LibDir} {
		if err := os.MkdirAll(filepath.Join(abs, dir), 0o755); err != nil {
			return nil, fmt.Errorf("workspace: mkdir %s: %w", dir, err)
		}
	}
	w := &Workspace{Root: abs, Config: Config{Dependencies: map[string]string{}}}
	if err := w.Save(); err != nil {
		return nil, err
	}
	return w, nil
}

// SourcePath returns the .chimod file holding modulePath's source.
func (w *Workspace) SourcePath(modulePath string) string {
	return filepath.Join(w.Root, SrcDir, modulePath+".chimod")
}

// CacheDBPath and CacheDir locate the ModuleCache's SQLite index and
// bitcode directory respectively, both rooted at LibDir.
func (w *Workspace) CacheDBPath() string { return filepath.Join(w.Root, LibDir, "index.sqlite3") }
func (w *Workspace) CacheDir() string    { return filepath.Join(w.Root, LibDir) }
