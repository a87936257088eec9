package store

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
)

// Mode selects how the active store's directory is resolved.
type Mode string

const (
	// ModeInRepo names the store after the nearest ancestor directory
	// containing a .git entry; if none is found, it falls back to the
	// centralized location under the user's home.
	ModeInRepo Mode = "in-repo"
	// ModeCentralized names the store by a deterministic project key
	// derived from the repo or working-directory name, under a single
	// central home directory.
	ModeCentralized Mode = "centralized"
)

const centralDirName = ".dex"

// ResolveDir returns the directory that will hold tasks.jsonl,
// archive.jsonl, and sync-state.json for the given mode, starting the
// search for a repo root at startDir.
func ResolveDir(mode Mode, startDir string) (string, error) {
	switch mode {
	case ModeCentralized:
		return centralizedDir(startDir)
	default:
		if repoRoot := findRepoRoot(startDir); repoRoot != "" {
			return filepath.Join(repoRoot, centralDirName), nil
		}
		return centralizedDir(startDir)
	}
}

// findRepoRoot walks up from startDir looking for a .git entry (file or
// directory — a worktree's .git is a file pointing at the real gitdir).
func findRepoRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// centralizedDir returns <home>/.dex/projects/<key>, where key is a
// deterministic hash of the repo root (or startDir, if no repo root is
// found) so the same project always maps to the same subdirectory.
func centralizedDir(startDir string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	keySource := findRepoRoot(startDir)
	if keySource == "" {
		abs, err := filepath.Abs(startDir)
		if err != nil {
			return "", err
		}
		keySource = abs
	}
	sum := sha256.Sum256([]byte(keySource))
	key := hex.EncodeToString(sum[:])[:16]
	return filepath.Join(home, centralDirName, "projects", key), nil
}
