// Package staged discovers YAML manifests queued for the next commit and
// materializes their staged content into a scoped temporary directory, so
// scanners see what will actually be committed rather than the worktree
// state.
package staged

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/k8sec/kubegate/internal/logger"
)

// Error types for the staged package
var (
	ErrGitUnavailable = fmt.Errorf("git executable not found on PATH")
	ErrNotARepository = fmt.Errorf("not a git repository")
)

// Lister returns the staged YAML files relative to the repository root
type Lister interface {
	StagedYAML() ([]string, error)
}

// GitLister implements Lister on top of the git CLI
type GitLister struct {
	// Dir is the directory the git commands run in
	Dir string
	// IncludeUntracked also returns untracked-but-present YAML files
	IncludeUntracked bool

	// run executes a git command; swapped out in tests
	run func(dir string, args ...string) ([]byte, error)
}

// NewGitLister creates a GitLister rooted at dir
func NewGitLister(dir string, includeUntracked bool) *GitLister {
	return &GitLister{
		Dir:              dir,
		IncludeUntracked: includeUntracked,
		run:              runGit,
	}
}

// StagedYAML returns the staged (and optionally untracked) files ending in
// .yaml or .yml. Running outside a git repository is a hard error rather
// than an empty result, so a misconfigured hook cannot silently pass.
func (l *GitLister) StagedYAML() ([]string, error) {
	if _, err := l.run(l.Dir, "rev-parse", "--git-dir"); err != nil {
		if errors.Is(err, ErrGitUnavailable) {
			return nil, ErrGitUnavailable
		}
		return nil, fmt.Errorf("%w: %s", ErrNotARepository, l.Dir)
	}

	out, err := l.run(l.Dir, "diff", "--cached", "--name-only", "--diff-filter=ACM")
	if err != nil {
		return nil, fmt.Errorf("listing staged files: %w", err)
	}

	seen := make(map[string]bool)
	var files []string
	for _, f := range splitLines(string(out)) {
		if isYAML(f) && !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}

	if l.IncludeUntracked {
		out, err := l.run(l.Dir, "ls-files", "--others", "--exclude-standard")
		if err != nil {
			return nil, fmt.Errorf("listing untracked files: %w", err)
		}
		for _, f := range splitLines(string(out)) {
			if isYAML(f) && !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	return files, nil
}

// Tree holds the materialized staged content of a set of files. Callers must
// Close it on every exit path, including scanner failure.
type Tree struct {
	// Dir is the root of the temporary directory
	Dir string
	// Files are the materialized paths, relative to Dir, in input order
	Files []string
}

// Path returns the absolute location of a materialized file
func (t *Tree) Path(rel string) string {
	return filepath.Join(t.Dir, rel)
}

// Paths returns the absolute locations of all materialized files
func (t *Tree) Paths() []string {
	out := make([]string, 0, len(t.Files))
	for _, f := range t.Files {
		out = append(out, t.Path(f))
	}
	return out
}

// Close removes the temporary directory
func (t *Tree) Close() error {
	if t.Dir == "" {
		return nil
	}
	return os.RemoveAll(t.Dir)
}

// Materialize writes the staged blob content of each file into a fresh
// temporary directory mirroring the relative paths. Untracked files (which
// have no staged blob) fall back to their worktree content.
func (l *GitLister) Materialize(files []string) (*Tree, error) {
	dir, err := os.MkdirTemp("", "kubegate-staged-")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	tree := &Tree{Dir: dir}
	for _, f := range files {
		content, err := l.run(l.Dir, "show", ":"+f)
		if err != nil {
			// No staged blob; use the worktree copy
			content, err = os.ReadFile(filepath.Join(l.Dir, f))
			if err != nil {
				_ = tree.Close()
				return nil, fmt.Errorf("reading staged content of %s: %w", f, err)
			}
		}

		dest := tree.Path(f)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			_ = tree.Close()
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
		}
		if err := os.WriteFile(dest, content, 0o644); err != nil {
			_ = tree.Close()
			return nil, fmt.Errorf("writing %s: %w", dest, err)
		}
		tree.Files = append(tree.Files, f)
	}

	logger.Debug().Int("files", len(tree.Files)).Str("dir", dir).Msg("materialized staged content")
	return tree, nil
}

func runGit(dir string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGitUnavailable, err)
	}
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	return cmd.Output()
}

func isYAML(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}

func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
