package staged

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGit builds a run function that serves canned responses keyed by the
// git subcommand
func fakeGit(responses map[string]string, errs map[string]error) func(string, ...string) ([]byte, error) {
	return func(dir string, args ...string) ([]byte, error) {
		key := args[0]
		if err, ok := errs[key]; ok {
			return nil, err
		}
		return []byte(responses[key]), nil
	}
}

func TestStagedYAMLFiltersExtensions(t *testing.T) {
	l := NewGitLister(".", false)
	l.run = fakeGit(map[string]string{
		"rev-parse": ".git",
		"diff":      "deploy/app.yaml\nREADME.md\nconfig.yml\nmain.go\n",
	}, nil)

	files, err := l.StagedYAML()
	require.NoError(t, err)
	assert.Equal(t, []string{"deploy/app.yaml", "config.yml"}, files)
}

func TestStagedYAMLIncludesUntracked(t *testing.T) {
	l := NewGitLister(".", true)
	l.run = fakeGit(map[string]string{
		"rev-parse": ".git",
		"diff":      "deploy/app.yaml\n",
		"ls-files":  "new.yaml\ndeploy/app.yaml\nnotes.txt\n",
	}, nil)

	files, err := l.StagedYAML()
	require.NoError(t, err)
	// deduplicated, staged files first
	assert.Equal(t, []string{"deploy/app.yaml", "new.yaml"}, files)
}

func TestStagedYAMLEmpty(t *testing.T) {
	l := NewGitLister(".", false)
	l.run = fakeGit(map[string]string{
		"rev-parse": ".git",
		"diff":      "",
	}, nil)

	files, err := l.StagedYAML()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestStagedYAMLNotARepository(t *testing.T) {
	l := NewGitLister("/tmp", false)
	l.run = fakeGit(nil, map[string]error{
		"rev-parse": fmt.Errorf("exit status 128"),
	})

	_, err := l.StagedYAML()
	assert.ErrorIs(t, err, ErrNotARepository)
}

func TestStagedYAMLGitMissing(t *testing.T) {
	l := NewGitLister(".", false)
	l.run = fakeGit(nil, map[string]error{
		"rev-parse": fmt.Errorf("%w: exec: \"git\": executable file not found", ErrGitUnavailable),
	})

	_, err := l.StagedYAML()
	assert.ErrorIs(t, err, ErrGitUnavailable)
}

func TestMaterializeWritesStagedBlobs(t *testing.T) {
	l := NewGitLister(".", false)
	l.run = func(dir string, args ...string) ([]byte, error) {
		if args[0] == "show" {
			name := strings.TrimPrefix(args[1], ":")
			return []byte("staged content of " + name), nil
		}
		return nil, fmt.Errorf("unexpected git call: %v", args)
	}

	tree, err := l.Materialize([]string{"deploy/app.yaml", "top.yml"})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, tree.Close())
	}()

	assert.Equal(t, []string{"deploy/app.yaml", "top.yml"}, tree.Files)
	assert.Len(t, tree.Paths(), 2)

	content, err := os.ReadFile(tree.Path("deploy/app.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "staged content of deploy/app.yaml", string(content))
}

func TestMaterializeFallsBackToWorktree(t *testing.T) {
	worktree := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(worktree, "new.yaml"), []byte("untracked"), 0o644))

	l := NewGitLister(worktree, true)
	l.run = func(dir string, args ...string) ([]byte, error) {
		// untracked files have no staged blob
		return nil, fmt.Errorf("exit status 128")
	}

	tree, err := l.Materialize([]string{"new.yaml"})
	require.NoError(t, err)
	defer tree.Close()

	content, err := os.ReadFile(tree.Path("new.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "untracked", string(content))
}

func TestMaterializeCleansUpOnFailure(t *testing.T) {
	l := NewGitLister(t.TempDir(), false)
	l.run = func(dir string, args ...string) ([]byte, error) {
		return nil, fmt.Errorf("exit status 128")
	}

	tree, err := l.Materialize([]string{"missing.yaml"})
	assert.Error(t, err)
	assert.Nil(t, tree)
}

func TestTreeCloseIsIdempotent(t *testing.T) {
	tree := &Tree{}
	assert.NoError(t, tree.Close())
}
