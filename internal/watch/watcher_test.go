package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/dura2d/navgen/internal/ignore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "include", "dura2d"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "html"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# Dura2D\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "include", "dura2d", "d2Body.h"), []byte("class d2Body {};\n"), 0644))
	return root
}

func TestRelevant(t *testing.T) {
	root := setupProject(t)
	w, err := New(Options{
		Root:       root,
		Paths:      []string{"include"},
		Files:      []string{"README.md", "navgen.yml"},
		Skip:       []string{"docs/html"},
		Ignore:     ignore.NewMatcher([]string{"*.tmp.h"}),
		Extensions: []string{".h", ".md"},
	})
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.Relevant("include/dura2d/d2Body.h"))
	assert.True(t, w.Relevant("README.md"))
	assert.True(t, w.Relevant("navgen.yml"))
	assert.False(t, w.Relevant("include/dura2d/d2Body.cpp.orig"))
	assert.False(t, w.Relevant("include/dura2d/scratch.tmp.h"))
	assert.False(t, w.Relevant("docs/html/navtreedata.md"))
	assert.False(t, w.Relevant("build/gen.h"))
}

func TestNewFailsWithoutWatchablePaths(t *testing.T) {
	_, err := New(Options{Root: t.TempDir(), Paths: []string{"missing"}})
	assert.Error(t, err)
}

func TestRunDebouncesChanges(t *testing.T) {
	root := setupProject(t)

	var mu sync.Mutex
	var batches [][]string
	done := make(chan struct{}, 4)

	w, err := New(Options{
		Root:       root,
		Paths:      []string{"include"},
		Files:      []string{"README.md"},
		Extensions: []string{".h"},
		Debounce:   50 * time.Millisecond,
		OnChange: func(ctx context.Context, changed []string) error {
			mu.Lock()
			batches = append(batches, changed)
			mu.Unlock()
			done <- struct{}{}
			return nil
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	finished := make(chan error, 1)
	go func() { finished <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(root, "include", "dura2d", "d2Body.h"), []byte("class d2Body { int m; };\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# Dura2D\n\n## Build\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "include", "dura2d", "notes.txt"), []byte("x"), 0644))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	require.NoError(t, <-finished)

	mu.Lock()
	defer mu.Unlock()
	var all []string
	for _, batch := range batches {
		all = append(all, batch...)
	}
	assert.Contains(t, all, "include/dura2d/d2Body.h")
	assert.NotContains(t, all, "include/dura2d/notes.txt")
}

func TestParseCommand(t *testing.T) {
	args, err := ParseCommand(`doxygen "docs/Doxy file" --quiet`)
	require.NoError(t, err)
	assert.Equal(t, []string{"doxygen", "docs/Doxy file", "--quiet"}, args)

	_, err = ParseCommand(`echo "unterminated`)
	assert.Error(t, err)
	_, err = ParseCommand("   ")
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	var out bytes.Buffer
	err := RunCommand(context.Background(), t.TempDir(), []string{"sh", "-c", "echo regenerated"}, &out, &out)
	require.NoError(t, err)
	assert.Equal(t, "regenerated\n", out.String())

	assert.Error(t, RunCommand(context.Background(), t.TempDir(), []string{"sh", "-c", "exit 3"}, &out, &out))
}
