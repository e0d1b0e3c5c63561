// Package watch regenerates the navigation scripts when documentation
// sources change.
package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dura2d/navgen/internal/ignore"
	"github.com/dura2d/navgen/internal/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period after the last event before OnChange runs.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Root is the project root; reported paths are relative to it.
	Root string
	// Paths are project-relative files or directories watched recursively.
	Paths []string
	// Ignore excludes project-relative paths.
	Ignore *ignore.Matcher
	// Skip lists project-relative directories never watched, such as the
	// output directory.
	Skip []string
	// Extensions limits events to these file extensions. Empty means all.
	Extensions []string
	// Files are project-relative paths always reported, whatever their
	// extension.
	Files    []string
	Debounce time.Duration
	// OnChange receives the sorted set of changed paths after each quiet
	// period. Errors are logged and do not stop the watcher.
	OnChange func(ctx context.Context, changed []string) error
}

// Watcher debounces fsnotify events into batched change notifications.
type Watcher struct {
	opts    Options
	watcher *fsnotify.Watcher
	logger  *logrus.Entry

	mu      sync.Mutex
	pending map[string]bool
	watched map[string]bool
}

// New creates a watcher over opts.Paths.
func New(opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Ignore == nil {
		opts.Ignore = ignore.NewMatcher(nil)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		opts:    opts,
		watcher: fw,
		logger:  logging.NewLogger("watch"),
		pending: make(map[string]bool),
		watched: make(map[string]bool),
	}

	if err := w.addRoots(); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRoots() error {
	for _, rel := range w.opts.Paths {
		abs := filepath.Join(w.opts.Root, filepath.FromSlash(rel))
		info, err := os.Stat(abs)
		if err != nil {
			w.logger.WithField("path", rel).Warn("Watch path does not exist")
			continue
		}
		if !info.IsDir() {
			if err := w.addDir(filepath.Dir(abs)); err != nil {
				return err
			}
			continue
		}
		if err := w.addTree(abs); err != nil {
			return err
		}
	}
	// Single files are watched through their directory, without recursion.
	for _, file := range w.opts.Files {
		dir := filepath.Dir(filepath.Join(w.opts.Root, filepath.FromSlash(file)))
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := w.addDir(dir); err != nil {
			return err
		}
	}
	w.mu.Lock()
	empty := len(w.watched) == 0
	w.mu.Unlock()
	if empty {
		return fmt.Errorf("nothing to watch under %s", w.opts.Root)
	}
	return nil
}

func (w *Watcher) addDir(dir string) error {
	w.mu.Lock()
	seen := w.watched[dir]
	w.watched[dir] = true
	w.mu.Unlock()
	if seen {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Debugf("Watching %s", w.rel(dir))
	return nil
}

// addTree watches dir and every non-ignored directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		rel := w.rel(path)
		if rel != "." && w.skipped(rel, true) {
			return filepath.SkipDir
		}
		return w.addDir(path)
	})
}

// Run processes events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	defer w.watcher.Close()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handle(event) {
				timer.Reset(w.opts.Debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-timer.C:
			w.flush(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// handle records a relevant event and reports whether it was recorded.
func (w *Watcher) handle(event fsnotify.Event) bool {
	w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.skipped(w.rel(event.Name), true) {
				if err := w.addTree(event.Name); err != nil {
					w.logger.WithError(err).Warn("Failed to watch new directory")
				}
			}
			return false
		}
	}

	rel := w.rel(event.Name)
	if !w.Relevant(rel) {
		return false
	}
	w.mu.Lock()
	w.pending[rel] = true
	w.mu.Unlock()
	return true
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for rel := range w.pending {
		changed = append(changed, rel)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	if len(changed) == 0 || w.opts.OnChange == nil {
		return
	}
	sort.Strings(changed)
	w.logger.WithField("files", len(changed)).Infof("Change detected: %s", strings.Join(changed, ", "))
	if err := w.opts.OnChange(ctx, changed); err != nil {
		w.logger.WithError(err).Error("Regeneration failed")
	}
}

// Relevant reports whether a change to the project-relative path rel
// should trigger a regeneration.
func (w *Watcher) Relevant(rel string) bool {
	for _, file := range w.opts.Files {
		if rel == filepath.ToSlash(filepath.Clean(file)) {
			return true
		}
	}
	if w.skipped(rel, false) || !w.underPaths(rel) {
		return false
	}
	if len(w.opts.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(rel))
	for _, want := range w.opts.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

func (w *Watcher) underPaths(rel string) bool {
	for _, p := range w.opts.Paths {
		p = filepath.ToSlash(filepath.Clean(p))
		if p == "." || rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}

func (w *Watcher) skipped(rel string, isDir bool) bool {
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return true
	}
	for _, skip := range w.opts.Skip {
		skip = filepath.ToSlash(filepath.Clean(skip))
		if rel == skip || strings.HasPrefix(rel, skip+"/") {
			return true
		}
	}
	return w.opts.Ignore.ShouldIgnore(rel, isDir)
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.opts.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// ParseCommand splits a shell-quoted command line into arguments.
func ParseCommand(command string) ([]string, error) {
	args, err := shellquote.Split(command)
	if err != nil {
		return nil, fmt.Errorf("invalid command %q: %w", command, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return args, nil
}

// RunCommand runs argv in dir, streaming its output.
func RunCommand(ctx context.Context, dir string, argv []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", shellquote.Join(argv...), err)
	}
	return nil
}
