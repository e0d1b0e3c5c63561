package cli

import (
	"context"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dura2d/navgen/internal/config"
	"github.com/dura2d/navgen/internal/ignore"
	"github.com/dura2d/navgen/internal/languages"
	"github.com/dura2d/navgen/internal/logging"
	"github.com/dura2d/navgen/internal/watch"
	"github.com/spf13/cobra"
)

func RunWatch(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	cfg, err := LoadProject(cmd, rootPath)
	if err != nil {
		return err
	}

	execLine, err := OptionalStringFlag(cmd, "exec")
	if err != nil {
		return err
	}
	var execArgs []string
	if execLine != "" {
		if execArgs, err = watch.ParseCommand(execLine); err != nil {
			return err
		}
	}
	debounceMS, err := OptionalIntFlag(cmd, "debounce", int(watch.DefaultDebounce/time.Millisecond))
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := NewProjectWatcher(cmd, cfg, time.Duration(debounceMS)*time.Millisecond, execArgs)
	if err != nil {
		return err
	}
	if err := regenerate(ctx, cfg, execArgs); err != nil {
		logging.NewLogger("watch").WithError(err).Error("Initial generate failed")
	}
	logging.NewLogger("watch").WithField("root", cfg.Root).Info("Watching for changes (Ctrl+C to stop)")
	return w.Run(ctx)
}

// NewProjectWatcher watches the inputs of cfg and regenerates on change.
// A change to the configuration file reloads it first.
func NewProjectWatcher(cmd *cobra.Command, cfg *config.Config, debounce time.Duration, execArgs []string) (*watch.Watcher, error) {
	rules, err := LoadIgnoreRules(cfg)
	if err != nil {
		return nil, err
	}

	paths := append([]string{}, cfg.Input.Sources...)
	for _, page := range cfg.Input.Pages {
		// Globs are watched from their literal prefix directory.
		dir := path.Dir(filepath.ToSlash(page))
		for dir != "." && containsGlob(dir) {
			dir = path.Dir(dir)
		}
		paths = append(paths, dir)
	}

	files := []string{cfg.Input.MainPage, ignore.FileName}
	configRel := ""
	if cfg.Path != "" {
		if rel, err := filepath.Rel(cfg.Root, cfg.Path); err == nil {
			configRel = filepath.ToSlash(rel)
			files = append(files, configRel)
		}
	}

	extensions := append(languages.NewDefaultRegistry(languages.Options{}).SupportedExtensions(), ".md")
	skip := []string{}
	if rel, err := filepath.Rel(cfg.Root, cfg.OutputDir()); err == nil {
		skip = append(skip, filepath.ToSlash(rel))
	}

	current := cfg
	return watch.New(watch.Options{
		Root:       cfg.Root,
		Paths:      paths,
		Files:      files,
		Skip:       skip,
		Ignore:     ignore.NewMatcher(rules),
		Extensions: extensions,
		Debounce:   debounce,
		OnChange: func(ctx context.Context, changed []string) error {
			for _, rel := range changed {
				if rel == configRel && configRel != "" {
					reloaded, err := config.Load(current.Path)
					if err != nil {
						return err
					}
					if overrides, _ := OptionalStringArrayFlag(cmd, "set"); len(overrides) > 0 {
						if err := reloaded.ApplyOverrides(overrides); err != nil {
							return err
						}
					}
					logging.Configure(reloaded.Logging)
					current = reloaded
					break
				}
			}
			return regenerate(ctx, current, execArgs)
		},
	})
}

func regenerate(ctx context.Context, cfg *config.Config, execArgs []string) error {
	summary, err := GenerateNavigation(cfg, false)
	if err != nil {
		return err
	}
	if err := PrintRunSummary(*summary, false); err != nil {
		return err
	}
	if len(execArgs) == 0 || summary.Rewritten == 0 {
		return nil
	}
	return watch.RunCommand(ctx, cfg.Root, execArgs, os.Stdout, os.Stderr)
}

func containsGlob(p string) bool {
	for _, c := range p {
		switch c {
		case '*', '?', '[':
			return true
		}
	}
	return false
}
