package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dura2d/navgen/internal/errors"
	"github.com/dura2d/navgen/internal/ignore"
	"github.com/moby/patternmatcher"
)

// ResolvePages expands input.pages into project-relative markdown paths in
// navigation order. Literal entries keep their position and must exist;
// glob entries expand to their sorted matches. The main page and excluded
// files are skipped, and every page is listed once.
func (c *Config) ResolvePages() ([]string, error) {
	matcher := ignore.NewMatcher(c.Input.Exclude)
	seen := map[string]bool{filepath.ToSlash(filepath.Clean(c.Input.MainPage)): true}

	var markdown []string
	var out []string
	for _, entry := range c.Input.Pages {
		entry = filepath.ToSlash(filepath.Clean(strings.TrimSpace(entry)))
		if entry == "." || entry == "" {
			continue
		}
		if !strings.ContainsAny(entry, "*?[") {
			if _, err := os.Stat(c.Abs(entry)); err != nil {
				return nil, errors.InputNotFound("page", entry)
			}
			if !seen[entry] {
				seen[entry] = true
				out = append(out, entry)
			}
			continue
		}

		pm, err := patternmatcher.New([]string{filepath.FromSlash(entry)})
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid page pattern").
				WithDetail("pattern", entry)
		}
		if markdown == nil {
			if markdown, err = c.markdownFiles(matcher); err != nil {
				return nil, err
			}
		}
		for _, rel := range markdown {
			ok, err := pm.MatchesOrParentMatches(filepath.FromSlash(rel))
			if err != nil || !ok || seen[rel] {
				continue
			}
			seen[rel] = true
			out = append(out, rel)
		}
	}
	return out, nil
}

func (c *Config) markdownFiles(matcher *ignore.Matcher) ([]string, error) {
	outputDir := filepath.ToSlash(filepath.Clean(c.Output.Dir))
	files := make([]string, 0)
	err := filepath.WalkDir(c.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(c.Root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if matcher.ShouldIgnore(rel, d.IsDir()) || rel == outputDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(rel), ".md") {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInputNotFound, "failed to scan for pages")
	}
	sort.Strings(files)
	return files, nil
}
