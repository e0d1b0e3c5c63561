// Package ignore applies gitignore-like exclusion rules to source paths.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/patternmatcher"
)

// FileName is the per-project ignore file read from the project root.
const FileName = ".navgenignore"

type rule struct {
	pattern  string
	pm       *patternmatcher.PatternMatcher
	negated  bool
	dirOnly  bool
	anchored bool
}

// Matcher applies gitignore-like rules with "last rule wins" behavior.
type Matcher struct {
	rules []rule
}

// DefaultRules are prepended to every matcher and can be overridden by user
// negation rules.
var DefaultRules = []string{
	".git/",
	".navgen/",
	"html/",
	"latex/",
	"build/",
	"cmake-build-*/",
	"_deps/",
	"node_modules/",
}

// NewMatcher builds a matcher from user-provided ignore lines.
func NewMatcher(userRules []string) *Matcher {
	all := make([]string, 0, len(DefaultRules)+len(userRules))
	all = append(all, DefaultRules...)
	all = append(all, userRules...)

	rules := make([]rule, 0, len(all))
	for _, line := range all {
		if parsed, ok := parseRule(line); ok {
			rules = append(rules, parsed)
		}
	}

	return &Matcher{rules: rules}
}

// ShouldIgnore returns true when relPath should be excluded.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = normalizePath(relPath)
	ignored := false
	for _, rule := range m.rules {
		if ruleMatches(rule, relPath, isDir) {
			ignored = !rule.negated
		}
	}
	return ignored
}

// LoadRules reads FileName from root. A missing file yields no rules.
func LoadRules(root string) ([]string, error) {
	f, err := os.Open(filepath.Join(root, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	defer f.Close()

	rules := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return rules, nil
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	parsed := rule{}
	if strings.HasPrefix(line, "!") {
		parsed.negated = true
		line = strings.TrimPrefix(line, "!")
	}
	if strings.HasPrefix(line, "/") {
		parsed.anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	if strings.HasSuffix(line, "/") {
		parsed.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	line = normalizePath(line)
	if line == "" {
		return rule{}, false
	}
	pm, err := patternmatcher.New([]string{line})
	if err != nil || len(pm.Patterns()) != 1 {
		return rule{}, false
	}
	parsed.pattern = line
	parsed.pm = pm
	return parsed, true
}

func ruleMatches(rule rule, relPath string, isDir bool) bool {
	if rule.dirOnly {
		if matchDirectoryPattern(rule, relPath) {
			return true
		}
		return isDir && rule.match(baseName(relPath))
	}

	if rule.anchored {
		return rule.match(relPath)
	}

	parts := strings.Split(relPath, "/")
	if strings.Contains(rule.pattern, "/") {
		for i := range parts {
			if rule.match(strings.Join(parts[i:], "/")) {
				return true
			}
		}
		return false
	}

	for _, segment := range parts {
		if rule.match(segment) {
			return true
		}
	}
	return false
}

func matchDirectoryPattern(rule rule, relPath string) bool {
	parts := strings.Split(relPath, "/")
	// The last segment is a file unless the caller said otherwise, so only
	// proper prefixes count as directories here.
	for i := 1; i < len(parts); i++ {
		if rule.match(strings.Join(parts[:i], "/")) {
			return true
		}
		if !rule.anchored && !strings.Contains(rule.pattern, "/") && rule.match(parts[i-1]) {
			return true
		}
	}
	return false
}

func (r rule) match(value string) bool {
	ok, err := r.pm.MatchesOrParentMatches(value)
	return err == nil && ok
}

func baseName(relPath string) string {
	if idx := strings.LastIndex(relPath, "/"); idx >= 0 {
		return relPath[idx+1:]
	}
	return relPath
}

func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	path = strings.TrimPrefix(path, "/")
	return path
}
