package navtree

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity of a structural finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one structural defect of a navigation index.
type Issue struct {
	Severity Severity `json:"severity"`
	Path     []int    `json:"path,omitempty"`
	Link     string   `json:"link,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	location := formatPath(i.Path)
	if i.Link != "" {
		location += " " + i.Link
	}
	return fmt.Sprintf("[%s] %s: %s", i.Severity, strings.TrimSpace(location), i.Message)
}

// ValidateOptions tune Validate.
type ValidateOptions struct {
	// ShardSize is used to recompute the shard list of a fully resolved tree.
	// Zero skips the comparison.
	ShardSize int
}

var (
	linkPattern   = regexp.MustCompile(`^[^\s#"]+\.html(#[^\s#"]+)?$`)
	scriptPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

// Validate checks the structural well-formedness of the tree.
func Validate(t *Tree, opts ValidateOptions) []Issue {
	if t == nil || t.Root == nil {
		return []Issue{{Severity: SeverityError, Message: "navigation tree has no root"}}
	}

	var issues []Issue
	issues = append(issues, checkNodes(t.Root)...)
	issues = append(issues, checkAnchors(t.Root)...)
	issues = append(issues, checkIndex(t, opts)...)
	return issues
}

// HasErrors reports whether any issue is error-severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

func checkNodes(root *Node) []Issue {
	var issues []Issue
	_ = Walk(root, func(n *Node, path []int) error {
		if n.Children != nil && len(n.Children) == 0 {
			msg := "children sequence is present but empty"
			if n.Script != "" {
				msg = fmt.Sprintf("script %q has no entries", n.Script)
			}
			issues = append(issues, Issue{Severity: SeverityError, Path: path, Link: n.Link, Message: msg})
		}
		if n.Link != "" && !linkPattern.MatchString(n.Link) {
			issues = append(issues, Issue{Severity: SeverityError, Path: path, Link: n.Link, Message: "link is not of the form <page>.html[#<anchor>]"})
		}
		if n.Script != "" && !scriptPattern.MatchString(ScriptVar(n.Script)) {
			issues = append(issues, Issue{Severity: SeverityError, Path: path, Link: n.Link, Message: fmt.Sprintf("script name %q is not a valid identifier", n.Script)})
		}
		if n.Unresolved() {
			issues = append(issues, Issue{Severity: SeverityWarning, Path: path, Link: n.Link, Message: fmt.Sprintf("script %q was not loaded", n.Script)})
		}
		return nil
	})
	return issues
}

func checkAnchors(root *Node) []Issue {
	var issues []Issue
	seen := make(map[int][]int)
	last := -1
	for _, ref := range Anchors(root) {
		if first, dup := seen[ref.Number]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     ref.Path,
				Link:     ref.Link,
				Message:  fmt.Sprintf("duplicate anchor %s (first used at %s)", AutoTOCAnchor(ref.Number), formatPath(first)),
			})
			continue
		}
		seen[ref.Number] = ref.Path
		if ref.Number <= last {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     ref.Path,
				Link:     ref.Link,
				Message:  fmt.Sprintf("anchor %s follows %s in document order", AutoTOCAnchor(ref.Number), AutoTOCAnchor(last)),
			})
		}
		if ref.Number > last {
			last = ref.Number
		}
	}
	return issues
}

func checkIndex(t *Tree, opts ValidateOptions) []Issue {
	if len(t.Index) == 0 {
		return []Issue{{Severity: SeverityError, Message: "shard index is empty"}}
	}

	var issues []Issue
	for i := 1; i < len(t.Index); i++ {
		if t.Index[i] <= t.Index[i-1] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Link:     t.Index[i],
				Message:  fmt.Sprintf("shard %d starts at %q which does not sort after %q", i, t.Index[i], t.Index[i-1]),
			})
		}
	}

	links := CollectLinks(t.Root)
	if len(links) == 0 {
		return append(issues, Issue{Severity: SeverityError, Message: "navigation tree has no links"})
	}
	lowest := links[0].Link
	resolved := t.Resolved()
	switch {
	case t.Index[0] == lowest:
	case t.Index[0] > lowest || resolved:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Link:     t.Index[0],
			Message:  fmt.Sprintf("first shard starts at %q but the lowest link is %q", t.Index[0], lowest),
		})
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Link:     t.Index[0],
			Message:  "first shard link only appears in unloaded scripts",
		})
	}

	if resolved && opts.ShardSize > 0 {
		want := ShardIndex(BuildShards(t.Root, opts.ShardSize))
		if !equalStrings(want, t.Index) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("shard index %v does not match recomputed %v (shard size %d)", t.Index, want, opts.ShardSize),
			})
		}
	}
	return issues
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func formatPath(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
