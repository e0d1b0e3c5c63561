package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/PuerkitoBio/goquery"
	"github.com/dura2d/navgen/internal/navjs"
	"github.com/dura2d/navgen/internal/navtree"
	"github.com/spf13/cobra"
)

func RunCheck(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	htmlDir, err := OptionalStringFlag(cmd, "html")
	if err != nil {
		return err
	}

	dataPath, cfg, err := ResolveDataFile(cmd, args)
	if err != nil {
		return err
	}
	shardSize := navtree.DefaultShardSize
	if cfg != nil {
		shardSize = cfg.Output.ShardSize
	}
	flagShardSize, err := OptionalIntFlag(cmd, "shard-size", 0)
	if err != nil {
		return err
	}
	if flagShardSize > 0 {
		shardSize = flagShardSize
	}

	report, err := CheckIndex(dataPath, shardSize, htmlDir)
	if err != nil {
		return err
	}
	if err := PrintCheckReport(*report, asJSON); err != nil {
		return err
	}
	if report.Errors > 0 {
		cmd.SilenceErrors = asJSON
		return fmt.Errorf("%s: %d error(s)", dataPath, report.Errors)
	}
	return nil
}

// CheckIndex lints the navigation index at dataPath. htmlDir, when set, is
// searched for the pages the links point at.
func CheckIndex(dataPath string, shardSize int, htmlDir string) (*CheckReport, error) {
	tree, err := navjs.Load(dataPath)
	if err != nil {
		return nil, err
	}

	issues := navtree.Validate(tree, navtree.ValidateOptions{ShardSize: shardSize})
	issues = append(issues, navjs.CheckShards(filepath.Dir(dataPath), tree)...)
	if htmlDir != "" {
		htmlIssues, err := CheckHTMLAnchors(htmlDir, tree)
		if err != nil {
			return nil, err
		}
		issues = append(issues, htmlIssues...)
	}

	report := &CheckReport{
		Path:     dataPath,
		Nodes:    navtree.Count(tree.Root),
		Links:    len(navtree.CollectLinks(tree.Root)),
		Anchors:  len(navtree.Anchors(tree.Root)),
		Scripts:  len(tree.Scripts()),
		Shards:   len(tree.Index),
		Resolved: tree.Resolved(),
		Issues:   issues,
	}
	if report.Issues == nil {
		report.Issues = []navtree.Issue{}
	}
	for _, issue := range issues {
		if issue.Severity == navtree.SeverityError {
			report.Errors++
		} else {
			report.Warnings++
		}
	}
	return report, nil
}

// CheckHTMLAnchors verifies that every linked page exists in htmlDir and
// that every anchor is declared on its page by an id or a named <a>.
func CheckHTMLAnchors(htmlDir string, tree *navtree.Tree) ([]navtree.Issue, error) {
	if info, err := os.Stat(htmlDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("html directory %q not found", htmlDir)
	}

	type pageAnchors struct {
		ids     map[string]bool
		missing bool
	}
	pages := make(map[string]*pageAnchors)
	load := func(page string) (*pageAnchors, error) {
		if p, ok := pages[page]; ok {
			return p, nil
		}
		p := &pageAnchors{ids: make(map[string]bool)}
		pages[page] = p

		f, err := os.Open(filepath.Join(htmlDir, filepath.FromSlash(page)))
		if err != nil {
			if os.IsNotExist(err) {
				p.missing = true
				return p, nil
			}
			return nil, err
		}
		defer f.Close()

		doc, err := goquery.NewDocumentFromReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", page, err)
		}
		doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
			if id, ok := s.Attr("id"); ok {
				p.ids[id] = true
			}
		})
		doc.Find("a[name]").Each(func(_ int, s *goquery.Selection) {
			if name, ok := s.Attr("name"); ok {
				p.ids[name] = true
			}
		})
		return p, nil
	}

	var issues []navtree.Issue
	reported := make(map[string]bool)
	err := navtree.Walk(tree.Root, func(n *navtree.Node, path []int) error {
		if n.Link == "" || reported[n.Link] {
			return nil
		}
		page, anchor := navtree.SplitLink(n.Link)
		p, err := load(page)
		if err != nil {
			return err
		}
		switch {
		case p.missing:
			if !reported[page] {
				reported[page] = true
				issues = append(issues, navtree.Issue{
					Severity: navtree.SeverityError,
					Path:     path,
					Link:     n.Link,
					Message:  fmt.Sprintf("page %s not found in %s", page, htmlDir),
				})
			}
		case anchor != "" && !p.ids[anchor]:
			issues = append(issues, navtree.Issue{
				Severity: navtree.SeverityError,
				Path:     path,
				Link:     n.Link,
				Message:  fmt.Sprintf("anchor %q not found on %s", anchor, page),
			})
		}
		reported[n.Link] = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issues, nil
}
