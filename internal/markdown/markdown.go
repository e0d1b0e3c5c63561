// Package markdown extracts the section outline of markdown pages and assigns
// the automatically numbered heading anchors.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/dura2d/navgen/internal/logging"
	"github.com/dura2d/navgen/internal/navtree"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// DefaultMaxLevel is the deepest heading level listed in the navigation tree.
const DefaultMaxLevel = 5

// Counter hands out autotoc numbers. One counter is shared by every page of a
// documentation set so numbers never repeat across pages.
type Counter struct {
	next int
}

// Next returns the next number and advances the counter.
func (c *Counter) Next() int {
	n := c.next
	c.next++
	return n
}

// Peek returns the number the next heading would receive.
func (c *Counter) Peek() int {
	return c.next
}

// Section is one heading of a page together with the headings nested under it.
type Section struct {
	Title    string
	Level    int
	Anchor   string
	Line     int
	Children []*Section
}

// Page is the outline of one markdown file.
type Page struct {
	Path string
	// Title is the text of the leading level-1 heading, if any.
	Title       string
	TitleAnchor string
	Sections    []*Section
}

// Options tune the outline extraction.
type Options struct {
	// MaxLevel drops deeper headings from the outline. They still consume
	// anchor numbers.
	MaxLevel int
}

// Parser turns markdown sources into page outlines.
type Parser struct {
	md       goldmark.Markdown
	policy   *bluemonday.Policy
	counter  *Counter
	maxLevel int
}

// NewParser creates a parser drawing anchor numbers from counter.
func NewParser(counter *Counter, opts Options) *Parser {
	maxLevel := opts.MaxLevel
	if maxLevel <= 0 {
		maxLevel = DefaultMaxLevel
	}
	return &Parser{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAttribute()),
		),
		policy:   bluemonday.StrictPolicy(),
		counter:  counter,
		maxLevel: maxLevel,
	}
}

type heading struct {
	title    string
	level    int
	explicit string
	line     int
}

// Parse extracts the outline of one page. path is only recorded.
func (p *Parser) Parse(path string, src []byte) (*Page, error) {
	doc := p.md.Parser().Parse(text.NewReader(src))

	var headings []heading
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		headings = append(headings, heading{
			title:    p.headingText(h, src),
			level:    h.Level,
			explicit: explicitID(h),
			line:     lineOf(h, src),
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", path, err)
	}

	page := &Page{Path: path}
	if len(headings) > 0 && headings[0].level == 1 {
		page.Title = headings[0].title
		page.TitleAnchor = p.anchorFor(headings[0])
		headings = headings[1:]
	}

	type open struct {
		level   int
		section *Section
	}
	var stack []open
	for _, h := range headings {
		anchor := p.anchorFor(h)
		if h.level > p.maxLevel {
			continue
		}
		section := &Section{Title: h.title, Level: h.level, Anchor: anchor, Line: h.line}
		for len(stack) > 0 && stack[len(stack)-1].level >= h.level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			page.Sections = append(page.Sections, section)
		} else {
			parent := stack[len(stack)-1].section
			parent.Children = append(parent.Children, section)
		}
		stack = append(stack, open{level: h.level, section: section})
	}

	logging.NewLogger("markdown").
		WithField("page", path).
		WithField("headings", len(headings)).
		WithField("next_anchor", p.counter.Peek()).
		Debug("Parsed page outline")
	return page, nil
}

func (p *Parser) anchorFor(h heading) string {
	if h.explicit != "" {
		return h.explicit
	}
	return navtree.AutoTOCAnchor(p.counter.Next())
}

func (p *Parser) headingText(h *ast.Heading, src []byte) string {
	var b bytes.Buffer
	collectText(&b, h, src)
	clean := html.UnescapeString(p.policy.Sanitize(b.String()))
	return strings.Join(strings.Fields(clean), " ")
}

func collectText(b *bytes.Buffer, n ast.Node, src []byte) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(src))
			if c.SoftLineBreak() || c.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		case *ast.RawHTML:
			for i := 0; i < c.Segments.Len(); i++ {
				segment := c.Segments.At(i)
				b.Write(segment.Value(src))
			}
		case *ast.AutoLink:
			b.Write(c.Label(src))
		default:
			collectText(b, child, src)
		}
	}
}

func explicitID(h *ast.Heading) string {
	value, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	switch v := value.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	}
	return ""
}

func lineOf(h *ast.Heading, src []byte) int {
	lines := h.Lines()
	if lines == nil || lines.Len() == 0 {
		return 0
	}
	return bytes.Count(src[:lines.At(0).Start], []byte("\n")) + 1
}
