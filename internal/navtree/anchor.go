package navtree

import (
	"fmt"
	"strconv"
	"strings"
)

// AutoTOCPrefix prefixes anchors numbered automatically for markdown headings.
const AutoTOCPrefix = "autotoc_md"

// AutoTOCAnchor returns the anchor name for counter value n.
func AutoTOCAnchor(n int) string {
	return fmt.Sprintf("%s%d", AutoTOCPrefix, n)
}

// SplitLink separates a link into its page and anchor fragment.
func SplitLink(link string) (page, anchor string) {
	if idx := strings.IndexByte(link, '#'); idx >= 0 {
		return link[:idx], link[idx+1:]
	}
	return link, ""
}

// ParseAutoTOC extracts the counter value from a link whose anchor is an
// automatically numbered heading anchor.
func ParseAutoTOC(link string) (int, bool) {
	_, anchor := SplitLink(link)
	if !strings.HasPrefix(anchor, AutoTOCPrefix) {
		return 0, false
	}
	digits := anchor[len(AutoTOCPrefix):]
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 || strconv.Itoa(n) != digits {
		return 0, false
	}
	return n, true
}

// AnchorRef is one automatically numbered anchor found in the tree.
type AnchorRef struct {
	Number int
	Link   string
	Label  string
	Path   []int
}

// Anchors lists the autotoc anchors of the tree in pre-order.
func Anchors(root *Node) []AnchorRef {
	var out []AnchorRef
	_ = Walk(root, func(n *Node, path []int) error {
		if num, ok := ParseAutoTOC(n.Link); ok {
			out = append(out, AnchorRef{Number: num, Link: n.Link, Label: n.Label, Path: path})
		}
		return nil
	})
	return out
}

// LeadingAnchors counts the autotoc anchors seen in pre-order before the first
// node linking to a page that is neither the root page nor empty.
func LeadingAnchors(root *Node) int {
	if root == nil {
		return 0
	}
	rootPage, _ := SplitLink(root.Link)
	count := 0
	_ = Walk(root, func(n *Node, path []int) error {
		if len(path) == 0 {
			return nil
		}
		page, _ := SplitLink(n.Link)
		if page != "" && page != rootPage {
			return errStop
		}
		if _, ok := ParseAutoTOC(n.Link); ok {
			count++
		}
		return nil
	})
	return count
}

var errStop = fmt.Errorf("stop walk")
