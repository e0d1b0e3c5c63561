package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/dura2d/navgen/internal/navjs"
	"github.com/dura2d/navgen/internal/navtree"
	"github.com/spf13/cobra"
)

var (
	showGroupStyle  = lipgloss.NewStyle().Bold(true)
	showLeafStyle   = lipgloss.NewStyle()
	showLinkStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#8A8A8A"})
	showScriptStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "#005FAF", Dark: "#5FAFFF"})
	showEnumStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#A8A8A8", Dark: "#585858"})
)

// ShowNode is the JSON form of a navigation node.
type ShowNode struct {
	Label      string      `json:"label"`
	Link       string      `json:"link,omitempty"`
	Script     string      `json:"script,omitempty"`
	Unresolved bool        `json:"unresolved,omitempty"`
	Truncated  int         `json:"truncated,omitempty"`
	Children   []*ShowNode `json:"children,omitempty"`
}

func RunShow(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	depth, err := OptionalIntFlag(cmd, "depth", 0)
	if err != nil {
		return err
	}

	dataPath, _, err := ResolveDataFile(cmd, args)
	if err != nil {
		return err
	}
	t, err := navjs.Load(dataPath)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(ToShowNode(t.Root, depth))
	}
	fmt.Println(RenderTree(t.Root, depth))
	return nil
}

// ToShowNode converts n, cutting the tree below depth levels (0 is unlimited).
func ToShowNode(n *navtree.Node, depth int) *ShowNode {
	out := &ShowNode{Label: n.Label, Link: n.Link, Script: n.Script, Unresolved: n.Unresolved()}
	if depth == 1 {
		out.Truncated = navtree.Count(n) - 1
		return out
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, ToShowNode(child, nextDepth(depth)))
	}
	return out
}

// RenderTree draws n as an indented tree, cut below depth levels (0 is
// unlimited).
func RenderTree(n *navtree.Node, depth int) string {
	return buildTree(n, depth).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(showEnumStyle).
		String()
}

func buildTree(n *navtree.Node, depth int) *tree.Tree {
	t := tree.Root(renderLabel(n, depth))
	if depth == 1 {
		return t
	}
	for _, child := range n.Children {
		if child.IsLeaf() || depth == 2 {
			t.Child(renderLabel(child, nextDepth(depth)))
			continue
		}
		t.Child(buildTree(child, nextDepth(depth)))
	}
	return t
}

func renderLabel(n *navtree.Node, depth int) string {
	style := showLeafStyle
	if !n.IsLeaf() || n.Script != "" {
		style = showGroupStyle
	}
	label := style.Render(n.Label)
	if n.Link != "" {
		label += " " + showLinkStyle.Render(n.Link)
	}
	switch {
	case n.Unresolved():
		label += " " + showScriptStyle.Render("["+n.Script+".js, not loaded]")
	case n.Script != "":
		label += " " + showScriptStyle.Render("["+n.Script+".js]")
	}
	if depth == 1 && len(n.Children) > 0 {
		label += " " + showLinkStyle.Render(fmt.Sprintf("(+%d)", navtree.Count(n)-1))
	}
	return label
}

func nextDepth(depth int) int {
	if depth == 0 {
		return 0
	}
	return depth - 1
}
