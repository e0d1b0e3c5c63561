// Package graph builds the class inheritance graph of the parsed sources.
package graph

import (
	"sort"
	"strings"

	"github.com/dura2d/navgen/internal/parser"
	"golang.org/x/text/cases"
)

// Node represents a class, struct or union in the inheritance graph
type Node struct {
	ID       string // qualified name
	Symbol   parser.Symbol
	File     string
	OutEdges []string // documented base classes
	InEdges  []string // directly derived classes
}

// Graph represents the inheritance relations between documented compounds
type Graph struct {
	Nodes     map[string]*Node    // ID -> Node
	FileNodes map[string][]string // file -> list of node IDs in that file
}

// Tree is one entry of the class hierarchy. A class with several documented
// bases appears under each of them.
type Tree struct {
	Node     *Node
	Children []*Tree
}

// NewGraph creates a new empty graph
func NewGraph() *Graph {
	return &Graph{
		Nodes:     make(map[string]*Node),
		FileNodes: make(map[string][]string),
	}
}

// BuildFromParseResult constructs the graph from parsed files. The first
// declaration of a compound wins; private nested compounds are left out.
func BuildFromParseResult(result *parser.ParseResult) *Graph {
	g := NewGraph()

	// First pass: create all nodes
	for _, file := range result.Files {
		for _, sym := range file.Symbols {
			if !sym.Kind.IsCompound() || !sym.Visible() {
				continue
			}
			id := sym.QualifiedName()
			if _, exists := g.Nodes[id]; exists {
				continue
			}
			g.Nodes[id] = &Node{
				ID:       id,
				Symbol:   sym,
				File:     file.Path,
				OutEdges: make([]string, 0),
				InEdges:  make([]string, 0),
			}
			g.FileNodes[file.Path] = append(g.FileNodes[file.Path], id)
		}
	}

	byName := make(map[string][]string)
	for id, node := range g.Nodes {
		byName[node.Symbol.Name] = append(byName[node.Symbol.Name], id)
	}

	// Second pass: resolve base classes
	for _, node := range g.Nodes {
		for _, base := range node.Symbol.Bases {
			target, ok := g.resolve(node.Symbol.Scope, base, byName)
			if !ok || target == node.ID {
				continue
			}
			node.OutEdges = append(node.OutEdges, target)
			g.Nodes[target].InEdges = append(g.Nodes[target].InEdges, node.ID)
		}
	}

	g.normalizeEdges()
	return g
}

// resolve finds the documented compound a base specifier refers to, looking
// outward from scope and falling back to a unique unqualified name.
func (g *Graph) resolve(scope, base string, byName map[string][]string) (string, bool) {
	if idx := strings.Index(base, "<"); idx >= 0 {
		base = base[:idx]
	}
	base = strings.TrimPrefix(strings.TrimSpace(base), "::")
	if base == "" {
		return "", false
	}

	parts := strings.Split(scope, "::")
	if scope == "" {
		parts = nil
	}
	for i := len(parts); i >= 0; i-- {
		candidate := base
		if i > 0 {
			candidate = strings.Join(parts[:i], "::") + "::" + base
		}
		if _, ok := g.Nodes[candidate]; ok {
			return candidate, true
		}
	}

	name := base
	if idx := strings.LastIndex(base, "::"); idx >= 0 {
		name = base[idx+2:]
	}
	if ids := byName[name]; len(ids) == 1 {
		return ids[0], true
	}
	return "", false
}

func (g *Graph) normalizeEdges() {
	for _, node := range g.Nodes {
		node.OutEdges = dedupeAndSort(node.OutEdges)
		node.InEdges = dedupeAndSort(node.InEdges)
	}
}

func dedupeAndSort(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

// NodesForFile returns all nodes in a file, sorted by line number
func (g *Graph) NodesForFile(file string) []*Node {
	ids, ok := g.FileNodes[file]
	if !ok {
		return nil
	}

	nodes := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if node, ok := g.Nodes[id]; ok {
			nodes = append(nodes, node)
		}
	}

	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Symbol.Line == nodes[j].Symbol.Line {
			return nodes[i].ID < nodes[j].ID
		}
		return nodes[i].Symbol.Line < nodes[j].Symbol.Line
	})

	return nodes
}

// Files returns all unique files in the graph
func (g *Graph) Files() []string {
	files := make([]string, 0, len(g.FileNodes))
	for file := range g.FileNodes {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

// Sorted returns every node ordered by display name.
func (g *Graph) Sorted() []*Node {
	nodes := make([]*Node, 0, len(g.Nodes))
	for _, node := range g.Nodes {
		nodes = append(nodes, node)
	}
	sortNodes(nodes)
	return nodes
}

// Hierarchy returns the inheritance forest. Roots are compounds without a
// documented base. Children are sorted by name and cycles are cut at the
// first repeated class on a path.
func (g *Graph) Hierarchy() []*Tree {
	var roots []*Node
	for _, node := range g.Nodes {
		if len(node.OutEdges) == 0 {
			roots = append(roots, node)
		}
	}
	sortNodes(roots)

	placed := make(map[string]bool)
	forest := make([]*Tree, 0, len(roots))
	for _, root := range roots {
		forest = append(forest, g.expand(root, map[string]bool{}, placed))
	}

	// Classes that only sit on an inheritance cycle have no root above them.
	for _, node := range g.Sorted() {
		if !placed[node.ID] {
			forest = append(forest, g.expand(node, map[string]bool{}, placed))
		}
	}
	return forest
}

func (g *Graph) expand(node *Node, onPath, placed map[string]bool) *Tree {
	tree := &Tree{Node: node}
	placed[node.ID] = true
	onPath[node.ID] = true
	defer delete(onPath, node.ID)

	children := make([]*Node, 0, len(node.InEdges))
	for _, id := range node.InEdges {
		if onPath[id] {
			continue
		}
		children = append(children, g.Nodes[id])
	}
	sortNodes(children)
	for _, child := range children {
		tree.Children = append(tree.Children, g.expand(child, onPath, placed))
	}
	return tree
}

func sortNodes(nodes []*Node) {
	fold := cases.Fold()
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := fold.String(nodes[i].ID), fold.String(nodes[j].ID)
		if a != b {
			return a < b
		}
		return nodes[i].ID < nodes[j].ID
	})
}
