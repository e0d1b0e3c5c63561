// Package doctree assembles the navigation tree of a documentation set from
// its markdown pages and parsed sources.
package doctree

import (
	"path"
	"sort"
	"strings"

	"github.com/dura2d/navgen/internal/docindex"
	"github.com/dura2d/navgen/internal/graph"
	"github.com/dura2d/navgen/internal/logging"
	"github.com/dura2d/navgen/internal/markdown"
	"github.com/dura2d/navgen/internal/navtree"
	"github.com/dura2d/navgen/internal/parser"
	"golang.org/x/text/cases"
)

// Fixed page names of the generated reference sections.
const (
	MainPage      = "index.html"
	ClassListPage = "annotated.html"
	ClassIndex    = "classes.html"
	HierarchyPage = "hierarchy.html"
	FileListPage  = "files.html"
)

// Page is a markdown source with its path relative to the project root.
type Page struct {
	Path   string
	Source []byte
}

// Sources are the inputs of one build.
type Sources struct {
	MainPage *Page
	Pages    []Page
	Code     *parser.ParseResult
}

// Options tune the generated tree.
type Options struct {
	ProjectName        string
	MaxHeadingLevel    int
	MultipageThreshold int
	ShardSize          int
	// StripFromPath prefixes are removed from source paths in the file list.
	StripFromPath []string
	CaseSense     bool
	Messages      navtree.Messages
}

// Result is a generated navigation index plus the data it was built from.
type Result struct {
	Tree   *navtree.Tree
	Shards []navtree.Shard
	Pages  []*markdown.Page
}

// Build generates the navigation tree, its shards and the shard list.
func Build(src Sources, opts Options) (*Result, error) {
	b := &builder{
		opts:   opts,
		naming: navtree.Naming{CaseSense: opts.CaseSense},
	}
	counter := &markdown.Counter{}
	md := markdown.NewParser(counter, markdown.Options{MaxLevel: opts.MaxHeadingLevel})

	root := &navtree.Node{Label: opts.ProjectName, Link: MainPage}
	result := &Result{}

	if src.MainPage != nil {
		page, err := md.Parse(src.MainPage.Path, src.MainPage.Source)
		if err != nil {
			return nil, err
		}
		result.Pages = append(result.Pages, page)
		if root.Label == "" {
			root.Label = page.Title
		}
		root.Append(sectionNodes(MainPage, page.Sections)...)
	}
	if root.Label == "" {
		root.Label = "Main Page"
	}

	for _, extra := range src.Pages {
		page, err := md.Parse(extra.Path, extra.Source)
		if err != nil {
			return nil, err
		}
		result.Pages = append(result.Pages, page)
		link := b.naming.MarkdownPage(extra.Path)
		title := page.Title
		if title == "" {
			title = strings.TrimSuffix(path.Base(extra.Path), path.Ext(extra.Path))
		}
		node := navtree.Leaf(title, link)
		if sections := sectionNodes(link, page.Sections); len(sections) > 0 {
			node.Append(sections...)
		}
		root.Append(node)
	}

	if src.Code != nil {
		b.index(src.Code)
		if classes := b.classesNode(); classes != nil {
			root.Append(classes)
		}
		if files := b.filesNode(); files != nil {
			root.Append(files)
		}
	}

	shards := navtree.BuildShards(root, opts.ShardSize)
	messages := opts.Messages
	if messages.SyncOn == "" {
		messages.SyncOn = navtree.DefaultSyncOnMessage
	}
	if messages.SyncOff == "" {
		messages.SyncOff = navtree.DefaultSyncOffMessage
	}
	result.Tree = &navtree.Tree{Root: root, Index: navtree.ShardIndex(shards), Messages: messages}
	result.Shards = shards

	logging.NewLogger("doctree").
		WithField("nodes", navtree.Count(root)).
		WithField("shards", len(shards)).
		WithField("anchors", counter.Peek()).
		Info("Built navigation tree")
	return result, nil
}

func sectionNodes(page string, sections []*markdown.Section) []*navtree.Node {
	if len(sections) == 0 {
		return nil
	}
	nodes := make([]*navtree.Node, 0, len(sections))
	for _, s := range sections {
		node := navtree.Leaf(s.Title, page+"#"+s.Anchor)
		if children := sectionNodes(page, s.Children); len(children) > 0 {
			node.Append(children...)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

type builder struct {
	opts    Options
	naming  navtree.Naming
	code    *parser.ParseResult
	graph   *graph.Graph
	members map[string][]parser.Symbol // owning compound -> members in declaration order
	stems   map[string]string          // source path -> file page stem
}

func (b *builder) index(code *parser.ParseResult) {
	b.code = code
	b.graph = graph.BuildFromParseResult(code)
	b.members = make(map[string][]parser.Symbol)

	seen := make(map[string]bool)
	for _, sym := range code.Symbols() {
		if !sym.Member || sym.Kind.IsCompound() || !sym.Visible() || seen[sym.ID] {
			continue
		}
		owner := b.owner(sym.Scope)
		if owner == "" {
			continue
		}
		seen[sym.ID] = true
		b.members[owner] = append(b.members[owner], sym)
	}

	b.stems = make(map[string]string)
	baseCount := make(map[string]int)
	for _, f := range code.Files {
		baseCount[path.Base(f.Path)]++
	}
	for _, f := range code.Files {
		if baseCount[path.Base(f.Path)] > 1 {
			b.stems[f.Path] = navtree.EscapeName(b.displayPath(f.Path), b.opts.CaseSense)
		} else {
			b.stems[f.Path] = b.naming.FileStem(f.Path)
		}
	}
}

// owner returns the innermost documented compound enclosing scope.
func (b *builder) owner(scope string) string {
	for scope != "" {
		if _, ok := b.graph.Nodes[scope]; ok {
			return scope
		}
		idx := strings.LastIndex(scope, "::")
		if idx < 0 {
			return ""
		}
		scope = scope[:idx]
	}
	return ""
}

func (b *builder) classPage(node *graph.Node) string {
	return b.naming.ClassPage(node.Symbol.Kind.String(), node.ID)
}

func (b *builder) memberLink(sym parser.Symbol) string {
	var page string
	if sym.Member {
		owner := b.graph.Nodes[b.owner(sym.Scope)]
		if owner == nil {
			return ""
		}
		page = b.classPage(owner)
	} else {
		page = b.stems[sym.File] + ".html"
	}
	return page + "#" + navtree.MemberAnchor(sym.Scope, sym.Name, sym.Args)
}

func (b *builder) classesNode() *navtree.Node {
	if len(b.graph.Nodes) == 0 {
		return nil
	}
	classes := navtree.Group("Classes", ClassListPage)

	list := navtree.Deferred("Class List", ClassListPage, navtree.ScriptName(ClassListPage, ClassListPage))
	for _, node := range b.graph.Sorted() {
		list.Append(b.classNode(node, ClassListPage))
	}
	classes.Append(list, navtree.Leaf("Class Index", ClassIndex))

	hierarchy := navtree.Deferred("Class Hierarchy", HierarchyPage, navtree.ScriptName(HierarchyPage, ClassListPage))
	for _, tree := range b.graph.Hierarchy() {
		hierarchy.Append(b.hierarchyNode(tree))
	}
	classes.Append(hierarchy)

	idx := docindex.BuildClassMembers(b.code.Symbols(), b.opts.MultipageThreshold)
	if !idx.Empty() {
		classes.Append(b.memberIndexNode("Class Members", idx))
	}
	return classes
}

func (b *builder) classNode(node *graph.Node, parentLink string) *navtree.Node {
	link := b.classPage(node)
	members := b.members[node.ID]
	if len(members) == 0 {
		return navtree.Leaf(node.ID, link)
	}
	n := navtree.Deferred(node.ID, link, navtree.ScriptName(link, parentLink))
	for _, sym := range members {
		n.Append(navtree.Leaf(sym.Name, b.memberLink(sym)))
	}
	return n
}

func (b *builder) hierarchyNode(tree *graph.Tree) *navtree.Node {
	n := navtree.Leaf(tree.Node.ID, b.classPage(tree.Node))
	for _, child := range tree.Children {
		n.Append(b.hierarchyNode(child))
	}
	return n
}

func (b *builder) memberIndexNode(label string, idx *docindex.Index) *navtree.Node {
	group := navtree.Group(label, idx.Link())
	for _, c := range idx.Categories {
		link := idx.CategoryLink(c)
		if !idx.Split(c) {
			group.Append(navtree.Leaf(c.Title, link))
			continue
		}
		n := navtree.Deferred(c.Title, link, navtree.ScriptName(link, idx.Link()))
		for _, letter := range idx.Letters(c) {
			n.Append(navtree.Leaf(letter.Letter, letter.Link))
		}
		group.Append(n)
	}
	return group
}

// displayPath strips the first matching configured prefix.
func (b *builder) displayPath(p string) string {
	for _, prefix := range b.opts.StripFromPath {
		prefix = strings.Trim(path.Clean("/"+prefix), "/")
		if prefix == "" {
			continue
		}
		if strings.HasPrefix(p, prefix+"/") {
			return strings.TrimPrefix(p, prefix+"/")
		}
	}
	return p
}

type dirEntry struct {
	name  string
	dirs  map[string]*dirEntry
	files []parser.FileSymbols
}

func (b *builder) filesNode() *navtree.Node {
	if len(b.code.Files) == 0 {
		return nil
	}
	files := navtree.Group("Files", FileListPage)

	top := &dirEntry{dirs: make(map[string]*dirEntry)}
	for _, f := range b.code.Files {
		dir := top
		parts := strings.Split(b.displayPath(f.Path), "/")
		for _, part := range parts[:len(parts)-1] {
			next, ok := dir.dirs[part]
			if !ok {
				next = &dirEntry{name: part, dirs: make(map[string]*dirEntry)}
				dir.dirs[part] = next
			}
			dir = next
		}
		dir.files = append(dir.files, f)
	}

	list := navtree.Deferred("File List", FileListPage, navtree.ScriptName(FileListPage, FileListPage))
	list.Append(b.dirChildren(top, "")...)
	files.Append(list)

	idx := docindex.BuildFileMembers(b.code.Symbols(), b.opts.MultipageThreshold)
	if !idx.Empty() {
		files.Append(b.memberIndexNode("File Members", idx))
	}
	return files
}

func (b *builder) dirChildren(dir *dirEntry, prefix string) []*navtree.Node {
	names := make([]string, 0, len(dir.dirs))
	for name := range dir.dirs {
		names = append(names, name)
	}
	sortFolded(names)

	var out []*navtree.Node
	for _, name := range names {
		sub := dir.dirs[name]
		full := path.Join(prefix, name)
		link := b.naming.DirPage(full)
		n := navtree.Deferred(name, link, strings.TrimSuffix(link, ".html"))
		n.Append(b.dirChildren(sub, full)...)
		out = append(out, n)
	}

	sort.SliceStable(dir.files, func(i, j int) bool {
		return lessFolded(path.Base(dir.files[i].Path), path.Base(dir.files[j].Path))
	})
	for _, f := range dir.files {
		out = append(out, b.fileNode(f))
	}
	return out
}

func (b *builder) fileNode(f parser.FileSymbols) *navtree.Node {
	stem := b.stems[f.Path]
	link := stem + ".html"

	var children []*navtree.Node
	seen := make(map[string]bool)
	for _, sym := range f.Symbols {
		if seen[sym.ID] {
			continue
		}
		switch {
		case sym.Kind.IsCompound():
			if node, ok := b.graph.Nodes[sym.QualifiedName()]; ok && node.File == f.Path {
				children = append(children, navtree.Leaf(node.ID, b.classPage(node)))
			}
		case !sym.Member && sym.Kind != parser.SymbolFriend:
			children = append(children, navtree.Leaf(sym.Name, b.memberLink(sym)))
		default:
			continue
		}
		seen[sym.ID] = true
	}

	if len(children) == 0 {
		return navtree.Leaf(path.Base(f.Path), link)
	}
	return navtree.Deferred(path.Base(f.Path), link, stem, children...)
}

func lessFolded(a, b string) bool {
	fold := cases.Fold()
	fa, fb := fold.String(a), fold.String(b)
	if fa != fb {
		return fa < fb
	}
	return a < b
}

func sortFolded(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		return lessFolded(values[i], values[j])
	})
}
