// Package docindex groups documented members into the categories and letter
// pages of the class and file member indices.
package docindex

import (
	"sort"
	"unicode/utf8"

	"github.com/dura2d/navgen/internal/navtree"
	"github.com/dura2d/navgen/internal/parser"
	"golang.org/x/text/cases"
)

// Page prefixes of the two member indices.
const (
	ClassPrefix = "functions"
	FilePrefix  = "globals"
)

// DefaultMultipageThreshold is the member count above which a category is
// split into one page per initial letter.
const DefaultMultipageThreshold = 200

// Category is one list of the member index, such as "Functions".
type Category struct {
	Key     string // page suffix: "", "func", "vars", ...
	Title   string
	Members []parser.Symbol
}

// Letter is one page of a split category.
type Letter struct {
	Letter  string
	Link    string
	Members []parser.Symbol
}

// Index is a member index: "Class Members" or "File Members".
type Index struct {
	Prefix     string
	Categories []Category
	Threshold  int
}

type categorySpec struct {
	key   string
	title string
	kinds []parser.SymbolKind
}

var classCategories = []categorySpec{
	{key: "", title: "All"},
	{key: "func", title: "Functions", kinds: []parser.SymbolKind{parser.SymbolFunction}},
	{key: "vars", title: "Variables", kinds: []parser.SymbolKind{parser.SymbolVariable}},
	{key: "type", title: "Typedefs", kinds: []parser.SymbolKind{parser.SymbolTypedef}},
	{key: "enum", title: "Enumerations", kinds: []parser.SymbolKind{parser.SymbolEnum}},
	{key: "eval", title: "Enumerator", kinds: []parser.SymbolKind{parser.SymbolEnumerator}},
	{key: "rela", title: "Related Symbols", kinds: []parser.SymbolKind{parser.SymbolFriend}},
}

var fileCategories = []categorySpec{
	{key: "", title: "All"},
	{key: "func", title: "Functions", kinds: []parser.SymbolKind{parser.SymbolFunction}},
	{key: "vars", title: "Variables", kinds: []parser.SymbolKind{parser.SymbolVariable}},
	{key: "type", title: "Typedefs", kinds: []parser.SymbolKind{parser.SymbolTypedef}},
	{key: "enum", title: "Enumerations", kinds: []parser.SymbolKind{parser.SymbolEnum}},
	{key: "eval", title: "Enumerator", kinds: []parser.SymbolKind{parser.SymbolEnumerator}},
	{key: "defs", title: "Macros", kinds: []parser.SymbolKind{parser.SymbolMacro}},
}

// BuildClassMembers indexes the visible members of classes, structs and
// unions. Friends are listed as related symbols.
func BuildClassMembers(symbols []parser.Symbol, threshold int) *Index {
	members := filter(symbols, func(s parser.Symbol) bool {
		return s.Member && !s.Kind.IsCompound() && s.Visible()
	})
	return build(ClassPrefix, classCategories, members, threshold)
}

// BuildFileMembers indexes namespace-level functions, variables, typedefs,
// enums, enumerators and macros.
func BuildFileMembers(symbols []parser.Symbol, threshold int) *Index {
	members := filter(symbols, func(s parser.Symbol) bool {
		return !s.Member && !s.Kind.IsCompound() && s.Kind != parser.SymbolFriend
	})
	return build(FilePrefix, fileCategories, members, threshold)
}

// filter keeps the first symbol of every ID that passes keep.
func filter(symbols []parser.Symbol, keep func(parser.Symbol) bool) []parser.Symbol {
	seen := make(map[string]bool)
	out := make([]parser.Symbol, 0, len(symbols))
	for _, sym := range symbols {
		if !keep(sym) {
			continue
		}
		id := sym.ID
		if id == "" {
			id = parser.StableSymbolID(sym)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, sym)
	}
	return out
}

func build(prefix string, specs []categorySpec, members []parser.Symbol, threshold int) *Index {
	if threshold <= 0 {
		threshold = DefaultMultipageThreshold
	}
	SortSymbols(members)

	idx := &Index{Prefix: prefix, Threshold: threshold}
	for _, spec := range specs {
		var selected []parser.Symbol
		for _, sym := range members {
			if spec.kinds == nil || containsKind(spec.kinds, sym.Kind) {
				selected = append(selected, sym)
			}
		}
		if len(selected) == 0 {
			continue
		}
		idx.Categories = append(idx.Categories, Category{Key: spec.key, Title: spec.title, Members: selected})
	}
	return idx
}

func containsKind(kinds []parser.SymbolKind, kind parser.SymbolKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Empty reports whether the index has no members at all.
func (idx *Index) Empty() bool {
	return len(idx.Categories) == 0
}

// Link returns the landing page of the index.
func (idx *Index) Link() string {
	return idx.Prefix + ".html"
}

// CategoryLink returns the first page of a category.
func (idx *Index) CategoryLink(c Category) string {
	return idx.stem(c) + ".html"
}

// Split reports whether a category gets one page per initial letter.
func (idx *Index) Split(c Category) bool {
	return len(c.Members) > idx.Threshold
}

func (idx *Index) stem(c Category) string {
	if c.Key == "" {
		return idx.Prefix
	}
	return idx.Prefix + "_" + c.Key
}

// Letters groups a category by folded initial letter. The first letter lives
// on the category's own page; the others on "<page>_<suffix>.html".
func (idx *Index) Letters(c Category) []Letter {
	var letters []Letter
	for _, sym := range c.Members {
		letter := InitialLetter(sym.Name)
		if n := len(letters); n > 0 && letters[n-1].Letter == letter {
			letters[n-1].Members = append(letters[n-1].Members, sym)
			continue
		}
		link := idx.stem(c) + ".html"
		if len(letters) > 0 {
			link = idx.stem(c) + "_" + navtree.LetterSuffix(letter) + ".html"
		}
		letters = append(letters, Letter{Letter: letter, Link: link, Members: []parser.Symbol{sym}})
	}
	return letters
}

// InitialLetter returns the case-folded first character of name.
func InitialLetter(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return ""
	}
	return cases.Fold().String(string(r))
}

// SortSymbols orders symbols by case-folded name, then byte order, then
// qualified name.
func SortSymbols(symbols []parser.Symbol) {
	fold := cases.Fold()
	keys := make(map[string]string, len(symbols))
	key := func(name string) string {
		k, ok := keys[name]
		if !ok {
			k = fold.String(name)
			keys[name] = k
		}
		return k
	}
	sort.SliceStable(symbols, func(i, j int) bool {
		a, b := symbols[i], symbols[j]
		if ka, kb := key(a.Name), key(b.Name); ka != kb {
			return ka < kb
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.QualifiedName() < b.QualifiedName()
	})
}
