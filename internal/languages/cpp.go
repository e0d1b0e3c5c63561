package languages

import (
	"context"
	"regexp"
	"strings"

	"github.com/dura2d/navgen/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// CppParser implements parsing for C and C++ sources and headers
type CppParser struct {
	parser      *sitter.Parser
	stripMacros []*regexp.Regexp
}

// NewCppParser creates a new C++ parser. stripMacros names export or
// attribute macros (such as D2_API) that are blanked out before parsing.
func NewCppParser(stripMacros ...string) *CppParser {
	p := sitter.NewParser()
	p.SetLanguage(cpp.GetLanguage())

	patterns := make([]*regexp.Regexp, 0, len(stripMacros))
	for _, name := range stripMacros {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(name)+`\b`))
	}
	return &CppParser{parser: p, stripMacros: patterns}
}

func (c *CppParser) Language() string {
	return "cpp"
}

func (c *CppParser) Extensions() []string {
	return []string{".h", ".hh", ".hpp", ".hxx", ".inl", ".c", ".cc", ".cpp", ".cxx"}
}

func (c *CppParser) Parse(filename string, content []byte) (*parser.FileSymbols, error) {
	src := blankMacros(content, c.stripMacros)
	tree, err := c.parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	file := &cppFile{
		src:    src,
		guards: make(map[string]bool),
		out: &parser.FileSymbols{
			Path:     filename,
			Language: "cpp",
			Symbols:  make([]parser.Symbol, 0),
			Includes: make([]string, 0),
		},
	}
	file.walk(tree.RootNode(), cppScope{})

	return file.out, nil
}

// blankMacros replaces every use of the given macros, including a call-style
// argument list, with spaces so byte offsets and line numbers are preserved.
func blankMacros(content []byte, patterns []*regexp.Regexp) []byte {
	if len(patterns) == 0 {
		return content
	}
	out := make([]byte, len(content))
	copy(out, content)
	for _, re := range patterns {
		for _, loc := range re.FindAllIndex(out, -1) {
			if inDirective(out, loc[0]) {
				continue
			}
			end := loc[1]
			next := end
			for next < len(out) && (out[next] == ' ' || out[next] == '\t') {
				next++
			}
			if next < len(out) && out[next] == '(' {
				depth := 0
				for i := next; i < len(out); i++ {
					if out[i] == '(' {
						depth++
					} else if out[i] == ')' {
						depth--
						if depth == 0 {
							end = i + 1
							break
						}
					}
				}
			}
			for i := loc[0]; i < end; i++ {
				if out[i] != '\n' {
					out[i] = ' '
				}
			}
		}
	}
	return out
}

func inDirective(src []byte, offset int) bool {
	start := offset
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	line := strings.TrimLeft(string(src[start:offset]), " \t")
	return strings.HasPrefix(line, "#")
}

type cppScope struct {
	path   []string
	class  bool
	access string
}

func (s cppScope) qualified() string {
	return strings.Join(s.path, "::")
}

func (s cppScope) enter(name string, class bool, access string) cppScope {
	path := append([]string(nil), s.path...)
	if name != "" {
		path = append(path, name)
	}
	return cppScope{path: path, class: class, access: access}
}

type cppFile struct {
	src    []byte
	out    *parser.FileSymbols
	guards map[string]bool
}

func (f *cppFile) text(node *sitter.Node) string {
	return node.Content(f.src)
}

func (f *cppFile) add(node *sitter.Node, sc cppScope, sym parser.Symbol) {
	sym.Scope = sc.qualified()
	sym.Member = sc.class
	if sc.class {
		sym.Access = sc.access
	}
	sym.Line = int(node.StartPoint().Row) + 1
	f.out.Symbols = append(f.out.Symbols, sym)
}

func (f *cppFile) walk(node *sitter.Node, sc cppScope) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "access_specifier" {
			sc.access = strings.TrimSuffix(strings.TrimSpace(f.text(child)), ":")
			continue
		}
		f.visit(child, sc)
	}
}

func (f *cppFile) visit(node *sitter.Node, sc cppScope) {
	switch node.Type() {
	case "namespace_definition":
		name := ""
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			name = f.text(nameNode)
		}
		if body := node.ChildByFieldName("body"); body != nil {
			f.walk(body, sc.enter(name, false, ""))
		}

	case "linkage_specification":
		if body := node.ChildByFieldName("body"); body != nil {
			if body.Type() == "declaration_list" {
				f.walk(body, sc)
			} else {
				f.visit(body, sc)
			}
		}

	case "preproc_ifdef":
		f.noteIncludeGuard(node)
		f.walk(node, sc)

	case "preproc_if", "preproc_else", "preproc_elif", "preproc_elifdef", "template_declaration":
		f.walk(node, sc)

	case "preproc_include":
		if path := node.ChildByFieldName("path"); path != nil {
			f.out.Includes = append(f.out.Includes, strings.Trim(f.text(path), `"<>`))
		}

	case "preproc_def", "preproc_function_def":
		f.macro(node)

	case "class_specifier", "struct_specifier", "union_specifier":
		f.compound(node, sc)

	case "enum_specifier":
		f.enum(node, sc)

	case "declaration", "field_declaration":
		f.declaration(node, sc)

	case "function_definition":
		if isStatic(node, f.src) && !sc.class {
			return
		}
		f.declarator(node, node.ChildByFieldName("declarator"), sc, parser.SymbolFunction)

	case "type_definition":
		if typ := node.ChildByFieldName("type"); typ != nil {
			f.visit(typ, sc)
		}
		for _, decl := range fieldChildren(node, "declarator") {
			if info := f.unwrap(decl); info.name != "" && !info.qualified {
				f.add(node, sc, parser.Symbol{Name: info.name, Kind: parser.SymbolTypedef})
			}
		}

	case "alias_declaration":
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			f.add(node, sc, parser.Symbol{Name: f.text(nameNode), Kind: parser.SymbolTypedef})
		}

	case "friend_declaration":
		f.friend(node, sc)
	}
}

func (f *cppFile) noteIncludeGuard(node *sitter.Node) {
	if !strings.HasPrefix(f.text(node), "#ifndef") {
		return
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	guard := f.text(nameNode)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.StartByte() == nameNode.StartByte() || child.Type() == "comment" {
			continue
		}
		if child.Type() == "preproc_def" && child.ChildByFieldName("value") == nil {
			if name := child.ChildByFieldName("name"); name != nil && f.text(name) == guard {
				f.guards[guard] = true
			}
		}
		return
	}
}

func (f *cppFile) macro(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := f.text(nameNode)
	if node.Type() == "preproc_def" && node.ChildByFieldName("value") == nil && f.guards[name] {
		return
	}
	sym := parser.Symbol{Name: name, Kind: parser.SymbolMacro}
	if params := node.ChildByFieldName("parameters"); params != nil {
		sym.Args = normalizeSpace(f.text(params))
	}
	f.add(node, cppScope{}, sym)
}

func (f *cppFile) compound(node *sitter.Node, sc cppScope) {
	nameNode := node.ChildByFieldName("name")
	body := node.ChildByFieldName("body")
	if nameNode == nil || body == nil {
		return
	}
	name := f.typeName(nameNode)
	if strings.Contains(name, "::") {
		return
	}

	kind := parser.SymbolClass
	access := parser.AccessPrivate
	switch node.Type() {
	case "struct_specifier":
		kind = parser.SymbolStruct
		access = parser.AccessPublic
	case "union_specifier":
		kind = parser.SymbolUnion
		access = parser.AccessPublic
	}

	sym := parser.Symbol{Name: name, Kind: kind}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "base_class_clause" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			base := child.NamedChild(j)
			switch base.Type() {
			case "type_identifier", "qualified_identifier", "template_type":
				sym.Bases = append(sym.Bases, f.typeName(base))
			}
		}
	}
	f.add(node, sc, sym)
	f.walk(body, sc.enter(name, true, access))
}

func (f *cppFile) enum(node *sitter.Node, sc cppScope) {
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	name := ""
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		name = f.typeName(nameNode)
		f.add(node, sc, parser.Symbol{Name: name, Kind: parser.SymbolEnum})
	}

	valueScope := sc
	for i := 0; i < int(node.ChildCount()); i++ {
		switch node.Child(i).Type() {
		case "class", "struct":
			if name != "" {
				valueScope = sc.enter(name, sc.class, sc.access)
			}
		}
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		value := body.NamedChild(i)
		if value.Type() != "enumerator" {
			continue
		}
		if nameNode := value.ChildByFieldName("name"); nameNode != nil {
			f.add(value, valueScope, parser.Symbol{Name: f.text(nameNode), Kind: parser.SymbolEnumerator})
		}
	}
}

func (f *cppFile) declaration(node *sitter.Node, sc cppScope) {
	if typ := node.ChildByFieldName("type"); typ != nil {
		switch typ.Type() {
		case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
			f.visit(typ, sc)
		}
	}
	if isStatic(node, f.src) && !sc.class {
		return
	}
	for _, decl := range fieldChildren(node, "declarator") {
		f.declarator(node, decl, sc, parser.SymbolVariable)
	}
}

// declarator records the entity named by decl. Function declarators yield
// functions; anything else falls back to kind.
func (f *cppFile) declarator(node, decl *sitter.Node, sc cppScope, kind parser.SymbolKind) {
	if decl == nil {
		return
	}
	info := f.unwrap(decl)
	if info.name == "" || info.qualified {
		return
	}
	sym := parser.Symbol{Name: info.name, Kind: parser.SymbolVariable}
	if info.function != nil {
		sym.Kind = parser.SymbolFunction
		sym.Args = f.args(info.function)
	} else if kind == parser.SymbolFunction {
		return
	}
	f.add(node, sc, sym)
}

func (f *cppFile) friend(node *sitter.Node, sc cppScope) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "type_identifier", "qualified_identifier", "template_type":
			f.add(node, sc, parser.Symbol{Name: f.typeName(child), Kind: parser.SymbolFriend})
		case "class_specifier", "struct_specifier", "union_specifier":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				f.add(node, sc, parser.Symbol{Name: f.typeName(nameNode), Kind: parser.SymbolFriend})
			}
		case "declaration", "function_definition":
			decl := child.ChildByFieldName("declarator")
			if decl == nil {
				if typ := child.ChildByFieldName("type"); typ != nil {
					if nameNode := typ.ChildByFieldName("name"); nameNode != nil {
						f.add(node, sc, parser.Symbol{Name: f.typeName(nameNode), Kind: parser.SymbolFriend})
					}
				}
				continue
			}
			info := f.unwrap(decl)
			if info.name == "" {
				continue
			}
			sym := parser.Symbol{Name: info.name, Kind: parser.SymbolFriend}
			if info.function != nil {
				sym.Args = f.args(info.function)
			}
			f.add(node, sc, sym)
		}
	}
}

type declInfo struct {
	name      string
	qualified bool
	function  *sitter.Node
}

func (f *cppFile) unwrap(decl *sitter.Node) declInfo {
	var info declInfo
	pointerAfterFunction := false
	for decl != nil {
		switch decl.Type() {
		case "identifier", "field_identifier", "type_identifier", "destructor_name",
			"operator_name", "operator_cast", "template_function":
			info.name = normalizeSpace(f.text(decl))
			if pointerAfterFunction {
				info.function = nil
			}
			return info
		case "qualified_identifier":
			info.name = normalizeSpace(f.text(decl))
			info.qualified = true
			return info
		case "function_declarator":
			if info.function == nil {
				info.function = decl
			}
		case "pointer_declarator", "reference_declarator":
			if info.function != nil {
				pointerAfterFunction = true
			}
		}
		next := decl.ChildByFieldName("declarator")
		if next == nil && decl.NamedChildCount() > 0 {
			next = decl.NamedChild(int(decl.NamedChildCount()) - 1)
		}
		decl = next
	}
	return info
}

func (f *cppFile) args(fn *sitter.Node) string {
	var b strings.Builder
	if params := fn.ChildByFieldName("parameters"); params != nil {
		b.WriteString(normalizeSpace(f.text(params)))
	}
	for i := 0; i < int(fn.NamedChildCount()); i++ {
		child := fn.NamedChild(i)
		if child.Type() == "type_qualifier" {
			b.WriteString(" ")
			b.WriteString(f.text(child))
		}
	}
	return b.String()
}

func (f *cppFile) typeName(node *sitter.Node) string {
	if node.Type() == "template_type" {
		if name := node.ChildByFieldName("name"); name != nil {
			return f.text(name)
		}
	}
	return normalizeSpace(f.text(node))
}

func isStatic(node *sitter.Node, src []byte) bool {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "storage_class_specifier" && child.Content(src) == "static" {
			return true
		}
	}
	return false
}

func fieldChildren(node *sitter.Node, field string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.FieldNameForChild(i) == field {
			out = append(out, node.Child(i))
		}
	}
	return out
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
