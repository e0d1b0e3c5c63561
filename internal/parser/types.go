package parser

import "strings"

// SymbolKind represents the type of documented symbol
type SymbolKind int

const (
	SymbolClass SymbolKind = iota
	SymbolStruct
	SymbolUnion
	SymbolFunction
	SymbolVariable
	SymbolTypedef
	SymbolEnum
	SymbolEnumerator
	SymbolFriend
	SymbolMacro
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolClass:
		return "class"
	case SymbolStruct:
		return "struct"
	case SymbolUnion:
		return "union"
	case SymbolFunction:
		return "func"
	case SymbolVariable:
		return "var"
	case SymbolTypedef:
		return "typedef"
	case SymbolEnum:
		return "enum"
	case SymbolEnumerator:
		return "enumvalue"
	case SymbolFriend:
		return "friend"
	case SymbolMacro:
		return "define"
	default:
		return "unknown"
	}
}

// IsCompound reports whether symbols of this kind get their own page.
func (k SymbolKind) IsCompound() bool {
	return k == SymbolClass || k == SymbolStruct || k == SymbolUnion
}

// MarshalText renders the kind by name in JSON output.
func (k SymbolKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Access levels as written in class bodies.
const (
	AccessPublic    = "public"
	AccessProtected = "protected"
	AccessPrivate   = "private"
)

// Symbol represents a documented code symbol (class, member, global, macro)
type Symbol struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Kind SymbolKind `json:"kind"`
	// Scope is the enclosing namespace or class path joined with "::".
	Scope string `json:"scope,omitempty"`
	// Member is set for symbols declared inside a class, struct or union body.
	Member bool   `json:"member,omitempty"`
	Access string `json:"access,omitempty"`
	// Args is the normalized parameter list of functions and function-like
	// macros, including trailing qualifiers such as "const".
	Args  string   `json:"args,omitempty"`
	Bases []string `json:"bases,omitempty"`
	File  string   `json:"file"`
	Line  int      `json:"line"`
}

// QualifiedName joins Scope and Name.
func (s Symbol) QualifiedName() string {
	if s.Scope == "" {
		return s.Name
	}
	return s.Scope + "::" + s.Name
}

// Visible reports whether the symbol shows up in the generated index.
func (s Symbol) Visible() bool {
	return s.Access != AccessPrivate || s.Kind == SymbolFriend
}

// FileSymbols holds all symbols extracted from a single file
type FileSymbols struct {
	Path     string   `json:"path"`
	Language string   `json:"language"`
	Symbols  []Symbol `json:"symbols"`
	Includes []string `json:"includes,omitempty"`
	Hash     string   `json:"hash"` // file content hash for incremental updates
}

// Dir returns the slash-separated directory of the file, "" at the root.
func (f FileSymbols) Dir() string {
	idx := strings.LastIndex(f.Path, "/")
	if idx < 0 {
		return ""
	}
	return f.Path[:idx]
}

// ParseIssue captures non-fatal parser warnings/errors encountered while scanning files.
type ParseIssue struct {
	File     string `json:"file"`
	Language string `json:"language,omitempty"`
	Severity string `json:"severity"` // warning | error
	Message  string `json:"message"`
}

// ParseResult holds the complete parse result for a source tree
type ParseResult struct {
	Files    []FileSymbols
	RootPath string
	Issues   []ParseIssue
}

// Symbols returns every symbol of every file in file order.
func (r *ParseResult) Symbols() []Symbol {
	var out []Symbol
	for _, f := range r.Files {
		out = append(out, f.Symbols...)
	}
	return out
}
