package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockParser struct {
	lang string
	exts []string
}

func (m mockParser) Language() string {
	return m.lang
}

func (m mockParser) Extensions() []string {
	return m.exts
}

func (m mockParser) Parse(filename string, content []byte) (*FileSymbols, error) {
	return &FileSymbols{
		Path:     filename,
		Language: m.lang,
		Includes: []string{"b.h", " a.h", "b.h"},
		Symbols: []Symbol{
			{
				Name: "mock",
				Kind: SymbolFunction,
				Args: "(int x)",
				Line: 1,
			},
		},
	}, nil
}

func TestRegistryGetParserForFile(t *testing.T) {
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})

	p, ok := r.GetParserForFile("demo.MOCK")
	require.True(t, ok, "expected parser for .MOCK extension")
	assert.Equal(t, "mock", p.Language())

	_, ok = r.GetParserForFile("demo.txt")
	assert.False(t, ok)
	assert.Equal(t, []string{".mock"}, r.SupportedExtensions())
}

func TestParseDirectoryRespectsIgnoreRules(t *testing.T) {
	root := t.TempDir()
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})

	mustWriteFile(t, filepath.Join(root, "keep.mock"), "ok")
	mustWriteFile(t, filepath.Join(root, "skip", "ignored.mock"), "x")
	mustWriteFile(t, filepath.Join(root, "skip", "include.mock"), "y")
	mustWriteFile(t, filepath.Join(root, "html", "search.mock"), "z")

	result, err := r.ParseDirectory(root, []string{
		"skip/*",
		"!skip/include.mock",
	})
	require.NoError(t, err)

	got := make([]string, 0, len(result.Files))
	for _, file := range result.Files {
		got = append(got, file.Path)
	}
	assert.Equal(t, []string{"keep.mock", "skip/include.mock"}, got)

	first := result.Files[0]
	assert.Equal(t, []string{"a.h", "b.h"}, first.Includes)
	assert.Len(t, first.Hash, 16)
	require.Len(t, first.Symbols, 1)
	assert.Equal(t, "keep.mock", first.Symbols[0].File)
	assert.Equal(t, StableSymbolID(first.Symbols[0]), first.Symbols[0].ID)
}

func TestParsePathsReportsMissingInputs(t *testing.T) {
	root := t.TempDir()
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})
	mustWriteFile(t, filepath.Join(root, "include", "a.mock"), "ok")

	result, err := r.ParsePaths(root, []string{"include", "missing", "include/a.mock"}, nil)
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.Equal(t, "include/a.mock", result.Files[0].Path)
	assert.Equal(t, "include", result.Files[0].Dir())
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "missing", result.Issues[0].File)
	assert.Equal(t, "warning", result.Issues[0].Severity)
}

func TestStableSymbolIDCollapsesRedeclarations(t *testing.T) {
	decl := Symbol{Name: "Step", Kind: SymbolFunction, Scope: "d2World", Args: "(float dt)", File: "d2World.h", Line: 10}
	def := decl
	def.File = "d2World.cpp"
	def.Line = 200

	assert.Equal(t, StableSymbolID(decl), StableSymbolID(def))
	assert.Equal(t, "class|d2World", StableSymbolID(Symbol{Name: "d2World", Kind: SymbolClass}))

	overload := decl
	overload.Args = "(float dt, int iterations)"
	assert.NotEqual(t, StableSymbolID(decl), StableSymbolID(overload))
}

func TestSymbolVisibility(t *testing.T) {
	assert.True(t, Symbol{Access: AccessPublic}.Visible())
	assert.True(t, Symbol{}.Visible())
	assert.False(t, Symbol{Access: AccessPrivate, Kind: SymbolVariable}.Visible())
	assert.True(t, Symbol{Access: AccessPrivate, Kind: SymbolFriend}.Visible())
	assert.Equal(t, "d2World::Step", Symbol{Name: "Step", Scope: "d2World"}.QualifiedName())
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
