package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dura2d/navgen/internal/ignore"
	"github.com/dura2d/navgen/internal/logging"
)

// LanguageParser defines the interface each language must implement
type LanguageParser interface {
	// Language returns the language name (e.g., "cpp")
	Language() string

	// Extensions returns file extensions this parser handles
	Extensions() []string

	// Parse extracts symbols from source code
	Parse(filename string, content []byte) (*FileSymbols, error)
}

// Registry holds all registered language parsers
type Registry struct {
	parsers   map[string]LanguageParser // language name -> parser
	extToLang map[string]string         // extension -> language name
}

// NewRegistry creates a new parser registry
func NewRegistry() *Registry {
	return &Registry{
		parsers:   make(map[string]LanguageParser),
		extToLang: make(map[string]string),
	}
}

// Register adds a language parser to the registry
func (r *Registry) Register(p LanguageParser) {
	lang := p.Language()
	r.parsers[lang] = p
	for _, ext := range p.Extensions() {
		r.extToLang[ext] = lang
	}
}

// GetParserForFile returns the appropriate parser for a file
func (r *Registry) GetParserForFile(filename string) (LanguageParser, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := r.extToLang[ext]
	if !ok {
		return nil, false
	}
	parser, ok := r.parsers[lang]
	return parser, ok
}

// SupportedExtensions returns all supported file extensions, sorted
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ParseFile parses a single file and returns its symbols
func (r *Registry) ParseFile(path string) (*FileSymbols, error) {
	parser, ok := r.GetParserForFile(path)
	if !ok {
		return nil, nil // unsupported file type, skip silently
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	symbols, err := parser.Parse(path, content)
	if err != nil {
		return nil, err
	}

	symbols.Includes = normalizeStrings(symbols.Includes)

	// Compute file hash for incremental updates
	symbols.Hash = hashContent(content)

	return symbols, nil
}

// ParseDirectory recursively parses all supported files in a directory
func (r *Registry) ParseDirectory(root string, ignorePaths []string) (*ParseResult, error) {
	return r.ParsePaths(root, []string{"."}, ignorePaths)
}

// ParsePaths parses the given inputs, files or directories relative to root.
// File paths in the result are slash-separated and relative to root.
func (r *Registry) ParsePaths(root string, inputs []string, ignorePaths []string) (*ParseResult, error) {
	ignoreMatcher := ignore.NewMatcher(ignorePaths)
	log := logging.NewLogger("parser")

	result := &ParseResult{
		RootPath: root,
		Files:    make([]FileSymbols, 0),
		Issues:   make([]ParseIssue, 0),
	}
	seen := make(map[string]bool)

	visit := func(path string, info os.FileInfo, err error) error {
		relPath := path
		if rel, relErr := filepath.Rel(root, path); relErr == nil {
			relPath = filepath.ToSlash(rel)
		}
		if err != nil {
			result.Issues = append(result.Issues, ParseIssue{
				File:     relPath,
				Severity: "warning",
				Message:  fmt.Sprintf("walk error: %v", err),
			})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip directories and ignored paths
		if relPath != "." && ignoreMatcher.ShouldIgnore(relPath, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() || seen[relPath] {
			return nil
		}
		seen[relPath] = true

		symbols, err := r.ParseFile(path)
		if err != nil {
			lang := ""
			if langParser, ok := r.GetParserForFile(path); ok {
				lang = langParser.Language()
			}
			result.Issues = append(result.Issues, ParseIssue{
				File:     relPath,
				Language: lang,
				Severity: "error",
				Message:  err.Error(),
			})
			return nil
		}
		if symbols != nil {
			symbols.Path = relPath
			for i := range symbols.Symbols {
				symbols.Symbols[i].File = relPath
				symbols.Symbols[i].ID = StableSymbolID(symbols.Symbols[i])
			}
			result.Files = append(result.Files, *symbols)
		}

		return nil
	}

	var walkErr error
	for _, input := range inputs {
		start := filepath.Join(root, filepath.FromSlash(input))
		if _, err := os.Stat(start); err != nil {
			result.Issues = append(result.Issues, ParseIssue{
				File:     input,
				Severity: "warning",
				Message:  fmt.Sprintf("input not found: %v", err),
			})
			continue
		}
		if err := filepath.Walk(start, visit); err != nil && walkErr == nil {
			walkErr = err
		}
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})
	sort.Slice(result.Issues, func(i, j int) bool {
		if result.Issues[i].File == result.Issues[j].File {
			return result.Issues[i].Message < result.Issues[j].Message
		}
		return result.Issues[i].File < result.Issues[j].File
	})

	log.WithField("files", len(result.Files)).
		WithField("issues", len(result.Issues)).
		Debug("Parsed sources")

	return result, walkErr
}

func hashContent(content []byte) string {
	h := sha256.New()
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))[:16] // short hash
}

func normalizeStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}
