package languages

import "github.com/dura2d/navgen/internal/parser"

// Options configure the default parsers.
type Options struct {
	// StripMacros are blanked out of C/C++ sources before parsing.
	StripMacros []string
}

// NewDefaultRegistry creates a registry with all supported language parsers
func NewDefaultRegistry(opts Options) *parser.Registry {
	r := parser.NewRegistry()

	r.Register(NewCppParser(opts.StripMacros...))

	return r
}
