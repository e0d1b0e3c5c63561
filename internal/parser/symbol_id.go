package parser

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// StableSymbolID returns a deterministic ID for a symbol. Repeated
// declarations of the same entity share an ID.
// Format: kind|scope::name|args-hash.
func StableSymbolID(symbol Symbol) string {
	base := fmt.Sprintf("%s|%s", symbol.Kind.String(), symbol.QualifiedName())

	if symbol.Args == "" {
		return base
	}

	argsHash := sha1.Sum([]byte(symbol.Args))
	return fmt.Sprintf("%s|%s", base, hex.EncodeToString(argsHash[:4]))
}
