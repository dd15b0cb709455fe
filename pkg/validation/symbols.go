package validation

import (
	"regexp"
	"strings"
)

// symbolPattern matches the shape of HUGO gene symbols: a leading letter
// followed by letters, digits, hyphens, underscores, or dots.
var symbolPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)

// maxSymbolLen bounds accepted symbol length; HUGO symbols stay well below it.
const maxSymbolLen = 30

// IsValidSymbol reports whether s is syntactically plausible as a HUGO gene
// symbol. It is a cheap local filter applied before any upstream validation;
// passing it does not mean the symbol exists.
func IsValidSymbol(s string) bool {
	if len(s) == 0 || len(s) > maxSymbolLen {
		return false
	}
	return symbolPattern.MatchString(s)
}

// SanitizeSymbol normalizes a raw gene symbol for upstream lookups:
// surrounding whitespace is removed and the symbol is uppercased.
func SanitizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
