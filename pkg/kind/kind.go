package kind

import (
	"strings"
	"unicode"
)

// KindsMatch reports whether two names are the same once normalized
func KindsMatch(a, b string) bool {
	return NormalizeKind(a) == NormalizeKind(b)
}

// NormalizeKind lower cases a name and drops separators so "GetCurrentStatus",
// "get-current-status", "get_current_status" and ".FPR" style spellings of
// operations, formats and extensions compare equal
func NormalizeKind(kind string) string {
	var b strings.Builder
	b.Grow(len(kind))

	for _, r := range kind {
		switch r {
		case '_', '-', '.', ' ', '\t':
			continue
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// Find returns the entry of kinds that matches name
func Find[K ~string](name string, kinds []K) (K, bool) {
	for _, k := range kinds {
		if KindsMatch(name, string(k)) {
			return k, true
		}
	}

	var zero K
	return zero, false
}
