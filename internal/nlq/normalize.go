// Package nlq answers natural-language questions about salesmen and repair
// devices with keyword rules: normalize, extract entities, classify intent,
// filter the fetched records and render a templated answer.
package nlq

import (
	"strings"
	"unicode"
)

// Normalize lowercases q, drops every rune outside [a-z0-9] and whitespace,
// splits on whitespace and maps each token through typos. Token order is
// preserved because phrase detection ("serial number X") depends on it.
func Normalize(q string, typos map[string]string) []string {
	var b strings.Builder
	b.Grow(len(q))
	for _, r := range strings.ToLower(q) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	for i, t := range tokens {
		if fixed, ok := typos[t]; ok && fixed != "" {
			tokens[i] = fixed
		}
	}
	return tokens
}

// normalizeValue applies the question normalization to a stored value so
// both sides of a comparison go through the same rules.
func normalizeValue(v string) string {
	return strings.Join(Normalize(v, nil), " ")
}
