package recon

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// normalizeName reduces an account name to a comparison key: accents
// stripped, uppercased, anything non-alphanumeric collapsed to single
// spaces. Two names that normalize equal are treated as the same account.
func normalizeName(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	result, _, _ := transform.String(t, str)
	result = strings.ToUpper(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// sortTokens rewrites a normalized name with its words in lexical order, so
// that "EQUIVALENTS CASH AND CASH" and "CASH AND CASH EQUIVALENTS" compare
// equal regardless of word order.
func sortTokens(normalized string) string {
	if normalized == "" {
		return ""
	}
	tokens := strings.Fields(normalized)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
