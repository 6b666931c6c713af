package gen

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// Naming helpers
// =============================================================================

var titler = cases.Title(language.Und, cases.NoLower)

// snake converts a Go identifier to snake_case, keeping acronyms together:
// "AuthorID" becomes "author_id" and "HTTPServer" becomes "http_server".
func snake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1])) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// pascal converts snake_case to PascalCase: "book_tags" becomes "BookTags".
func pascal(s string) string {
	var b strings.Builder
	for _, w := range strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == '.' }) {
		if strings.EqualFold(w, "id") {
			b.WriteString("ID")
			continue
		}
		b.WriteString(titler.String(w))
	}
	return b.String()
}

// plural returns the English plural of a resource name.
func plural(s string) string {
	return inflect.Pluralize(s)
}

// receiver returns a short receiver name for a type name.
func receiver(name string) string {
	if name == "" {
		return "x"
	}
	return strings.ToLower(name[:1])
}

// lowerFirst lower-cases the first letter of s.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
