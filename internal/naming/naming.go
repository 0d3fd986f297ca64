// Package naming holds the case and pluralization rules shared by the
// scaffolder, the introspector, and the client emitter. Entity identity is
// always the snake_case form; everything else is derived from it.
package naming

import (
	"strings"
	"unicode"
)

// Snake converts PascalCase, kebab-case, or space-separated input to
// snake_case. Runs of capitals are kept together until a lowercase letter
// follows ("HTMLParser" -> "html_parser", "myAPI" -> "my_api").
func Snake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	prevUpper := false
	prevSep := false
	for i, r := range runes {
		if r == '-' || r == '_' || r == ' ' {
			if b.Len() > 0 {
				b.WriteByte('_')
			}
			prevSep = true
			prevUpper = false
			continue
		}

		if unicode.IsUpper(r) {
			if i > 0 && !prevSep && b.Len() > 0 {
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if !prevUpper || nextLower {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			prevUpper = true
		} else {
			b.WriteRune(r)
			prevUpper = false
		}
		prevSep = false
	}

	return b.String()
}

// Pascal converts snake_case, kebab-case, or space-separated input to
// PascalCase.
func Pascal(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	var b strings.Builder
	for _, part := range parts {
		r := []rune(part)
		b.WriteRune(unicode.ToUpper(r[0]))
		b.WriteString(string(r[1:]))
	}
	return b.String()
}

// Plural applies basic English pluralization: category -> categories,
// status -> statuses, product -> products. Words that already look plural
// are returned unchanged.
func Plural(s string) string {
	if s == "" {
		return s
	}

	if strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss") && !strings.HasSuffix(s, "us") {
		return s
	}

	if strings.HasSuffix(s, "y") {
		prefix := s[:len(s)-1]
		if prefix != "" {
			last := prefix[len(prefix)-1]
			if !strings.ContainsRune("aeiou", rune(last)) {
				return prefix + "ies"
			}
		}
	}

	if strings.HasSuffix(s, "s") || strings.HasSuffix(s, "x") || strings.HasSuffix(s, "z") ||
		strings.HasSuffix(s, "sh") || strings.HasSuffix(s, "ch") {
		return s + "es"
	}

	return s + "s"
}
