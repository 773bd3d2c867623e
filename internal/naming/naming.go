// Package naming derives identifier-style names from free-form Swagger names.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type runeClass int

const (
	classSep runeClass = iota
	classLower
	classUpper
	classDigit
)

func classify(r rune) runeClass {
	switch {
	case unicode.IsUpper(r):
		return classUpper
	case unicode.IsDigit(r):
		return classDigit
	case unicode.IsLetter(r):
		return classLower
	default:
		return classSep
	}
}

// Words splits s into words. Any non-alphanumeric rune separates words, as do
// lower→upper transitions ("fooBar"), the end of an acronym ("XMLHttp" →
// "XML", "Http") and letter/digit transitions ("abc123" → "abc", "123").
func Words(s string) []string {
	runes := []rune(s)
	var (
		words []string
		start = -1
	)
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}
	for i, r := range runes {
		c := classify(r)
		if c == classSep {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := classify(runes[i-1])
		switch {
		case c == classDigit && prev != classDigit:
			flush(i)
			start = i
		case c != classDigit && prev == classDigit:
			flush(i)
			start = i
		case c == classUpper && prev == classLower:
			flush(i)
			start = i
		case c == classLower && prev == classUpper && i-1 > start:
			// "XMLHttp": the last upper of the run starts the next word.
			flush(i - 1)
			start = i - 1
		}
	}
	flush(len(runes))
	return words
}

// CamelCase joins the words of s as lowerCamelCase: "access_token" →
// "accessToken", "X-API-Key" → "xApiKey", "users-byUserId" → "usersByUserId".
func CamelCase(s string) string {
	lower := cases.Lower(language.Und)
	var b strings.Builder
	for i, w := range Words(s) {
		w = lower.String(w)
		if i == 0 {
			b.WriteString(w)
			continue
		}
		b.WriteString(UpperFirst(w))
	}
	return b.String()
}

// UpperFirst upper-cases the first rune of s and leaves the rest untouched.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return s
	}
	return cases.Upper(language.Und).String(string(r)) + s[size:]
}
