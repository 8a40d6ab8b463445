package trigger

import (
	"strconv"
	"strings"
	"unicode"
)

// Decamelize turns an identifier into words: "helloWorld" -> "hello World",
// "hello_world" -> "hello World". Separator runs ('-', '_', whitespace) are
// first folded into camel case, then a space is inserted before every
// ASCII upper-case letter and digit, so "123" becomes "1 2 3".
func Decamelize(s string) string {
	return splitCaseBoundaries(camelize(s))
}

// camelize drops separator runs, upper-cases the character following each
// run and lower-cases the first character. Numbers and blank strings are
// returned unchanged.
func camelize(s string) string {
	if isNumber(s) {
		return s
	}
	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		if !isSeparator(runes[i]) {
			out = append(out, runes[i])
			continue
		}
		for i+1 < len(runes) && isSeparator(runes[i+1]) {
			i++
		}
		if i+1 < len(runes) {
			i++
			out = append(out, unicode.ToUpper(runes[i]))
		}
	}
	if len(out) > 0 {
		out[0] = unicode.ToLower(out[0])
	}
	return string(out)
}

func splitCaseBoundaries(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && (isASCIIUpper(r) || isASCIIDigit(r)) {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || unicode.IsSpace(r)
}

func isASCIIUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isNumber treats blank strings as numbers, the way loose numeric
// coercion does, so they are never rewritten.
func isNumber(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return true
	}
	_, err := strconv.ParseFloat(trimmed, 64)
	return err == nil
}
