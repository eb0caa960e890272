// Package proto defines the element protocol shared by the renderer,
// the reconciler and the attachment layer: the structured attribute set
// (Props), the normalized element tree the renderer produces and the
// reconciler consumes, events, and measurement requests.
//
// The reconciler's previous-tree argument is exactly a prior renderer
// output, so these shapes must stay stable across both.
//
// The package also implements a line-oriented text format for trees and
// events, used for debug dumps, golden test output and event channels:
//
//	elem <path> <tag>
//	attr <path> <k>=<v> <k>=<v> ...
//	style <path> <k>=<v> ...
//	on <path> <event>=<reason> ...
//	value <path> <v>
//	text <path> <v>
//
// Paths are dot-separated child positions from the top of the tree
// ("0", "0.2.1"). Events are one line each:
//
//	<reason> lens=<seg>/<seg> <k>=<v> ...
//
// String escaping: values containing spaces, tabs, newlines, quotes,
// equals signs or backslashes are quoted with double quotes. Inside
// quotes, \n, \t, \\, and \" are recognized escapes.
package proto

import (
	"sort"
	"strings"
)

// --- Escaping ---

// needsQuote reports whether the string needs quoting.
func needsQuote(s string) bool {
	if len(s) == 0 {
		return true
	}
	return strings.ContainsAny(s, " \t\n\\\"=")
}

// EscapeValue encodes a string for the protocol, quoting if necessary.
func EscapeValue(s string) string {
	if !needsQuote(s) {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range s {
		switch c {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// UnescapeValue decodes a possibly-quoted protocol string.
func UnescapeValue(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\\', '"':
			b.WriteByte(s[i+1])
		default:
			b.WriteByte(s[i])
			b.WriteByte(s[i+1])
		}
		i++
	}
	return b.String()
}

// FormatKV formats a key=value pair with proper escaping.
func FormatKV(k, v string) string {
	return k + "=" + EscapeValue(v)
}

// ParseKV parses a key=value token.
func ParseKV(token string) (k, v string, ok bool) {
	eq := strings.IndexByte(token, '=')
	if eq < 0 {
		return "", "", false
	}
	return token[:eq], UnescapeValue(token[eq+1:]), true
}

// skipQuoted returns the index just past the closing quote of the
// quoted string starting at line[i].
func skipQuoted(line string, i int) int {
	j := i + 1
	for j < len(line) {
		switch line[j] {
		case '\\':
			j += 2
			continue
		case '"':
			return j + 1
		}
		j++
	}
	return len(line)
}

// Tokenize splits a line into space-separated tokens, respecting quoted
// strings, including quoted values of k="v" tokens.
func Tokenize(line string) []string {
	var tokens []string
	i := 0
	for i < len(line) {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= len(line) {
			break
		}
		j := i
		for j < len(line) && line[j] != ' ' && line[j] != '\t' {
			if line[j] == '"' {
				j = skipQuoted(line, j)
				continue
			}
			j++
		}
		tokens = append(tokens, line[i:j])
		i = j
	}
	return tokens
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
