// Package textutil normalizes cell text for line-oriented output.
package textutil

import (
	"bytes"
	"strings"
)

// NormalizeUTF8LF converts CRLF and CR to LF and replaces invalid UTF-8
// sequences with the Unicode replacement character.
func NormalizeUTF8LF(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	b = bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
	return bytes.ToValidUTF8(b, []byte("�"))
}

// SingleLine normalizes s and escapes its newlines and tabs so a value
// always occupies one line of a patch or table.
func SingleLine(s string) string {
	if !strings.ContainsAny(s, "\r\n\t") && isValid(s) {
		return s
	}
	s = string(NormalizeUTF8LF([]byte(s)))
	return strings.NewReplacer("\n", `\n`, "\t", `\t`).Replace(s)
}

// EnsureTrailingLF appends a single \n if not already present.
func EnsureTrailingLF(b []byte) []byte {
	if len(b) == 0 || b[len(b)-1] == '\n' {
		return b
	}
	return append(b, '\n')
}

func isValid(s string) bool {
	return strings.ToValidUTF8(s, "�") == s
}
