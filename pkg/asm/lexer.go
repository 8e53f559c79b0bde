package asm

import (
	"strconv"
	"strings"
)

const commentMarker = ";"

// StripComment drops everything from the first comment marker on and trims
// surrounding whitespace.
func StripComment(line string) string {
	if i := strings.Index(line, commentMarker); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// Tokenize upper-cases line and splits it on whitespace.
func Tokenize(line string) []string {
	return strings.Fields(strings.ToUpper(line))
}

// parseNumber accepts a decimal literal or a 0x-prefixed hex literal.
func parseNumber(tok string) (int64, bool) {
	tok = strings.ToUpper(strings.TrimSpace(tok))
	base := 10
	if strings.HasPrefix(tok, "0X") {
		tok = tok[2:]
		base = 16
	}
	if tok == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(tok, base, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
