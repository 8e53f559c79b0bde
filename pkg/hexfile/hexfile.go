// Package hexfile reads and writes the assembler's text output: one stream
// of two-digit lowercase hex bytes, each followed by a space.
package hexfile

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Encode renders code in the hex text format.
func Encode(code []byte) string {
	var sb strings.Builder
	sb.Grow(len(code) * 3)
	const digits = "0123456789abcdef"
	for _, b := range code {
		sb.WriteByte(digits[b>>4])
		sb.WriteByte(digits[b&0x0F])
		sb.WriteByte(' ')
	}
	return sb.String()
}

// Decode parses whitespace-separated hex bytes. Upper-case digits and line
// breaks are accepted.
func Decode(text string) ([]byte, error) {
	fields := strings.Fields(text)
	out := make([]byte, 0, len(fields))
	for i, f := range fields {
		if len(f) > 2 {
			return nil, errors.Errorf("byte %d: %q is not a two-digit hex byte", i, f)
		}
		v, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "byte %d", i)
		}
		out = append(out, byte(v))
	}
	return out, nil
}

// Write stores code as hex text in w.
func Write(w io.Writer, code []byte) error {
	_, err := io.WriteString(w, Encode(code))
	return errors.Wrap(err, "writing hex")
}

// WriteFile stores code as hex text at path.
func WriteFile(path string, code []byte) error {
	return errors.Wrapf(os.WriteFile(path, []byte(Encode(code)), 0o644), "writing %s", path)
}

// ReadFile loads and decodes the hex text at path.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	code, err := Decode(string(data))
	return code, errors.Wrapf(err, "decoding %s", path)
}
