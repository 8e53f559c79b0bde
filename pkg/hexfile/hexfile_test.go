package hexfile

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, "01 01 05 03 01 01 08 03 ff ", Encode([]byte{0x01, 0x01, 0x05, 0x03, 0x01, 0x01, 0x08, 0x03, 0xFF}))
	assert.Equal(t, "", Encode(nil))
	assert.Equal(t, "0a ", Encode([]byte{0x0A}))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"", []byte{}},
		{"01 ff ", []byte{0x01, 0xFF}},
		{"0A\n1c\t02", []byte{0x0A, 0x1C, 0x02}},
		{"  7  ", []byte{0x07}},
	}
	for _, tt := range tests {
		got, err := Decode(tt.in)
		require.NoError(t, err, "Decode(%q)", tt.in)
		assert.Equal(t, tt.want, got, "Decode(%q)", tt.in)
	}

	for _, bad := range []string{"zz", "100", "0x1", "-1"} {
		_, err := Decode(bad)
		assert.Error(t, err, "Decode(%q)", bad)
	}
}

func TestFileRoundTrip(t *testing.T) {
	code := []byte{0x1C, 0x01, 0x08, 0x30, 0xFF}
	path := filepath.Join(t.TempDir(), "out.hex")

	require.NoError(t, WriteFile(path, code))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, code, got)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, code))
	assert.Equal(t, "1c 01 08 30 ff ", buf.String())
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.hex"))
	assert.Error(t, err)
}
