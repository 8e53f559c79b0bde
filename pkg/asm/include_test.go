package asm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankasm/pkg/vfs"
)

func TestExpandIncludes(t *testing.T) {
	disk := vfs.NewSourceDisk()
	require.NoError(t, disk.WriteString("src/lib/math.inc", "ADD R1 R2\n.INCLUDE \"util.inc\"\n"))
	require.NoError(t, disk.WriteString("src/lib/util.inc", "NOP\n"))

	lines := splitLines("SET R1 1\n.INCLUDE \"lib/math.inc\" ; math\nHLT", "src/main.asm")
	out, included, err := expandIncludes(lines, "src/main.asm", "src", disk)
	require.NoError(t, err)

	var texts []string
	for _, l := range out {
		texts = append(texts, l.Text)
	}
	assert.Equal(t, []string{"SET R1 1", "ADD R1 R2", "NOP", "HLT"}, texts)
	assert.Equal(t, []string{filepath.Clean("src/lib/math.inc"), filepath.Clean("src/lib/util.inc")}, included)

	// Lines keep their origin.
	assert.Equal(t, SourceLine{Text: "NOP", File: filepath.Clean("src/lib/util.inc"), Num: 1}, out[2])
	assert.Equal(t, 3, out[3].Num)
}

func TestExpandIncludesOnce(t *testing.T) {
	disk := vfs.NewSourceDisk()
	require.NoError(t, disk.WriteString("a.inc", "NOP"))

	lines := splitLines(".INCLUDE \"a.inc\"\n.INCLUDE \"a.inc\"\nHLT", "")
	out, included, err := expandIncludes(lines, "", ".", disk)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, []string{"a.inc"}, included)
}

func TestExpandIncludesCycle(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{name: "self include", files: map[string]string{"a.inc": `.INCLUDE "a.inc"`}},
		{name: "two files", files: map[string]string{"a.inc": `.INCLUDE "b.inc"`, "b.inc": `.INCLUDE "a.inc"`}},
		{name: "back to root", files: map[string]string{"main.asm": "", "a.inc": `.INCLUDE "main.asm"`}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			disk := vfs.NewSourceDisk()
			for name, text := range tc.files {
				require.NoError(t, disk.WriteString(name, text))
			}
			lines := splitLines(`.INCLUDE "a.inc"`, "main.asm")
			_, _, err := expandIncludes(lines, "main.asm", ".", disk)
			require.Error(t, err)
			assert.Equal(t, IncludeCycle, KindOf(err))
		})
	}
}

func TestExpandIncludesMissingFile(t *testing.T) {
	lines := splitLines(`.INCLUDE "nope.inc"`, "main.asm")
	_, _, err := expandIncludes(lines, "main.asm", ".", vfs.NewSourceDisk())
	require.Error(t, err)
	assert.Equal(t, FileNotFound, KindOf(err))
	assert.Contains(t, err.Error(), "nope.inc")
	assert.ErrorIs(t, err, vfs.ErrFileNotFound)
}

func TestExpandIncludesFromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "consts.inc"), []byte(".DEFINE SPEED 3\n"), 0o644))
	main := filepath.Join(dir, "main.asm")
	require.NoError(t, os.WriteFile(main, []byte(".INCLUDE \"consts.inc\"\nSET R1 SPEED\n"), 0o644))

	p, err := NewAssembler(Options{}).AssembleFile(main)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x01, 0x03}, p.Code)
	assert.Equal(t, []string{filepath.Join(dir, "consts.inc")}, p.Included)
}
