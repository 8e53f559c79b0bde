package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankasm/pkg/asm"
	"bankasm/pkg/cassette"
	"bankasm/pkg/disasm"
	"bankasm/pkg/hexfile"
)

// twoBankSource fills bank 0 with padding so FAR lands at address 259.
func twoBankSource() string {
	var sb strings.Builder
	sb.WriteString(".INCLUDE \"lib.inc\"\n")
	sb.WriteString("SET R1 COUNT\n")
	sb.WriteString(strings.Repeat("NOP\n", 252))
	sb.WriteString("BANK 1\n")
	sb.WriteString("JMP FAR\n")
	sb.WriteString(":FAR\n")
	sb.WriteString("HLT\n")
	return sb.String()
}

func TestAssembleDisassembleReassemble(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "lib.inc", ".DEFINE COUNT 3\n")
	in := writeSource(t, dir, "game.asm", twoBankSource())
	out := filepath.Join(dir, "game.hex")

	// 1. Assemble through the CLI path
	_, err := runArgs(t, out, in)
	require.NoError(t, err)

	code, err := hexfile.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, code, 260)
	assert.Equal(t, []byte{0x01, 0x01, 0x03}, code[:3])
	assert.Equal(t, []byte{0x1C, 0x01, 0x08, 0x03, 0xFF}, code[255:], spew.Sdump(code[250:]))

	// 2. Disassemble
	lines := disasm.Disassemble(code)
	listing := strings.Join(lines, "\n")
	assert.Contains(t, listing, "\n\nBANK 1    ; bank 1\n")
	assert.Contains(t, listing, "JMP 0x3    ; jump to 0x3 (bank 1, address 259)")

	// 3. Reassemble the listing
	again, err := asm.Assemble(listing)
	require.NoError(t, err, listing)
	assert.Equal(t, code, again.Code)
}

func TestAssembleIntoCassetteSections(t *testing.T) {
	dir := t.TempDir()
	tape := filepath.Join(dir, "tape.cas")
	_, err := cassette.CreateFile(tape, 3)
	require.NoError(t, err)

	first := writeSource(t, dir, "first.asm", "SET R1 1\nHLT\n")
	second := writeSource(t, dir, "second.asm", "SET R2 2\nHLT\n")

	_, err = runArgs(t, "--cassette", "0", tape, first)
	require.NoError(t, err)
	_, err = runArgs(t, "--cassette", "2", tape, second)
	require.NoError(t, err)

	data, err := (&cassette.FileCassette{Path: tape}).ReadBlob()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x01, 0x01, 0xFF}, data[0:4])
	assert.Equal(t, make([]byte, cassette.SectionSize), data[256:512])
	assert.Equal(t, []byte{0x01, 0x02, 0x02, 0xFF}, data[512:516])

	// Section 0 disassembles back to the first program.
	lines := disasm.Disassemble(data[0:4])
	assert.Equal(t, []string{"SET R1 0x1    ; R1 = 1", "HLT"}, lines)
}

func TestMissingBankSwitchReportsHint(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "lib.inc", ".DEFINE COUNT 3\n")
	src := strings.Replace(twoBankSource(), "BANK 1\n", "", 1)
	in := writeSource(t, dir, "game.asm", src)

	_, err := runArgs(t, filepath.Join(dir, "game.hex"), in)
	require.Error(t, err)
	assert.Equal(t, asm.MissingBankSwitch, asm.KindOf(err))
	assert.Contains(t, err.Error(), "BANK 1")
}
