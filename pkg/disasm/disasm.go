// Package disasm turns a byte stream produced by the assembler back into
// assembly text. It reads the same tables as the assembler and never fails:
// bytes it cannot decode become comments.
package disasm

import (
	"fmt"
	"strings"

	"bankasm/pkg/hexfile"
	"bankasm/pkg/isa"
)

// Decoded is one instruction read from the stream.
type Decoded struct {
	PC       int
	Opcode   byte
	Operands []byte
	Known    bool
	Info     isa.Instruction
}

// Decode reads the instruction starting at pc. ok is false when the stream
// ends before all operand bytes are present.
func Decode(code []byte, pc int) (d Decoded, ok bool) {
	d.PC = pc
	d.Opcode = code[pc]
	d.Info, d.Known = isa.Decode(d.Opcode)
	if !d.Known {
		return d, true
	}
	end := pc + 1 + d.Info.Operands
	if end > len(code) {
		d.Operands = code[pc+1:]
		return d, false
	}
	d.Operands = code[pc+1 : end]
	return d, true
}

// Size is the number of bytes d occupies.
func (d Decoded) Size() int {
	if !d.Known {
		return 1
	}
	return 1 + d.Info.Operands
}

func hex(b byte) string {
	return fmt.Sprintf("%#x", b)
}

// FormatInstruction renders a decoded instruction. bank is the bank
// selected when the instruction runs.
func FormatInstruction(d Decoded, bank int) string {
	if !d.Known {
		return fmt.Sprintf("; unknown opcode %#02x", d.Opcode)
	}
	m := d.Info.Mnemonic
	ops := d.Operands

	switch {
	case d.Opcode == isa.OpBANK:
		return fmt.Sprintf("BANK %d    ; bank %d", ops[0], ops[0])

	case isa.IsJump(m):
		return fmt.Sprintf("%s %s    ; jump to %s (bank %d, address %d)",
			m, hex(ops[0]), hex(ops[0]), bank, bank*isa.BankSize+int(ops[0]))

	case d.Opcode == isa.OpSET || d.Opcode == isa.OpRND:
		reg := isa.RegisterName(ops[0])
		return fmt.Sprintf("%s %s %s    ; %s = %d", m, reg, hex(ops[1]), reg, ops[1])

	case isRegisterPair(d.Opcode):
		return fmt.Sprintf("%s %s %s", m, isa.RegisterName(ops[0]), isa.RegisterName(ops[1]))

	case d.Opcode == isa.OpSTOREV:
		return fmt.Sprintf("%s %s %s    ; MEM[%s] = %s", m, hex(ops[0]), hex(ops[1]), hex(ops[0]), hex(ops[1]))

	case d.Opcode == isa.OpSTORER || d.Opcode == isa.OpLOADR:
		return fmt.Sprintf("%s %s %s", m, hex(ops[0]), isa.RegisterName(ops[1]))
	}

	if len(ops) == 0 {
		return m
	}
	parts := make([]string, 0, len(ops)+1)
	parts = append(parts, m)
	for _, b := range ops {
		parts = append(parts, hex(b))
	}
	return strings.Join(parts, " ")
}

func isRegisterPair(op byte) bool {
	switch op {
	case isa.OpMOV, isa.OpADD, isa.OpSUB, isa.OpAND, isa.OpOR, isa.OpXOR,
		isa.OpCMP, isa.OpMUL, isa.OpDIV:
		return true
	}
	return false
}

// Disassemble renders code as assembly lines. A blank line precedes every
// BANK so banks stand apart in the listing.
func Disassemble(code []byte) []string {
	var out []string
	bank := 0
	for pc := 0; pc < len(code); {
		d, ok := Decode(code, pc)
		if !ok {
			out = append(out, fmt.Sprintf("; truncated %s at %d: %d of %d operand byte(s) present",
				d.Info.Mnemonic, pc, len(d.Operands), d.Info.Operands))
			break
		}
		if d.Known && d.Opcode == isa.OpBANK {
			bank = int(d.Operands[0])
			out = append(out, "")
		}
		out = append(out, FormatInstruction(d, bank))
		pc += d.Size()
	}
	return out
}

// DisassembleHex decodes hex text in the assembler's output format and
// disassembles it.
func DisassembleHex(text string) ([]string, error) {
	code, err := hexfile.Decode(text)
	if err != nil {
		return nil, err
	}
	return Disassemble(code), nil
}
