// Package isa holds the instruction set of the banked 8-bit machine. The
// assembler and the disassembler both read these tables, so the encoding is
// defined in exactly one place.
package isa

import (
	"fmt"
	"sort"
)

const (
	OpNOP    byte = 0x00
	OpSET    byte = 0x01
	OpMOV    byte = 0x02
	OpADD    byte = 0x03
	OpSUB    byte = 0x04
	OpAND    byte = 0x05
	OpOR     byte = 0x06
	OpXOR    byte = 0x07
	OpJMP    byte = 0x08
	OpSTOREV byte = 0x09
	OpSTORER byte = 0x0A
	OpSTOREM byte = 0x0B
	OpLOADR  byte = 0x0C
	OpJE     byte = 0x0D
	OpJNE    byte = 0x0E
	OpCMP    byte = 0x0F
	OpPUSH   byte = 0x10
	OpPOP    byte = 0x11
	OpMUL    byte = 0x12
	OpDIV    byte = 0x13
	OpSETPX  byte = 0x14
	OpCLRPX  byte = 0x15
	OpDIGIT  byte = 0x16
	OpCLEAR  byte = 0x17
	OpGETKEY byte = 0x18
	OpCALL   byte = 0x19
	OpRET    byte = 0x1A
	OpRND    byte = 0x1B
	OpBANK   byte = 0x1C
	OpSAVKEY byte = 0x1D
	OpBRIGHT byte = 0x1E
	OpLOADRR byte = 0x1F
	OpCREAD  byte = 0x20
	OpCWRITE byte = 0x21
	OpCSTAT  byte = 0x22
	OpCINFO  byte = 0x23
	OpHLT    byte = 0xFF
)

// BankSize is the number of addresses in one bank.
const BankSize = 256

// Instruction describes one mnemonic: its opcode and the fixed number of
// operand bytes that follow the opcode in the byte stream.
type Instruction struct {
	Mnemonic string
	Opcode   byte
	Operands int
}

var instructions = []Instruction{
	{"NOP", OpNOP, 0},
	{"SET", OpSET, 2},
	{"MOV", OpMOV, 2},
	{"ADD", OpADD, 2},
	{"SUB", OpSUB, 2},
	{"AND", OpAND, 2},
	{"OR", OpOR, 2},
	{"XOR", OpXOR, 2},
	{"JMP", OpJMP, 1},
	{"STOREV", OpSTOREV, 2},
	{"STORER", OpSTORER, 2},
	{"STOREM", OpSTOREM, 2},
	{"LOADR", OpLOADR, 2},
	{"JE", OpJE, 1},
	{"JNE", OpJNE, 1},
	{"CMP", OpCMP, 2},
	{"PUSH", OpPUSH, 1},
	{"POP", OpPOP, 1},
	{"MUL", OpMUL, 2},
	{"DIV", OpDIV, 2},
	{"SETPX", OpSETPX, 3},
	{"CLRPX", OpCLRPX, 2},
	{"DIGIT", OpDIGIT, 2},
	{"CLEAR", OpCLEAR, 0},
	{"GETKEY", OpGETKEY, 1},
	{"CALL", OpCALL, 1},
	{"RET", OpRET, 0},
	{"RND", OpRND, 2},
	{"BANK", OpBANK, 1},
	{"SAVKEY", OpSAVKEY, 1},
	{"BRIGHT", OpBRIGHT, 1},
	{"LOADRR", OpLOADRR, 2},
	{"CREAD", OpCREAD, 2},
	{"CWRITE", OpCWRITE, 2},
	{"CSTAT", OpCSTAT, 1},
	{"CINFO", OpCINFO, 1},
	{"HLT", OpHLT, 0},
}

var registers = map[string]byte{
	"R1": 0x01,
	"R2": 0x02,
	"R3": 0x03,
	"R4": 0x04,
	"R5": 0x05,
	"R6": 0x06,
}

// Jump and call mnemonics take a single address operand that is encoded as
// an offset inside the currently selected bank.
var jumpOps = map[string]bool{
	"JMP":  true,
	"JE":   true,
	"JNE":  true,
	"CALL": true,
}

var (
	byMnemonic = make(map[string]Instruction, len(instructions))
	byOpcode   = make(map[byte]Instruction, len(instructions))
	regNames   = make(map[byte]string, len(registers))
)

func init() {
	for _, in := range instructions {
		if _, dup := byOpcode[in.Opcode]; dup {
			panic(fmt.Sprintf("isa: opcode 0x%02x assigned twice", in.Opcode))
		}
		byMnemonic[in.Mnemonic] = in
		byOpcode[in.Opcode] = in
	}
	for name, id := range registers {
		regNames[id] = name
	}
}

// Lookup returns the instruction for an upper-case mnemonic.
func Lookup(mnemonic string) (Instruction, bool) {
	in, ok := byMnemonic[mnemonic]
	return in, ok
}

// Decode returns the instruction encoded by opcode.
func Decode(opcode byte) (Instruction, bool) {
	in, ok := byOpcode[opcode]
	return in, ok
}

// Register returns the id of a register name such as "R3".
func Register(name string) (byte, bool) {
	id, ok := registers[name]
	return id, ok
}

// RegisterName renders a register id. Ids outside the register set are
// rendered as R<n> so corrupt input still disassembles.
func RegisterName(id byte) string {
	if name, ok := regNames[id]; ok {
		return name
	}
	return fmt.Sprintf("R%d", id)
}

// IsJump reports whether mnemonic transfers control to a bank-local address.
func IsJump(mnemonic string) bool {
	return jumpOps[mnemonic]
}

// Instructions returns the instruction table ordered by opcode.
func Instructions() []Instruction {
	out := make([]Instruction, len(instructions))
	copy(out, instructions)
	sort.Slice(out, func(i, j int) bool { return out[i].Opcode < out[j].Opcode })
	return out
}
