package asm

import (
	"strings"

	"bankasm/pkg/isa"
)

const maxByte = 0xFF

// pass2 re-walks the source and emits the byte stream. Constants are
// re-derived in textual order, so a .DEFINE is only visible to the lines
// after it.
func (s *Session) pass2() error {
	s.defines = make(map[string]int)
	s.conds = nil
	s.currentBank = 0
	s.dataAddr = s.dataBase
	s.code = s.code[:0]

	for i, line := range s.lines {
		var err error
		switch st := Classify(line.Text).(type) {
		case nil, *Label:
			continue

		case *Directive:
			var handled bool
			handled, err = s.directiveState(st, line)
			if handled || err != nil || !s.conds.enabled() {
				break
			}
			if st.Name != ".DB" {
				err = errorAt(MalformedDirective, line, "unknown directive %s", st.Name)
				break
			}
			err = s.emitData(st.Values, line)

		case *Instruction:
			if !s.conds.enabled() {
				continue
			}
			err = s.emitInstruction(i, st, line)
		}
		if err != nil {
			return err
		}
	}

	return s.checkConditionalsClosed()
}

// emitData realizes each .DB value as a STOREV triplet and hands out one
// data-space address per value.
func (s *Session) emitData(values []string, line SourceLine) error {
	for _, raw := range values {
		value := strings.TrimSpace(raw)
		v, ok := s.defines[value]
		if !ok {
			n, isNum := parseNumber(value)
			if !isNum {
				return errorAt(InvalidDataValue, line, "invalid .DB value %q", value)
			}
			v = int(n)
		}
		if v < 0 || v > maxByte {
			return errorAt(OperandOutOfRange, line, ".DB value %d does not fit in a byte", v)
		}
		if s.dataAddr > maxByte {
			return errorAt(DataSpaceFull, line, "no data address left for .DB value %q", value)
		}
		s.code = append(s.code, isa.OpSTOREV, byte(s.dataAddr), byte(v))
		s.dataAddr++
	}
	return nil
}

func (s *Session) emitInstruction(idx int, ins *Instruction, line SourceLine) error {
	op, ok := isa.Lookup(ins.Mnemonic)
	if !ok {
		return errorAt(UnknownInstruction, line, "unknown instruction %s", ins.Mnemonic)
	}
	if len(ins.Operands) != op.Operands {
		return errorAt(OperandCount, line, "%s expects %d operand(s), got %d", op.Mnemonic, op.Operands, len(ins.Operands))
	}

	switch {
	case op.Opcode == isa.OpBANK:
		return s.emitBank(ins.Operands[0], line)
	case isa.IsJump(op.Mnemonic):
		return s.emitJump(idx, op, ins.Operands[0], line)
	}

	s.code = append(s.code, op.Opcode)
	for _, tok := range ins.Operands {
		b, err := s.resolveOperand(op.Mnemonic, tok, line)
		if err != nil {
			return err
		}
		s.code = append(s.code, b)
	}
	return nil
}

func (s *Session) emitBank(tok string, line SourceLine) error {
	n, ok := parseNumber(tok)
	if !ok {
		return errorAt(InvalidOperand, line, "invalid bank number %s", tok)
	}
	if n < 0 || n > maxByte {
		return errorAt(OperandOutOfRange, line, "bank %d out of range", n)
	}
	s.currentBank = int(n)
	s.code = append(s.code, isa.OpBANK, byte(n))
	return nil
}

func (s *Session) emitJump(idx int, op isa.Instruction, tok string, line SourceLine) error {
	target, ok := s.labels[tok]
	if !ok {
		n, isNum := parseNumber(tok)
		if !isNum || n < 0 {
			return errorAt(InvalidJumpTarget, line, "invalid jump target %s", tok)
		}
		target = int(n)
	}

	bank, offset := SplitAddress(target)
	if err := checkBankTransition(s.lines, idx, bank, s.currentBank); err != nil {
		return err
	}
	s.code = append(s.code, op.Opcode, byte(offset))
	return nil
}

// resolveOperand turns one operand token into its byte. A token is tried as
// a register, a constant, a literal and finally a label, in that order.
func (s *Session) resolveOperand(mnemonic, tok string, line SourceLine) (byte, error) {
	if id, ok := isa.Register(tok); ok {
		return id, nil
	}
	if v, ok := s.defines[tok]; ok {
		if v < 0 || v > maxByte {
			return 0, errorAt(OperandOutOfRange, line, "constant %s = %d does not fit in a byte", tok, v)
		}
		return byte(v), nil
	}
	if n, ok := parseNumber(tok); ok {
		if n < 0 || n > maxByte {
			return 0, errorAt(OperandOutOfRange, line, "value %d does not fit in a byte", n)
		}
		return byte(n), nil
	}
	if addr, ok := s.labels[tok]; ok {
		if addr > maxByte {
			bank, offset := SplitAddress(addr)
			return 0, errorAt(LabelAddressTooLarge, line, "address of label %s (%#x) exceeds one bank", tok, addr).
				withHint("split the program into banks and use the local offset:\nBANK %d\n%s %#x", bank, mnemonic, offset)
		}
		return byte(addr), nil
	}
	return 0, errorAt(InvalidOperand, line, "invalid operand %s", tok)
}
