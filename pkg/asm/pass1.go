package asm

import "bankasm/pkg/isa"

// dbEntrySize is the program-space size of one .DB value: a STOREV opcode,
// the data address and the value.
const dbEntrySize = 3

// pass1 assigns an address to every label and measures the program. No
// bytes are emitted.
func (s *Session) pass1() error {
	s.address = 0
	s.conds = nil

	for _, line := range s.lines {
		switch st := Classify(line.Text).(type) {
		case nil:
			continue

		case *Label:
			if !s.conds.enabled() {
				continue
			}
			if prev, exists := s.labels[st.Name]; exists {
				return errorAt(DuplicateLabel, line, "label %s already defined at address %d", st.Name, prev)
			}
			s.labels[st.Name] = s.address

		case *Directive:
			handled, err := s.directiveState(st, line)
			if err != nil {
				return err
			}
			if handled || !s.conds.enabled() {
				continue
			}
			if st.Name == ".DB" {
				s.address += dbEntrySize * len(st.Values)
			}

		case *Instruction:
			if !s.conds.enabled() {
				continue
			}
			if _, ok := isa.Lookup(st.Mnemonic); ok {
				s.address += 1 + len(st.Operands)
			}
		}
	}

	return s.checkConditionalsClosed()
}
