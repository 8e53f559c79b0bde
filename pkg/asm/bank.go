package asm

import "bankasm/pkg/isa"

// SplitAddress maps an absolute address to its bank and the offset inside
// that bank.
func SplitAddress(addr int) (bank, offset int) {
	return addr / isa.BankSize, addr % isa.BankSize
}

// checkBankTransition fails when a jump on lines[idx] targets a bank other
// than the current one and the nearest preceding statement (labels and
// blank lines are skipped) is not a BANK instruction.
func checkBankTransition(lines []SourceLine, idx, targetBank, currentBank int) error {
	if targetBank == currentBank {
		return nil
	}

	prev := ""
	for j := idx - 1; j >= 0; j-- {
		text := StripComment(lines[j].Text)
		if text == "" || IsLabel(text) {
			continue
		}
		prev = text
		break
	}

	if mnemonic, _ := ParseInstruction(prev); mnemonic == "BANK" {
		return nil
	}
	return errorAt(MissingBankSwitch, lines[idx],
		"jump into bank %d while bank %d is selected", targetBank, currentBank).
		withHint("add before this line:\nBANK %d", targetBank)
}
