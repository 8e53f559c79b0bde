package asm

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies an assembly failure.
type Kind int

const (
	KindUnknown Kind = iota
	UnterminatedConditional
	UnmatchedEndif
	MissingBankSwitch
	InvalidDataValue
	InvalidOperand
	OperandOutOfRange
	InvalidJumpTarget
	LabelAddressTooLarge
	FileNotFound
	DuplicateLabel
	IncludeCycle
	UnknownInstruction
	OperandCount
	MalformedDirective
	DataSpaceFull
)

var kindNames = map[Kind]string{
	KindUnknown:             "unknown",
	UnterminatedConditional: "unterminated conditional",
	UnmatchedEndif:          "unmatched .ENDIF",
	MissingBankSwitch:       "missing bank switch",
	InvalidDataValue:        "invalid data value",
	InvalidOperand:          "invalid operand",
	OperandOutOfRange:       "operand out of range",
	InvalidJumpTarget:       "invalid jump target",
	LabelAddressTooLarge:    "label address too large",
	FileNotFound:            "file not found",
	DuplicateLabel:          "duplicate label",
	IncludeCycle:            "include cycle",
	UnknownInstruction:      "unknown instruction",
	OperandCount:            "wrong operand count",
	MalformedDirective:      "malformed directive",
	DataSpaceFull:           "data space full",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the single user-facing compilation failure. It records where the
// failure happened and, when one exists, a hint on how to fix the source.
type Error struct {
	Kind Kind
	File string
	Line int
	Text string
	Msg  string
	Hint string

	cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	switch {
	case e.File != "" && e.Line > 0:
		fmt.Fprintf(&b, "%s:%d: ", e.File, e.Line)
	case e.Line > 0:
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Msg)
	if e.Text != "" {
		b.WriteString("\n\t")
		b.WriteString(e.Text)
	}
	if e.Hint != "" {
		b.WriteString("\nhint: ")
		b.WriteString(strings.ReplaceAll(e.Hint, "\n", "\n\t"))
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func errorAt(kind Kind, line SourceLine, format string, args ...interface{}) *Error {
	return &Error{
		Kind: kind,
		File: line.File,
		Line: line.Num,
		Text: strings.TrimSpace(line.Text),
		Msg:  fmt.Sprintf(format, args...),
	}
}

func (e *Error) withHint(format string, args ...interface{}) *Error {
	e.Hint = fmt.Sprintf(format, args...)
	return e
}

func (e *Error) withCause(err error) *Error {
	e.cause = err
	return e
}
