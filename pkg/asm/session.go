package asm

import (
	"github.com/sirupsen/logrus"
)

// DefaultDataBase is the first data-space address handed out to .DB values.
const DefaultDataBase = 0x80

// condStack tracks nested .IFNDEF blocks. Code is live only while every
// entry is true.
type condStack []bool

func (c *condStack) push(v bool) { *c = append(*c, v) }

func (c *condStack) pop() bool {
	if len(*c) == 0 {
		return false
	}
	*c = (*c)[:len(*c)-1]
	return true
}

func (c condStack) enabled() bool {
	for _, v := range c {
		if !v {
			return false
		}
	}
	return true
}

// Session owns all state of one compilation run. Pass 1 fills labels; pass
// 2 starts from a fresh define table, conditional stack and cursors and
// emits code.
type Session struct {
	lines []SourceLine
	log   logrus.FieldLogger

	labels  map[string]int
	defines map[string]int
	conds   condStack

	// address is the program-counter cursor used by pass 1.
	address int
	// dataAddr is the data-space cursor used by .DB in pass 2. It shares
	// the numbering of address but advances independently.
	dataAddr    int
	dataBase    int
	currentBank int

	code []byte
}

func newSession(lines []SourceLine, dataBase int, log logrus.FieldLogger) *Session {
	return &Session{
		lines:    lines,
		log:      log,
		labels:   make(map[string]int),
		defines:  make(map[string]int),
		dataBase: dataBase,
		dataAddr: dataBase,
	}
}

// directiveState handles the directives whose effect is identical in both
// passes: .IFNDEF, .ENDIF, .DEFINE and .INCLUDE. It reports whether d was
// one of them.
func (s *Session) directiveState(d *Directive, line SourceLine) (bool, error) {
	switch d.Name {
	case ".IFNDEF":
		if len(d.Args) != 1 {
			return true, errorAt(MalformedDirective, line, ".IFNDEF expects exactly one name")
		}
		_, defined := s.defines[d.Args[0]]
		s.conds.push(!defined)
		return true, nil
	case ".ENDIF":
		if !s.conds.pop() {
			return true, errorAt(UnmatchedEndif, line, ".ENDIF without matching .IFNDEF")
		}
		return true, nil
	case ".DEFINE":
		if s.conds.enabled() {
			s.define(d, line)
		}
		return true, nil
	case ".INCLUDE":
		// already spliced in by the include expander
		return true, nil
	}
	return false, nil
}

// define binds a constant. Malformed definitions are skipped rather than
// failing the run; existing programs rely on that.
func (s *Session) define(d *Directive, line SourceLine) {
	if len(d.Args) != 2 {
		s.log.WithFields(logrus.Fields{"file": line.File, "line": line.Num}).
			Warnf("ignoring .DEFINE with %d arguments", len(d.Args))
		return
	}
	v, ok := parseNumber(d.Args[1])
	if !ok {
		s.log.WithFields(logrus.Fields{"file": line.File, "line": line.Num}).
			Warnf("ignoring .DEFINE %s: %q is not a number", d.Args[0], d.Args[1])
		return
	}
	s.defines[d.Args[0]] = int(v)
}

func (s *Session) checkConditionalsClosed() error {
	if len(s.conds) == 0 {
		return nil
	}
	var last SourceLine
	if len(s.lines) > 0 {
		last = s.lines[len(s.lines)-1]
		last.Text = ""
	}
	return errorAt(UnterminatedConditional, last, "%d unterminated .IFNDEF block(s)", len(s.conds))
}
