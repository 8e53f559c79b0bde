// Package asm is a two-pass assembler for the banked 8-bit machine.
//
// Pass 1 walks the include-expanded source and records the address of every
// label. Pass 2 walks it again and emits the byte stream, checking every
// operand and every cross-bank jump along the way.
package asm

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options configures an Assembler. The zero value is usable.
type Options struct {
	// Logger receives pass summaries and the label listing. Nil discards.
	Logger logrus.FieldLogger
	// Reader resolves .INCLUDE paths. Nil reads from the host file system.
	Reader SourceReader
	// DataBase is the first data-space address used by .DB, 0x00 to 0xFF.
	// Nil means DefaultDataBase.
	DataBase *int
}

// Symbol is a resolved label.
type Symbol struct {
	Name    string
	Address int
	Bank    int
	Offset  int
}

// Program is the result of a successful assembly.
type Program struct {
	Code     []byte
	Labels   map[string]int
	Size     int
	Included []string
}

// Symbols returns the label table ordered by address, then name.
func (p *Program) Symbols() []Symbol {
	syms := make([]Symbol, 0, len(p.Labels))
	for name, addr := range p.Labels {
		bank, offset := SplitAddress(addr)
		syms = append(syms, Symbol{Name: name, Address: addr, Bank: bank, Offset: offset})
	}
	sort.Slice(syms, func(i, j int) bool {
		if syms[i].Address != syms[j].Address {
			return syms[i].Address < syms[j].Address
		}
		return syms[i].Name < syms[j].Name
	})
	return syms
}

// Assembler turns source into a Program. One Assembler may be reused for
// any number of runs; each run gets its own Session.
type Assembler struct {
	log      logrus.FieldLogger
	reader   SourceReader
	dataBase int
}

// NewAssembler returns an Assembler configured by opts, filling in defaults
// for every unset field.
func NewAssembler(opts Options) *Assembler {
	a := &Assembler{
		log:      opts.Logger,
		reader:   opts.Reader,
		dataBase: DefaultDataBase,
	}
	if opts.DataBase != nil {
		a.dataBase = *opts.DataBase
	}
	if a.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		a.log = l
	}
	if a.reader == nil {
		a.reader = OSReader{}
	}
	return a
}

// Assemble assembles source text with default options. Includes resolve
// against the working directory.
func Assemble(code string) (*Program, error) {
	return NewAssembler(Options{}).Assemble(code)
}

// Assemble assembles source text. Includes resolve against the working
// directory.
func (a *Assembler) Assemble(code string) (*Program, error) {
	return a.assemble(splitLines(code, ""), "", ".")
}

// AssembleFile reads and assembles the source file at path. Includes
// resolve against the file's directory.
func (a *Assembler) AssembleFile(path string) (*Program, error) {
	raw, err := a.reader.ReadLines(path)
	if err != nil {
		return nil, (&Error{Kind: FileNotFound, File: path, Msg: "file not found: " + path}).
			withCause(errors.Wrapf(err, "reading %s", path))
	}
	lines := make([]SourceLine, len(raw))
	for i, text := range raw {
		lines[i] = SourceLine{Text: text, File: path, Num: i + 1}
	}
	return a.assemble(lines, path, filepath.Dir(path))
}

func (a *Assembler) assemble(lines []SourceLine, rootFile, baseDir string) (*Program, error) {
	if a.dataBase < 0 || a.dataBase > maxByte {
		return nil, errors.Errorf("data base %#x outside 0x00..0xff", a.dataBase)
	}

	expanded, included, err := expandIncludes(lines, rootFile, baseDir, a.reader)
	if err != nil {
		return nil, err
	}

	s := newSession(expanded, a.dataBase, a.log)
	if err := s.pass1(); err != nil {
		return nil, err
	}
	a.log.WithFields(logrus.Fields{
		"lines":  len(expanded),
		"labels": len(s.labels),
		"size":   s.address,
	}).Debug("pass 1 complete")

	if err := s.pass2(); err != nil {
		return nil, err
	}
	a.log.WithFields(logrus.Fields{
		"bytes":    len(s.code),
		"dataNext": s.dataAddr,
	}).Debug("pass 2 complete")

	p := &Program{
		Code:     append([]byte(nil), s.code...),
		Labels:   s.labels,
		Size:     len(s.code),
		Included: included,
	}
	a.logSymbols(p)
	return p, nil
}

func (a *Assembler) logSymbols(p *Program) {
	a.log.WithField("size", p.Size).Infof("program size: %d bytes", p.Size)
	for _, sym := range p.Symbols() {
		a.log.WithFields(logrus.Fields{
			"label":   sym.Name,
			"address": sym.Address,
			"bank":    sym.Bank,
			"offset":  sym.Offset,
		}).Infof("%-20s %-8d %d:%#x", sym.Name, sym.Address, sym.Bank, sym.Offset)
	}
}
