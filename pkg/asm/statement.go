package asm

import "strings"

const labelMarker = ":"

// SourceLine is one line of (expanded) source together with where it came
// from. Errors keep pointing at the right file after includes are spliced in.
type SourceLine struct {
	Text string
	File string
	Num  int
}

// Statement is the classification of a single source line. It is one of
// *Label, *Directive or *Instruction.
type Statement interface {
	statement()
}

// Label binds Name to the current program address.
type Label struct {
	Name string
}

// Directive is a line starting with '.'.
type Directive struct {
	Name   string
	Args   []string // whitespace tokens after the name
	Values []string // comma separated operand list, quotes stripped
}

// Instruction is a mnemonic followed by its operand tokens.
type Instruction struct {
	Mnemonic string
	Operands []string
}

func (*Label) statement()       {}
func (*Directive) statement()   {}
func (*Instruction) statement() {}

// Classify strips comments from line and decides what kind of statement it
// is. Blank lines yield nil.
func Classify(line string) Statement {
	line = StripComment(line)
	if line == "" {
		return nil
	}
	switch {
	case IsLabel(line):
		return &Label{Name: LabelName(line)}
	case IsDirective(line):
		return &Directive{
			Name:   DirectiveName(line),
			Args:   Tokenize(line)[1:],
			Values: DirectiveValues(line),
		}
	default:
		mnemonic, operands := ParseInstruction(line)
		return &Instruction{Mnemonic: mnemonic, Operands: operands}
	}
}

// IsLabel reports whether line starts with the label marker.
func IsLabel(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), labelMarker)
}

// LabelName returns the upper-cased text after the label marker.
func LabelName(line string) string {
	return strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), labelMarker)))
}

// IsDirective reports whether the first token of line starts with '.'.
func IsDirective(line string) bool {
	return DirectiveName(line) != ""
}

// DirectiveName returns the upper-cased directive token, or "" when line is
// not a directive.
func DirectiveName(line string) string {
	toks := Tokenize(line)
	if len(toks) > 0 && strings.HasPrefix(toks[0], ".") {
		return toks[0]
	}
	return ""
}

// DirectiveValues splits everything after the directive name on commas and
// strips surrounding quotes from each value.
func DirectiveValues(line string) []string {
	toks := Tokenize(line)
	if len(toks) == 0 {
		return nil
	}
	parts := strings.Split(strings.Join(toks[1:], " "), ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		values = append(values, strings.Trim(strings.TrimSpace(p), `"`))
	}
	return values
}

// ParseInstruction splits line into its mnemonic and operand tokens.
func ParseInstruction(line string) (string, []string) {
	toks := Tokenize(line)
	if len(toks) == 0 {
		return "", nil
	}
	return toks[0], toks[1:]
}

// includePath extracts the path of an .INCLUDE line, keeping its case.
func includePath(line string) string {
	fields := strings.Fields(StripComment(line))
	if len(fields) < 2 {
		return ""
	}
	return strings.Trim(strings.Join(fields[1:], " "), `"`)
}

func splitLines(src, file string) []SourceLine {
	raw := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	lines := make([]SourceLine, 0, len(raw))
	for i, text := range raw {
		lines = append(lines, SourceLine{Text: text, File: file, Num: i + 1})
	}
	return lines
}
