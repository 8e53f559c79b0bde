package asm

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// SourceReader returns the raw lines of the file at path. It is how the
// include expander reaches the outside world.
type SourceReader interface {
	ReadLines(path string) ([]string, error)
}

// OSReader reads source files from the host file system.
type OSReader struct{}

// ReadLines returns the lines of the file at path with CRLF line endings
// normalized. A trailing newline does not produce an extra empty line.
func (OSReader) ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n"), nil
}

type includeExpander struct {
	reader SourceReader
	// stack holds the files currently being expanded; seeing one of them
	// again means the includes form a cycle.
	stack    map[string]bool
	included []string
	seen     map[string]bool
}

// expandIncludes replaces every .INCLUDE line with the lines of the named
// file, resolved against the directory of the including file. Included files
// are expanded recursively. A file is spliced in at most once. rootFile is
// the path of the top-level source, or "" when the source did not come from
// a file.
func expandIncludes(lines []SourceLine, rootFile, baseDir string, r SourceReader) ([]SourceLine, []string, error) {
	x := &includeExpander{
		reader: r,
		stack:  make(map[string]bool),
		seen:   make(map[string]bool),
	}
	if rootFile != "" {
		x.stack[filepath.Clean(rootFile)] = true
	}
	out, err := x.expand(lines, baseDir)
	if err != nil {
		return nil, nil, err
	}
	return out, x.included, nil
}

func (x *includeExpander) expand(lines []SourceLine, baseDir string) ([]SourceLine, error) {
	out := make([]SourceLine, 0, len(lines))
	for _, line := range lines {
		d, ok := Classify(line.Text).(*Directive)
		if !ok || d.Name != ".INCLUDE" {
			out = append(out, line)
			continue
		}

		name := includePath(line.Text)
		if name == "" {
			return nil, errorAt(MalformedDirective, line, ".INCLUDE expects a file path")
		}
		path := filepath.Clean(filepath.Join(baseDir, name))
		if filepath.IsAbs(name) {
			path = filepath.Clean(name)
		}

		if x.stack[path] {
			return nil, errorAt(IncludeCycle, line, "circular include of %q", name)
		}
		if x.seen[path] {
			continue
		}
		x.seen[path] = true
		x.included = append(x.included, path)

		raw, err := x.reader.ReadLines(path)
		if err != nil {
			return nil, errorAt(FileNotFound, line, "file not found: %s", name).
				withCause(errors.Wrapf(err, "reading %s", path))
		}

		sub := make([]SourceLine, len(raw))
		for i, text := range raw {
			sub[i] = SourceLine{Text: text, File: path, Num: i + 1}
		}

		x.stack[path] = true
		expanded, err := x.expand(sub, filepath.Dir(path))
		delete(x.stack, path)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}
