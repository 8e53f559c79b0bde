package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"bankasm/pkg/disasm"
	"bankasm/pkg/hexfile"
	"bankasm/pkg/utils"
)

func run(input, output string, log logrus.FieldLogger, stdout io.Writer) error {
	fullPath, _, err := utils.GetPathInfo(input)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", input)
	}
	code, err := hexfile.ReadFile(fullPath)
	if err != nil {
		return err
	}

	lines := disasm.Disassemble(code)
	unknown := 0
	for _, l := range lines {
		if strings.HasPrefix(l, "; unknown opcode") {
			unknown++
		}
	}
	log.WithFields(logrus.Fields{
		"bytes":   len(code),
		"lines":   len(lines),
		"unknown": unknown,
	}).Debug("disassembled")

	text := strings.Join(lines, "\n") + "\n"
	if output == "" {
		_, err := io.WriteString(stdout, text)
		return err
	}
	if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", output)
	}
	log.Infof("disassembly written to %s", output)
	return nil
}

func main() {
	verbose := flag.Bool("v", false, "verbose (debug) logging")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: disasm [-v] <input.hex> [output.asm]")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}

	log := utils.NewLogger(os.Stderr, *verbose)
	if err := run(flag.Arg(0), flag.Arg(1), log, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "disassembly failed: %v\n", err)
		os.Exit(1)
	}
}
