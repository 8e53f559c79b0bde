package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"bankasm/pkg/asm"
	"bankasm/pkg/cassette"
	"bankasm/pkg/hexfile"
	"bankasm/pkg/utils"
)

type options struct {
	verbose  bool
	section  int
	name     string
	sections int
	output   string
	input    string
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("assemble", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := &options{}
	fs.BoolVar(&opts.verbose, "v", false, "verbose (debug) logging")
	fs.IntVar(&opts.section, "cassette", -1, "write into this cassette section instead of a hex file")
	fs.StringVar(&opts.name, "name", "cassette", "cassette name inside a .db/.sqlite store")
	fs.IntVar(&opts.sections, "sections", 0, "create a blank cassette with this many sections if it does not exist")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: assemble [-v] [--cassette <section>] <output> <input>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return nil, errors.New("expected <output> <input>")
	}
	opts.output, opts.input = fs.Arg(0), fs.Arg(1)
	return opts, nil
}

func run(ctx context.Context, opts *options, log *logrus.Logger, stdout io.Writer) error {
	fullPath, _, err := utils.GetPathInfo(opts.input)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", opts.input)
	}

	a := asm.NewAssembler(asm.Options{Logger: log})
	prog, err := a.AssembleFile(fullPath)
	if err != nil {
		return err
	}

	if opts.section < 0 {
		if err := hexfile.WriteFile(opts.output, prog.Code); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "assembled %d bytes -> %s\n", prog.Size, opts.output)
		return nil
	}

	blob, closeFn, err := openCassette(ctx, opts)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := cassette.WriteSection(blob, opts.section, prog.Code, log); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "assembled %d bytes -> %s section %d\n", prog.Size, opts.output, opts.section)
	return nil
}

// openCassette picks the store from the output path and creates a blank
// cassette when -sections asks for one and none exists yet.
func openCassette(ctx context.Context, opts *options) (cassette.Blob, func() error, error) {
	nop := func() error { return nil }

	if !utils.IsSQLitePath(opts.output) {
		fc := &cassette.FileCassette{Path: opts.output}
		if opts.sections > 0 {
			if _, err := os.Stat(opts.output); os.IsNotExist(err) {
				if _, err := cassette.CreateFile(opts.output, opts.sections); err != nil {
					return nil, nil, err
				}
			}
		}
		return fc, nop, nil
	}

	store, err := cassette.OpenSQL(opts.output)
	if err != nil {
		return nil, nil, err
	}
	blob := store.Cassette(ctx, opts.name)
	if opts.sections > 0 {
		if _, err := blob.ReadBlob(); errors.Is(err, cassette.ErrNotFound) {
			if err := store.Create(ctx, opts.name, opts.sections); err != nil {
				store.Close()
				return nil, nil, err
			}
		}
	}
	return blob, store.Close, nil
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	log := utils.NewLogger(os.Stderr, opts.verbose)
	if err := run(context.Background(), opts, log, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "assembly failed: %v\n", err)
		os.Exit(1)
	}
}
