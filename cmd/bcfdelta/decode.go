package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/inodb/bcfdelta/internal/bcfdelta"
	"github.com/spf13/viper"
)

func runDecode(args []string) int {
	fs := flag.NewFlagSet("bcfdelta-decode", flag.ContinueOnError)

	var (
		output  string
		threads int
		verbose bool
	)

	fs.StringVar(&output, "o", "", "Output file (required)")
	fs.StringVar(&output, "output", "", "Output file (required)")
	fs.IntVar(&threads, "@", viper.GetInt("threads"), "Worker threads (0: runtime.NumCPU())")
	fs.IntVar(&threads, "threads", viper.GetInt("threads"), "Worker threads (0: runtime.NumCPU())")
	fs.BoolVar(&verbose, "v", false, "Log reference transitions and skipped fields")
	fs.BoolVar(&verbose, "verbose", false, "Log reference transitions and skipped fields")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Reverse a delta/XOR-compressed VCF/BCF file.

Usage:
  bcfdelta decode [options] <input> -o <output>

Arguments:
  <input>  Input VCF/VCF.gz/BCF file produced by "bcfdelta encode"

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  bcfdelta decode output.bcf -o restored.bcf
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	// Options may follow the positional arguments: keep parsing after each one.
	var positional []string
	for fs.NArg() > 0 {
		positional = append(positional, fs.Arg(0))
		if err := fs.Parse(fs.Args()[1:]); err != nil {
			return ExitUsage
		}
	}

	if len(positional) < 1 {
		fmt.Fprintf(os.Stderr, "Error: input file argument required\n\n")
		fs.Usage()
		return ExitUsage
	}
	if output == "" && len(positional) > 1 {
		output = positional[1]
	}
	if output == "" {
		fmt.Fprintf(os.Stderr, "Error: an <output> argument or -o/--output is required\n\n")
		fs.Usage()
		return ExitUsage
	}

	bcfdelta.SetLogger(newLogger(verbose))

	opts := bcfdelta.DecodeOptions{
		Input:   positional[0],
		Output:  output,
		Threads: threads,
	}

	if err := bcfdelta.Decode(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	return ExitSuccess
}
