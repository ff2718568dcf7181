package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mildew/compiler"

	"github.com/google/subcommands"
)

type compileCmd struct {
	disassemble bool
	outPath     string
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "compile a source file and print its bytecode" }
func (*compileCmd) Usage() string    { return "mildewc compile [-disassemble] [-o path] <file>\n" }

func (cmd *compileCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.disassemble, "disassemble", true, "print a human-readable listing instead of raw bytes")
	f.StringVar(&cmd.outPath, "o", "", "write output to this path instead of stdout")
}

func (cmd *compileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "💥 no source file given")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read %s: %v\n", args[0], err)
		return subcommands.ExitFailure
	}

	chunk, err := compiler.Compile(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	var out strings.Builder
	if cmd.disassemble {
		out.WriteString(fmt.Sprintf("; %s\n", filepath.Base(args[0])))
		out.WriteString(compiler.Disassemble(chunk.Instructions))
		out.WriteString(fmt.Sprintf("; %d constants\n", len(chunk.Constants)))
		for i, c := range chunk.Constants {
			out.WriteString(fmt.Sprintf(";   %d: %v\n", i, c))
		}
	} else {
		out.Write(chunk.Instructions)
	}

	if cmd.outPath == "" {
		fmt.Print(out.String())
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(cmd.outPath, []byte(out.String()), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to write %s: %v\n", cmd.outPath, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
