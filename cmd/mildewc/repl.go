package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"mildew/compiler"
	"mildew/lexer"
	"mildew/parser"
	"mildew/token"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
)

// replCmd drives an interactive loop that compiles each statement the user
// enters and prints its bytecode; it never hands the result to a VM.
type replCmd struct {
	dumpConstants bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "interactively compile Mildew source and inspect the bytecode" }
func (*replCmd) Usage() string    { return "mildewc repl [-constants]\n" }

func (cmd *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.dumpConstants, "constants", false, "also print the constant table after each listing")
}

func (cmd *replCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	fmt.Println("Mildew compiler REPL — compiles to bytecode, never runs it. Type 'exit' to quit.")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     "/tmp/mildewc_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start readline: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			buffer.Reset()
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}

		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		tokens, lexErr := lexer.Tokenize(source)
		if lexErr != nil {
			fmt.Println(lexErr)
			buffer.Reset()
			continue
		}

		if !isInputReady(tokens) {
			continue
		}

		_, parseErrs := parser.New(tokens).Parse()
		if len(parseErrs) > 0 {
			if allParseErrorsAtEOF(parseErrs, tokens[len(tokens)-1]) {
				continue
			}
			fmt.Fprint(os.Stdout, "Parse error: ")
			for _, pErr := range parseErrs {
				fmt.Fprintf(os.Stdout, "%v\n", pErr)
			}
			buffer.Reset()
			continue
		}

		// Compile re-lexes and re-parses source; a small cost the REPL
		// accepts in exchange for keeping one public entry point.
		chunk, compileErr := compiler.Compile(source)
		if compileErr != nil {
			fmt.Fprintln(os.Stderr, compileErr.Error())
			buffer.Reset()
			continue
		}

		fmt.Print(compiler.Disassemble(chunk.Instructions))
		if cmd.dumpConstants {
			for i, c := range chunk.Constants {
				fmt.Printf(";   %d: %v\n", i, c)
			}
		}
		buffer.Reset()
	}
}

// isInputReady reports whether the buffered tokens form a balanced,
// non-trailing-operator statement ready to parse, or whether the REPL
// should keep waiting for more lines.
func isInputReady(tokens []token.Token) bool {
	braceBalance := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case token.LBRACE:
			braceBalance++
		case token.RBRACE:
			braceBalance--
		}
	}
	if braceBalance > 0 {
		return false
	}

	last := lastNonEOF(tokens)
	if last == nil {
		return true
	}

	switch last.Kind {
	case token.ASSIGN, token.PLUS, token.MINUS, token.STAR, token.SLASH, token.BANG,
		token.EQ, token.NEQ, token.LT, token.LE, token.GT, token.GE,
		token.COMMA, token.LPAREN, token.LBRACE,
		token.IF, token.ELSE, token.WHILE, token.FOR, token.FUNCTION, token.RETURN,
		token.VAR, token.LET, token.CONST, token.AND_AND, token.OR_OR, token.ARROW:
		return false
	}

	return true
}

func lastNonEOF(tokens []token.Token) *token.Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Kind != token.EOF {
			return &tokens[i]
		}
	}
	return nil
}

func allParseErrorsAtEOF(parseErrs []error, eof token.Token) bool {
	for _, parseErr := range parseErrs {
		syntaxErr, ok := parseErr.(parser.SyntaxError)
		if !ok {
			return false
		}
		if syntaxErr.Line != eof.Line || syntaxErr.Column != eof.Column {
			return false
		}
	}
	return len(parseErrs) > 0
}
