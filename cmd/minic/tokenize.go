package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/pschiffmann/minic/lang/scanner"
	"github.com/pschiffmann/minic/lang/token"
)

// Tokenize scans each file in args and prints one line per token.
func (c *Cmd) Tokenize(_ context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, path := range args {
		if err := tokenizeFile(stdio, path); err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func tokenizeFile(stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lex, err := scanner.New(path, string(src))
	if err != nil {
		return err
	}
	for {
		tok, val := lex.Current()
		fmt.Fprintf(stdio.Stdout, "%s: %s", val.Span.Start, tok)
		switch tok {
		case token.IDENT:
			fmt.Fprintf(stdio.Stdout, " %s", val.Raw)
		case token.INT:
			fmt.Fprintf(stdio.Stdout, " %d", val.Int)
		case token.FLOAT:
			fmt.Fprintf(stdio.Stdout, " %g", val.Float)
		case token.STRING:
			fmt.Fprintf(stdio.Stdout, " %q", val.Str)
		}
		fmt.Fprintln(stdio.Stdout)
		if tok == token.EOF {
			return nil
		}
		if err := lex.MoveNext(); err != nil {
			return err
		}
	}
}
