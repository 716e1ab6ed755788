// Package parser implements the minic recursive-descent declaration/
// statement parser and Pratt expression parser. It consumes a
// lang/scanner token stream and produces a fully scope-resolved
// lang/ast.Program.
package parser

import (
	"fmt"

	"github.com/pschiffmann/minic/lang/ast"
	"github.com/pschiffmann/minic/lang/scanner"
	"github.com/pschiffmann/minic/lang/token"
)

// DefaultPointerSize is the pointer width (in bytes) the parser assumes
// when none is configured, matching the "32-bit pointer size is the
// configured default" resolution in the specification's design notes.
const DefaultPointerSize = 4

// Error is a fatal parse-time error: an unexpected token, or a language
// rule violated (duplicate goto label, case outside switch, missing main,
// ...).
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// parser holds all mutable parsing state. currentScope is the single
// mutable cursor described in the specification: every method that enters
// a new scope restores it before returning.
type parser struct {
	lex         *scanner.Lexer
	global      *ast.Scope
	currentScope *ast.Scope
	pointerSize int

	currentFunc *ast.FunctionDefinition
	pendingGotos []*ast.GotoStatement
}

// Parse parses src (named filename, for position reporting) into a
// complete Program: global scope, global variables, and function
// definitions. pointerSize configures the byte width used for pointer
// types; pass DefaultPointerSize absent a more specific requirement.
func Parse(filename, src string, pointerSize int) (*ast.Program, error) {
	lex, err := scanner.New(filename, src)
	if err != nil {
		return nil, err
	}
	global := ast.NewGlobalScope()
	p := &parser{lex: lex, global: global, currentScope: global, pointerSize: pointerSize}
	return p.parseProgram()
}

func (p *parser) tok() token.Token { t, _ := p.lex.Current(); return t }
func (p *parser) val() token.Value { _, v := p.lex.Current(); return v }

func (p *parser) pos() token.Pos { return p.val().Span.Start }

func (p *parser) advance() error { return p.lex.MoveNext() }

func (p *parser) errorf(format string, args ...any) error {
	return &Error{Pos: p.pos(), Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(want token.Token) (token.Value, error) {
	if p.tok() != want {
		return token.Value{}, &Error{Pos: p.pos(), Msg: fmt.Sprintf("unexpected token %#v, want %#v", p.tok(), want)}
	}
	v, err := p.lex.Consume(want)
	return v, err
}

func (p *parser) parseProgram() (*ast.Program, error) {
	prog := ast.NewProgram(p.global)

	for p.tok() != token.EOF {
		switch p.tok() {
		case token.STRUCT, token.TYPEDEF, token.UNION:
			return nil, p.errorf("%#v is reserved but unimplemented in this dialect", p.tok())
		}

		isConst, err := p.consumeConstQualifier()
		if err != nil {
			return nil, err
		}
		typ, err := p.parseTypeSpecifier()
		if err != nil {
			return nil, err
		}
		nameVal, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		name := nameVal.Raw

		if p.tok() == token.LPAREN {
			fn, err := p.parseFunctionDefinition(name, typ, nameVal.Span.Start)
			if err != nil {
				return nil, err
			}
			prog.AddFunction(fn)
			continue
		}

		v, err := p.parseGlobalVariableTail(name, isConst, typ, nameVal.Span.Start)
		if err != nil {
			return nil, err
		}
		if err := p.global.Define(v); err != nil {
			return nil, err
		}
		prog.AddGlobal(v)
	}

	if err := p.validateMain(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

// validateMain enforces the specification's main-signature rule: a
// function named main must exist, return int, and take no parameters.
func (p *parser) validateMain(prog *ast.Program) error {
	intType, _ := p.global.LookUp("int")
	for _, fn := range prog.Functions {
		if fn.Name() != "main" {
			continue
		}
		if fn.ReturnType != intType {
			return &Error{Pos: fn.Span().Start, Msg: "main must return int"}
		}
		if len(fn.ParamOrder) != 0 {
			return &Error{Pos: fn.Span().Start, Msg: "main must take no parameters"}
		}
		return nil
	}
	return &Error{Msg: "no function named main"}
}
