package scanner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pschiffmann/minic/lang/numeric"
	"github.com/pschiffmann/minic/lang/token"
)

// scanNumber recognizes an integer or floating literal starting at the
// current position, which the caller has already verified begins with a
// digit or a '.' followed by a digit.
func (l *Lexer) scanNumber(start token.Pos) (token.Token, token.Value, error) {
	begin := l.off
	isFloat := false

	if l.peekByte(0) == '0' && (l.peekByte(1) == 'x' || l.peekByte(1) == 'X') {
		l.advance() // '0'
		l.advance() // 'x'
		for isHexDigit(l.peekByte(0)) {
			l.advance()
		}
		return l.finishInt(begin, start, 16)
	}

	for isDigit0To9(l.peekByte(0)) {
		l.advance()
	}
	if l.peekByte(0) == '.' {
		isFloat = true
		l.advance()
		for isDigit0To9(l.peekByte(0)) {
			l.advance()
		}
	}
	if l.peekByte(0) == 'e' || l.peekByte(0) == 'E' {
		save := l.off
		l.advance()
		if l.peekByte(0) == '+' || l.peekByte(0) == '-' {
			l.advance()
		}
		if isDigit0To9(l.peekByte(0)) {
			isFloat = true
			for isDigit0To9(l.peekByte(0)) {
				l.advance()
			}
		} else {
			l.off = save
		}
	}

	if isFloat {
		if l.peekByte(0) == 'f' || l.peekByte(0) == 'F' || l.peekByte(0) == 'd' || l.peekByte(0) == 'D' {
			l.advance()
		}
		return l.finishFloat(begin, start)
	}

	lit := l.src[begin:l.off]
	base := 10
	if len(lit) > 1 && lit[0] == '0' {
		base = 8
	}
	return l.finishInt(begin, start, base)
}

func isDigit0To9(b byte) bool { return '0' <= b && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit0To9(b) || 'a' <= b && b <= 'f' || 'A' <= b && b <= 'F'
}

func (l *Lexer) finishInt(begin int, start token.Pos, base int) (token.Token, token.Value, error) {
	// consume an optional u/l/ul/lu suffix, in any case and order, at most
	// one of each letter.
	var hasU, hasL int
	for {
		switch l.peekByte(0) {
		case 'u', 'U':
			hasU++
			l.advance()
		case 'l', 'L':
			hasL++
			l.advance()
		default:
			goto doneSuffix
		}
	}
doneSuffix:
	lit := l.src[begin:l.off]
	if hasU > 1 || hasL > 1 {
		return token.ILLEGAL, token.Value{}, &Error{Pos: start, Msg: fmt.Sprintf("invalid integer literal suffix in %q", lit)}
	}
	raw := strings.TrimRight(lit, "uUlL")
	switch base {
	case 16:
		raw = raw[2:] // strip "0x"
	case 8:
		if len(raw) > 1 {
			raw = raw[1:]
		}
	}
	if raw == "" {
		raw = "0"
	}
	v, err := strconv.ParseUint(raw, base, 64)
	if err != nil {
		return token.ILLEGAL, token.Value{}, &Error{Pos: start, Msg: fmt.Sprintf("invalid integer literal %q: %s", lit, err)}
	}

	typ := numeric.Sint32
	switch {
	case hasU > 0 && hasL > 0:
		typ = numeric.Uint64
	case hasL > 0:
		typ = numeric.Sint64
	case hasU > 0:
		typ = numeric.Uint32
	}
	// promote when the literal value does not fit the default type
	if typ == numeric.Sint32 && v > 0x7fffffff {
		typ = numeric.Sint64
	}
	if typ == numeric.Uint32 && v > 0xffffffff {
		typ = numeric.Uint64
	}

	return token.INT, token.Value{
		Raw: lit, Int: int64(v), NumberType: typ,
		Span: token.Span{Start: start, End: l.pos()},
	}, nil
}

func (l *Lexer) finishFloat(begin int, start token.Pos) (token.Token, token.Value, error) {
	lit := l.src[begin:l.off]
	digits := lit
	typ := numeric.Fp64
	if n := len(digits); n > 0 {
		switch digits[n-1] {
		case 'f', 'F':
			typ = numeric.Fp32
			digits = digits[:n-1]
		case 'd', 'D':
			digits = digits[:n-1]
		}
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return token.ILLEGAL, token.Value{}, &Error{Pos: start, Msg: fmt.Sprintf("invalid float literal %q: %s", lit, err)}
	}
	return token.FLOAT, token.Value{
		Raw: lit, Float: v, NumberType: typ,
		Span: token.Span{Start: start, End: l.pos()},
	}, nil
}
