package scanner

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/pschiffmann/minic/lang/numeric"
	"github.com/pschiffmann/minic/lang/token"
)

// scanChar recognizes a 'c' or backslash-escape char literal and decodes it
// to a code point. Recognized escapes: ' " ? a b f n r t v \, octal 1-3
// digits, \x.. and \u....
func (l *Lexer) scanChar(start token.Pos) (token.Token, token.Value, error) {
	l.advance() // opening '

	if l.peekByte(0) == '\'' || l.off >= len(l.src) {
		return token.ILLEGAL, token.Value{}, &Error{Pos: start, Msg: "empty character literal"}
	}

	code, err := l.decodeCharOrEscape(start)
	if err != nil {
		return token.ILLEGAL, token.Value{}, err
	}

	if l.peekByte(0) != '\'' {
		return token.ILLEGAL, token.Value{}, &Error{Pos: start, Msg: "unterminated character literal"}
	}
	l.advance() // closing '

	return token.CHAR, token.Value{
		Raw: l.src[start.Offset:l.off], Int: int64(code), NumberType: numeric.Sint32,
		Span: token.Span{Start: start, End: l.pos()},
	}, nil
}

// scanString recognizes a "..." literal and decodes all escape sequences to
// a byte sequence.
func (l *Lexer) scanString(start token.Pos) (token.Token, token.Value, error) {
	l.advance() // opening "

	var sb []byte
	for {
		if l.off >= len(l.src) {
			return token.ILLEGAL, token.Value{}, &Error{Pos: start, Msg: "unterminated string literal"}
		}
		if l.peekByte(0) == '"' {
			l.advance()
			break
		}
		code, err := l.decodeCharOrEscape(start)
		if err != nil {
			return token.ILLEGAL, token.Value{}, err
		}
		sb = appendRune(sb, code)
	}

	return token.STRING, token.Value{
		Raw: l.src[start.Offset:l.off], Str: string(sb),
		Span: token.Span{Start: start, End: l.pos()},
	}, nil
}

func appendRune(b []byte, r rune) []byte {
	if r < 0x80 {
		return append(b, byte(r))
	}
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	return append(b, buf[:n]...)
}

// decodeCharOrEscape consumes and decodes one source character, which may be
// a plain rune or a backslash-escape, and returns its code point.
func (l *Lexer) decodeCharOrEscape(start token.Pos) (rune, error) {
	r, ok := l.peekRune()
	if !ok {
		return 0, &Error{Pos: start, Msg: "unexpected end of source in literal"}
	}
	if r != '\\' {
		l.advance()
		return r, nil
	}
	l.advance() // backslash
	e, ok := l.peekRune()
	if !ok {
		return 0, &Error{Pos: start, Msg: "unexpected end of source after escape"}
	}
	switch e {
	case '\'', '"', '?', '\\':
		l.advance()
		return e, nil
	case 'a':
		l.advance()
		return '\a', nil
	case 'b':
		l.advance()
		return '\b', nil
	case 'f':
		l.advance()
		return '\f', nil
	case 'n':
		l.advance()
		return '\n', nil
	case 'r':
		l.advance()
		return '\r', nil
	case 't':
		l.advance()
		return '\t', nil
	case 'v':
		l.advance()
		return '\v', nil
	case 'x':
		l.advance()
		begin := l.off
		for isHexDigit(l.peekByte(0)) {
			l.advance()
		}
		if l.off == begin {
			return 0, &Error{Pos: start, Msg: `\x escape requires at least one hex digit`}
		}
		v, err := strconv.ParseUint(l.src[begin:l.off], 16, 32)
		if err != nil {
			return 0, &Error{Pos: start, Msg: fmt.Sprintf("invalid \\x escape: %s", err)}
		}
		return rune(v), nil
	case 'u':
		l.advance()
		begin := l.off
		for n := 0; n < 4 && isHexDigit(l.peekByte(0)); n++ {
			l.advance()
		}
		v, err := strconv.ParseUint(l.src[begin:l.off], 16, 32)
		if err != nil {
			return 0, &Error{Pos: start, Msg: fmt.Sprintf("invalid \\u escape: %s", err)}
		}
		return rune(v), nil
	default:
		if '0' <= e && e <= '7' {
			begin := l.off
			for n := 0; n < 3 && '0' <= l.peekByte(0) && l.peekByte(0) <= '7'; n++ {
				l.advance()
			}
			v, err := strconv.ParseUint(l.src[begin:l.off], 8, 32)
			if err != nil {
				return 0, &Error{Pos: start, Msg: fmt.Sprintf("invalid octal escape: %s", err)}
			}
			return rune(v), nil
		}
		return 0, &Error{Pos: start, Msg: fmt.Sprintf("unknown escape sequence \\%c", e)}
	}
}
