package scanner_test

import (
	"testing"

	"github.com/pschiffmann/minic/lang/numeric"
	"github.com/pschiffmann/minic/lang/scanner"
	"github.com/pschiffmann/minic/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l, err := scanner.New("test.c", src)
	require.NoError(t, err)

	var toks []token.Token
	for {
		tok, _ := l.Current()
		toks = append(toks, tok)
		if tok == token.EOF {
			return toks
		}
		require.NoError(t, l.MoveNext())
	}
}

func TestOperatorOrdering(t *testing.T) {
	cases := []struct {
		src  string
		want []token.Token
	}{
		{"++", []token.Token{token.INC, token.EOF}},
		{"+=", []token.Token{token.PLUS_ASSIGN, token.EOF}},
		{"+", []token.Token{token.PLUS, token.EOF}},
		{"<<=", []token.Token{token.SHL_ASSIGN, token.EOF}},
		{"<<", []token.Token{token.SHL, token.EOF}},
		{"<", []token.Token{token.LT, token.EOF}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, scanAll(t, tc.src), tc.src)
	}
}

func TestKeywordVsIdentifier(t *testing.T) {
	assert.Equal(t, []token.Token{token.RETURN, token.EOF}, scanAll(t, "return"))
	assert.Equal(t, []token.Token{token.IDENT, token.EOF}, scanAll(t, "returned"))
}

func TestIntegerLiteralBasesAndSuffixes(t *testing.T) {
	cases := []struct {
		src      string
		wantInt  int64
		wantType numeric.Type
	}{
		{"123", 123, numeric.Sint32},
		{"0x7b", 123, numeric.Sint32},
		{"0173", 123, numeric.Sint32},
		{"123u", 123, numeric.Uint32},
		{"123l", 123, numeric.Sint64},
		{"123ul", 123, numeric.Uint64},
	}
	for _, tc := range cases {
		l, err := scanner.New("t.c", tc.src)
		require.NoError(t, err)
		tok, val := l.Current()
		require.Equal(t, token.INT, tok, tc.src)
		assert.Equal(t, tc.wantInt, val.Int, tc.src)
		assert.Equal(t, tc.wantType, val.NumberType, tc.src)
	}
}

func TestFloatLiteralSuffix(t *testing.T) {
	l, err := scanner.New("t.c", "1.5f")
	require.NoError(t, err)
	tok, val := l.Current()
	require.Equal(t, token.FLOAT, tok)
	assert.InDelta(t, 1.5, val.Float, 1e-9)
	assert.Equal(t, numeric.Fp32, val.NumberType)

	l2, err := scanner.New("t.c", "1.5")
	require.NoError(t, err)
	_, val2 := l2.Current()
	assert.Equal(t, numeric.Fp64, val2.NumberType)
}

func TestCharEscape(t *testing.T) {
	l, err := scanner.New("t.c", `'\n'`)
	require.NoError(t, err)
	tok, val := l.Current()
	require.Equal(t, token.CHAR, tok)
	assert.Equal(t, int64('\n'), val.Int)
}

func TestStringEscape(t *testing.T) {
	l, err := scanner.New("t.c", `"a\tb"`)
	require.NoError(t, err)
	tok, val := l.Current()
	require.Equal(t, token.STRING, tok)
	assert.Equal(t, "a\tb", val.Str)
}

func TestUnrecognizedSourceRaisesError(t *testing.T) {
	_, err := scanner.New("t.c", "$")
	require.Error(t, err)
	var scanErr *scanner.Error
	assert.ErrorAs(t, err, &scanErr)
}

func TestSpanReconstructsNonWhitespaceSource(t *testing.T) {
	src := "int x = 1 ;"
	l, err := scanner.New("t.c", src)
	require.NoError(t, err)

	var rebuilt string
	for {
		tok, val := l.Current()
		if tok == token.EOF {
			break
		}
		rebuilt += src[val.Span.Start.Offset:val.Span.End.Offset]
		require.NoError(t, l.MoveNext())
	}
	assert.Equal(t, "intx=1;", rebuilt)
}
