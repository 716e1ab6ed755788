package token

import "github.com/pschiffmann/minic/lang/numeric"

// Value carries the decoded semantic payload of a token, alongside its
// source span. Which field is meaningful depends on the token kind: Raw for
// identifiers/keywords/operators, Int+NumberType for integer literals,
// Float+NumberType for floating literals, Int for a decoded char literal's
// code point, and Str for a decoded string literal.
type Value struct {
	Raw        string
	Int        int64
	Float      float64
	Str        string
	NumberType numeric.Type
	Span       Span
}
