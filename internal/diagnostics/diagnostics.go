// Package diagnostics collects compile-time errors across the lexer,
// parser and resolver into a single sorted list, mirroring the shape of
// go/scanner.ErrorList.
package diagnostics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pschiffmann/minic/lang/token"
)

// Error is a single diagnostic attached to a source position.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e Error) Error() string {
	if e.Pos == (token.Pos{}) {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// ErrorList accumulates Errors in the order they were added, and sorts them
// by position before being reported to a caller.
type ErrorList []*Error

// Add appends a new diagnostic.
func (l *ErrorList) Add(pos token.Pos, msg string) {
	*l = append(*l, &Error{Pos: pos, Msg: msg})
}

func (l ErrorList) Len() int      { return len(l) }
func (l ErrorList) Swap(i, j int) { l[i], l[j] = l[j], l[i] }
func (l ErrorList) Less(i, j int) bool {
	pi, pj := l[i].Pos, l[j].Pos
	if pi.Line != pj.Line {
		return pi.Line < pj.Line
	}
	return pi.Col < pj.Col
}

// Sort orders the list by source position.
func (l ErrorList) Sort() { sort.Sort(l) }

// Unwrap exposes the individual diagnostics to errors.Is/As and
// fmt.Errorf's %w handling, per the standard multi-error convention.
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// Err returns l as an error if it is non-empty, or nil otherwise. Callers
// should prefer this over checking len(l) == 0 directly so that a nil
// ErrorList and an empty one are both treated as "no error".
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (and %d more errors)", l[0], len(l)-1)
	return sb.String()
}
