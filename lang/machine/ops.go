package machine

import (
	"math"

	"github.com/pschiffmann/minic/lang/numeric"
)

// execArith implements add/sub/mul/div/mod<T>: pop two T values (the
// second-popped is the left operand per §4.5.4), push op(left, right) of
// type T. Integer division and modulo truncate toward zero; floats use
// IEEE-754 semantics directly via Go's own float arithmetic.
func (m *Machine) execArith(op string, t numeric.Type) error {
	right, err := m.popStack(t)
	if err != nil {
		return err
	}
	left, err := m.popStack(t)
	if err != nil {
		return err
	}

	if t.IsFloat() {
		l, r := left.Float64(), right.Float64()
		var res float64
		switch op {
		case "add":
			res = l + r
		case "sub":
			res = l - r
		case "mul":
			res = l * r
		case "div":
			res = l / r
		case "mod":
			res = math.Mod(l, r)
		}
		return m.pushStack(t, numeric.FromFloat64(t, res))
	}

	if t.IsSigned() {
		l, r := left.Int64(), right.Int64()
		res, err := intArith(m, op, l, r)
		if err != nil {
			return err
		}
		return m.pushStack(t, numeric.FromInt64(t, res))
	}

	l, r := left.Uint64(), right.Uint64()
	res, err := uintArith(m, op, l, r)
	if err != nil {
		return err
	}
	return m.pushStack(t, numeric.FromUint64(t, res))
}

// intArith and uintArith are split out of execArith to keep the
// division-by-zero fault (a runtime condition the specification's
// instruction table is silent on, reasonably folded into the same
// segfault-signal family as any other fatal fault) in one place per
// interpretation.
func intArith(m *Machine, op string, l, r int64) (int64, error) {
	switch op {
	case "add":
		return l + r, nil
	case "sub":
		return l - r, nil
	case "mul":
		return l * r, nil
	case "div":
		if r == 0 {
			return 0, &SegfaultError{Address: m.pc, Reason: "integer division by zero"}
		}
		return l / r, nil
	case "mod":
		if r == 0 {
			return 0, &SegfaultError{Address: m.pc, Reason: "integer division by zero"}
		}
		return l % r, nil
	}
	return 0, &SegfaultError{Address: m.pc, Reason: "unrecognized arithmetic op " + op}
}

func uintArith(m *Machine, op string, l, r uint64) (uint64, error) {
	switch op {
	case "add":
		return l + r, nil
	case "sub":
		return l - r, nil
	case "mul":
		return l * r, nil
	case "div":
		if r == 0 {
			return 0, &SegfaultError{Address: m.pc, Reason: "integer division by zero"}
		}
		return l / r, nil
	case "mod":
		if r == 0 {
			return 0, &SegfaultError{Address: m.pc, Reason: "integer division by zero"}
		}
		return l % r, nil
	}
	return 0, &SegfaultError{Address: m.pc, Reason: "unrecognized arithmetic op " + op}
}

// execBitwise implements and/or/xor<n>, integer types only.
func (m *Machine) execBitwise(op string, t numeric.Type) error {
	right, err := m.popStack(t)
	if err != nil {
		return err
	}
	left, err := m.popStack(t)
	if err != nil {
		return err
	}
	l, r := left.Uint64(), right.Uint64()
	var res uint64
	switch op {
	case "and":
		res = l & r
	case "or":
		res = l | r
	case "xor":
		res = l ^ r
	}
	return m.pushStack(t, numeric.FromUint64(t, res))
}

// execCompare implements eq/gt/ge/lt/le<T>: pop two T values, push a uint8
// {0,1} result.
func (m *Machine) execCompare(op string, t numeric.Type) error {
	right, err := m.popStack(t)
	if err != nil {
		return err
	}
	left, err := m.popStack(t)
	if err != nil {
		return err
	}

	var ok bool
	if t.IsFloat() {
		l, r := left.Float64(), right.Float64()
		ok = compareOrdered(op, l, r)
	} else if t.IsSigned() {
		l, r := left.Int64(), right.Int64()
		ok = compareOrdered(op, l, r)
	} else {
		l, r := left.Uint64(), right.Uint64()
		ok = compareOrdered(op, l, r)
	}

	var bits uint64
	if ok {
		bits = 1
	}
	return m.pushStack(numeric.Uint8, numeric.Number{Type: numeric.Uint8, Bits: bits})
}

type ordered interface{ ~int64 | ~uint64 | ~float64 }

func compareOrdered[T ordered](op string, l, r T) bool {
	switch op {
	case "eq":
		return l == r
	case "gt":
		return l > r
	case "ge":
		return l >= r
	case "lt":
		return l < r
	case "le":
		return l <= r
	}
	return false
}
