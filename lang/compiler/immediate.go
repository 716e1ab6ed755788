package compiler

// Immediate is the two-variant sum type from the design notes: an
// instruction's immediate argument is either a concrete number already
// known at emission time, or a pending reference to a label key (usually
// an AST node — a jump target, a call target, a frame offset — but
// sometimes a codegen-internal marker such as a loop's break/continue
// target) whose address the fixup pass resolves once every instruction
// has been emitted.
type Immediate struct {
	concrete  uint64
	pending   any
	isPending bool
}

// Concrete builds an Immediate already holding its final numeric value.
func Concrete(v uint64) Immediate { return Immediate{concrete: v} }

// Pending builds an Immediate that resolves to key's registered address
// once the fixup pass runs (see Builder.Label).
func Pending(key any) Immediate { return Immediate{pending: key, isPending: true} }

// IsPending reports whether this Immediate still needs fixing up.
func (i Immediate) IsPending() bool { return i.isPending }
