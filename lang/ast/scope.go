package ast

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// NameError reports a name resolution failure: either an undefined
// identifier or a name collision within the same scope.
type NameError struct {
	Name      string
	Collision bool
	Existing  Definition // set when Collision is true
}

func (e *NameError) Error() string {
	if e.Collision {
		return fmt.Sprintf("name collision: %q is already defined in this scope", e.Name)
	}
	return fmt.Sprintf("undefined name: %q", e.Name)
}

// Scope is an ordered identifier-to-definition mapping with a parent link.
// The global scope (namespace) has no parent. Identifiers are unique within
// a single scope; Lookup walks the parent chain.
//
// The backing map is a github.com/dolthub/swiss hash map; insertion order
// is tracked separately, since the swiss table itself is unordered and
// Names/Definitions need to iterate in declaration order.
type Scope struct {
	parent *Scope
	defs   *swiss.Map[string, Definition]
	order  []string
}

// NewScope creates a scope linked to parent. Pass a nil parent only for the
// global namespace.
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, defs: swiss.NewMap[string, Definition](8)}
}

// Parent returns the enclosing scope, or nil for the global namespace.
func (s *Scope) Parent() *Scope { return s.parent }

// Define adds def to this scope under its name. It is an error to define a
// name that already exists in this exact scope (shadowing an outer scope's
// name is allowed).
func (s *Scope) Define(def Definition) error {
	if existing, ok := s.defs.Get(def.Name()); ok {
		return &NameError{Name: def.Name(), Collision: true, Existing: existing}
	}
	s.defs.Put(def.Name(), def)
	s.order = append(s.order, def.Name())
	def.bindScope(s)
	return nil
}

// LookUp resolves name starting in this scope and walking up through parent
// scopes. The global scope raises an undefined-name error instead of
// ascending past it.
func (s *Scope) LookUp(name string) (Definition, error) {
	for cur := s; cur != nil; cur = cur.parent {
		if def, ok := cur.defs.Get(name); ok {
			return def, nil
		}
	}
	return nil, &NameError{Name: name}
}

// LookUpLocal resolves name only within this scope, without ascending.
func (s *Scope) LookUpLocal(name string) (Definition, bool) {
	return s.defs.Get(name)
}

// Names returns the identifiers defined directly in this scope, in
// insertion order.
func (s *Scope) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Definitions returns the definitions in this scope, in insertion order.
func (s *Scope) Definitions() []Definition {
	out := make([]Definition, 0, len(s.order))
	for _, n := range s.order {
		d, _ := s.defs.Get(n)
		out = append(out, d)
	}
	return out
}
