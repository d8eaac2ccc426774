// Package template defines the uniform contract every symbolic template in
// this module satisfies: something that can emit a well-formedness
// constraint, reconstruct a concrete value from a solver model, and test
// equality against a concrete value.
package template

import "github.com/gitrdm/modalsynth/pkg/smt"

// Template is satisfied by every symbolic stand-in for a syntactic or
// semantic object of type D whose shape is selected by solver-controlled
// variables.
type Template[D any] interface {
	// Constraint is satisfiable iff the template's control variables encode
	// a syntactically valid D value.
	Constraint() smt.Term

	// FromModel requires model ⊨ Constraint() and returns the concrete
	// value the model decodes to.
	FromModel(model smt.Model) D

	// Equals returns a term that is true in a model iff the template
	// decodes to value under that model.
	Equals(value D) smt.Term
}

// BoundedIntegerVariable owns a single backend symbol constrained to
// lo <= n <= hi, the control-variable building block every other template
// in this module is built from.
type BoundedIntegerVariable struct {
	Lo, Hi int
	term    smt.Term
}

// NewBoundedIntegerVariable allocates a fresh symbol over [lo, hi].
func NewBoundedIntegerVariable(name string, lo, hi int) *BoundedIntegerVariable {
	return &BoundedIntegerVariable{Lo: lo, Hi: hi, term: smt.FreshBoundedInt(name, lo, hi)}
}

// Term returns the underlying backend symbol term.
func (b *BoundedIntegerVariable) Term() smt.Term { return b.term }

// Constraint is always ⊤: the symbol's own domain already restricts it to
// [lo, hi], so there is nothing extra to assert.
func (b *BoundedIntegerVariable) Constraint() smt.Term { return smt.True() }

// Equals returns a term true in a model iff the variable's value is k.
func (b *BoundedIntegerVariable) Equals(k int) smt.Term { return smt.Eq(b.term, smt.IntConst(k)) }

// FromModel extracts the concrete integer value, defaulting to the low
// bound when the model leaves the symbol unassigned (it reached no checked
// assertion, so any in-range value satisfies the solver).
func (b *BoundedIntegerVariable) FromModel(model smt.Model) int {
	sym, ok := b.term.AsSymbol()
	if !ok {
		panic("template: BoundedIntegerVariable term is not a symbol")
	}
	if v, ok := model.Lookup(sym); ok {
		return v
	}
	return b.Lo
}

// Union offers a tagged choice over alternative templates of the same
// domain D. Its constraint picks one child and satisfies that child's
// constraint while leaving the others unconstrained; its FromModel /
// Equals delegate to whichever child the tag selects.
//
// One generic type serves formula and term unions alike: both are the same
// shape parametrized over D.
type Union[D any] struct {
	tag      *BoundedIntegerVariable
	children []Template[D]
}

// NewUnion builds a Union over children, indexed 0..len(children)-1 by tag.
func NewUnion[D any](name string, children []Template[D]) *Union[D] {
	if len(children) == 0 {
		panic("template: NewUnion requires at least one child")
	}
	return &Union[D]{
		tag:      NewBoundedIntegerVariable(name, 0, len(children)-1),
		children: children,
	}
}

// Constraint is satisfiable iff some child's constraint is, under the tag
// that selects it.
func (u *Union[D]) Constraint() smt.Term {
	parts := make([]smt.Term, len(u.children))
	for i, c := range u.children {
		parts[i] = smt.And(u.tag.Equals(i), c.Constraint())
	}
	return smt.Or(parts...)
}

// FromModel decodes the selected child's value.
func (u *Union[D]) FromModel(model smt.Model) D {
	idx := u.tag.FromModel(model)
	return u.children[idx].FromModel(model)
}

// Equals is the disjunction, over every child, of "this child is selected
// and decodes to value".
func (u *Union[D]) Equals(value D) smt.Term {
	parts := make([]smt.Term, len(u.children))
	for i, c := range u.children {
		parts[i] = smt.And(u.tag.Equals(i), c.Equals(value))
	}
	return smt.Or(parts...)
}
