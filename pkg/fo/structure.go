package fo

import (
	"fmt"

	"github.com/gitrdm/modalsynth/pkg/smt"
)

// Carrier represents a sort's universe inside a particular Structure.
// Every carrier this module ever builds is finite: its size
// may be a fixed constant (a materialized structure) or a solver-controlled
// bounded integer (a FiniteFOModelTemplate still being searched over), but
// it is always bounded by Bound(), which is what lets UniversallyQuantify /
// ExistentiallyQuantify unroll into a finite conjunction/disjunction
// instead of emitting a native backend quantifier.
type Carrier interface {
	// Bound is the static upper bound on the carrier's size, used to size
	// the unrolled quantifier and any tabulated relation/function over it.
	Bound() int

	// InCarrier is a backend predicate true iff x denotes a currently
	// in-range element (x < size, where size may itself be symbolic).
	InCarrier(x smt.Term) smt.Term

	// FreshElement allocates a fresh backend symbol, ranging over
	// [0, Bound()-1] rather than the current size, suitable for binding a
	// quantified variable of this carrier's sort.
	FreshElement(name string) smt.Term

	// UniversallyQuantify closes body, which mentions the free occurrence
	// of bound, under "for every in-carrier value of bound".
	UniversallyQuantify(bound smt.Term, body smt.Term) smt.Term

	// ExistentiallyQuantify closes body under "for some in-carrier value of
	// bound".
	ExistentiallyQuantify(bound smt.Term, body smt.Term) smt.Term
}

// FiniteCarrier is the one Carrier implementation this module needs: a
// carrier whose elements are {0, ..., size-1}, where size is itself a
// backend term that may be a constant (a materialized structure) or a
// bounded-integer control variable (a structure template still being
// searched over). Both flavors share this type: structures are polymorphic
// in how concrete their content is, not in the shape of their carriers.
type FiniteCarrier struct {
	bound    int
	sizeTerm smt.Term
}

// NewFixedCarrier returns a carrier of exactly size elements.
func NewFixedCarrier(size int) FiniteCarrier {
	return FiniteCarrier{bound: size, sizeTerm: smt.IntConst(size)}
}

// NewBoundedCarrier returns a carrier whose size is a fresh control
// variable ranging over [1, bound].
func NewBoundedCarrier(name string, bound int) FiniteCarrier {
	return FiniteCarrier{bound: bound, sizeTerm: smt.FreshBoundedInt(name, 1, bound)}
}

// Bound returns the static upper bound on the carrier's size.
func (c FiniteCarrier) Bound() int { return c.bound }

// SizeTerm returns the (possibly symbolic) backend term for the carrier's
// current size.
func (c FiniteCarrier) SizeTerm() smt.Term { return c.sizeTerm }

// InCarrier returns x < size.
func (c FiniteCarrier) InCarrier(x smt.Term) smt.Term { return smt.Lt(x, c.sizeTerm) }

// FreshElement allocates a symbol over [0, bound-1]; InCarrier still gates
// membership against the (possibly smaller) current size.
func (c FiniteCarrier) FreshElement(name string) smt.Term {
	if c.bound == 0 {
		panic("fo: FreshElement on a zero-bound carrier")
	}
	return smt.FreshBoundedInt(name, 0, c.bound-1)
}

// UniversallyQuantify unrolls "forall x. in_carrier(x) -> body" into the
// conjunction over every concrete value x could take. Unrolling is the
// standing policy here: the backend has no native quantifier node, and
// every carrier's size is statically bounded.
func (c FiniteCarrier) UniversallyQuantify(bound smt.Term, body smt.Term) smt.Term {
	sym, ok := bound.AsSymbol()
	if !ok {
		panic("fo: UniversallyQuantify requires a bare symbol term")
	}
	parts := make([]smt.Term, c.bound)
	for i := 0; i < c.bound; i++ {
		parts[i] = smt.Implies(c.InCarrier(smt.IntConst(i)), smt.Substitute(body, sym, i))
	}
	return smt.And(parts...)
}

// ExistentiallyQuantify unrolls "exists x. in_carrier(x) /\ body".
func (c FiniteCarrier) ExistentiallyQuantify(bound smt.Term, body smt.Term) smt.Term {
	sym, ok := bound.AsSymbol()
	if !ok {
		panic("fo: ExistentiallyQuantify requires a bare symbol term")
	}
	parts := make([]smt.Term, c.bound)
	for i := 0; i < c.bound; i++ {
		parts[i] = smt.And(c.InCarrier(smt.IntConst(i)), smt.Substitute(body, sym, i))
	}
	return smt.Or(parts...)
}

// Structure interprets a Language: each sort gets a Carrier, each symbol a
// function/relation over carriers. Finite symbolic structures,
// materialized concrete structures, and counterexamples extracted from a
// solver model all implement the same interface.
type Structure interface {
	InterpretSort(sort Sort) Carrier
	InterpretFunction(symbol FunctionSymbol, args ...smt.Term) smt.Term
	InterpretRelation(symbol RelationSymbol, args ...smt.Term) smt.Term
}

// table holds the leaves of a tabulated n-ary function or relation over a
// fixed-bound carrier, selected by a nested backend ite-chain keyed on the
// argument terms (buildSelect). A hookless uninterpreted symbol is
// represented by allocating one leaf per possible input tuple: a fresh
// symbol for a structure still being searched over, or a known constant
// for a materialized/extracted structure. The façade has no native array
// sort, so the array is unrolled by hand, which is only tractable because
// every carrier here is small and bound-known.
type table struct {
	bound  int
	arity  int
	leaves []smt.Term
}

func newTable(bound, arity int, leaf func(tuple []int) smt.Term) table {
	n := 1
	for i := 0; i < arity; i++ {
		n *= bound
	}
	if arity == 0 {
		n = 1
	}
	leaves := make([]smt.Term, n)
	tuple := make([]int, arity)
	for i := range leaves {
		rem := i
		for j := arity - 1; j >= 0; j-- {
			tuple[j] = rem % bound
			rem /= bound
		}
		leaves[i] = leaf(append([]int(nil), tuple...))
	}
	return table{bound: bound, arity: arity, leaves: leaves}
}

// interpret selects the leaf addressed by args via a nested ite chain.
func (t table) interpret(args ...smt.Term) smt.Term {
	if len(args) != t.arity {
		panic(fmt.Sprintf("fo: table arity mismatch: want %d, got %d", t.arity, len(args)))
	}
	return buildSelect(args, t.leaves, t.bound)
}

func buildSelect(args []smt.Term, leaves []smt.Term, bound int) smt.Term {
	if len(args) == 0 {
		return leaves[0]
	}
	chunk := len(leaves) / bound
	result := buildSelect(args[1:], leaves[(bound-1)*chunk:bound*chunk], bound)
	for i := bound - 2; i >= 0; i-- {
		sub := buildSelect(args[1:], leaves[i*chunk:(i+1)*chunk], bound)
		result = smt.Ite(smt.Eq(args[0], smt.IntConst(i)), sub, result)
	}
	return result
}
