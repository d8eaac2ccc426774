// Package fo implements many-sorted first-order syntax, structures, and
// theories: signatures of sorts and function/relation symbols, an immutable
// term/formula algebra with capture-avoiding substitution, finite
// structures that interpret formulas as backend terms, and theories that
// bundle a language with axioms.
package fo

import (
	"fmt"

	"github.com/gitrdm/modalsynth/pkg/smt"
)

// Sort is a named atom that labels the universe a Term or Carrier ranges
// over. A Sort carries only its name: it has no backend sort hint or hook,
// and two sorts are the same sort iff their names match.
type Sort struct {
	Name string
}

// NewSort returns the sort named name.
func NewSort(name string) Sort { return Sort{Name: name} }

func (s Sort) String() string { return s.Name }

// Equal reports whether two sorts have the same name.
func (s Sort) Equal(other Sort) bool { return s.Name == other.Name }

// FunctionSymbol is a named function from a tuple of input sorts to an
// output sort. A non-nil Hook fixes the symbol's interpretation as a
// backend function in every structure; a nil Hook leaves it uninterpreted,
// with its meaning chosen by whichever Structure interprets it.
type FunctionSymbol struct {
	Name       string
	InputSorts []Sort
	OutputSort Sort
	Hook       func(args ...smt.Term) smt.Term
}

func (f FunctionSymbol) String() string { return f.Name }

// Arity returns the number of arguments f takes.
func (f FunctionSymbol) Arity() int { return len(f.InputSorts) }

// RelationSymbol is a named relation over a tuple of input sorts. A non-nil
// Hook fixes the relation's interpretation as a backend predicate in every
// structure.
type RelationSymbol struct {
	Name       string
	InputSorts []Sort
	Hook       func(args ...smt.Term) smt.Term
}

func (r RelationSymbol) String() string { return r.Name }

// Arity returns the number of arguments r takes.
func (r RelationSymbol) Arity() int { return len(r.InputSorts) }

// Language is a many-sorted signature: a fixed set of sorts, function
// symbols, and relation symbols.
type Language struct {
	Sorts           []Sort
	FunctionSymbols []FunctionSymbol
	RelationSymbols []RelationSymbol
}

// GetSort looks up a sort by name, returning ok=false if absent.
func (l Language) GetSort(name string) (Sort, bool) {
	for _, s := range l.Sorts {
		if s.Name == name {
			return s, true
		}
	}
	return Sort{}, false
}

// GetFunctionSymbol looks up a function symbol by name.
func (l Language) GetFunctionSymbol(name string) (FunctionSymbol, bool) {
	for _, f := range l.FunctionSymbols {
		if f.Name == name {
			return f, true
		}
	}
	return FunctionSymbol{}, false
}

// GetRelationSymbol looks up a relation symbol by name.
func (l Language) GetRelationSymbol(name string) (RelationSymbol, bool) {
	for _, r := range l.RelationSymbols {
		if r.Name == name {
			return r, true
		}
	}
	return RelationSymbol{}, false
}

// MaxFunctionArity returns the largest arity among l's function symbols, or
// 0 if there are none.
func (l Language) MaxFunctionArity() int {
	max := 0
	for _, f := range l.FunctionSymbols {
		if n := f.Arity(); n > max {
			max = n
		}
	}
	return max
}

// MaxRelationArity returns the largest arity among l's relation symbols, or
// 0 if there are none.
func (l Language) MaxRelationArity() int {
	max := 0
	for _, r := range l.RelationSymbols {
		if n := r.Arity(); n > max {
			max = n
		}
	}
	return max
}

// ErrSignatureMismatch reports that Language.Expand detected a duplicate
// sort or symbol name.
var ErrSignatureMismatch = fmt.Errorf("fo: signature mismatch")

// Expand returns the disjoint union of l and other, failing if any sort,
// function symbol, or relation symbol name collides between them.
func (l Language) Expand(other Language) (Language, error) {
	for _, s := range other.Sorts {
		if _, ok := l.GetSort(s.Name); ok {
			return Language{}, fmt.Errorf("%w: duplicate sort %q", ErrSignatureMismatch, s.Name)
		}
	}
	for _, f := range other.FunctionSymbols {
		if _, ok := l.GetFunctionSymbol(f.Name); ok {
			return Language{}, fmt.Errorf("%w: duplicate function symbol %q", ErrSignatureMismatch, f.Name)
		}
	}
	for _, r := range other.RelationSymbols {
		if _, ok := l.GetRelationSymbol(r.Name); ok {
			return Language{}, fmt.Errorf("%w: duplicate relation symbol %q", ErrSignatureMismatch, r.Name)
		}
	}
	return Language{
		Sorts:           append(append([]Sort(nil), l.Sorts...), other.Sorts...),
		FunctionSymbols: append(append([]FunctionSymbol(nil), l.FunctionSymbols...), other.FunctionSymbols...),
		RelationSymbols: append(append([]RelationSymbol(nil), l.RelationSymbols...), other.RelationSymbols...),
	}, nil
}
