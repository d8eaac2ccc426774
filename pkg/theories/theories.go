// Package theories is a small built-in registry of named goal theories
// over a single world sort, an accessibility relation R, and a monadic
// proposition symbol P. Selecting among these by name is exactly what
// pkg/config.Experiment.GoalTheory does instead of parsing arbitrary
// first-order text.
package theories

import "github.com/gitrdm/modalsynth/pkg/fo"

// Frame bundles the language plumbing every named theory shares: the world
// sort, the accessibility relation, and the proposition relation a modal
// atom is valuated against.
type Frame struct {
	WorldSort     fo.Sort
	Accessibility fo.RelationSymbol
	Proposition   fo.RelationSymbol
}

// NewFrame builds the shared sort/relation symbols.
func NewFrame() Frame {
	world := fo.NewSort("W")
	return Frame{
		WorldSort:     world,
		Accessibility: fo.RelationSymbol{Name: "R", InputSorts: []fo.Sort{world, world}},
		Proposition:   fo.RelationSymbol{Name: "P", InputSorts: []fo.Sort{world}},
	}
}

func (f Frame) language() fo.Language {
	return fo.Language{
		Sorts:           []fo.Sort{f.WorldSort},
		RelationSymbols: []fo.RelationSymbol{f.Accessibility, f.Proposition},
	}
}

// Trivial is the theory with no axioms beyond the bare language: every
// finite structure over (W, R, P) models it.
func (f Frame) Trivial() fo.Theory { return fo.NewTheory(f.language()) }

func (f Frame) accessible(x, y fo.Term) fo.Formula {
	return fo.NewRelationApplication(f.Accessibility, x, y)
}

// Reflexive axiomatizes ∀x. R(x, x).
func (f Frame) Reflexive() fo.Theory {
	x := fo.NewVariable("x", f.WorldSort)
	axiom := fo.UniversalQuantification{Variable: x, Body: f.accessible(x, x)}
	return f.Trivial().ExtendAxioms(axiom)
}

// Transitive axiomatizes ∀x,y,z. R(x,y) ∧ R(y,z) → R(x,z).
func (f Frame) Transitive() fo.Theory {
	x, y, z := fo.NewVariable("x", f.WorldSort), fo.NewVariable("y", f.WorldSort), fo.NewVariable("z", f.WorldSort)
	body := fo.NewImplication(fo.NewConjunction(f.accessible(x, y), f.accessible(y, z)), f.accessible(x, z))
	axiom := closeForAll(body, x, y, z)
	return f.Trivial().ExtendAxioms(axiom)
}

// Symmetric axiomatizes ∀x,y. R(x,y) → R(y,x).
func (f Frame) Symmetric() fo.Theory {
	x, y := fo.NewVariable("x", f.WorldSort), fo.NewVariable("y", f.WorldSort)
	body := fo.NewImplication(f.accessible(x, y), f.accessible(y, x))
	axiom := closeForAll(body, x, y)
	return f.Trivial().ExtendAxioms(axiom)
}

// Euclidean axiomatizes ∀x,y,z. R(x,y) ∧ R(x,z) → R(y,z) ∧ R(z,y).
func (f Frame) Euclidean() fo.Theory {
	x, y, z := fo.NewVariable("x", f.WorldSort), fo.NewVariable("y", f.WorldSort), fo.NewVariable("z", f.WorldSort)
	antecedent := fo.NewConjunction(f.accessible(x, y), f.accessible(x, z))
	consequent := fo.NewConjunction(f.accessible(y, z), f.accessible(z, y))
	axiom := closeForAll(fo.NewImplication(antecedent, consequent), x, y, z)
	return f.Trivial().ExtendAxioms(axiom)
}

// RST axiomatizes reflexivity, symmetry, and transitivity as a single
// closed conjunction (one axiom, not three).
func (f Frame) RST() fo.Theory {
	x, y, z := fo.NewVariable("x", f.WorldSort), fo.NewVariable("y", f.WorldSort), fo.NewVariable("z", f.WorldSort)
	reflexive := f.accessible(x, x)
	symmetric := fo.NewImplication(f.accessible(x, y), f.accessible(y, x))
	transitive := fo.NewImplication(fo.NewConjunction(f.accessible(x, y), f.accessible(y, z)), f.accessible(x, z))
	body := fo.NewConjunction(reflexive, fo.NewConjunction(symmetric, transitive))
	axiom := closeForAll(body, x, y, z)
	return f.Trivial().ExtendAxioms(axiom)
}

// closeForAll wraps body in a UniversalQuantification for each variable, in
// reverse order so the first variable given binds outermost.
func closeForAll(body fo.Formula, vars ...fo.Variable) fo.Formula {
	for i := len(vars) - 1; i >= 0; i-- {
		body = fo.UniversalQuantification{Variable: vars[i], Body: body}
	}
	return body
}

// Name identifies one of this package's built-in theories.
type Name string

const (
	NameReflexive  Name = "reflexive"
	NameTransitive Name = "transitive"
	NameSymmetric  Name = "symmetric"
	NameEuclidean  Name = "euclidean"
	NameRST        Name = "rst"
)

// Lookup resolves name to its goal theory, built over a fresh Frame.
func Lookup(name Name) (fo.Theory, Frame, bool) {
	f := NewFrame()
	switch name {
	case NameReflexive:
		return f.Reflexive(), f, true
	case NameTransitive:
		return f.Transitive(), f, true
	case NameSymmetric:
		return f.Symmetric(), f, true
	case NameEuclidean:
		return f.Euclidean(), f, true
	case NameRST:
		return f.RST(), f, true
	default:
		return fo.Theory{}, Frame{}, false
	}
}

// Names lists every registered theory name, in a stable order.
func Names() []Name {
	return []Name{NameReflexive, NameTransitive, NameSymmetric, NameEuclidean, NameRST}
}
