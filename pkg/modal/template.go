package modal

import (
	"github.com/gitrdm/modalsynth/pkg/smt"
	tmpl "github.com/gitrdm/modalsynth/pkg/template"
)

// modalConstructor names the modal connective a ModalFormulaTemplate node
// value beyond the atom/verum/falsum range selects, along with its arity.
type modalConstructor struct {
	build func(children []Formula) Formula
	arity int
}

// FormulaTemplate searches over modal formulas of modal/boolean nesting
// depth at most depth, built from a fixed pool of atoms. depth == 0
// restricts the template to atoms, Verum, and Falsum.
type FormulaTemplate struct {
	atoms        []string
	depth        int
	node         *tmpl.BoundedIntegerVariable
	subformulas  []*FormulaTemplate
	constructors map[int]modalConstructor
}

// NewFormulaTemplate builds a template over atoms (propositional letters)
// of modal depth at most depth.
func NewFormulaTemplate(atoms []string, depth int) *FormulaTemplate {
	constructors := map[int]modalConstructor{
		len(atoms) + 3: {arity: 2, build: func(c []Formula) Formula { return NewConjunction(c[0], c[1]) }},
		len(atoms) + 4: {arity: 2, build: func(c []Formula) Formula { return NewDisjunction(c[0], c[1]) }},
		len(atoms) + 5: {arity: 1, build: func(c []Formula) Formula { return NewNegation(c[0]) }},
		len(atoms) + 6: {arity: 2, build: func(c []Formula) Formula { return NewImplication(c[0], c[1]) }},
		len(atoms) + 7: {arity: 2, build: func(c []Formula) Formula { return NewEquivalence(c[0], c[1]) }},
		len(atoms) + 8: {arity: 1, build: func(c []Formula) Formula { return NewBox(c[0]) }},
		len(atoms) + 9: {arity: 1, build: func(c []Formula) Formula { return NewDiamond(c[0]) }},
	}
	f := &FormulaTemplate{
		atoms:        atoms,
		depth:        depth,
		node:         tmpl.NewBoundedIntegerVariable("modal", 0, len(atoms)+9),
		constructors: constructors,
	}
	if depth != 0 {
		f.subformulas = []*FormulaTemplate{
			NewFormulaTemplate(atoms, depth-1),
			NewFormulaTemplate(atoms, depth-1),
		}
	}
	return f
}

func (f *FormulaTemplate) isNull() smt.Term {
	parts := []smt.Term{f.node.Equals(0)}
	for _, s := range f.subformulas {
		parts = append(parts, s.isNull())
	}
	return smt.And(parts...)
}

// leafRange returns the last node value reserved for atoms/verum/falsum.
func (f *FormulaTemplate) leafRange() int { return len(f.atoms) + 2 }

// Constraint is satisfiable iff the template's control variables encode a
// well-formed modal formula.
func (f *FormulaTemplate) Constraint() smt.Term {
	constraint := smt.False()
	for nodeValue := 1; nodeValue <= f.leafRange(); nodeValue++ {
		parts := []smt.Term{f.node.Equals(nodeValue)}
		for _, s := range f.subformulas {
			parts = append(parts, s.isNull())
		}
		constraint = smt.Or(constraint, smt.And(parts...))
	}
	if f.depth != 0 {
		for nodeValue, ctor := range f.constructors {
			parts := []smt.Term{f.node.Equals(nodeValue)}
			for i := 0; i < ctor.arity; i++ {
				parts = append(parts, f.subformulas[i].Constraint())
			}
			for i := ctor.arity; i < len(f.subformulas); i++ {
				parts = append(parts, f.subformulas[i].isNull())
			}
			constraint = smt.Or(constraint, smt.And(parts...))
		}
	}
	return constraint
}

// FromModel decodes the concrete modal Formula the model's node
// assignments pick out.
func (f *FormulaTemplate) FromModel(model smt.Model) Formula {
	nodeValue := f.node.FromModel(model)
	switch {
	case nodeValue >= 1 && nodeValue <= len(f.atoms):
		return Atom{Name: f.atoms[nodeValue-1]}
	case nodeValue == len(f.atoms)+1:
		return Verum{}
	case nodeValue == len(f.atoms)+2:
		return Falsum{}
	case f.depth != 0:
		ctor := f.constructors[nodeValue]
		children := make([]Formula, ctor.arity)
		for i := 0; i < ctor.arity; i++ {
			children[i] = f.subformulas[i].FromModel(model)
		}
		return ctor.build(children)
	default:
		panic("modal: FormulaTemplate.FromModel: null formula")
	}
}

// Equals returns a term true in a model iff the template decodes to value.
func (f *FormulaTemplate) Equals(value Formula) smt.Term {
	switch v := value.(type) {
	case Atom:
		for i, name := range f.atoms {
			if name == v.Name {
				return f.node.Equals(i + 1)
			}
		}
		return smt.False()
	case Verum:
		return f.node.Equals(len(f.atoms) + 1)
	case Falsum:
		return f.node.Equals(len(f.atoms) + 2)
	}
	if f.depth == 0 {
		return smt.False()
	}
	switch v := value.(type) {
	case Conjunction:
		return smt.And(f.node.Equals(len(f.atoms)+3), f.subformulas[0].Equals(v.Left), f.subformulas[1].Equals(v.Right))
	case Disjunction:
		return smt.And(f.node.Equals(len(f.atoms)+4), f.subformulas[0].Equals(v.Left), f.subformulas[1].Equals(v.Right))
	case Negation:
		return smt.And(f.node.Equals(len(f.atoms)+5), f.subformulas[0].Equals(v.Formula))
	case Implication:
		return smt.And(f.node.Equals(len(f.atoms)+6), f.subformulas[0].Equals(v.Left), f.subformulas[1].Equals(v.Right))
	case Equivalence:
		return smt.And(f.node.Equals(len(f.atoms)+7), f.subformulas[0].Equals(v.Left), f.subformulas[1].Equals(v.Right))
	case Box:
		return smt.And(f.node.Equals(len(f.atoms)+8), f.subformulas[0].Equals(v.Inner))
	case Diamond:
		return smt.And(f.node.Equals(len(f.atoms)+9), f.subformulas[0].Equals(v.Inner))
	default:
		return smt.False()
	}
}

// Interpret interprets the selected modal formula at world under frame and
// valuation.
func (f *FormulaTemplate) Interpret(frame Frame, valuation Valuation, world smt.Term) smt.Term {
	interp := smt.False()
	for i, name := range f.atoms {
		interp = smt.Ite(f.node.Equals(i+1), valuation(name, world), interp)
	}
	interp = smt.Ite(f.node.Equals(len(f.atoms)+1), smt.True(), interp)
	interp = smt.Ite(f.node.Equals(len(f.atoms)+2), smt.False(), interp)

	if f.depth == 0 {
		return interp
	}

	conj := smt.And(f.subformulas[0].Interpret(frame, valuation, world), f.subformulas[1].Interpret(frame, valuation, world))
	interp = smt.Ite(f.node.Equals(len(f.atoms)+3), conj, interp)

	disj := smt.Or(f.subformulas[0].Interpret(frame, valuation, world), f.subformulas[1].Interpret(frame, valuation, world))
	interp = smt.Ite(f.node.Equals(len(f.atoms)+4), disj, interp)

	neg := smt.Not(f.subformulas[0].Interpret(frame, valuation, world))
	interp = smt.Ite(f.node.Equals(len(f.atoms)+5), neg, interp)

	impl := smt.Implies(f.subformulas[0].Interpret(frame, valuation, world), f.subformulas[1].Interpret(frame, valuation, world))
	interp = smt.Ite(f.node.Equals(len(f.atoms)+6), impl, interp)

	iff := smt.Iff(f.subformulas[0].Interpret(frame, valuation, world), f.subformulas[1].Interpret(frame, valuation, world))
	interp = smt.Ite(f.node.Equals(len(f.atoms)+7), iff, interp)

	successor := frame.Worlds().FreshElement("w")
	boxBody := smt.Implies(frame.Accessible(world, successor), f.subformulas[0].Interpret(frame, valuation, successor))
	box := frame.Worlds().UniversallyQuantify(successor, boxBody)
	interp = smt.Ite(f.node.Equals(len(f.atoms)+8), box, interp)

	successor2 := frame.Worlds().FreshElement("w")
	diamondBody := smt.And(frame.Accessible(world, successor2), f.subformulas[0].Interpret(frame, valuation, successor2))
	diamond := frame.Worlds().ExistentiallyQuantify(successor2, diamondBody)
	interp = smt.Ite(f.node.Equals(len(f.atoms)+9), diamond, interp)

	return interp
}

// InterpretOnAllWorlds returns the universal closure ∀w ∈ W. ⟦f⟧_w.
func (f *FormulaTemplate) InterpretOnAllWorlds(frame Frame, valuation Valuation) smt.Term {
	w := frame.Worlds().FreshElement("w")
	return frame.Worlds().UniversallyQuantify(w, f.Interpret(frame, valuation, w))
}
