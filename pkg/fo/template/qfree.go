package template

import (
	"github.com/gitrdm/modalsynth/pkg/fo"
	"github.com/gitrdm/modalsynth/pkg/smt"
	tmpl "github.com/gitrdm/modalsynth/pkg/template"
)

// quantifierFreeConstructor names the boolean connective a
// QuantifierFreeFormulaTemplate node value selects, along with its arity.
type quantifierFreeConstructor struct {
	name  string
	arity int
}

var quantifierFreeConstructors = map[int]quantifierFreeConstructor{
	2: {"and", 2},
	3: {"or", 2},
	4: {"not", 1},
	5: {"implies", 2},
	6: {"iff", 2},
}

// QuantifierFreeFormulaTemplate searches over quantifier-free formulas of
// connective depth at most formulaDepth, built from AtomicFormulaTemplate
// leaves of term depth termDepth.
type QuantifierFreeFormulaTemplate struct {
	language     fo.Language
	termDepth    int
	formulaDepth int
	node         *tmpl.BoundedIntegerVariable
	atom         *AtomicFormulaTemplate
	subformulas  []*QuantifierFreeFormulaTemplate
}

// NewQuantifierFreeFormulaTemplate builds a template for quantifier-free
// formulas over language, using freeVars as the pool of term leaves.
func NewQuantifierFreeFormulaTemplate(language fo.Language, freeVars []fo.Variable, termDepth, formulaDepth int, allowConstant bool) *QuantifierFreeFormulaTemplate {
	q := &QuantifierFreeFormulaTemplate{
		language:     language,
		termDepth:    termDepth,
		formulaDepth: formulaDepth,
		node:         tmpl.NewBoundedIntegerVariable("qfree", 0, 6),
		atom:         NewAtomicFormulaTemplate(language, freeVars, termDepth, allowConstant),
	}
	if formulaDepth != 0 {
		q.subformulas = []*QuantifierFreeFormulaTemplate{
			NewQuantifierFreeFormulaTemplate(language, freeVars, termDepth, formulaDepth-1, allowConstant),
			NewQuantifierFreeFormulaTemplate(language, freeVars, termDepth, formulaDepth-1, allowConstant),
		}
	}
	return q
}

// FreeVariables is the union of the atom's and every subformula's free
// variables.
func (q *QuantifierFreeFormulaTemplate) FreeVariables() map[fo.Variable]bool {
	out := q.atom.FreeVariables()
	for _, sub := range q.subformulas {
		for v := range sub.FreeVariables() {
			out[v] = true
		}
	}
	return out
}

// Substitute applies sub to the atom and every subformula; node stays
// shared.
func (q *QuantifierFreeFormulaTemplate) Substitute(sub fo.Substitution) *QuantifierFreeFormulaTemplate {
	out := &QuantifierFreeFormulaTemplate{
		language:     q.language,
		termDepth:    q.termDepth,
		formulaDepth: q.formulaDepth,
		node:         q.node,
		atom:         q.atom.Substitute(sub),
	}
	out.subformulas = make([]*QuantifierFreeFormulaTemplate, len(q.subformulas))
	for i, s := range q.subformulas {
		out.subformulas[i] = s.Substitute(sub)
	}
	return out
}

func (q *QuantifierFreeFormulaTemplate) isNull() smt.Term {
	parts := []smt.Term{q.node.Equals(0), q.atom.isNull()}
	for _, s := range q.subformulas {
		parts = append(parts, s.isNull())
	}
	return smt.And(parts...)
}

// Constraint is satisfiable iff the template's control variables encode a
// well-formed quantifier-free formula.
func (q *QuantifierFreeFormulaTemplate) Constraint() smt.Term {
	constraint := smt.False()
	for nodeValue := 0; nodeValue <= 6; nodeValue++ {
		switch {
		case nodeValue == 1:
			parts := []smt.Term{q.node.Equals(nodeValue), q.atom.Constraint()}
			for _, s := range q.subformulas {
				parts = append(parts, s.isNull())
			}
			constraint = smt.Or(constraint, smt.And(parts...))
		case nodeValue != 0 && q.formulaDepth != 0:
			ctor := quantifierFreeConstructors[nodeValue]
			parts := []smt.Term{q.node.Equals(nodeValue), q.atom.isNull()}
			for i := 0; i < ctor.arity; i++ {
				parts = append(parts, q.subformulas[i].Constraint())
			}
			for i := ctor.arity; i < len(q.subformulas); i++ {
				parts = append(parts, q.subformulas[i].isNull())
			}
			constraint = smt.Or(constraint, smt.And(parts...))
		}
	}
	return constraint
}

// FromModel decodes the concrete quantifier-free Formula the model's node
// assignments pick out.
func (q *QuantifierFreeFormulaTemplate) FromModel(model smt.Model) fo.Formula {
	nodeValue := q.node.FromModel(model)
	if nodeValue == 1 {
		return q.atom.FromModel(model)
	}
	switch nodeValue {
	case 2:
		return fo.NewConjunction(q.subformulas[0].FromModel(model), q.subformulas[1].FromModel(model))
	case 3:
		return fo.NewDisjunction(q.subformulas[0].FromModel(model), q.subformulas[1].FromModel(model))
	case 4:
		return fo.NewNegation(q.subformulas[0].FromModel(model))
	case 5:
		return fo.NewImplication(q.subformulas[0].FromModel(model), q.subformulas[1].FromModel(model))
	case 6:
		return fo.NewEquivalence(q.subformulas[0].FromModel(model), q.subformulas[1].FromModel(model))
	default:
		panic("template: QuantifierFreeFormulaTemplate.FromModel: null formula")
	}
}

// Equals returns a term true in a model iff the template decodes to value.
func (q *QuantifierFreeFormulaTemplate) Equals(value fo.Formula) smt.Term {
	switch value.(type) {
	case fo.Falsum, fo.Verum, fo.RelationApplication:
		return q.atom.Equals(value)
	}
	if q.formulaDepth == 0 {
		return smt.False()
	}
	switch v := value.(type) {
	case fo.Conjunction:
		return smt.And(q.node.Equals(2), q.subformulas[0].Equals(v.Left), q.subformulas[1].Equals(v.Right))
	case fo.Disjunction:
		return smt.And(q.node.Equals(3), q.subformulas[0].Equals(v.Left), q.subformulas[1].Equals(v.Right))
	case fo.Negation:
		return smt.And(q.node.Equals(4), q.subformulas[0].Equals(v.Formula))
	case fo.Implication:
		return smt.And(q.node.Equals(5), q.subformulas[0].Equals(v.Left), q.subformulas[1].Equals(v.Right))
	case fo.Equivalence:
		return smt.And(q.node.Equals(6), q.subformulas[0].Equals(v.Left), q.subformulas[1].Equals(v.Right))
	default:
		return smt.False()
	}
}

// Interpret interprets the selected quantifier-free formula in structure
// under valuation.
func (q *QuantifierFreeFormulaTemplate) Interpret(structure fo.Structure, valuation fo.Valuation) smt.Term {
	interp := smt.False()
	for nodeValue := 0; nodeValue <= 6; nodeValue++ {
		switch {
		case nodeValue == 1:
			interp = smt.Ite(q.node.Equals(nodeValue), q.atom.Interpret(structure, valuation), interp)
		case nodeValue != 0 && q.formulaDepth != 0:
			switch nodeValue {
			case 2:
				interp = smt.Ite(q.node.Equals(nodeValue), smt.And(q.subformulas[0].Interpret(structure, valuation), q.subformulas[1].Interpret(structure, valuation)), interp)
			case 3:
				interp = smt.Ite(q.node.Equals(nodeValue), smt.Or(q.subformulas[0].Interpret(structure, valuation), q.subformulas[1].Interpret(structure, valuation)), interp)
			case 4:
				interp = smt.Ite(q.node.Equals(nodeValue), smt.Not(q.subformulas[0].Interpret(structure, valuation)), interp)
			case 5:
				interp = smt.Ite(q.node.Equals(nodeValue), smt.Implies(q.subformulas[0].Interpret(structure, valuation), q.subformulas[1].Interpret(structure, valuation)), interp)
			case 6:
				interp = smt.Ite(q.node.Equals(nodeValue), smt.Iff(q.subformulas[0].Interpret(structure, valuation), q.subformulas[1].Interpret(structure, valuation)), interp)
			}
		}
	}
	return interp
}
