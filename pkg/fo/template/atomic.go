package template

import (
	"github.com/gitrdm/modalsynth/pkg/fo"
	"github.com/gitrdm/modalsynth/pkg/smt"
	tmpl "github.com/gitrdm/modalsynth/pkg/template"
)

// AtomicFormulaTemplate searches over ⊥, ⊤ (if allowConstant), and every
// application of a relation symbol in language to terms of depth at most
// termDepth.
type AtomicFormulaTemplate struct {
	language      fo.Language
	termDepth     int
	allowConstant bool
	node          *tmpl.BoundedIntegerVariable
	subterms      []*TermTemplate
}

// NewAtomicFormulaTemplate builds an atomic-formula template over language,
// using freeVars as the pool of term leaves.
func NewAtomicFormulaTemplate(language fo.Language, freeVars []fo.Variable, termDepth int, allowConstant bool) *AtomicFormulaTemplate {
	a := &AtomicFormulaTemplate{
		language:      language,
		termDepth:     termDepth,
		allowConstant: allowConstant,
		node:          tmpl.NewBoundedIntegerVariable("atom", 0, 2+len(language.RelationSymbols)),
	}
	arity := language.MaxRelationArity()
	a.subterms = make([]*TermTemplate, arity)
	for i := range a.subterms {
		a.subterms[i] = NewTermTemplate(language, freeVars, termDepth, nil)
	}
	return a
}

// FreeVariables is the union of free variables across the template's
// argument subterms.
func (a *AtomicFormulaTemplate) FreeVariables() map[fo.Variable]bool {
	out := map[fo.Variable]bool{}
	for _, s := range a.subterms {
		for v := range s.FreeVariables() {
			out[v] = true
		}
	}
	return out
}

// Substitute applies sub to every argument subterm; node stays shared.
func (a *AtomicFormulaTemplate) Substitute(sub fo.Substitution) *AtomicFormulaTemplate {
	out := &AtomicFormulaTemplate{
		language:      a.language,
		termDepth:     a.termDepth,
		allowConstant: a.allowConstant,
		node:          a.node,
	}
	out.subterms = make([]*TermTemplate, len(a.subterms))
	for i, s := range a.subterms {
		out.subterms[i] = s.Substitute(sub)
	}
	return out
}

func (a *AtomicFormulaTemplate) isNull() smt.Term {
	parts := []smt.Term{a.node.Equals(0)}
	for _, s := range a.subterms {
		parts = append(parts, s.isNull())
	}
	return smt.And(parts...)
}

// Constraint is satisfiable iff the template's control variables encode a
// well-formed atomic formula.
func (a *AtomicFormulaTemplate) Constraint() smt.Term {
	constraint := smt.False()
	for nodeValue := 1; nodeValue < 3+len(a.language.RelationSymbols); nodeValue++ {
		if nodeValue == 1 || nodeValue == 2 {
			if !a.allowConstant {
				continue
			}
			parts := []smt.Term{a.node.Equals(nodeValue)}
			for _, s := range a.subterms {
				parts = append(parts, s.isNull())
			}
			constraint = smt.Or(constraint, smt.And(parts...))
			continue
		}
		symbol := a.language.RelationSymbols[nodeValue-3]
		arity := symbol.Arity()
		parts := []smt.Term{a.node.Equals(nodeValue)}
		for i := 0; i < arity; i++ {
			parts = append(parts, a.subterms[i].wellFormed(symbol.InputSorts[i]))
		}
		for i := arity; i < len(a.subterms); i++ {
			parts = append(parts, a.subterms[i].isNull())
		}
		constraint = smt.Or(constraint, smt.And(parts...))
	}
	return constraint
}

// FromModel decodes the concrete Falsum, Verum, or RelationApplication the
// model's node assignment picks out.
func (a *AtomicFormulaTemplate) FromModel(model smt.Model) fo.Formula {
	nodeValue := a.node.FromModel(model)
	switch nodeValue {
	case 1:
		return fo.Falsum{}
	case 2:
		return fo.Verum{}
	default:
		symbol := a.language.RelationSymbols[nodeValue-3]
		arity := symbol.Arity()
		args := make([]fo.Term, arity)
		for i := 0; i < arity; i++ {
			args[i] = a.subterms[i].FromModel(model)
		}
		return fo.NewRelationApplication(symbol, args...)
	}
}

// Equals returns a term true in a model iff the template decodes to value.
func (a *AtomicFormulaTemplate) Equals(value fo.Formula) smt.Term {
	switch value.(type) {
	case fo.Falsum:
		return a.node.Equals(1)
	case fo.Verum:
		return a.node.Equals(2)
	}
	app, ok := value.(fo.RelationApplication)
	if !ok {
		return smt.False()
	}
	for idx, symbol := range a.language.RelationSymbols {
		if symbol.Name != app.Symbol.Name {
			continue
		}
		arity := symbol.Arity()
		parts := []smt.Term{a.node.Equals(idx + 3)}
		for i := 0; i < arity; i++ {
			parts = append(parts, a.subterms[i].Equals(app.Arguments[i]))
		}
		return smt.And(parts...)
	}
	return smt.False()
}

// Interpret interprets the selected atomic formula in structure under
// valuation.
func (a *AtomicFormulaTemplate) Interpret(structure fo.Structure, valuation fo.Valuation) smt.Term {
	interp := smt.False()
	for nodeValue := 1; nodeValue < 3+len(a.language.RelationSymbols); nodeValue++ {
		switch nodeValue {
		case 1:
			interp = smt.Ite(a.node.Equals(nodeValue), smt.False(), interp)
		case 2:
			interp = smt.Ite(a.node.Equals(nodeValue), smt.True(), interp)
		default:
			symbol := a.language.RelationSymbols[nodeValue-3]
			arity := symbol.Arity()
			args := make([]smt.Term, arity)
			for i := 0; i < arity; i++ {
				args[i] = a.subterms[i].InterpretAsSort(symbol.InputSorts[i], structure, valuation)
			}
			interp = smt.Ite(a.node.Equals(nodeValue), structure.InterpretRelation(symbol, args...), interp)
		}
	}
	return interp
}
