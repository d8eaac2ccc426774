// Package template holds the syntax templates that let the driver search
// for a formula's shape and a structure's content in the same solver
// session. Every template here satisfies
// github.com/gitrdm/modalsynth/pkg/template's Template contract.
package template

import (
	"github.com/gitrdm/modalsynth/pkg/fo"
	"github.com/gitrdm/modalsynth/pkg/smt"
	tmpl "github.com/gitrdm/modalsynth/pkg/template"
)

// TermTemplate searches over every term of depth at most depth built from a
// fixed set of free variables and language's function symbols, optionally
// restricted to a single sort. A control variable (node) picks, at each
// level, either one of the free variables or one of the function symbols;
// below it, one TermTemplate per argument position of the widest function
// symbol in the language stands ready to be "null" (unused) or populated.
type TermTemplate struct {
	language     fo.Language
	freeVars     []fo.Variable
	depth        int
	sort         *fo.Sort
	node         *tmpl.BoundedIntegerVariable
	subterms     []*TermTemplate
	substitution map[fo.Variable]fo.Term
}

// NewTermTemplate builds a template for terms of depth at most depth over
// language, using freeVars as the pool of free-variable leaves. sort may be
// nil to allow any sort.
func NewTermTemplate(language fo.Language, freeVars []fo.Variable, depth int, sort *fo.Sort) *TermTemplate {
	substitution := make(map[fo.Variable]fo.Term, len(freeVars))
	for _, v := range freeVars {
		substitution[v] = v
	}
	t := &TermTemplate{
		language:     language,
		freeVars:     freeVars,
		depth:        depth,
		sort:         sort,
		node:         tmpl.NewBoundedIntegerVariable("term", 0, len(freeVars)+len(language.FunctionSymbols)),
		substitution: substitution,
	}
	if depth != 0 {
		arity := language.MaxFunctionArity()
		t.subterms = make([]*TermTemplate, arity)
		for i := range t.subterms {
			t.subterms[i] = NewTermTemplate(language, freeVars, depth-1, nil)
		}
	}
	return t
}

// FreeVariables is the union of free variables bound into the template's
// substitution, mirroring TermTemplate.get_free_variables.
func (t *TermTemplate) FreeVariables() map[fo.Variable]bool {
	out := map[fo.Variable]bool{}
	for _, v := range t.freeVars {
		for fv := range t.substitution[v].FreeVariables() {
			out[fv] = true
		}
	}
	return out
}

// Substitute returns a copy of t with sub applied to every free variable's
// current binding; the control variables (node, and transitively each
// subterm's node) are shared with the original, so Substitute only rebinds
// leaves, it does not reshape the search.
func (t *TermTemplate) Substitute(sub fo.Substitution) *TermTemplate {
	out := &TermTemplate{
		language: t.language,
		freeVars: t.freeVars,
		depth:    t.depth,
		sort:     t.sort,
		node:     t.node,
	}
	out.substitution = make(map[fo.Variable]fo.Term, len(t.substitution))
	for k, v := range t.substitution {
		out.substitution[k] = v.Substitute(sub)
	}
	out.subterms = make([]*TermTemplate, len(t.subterms))
	for i, s := range t.subterms {
		out.subterms[i] = s.Substitute(sub)
	}
	return out
}

// Constraint is satisfiable iff the template's control variables encode a
// well-formed term. If sort is nil, any sort will do.
func (t *TermTemplate) Constraint() smt.Term {
	if t.sort == nil {
		parts := make([]smt.Term, len(t.language.Sorts))
		for i, s := range t.language.Sorts {
			parts[i] = t.wellFormed(s)
		}
		return smt.Or(parts...)
	}
	return t.wellFormed(*t.sort)
}

func (t *TermTemplate) isNull() smt.Term {
	parts := []smt.Term{t.node.Equals(0)}
	for _, s := range t.subterms {
		parts = append(parts, s.isNull())
	}
	return smt.And(parts...)
}

func (t *TermTemplate) wellFormed(sort fo.Sort) smt.Term {
	constraint := smt.False()
	for nodeValue := 1; nodeValue <= len(t.freeVars)+len(t.language.FunctionSymbols); nodeValue++ {
		if nodeValue <= len(t.freeVars) {
			v := t.freeVars[nodeValue-1]
			if !v.Sort.Equal(sort) {
				continue
			}
			parts := []smt.Term{t.node.Equals(nodeValue), t.substitution[v].Constraint()}
			for _, s := range t.subterms {
				parts = append(parts, s.isNull())
			}
			constraint = smt.Or(constraint, smt.And(parts...))
			continue
		}
		symbol := t.language.FunctionSymbols[nodeValue-len(t.freeVars)-1]
		arity := symbol.Arity()
		if !symbol.OutputSort.Equal(sort) || (t.depth == 0 && arity != 0) {
			continue
		}
		parts := []smt.Term{t.node.Equals(nodeValue)}
		for i := 0; i < arity; i++ {
			parts = append(parts, t.subterms[i].wellFormed(symbol.InputSorts[i]))
		}
		for i := arity; i < len(t.subterms); i++ {
			parts = append(parts, t.subterms[i].isNull())
		}
		constraint = smt.Or(constraint, smt.And(parts...))
	}
	return smt.And(constraint, t.node.Constraint())
}

// FromModel decodes the concrete fo.Term the model's node assignments pick
// out.
func (t *TermTemplate) FromModel(model smt.Model) fo.Term {
	nodeValue := t.node.FromModel(model)
	if nodeValue == 0 {
		panic("template: TermTemplate.FromModel: unexpected null node")
	}
	if nodeValue <= len(t.freeVars) {
		return t.substitution[t.freeVars[nodeValue-1]].FromModel(model)
	}
	symbol := t.language.FunctionSymbols[nodeValue-len(t.freeVars)-1]
	arity := symbol.Arity()
	args := make([]fo.Term, arity)
	for i := 0; i < arity; i++ {
		args[i] = t.subterms[i].FromModel(model)
	}
	return fo.NewApplication(symbol, args...)
}

// Equals returns a term true in a model iff the template decodes to value.
func (t *TermTemplate) Equals(value fo.Term) smt.Term {
	constraint := smt.False()
	for nodeValue := 1; nodeValue <= len(t.freeVars)+len(t.language.FunctionSymbols); nodeValue++ {
		if nodeValue <= len(t.freeVars) {
			v := t.freeVars[nodeValue-1]
			constraint = smt.Or(constraint, smt.And(t.node.Equals(nodeValue), t.substitution[v].Equals(value)))
			continue
		}
		app, ok := value.(fo.Application)
		if !ok {
			continue
		}
		symbol := t.language.FunctionSymbols[nodeValue-len(t.freeVars)-1]
		arity := symbol.Arity()
		if app.Symbol.Name != symbol.Name || (t.depth == 0 && arity != 0) {
			continue
		}
		parts := []smt.Term{t.node.Equals(nodeValue)}
		for i := 0; i < arity; i++ {
			parts = append(parts, t.subterms[i].Equals(app.Arguments[i]))
		}
		constraint = smt.Or(constraint, smt.And(parts...))
	}
	return constraint
}

// Interpret interprets the template at its fixed sort, which must be
// non-nil.
func (t *TermTemplate) Interpret(structure fo.Structure, valuation fo.Valuation) smt.Term {
	if t.sort == nil {
		panic("template: TermTemplate.Interpret: no fixed sort")
	}
	return t.InterpretAsSort(*t.sort, structure, valuation)
}

// InterpretAsSort interprets the template as though its sort were sort,
// regardless of the sort it was constructed with — used by a parent
// template (AtomicFormulaTemplate, or another TermTemplate) that already
// knows which sort this subterm must have.
func (t *TermTemplate) InterpretAsSort(sort fo.Sort, structure fo.Structure, valuation fo.Valuation) smt.Term {
	carrier := structure.InterpretSort(sort)
	interp := carrier.FreshElement("term.interp")

	for nodeValue := 1; nodeValue <= len(t.freeVars)+len(t.language.FunctionSymbols); nodeValue++ {
		if nodeValue <= len(t.freeVars) {
			v := t.freeVars[nodeValue-1]
			if v.Sort.Equal(sort) {
				interp = smt.Ite(t.node.Equals(nodeValue), t.substitution[v].Interpret(structure, valuation), interp)
			}
			continue
		}
		symbol := t.language.FunctionSymbols[nodeValue-len(t.freeVars)-1]
		arity := symbol.Arity()
		if !symbol.OutputSort.Equal(sort) || (t.depth == 0 && arity != 0) {
			continue
		}
		args := make([]smt.Term, arity)
		for i := 0; i < arity; i++ {
			args[i] = t.subterms[i].InterpretAsSort(symbol.InputSorts[i], structure, valuation)
		}
		interp = smt.Ite(t.node.Equals(nodeValue), structure.InterpretFunction(symbol, args...), interp)
	}
	return interp
}
