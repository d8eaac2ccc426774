package fo

import (
	"fmt"

	"github.com/gitrdm/modalsynth/pkg/smt"
)

// FiniteFOModelTemplate is a symbolic finite structure template: a
// Structure whose carriers' sizes and whose hookless function/relation
// tables are all backed by fresh solver control variables, so a single
// solver session can search for both a formula AND a structure
// simultaneously.
type FiniteFOModelTemplate struct {
	theory    Theory
	language  Language
	sortBound map[string]int
	carriers  map[string]FiniteCarrier
	functions map[string]table
	relations map[string]table
}

// NewFiniteFOModelTemplate allocates one bounded-size carrier per sort in
// theory's language, sized by sortBound, and a table per hookless
// function/relation symbol (every table leaf is a fresh backend symbol of
// the symbol's output sort).
func NewFiniteFOModelTemplate(theory Theory, sortBound map[string]int) *FiniteFOModelTemplate {
	language := theory.Language
	carriers := make(map[string]FiniteCarrier, len(language.Sorts))
	for _, s := range language.Sorts {
		bound, ok := sortBound[s.Name]
		if !ok {
			panic(fmt.Sprintf("fo: NewFiniteFOModelTemplate: no bound given for sort %q", s.Name))
		}
		carriers[s.Name] = NewBoundedCarrier(fmt.Sprintf("size[%s]", s.Name), bound)
	}

	m := &FiniteFOModelTemplate{
		theory:    theory,
		language:  language,
		sortBound: sortBound,
		carriers:  carriers,
		functions: map[string]table{},
		relations: map[string]table{},
	}

	for _, f := range language.FunctionSymbols {
		if f.Hook != nil {
			continue
		}
		arity := f.Arity()
		bound := m.argBound(f.InputSorts)
		outBound := carriers[f.OutputSort.Name].Bound()
		seq := 0
		m.functions[f.Name] = newTable(bound, arity, func(tuple []int) smt.Term {
			seq++
			return smt.FreshBoundedInt(fmt.Sprintf("%s[%d]", f.Name, seq), 0, outBound-1)
		})
	}
	for _, r := range language.RelationSymbols {
		if r.Hook != nil {
			continue
		}
		arity := r.Arity()
		bound := m.argBound(r.InputSorts)
		seq := 0
		m.relations[r.Name] = newTable(bound, arity, func(tuple []int) smt.Term {
			seq++
			return smt.FreshBool(fmt.Sprintf("%s[%d]", r.Name, seq))
		})
	}
	return m
}

// argBound returns the single shared carrier bound a tabulated symbol's
// input tuple is indexed over. Every uninterpreted relation/function this
// module tabulates ranges over a single sort, so requiring a common bound
// keeps the table's flattening arithmetic simple; a genuinely multi-sorted
// tabulated symbol is a natural extension point, not implemented here.
func (m *FiniteFOModelTemplate) argBound(inputs []Sort) int {
	if len(inputs) == 0 {
		return 1
	}
	bound := m.carriers[inputs[0].Name].Bound()
	for _, s := range inputs[1:] {
		if m.carriers[s.Name].Bound() != bound {
			panic("fo: FiniteFOModelTemplate: tabulated symbol spans sorts with different carrier bounds")
		}
	}
	return bound
}

// InterpretSort returns s's symbolic carrier.
func (m *FiniteFOModelTemplate) InterpretSort(s Sort) Carrier { return m.carriers[s.Name] }

// InterpretFunction delegates to f's Hook if it has one, otherwise selects
// the matching leaf of f's fresh-symbol table.
func (m *FiniteFOModelTemplate) InterpretFunction(f FunctionSymbol, args ...smt.Term) smt.Term {
	if f.Hook != nil {
		return f.Hook(args...)
	}
	t, ok := m.functions[f.Name]
	if !ok {
		panic(fmt.Sprintf("fo: FiniteFOModelTemplate: unknown function symbol %q", f.Name))
	}
	return t.interpret(args...)
}

// InterpretRelation delegates to r's Hook if it has one, otherwise selects
// the matching leaf of r's fresh-symbol table.
func (m *FiniteFOModelTemplate) InterpretRelation(r RelationSymbol, args ...smt.Term) smt.Term {
	if r.Hook != nil {
		return r.Hook(args...)
	}
	t, ok := m.relations[r.Name]
	if !ok {
		panic(fmt.Sprintf("fo: FiniteFOModelTemplate: unknown relation symbol %q", r.Name))
	}
	return t.interpret(args...)
}

// Constraint requires every hookless function's output to lie inside its
// output sort's (possibly symbolic) carrier whenever the input tuple does,
// and every axiom of the template's theory to hold on the template itself.
// The remaining control variables need no side conditions: each is already
// constrained to a valid range by its bounded-integer or boolean domain,
// so unlike a syntax template, a structure template's "shape" is always
// valid.
func (m *FiniteFOModelTemplate) Constraint() smt.Term {
	var parts []smt.Term
	for _, f := range m.language.FunctionSymbols {
		if f.Hook != nil {
			continue
		}
		src := m.functions[f.Name]
		outSize := m.carriers[f.OutputSort.Name].SizeTerm()
		tuple := make([]int, src.arity)
		for i, leaf := range src.leaves {
			rem := i
			for j := src.arity - 1; j >= 0; j-- {
				tuple[j] = rem % src.bound
				rem /= src.bound
			}
			inCarrier := smt.True()
			for j, v := range tuple {
				sizeJ := m.carriers[f.InputSorts[j].Name].SizeTerm()
				inCarrier = smt.And(inCarrier, smt.Lt(smt.IntConst(v), sizeJ))
			}
			parts = append(parts, smt.Implies(inCarrier, smt.Lt(leaf, outSize)))
		}
	}
	parts = append(parts, m.theory.Holds(m))
	return smt.And(parts...)
}

// FromModel tabulates a ConcreteStructure out of model: each sort's current
// size and every hookless table's leaf values are read off, giving a
// structure that no longer depends on the search session that produced it.
func (m *FiniteFOModelTemplate) FromModel(model smt.Model) *ConcreteStructure {
	sizes := make(map[string]int, len(m.carriers))
	for name, c := range m.carriers {
		sizes[name] = modelValue(model, c.SizeTerm())
	}

	cs := NewConcreteStructure(m.language, sizes)

	for _, f := range m.language.FunctionSymbols {
		if f.Hook != nil {
			continue
		}
		src := m.functions[f.Name]
		cs.functions[f.Name] = newTable(src.bound, src.arity, func(tuple []int) smt.Term {
			leaf := src.leaves[flatten(tuple, src.bound)]
			return smt.IntConst(modelValue(model, leaf))
		})
	}
	for _, r := range m.language.RelationSymbols {
		if r.Hook != nil {
			continue
		}
		src := m.relations[r.Name]
		cs.relations[r.Name] = newTable(src.bound, src.arity, func(tuple []int) smt.Term {
			leaf := src.leaves[flatten(tuple, src.bound)]
			if modelValue(model, leaf) != 0 {
				return smt.True()
			}
			return smt.False()
		})
	}
	return cs
}

// modelValue reads a control symbol's value, defaulting to the low end of
// its domain when the model leaves it unassigned (the symbol reached no
// checked assertion, so any in-domain value satisfies the solver).
func modelValue(model smt.Model, t smt.Term) int {
	sym, ok := t.AsSymbol()
	if !ok {
		panic("fo: modelValue requires a bare symbol term")
	}
	if v, ok := model.Lookup(sym); ok {
		return v
	}
	lo, _ := sym.Bounds()
	return lo
}

// Equals returns a term true in a model iff this template decodes to a
// structure isomorphic-by-construction to value (same sizes, same table
// values at every position).
func (m *FiniteFOModelTemplate) Equals(value *ConcreteStructure) smt.Term {
	parts := []smt.Term{}
	for name, c := range m.carriers {
		parts = append(parts, smt.Eq(c.SizeTerm(), smt.IntConst(value.sizes[name])))
	}
	for _, f := range m.language.FunctionSymbols {
		if f.Hook != nil {
			continue
		}
		src := m.functions[f.Name]
		want := value.functions[f.Name]
		for i, leaf := range src.leaves {
			parts = append(parts, smt.Eq(leaf, want.leaves[i]))
		}
	}
	for _, r := range m.language.RelationSymbols {
		if r.Hook != nil {
			continue
		}
		src := m.relations[r.Name]
		want := value.relations[r.Name]
		for i, leaf := range src.leaves {
			parts = append(parts, smt.Iff(leaf, want.leaves[i]))
		}
	}
	return smt.And(parts...)
}

// GetFreeFiniteRelation allocates a fresh, free-standing (not part of any
// theory's language) relation table over the given sorts, plus the raw
// backend boolean symbols backing its truth table. The caller universally
// quantifies over every possible interpretation of the relation by
// enumerating all 0/1 assignments to these symbols
// (smt.ForAllBoolAssignments): the same finite-unrolling policy used
// everywhere else in this module, just applied to a relation's whole truth
// table instead of a single carrier element. Used by the completeness
// check's complement-theory construction (driver.checkComplete).
func (m *FiniteFOModelTemplate) GetFreeFiniteRelation(name string, sorts ...Sort) (RelationSymbol, []*smt.Symbol) {
	r := RelationSymbol{Name: name, InputSorts: append([]Sort(nil), sorts...)}
	bound := m.argBound(sorts)
	seq := 0
	t := newTable(bound, r.Arity(), func(tuple []int) smt.Term {
		seq++
		return smt.FreshBool(fmt.Sprintf("%s[%d]", name, seq))
	})
	m.relations[r.Name] = t
	syms := make([]*smt.Symbol, len(t.leaves))
	for i, leaf := range t.leaves {
		sym, ok := leaf.AsSymbol()
		if !ok {
			panic("fo: GetFreeFiniteRelation: table leaf is not a bare symbol")
		}
		syms[i] = sym
	}
	return r, syms
}

func flatten(tuple []int, bound int) int {
	idx := 0
	for _, v := range tuple {
		idx = idx*bound + v
	}
	return idx
}

// ConcreteStructure is a fully tabulated, solver-independent Structure:
// every sort has a fixed size and every hookless function/relation symbol
// has a fixed truth/value table (the counterexample flavor extracted by
// driver.Synthesize's model-finding loop is one of these). It implements
// Structure exactly like FiniteFOModelTemplate does, by building the same
// nested-ite selection term, just over constant leaves instead of fresh
// ones — which is what lets a counterexample be re-interpreted into a
// brand-new backend session.
type ConcreteStructure struct {
	language  Language
	sizes     map[string]int
	carriers  map[string]FiniteCarrier
	functions map[string]table
	relations map[string]table
}

// NewConcreteStructure builds an (initially empty-tabled) concrete
// structure of the given per-sort sizes; callers fill in functions/
// relations afterward (FromModel does this, and driver tests that build a
// structure by hand can do the same via SetFunction/SetRelation).
func NewConcreteStructure(language Language, sizes map[string]int) *ConcreteStructure {
	carriers := make(map[string]FiniteCarrier, len(language.Sorts))
	for _, s := range language.Sorts {
		carriers[s.Name] = NewFixedCarrier(sizes[s.Name])
	}
	return &ConcreteStructure{
		language:  language,
		sizes:     sizes,
		carriers:  carriers,
		functions: map[string]table{},
		relations: map[string]table{},
	}
}

// SetRelation fixes r's truth table via membership, which is asked to
// classify every tuple of r's arity over its input sorts' current sizes.
func (c *ConcreteStructure) SetRelation(r RelationSymbol, membership func(tuple []int) bool) {
	bound := c.sortBoundOf(r.InputSorts)
	c.relations[r.Name] = newTable(bound, r.Arity(), func(tuple []int) smt.Term {
		if membership(tuple) {
			return smt.True()
		}
		return smt.False()
	})
}

// SetFunction fixes f's value table via value.
func (c *ConcreteStructure) SetFunction(f FunctionSymbol, value func(tuple []int) int) {
	bound := c.sortBoundOf(f.InputSorts)
	c.functions[f.Name] = newTable(bound, f.Arity(), func(tuple []int) smt.Term {
		return smt.IntConst(value(tuple))
	})
}

func (c *ConcreteStructure) sortBoundOf(inputs []Sort) int {
	if len(inputs) == 0 {
		return 1
	}
	return c.sizes[inputs[0].Name]
}

// Size returns the current cardinality of sort.
func (c *ConcreteStructure) Size(sort Sort) int { return c.sizes[sort.Name] }

// InterpretSort returns sort's fixed-size carrier.
func (c *ConcreteStructure) InterpretSort(sort Sort) Carrier { return c.carriers[sort.Name] }

// InterpretFunction delegates to f's Hook, or selects the matching leaf of
// f's constant-valued table.
func (c *ConcreteStructure) InterpretFunction(f FunctionSymbol, args ...smt.Term) smt.Term {
	if f.Hook != nil {
		return f.Hook(args...)
	}
	t, ok := c.functions[f.Name]
	if !ok {
		panic(fmt.Sprintf("fo: ConcreteStructure: unset function symbol %q", f.Name))
	}
	return t.interpret(args...)
}

// InterpretRelation delegates to r's Hook, or selects the matching leaf of
// r's constant-valued table.
func (c *ConcreteStructure) InterpretRelation(r RelationSymbol, args ...smt.Term) smt.Term {
	if r.Hook != nil {
		return r.Hook(args...)
	}
	t, ok := c.relations[r.Name]
	if !ok {
		panic(fmt.Sprintf("fo: ConcreteStructure: unset relation symbol %q", r.Name))
	}
	return t.interpret(args...)
}
