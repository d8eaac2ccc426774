package fo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gitrdm/modalsynth/pkg/smt"
)

// Valuation maps free variables to the backend terms that interpret them.
type Valuation map[Variable]smt.Term

// with returns a copy of v extended with var bound to t.
func (v Valuation) with(variable Variable, t smt.Term) Valuation {
	out := make(Valuation, len(v)+1)
	for k, val := range v {
		out[k] = val
	}
	out[variable] = t
	return out
}

// Substitution maps variables to replacement terms.
type Substitution map[Variable]Term

// without returns a copy of sub with variable removed, used by quantifiers
// to avoid capturing their own bound variable.
func (sub Substitution) without(variable Variable) Substitution {
	out := make(Substitution, len(sub))
	for k, v := range sub {
		if k != variable {
			out[k] = v
		}
	}
	return out
}

// Term is either a Variable or an Application. Every concrete Term also
// satisfies template.Template[Term] trivially (Constraint is always ⊤ or a
// conjunction of its children's, FromModel returns itself, Equals is plain
// structural comparison), so a concrete Term can stand wherever a
// Template[Term] is expected. A TermTemplate binds its free variables to
// concrete Terms only, never to another template.
type Term interface {
	fmt.Stringer

	// Substitute performs capture-avoiding substitution.
	Substitute(sub Substitution) Term

	// FreeVariables returns the set of variables occurring free in the term.
	FreeVariables() map[Variable]bool

	// Interpret evaluates the term in structure under valuation, returning
	// a backend term for the element it denotes.
	Interpret(structure Structure, valuation Valuation) smt.Term

	// Constraint is always satisfiable for a concrete term: it exists only
	// so a concrete Term can stand in wherever a TermTemplate is expected.
	Constraint() smt.Term

	// FromModel returns the term itself: it is already concrete.
	FromModel(model smt.Model) Term

	// Equals is plain structural equality, lifted into a constant backend
	// term (concrete terms carry no solver variables to query a model for).
	Equals(value Term) smt.Term
}

// Variable is a named, sorted term leaf.
type Variable struct {
	Name string
	Sort Sort
}

// NewVariable returns a variable named name of the given sort.
func NewVariable(name string, sort Sort) Variable { return Variable{Name: name, Sort: sort} }

func (v Variable) String() string { return fmt.Sprintf("%s:%s", v.Name, v.Sort) }

// Substitute returns sub[v] if present, otherwise v itself.
func (v Variable) Substitute(sub Substitution) Term {
	if t, ok := sub[v]; ok {
		return t
	}
	return v
}

// FreeVariables returns {v}.
func (v Variable) FreeVariables() map[Variable]bool { return map[Variable]bool{v: true} }

// ErrUnboundVariable reports that Interpret found a free variable absent
// from the valuation.
var ErrUnboundVariable = fmt.Errorf("fo: unbound variable")

// Interpret looks v up in valuation, panicking if it is absent: an
// interpretation with a missing free variable is a programmer error, not a
// recoverable condition.
func (v Variable) Interpret(_ Structure, valuation Valuation) smt.Term {
	t, ok := valuation[v]
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrUnboundVariable, v))
	}
	return t
}

// Constraint is always ⊤: a bare variable is always well-formed.
func (v Variable) Constraint() smt.Term { return smt.True() }

// FromModel returns v itself.
func (v Variable) FromModel(smt.Model) Term { return v }

// Equals is true iff value is the same variable.
func (v Variable) Equals(value Term) smt.Term { return boolTerm(termsEqual(v, value)) }

// Application applies a function symbol to a tuple of argument terms.
type Application struct {
	Symbol    FunctionSymbol
	Arguments []Term
}

// NewApplication builds f(arguments...).
func NewApplication(f FunctionSymbol, arguments ...Term) Application {
	return Application{Symbol: f, Arguments: arguments}
}

func (a Application) String() string {
	if len(a.Arguments) == 0 {
		return a.Symbol.Name
	}
	parts := make([]string, len(a.Arguments))
	for i, arg := range a.Arguments {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", a.Symbol.Name, strings.Join(parts, ", "))
}

// Substitute threads substitution through every argument.
func (a Application) Substitute(sub Substitution) Term {
	args := make([]Term, len(a.Arguments))
	for i, arg := range a.Arguments {
		args[i] = arg.Substitute(sub)
	}
	return Application{Symbol: a.Symbol, Arguments: args}
}

// FreeVariables is the union of each argument's free variables.
func (a Application) FreeVariables() map[Variable]bool {
	out := map[Variable]bool{}
	for _, arg := range a.Arguments {
		for v := range arg.FreeVariables() {
			out[v] = true
		}
	}
	return out
}

// Interpret recurses on each argument and delegates to the structure's
// function interpretation.
func (a Application) Interpret(structure Structure, valuation Valuation) smt.Term {
	args := make([]smt.Term, len(a.Arguments))
	for i, arg := range a.Arguments {
		args[i] = arg.Interpret(structure, valuation)
	}
	return structure.InterpretFunction(a.Symbol, args...)
}

// Constraint is the conjunction of every argument's constraint.
func (a Application) Constraint() smt.Term {
	parts := make([]smt.Term, len(a.Arguments))
	for i, arg := range a.Arguments {
		parts[i] = arg.Constraint()
	}
	return smt.And(parts...)
}

// FromModel returns a itself.
func (a Application) FromModel(smt.Model) Term { return a }

// Equals is true iff value is an Application of the same symbol with
// pairwise-equal arguments.
func (a Application) Equals(value Term) smt.Term { return boolTerm(termsEqual(a, value)) }

func termsEqual(a, b Term) bool {
	switch a := a.(type) {
	case Variable:
		other, ok := b.(Variable)
		return ok && other == a
	case Application:
		other, ok := b.(Application)
		if !ok || other.Symbol.Name != a.Symbol.Name || len(other.Arguments) != len(a.Arguments) {
			return false
		}
		for i, arg := range a.Arguments {
			if !termsEqual(arg, other.Arguments[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func boolTerm(b bool) smt.Term {
	if b {
		return smt.True()
	}
	return smt.False()
}

// Formula is the many-sorted first-order formula algebra: Verum, Falsum,
// RelationApplication, the boolean connectives, and the two quantifiers.
type Formula interface {
	fmt.Stringer

	Substitute(sub Substitution) Formula
	FreeVariables() map[Variable]bool
	Interpret(structure Structure, valuation Valuation) smt.Term

	// Constraint, FromModel and Equals make every concrete Formula a
	// trivial template.Template[Formula], the same reasoning as Term above.
	Constraint() smt.Term
	FromModel(model smt.Model) Formula
	Equals(value Formula) smt.Term
}

// QuantifyAllFreeVariables closes f universally over every free variable,
// in a deterministic (name-sorted) order: the first name binds outermost.
func QuantifyAllFreeVariables(f Formula) Formula {
	free := f.FreeVariables()
	vars := make([]Variable, 0, len(free))
	for v := range free {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	result := f
	for i := len(vars) - 1; i >= 0; i-- {
		result = UniversalQuantification{Variable: vars[i], Body: result}
	}
	return result
}

// Verum is the constant ⊤.
type Verum struct{}

func (Verum) String() string                          { return "true" }
func (Verum) Substitute(Substitution) Formula         { return Verum{} }
func (Verum) FreeVariables() map[Variable]bool        { return map[Variable]bool{} }
func (Verum) Interpret(Structure, Valuation) smt.Term { return smt.True() }
func (Verum) Constraint() smt.Term                    { return smt.True() }
func (Verum) FromModel(smt.Model) Formula             { return Verum{} }
func (Verum) Equals(value Formula) smt.Term           { return boolTerm(formulasEqual(Verum{}, value)) }

// Falsum is the constant ⊥.
type Falsum struct{}

func (Falsum) String() string                          { return "false" }
func (Falsum) Substitute(Substitution) Formula         { return Falsum{} }
func (Falsum) FreeVariables() map[Variable]bool        { return map[Variable]bool{} }
func (Falsum) Interpret(Structure, Valuation) smt.Term { return smt.False() }
func (Falsum) Constraint() smt.Term                    { return smt.True() }
func (Falsum) FromModel(smt.Model) Formula             { return Falsum{} }
func (Falsum) Equals(value Formula) smt.Term           { return boolTerm(formulasEqual(Falsum{}, value)) }

// RelationApplication applies a relation symbol to a tuple of arguments.
type RelationApplication struct {
	Symbol    RelationSymbol
	Arguments []Term
}

// NewRelationApplication builds R(arguments...).
func NewRelationApplication(r RelationSymbol, arguments ...Term) RelationApplication {
	return RelationApplication{Symbol: r, Arguments: arguments}
}

func (r RelationApplication) String() string {
	parts := make([]string, len(r.Arguments))
	for i, arg := range r.Arguments {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", r.Symbol.Name, strings.Join(parts, ", "))
}

func (r RelationApplication) Substitute(sub Substitution) Formula {
	args := make([]Term, len(r.Arguments))
	for i, arg := range r.Arguments {
		args[i] = arg.Substitute(sub)
	}
	return RelationApplication{Symbol: r.Symbol, Arguments: args}
}

func (r RelationApplication) FreeVariables() map[Variable]bool {
	out := map[Variable]bool{}
	for _, arg := range r.Arguments {
		for v := range arg.FreeVariables() {
			out[v] = true
		}
	}
	return out
}

func (r RelationApplication) Interpret(structure Structure, valuation Valuation) smt.Term {
	args := make([]smt.Term, len(r.Arguments))
	for i, arg := range r.Arguments {
		args[i] = arg.Interpret(structure, valuation)
	}
	return structure.InterpretRelation(r.Symbol, args...)
}

// Constraint is the conjunction of every argument's constraint.
func (r RelationApplication) Constraint() smt.Term {
	parts := make([]smt.Term, len(r.Arguments))
	for i, arg := range r.Arguments {
		parts[i] = arg.Constraint()
	}
	return smt.And(parts...)
}

// FromModel returns r itself.
func (r RelationApplication) FromModel(smt.Model) Formula { return r }

// Equals is true iff value is a RelationApplication of the same symbol with
// pairwise-equal arguments.
func (r RelationApplication) Equals(value Formula) smt.Term { return boolTerm(formulasEqual(r, value)) }

// formulasEqual is plain structural equality over the concrete Formula
// algebra, used by every concrete Formula's Equals.
func formulasEqual(a, b Formula) bool {
	switch a := a.(type) {
	case Verum:
		_, ok := b.(Verum)
		return ok
	case Falsum:
		_, ok := b.(Falsum)
		return ok
	case RelationApplication:
		other, ok := b.(RelationApplication)
		if !ok || other.Symbol.Name != a.Symbol.Name || len(other.Arguments) != len(a.Arguments) {
			return false
		}
		for i, arg := range a.Arguments {
			if !termsEqual(arg, other.Arguments[i]) {
				return false
			}
		}
		return true
	case Conjunction:
		other, ok := b.(Conjunction)
		return ok && formulasEqual(a.Left, other.Left) && formulasEqual(a.Right, other.Right)
	case Disjunction:
		other, ok := b.(Disjunction)
		return ok && formulasEqual(a.Left, other.Left) && formulasEqual(a.Right, other.Right)
	case Negation:
		other, ok := b.(Negation)
		return ok && formulasEqual(a.Formula, other.Formula)
	case Implication:
		other, ok := b.(Implication)
		return ok && formulasEqual(a.Left, other.Left) && formulasEqual(a.Right, other.Right)
	case Equivalence:
		other, ok := b.(Equivalence)
		return ok && formulasEqual(a.Left, other.Left) && formulasEqual(a.Right, other.Right)
	case UniversalQuantification:
		other, ok := b.(UniversalQuantification)
		return ok && a.Variable == other.Variable && formulasEqual(a.Body, other.Body)
	case ExistentialQuantification:
		other, ok := b.(ExistentialQuantification)
		return ok && a.Variable == other.Variable && formulasEqual(a.Body, other.Body)
	default:
		return false
	}
}

// binary is the shared shape of Conjunction/Disjunction/Implication/Equivalence.
type binary struct {
	Left, Right Formula
}

func (b binary) FreeVariables() map[Variable]bool {
	out := map[Variable]bool{}
	for v := range b.Left.FreeVariables() {
		out[v] = true
	}
	for v := range b.Right.FreeVariables() {
		out[v] = true
	}
	return out
}

// Conjunction is left ∧ right.
type Conjunction struct{ binary }

// NewConjunction builds left ∧ right.
func NewConjunction(left, right Formula) Conjunction {
	return Conjunction{binary{Left: left, Right: right}}
}

func (c Conjunction) String() string { return fmt.Sprintf("(%s /\\ %s)", c.Left, c.Right) }
func (c Conjunction) Substitute(sub Substitution) Formula {
	return NewConjunction(c.Left.Substitute(sub), c.Right.Substitute(sub))
}
func (c Conjunction) Interpret(structure Structure, valuation Valuation) smt.Term {
	return smt.And(c.Left.Interpret(structure, valuation), c.Right.Interpret(structure, valuation))
}
func (c Conjunction) Constraint() smt.Term             { return smt.And(c.Left.Constraint(), c.Right.Constraint()) }
func (c Conjunction) FromModel(smt.Model) Formula      { return c }
func (c Conjunction) Equals(value Formula) smt.Term    { return boolTerm(formulasEqual(c, value)) }

// Disjunction is left ∨ right.
type Disjunction struct{ binary }

// NewDisjunction builds left ∨ right.
func NewDisjunction(left, right Formula) Disjunction {
	return Disjunction{binary{Left: left, Right: right}}
}

func (d Disjunction) String() string { return fmt.Sprintf("(%s \\/ %s)", d.Left, d.Right) }
func (d Disjunction) Substitute(sub Substitution) Formula {
	return NewDisjunction(d.Left.Substitute(sub), d.Right.Substitute(sub))
}
func (d Disjunction) Interpret(structure Structure, valuation Valuation) smt.Term {
	return smt.Or(d.Left.Interpret(structure, valuation), d.Right.Interpret(structure, valuation))
}
func (d Disjunction) Constraint() smt.Term          { return smt.And(d.Left.Constraint(), d.Right.Constraint()) }
func (d Disjunction) FromModel(smt.Model) Formula   { return d }
func (d Disjunction) Equals(value Formula) smt.Term { return boolTerm(formulasEqual(d, value)) }

// Negation is ¬formula.
type Negation struct{ Formula Formula }

// NewNegation builds ¬f.
func NewNegation(f Formula) Negation { return Negation{Formula: f} }

func (n Negation) String() string                  { return fmt.Sprintf("not %s", n.Formula) }
func (n Negation) Substitute(sub Substitution) Formula { return NewNegation(n.Formula.Substitute(sub)) }
func (n Negation) FreeVariables() map[Variable]bool { return n.Formula.FreeVariables() }
func (n Negation) Interpret(structure Structure, valuation Valuation) smt.Term {
	return smt.Not(n.Formula.Interpret(structure, valuation))
}
func (n Negation) Constraint() smt.Term          { return n.Formula.Constraint() }
func (n Negation) FromModel(smt.Model) Formula   { return n }
func (n Negation) Equals(value Formula) smt.Term { return boolTerm(formulasEqual(n, value)) }

// Implication is left -> right.
type Implication struct{ binary }

// NewImplication builds left -> right.
func NewImplication(left, right Formula) Implication {
	return Implication{binary{Left: left, Right: right}}
}

func (i Implication) String() string { return fmt.Sprintf("(%s -> %s)", i.Left, i.Right) }
func (i Implication) Substitute(sub Substitution) Formula {
	return NewImplication(i.Left.Substitute(sub), i.Right.Substitute(sub))
}
func (i Implication) Interpret(structure Structure, valuation Valuation) smt.Term {
	return smt.Implies(i.Left.Interpret(structure, valuation), i.Right.Interpret(structure, valuation))
}
func (i Implication) Constraint() smt.Term          { return smt.And(i.Left.Constraint(), i.Right.Constraint()) }
func (i Implication) FromModel(smt.Model) Formula   { return i }
func (i Implication) Equals(value Formula) smt.Term { return boolTerm(formulasEqual(i, value)) }

// Equivalence is left <-> right.
type Equivalence struct{ binary }

// NewEquivalence builds left <-> right.
func NewEquivalence(left, right Formula) Equivalence {
	return Equivalence{binary{Left: left, Right: right}}
}

func (e Equivalence) String() string { return fmt.Sprintf("(%s <-> %s)", e.Left, e.Right) }
func (e Equivalence) Substitute(sub Substitution) Formula {
	return NewEquivalence(e.Left.Substitute(sub), e.Right.Substitute(sub))
}
func (e Equivalence) Interpret(structure Structure, valuation Valuation) smt.Term {
	return smt.Iff(e.Left.Interpret(structure, valuation), e.Right.Interpret(structure, valuation))
}
func (e Equivalence) Constraint() smt.Term          { return smt.And(e.Left.Constraint(), e.Right.Constraint()) }
func (e Equivalence) FromModel(smt.Model) Formula   { return e }
func (e Equivalence) Equals(value Formula) smt.Term { return boolTerm(formulasEqual(e, value)) }

// UniversalQuantification is ∀variable. body.
type UniversalQuantification struct {
	Variable Variable
	Body     Formula
}

func (u UniversalQuantification) String() string {
	return fmt.Sprintf("(forall %s. %s)", u.Variable, u.Body)
}

// Substitute removes its own bound variable from sub before recursing, so
// substitution never captures.
func (u UniversalQuantification) Substitute(sub Substitution) Formula {
	return UniversalQuantification{Variable: u.Variable, Body: u.Body.Substitute(sub.without(u.Variable))}
}

func (u UniversalQuantification) FreeVariables() map[Variable]bool {
	out := u.Body.FreeVariables()
	delete(out, u.Variable)
	return out
}

// Interpret allocates a fresh backend symbol of the bound variable's sort's
// carrier, interprets the body with that symbol bound, and delegates
// closure to the carrier's UniversallyQuantify.
func (u UniversalQuantification) Interpret(structure Structure, valuation Valuation) smt.Term {
	carrier := structure.InterpretSort(u.Variable.Sort)
	fresh := carrier.FreshElement(u.Variable.Name)
	body := u.Body.Interpret(structure, valuation.with(u.Variable, fresh))
	return carrier.UniversallyQuantify(fresh, body)
}
func (u UniversalQuantification) Constraint() smt.Term          { return u.Body.Constraint() }
func (u UniversalQuantification) FromModel(smt.Model) Formula   { return u }
func (u UniversalQuantification) Equals(value Formula) smt.Term { return boolTerm(formulasEqual(u, value)) }

// ExistentialQuantification is ∃variable. body.
type ExistentialQuantification struct {
	Variable Variable
	Body     Formula
}

func (e ExistentialQuantification) String() string {
	return fmt.Sprintf("(exists %s. %s)", e.Variable, e.Body)
}

func (e ExistentialQuantification) Substitute(sub Substitution) Formula {
	return ExistentialQuantification{Variable: e.Variable, Body: e.Body.Substitute(sub.without(e.Variable))}
}

func (e ExistentialQuantification) FreeVariables() map[Variable]bool {
	out := e.Body.FreeVariables()
	delete(out, e.Variable)
	return out
}

func (e ExistentialQuantification) Interpret(structure Structure, valuation Valuation) smt.Term {
	carrier := structure.InterpretSort(e.Variable.Sort)
	fresh := carrier.FreshElement(e.Variable.Name)
	body := e.Body.Interpret(structure, valuation.with(e.Variable, fresh))
	return carrier.ExistentiallyQuantify(fresh, body)
}
func (e ExistentialQuantification) Constraint() smt.Term          { return e.Body.Constraint() }
func (e ExistentialQuantification) FromModel(smt.Model) Formula   { return e }
func (e ExistentialQuantification) Equals(value Formula) smt.Term { return boolTerm(formulasEqual(e, value)) }
