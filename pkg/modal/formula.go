// Package modal implements the propositional modal-logic layer that sits
// on top of package fo: modal formulas, Kripke frames built from first-order
// structures, and a modal formula template usable inside the same
// counterexample-guided search loop as the FO syntax templates.
package modal

import "fmt"

// Atom is a nullary modal propositional letter, named by a string. Its
// truth at a world comes from a Valuation, not from any recursive
// structure.
type Atom struct {
	Name string
}

// Formula is the modal formula algebra: Atom, Verum, Falsum, the boolean
// connectives, and Box/Diamond. There are no binders — modal formulas quantify
// implicitly over worlds via Box/Diamond and interpret_on_all_worlds.
type Formula interface {
	fmt.Stringer
	freeAtoms(set map[string]bool)
}

func (a Atom) freeAtoms(set map[string]bool) { set[a.Name] = true }
func (Verum) freeAtoms(map[string]bool)      {}
func (Falsum) freeAtoms(map[string]bool)     {}

func (a Atom) String() string { return a.Name }

// Verum is the constant ⊤.
type Verum struct{}

func (Verum) String() string { return "true" }

// Falsum is the constant ⊥.
type Falsum struct{}

func (Falsum) String() string { return "false" }

// binary is the shared shape of Conjunction/Disjunction/Implication/Equivalence.
type binary struct{ Left, Right Formula }

func (b binary) freeAtoms(set map[string]bool) {
	b.Left.freeAtoms(set)
	b.Right.freeAtoms(set)
}

// Conjunction is left ∧ right.
type Conjunction struct{ binary }

// NewConjunction builds left ∧ right.
func NewConjunction(left, right Formula) Conjunction { return Conjunction{binary{left, right}} }
func (c Conjunction) String() string                 { return fmt.Sprintf("(%s /\\ %s)", c.Left, c.Right) }

// Disjunction is left ∨ right.
type Disjunction struct{ binary }

// NewDisjunction builds left ∨ right.
func NewDisjunction(left, right Formula) Disjunction { return Disjunction{binary{left, right}} }
func (d Disjunction) String() string                 { return fmt.Sprintf("(%s \\/ %s)", d.Left, d.Right) }

// Implication is left -> right.
type Implication struct{ binary }

// NewImplication builds left -> right.
func NewImplication(left, right Formula) Implication { return Implication{binary{left, right}} }
func (i Implication) String() string                 { return fmt.Sprintf("(%s -> %s)", i.Left, i.Right) }

// Equivalence is left <-> right.
type Equivalence struct{ binary }

// NewEquivalence builds left <-> right.
func NewEquivalence(left, right Formula) Equivalence { return Equivalence{binary{left, right}} }
func (e Equivalence) String() string                 { return fmt.Sprintf("(%s <-> %s)", e.Left, e.Right) }

// Negation is ¬formula.
type Negation struct{ Formula Formula }

// NewNegation builds ¬f.
func NewNegation(f Formula) Negation           { return Negation{Formula: f} }
func (n Negation) String() string              { return fmt.Sprintf("not %s", n.Formula) }
func (n Negation) freeAtoms(set map[string]bool) { n.Formula.freeAtoms(set) }

// Box is □inner: true at w iff inner is true at every R-successor of w.
type Box struct{ Inner Formula }

// NewBox builds □inner.
func NewBox(inner Formula) Box               { return Box{Inner: inner} }
func (b Box) String() string                 { return fmt.Sprintf("[] %s", b.Inner) }
func (b Box) freeAtoms(set map[string]bool)  { b.Inner.freeAtoms(set) }

// Diamond is ◇inner: true at w iff inner is true at some R-successor of w.
type Diamond struct{ Inner Formula }

// NewDiamond builds ◇inner.
func NewDiamond(inner Formula) Diamond          { return Diamond{Inner: inner} }
func (d Diamond) String() string                { return fmt.Sprintf("<> %s", d.Inner) }
func (d Diamond) freeAtoms(set map[string]bool) { d.Inner.freeAtoms(set) }

// Atoms returns the distinct atom names mentioned in f.
func Atoms(f Formula) []string {
	set := map[string]bool{}
	f.freeAtoms(set)
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	return out
}
