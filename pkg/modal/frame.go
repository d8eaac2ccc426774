package modal

import (
	"github.com/gitrdm/modalsynth/pkg/fo"
	"github.com/gitrdm/modalsynth/pkg/smt"
)

// Frame is a Kripke frame: a set of worlds plus a backend-level
// accessibility predicate between two world elements.
type Frame interface {
	// Worlds returns the carrier of worlds.
	Worlds() fo.Carrier

	// Accessible returns a backend predicate true iff w can see w2.
	Accessible(w, w2 smt.Term) smt.Term
}

// FOStructureFrame adapts a first-order Structure into a Frame by
// re-exposing a chosen sort's carrier as the world set and a chosen binary
// relation symbol as accessibility.
type FOStructureFrame struct {
	Structure    fo.Structure
	WorldSort    fo.Sort
	Accessibility fo.RelationSymbol
}

// NewFOStructureFrame builds a frame over structure's worldSort carrier,
// using accessibility as the R relation. accessibility must be a binary
// relation over (worldSort, worldSort).
func NewFOStructureFrame(structure fo.Structure, worldSort fo.Sort, accessibility fo.RelationSymbol) FOStructureFrame {
	return FOStructureFrame{Structure: structure, WorldSort: worldSort, Accessibility: accessibility}
}

// Worlds returns the world sort's carrier.
func (f FOStructureFrame) Worlds() fo.Carrier { return f.Structure.InterpretSort(f.WorldSort) }

// Accessible interprets the accessibility relation applied to (w, w2).
func (f FOStructureFrame) Accessible(w, w2 smt.Term) smt.Term {
	return f.Structure.InterpretRelation(f.Accessibility, w, w2)
}

// Valuation maps an atom name to its truth value at a given world.
type Valuation func(atom string, world smt.Term) smt.Term

// Interpret evaluates f at world w under frame and valuation.
func Interpret(f Formula, frame Frame, valuation Valuation, world smt.Term) smt.Term {
	switch f := f.(type) {
	case Atom:
		return valuation(f.Name, world)
	case Verum:
		return smt.True()
	case Falsum:
		return smt.False()
	case Conjunction:
		return smt.And(Interpret(f.Left, frame, valuation, world), Interpret(f.Right, frame, valuation, world))
	case Disjunction:
		return smt.Or(Interpret(f.Left, frame, valuation, world), Interpret(f.Right, frame, valuation, world))
	case Negation:
		return smt.Not(Interpret(f.Formula, frame, valuation, world))
	case Implication:
		return smt.Implies(Interpret(f.Left, frame, valuation, world), Interpret(f.Right, frame, valuation, world))
	case Equivalence:
		return smt.Iff(Interpret(f.Left, frame, valuation, world), Interpret(f.Right, frame, valuation, world))
	case Box:
		successor := frame.Worlds().FreshElement("w")
		body := smt.Implies(frame.Accessible(world, successor), Interpret(f.Inner, frame, valuation, successor))
		return frame.Worlds().UniversallyQuantify(successor, body)
	case Diamond:
		successor := frame.Worlds().FreshElement("w")
		body := smt.And(frame.Accessible(world, successor), Interpret(f.Inner, frame, valuation, successor))
		return frame.Worlds().ExistentiallyQuantify(successor, body)
	default:
		panic("modal: Interpret: unknown formula kind")
	}
}

// InterpretOnAllWorlds returns the universal closure ∀w ∈ W. ⟦f⟧_w.
func InterpretOnAllWorlds(f Formula, frame Frame, valuation Valuation) smt.Term {
	w := frame.Worlds().FreshElement("w")
	return frame.Worlds().UniversallyQuantify(w, Interpret(f, frame, valuation, w))
}
