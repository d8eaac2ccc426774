package modal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/modalsynth/pkg/fo"
	"github.com/gitrdm/modalsynth/pkg/smt"
)

func kripkeLanguage() (fo.Language, fo.Sort, fo.RelationSymbol, fo.RelationSymbol) {
	w := fo.NewSort("W")
	r := fo.RelationSymbol{Name: "R", InputSorts: []fo.Sort{w, w}}
	p := fo.RelationSymbol{Name: "P", InputSorts: []fo.Sort{w}}
	lang := fo.Language{Sorts: []fo.Sort{w}, RelationSymbols: []fo.RelationSymbol{r, p}}
	return lang, w, r, p
}

// chainFrame is a two-world frame with a single edge 0 -> 1 and p true
// exactly at world 1.
func chainFrame(t *testing.T) (FOStructureFrame, Valuation) {
	t.Helper()
	lang, w, r, p := kripkeLanguage()
	cs := fo.NewConcreteStructure(lang, map[string]int{"W": 2})
	cs.SetRelation(r, func(tuple []int) bool { return tuple[0] == 0 && tuple[1] == 1 })
	cs.SetRelation(p, func(tuple []int) bool { return tuple[0] == 1 })

	frame := NewFOStructureFrame(cs, w, r)
	valuation := func(_ string, world smt.Term) smt.Term {
		return cs.InterpretRelation(p, world)
	}
	return frame, valuation
}

func mustHold(t *testing.T, term smt.Term) {
	t.Helper()
	s := smt.NewSession()
	s.Assert(smt.Not(term))
	ok, err := s.Check(context.Background())
	require.NoError(t, err)
	require.False(t, ok, "expected %s to hold", term)
}

func mustFail(t *testing.T, term smt.Term) {
	t.Helper()
	s := smt.NewSession()
	s.Assert(term)
	ok, err := s.Check(context.Background())
	require.NoError(t, err)
	require.False(t, ok, "expected %s to fail", term)
}

func TestInterpretAtWorld(t *testing.T) {
	frame, valuation := chainFrame(t)
	p := Atom{Name: "p"}

	at := func(f Formula, world int) smt.Term {
		return Interpret(f, frame, valuation, smt.IntConst(world))
	}

	mustFail(t, at(p, 0))
	mustHold(t, at(p, 1))
	mustHold(t, at(Verum{}, 0))
	mustFail(t, at(Falsum{}, 0))
	mustHold(t, at(NewNegation(p), 0))
	mustHold(t, at(NewDisjunction(p, NewNegation(p)), 0))
	mustFail(t, at(NewConjunction(p, NewNegation(p)), 1))
	mustHold(t, at(NewImplication(p, p), 0))
	mustHold(t, at(NewEquivalence(p, p), 1))

	// World 0 sees only world 1, where p holds.
	mustHold(t, at(NewBox(p), 0))
	mustHold(t, at(NewDiamond(p), 0))

	// World 1 is a dead end: Box holds vacuously, Diamond fails.
	mustHold(t, at(NewBox(p), 1))
	mustHold(t, at(NewBox(Falsum{}), 1))
	mustFail(t, at(NewDiamond(Verum{}), 1))
}

func TestInterpretOnAllWorlds(t *testing.T) {
	frame, valuation := chainFrame(t)
	p := Atom{Name: "p"}

	// Box(p) holds at both worlds; p itself fails at world 0.
	mustHold(t, InterpretOnAllWorlds(NewBox(p), frame, valuation))
	mustFail(t, InterpretOnAllWorlds(p, frame, valuation))
	mustHold(t, InterpretOnAllWorlds(NewImplication(NewDiamond(Verum{}), NewBox(p)), frame, valuation))
}

// The modal interpretation agrees with the standard first-order
// translation: T(Box ψ, w) = forall w'. R(w,w') -> T(ψ, w'), dually for
// Diamond, with atoms reading the proposition relation.
func TestModalFirstOrderBridge(t *testing.T) {
	lang, w, r, p := kripkeLanguage()
	cs := fo.NewConcreteStructure(lang, map[string]int{"W": 3})
	cs.SetRelation(r, func(tuple []int) bool { return tuple[1] == (tuple[0]+1)%3 })
	cs.SetRelation(p, func(tuple []int) bool { return tuple[0] != 2 })

	frame := NewFOStructureFrame(cs, w, r)
	valuation := func(_ string, world smt.Term) smt.Term {
		return cs.InterpretRelation(p, world)
	}

	x := fo.NewVariable("x", w)
	y := fo.NewVariable("y", w)

	atom := Atom{Name: "p"}
	cases := []struct {
		modal Formula
		fo    fo.Formula
	}{
		{
			// Box p at x: forall y. R(x,y) -> P(y).
			NewBox(atom),
			fo.UniversalQuantification{Variable: y, Body: fo.NewImplication(
				fo.NewRelationApplication(r, x, y),
				fo.NewRelationApplication(p, y),
			)},
		},
		{
			// Diamond p at x: exists y. R(x,y) and P(y).
			NewDiamond(atom),
			fo.ExistentialQuantification{Variable: y, Body: fo.NewConjunction(
				fo.NewRelationApplication(r, x, y),
				fo.NewRelationApplication(p, y),
			)},
		},
		{
			// Box p -> p at x.
			NewImplication(NewBox(atom), atom),
			fo.NewImplication(
				fo.UniversalQuantification{Variable: y, Body: fo.NewImplication(
					fo.NewRelationApplication(r, x, y),
					fo.NewRelationApplication(p, y),
				)},
				fo.NewRelationApplication(p, x),
			),
		},
	}

	for _, tc := range cases {
		closed := fo.UniversalQuantification{Variable: x, Body: tc.fo}
		mustHold(t, smt.Iff(
			InterpretOnAllWorlds(tc.modal, frame, valuation),
			closed.Interpret(cs, fo.Valuation{}),
		))
	}
}

func TestFrameAccessibility(t *testing.T) {
	frame, _ := chainFrame(t)
	mustHold(t, frame.Accessible(smt.IntConst(0), smt.IntConst(1)))
	mustFail(t, frame.Accessible(smt.IntConst(1), smt.IntConst(0)))
	require.Equal(t, 2, frame.Worlds().Bound())
}
