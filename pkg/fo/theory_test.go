package fo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTheoryExtendAxioms(t *testing.T) {
	lang := testLanguage()
	theory := NewTheory(lang)
	require.Empty(t, theory.Axioms)

	extended := theory.ExtendAxioms(reflexivityAxiom(lang))
	require.Len(t, extended.Axioms, 1)
	require.Empty(t, theory.Axioms, "the receiver is unchanged")
}

func TestTheoryExtend(t *testing.T) {
	lang := testLanguage()
	theory := NewTheory(lang).ExtendAxioms(reflexivityAxiom(lang))

	v := NewSort("V")
	q := RelationSymbol{Name: "Q", InputSorts: []Sort{v}}
	other := NewTheory(Language{Sorts: []Sort{v}, RelationSymbols: []RelationSymbol{q}})
	other = other.ExtendAxioms(ExistentialQuantification{
		Variable: NewVariable("v", v),
		Body:     NewRelationApplication(q, NewVariable("v", v)),
	})

	merged, err := theory.Extend(other)
	require.NoError(t, err)
	require.Len(t, merged.Axioms, 2)
	_, ok := merged.Language.GetRelationSymbol("Q")
	require.True(t, ok)

	// Colliding languages refuse to merge.
	_, err = theory.Extend(theory)
	require.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestTheoryHolds(t *testing.T) {
	lang := testLanguage()
	w, _ := lang.GetSort("W")
	r, _ := lang.GetRelationSymbol("R")
	x := NewVariable("x", w)
	y := NewVariable("y", w)

	hasSuccessor := UniversalQuantification{
		Variable: x,
		Body:     ExistentialQuantification{Variable: y, Body: NewRelationApplication(r, x, y)},
	}

	cs := testStructure()
	mustHold(t, NewTheory(lang).ExtendAxioms(hasSuccessor).Holds(cs))
	mustFail(t, NewTheory(lang).ExtendAxioms(reflexivityAxiom(lang)).Holds(cs))
	// The empty theory holds everywhere.
	mustHold(t, NewTheory(lang).Holds(cs))
}
