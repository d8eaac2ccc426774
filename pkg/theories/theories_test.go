package theories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/modalsynth/pkg/fo"
	"github.com/gitrdm/modalsynth/pkg/smt"
)

// structureWithR tabulates a three-world structure whose accessibility is
// given by edges.
func structureWithR(fr Frame, edges map[[2]int]bool) *fo.ConcreteStructure {
	cs := fo.NewConcreteStructure(fr.Trivial().Language, map[string]int{fr.WorldSort.Name: 3})
	cs.SetRelation(fr.Accessibility, func(tuple []int) bool {
		return edges[[2]int{tuple[0], tuple[1]}]
	})
	return cs
}

func holdsOn(t *testing.T, theory fo.Theory, cs *fo.ConcreteStructure) bool {
	t.Helper()
	s := smt.NewSession()
	s.Assert(smt.Not(theory.Holds(cs)))
	ok, err := s.Check(context.Background())
	require.NoError(t, err)
	return !ok
}

func TestTrivialHoldsEverywhere(t *testing.T) {
	fr := NewFrame()
	require.True(t, holdsOn(t, fr.Trivial(), structureWithR(fr, nil)))
}

func TestReflexive(t *testing.T) {
	fr := NewFrame()
	reflexive := map[[2]int]bool{{0, 0}: true, {1, 1}: true, {2, 2}: true}
	require.True(t, holdsOn(t, fr.Reflexive(), structureWithR(fr, reflexive)))

	missing := map[[2]int]bool{{0, 0}: true, {1, 1}: true}
	require.False(t, holdsOn(t, fr.Reflexive(), structureWithR(fr, missing)))
}

func TestTransitive(t *testing.T) {
	fr := NewFrame()
	chainClosed := map[[2]int]bool{{0, 1}: true, {1, 2}: true, {0, 2}: true}
	require.True(t, holdsOn(t, fr.Transitive(), structureWithR(fr, chainClosed)))

	chainOpen := map[[2]int]bool{{0, 1}: true, {1, 2}: true}
	require.False(t, holdsOn(t, fr.Transitive(), structureWithR(fr, chainOpen)))
}

func TestSymmetric(t *testing.T) {
	fr := NewFrame()
	paired := map[[2]int]bool{{0, 1}: true, {1, 0}: true}
	require.True(t, holdsOn(t, fr.Symmetric(), structureWithR(fr, paired)))

	oneWay := map[[2]int]bool{{0, 1}: true}
	require.False(t, holdsOn(t, fr.Symmetric(), structureWithR(fr, oneWay)))
}

func TestEuclidean(t *testing.T) {
	fr := NewFrame()
	// A full clique on {0, 1} is euclidean.
	clique := map[[2]int]bool{{0, 0}: true, {0, 1}: true, {1, 0}: true, {1, 1}: true}
	require.True(t, holdsOn(t, fr.Euclidean(), structureWithR(fr, clique)))

	// 0 sees 1 and 2, but 1 and 2 do not see each other.
	fork := map[[2]int]bool{{0, 1}: true, {0, 2}: true}
	require.False(t, holdsOn(t, fr.Euclidean(), structureWithR(fr, fork)))
}

func TestRST(t *testing.T) {
	fr := NewFrame()
	rst := fr.RST()
	require.Len(t, rst.Axioms, 1)

	// The identity relation is an equivalence.
	identity := map[[2]int]bool{{0, 0}: true, {1, 1}: true, {2, 2}: true}
	require.True(t, holdsOn(t, rst, structureWithR(fr, identity)))

	// Reflexive and symmetric but not transitive.
	path := map[[2]int]bool{
		{0, 0}: true, {1, 1}: true, {2, 2}: true,
		{0, 1}: true, {1, 0}: true, {1, 2}: true, {2, 1}: true,
	}
	require.False(t, holdsOn(t, rst, structureWithR(fr, path)))
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		theory, fr, ok := Lookup(name)
		require.True(t, ok, "registered name %q did not resolve", name)
		require.NotEmpty(t, theory.Language.Sorts)
		require.Equal(t, "W", fr.WorldSort.Name)
	}

	_, _, ok := Lookup(Name("serial"))
	require.False(t, ok)
}

func TestFrameLanguageShape(t *testing.T) {
	fr := NewFrame()
	lang := fr.Trivial().Language

	r, ok := lang.GetRelationSymbol("R")
	require.True(t, ok)
	require.Equal(t, 2, r.Arity())

	p, ok := lang.GetRelationSymbol("P")
	require.True(t, ok)
	require.Equal(t, 1, p.Arity())
}
