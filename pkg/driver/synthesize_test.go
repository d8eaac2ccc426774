package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/modalsynth/pkg/fo"
	"github.com/gitrdm/modalsynth/pkg/modal"
	"github.com/gitrdm/modalsynth/pkg/smt"
	"github.com/gitrdm/modalsynth/pkg/theories"
)

var (
	atomP    = modal.Atom{Name: "p"}
	axiomT   = modal.NewImplication(modal.NewBox(atomP), atomP)
	axiom4   = modal.NewImplication(modal.NewBox(atomP), modal.NewBox(modal.NewBox(atomP)))
	axiomB   = modal.NewImplication(atomP, modal.NewBox(modal.NewDiamond(atomP)))
	axiom5   = modal.NewImplication(modal.NewDiamond(atomP), modal.NewBox(modal.NewDiamond(atomP)))
)

// validOnGoal reports whether formula holds at every world of every finite
// model of goalTheory up to the carrier bound, under every interpretation
// of the proposition symbol the structure search ranges over.
func validOnGoal(t *testing.T, goalTheory fo.Theory, fr theories.Frame, formula modal.Formula, bound int) bool {
	t.Helper()
	goalModel := fo.NewFiniteFOModelTemplate(goalTheory, map[string]int{fr.WorldSort.Name: bound})
	frame := modal.NewFOStructureFrame(goalModel, fr.WorldSort, fr.Accessibility)

	s := smt.NewSession()
	s.Assert(goalModel.Constraint())
	s.Assert(smt.Not(modal.InterpretOnAllWorlds(formula, frame, propositionValuation(goalModel, fr.Proposition))))

	hasCounterexample, err := s.Check(context.Background())
	require.NoError(t, err)
	return !hasCounterexample
}

func TestReflexiveAdmitsTAndRejectsFour(t *testing.T) {
	goal, fr, ok := theories.Lookup(theories.NameReflexive)
	require.True(t, ok)

	require.True(t, validOnGoal(t, goal, fr, axiomT, 3))
	require.False(t, validOnGoal(t, goal, fr, axiom4, 3))
}

func TestTransitiveAdmitsFourAndRejectsT(t *testing.T) {
	goal, fr, ok := theories.Lookup(theories.NameTransitive)
	require.True(t, ok)

	require.True(t, validOnGoal(t, goal, fr, axiom4, 3))
	require.False(t, validOnGoal(t, goal, fr, axiomT, 3))
}

func TestSymmetricAdmitsB(t *testing.T) {
	goal, fr, ok := theories.Lookup(theories.NameSymmetric)
	require.True(t, ok)

	require.True(t, validOnGoal(t, goal, fr, axiomB, 3))
	require.False(t, validOnGoal(t, goal, fr, axiomT, 3))
}

func TestEuclideanAdmitsFive(t *testing.T) {
	goal, fr, ok := theories.Lookup(theories.NameEuclidean)
	require.True(t, ok)

	require.True(t, validOnGoal(t, goal, fr, axiom5, 3))
	require.False(t, validOnGoal(t, goal, fr, axiomT, 3))
}

// The conjunction of T, B, and 4 characterizes the reflexive-symmetric-
// transitive frames: every bounded frame violating the goal theory
// falsifies the conjunction under some valuation.
func TestRSTCompleteness(t *testing.T) {
	goal, fr, ok := theories.Lookup(theories.NameRST)
	require.True(t, ok)

	params := Params{
		TrivialTheory:  fr.Trivial(),
		GoalTheory:     goal,
		WorldSort:      fr.WorldSort,
		Accessibility:  fr.Accessibility,
		Proposition:    fr.Proposition,
		Atoms:          []string{"p"},
		ModelSizeBound: 3,
	}

	complete, err := checkComplete(context.Background(), params, []modal.Formula{axiomT, axiomB, axiom4})
	require.NoError(t, err)
	require.True(t, complete)

	// Dropping 4 leaves reflexive-symmetric non-transitive frames
	// indistinguishable: the remaining conjunction is valid on one of
	// them, so the axiomatization is incomplete.
	complete, err = checkComplete(context.Background(), params, []modal.Formula{axiomT, axiomB})
	require.NoError(t, err)
	require.False(t, complete)
}

// A full end-to-end run: at modal depth 1 against the reflexive goal
// theory, the loop discovers seriality (every reflexive world has a
// successor) and terminates by exhaustion.
func TestSynthesizeReflexiveDepthOne(t *testing.T) {
	goal, fr, ok := theories.Lookup(theories.NameReflexive)
	require.True(t, ok)

	result, err := Synthesize(context.Background(), Params{
		TrivialTheory:  fr.Trivial(),
		GoalTheory:     goal,
		WorldSort:      fr.WorldSort,
		Accessibility:  fr.Accessibility,
		Proposition:    fr.Proposition,
		Atoms:          []string{"p"},
		ModalDepth:     1,
		ModelSizeBound: 2,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID)

	accepted := make([]string, len(result.TrueFormulas))
	for i, f := range result.TrueFormulas {
		accepted[i] = f.String()
	}
	require.Contains(t, accepted, "<> true")

	// Every accepted formula really is valid on the goal class.
	for _, f := range result.TrueFormulas {
		require.True(t, validOnGoal(t, goal, fr, f, 2), "accepted %s is not valid on the goal class", f)
	}

	// Seriality alone does not pin down reflexivity.
	require.False(t, result.Complete)
}

func TestSynthesizeRejectsMultipleAtoms(t *testing.T) {
	goal, fr, ok := theories.Lookup(theories.NameReflexive)
	require.True(t, ok)

	_, err := Synthesize(context.Background(), Params{
		TrivialTheory:  fr.Trivial(),
		GoalTheory:     goal,
		WorldSort:      fr.WorldSort,
		Accessibility:  fr.Accessibility,
		Proposition:    fr.Proposition,
		Atoms:          []string{"p", "q"},
		ModalDepth:     1,
		ModelSizeBound: 2,
	})
	require.ErrorContains(t, err, "exactly one atom is supported")
}

func TestSynthesizeRespectsCancellation(t *testing.T) {
	goal, fr, ok := theories.Lookup(theories.NameReflexive)
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Synthesize(ctx, Params{
		TrivialTheory:  fr.Trivial(),
		GoalTheory:     goal,
		WorldSort:      fr.WorldSort,
		Accessibility:  fr.Accessibility,
		Proposition:    fr.Proposition,
		Atoms:          []string{"p"},
		ModalDepth:     1,
		ModelSizeBound: 2,
	})
	require.ErrorIs(t, err, context.Canceled)
}
