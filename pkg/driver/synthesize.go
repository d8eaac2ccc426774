// Package driver implements the counterexample-guided synthesis loop:
// search a modal formula template against a trivial structure template
// while rejecting any candidate the goal theory can falsify, until no
// further candidate is admitted, then check completeness against a
// complement theory.
package driver

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gitrdm/modalsynth/internal/obslog"
	"github.com/gitrdm/modalsynth/pkg/fo"
	"github.com/gitrdm/modalsynth/pkg/modal"
	"github.com/gitrdm/modalsynth/pkg/smt"
)

// Params bundles the inputs to Synthesize: the two theories that bound the
// search (trivial = no constraints beyond the language, goal = the target
// class of frames), the sort/relations the modal layer rides on top of, and
// the search's size knobs.
type Params struct {
	TrivialTheory fo.Theory
	GoalTheory    fo.Theory
	WorldSort     fo.Sort
	Accessibility fo.RelationSymbol
	Proposition   fo.RelationSymbol

	// Atoms names the propositional letters of the formula template.
	// Exactly one atom is supported: every atom's truth is read from the
	// single Proposition relation, so a second letter would silently
	// alias the first. Synthesize rejects any other length.
	Atoms []string

	ModalDepth     int
	ModelSizeBound int
}

// Result is everything Synthesize learned: the accepted axioms, in
// acceptance order, and whether their conjunction was proven complete
// against Params.GoalTheory.
type Result struct {
	RunID        string
	TrueFormulas []modal.Formula
	Complete     bool
}

// Synthesize runs the two-session counterexample-guided loop. Session S1
// proposes candidates well-formed under
// formulaTemplate that fail somewhere on the trivial model (so they are not
// valid on every frame); session S2 hunts for a goal-model counterexample to
// each candidate. A found counterexample is fed back into S1 as a positive
// constraint (the template must hold on it); its absence accepts the
// candidate and restricts S1's trivial model to frames on which the
// candidate holds under every interpretation of the proposition symbol.
func Synthesize(ctx context.Context, p Params) (Result, error) {
	if len(p.Atoms) != 1 {
		return Result{}, fmt.Errorf("driver: exactly one atom is supported, got %d", len(p.Atoms))
	}
	runID := uuid.NewString()
	log := obslog.Log.With("run_id", runID)
	log.Info("synthesis started", "modal_depth", p.ModalDepth, "model_size_bound", p.ModelSizeBound, "atoms", p.Atoms)

	formulaTemplate := modal.NewFormulaTemplate(p.Atoms, p.ModalDepth)

	trivialModel := fo.NewFiniteFOModelTemplate(p.TrivialTheory, map[string]int{p.WorldSort.Name: p.ModelSizeBound})
	goalModel := fo.NewFiniteFOModelTemplate(p.GoalTheory, map[string]int{p.WorldSort.Name: p.ModelSizeBound})

	solver1 := smt.NewSession()
	solver2 := smt.NewSession()

	solver1.Assert(formulaTemplate.Constraint())
	solver1.Assert(trivialModel.Constraint())
	solver2.Assert(goalModel.Constraint())

	trivialFrame := modal.NewFOStructureFrame(trivialModel, p.WorldSort, p.Accessibility)
	trivialValuation := propositionValuation(trivialModel, p.Proposition)
	solver1.Assert(smt.Not(formulaTemplate.InterpretOnAllWorlds(trivialFrame, trivialValuation)))

	goalFrame := modal.NewFOStructureFrame(goalModel, p.WorldSort, p.Accessibility)
	goalValuation := propositionValuation(goalModel, p.Proposition)

	var trueFormulas []modal.Formula

	for {
		ok, err := solver1.Check(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("driver: candidate search: %w", err)
		}
		if !ok {
			break
		}
		candidate := formulaTemplate.FromModel(solver1.Model())
		log.Debug("candidate proposed", "formula", candidate.String())

		solver2.Push()
		solver2.Assert(smt.Not(modal.InterpretOnAllWorlds(candidate, goalFrame, goalValuation)))

		hasCounterexample, err := solver2.Check(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("driver: counterexample search: %w", err)
		}
		if hasCounterexample {
			counterexample := goalModel.FromModel(solver2.Model())
			log.Debug("candidate rejected", "formula", candidate.String())
			cexFrame := modal.NewFOStructureFrame(counterexample, p.WorldSort, p.Accessibility)
			cexValuation := propositionValuation(counterexample, p.Proposition)
			solver1.Assert(formulaTemplate.InterpretOnAllWorlds(cexFrame, cexValuation))
		} else {
			log.Info("candidate accepted", "formula", candidate.String())
			trueFormulas = append(trueFormulas, candidate)

			freeProp, freeSyms := trivialModel.GetFreeFiniteRelation("freeP", p.WorldSort)
			body := modal.InterpretOnAllWorlds(candidate, trivialFrame, propositionValuation(trivialModel, freeProp))
			solver1.Assert(smt.ForAllBoolAssignments(freeSyms, body))
		}
		solver2.Pop()
	}

	if len(trueFormulas) == 0 {
		log.Info("synthesis finished", "accepted", 0, "complete", false)
		return Result{RunID: runID, TrueFormulas: trueFormulas, Complete: false}, nil
	}
	complete, err := checkComplete(ctx, p, trueFormulas)
	if err != nil {
		return Result{}, err
	}
	log.Info("synthesis finished", "accepted", len(trueFormulas), "complete", complete)
	return Result{RunID: runID, TrueFormulas: trueFormulas, Complete: complete}, nil
}

// propositionValuation builds a modal.Valuation that reads the given
// relation symbol's truth at world from structure. The atom name is
// ignored, which is why Synthesize insists on a single atom: with one
// letter, name dispatch is vacuous.
func propositionValuation(structure fo.Structure, prop fo.RelationSymbol) modal.Valuation {
	return func(_ string, world smt.Term) smt.Term {
		return structure.InterpretRelation(prop, world)
	}
}

// checkComplete asks whether some finite model of the complement theory
// (the goal theory's axioms negated-and-disjoined) validates the
// conjunction of trueFormulas under every interpretation of the proposition
// symbol. An UNSAT result means no such countermodel exists: the
// axiomatization is complete.
func checkComplete(ctx context.Context, p Params, trueFormulas []modal.Formula) (bool, error) {
	axiomatization := trueFormulas[len(trueFormulas)-1]
	for i := len(trueFormulas) - 2; i >= 0; i-- {
		axiomatization = modal.NewConjunction(trueFormulas[i], axiomatization)
	}

	var complementAxiom fo.Formula = fo.Falsum{}
	for _, ax := range p.GoalTheory.Axioms {
		complementAxiom = fo.NewDisjunction(complementAxiom, fo.NewNegation(ax))
	}
	complementTheory := p.TrivialTheory.ExtendAxioms(complementAxiom)

	complementModel := fo.NewFiniteFOModelTemplate(complementTheory, map[string]int{p.WorldSort.Name: p.ModelSizeBound})
	solver := smt.NewSession()
	solver.Assert(complementModel.Constraint())

	freeProp, freeSyms := complementModel.GetFreeFiniteRelation("freeP", p.WorldSort)
	frame := modal.NewFOStructureFrame(complementModel, p.WorldSort, p.Accessibility)
	body := modal.InterpretOnAllWorlds(axiomatization, frame, propositionValuation(complementModel, freeProp))
	solver.Assert(smt.ForAllBoolAssignments(freeSyms, body))

	hasCounterexample, err := solver.Check(ctx)
	if err != nil {
		return false, fmt.Errorf("driver: completeness check: %w", err)
	}
	return !hasCounterexample, nil
}
