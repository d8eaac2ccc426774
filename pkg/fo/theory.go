package fo

import (
	"fmt"

	"github.com/gitrdm/modalsynth/pkg/smt"
)

// Theory pairs a Language with an ordered list of axioms over it. Axioms
// are stored as already-closed sentences: callers build them with
// QuantifyAllFreeVariables, or write them pre-closed.
type Theory struct {
	Language Language
	Axioms   []Formula
}

// NewTheory returns the empty theory over language.
func NewTheory(language Language) Theory {
	return Theory{Language: language}
}

// ExtendAxioms returns a copy of t with additional axioms appended.
func (t Theory) ExtendAxioms(axioms ...Formula) Theory {
	return Theory{
		Language: t.Language,
		Axioms:   append(append([]Formula(nil), t.Axioms...), axioms...),
	}
}

// Extend returns the theory over the disjoint union of t's language and
// other's, with other's axioms appended to t's.
func (t Theory) Extend(other Theory) (Theory, error) {
	lang, err := t.Language.Expand(other.Language)
	if err != nil {
		return Theory{}, fmt.Errorf("fo: Theory.Extend: %w", err)
	}
	return Theory{
		Language: lang,
		Axioms:   append(append([]Formula(nil), t.Axioms...), other.Axioms...),
	}, nil
}

// Holds returns the backend term, interpreted against structure under the
// empty valuation, that is satisfiable iff structure models every axiom of
// t. Every axiom is required to be closed; an open axiom
// interpreted this way panics via ErrUnboundVariable, per Variable.Interpret.
func (t Theory) Holds(structure Structure) smt.Term {
	parts := make([]smt.Term, len(t.Axioms))
	for i, ax := range t.Axioms {
		parts[i] = ax.Interpret(structure, Valuation{})
	}
	return smt.And(parts...)
}
