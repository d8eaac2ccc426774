package fo

import (
	"context"
	"testing"

	"pgregory.net/rapid"

	"github.com/gitrdm/modalsynth/pkg/smt"
)

// drawTerm generates a random term of at most the given depth over
// testLanguage()'s function symbols and the given variable pool.
func drawTerm(t *rapid.T, lang Language, vars []Variable, depth int) Term {
	c, _ := lang.GetFunctionSymbol("c")
	f, _ := lang.GetFunctionSymbol("f")

	choices := len(vars) + 1
	if depth > 0 {
		choices++
	}
	pick := rapid.IntRange(0, choices-1).Draw(t, "node")
	switch {
	case pick < len(vars):
		return vars[pick]
	case pick == len(vars):
		return NewApplication(c)
	default:
		return NewApplication(f, drawTerm(t, lang, vars, depth-1))
	}
}

func holds(t *rapid.T, term smt.Term) bool {
	s := smt.NewSession()
	s.Assert(smt.Not(term))
	ok, err := s.Check(context.Background())
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	return !ok
}

// Free variables after substitution are exactly (FV(e) \ dom σ) joined with
// the free variables of every substituted-in term.
func TestFreeVariableAlgebraProperty(t *testing.T) {
	lang := testLanguage()
	w, _ := lang.GetSort("W")
	vars := []Variable{NewVariable("x", w), NewVariable("y", w), NewVariable("z", w)}

	rapid.Check(t, func(rt *rapid.T) {
		term := drawTerm(rt, lang, vars, 3)

		sub := Substitution{}
		for _, v := range vars {
			if rapid.Bool().Draw(rt, "bind_"+v.Name) {
				sub[v] = drawTerm(rt, lang, vars, 2)
			}
		}

		want := map[Variable]bool{}
		for v := range term.FreeVariables() {
			if replacement, ok := sub[v]; ok {
				for fv := range replacement.FreeVariables() {
					want[fv] = true
				}
			} else {
				want[v] = true
			}
		}

		got := term.Substitute(sub).FreeVariables()
		if len(got) != len(want) {
			rt.Fatalf("free variables = %v, want %v", got, want)
		}
		for v := range want {
			if !got[v] {
				rt.Fatalf("free variables = %v, want %v", got, want)
			}
		}
	})
}

// Interpreting e.Substitute(σ) agrees with interpreting e under the
// valuation that interprets σ's replacement terms first.
func TestSubstitutionInterpretationProperty(t *testing.T) {
	lang := testLanguage()
	w, _ := lang.GetSort("W")
	vars := []Variable{NewVariable("x", w), NewVariable("y", w)}
	cs := testStructure()

	rapid.Check(t, func(rt *rapid.T) {
		term := drawTerm(rt, lang, vars, 3)

		valuation := Valuation{}
		for _, v := range vars {
			valuation[v] = smt.IntConst(rapid.IntRange(0, 2).Draw(rt, "val_"+v.Name))
		}

		sub := Substitution{}
		composed := Valuation{}
		for _, v := range vars {
			if rapid.Bool().Draw(rt, "bind_"+v.Name) {
				replacement := drawTerm(rt, lang, vars, 2)
				sub[v] = replacement
				composed[v] = replacement.Interpret(cs, valuation)
			} else {
				composed[v] = valuation[v]
			}
		}

		left := term.Substitute(sub).Interpret(cs, valuation)
		right := term.Interpret(cs, composed)
		if !holds(rt, smt.Eq(left, right)) {
			rt.Fatalf("interpretation of %s diverged under substitution", term)
		}
	})
}

// A quantifier drops its own bound variable from the substitution, and the
// bound variable never occurs free in the result.
func TestQuantifierSubstitutionProperty(t *testing.T) {
	lang := testLanguage()
	w, _ := lang.GetSort("W")
	r, _ := lang.GetRelationSymbol("R")
	x := NewVariable("x", w)
	others := []Variable{NewVariable("y", w), NewVariable("z", w)}

	rapid.Check(t, func(rt *rapid.T) {
		body := NewRelationApplication(r,
			drawTerm(rt, lang, append([]Variable{x}, others...), 2),
			drawTerm(rt, lang, append([]Variable{x}, others...), 2),
		)
		quantified := UniversalQuantification{Variable: x, Body: body}

		// Replacement terms range over the other variables only, so the
		// binder cannot capture them.
		sub := Substitution{x: drawTerm(rt, lang, others, 2)}
		for _, v := range others {
			if rapid.Bool().Draw(rt, "bind_"+v.Name) {
				sub[v] = drawTerm(rt, lang, others, 2)
			}
		}

		result := quantified.Substitute(sub)
		free := result.FreeVariables()
		if free[x] {
			rt.Fatalf("bound variable escaped: %s", result)
		}

		// The binding for x itself was ignored.
		inner, ok := result.(UniversalQuantification)
		if !ok {
			rt.Fatalf("substitution changed the quantifier shape: %s", result)
		}
		withoutX := Substitution{}
		for k, v := range sub {
			if k != x {
				withoutX[k] = v
			}
		}
		if inner.Body.String() != body.Substitute(withoutX).String() {
			rt.Fatalf("quantifier body %s, want %s", inner.Body, body.Substitute(withoutX))
		}
	})
}
