package modal

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormulaString(t *testing.T) {
	p := Atom{Name: "p"}
	q := Atom{Name: "q"}

	for _, tc := range []struct {
		formula Formula
		want    string
	}{
		{p, "p"},
		{Verum{}, "true"},
		{Falsum{}, "false"},
		{NewConjunction(p, q), "(p /\\ q)"},
		{NewDisjunction(p, q), "(p \\/ q)"},
		{NewNegation(p), "not p"},
		{NewImplication(NewBox(p), p), "([] p -> p)"},
		{NewEquivalence(p, NewDiamond(q)), "(p <-> <> q)"},
		{NewBox(NewBox(p)), "[] [] p"},
		{NewDiamond(NewNegation(q)), "<> not q"},
	} {
		require.Equal(t, tc.want, tc.formula.String())
	}
}

func TestAtoms(t *testing.T) {
	p := Atom{Name: "p"}
	q := Atom{Name: "q"}

	got := Atoms(NewImplication(NewBox(p), NewConjunction(q, NewDiamond(p))))
	sort.Strings(got)
	require.Equal(t, []string{"p", "q"}, got)

	require.Empty(t, Atoms(NewBox(Verum{})))
}
