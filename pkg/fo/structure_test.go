package fo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/modalsynth/pkg/smt"
)

func TestFixedCarrierMembership(t *testing.T) {
	c := NewFixedCarrier(3)
	require.Equal(t, 3, c.Bound())

	mustHold(t, c.InCarrier(smt.IntConst(0)))
	mustHold(t, c.InCarrier(smt.IntConst(2)))
	mustFail(t, c.InCarrier(smt.IntConst(3)))
}

func TestBoundedCarrierMembership(t *testing.T) {
	c := NewBoundedCarrier("size", 3)
	require.Equal(t, 3, c.Bound())

	// Membership of element 2 depends on the size control variable.
	s := smt.NewSession()
	s.Assert(c.InCarrier(smt.IntConst(2)))
	ok, err := s.Check(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3, s.Model().ValueOf(c.SizeTerm()))

	s.Push()
	s.Assert(smt.Eq(c.SizeTerm(), smt.IntConst(1)))
	ok, err = s.Check(context.Background())
	require.NoError(t, err)
	require.False(t, ok, "element 2 is out of a size-1 carrier")
	s.Pop()
}

// Unrolled quantification agrees with the explicit conjunction /
// disjunction over every in-carrier element.
func TestFiniteCarrierQuantifierSemantics(t *testing.T) {
	carrier := NewFixedCarrier(3)
	x := carrier.FreshElement("x")
	sym, ok := x.AsSymbol()
	require.True(t, ok)

	body := smt.Lt(x, smt.IntConst(2))

	var conj, disj smt.Term = smt.True(), smt.False()
	for i := 0; i < 3; i++ {
		instance := smt.Substitute(body, sym, i)
		conj = smt.And(conj, instance)
		disj = smt.Or(disj, instance)
	}

	mustHold(t, smt.Iff(carrier.UniversallyQuantify(x, body), conj))
	mustHold(t, smt.Iff(carrier.ExistentiallyQuantify(x, body), disj))

	// Concretely: not every element of {0,1,2} is below 2, but some is.
	mustFail(t, carrier.UniversallyQuantify(x, body))
	mustHold(t, carrier.ExistentiallyQuantify(x, body))
}

func TestBoundedCarrierQuantifierRespectsSize(t *testing.T) {
	carrier := NewBoundedCarrier("size", 3)
	x := carrier.FreshElement("x")
	body := smt.Lt(x, smt.IntConst(2))

	// With the symbolic size pinned to 2, every in-carrier element is
	// below 2 even though the bound admits a third element.
	s := smt.NewSession()
	s.Assert(smt.Eq(carrier.SizeTerm(), smt.IntConst(2)))
	s.Assert(smt.Not(carrier.UniversallyQuantify(x, body)))
	ok, err := s.Check(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFreshElementRange(t *testing.T) {
	carrier := NewFixedCarrier(2)
	x := carrier.FreshElement("x")
	sym, ok := x.AsSymbol()
	require.True(t, ok)
	lo, hi := sym.Bounds()
	require.Equal(t, 0, lo)
	require.Equal(t, 1, hi)
}

func TestTableSelection(t *testing.T) {
	// A binary table over {0,1} whose leaf at (i,j) is the flattened
	// index 2i+j.
	tbl := newTable(2, 2, func(tuple []int) smt.Term {
		return smt.IntConst(tuple[0]*2 + tuple[1])
	})

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			got := tbl.interpret(smt.IntConst(i), smt.IntConst(j))
			mustHold(t, smt.Eq(got, smt.IntConst(i*2+j)))
		}
	}

	// Selection by a symbolic index picks the matching leaf.
	idx := smt.FreshBoundedInt("i", 0, 1)
	s := smt.NewSession()
	s.Assert(smt.Eq(tbl.interpret(idx, smt.IntConst(1)), smt.IntConst(3)))
	ok, err := s.Check(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, s.Model().ValueOf(idx))
}

func TestTableArityMismatchPanics(t *testing.T) {
	tbl := newTable(2, 1, func([]int) smt.Term { return smt.True() })
	require.Panics(t, func() { tbl.interpret() })
}
