package smt

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrBackend wraps any failure originating from the concrete decision
// procedure itself (as opposed to caller misuse), per the BackendError
// error kind.
var ErrBackend = errors.New("smt: backend error")

// Model is a satisfying assignment returned by Session.Model after a
// successful Check.
type Model struct {
	values map[int64]int
}

// Value returns the integer value assigned to sym.
func (m Model) Value(sym *Symbol) int {
	v, ok := m.values[sym.id]
	if !ok {
		panic(fmt.Sprintf("smt: model has no value for symbol %s!%d", sym.name, sym.id))
	}
	return v
}

// Bool returns the boolean value assigned to a BoolSort symbol.
func (m Model) Bool(sym *Symbol) bool { return m.Value(sym) != 0 }

// Lookup returns the value assigned to sym, with ok=false if the model
// leaves it unassigned (the symbol appeared in no checked assertion, so any
// in-domain value would have satisfied the solver).
func (m Model) Lookup(sym *Symbol) (int, bool) {
	v, ok := m.values[sym.id]
	return v, ok
}

// ValueOf is a convenience wrapper for Term values known to be bare symbol
// references (the common case: the Term returned by FreshBool/FreshBoundedInt).
func (m Model) ValueOf(t Term) int {
	sym, ok := t.AsSymbol()
	if !ok {
		panic("smt: ValueOf called on a non-symbol term")
	}
	return m.Value(sym)
}

// tv is a three-valued truth result used while backtracking: a formula may
// be definitely true/false given a partial assignment, or still unknown
// because it mentions an unassigned symbol.
type tv int

const (
	tvFalse tv = iota
	tvTrue
	tvUnknown
)

func notTv(v tv) tv {
	switch v {
	case tvTrue:
		return tvFalse
	case tvFalse:
		return tvTrue
	default:
		return tvUnknown
	}
}

// Session is a single SMT-façade decision session: a push/pop stack of
// assertion frames checked by a naive finite-domain backtracking search.
//
// This is deliberately not a general-purpose SMT solver. Every Term this
// module ever constructs ranges over symbols with a small, statically known
// domain (see package doc), so exhaustive backtracking with simple
// unit-propagation-style pruning (evalBool3 below) is sufficient: a search
// involves at most a few dozen symbols with domains no larger than the
// template depth or carrier size bound.
type Session struct {
	frames    [][]Term // frames[0] is always present; push appends, pop removes
	lastModel Model
	nodeLimit int
}

// NewSession creates a new, empty decision session.
func NewSession() *Session {
	return &Session{frames: [][]Term{{}}, nodeLimit: 5_000_000}
}

// Assert adds t to the current frame.
func (s *Session) Assert(t Term) {
	top := len(s.frames) - 1
	s.frames[top] = append(s.frames[top], t)
}

// Push opens a new assertion frame.
func (s *Session) Push() { s.frames = append(s.frames, nil) }

// Pop discards the most recently opened frame. Popping the base frame
// panics: callers never pop deeper than they pushed.
func (s *Session) Pop() {
	if len(s.frames) <= 1 {
		panic("smt: Pop without matching Push")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// assertions returns every Term currently asserted across all open frames.
func (s *Session) assertions() []Term {
	var all []Term
	for _, f := range s.frames {
		all = append(all, f...)
	}
	return all
}

// Check runs the backtracking search and reports whether the current
// assertion set is satisfiable.
func (s *Session) Check(ctx context.Context) (bool, error) {
	asserts := s.assertions()
	syms := Symbols(asserts...)

	// Smallest-domain-first variable ordering.
	domains := make(map[int64]intDomain, len(syms))
	for _, sym := range syms {
		domains[sym.id] = newIntDomain(sym.lo, sym.hi)
	}
	sort.SliceStable(syms, func(i, j int) bool {
		return domains[syms[i].id].count() < domains[syms[j].id].count()
	})

	assign := make(map[int64]int, len(syms))
	nodes := 0
	ok, err := search(ctx, asserts, syms, 0, assign, &nodes, s.nodeLimit)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	values := make(map[int64]int, len(assign))
	for k, v := range assign {
		values[k] = v
	}
	s.lastModel = Model{values: values}
	return true, nil
}

// Model returns the satisfying assignment found by the last successful
// Check. Calling it before a successful Check is a programmer error.
func (s *Session) Model() Model { return s.lastModel }

func search(ctx context.Context, asserts []Term, syms []*Symbol, idx int, assign map[int64]int, nodes *int, limit int) (bool, error) {
	*nodes++
	if *nodes > limit {
		return false, fmt.Errorf("%w: exceeded %d search nodes", ErrBackend, limit)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if idx == len(syms) {
		for _, a := range asserts {
			if evalBool3(a, assign) != tvTrue {
				return false, nil
			}
		}
		return true, nil
	}

	sym := syms[idx]
	for _, v := range newIntDomain(sym.lo, sym.hi).values() {
		assign[sym.id] = v
		consistent := true
		for _, a := range asserts {
			if evalBool3(a, assign) == tvFalse {
				consistent = false
				break
			}
		}
		if consistent {
			ok, err := search(ctx, asserts, syms, idx+1, assign, nodes, limit)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		delete(assign, sym.id)
	}
	return false, nil
}

// evalBool3 evaluates a Bool-sorted term under a partial assignment,
// returning tvUnknown wherever the result depends on an unassigned symbol.
func evalBool3(t Term, assign map[int64]int) tv {
	switch t.kind {
	case kindBoolConst:
		if t.boolVal {
			return tvTrue
		}
		return tvFalse
	case kindSymbol:
		v, ok := assign[t.sym.id]
		if !ok {
			return tvUnknown
		}
		if v != 0 {
			return tvTrue
		}
		return tvFalse
	case kindNot:
		return notTv(evalBool3(t.children[0], assign))
	case kindAnd:
		result := tvTrue
		for _, c := range t.children {
			v := evalBool3(c, assign)
			if v == tvFalse {
				return tvFalse
			}
			if v == tvUnknown {
				result = tvUnknown
			}
		}
		return result
	case kindOr:
		result := tvFalse
		for _, c := range t.children {
			v := evalBool3(c, assign)
			if v == tvTrue {
				return tvTrue
			}
			if v == tvUnknown {
				result = tvUnknown
			}
		}
		return result
	case kindImplies:
		a := evalBool3(t.children[0], assign)
		if a == tvFalse {
			return tvTrue
		}
		b := evalBool3(t.children[1], assign)
		if a == tvTrue {
			return b
		}
		if b == tvTrue {
			return tvTrue
		}
		return tvUnknown
	case kindIff:
		a := evalBool3(t.children[0], assign)
		b := evalBool3(t.children[1], assign)
		if a == tvUnknown || b == tvUnknown {
			return tvUnknown
		}
		if a == b {
			return tvTrue
		}
		return tvFalse
	case kindIte:
		cond := evalBool3(t.children[0], assign)
		if cond == tvTrue {
			return evalBool3(t.children[1], assign)
		}
		if cond == tvFalse {
			return evalBool3(t.children[2], assign)
		}
		return tvUnknown
	case kindEq:
		av, aok := evalInt3(t.children[0], assign)
		bv, bok := evalInt3(t.children[1], assign)
		if !aok || !bok {
			return tvUnknown
		}
		if av == bv {
			return tvTrue
		}
		return tvFalse
	case kindLt:
		av, aok := evalInt3(t.children[0], assign)
		bv, bok := evalInt3(t.children[1], assign)
		if !aok || !bok {
			return tvUnknown
		}
		if av < bv {
			return tvTrue
		}
		return tvFalse
	default:
		panic("smt: evalBool3: unknown term kind")
	}
}

// evalInt3 evaluates an Int- or Bool-sorted term to a concrete value under a
// partial assignment. ok is false if the value is not yet determined.
func evalInt3(t Term, assign map[int64]int) (int, bool) {
	switch t.kind {
	case kindIntConst:
		return t.intVal, true
	case kindBoolConst:
		if t.boolVal {
			return 1, true
		}
		return 0, true
	case kindSymbol:
		v, ok := assign[t.sym.id]
		return v, ok
	case kindIte:
		cond := evalBool3(t.children[0], assign)
		if cond == tvTrue {
			return evalInt3(t.children[1], assign)
		}
		if cond == tvFalse {
			return evalInt3(t.children[2], assign)
		}
		return 0, false
	default:
		// Boolean-connective terms used in an Int position (shouldn't
		// happen for well-formed Terms built via this package's
		// constructors, but evaluate them as 0/1 rather than panicking).
		v := evalBool3(t, assign)
		if v == tvUnknown {
			return 0, false
		}
		if v == tvTrue {
			return 1, true
		}
		return 0, true
	}
}
