package template

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gitrdm/modalsynth/pkg/fo"
)

// SortedTerm pairs a concrete term with the sort it was enumerated at.
type SortedTerm struct {
	Sort fo.Sort
	Term fo.Term
}

// TermStream is a lazily-produced, thread-safe stream of SortedTerm
// values: the enumeration fallback for when the search over a
// TermTemplate's control variables is impractical and brute-force
// enumeration by increasing depth is preferred instead. It is a
// channel-backed producer/consumer pair with explicit Close and a running
// count.
type TermStream struct {
	ch     chan SortedTerm
	count  int64
	closed int32
	mu     sync.Mutex
}

// NewTermStream starts a producer goroutine enumerating every term of depth
// at most maxDepth over language's function symbols and freeVars,
// optionally restricted to a single sort (sort may be nil for any sort),
// in order of increasing depth.
func NewTermStream(ctx context.Context, language fo.Language, freeVars []fo.Variable, maxDepth int, sort *fo.Sort) *TermStream {
	s := &TermStream{ch: make(chan SortedTerm, 64)}
	go s.produce(ctx, language, freeVars, maxDepth, sort)
	return s
}

func (s *TermStream) produce(ctx context.Context, language fo.Language, freeVars []fo.Variable, maxDepth int, sort *fo.Sort) {
	defer s.Close()

	bySortDepth := map[string][][]fo.Term{}
	add := func(termSort fo.Sort, depth int, term fo.Term) {
		rows := bySortDepth[termSort.Name]
		for len(rows) <= depth {
			rows = append(rows, nil)
		}
		rows[depth] = append(rows[depth], term)
		bySortDepth[termSort.Name] = rows
	}
	at := func(termSort fo.Sort, depth int) []fo.Term {
		rows := bySortDepth[termSort.Name]
		if depth >= len(rows) {
			return nil
		}
		return rows[depth]
	}
	emit := func(termSort fo.Sort, term fo.Term) bool {
		if sort != nil && !termSort.Equal(*sort) {
			return true
		}
		select {
		case s.ch <- SortedTerm{Sort: termSort, Term: term}:
			atomic.AddInt64(&s.count, 1)
			return true
		case <-ctx.Done():
			return false
		}
	}

	for depth := 0; depth <= maxDepth; depth++ {
		if depth == 0 {
			for _, v := range freeVars {
				add(v.Sort, 0, v)
				if !emit(v.Sort, v) {
					return
				}
			}
			for _, f := range language.FunctionSymbols {
				if f.Arity() != 0 {
					continue
				}
				term := fo.NewApplication(f)
				add(f.OutputSort, 0, term)
				if !emit(f.OutputSort, term) {
					return
				}
			}
			continue
		}

		for _, f := range language.FunctionSymbols {
			arity := f.Arity()
			if arity == 0 {
				continue
			}
			for _, depths := range depthCombinations(arity, depth) {
				hasMax := false
				for _, d := range depths {
					if d == depth-1 {
						hasMax = true
						break
					}
				}
				if !hasMax {
					continue
				}
				pools := make([][]fo.Term, arity)
				for i, d := range depths {
					pools[i] = at(f.InputSorts[i], d)
				}
				for _, args := range cartesianProduct(pools) {
					term := fo.NewApplication(f, args...)
					add(f.OutputSort, depth, term)
					if !emit(f.OutputSort, term) {
						return
					}
				}
			}
		}
	}
}

// depthCombinations returns every tuple of n depths, each in [0, depth-1].
func depthCombinations(n, depth int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	var rec func(prefix []int)
	rec = func(prefix []int) {
		if len(prefix) == n {
			out = append(out, append([]int(nil), prefix...))
			return
		}
		for d := 0; d < depth; d++ {
			rec(append(prefix, d))
		}
	}
	rec(nil)
	return out
}

// cartesianProduct returns every combination of one element from each pool,
// skipping entirely if any pool is empty.
func cartesianProduct(pools [][]fo.Term) [][]fo.Term {
	if len(pools) == 0 {
		return [][]fo.Term{{}}
	}
	for _, p := range pools {
		if len(p) == 0 {
			return nil
		}
	}
	var out [][]fo.Term
	var rec func(i int, prefix []fo.Term)
	rec = func(i int, prefix []fo.Term) {
		if i == len(pools) {
			out = append(out, append([]fo.Term(nil), prefix...))
			return
		}
		for _, term := range pools[i] {
			rec(i+1, append(prefix, term))
		}
	}
	rec(0, nil)
	return out
}

// Take retrieves up to n terms from the stream, returning hasMore=false
// once the stream is drained and closed.
func (s *TermStream) Take(ctx context.Context, n int) ([]SortedTerm, bool, error) {
	var out []SortedTerm
	for i := 0; i < n; i++ {
		select {
		case t, ok := <-s.ch:
			if !ok {
				return out, false, nil
			}
			out = append(out, t)
		case <-ctx.Done():
			return out, len(out) > 0, ctx.Err()
		}
	}
	return out, true, nil
}

// Close marks the stream closed; safe to call more than once.
func (s *TermStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		close(s.ch)
	}
}

// Count returns the number of terms produced so far.
func (s *TermStream) Count() int64 { return atomic.LoadInt64(&s.count) }
