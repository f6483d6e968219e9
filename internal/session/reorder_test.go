package session

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/francagen/internal/ir"
)

var strategies = []Strategy{StrategyScanSwap, StrategyTopological}

func newSession(names []ir.DeclName, edges ...[2]ir.DeclName) *Session {
	s := New()
	for _, n := range names {
		s.Store(n, "text of "+string(n))
	}
	for _, e := range edges {
		s.Reference(e[0], e[1])
	}
	return s
}

func TestReorderMovesReferencedFirst(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(string(strategy), func(t *testing.T) {
			// Alpha depends on Beta
			s := newSession([]ir.DeclName{"Alpha", "Beta"}, [2]ir.DeclName{"Alpha", "Beta"})

			stats, err := Reorder(s, WithStrategy(strategy))
			require.NoError(t, err)

			assert.Equal(t, []ir.DeclName{"Beta", "Alpha"}, s.Registry.Names())
			assert.True(t, stats.Moved)
			assert.Empty(t, Verify(s))
		})
	}
}

func TestReorderScanSwapCountsSwaps(t *testing.T) {
	s := newSession([]ir.DeclName{"Alpha", "Beta"}, [2]ir.DeclName{"Alpha", "Beta"})

	stats, err := Reorder(s)
	require.NoError(t, err)

	assert.Equal(t, StrategyScanSwap, stats.Strategy)
	assert.Equal(t, 1, stats.Swaps)
	assert.Equal(t, 2, stats.Passes, "one pass swaps, one pass confirms the fixpoint")
}

func TestReorderNoOpWhenAlreadyOrdered(t *testing.T) {
	s := newSession([]ir.DeclName{"Beta", "Alpha"}, [2]ir.DeclName{"Alpha", "Beta"})

	stats, err := Reorder(s)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Swaps)
	assert.Equal(t, 1, stats.Passes)
	assert.False(t, stats.Moved)
	assert.Equal(t, []ir.DeclName{"Beta", "Alpha"}, s.Registry.Names())
}

func TestReorderIndependentDeclarationsKeepOrder(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(string(strategy), func(t *testing.T) {
			s := newSession([]ir.DeclName{"Gamma", "Alpha", "Beta"})

			stats, err := Reorder(s, WithStrategy(strategy))
			require.NoError(t, err)

			assert.Equal(t, []ir.DeclName{"Gamma", "Alpha", "Beta"}, s.Registry.Names())
			assert.False(t, stats.Moved)
		})
	}
}

func TestReorderIgnoresUnknownAndSelfEdges(t *testing.T) {
	s := newSession([]ir.DeclName{"Track", "Playlist"},
		[2]ir.DeclName{"Track", "UInt32"},   // primitive, never stored
		[2]ir.DeclName{"Track", "Track"},    // self edge
		[2]ir.DeclName{"Playlist", "Track"}, // already satisfied
	)

	stats, err := Reorder(s)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Swaps)
	assert.Equal(t, []ir.DeclName{"Track", "Playlist"}, s.Registry.Names())
}

func TestReorderChain(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(string(strategy), func(t *testing.T) {
			// A -> B -> C -> D stored in reverse dependency order
			s := newSession([]ir.DeclName{"A", "B", "C", "D"},
				[2]ir.DeclName{"A", "B"},
				[2]ir.DeclName{"B", "C"},
				[2]ir.DeclName{"C", "D"},
			)

			_, err := Reorder(s, WithStrategy(strategy))
			require.NoError(t, err)

			assert.Equal(t, []ir.DeclName{"D", "C", "B", "A"}, s.Registry.Names())
		})
	}
}

func TestReorderDiamondSatisfiesEveryEdge(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(string(strategy), func(t *testing.T) {
			s := newSession([]ir.DeclName{"Top", "Left", "Right", "Bottom", "Loose"},
				[2]ir.DeclName{"Top", "Left"},
				[2]ir.DeclName{"Top", "Right"},
				[2]ir.DeclName{"Left", "Bottom"},
				[2]ir.DeclName{"Right", "Bottom"},
			)

			_, err := Reorder(s, WithStrategy(strategy))
			require.NoError(t, err)

			assert.Empty(t, Verify(s))
			assert.Equal(t, 5, s.Registry.Len())
		})
	}
}

func TestReorderTopologicalIsStable(t *testing.T) {
	s := newSession([]ir.DeclName{"Z", "Y", "A", "X"}, [2]ir.DeclName{"Z", "X"})

	_, err := Reorder(s, WithStrategy(StrategyTopological))
	require.NoError(t, err)

	// X must precede Z; Y and A keep their relative order
	assert.Equal(t, []ir.DeclName{"Y", "A", "X", "Z"}, s.Registry.Names())
}

func TestReorderPositionIndexStaysConsistent(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(string(strategy), func(t *testing.T) {
			s := newSession([]ir.DeclName{"A", "B", "C", "D", "E"},
				[2]ir.DeclName{"A", "E"},
				[2]ir.DeclName{"B", "D"},
				[2]ir.DeclName{"C", "A"},
			)

			_, err := Reorder(s, WithStrategy(strategy))
			require.NoError(t, err)

			for i, name := range s.Registry.Names() {
				pos, ok := s.Registry.Position(name)
				require.True(t, ok)
				assert.Equal(t, i, pos, "position of %s", name)
			}
			assert.Empty(t, Verify(s))
		})
	}
}

func TestReorderLargeRandomishDAG(t *testing.T) {
	// Each node i depends on every j > i that is a multiple of i+1,
	// producing a dense acyclic graph stored in the worst order.
	const n = 40
	names := make([]ir.DeclName, n)
	for i := range names {
		names[i] = ir.DeclName(fmt.Sprintf("T%02d", i))
	}
	var edges [][2]ir.DeclName
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if j%(i+1) == 0 {
				edges = append(edges, [2]ir.DeclName{names[i], names[j]})
			}
		}
	}

	for _, strategy := range strategies {
		t.Run(string(strategy), func(t *testing.T) {
			s := newSession(names, edges...)
			_, err := Reorder(s, WithStrategy(strategy))
			require.NoError(t, err)
			assert.Empty(t, Verify(s))
		})
	}
}

func TestReorderDetectsCycle(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(string(strategy), func(t *testing.T) {
			s := newSession([]ir.DeclName{"A", "B", "C"},
				[2]ir.DeclName{"A", "B"},
				[2]ir.DeclName{"B", "A"},
			)

			_, err := Reorder(s, WithStrategy(strategy))
			require.Error(t, err)
			assert.True(t, IsCycleError(err))

			var ce *CycleError
			require.True(t, errors.As(err, &ce))
			require.Len(t, ce.Cycles, 1)
			cycle := ce.Cycles[0]
			assert.Len(t, cycle, 3)
			assert.Equal(t, cycle[0], cycle[2], "cycle path closes on its start")
			assert.ElementsMatch(t, []ir.DeclName{"A", "B"}, cycle[:2])
			assert.Contains(t, err.Error(), string(ErrCodeCycleDetected))

			// Order is left untouched
			assert.Equal(t, []ir.DeclName{"A", "B", "C"}, s.Registry.Names())
		})
	}
}

func TestReorderCycleThroughUnstoredNameIsNotACycle(t *testing.T) {
	// B -> X -> A -> B would be a cycle, but X is never stored
	s := newSession([]ir.DeclName{"A", "B"},
		[2]ir.DeclName{"A", "B"},
		[2]ir.DeclName{"B", "X"},
		[2]ir.DeclName{"X", "A"},
	)

	_, err := Reorder(s)
	require.NoError(t, err)
	assert.Equal(t, []ir.DeclName{"B", "A"}, s.Registry.Names())
}

func TestFindCyclesMultiple(t *testing.T) {
	s := newSession([]ir.DeclName{"A", "B", "C", "D", "E"},
		[2]ir.DeclName{"A", "B"},
		[2]ir.DeclName{"B", "A"},
		[2]ir.DeclName{"C", "D"},
		[2]ir.DeclName{"D", "E"},
		[2]ir.DeclName{"E", "C"},
	)

	cycles := FindCycles(s)
	require.Len(t, cycles, 2)
	lengths := []int{len(cycles[0]), len(cycles[1])}
	assert.ElementsMatch(t, []int{3, 4}, lengths)
}

func TestReorderSwapLimit(t *testing.T) {
	s := newSession([]ir.DeclName{"A", "B", "C", "D"},
		[2]ir.DeclName{"A", "B"},
		[2]ir.DeclName{"B", "C"},
		[2]ir.DeclName{"C", "D"},
	)

	stats, err := Reorder(s, WithMaxSwaps(1))
	require.Error(t, err)
	assert.True(t, IsLimitError(err))
	assert.Equal(t, 1, stats.Swaps)
	assert.Contains(t, err.Error(), string(ErrCodeSwapLimit))
}

func TestReorderSwapLimitReachedExactlyAtFixpoint(t *testing.T) {
	s := newSession([]ir.DeclName{"Alpha", "Beta"}, [2]ir.DeclName{"Alpha", "Beta"})

	_, err := Reorder(s, WithMaxSwaps(1))
	require.NoError(t, err)
	assert.Equal(t, []ir.DeclName{"Beta", "Alpha"}, s.Registry.Names())
}

func TestReorderPassHook(t *testing.T) {
	s := newSession([]ir.DeclName{"Alpha", "Beta"}, [2]ir.DeclName{"Alpha", "Beta"})

	var passes []int
	_, err := Reorder(s, WithPassHook(func(p int) { passes = append(passes, p) }))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, passes)
}

func TestReorderEmptySession(t *testing.T) {
	for _, strategy := range strategies {
		stats, err := Reorder(New(), WithStrategy(strategy))
		require.NoError(t, err)
		assert.False(t, stats.Moved)
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyScanSwap, s)

	s, err = ParseStrategy("topological")
	require.NoError(t, err)
	assert.Equal(t, StrategyTopological, s)

	_, err = ParseStrategy("bogo")
	assert.Error(t, err)
}

func TestVerifyReportsViolations(t *testing.T) {
	s := newSession([]ir.DeclName{"Alpha", "Beta"}, [2]ir.DeclName{"Alpha", "Beta"})

	violations := Verify(s)
	require.Len(t, violations, 1)
	assert.Equal(t, ir.DeclName("Alpha"), violations[0].Referencer)
	assert.Equal(t, 0, violations[0].ReferencerPos)
	assert.Equal(t, 1, violations[0].ReferencedPos)
}
