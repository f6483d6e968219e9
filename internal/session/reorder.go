package session

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/roach88/francagen/internal/ir"
)

// Strategy selects how Reorder computes the dependency order.
type Strategy string

const (
	// StrategyScanSwap repeatedly scans all ordered pairs and swaps the first
	// misplaced pair, restarting after every swap, until a full scan finds
	// nothing to fix. Cubic in the worst case; fine for tens to low hundreds
	// of declarations.
	StrategyScanSwap Strategy = "scan-swap"

	// StrategyTopological runs Kahn's algorithm, picking the ready
	// declaration with the lowest current position at each step.
	StrategyTopological Strategy = "topological"
)

// DefaultMaxSwaps bounds the scan-and-swap fixpoint.
const DefaultMaxSwaps = 1_000_000

// ParseStrategy converts a flag or config value into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyScanSwap, "":
		return StrategyScanSwap, nil
	case StrategyTopological:
		return StrategyTopological, nil
	default:
		return "", errors.Newf("unknown reorder strategy %q: must be %q or %q", s, StrategyScanSwap, StrategyTopological)
	}
}

// Stats describes one Reorder run.
type Stats struct {
	Strategy Strategy `json:"strategy"`
	Passes   int      `json:"passes"` // full or partial scans performed
	Swaps    int      `json:"swaps"`  // positions exchanged (scan-swap only)
	Moved    bool     `json:"moved"`  // final order differs from insertion order
}

// Option configures Reorder.
type Option func(*reorderConfig)

type reorderConfig struct {
	strategy Strategy
	maxSwaps int
	onPass   func(pass int)
}

// WithStrategy selects the reorder strategy.
func WithStrategy(s Strategy) Option {
	return func(c *reorderConfig) { c.strategy = s }
}

// WithMaxSwaps bounds the number of swaps. Zero or negative means
// DefaultMaxSwaps.
func WithMaxSwaps(n int) Option {
	return func(c *reorderConfig) {
		if n > 0 {
			c.maxSwaps = n
		}
	}
}

// WithPassHook registers a callback invoked at the start of every scan pass.
func WithPassHook(fn func(pass int)) Option {
	return func(c *reorderConfig) { c.onPass = fn }
}

// Reorder permutes the registry of s so that every stored declaration comes
// after the stored declarations it references.
//
// Cycles are detected before anything is moved: a cyclic session returns a
// *CycleError and keeps its insertion order. With StrategyScanSwap a
// *LimitError is returned if the fixpoint needs more than MaxSwaps swaps.
func Reorder(s *Session, opts ...Option) (Stats, error) {
	cfg := reorderConfig{strategy: StrategyScanSwap, maxSwaps: DefaultMaxSwaps}
	for _, opt := range opts {
		opt(&cfg)
	}

	stats := Stats{Strategy: cfg.strategy}

	if cycles := FindCycles(s); len(cycles) > 0 {
		return stats, &CycleError{Cycles: cycles}
	}

	before := s.Registry.Names()

	var err error
	switch cfg.strategy {
	case StrategyTopological:
		err = reorderTopological(s, &stats, cfg)
	default:
		err = reorderScanSwap(s, &stats, cfg)
	}

	stats.Moved = !slices.Equal(before, s.Registry.Names())
	return stats, err
}

// reorderScanSwap drives scanAndSwap to a fixpoint.
func reorderScanSwap(s *Session, stats *Stats, cfg reorderConfig) error {
	reg := s.Registry
	reg.rebuildIndex()

	for {
		stats.Passes++
		if cfg.onPass != nil {
			cfg.onPass(stats.Passes)
		}
		if !scanAndSwap(s) {
			return nil
		}
		stats.Swaps++
		if stats.Swaps >= cfg.maxSwaps {
			// One more scan decides whether the last swap reached the fixpoint.
			if violated(s) {
				return &LimitError{Swaps: stats.Swaps, MaxSwaps: cfg.maxSwaps}
			}
			return nil
		}
	}
}

// scanAndSwap finds the first ordered pair (x, y) where x depends on y but
// is placed before it, swaps the two, and returns true. Returns false when
// no such pair exists.
func scanAndSwap(s *Session) bool {
	reg := s.Registry
	for _, x := range reg.entries {
		for _, y := range reg.entries {
			if x.Name == y.Name {
				continue
			}
			if !s.Graph.HasEdge(x.Name, y.Name) {
				continue
			}
			px, py := reg.index[x.Name], reg.index[y.Name]
			if px < py {
				reg.swap(px, py)
				return true
			}
		}
	}
	return false
}

// violated reports whether any stored pair still breaks an edge.
func violated(s *Session) bool {
	return len(Verify(s)) > 0
}

// reorderTopological orders stored declarations with Kahn's algorithm.
// Among ready declarations the one with the lowest current position goes
// first, so independent declarations keep their relative order.
func reorderTopological(s *Session, stats *Stats, cfg reorderConfig) error {
	reg := s.Registry
	reg.rebuildIndex()
	names := reg.Names()
	graph := storedGraph(s)

	// dependents[referenced] = referencers waiting on it
	indeg := make(map[ir.DeclName]int, len(names))
	dependents := make(map[ir.DeclName][]ir.DeclName, len(names))
	for _, n := range names {
		indeg[n] = len(graph[n])
		for _, dep := range graph[n] {
			dependents[dep] = append(dependents[dep], n)
		}
	}

	placed := make(map[ir.DeclName]bool, len(names))
	order := make([]ir.DeclName, 0, len(names))
	for len(order) < len(names) {
		stats.Passes++
		if cfg.onPass != nil {
			cfg.onPass(stats.Passes)
		}

		next, ok := ir.DeclName(""), false
		for _, n := range names {
			if !placed[n] && indeg[n] == 0 {
				next, ok = n, true
				break
			}
		}
		if !ok {
			// Unreachable after FindCycles; kept so a bug cannot loop forever.
			return &CycleError{Cycles: FindCycles(s)}
		}

		placed[next] = true
		order = append(order, next)
		for _, d := range dependents[next] {
			indeg[d]--
		}
	}

	reg.permute(order)
	return nil
}

// Violation is an edge whose referenced declaration is placed after its
// referencer.
type Violation struct {
	Edge
	ReferencerPos int `json:"referencer_pos"`
	ReferencedPos int `json:"referenced_pos"`
}

// Verify lists every edge between stored, distinct declarations that the
// current order breaks. An empty result means the ordering contract holds.
func Verify(s *Session) []Violation {
	var out []Violation
	for _, e := range s.Graph.Edges() {
		if e.Referencer == e.Referenced {
			continue
		}
		pr, ok1 := s.Registry.Position(e.Referencer)
		pd, ok2 := s.Registry.Position(e.Referenced)
		if !ok1 || !ok2 {
			continue
		}
		if pd > pr {
			out = append(out, Violation{Edge: e, ReferencerPos: pr, ReferencedPos: pd})
		}
	}
	return out
}
