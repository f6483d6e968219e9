package session

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/roach88/francagen/internal/ir"
)

// ErrorCode categorizes reorder errors.
type ErrorCode string

const (
	// ErrCodeCycleDetected indicates stored declarations depend on each other
	// in a cycle, so no valid order exists.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"

	// ErrCodeSwapLimit indicates the scan-and-swap fixpoint did not converge
	// within the configured number of swaps.
	ErrCodeSwapLimit ErrorCode = "SWAP_LIMIT"
)

// CycleError reports dependency cycles among stored declarations.
// Each cycle path starts and ends with the same name.
type CycleError struct {
	Cycles [][]ir.DeclName
}

func (e *CycleError) Error() string {
	paths := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		names := make([]string, len(c))
		for j, n := range c {
			names[j] = string(n)
		}
		paths[i] = strings.Join(names, " → ")
	}
	return fmt.Sprintf("%s: %d dependency cycle(s): %s", ErrCodeCycleDetected, len(e.Cycles), strings.Join(paths, "; "))
}

// LimitError reports that reordering gave up after MaxSwaps swaps.
type LimitError struct {
	Swaps    int
	MaxSwaps int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: reorder did not converge after %d swaps (limit %d)", ErrCodeSwapLimit, e.Swaps, e.MaxSwaps)
}

// IsCycleError returns true if err is or wraps a *CycleError.
func IsCycleError(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}

// IsLimitError returns true if err is or wraps a *LimitError.
func IsLimitError(err error) bool {
	var le *LimitError
	return errors.As(err, &le)
}
