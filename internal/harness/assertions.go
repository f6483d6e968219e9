package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/francagen/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type      string
	Container string
	Expected  string
	Actual    string
	// Order is the container's declaration order, for context.
	Order []ir.DeclName
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s on %s\n", e.Type, e.Container)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Order) > 0 {
		fmt.Fprintf(&buf, "\nDeclaration order:\n")
		for i, n := range e.Order {
			fmt.Fprintf(&buf, "  [%d] %s\n", i, n)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns one
// message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %s", i, err.Error()))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	c, ok := result.Container(a.Container)
	if !ok {
		return &AssertionError{
			Type:      a.Type,
			Container: a.Container,
			Expected:  "container present",
			Actual:    fmt.Sprintf("not found among %s", result.ContainerNames()),
		}
	}

	switch a.Type {
	case AssertPrecedes:
		return assertPrecedes(c, a)
	case AssertOrder:
		return assertOrder(c, a)
	case AssertCount:
		return assertCount(c, a)
	case AssertDuplicates:
		return assertDuplicates(c, a)
	case AssertOrdered:
		return assertOrdered(c, a)
	case AssertCycle:
		return assertCycle(c, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func fail(c *ContainerOutcome, a Assertion, expected, actual string) error {
	return &AssertionError{
		Type:      a.Type,
		Container: c.QualifiedName(),
		Expected:  expected,
		Actual:    actual,
		Order:     c.Declarations,
	}
}

// assertPrecedes checks both names are stored and Before comes first.
func assertPrecedes(c *ContainerOutcome, a Assertion) error {
	if c.Error != "" {
		return fail(c, a, "container ordered", c.Error)
	}
	pb, ok := c.Position(ir.DeclName(a.Before))
	if !ok {
		return fail(c, a, fmt.Sprintf("%s stored", a.Before), "not stored")
	}
	pa, ok := c.Position(ir.DeclName(a.After))
	if !ok {
		return fail(c, a, fmt.Sprintf("%s stored", a.After), "not stored")
	}
	if pb >= pa {
		return fail(c, a,
			fmt.Sprintf("%s before %s", a.Before, a.After),
			fmt.Sprintf("%s at %d, %s at %d", a.Before, pb, a.After, pa))
	}
	return nil
}

func assertOrder(c *ContainerOutcome, a Assertion) error {
	got := names(c.Declarations)
	if !slices.Equal(got, a.Names) {
		return fail(c, a, strings.Join(a.Names, ", "), strings.Join(got, ", "))
	}
	return nil
}

func assertCount(c *ContainerOutcome, a Assertion) error {
	if len(c.Declarations) != a.Count {
		return fail(c, a, fmt.Sprintf("%d declarations", a.Count), fmt.Sprintf("%d declarations", len(c.Declarations)))
	}
	return nil
}

// assertDuplicates compares the dropped names in drop order. An empty Names
// list asserts nothing was dropped.
func assertDuplicates(c *ContainerOutcome, a Assertion) error {
	got := names(c.Duplicates)
	if !slices.Equal(got, a.Names) && (len(got) > 0 || len(a.Names) > 0) {
		return fail(c, a, "duplicates ["+strings.Join(a.Names, ", ")+"]", "duplicates ["+strings.Join(got, ", ")+"]")
	}
	return nil
}

func assertOrdered(c *ContainerOutcome, a Assertion) error {
	if c.Error != "" {
		return fail(c, a, "container ordered", c.Error)
	}
	return nil
}

// assertCycle checks that one reported cycle visits exactly Names, in any
// rotation.
func assertCycle(c *ContainerOutcome, a Assertion) error {
	if len(c.Cycles) == 0 {
		return fail(c, a, "cycle over "+strings.Join(a.Names, ", "), "no cycle")
	}
	want := slices.Clone(a.Names)
	slices.Sort(want)
	var seen []string
	for _, cycle := range c.Cycles {
		members := names(cycle)
		if len(members) > 1 && members[0] == members[len(members)-1] {
			members = members[:len(members)-1]
		}
		slices.Sort(members)
		if slices.Equal(members, want) {
			return nil
		}
		seen = append(seen, "["+strings.Join(members, ", ")+"]")
	}
	return fail(c, a, "cycle over ["+strings.Join(want, ", ")+"]", "cycles "+strings.Join(seen, "; "))
}

func names(in []ir.DeclName) []string {
	out := make([]string, len(in))
	for i, n := range in {
		out[i] = string(n)
	}
	return out
}
