package harness

import (
	"strings"

	"github.com/roach88/francagen/internal/ir"
	"github.com/roach88/francagen/internal/session"
)

// ContainerOutcome is what rendering one container's types header produced.
type ContainerOutcome struct {
	Package   string `json:"package"`
	Container string `json:"container"`
	Kind      string `json:"kind"`

	// Declarations lists stored declarations in final order.
	Declarations []ir.DeclName `json:"declarations"`
	Duplicates   []ir.DeclName `json:"duplicates,omitempty"`

	// Cycles is set when the container could not be ordered.
	Cycles [][]ir.DeclName `json:"cycles,omitempty"`

	Stats *session.Stats `json:"stats,omitempty"`
	Error string         `json:"error,omitempty"`
}

// QualifiedName returns package.container.
func (o *ContainerOutcome) QualifiedName() string {
	return o.Package + "." + o.Container
}

// Position returns the index of name in Declarations.
func (o *ContainerOutcome) Position(name ir.DeclName) (int, bool) {
	for i, n := range o.Declarations {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Containers in model order.
	Containers []ContainerOutcome `json:"containers"`

	// Errors holds one message per failed assertion.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Containers: []ContainerOutcome{},
		Errors:     []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Container finds an outcome by bare container name or by
// package.container. A bare name matching more than one package returns the
// first.
func (r *Result) Container(name string) (*ContainerOutcome, bool) {
	for i := range r.Containers {
		c := &r.Containers[i]
		if c.Container == name || c.QualifiedName() == name {
			return c, true
		}
	}
	return nil, false
}

// ContainerNames lists every container as package.container.
func (r *Result) ContainerNames() string {
	names := make([]string, len(r.Containers))
	for i := range r.Containers {
		names[i] = r.Containers[i].QualifiedName()
	}
	return strings.Join(names, ", ")
}
