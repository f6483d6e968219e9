package harness

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/francagen/internal/model"
	"github.com/roach88/francagen/internal/session"
)

// Scenario defines an ordering conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Models lists model files to load. Relative paths are resolved from
	// the scenario file's directory.
	Models []string `yaml:"models,omitempty"`

	// Model is an inline YAML model, loaded after Models.
	Model string `yaml:"model,omitempty"`

	// Strategy selects the reorder strategy. Empty means scan-swap.
	Strategy string `yaml:"strategy,omitempty"`

	// MaxSwaps bounds scan-swap. Zero means the default bound.
	MaxSwaps int `yaml:"max_swaps,omitempty"`

	// Assertions validate the rendered containers.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one container outcome.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Container is a bare container name or package.container.
	Container string `yaml:"container"`

	// Before and After are used by precedes.
	Before string `yaml:"before,omitempty"`
	After  string `yaml:"after,omitempty"`

	// Names is the expected list for order, duplicates and cycle.
	Names []string `yaml:"names,omitempty"`

	// Count is the expected number of stored declarations (count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	// AssertPrecedes checks Before is stored ahead of After.
	AssertPrecedes = "precedes"
	// AssertOrder checks the exact declaration order.
	AssertOrder = "order"
	// AssertCount checks the number of stored declarations.
	AssertCount = "count"
	// AssertDuplicates checks which duplicate names were dropped.
	AssertDuplicates = "duplicates"
	// AssertOrdered checks the container rendered without error.
	AssertOrdered = "ordered"
	// AssertCycle checks the container failed with a cycle over Names.
	AssertCycle = "cycle"
)

var assertionTypes = []string{AssertPrecedes, AssertOrder, AssertCount, AssertDuplicates, AssertOrdered, AssertCycle}

// LoadScenario reads and parses a scenario YAML file, resolving model paths
// relative to the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file, resolving
// relative model paths against basePath.
// Unknown fields are rejected so typos surface as errors.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario file")
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML")
	}

	for i, p := range scenario.Models {
		if !filepath.IsAbs(p) && basePath != "" {
			scenario.Models[i] = filepath.Join(basePath, p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, errors.Wrap(err, "invalid scenario")
	}
	return &scenario, nil
}

// FindScenarios returns every .yaml and .yml file directly under dir in
// lexical order.
func FindScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "reading scenario directory")
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Description == "" {
		return errors.New("description is required")
	}
	if len(s.Models) == 0 && s.Model == "" {
		return errors.New("models list or inline model is required")
	}
	if len(s.Assertions) == 0 {
		return errors.New("assertions list is required and must be non-empty")
	}
	if _, err := session.ParseStrategy(s.Strategy); err != nil {
		return err
	}
	if s.MaxSwaps < 0 {
		return errors.New("max_swaps must be non-negative")
	}

	for _, p := range s.Models {
		if _, ok := model.FormatOf(p); !ok {
			return errors.Newf("model file %s is neither CUE nor YAML", p)
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return errors.Newf("model file not found: %s", p)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return errors.Newf("assertions[%d]: type is required", index)
	}
	if !slices.Contains(assertionTypes, a.Type) {
		return errors.Newf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	if a.Container == "" {
		return errors.Newf("assertions[%d]: container is required", index)
	}

	switch a.Type {
	case AssertPrecedes:
		if a.Before == "" || a.After == "" {
			return errors.Newf("assertions[%d]: before and after are required for precedes", index)
		}
	case AssertOrder, AssertCycle:
		if len(a.Names) == 0 {
			return errors.Newf("assertions[%d]: names list is required for %s", index, a.Type)
		}
	case AssertCount:
		if a.Count < 0 {
			return errors.Newf("assertions[%d]: count must be non-negative", index)
		}
	}
	return nil
}
