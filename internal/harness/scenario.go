package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/semstore/internal/engine"
)

// Scenario defines a conformance scenario: batches merged or identified in
// order against a fresh store, with expectations per step, watcher
// subscriptions whose events are traced, and assertions on the final state.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// App is the application graphs are attributed to.
	App string `yaml:"app,omitempty"`

	// Mode is the identification mode: new (default), all or none.
	Mode string `yaml:"mode,omitempty"`

	// Ontology is CUE source extending the core vocabulary.
	Ontology string `yaml:"ontology,omitempty"`

	// OntologyDir is a directory of CUE files extending the core vocabulary.
	// Relative paths are resolved against the scenario file.
	OntologyDir string `yaml:"ontology_dir,omitempty"`

	// Prefixes extends the default namespaces for every step and assertion.
	Prefixes map[string]string `yaml:"prefixes,omitempty"`

	// Watches are subscriptions whose events are recorded in the trace.
	Watches []Watch `yaml:"watches,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and the final store state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Watch is a named watcher subscription.
type Watch struct {
	Name       string   `yaml:"name"`
	Resources  []string `yaml:"resources,omitempty"`
	Properties []string `yaml:"properties,omitempty"`
	Types      []string `yaml:"types,omitempty"`

	// Before is the 1-based step the subscription opens before. Default: 1.
	// Resource references must be bound by then.
	Before int `yaml:"before,omitempty"`
}

// Step merges or identifies one batch.
type Step struct {
	Merge    *Batch  `yaml:"merge,omitempty"`
	Identify *Batch  `yaml:"identify,omitempty"`
	Expect   *Expect `yaml:"expect,omitempty"`
}

// Expect checks the outcome of a step. Unset fields are not checked.
type Expect struct {
	// Error is the expected engine error code. Empty means success.
	Error string `yaml:"error,omitempty"`

	Created    *int  `yaml:"created,omitempty"`
	Inserted   *int  `yaml:"inserted,omitempty"`
	Removed    *int  `yaml:"removed,omitempty"`
	Duplicates *int  `yaml:"duplicates,omitempty"`
	Superseded *int  `yaml:"superseded,omitempty"`
	NewGraph   *bool `yaml:"new_graph,omitempty"`

	// Mapped and Unidentified apply to identify steps.
	Mapped       *int `yaml:"mapped,omitempty"`
	Unidentified *int `yaml:"unidentified,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "count": number of stored statements matching Pattern
	// - "events": number of traced events of Watch, optionally of Kind
	// - "values": exact value set of Subject's Property
	Type string `yaml:"type"`

	// Pattern is a subject, predicate, object triple; "*" matches anything
	// (used by count).
	Pattern []string `yaml:"pattern,omitempty"`

	// Count is the expected number of matches (used by count and events).
	Count int `yaml:"count"`

	// Watch and Kind select events (used by events).
	Watch string `yaml:"watch,omitempty"`
	Kind  string `yaml:"kind,omitempty"`

	// Subject, Property and Values describe a value set (used by values).
	Subject  string   `yaml:"subject,omitempty"`
	Property string   `yaml:"property,omitempty"`
	Values   []string `yaml:"values,omitempty"`
}

// Assertion type constants.
const (
	AssertCount  = "count"
	AssertEvents = "events"
	AssertValues = "values"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.OntologyDir != "" && !filepath.IsAbs(scenario.OntologyDir) {
		scenario.OntologyDir = filepath.Join(filepath.Dir(path), scenario.OntologyDir)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.Mode != "" {
		if _, err := engine.ParseMode(s.Mode); err != nil {
			return err
		}
	}
	if s.Ontology != "" && s.OntologyDir != "" {
		return fmt.Errorf("ontology and ontology_dir are mutually exclusive")
	}
	if s.OntologyDir != "" {
		if _, err := os.Stat(s.OntologyDir); err != nil {
			return fmt.Errorf("ontology directory not found: %s", s.OntologyDir)
		}
	}

	watches := make(map[string]bool, len(s.Watches))
	for i, w := range s.Watches {
		if w.Name == "" {
			return fmt.Errorf("watches[%d]: name is required", i)
		}
		if watches[w.Name] {
			return fmt.Errorf("watches[%d]: duplicate name %q", i, w.Name)
		}
		watches[w.Name] = true
		if len(w.Resources)+len(w.Properties)+len(w.Types) == 0 {
			return fmt.Errorf("watches[%d]: at least one of resources, properties and types is required", i)
		}
		if w.Before < 0 || w.Before > len(s.Steps) {
			return fmt.Errorf("watches[%d]: before must be between 1 and %d", i, len(s.Steps))
		}
	}

	for i, step := range s.Steps {
		if (step.Merge == nil) == (step.Identify == nil) {
			return fmt.Errorf("steps[%d]: exactly one of merge and identify is required", i)
		}
		if b := step.batch(); len(b.Resources) == 0 {
			return fmt.Errorf("steps[%d]: resources must be non-empty", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], watches); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, watches map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}

	switch a.Type {
	case AssertCount:
		if len(a.Pattern) != 3 {
			return fmt.Errorf("assertions[%d]: pattern must have three terms for count", index)
		}
	case AssertEvents:
		if !watches[a.Watch] {
			return fmt.Errorf("assertions[%d]: unknown watch %q", index, a.Watch)
		}
	case AssertValues:
		if a.Subject == "" || a.Property == "" {
			return fmt.Errorf("assertions[%d]: subject and property are required for values", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func (s Step) batch() *Batch {
	if s.Merge != nil {
		return s.Merge
	}
	return s.Identify
}

func (s Step) kind() string {
	if s.Merge != nil {
		return "merge"
	}
	return "identify"
}
