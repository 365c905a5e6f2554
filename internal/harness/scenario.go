package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a reducer conformance scenario.
// Setup establishes the starting state; Flow is the sequence under test, and
// Assertions are checked against the state Flow leaves behind.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup actions are reduced before the flow and are not traced.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow actions are reduced in order and traced.
	Flow []Step `yaml:"flow"`

	Assertions []Assertion `yaml:"assertions"`
}

// Step is one dispatched action in wire form.
type Step struct {
	// Action is the action type (e.g., "ADD_SUPERMARKET_PRODUCT").
	Action string `yaml:"action"`

	// Payload is the action payload. It is re-encoded as JSON and decoded by
	// the reducer exactly as a dispatched envelope would be.
	Payload map[string]any `yaml:"payload,omitempty"`

	// Expect optionally checks the outcome of this step.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected step behavior.
type ExpectClause struct {
	// Changed asserts whether the step produced a new state. False means
	// the reducer must return its input unchanged.
	Changed *bool `yaml:"changed,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "ledger_balanced": every journal's debits equal its credits
	// - "stock_consistent": stock deltas are matched by movements
	// - "count": the collection at Path has Count elements
	// - "field": the value at Path equals Expect
	Type string `yaml:"type"`

	// Company limits ledger_balanced and stock_consistent to one tenant.
	Company string `yaml:"company,omitempty"`

	// Product limits stock_consistent to one product.
	Product string `yaml:"product,omitempty"`

	// Stock is the expected on-hand quantity by branch (stock_consistent).
	Stock map[string]any `yaml:"stock,omitempty"`

	// Path addresses a value in the state's JSON form (count, field).
	Path string `yaml:"path,omitempty"`

	// Count is the expected length (count).
	Count *int `yaml:"count,omitempty"`

	// Expect is the expected value (field).
	Expect any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertLedgerBalanced  = "ledger_balanced"
	AssertStockConsistent = "stock_consistent"
	AssertCount           = "count"
	AssertField           = "field"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// payload re-encodes the step payload for the reducer's decoder.
func (s Step) payload() (json.RawMessage, error) {
	if s.Payload == nil {
		return nil, nil
	}
	return json.Marshal(s.Payload)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if step.Action == "" {
			return fmt.Errorf("setup[%d]: action is required", i)
		}
	}
	for i, step := range s.Flow {
		if step.Action == "" {
			return fmt.Errorf("flow[%d]: action is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertLedgerBalanced:
	case AssertStockConsistent:
		if a.Product != "" && a.Company == "" {
			return fmt.Errorf("assertions[%d]: company is required when product is set", index)
		}
		if len(a.Stock) > 0 && a.Product == "" {
			return fmt.Errorf("assertions[%d]: product is required when stock is set", index)
		}
	case AssertCount:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for count", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for count", index)
		}
	case AssertField:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for field", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
