package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a query scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the descriptor file (.yaml, .yml or .cue).
	// Relative paths are resolved against the scenario file location.
	Schema string `yaml:"schema"`

	// Entity is the default entity queries run against.
	Entity string `yaml:"entity"`

	// Now pins the clock (RFC 3339). Empty means the real clock.
	Now string `yaml:"now,omitempty"`

	// Rows are seeded into SQLite before the cases run, keyed by entity name.
	Rows map[string][]map[string]any `yaml:"rows,omitempty"`

	// Cases are the queries to compile.
	Cases []Case `yaml:"cases"`
}

// Case is one query and its expectations.
type Case struct {
	Query string `yaml:"query"`

	// Entity overrides the scenario entity for this case.
	Entity string `yaml:"entity,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect lists the expected compilation outputs. Unset fields are not checked.
type Expect struct {
	IR       *string  `yaml:"ir,omitempty"`
	Portable *bool    `yaml:"portable,omitempty"`
	SQL      []string `yaml:"sql,omitempty"`
	Params   []any    `yaml:"params,omitempty"`
	Mongo    string   `yaml:"mongo,omitempty"`
	ES       string   `yaml:"es,omitempty"`
	Error    string   `yaml:"error,omitempty"`
	Debug    *bool    `yaml:"debug,omitempty"`
	Rows     []any    `yaml:"rows,omitempty"`
	Matches  []any    `yaml:"matches,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos)
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the schema path relative to the scenario BEFORE validation
	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) {
		scenario.Schema = filepath.Join(filepath.Dir(path), scenario.Schema)
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
	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
		return fmt.Errorf("schema file not found: %s", s.Schema)
	}
	if s.Entity == "" {
		return fmt.Errorf("entity is required")
	}
	if s.Now != "" {
		if _, err := time.Parse(time.RFC3339, s.Now); err != nil {
			return fmt.Errorf("now: %w", err)
		}
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}
	for i, c := range s.Cases {
		if c.Expect.Error != "" && (c.Expect.IR != nil || c.Expect.Rows != nil || c.Expect.Matches != nil) {
			return fmt.Errorf("cases[%d]: error cannot be combined with output expectations", i)
		}
	}
	return nil
}
