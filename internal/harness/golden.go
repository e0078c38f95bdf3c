package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/querymix/internal/ir"
)

// Snapshot captures the backend-neutral outputs of a scenario run.
// SQL text is left out: its exact shape belongs to the SQL builder and is
// checked with sql fragments instead.
type Snapshot struct {
	ScenarioName string
	Cases        []CaseResult
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
func (s *Snapshot) toCanonicalMap() map[string]any {
	cases := make([]any, len(s.Cases))
	for i, c := range s.Cases {
		m := map[string]any{
			"query":  c.Query,
			"entity": c.Entity,
		}
		if c.Error != "" {
			m["error"] = c.Error
			cases[i] = m
			continue
		}
		m["ir"] = c.IR
		m["portable"] = c.Portable
		m["debug"] = c.Debug
		m["mongo"] = c.Mongo
		m["es"] = c.ES
		if len(c.Warnings) > 0 {
			m["warnings"] = c.Warnings
		}
		if c.Rows != nil {
			m["rows"] = c.Rows
		}
		if c.Matches != nil {
			m["matches"] = c.Matches
		}
		cases[i] = m
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"cases":         cases,
	}
}

// RunWithGolden executes a scenario and compares its outputs against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the outputs don't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := GoldenBytes(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}

// GoldenBytes returns the canonical JSON snapshot of a result, as stored in
// golden files.
func GoldenBytes(scenarioName string, result *Result) ([]byte, error) {
	snapshot := Snapshot{
		ScenarioName: scenarioName,
		Cases:        result.Cases,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}
