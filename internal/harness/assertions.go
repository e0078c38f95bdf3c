package harness

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"

	"github.com/roach88/querymix/internal/ir"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AssertionError is returned when an expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Case     int
	Query    string
	Field    string // expectation name, e.g. "ir" or "rows"
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "cases[%d] %q: %s mismatch\n", e.Case, e.Query, e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// evaluateCase checks a case result against its expectations.
func evaluateCase(index int, c Case, cr CaseResult) []error {
	var errs []error
	fail := func(field, expected, actual string) {
		errs = append(errs, &AssertionError{
			Case:     index,
			Query:    c.Query,
			Field:    field,
			Expected: expected,
			Actual:   actual,
		})
	}
	exp := c.Expect

	if exp.Error != "" || cr.Error != "" {
		if exp.Error != cr.Error {
			fail("error", orNone(exp.Error), orNone(cr.Error))
		}
		return errs
	}

	if exp.IR != nil && *exp.IR != cr.IR {
		fail("ir", *exp.IR, cr.IR)
	}
	if exp.Portable != nil && *exp.Portable != cr.Portable {
		fail("portable", fmt.Sprint(*exp.Portable), fmt.Sprintf("%v %v", cr.Portable, cr.Warnings))
	}
	if exp.Debug != nil && *exp.Debug != cr.Debug {
		fail("debug", fmt.Sprint(*exp.Debug), fmt.Sprint(cr.Debug))
	}
	for _, fragment := range exp.SQL {
		if !strings.Contains(cr.SQL, fragment) {
			fail("sql", "statement containing "+fragment, cr.SQL)
		}
	}
	if exp.Params != nil {
		if err := compareValues(exp.Params, cr.Params); err != nil {
			fail("params", fmt.Sprint(exp.Params), err.Error())
		}
	}
	if exp.Mongo != "" {
		if diff, err := jsonDiff(exp.Mongo, cr.Mongo); err != nil || diff != "" {
			fail("mongo", exp.Mongo, describe(cr.Mongo, diff, err))
		}
	}
	if exp.ES != "" {
		if diff, err := jsonDiff(exp.ES, cr.ES); err != nil || diff != "" {
			fail("es", exp.ES, describe(cr.ES, diff, err))
		}
	}
	if exp.Rows != nil {
		if err := compareIDs(exp.Rows, cr.Rows); err != nil {
			fail("rows", fmt.Sprint(exp.Rows), err.Error())
		}
	}
	if exp.Matches != nil {
		if err := compareIDs(exp.Matches, cr.Matches); err != nil {
			fail("matches", fmt.Sprint(exp.Matches), err.Error())
		}
	}
	return errs
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}

func describe(actual, diff string, err error) string {
	if err != nil {
		return fmt.Sprintf("%s (%v)", actual, err)
	}
	return fmt.Sprintf("%s\n  Diff (-want +got):\n%s", actual, diff)
}

// compareValues compares YAML-decoded values with driver values through
// their IR form, so 3 (int) and int64(3) are equal.
func compareValues(expected, actual []any) error {
	want, err := ir.FromNative(expected)
	if err != nil {
		return fmt.Errorf("expected: %w", err)
	}
	got, err := ir.FromNative(actual)
	if err != nil {
		return fmt.Errorf("actual: %w", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		return fmt.Errorf("%v (-want +got):\n%s", actual, diff)
	}
	return nil
}

func compareIDs(expected []any, actual ir.IRArray) error {
	got := make([]any, len(actual))
	for i, v := range actual {
		got[i] = v
	}
	return compareValues(expected, got)
}

// jsonDiff compares two JSON documents structurally.
func jsonDiff(expected, actual string) (string, error) {
	var want, got any
	if err := json.Unmarshal([]byte(expected), &want); err != nil {
		return "", fmt.Errorf("expected is not JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(actual), &got); err != nil {
		return "", fmt.Errorf("actual is not JSON: %w", err)
	}
	return cmp.Diff(want, got), nil
}
