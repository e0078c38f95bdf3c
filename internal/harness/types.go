package harness

import "github.com/roach88/querymix/internal/ir"

// CaseResult holds everything one query compiled to.
type CaseResult struct {
	Query    string   `json:"query"`
	Entity   string   `json:"entity"`
	IR       string   `json:"ir"`
	Portable bool     `json:"portable"`
	Warnings []string `json:"warnings,omitempty"`
	Debug    bool     `json:"debug"`
	SQL      string   `json:"sql,omitempty"`
	Params   []any    `json:"params,omitempty"`
	Mongo    string   `json:"mongo,omitempty"`
	ES       string   `json:"es,omitempty"`

	// Error is the input error code when compilation was rejected.
	Error string `json:"error,omitempty"`

	// Rows and Matches are nil when the scenario seeds no rows.
	Rows    ir.IRArray `json:"rows,omitempty"`
	Matches ir.IRArray `json:"matches,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if all expectations match.
	Pass bool `json:"pass"`

	Cases []CaseResult `json:"cases"`

	// Errors contains failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
