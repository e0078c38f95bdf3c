package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/querymix/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                     `json:"valid"`
	Entities []EntitySummary          `json:"entities,omitempty"`
	Errors   []schema.ValidationError `json:"errors,omitempty"`
}

// EntitySummary describes one entity of a valid schema.
type EntitySummary struct {
	Name   string   `json:"name"`
	Table  string   `json:"table"`
	Fields int      `json:"fields"`
	Search []string `json:"search,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema>",
		Short: "Validate a schema descriptor",
		Long: `Validate a YAML or CUE schema descriptor.

Checks field types, enum members, reference targets and search fields
and reports every problem found.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	formatter.VerboseLog("Loading schema %s", path)
	registry, err := schema.Load(path)
	if err != nil {
		exitCode := ExitFailure
		var loadErr *schema.LoadError
		if errors.As(err, &loadErr) && loadErr.Code == schema.ErrCodeNotFound {
			exitCode = ExitCommandError
		}
		return fail(formatter, exitCode, ErrCodeSchema, err.Error(), nil)
	}

	for _, name := range registry.Names() {
		formatter.VerboseLog("Validating entity: %s", name)
	}

	if errs := schema.Validate(registry); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}
	return outputValidateSuccess(formatter, summarize(registry))
}

func summarize(r *schema.Registry) []EntitySummary {
	out := make([]EntitySummary, 0, len(r.Names()))
	for _, name := range r.Names() {
		e := r.Entity(name)
		s := EntitySummary{Name: e.Name, Table: e.TableName(), Fields: len(e.Fields)}
		for _, spec := range e.Search {
			s.Search = append(s.Search, fmt.Sprintf("%s(%s)", spec.Field, spec.Mode))
		}
		out = append(out, s)
	}
	return out
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, entities []EntitySummary) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Entities: entities})
	}

	fmt.Fprintf(formatter.Writer, "✓ Schema valid: %d entity(ies)\n", len(entities))
	for _, e := range entities {
		fmt.Fprintf(formatter.Writer, "  %s (table %s): %d field(s)", e.Name, e.Table, e.Fields)
		if len(e.Search) > 0 {
			fmt.Fprintf(formatter.Writer, ", search %v", e.Search)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}

// outputValidationErrors outputs every validation error.
func outputValidationErrors(formatter *OutputFormatter, errs []schema.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := json.NewEncoder(formatter.Writer).Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n", e.Code, e.Field, e.Message)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
