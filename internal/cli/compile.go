package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coder/quartz"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/query"
	"github.com/roach88/querymix/internal/queryes"
	"github.com/roach88/querymix/internal/queryir"
	"github.com/roach88/querymix/internal/querymongo"
	"github.com/roach88/querymix/internal/querysql"
)

// Backend names accepted by --backend.
const (
	BackendIR    = "ir"
	BackendSQL   = "sql"
	BackendMongo = "mongo"
	BackendES    = "es"
)

// ValidBackends lists the accepted --backend values.
var ValidBackends = []string{BackendIR, BackendSQL, BackendMongo, BackendES}

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Schema  string
	Entity  string
	Backend string
	Now     string // RFC3339 instant temporal deltas resolve against

	// TraceGenerator overrides the trace id source for debug queries (for testing).
	// If nil, defaults to UUIDv7Generator.
	TraceGenerator TraceGenerator
}

// CompileResult is the payload of a successful compile.
type CompileResult struct {
	Query       string   `json:"query"`
	Entity      string   `json:"entity"`
	Backend     string   `json:"backend"`
	Output      string   `json:"output"`
	Params      []any    `json:"params,omitempty"`
	Portable    *bool    `json:"portable,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Debug       bool     `json:"debug"`
	Fingerprint string   `json:"fingerprint"`

	// ConstraintFingerprint is equal for queries that compile to the same
	// backend output.
	ConstraintFingerprint string `json:"constraint_fingerprint"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query>",
		Short: "Compile a query for one backend",
		Long: `Compile a textual query against an entity of a schema and print the
constraint for the selected backend.

Backends:
  ir     - backend-neutral constraint tree
  sql    - parameterized SQLite SELECT statement
  mongo  - MongoDB filter document (relaxed extended JSON)
  es     - Elasticsearch query body

Examples:
  querymix compile --schema tasks.yaml --entity task "status:open due<-3d"
  querymix compile --schema tasks.yaml --entity task --backend sql "prio>=3"
  querymix compile --schema tasks.yaml --entity task --backend es "?? parser"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "path to schema descriptor (.yaml or .cue)")
	cmd.Flags().StringVar(&opts.Entity, "entity", "", "entity the query runs against")
	cmd.Flags().StringVar(&opts.Backend, "backend", BackendIR, "output backend (ir|sql|mongo|es)")
	cmd.Flags().StringVar(&opts.Now, "now", "", "pin the current time (RFC3339)")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}

func runCompile(opts *CompileOptions, q string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if !isValidBackend(opts.Backend) {
		return fail(formatter, ExitCommandError, ErrCodeBackend,
			fmt.Sprintf("invalid backend %q: must be one of %v", opts.Backend, ValidBackends), nil)
	}
	clock, err := parseClock(opts.Now)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	target, err := loadTarget(formatter, opts.Schema, opts.Entity)
	if err != nil {
		return err
	}

	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	result, debugging, err := compileQuery(target, opts.Backend, q, clock, logger)
	if err != nil {
		return queryError(formatter, err)
	}

	traceID := traceDebugQuery(logger, opts.TraceGenerator, debugging, target.Entity.Name, q)
	if formatter.Format == "json" {
		return formatter.SuccessWithTrace(result, traceID)
	}
	return outputCompileText(formatter, result, traceID)
}

// compileQuery compiles q with the factory of backend.
// The second return reports whether the query carried the "??" prefix.
func compileQuery(target *Target, backend, q string, clock quartz.Clock, logger *slog.Logger) (*CompileResult, bool, error) {
	entity := target.Entity
	opts := []query.Option{query.WithClock(clock), query.WithLogger(logger)}
	joined := append(opts, query.WithNestedResolver(querysql.NestedResolver(target.Registry)))

	result := &CompileResult{Query: q, Entity: entity.Name, Backend: backend}

	var debugging bool
	switch backend {
	case BackendIR:
		res, err := query.New[queryir.Node](queryir.NewFactory(), entity, joined...).
			WithTags(query.DefaultTags[queryir.Node]()).
			Compile(q)
		if err != nil {
			return nil, false, err
		}
		validation := queryir.Validate(res.Constraint)
		result.Output = queryir.Format(res.Constraint)
		result.Portable = &validation.IsPortable
		result.Warnings = validation.Warnings
		debugging = res.Debugging

	case BackendSQL:
		factory := querysql.NewFactory(target.Registry, entity)
		res, err := query.New[querysql.Condition](factory, entity, joined...).
			WithTags(query.DefaultTags[querysql.Condition]()).
			Compile(q)
		if err != nil {
			return nil, false, err
		}
		if result.Output, result.Params, err = factory.Compile(res); err != nil {
			return nil, false, err
		}
		debugging = res.Debugging

	case BackendMongo:
		res, err := query.New[bson.D](querymongo.NewFactory(), entity, opts...).
			WithTags(query.DefaultTags[bson.D]()).
			Compile(q)
		if err != nil {
			return nil, false, err
		}
		if result.Output, err = querymongo.Render(querymongo.Filter(res)); err != nil {
			return nil, false, err
		}
		debugging = res.Debugging

	case BackendES:
		res, err := query.New[queryes.Query](queryes.NewFactory(), entity, opts...).
			WithTags(query.DefaultTags[queryes.Query]()).
			Compile(q)
		if err != nil {
			return nil, false, err
		}
		if result.Output, err = queryes.Render(queryes.Body(res)); err != nil {
			return nil, false, err
		}
		debugging = res.Debugging

	default:
		return nil, false, fmt.Errorf("invalid backend %q", backend)
	}

	result.Debug = debugging
	result.Fingerprint = ir.QueryFingerprint(entity.Name, q)
	fp, err := ir.Fingerprint(ir.DomainConstraint, ir.IRObject{
		"backend": ir.IRString(backend),
		"output":  ir.IRString(result.Output),
	})
	if err != nil {
		return nil, false, err
	}
	result.ConstraintFingerprint = fp
	return result, debugging, nil
}

// queryError reports a compile failure. Input errors are the user's to fix
// and exit with ExitFailure; anything else is a command error.
func queryError(f *OutputFormatter, err error) error {
	var inputErr *query.InputError
	if errors.As(err, &inputErr) {
		return fail(f, ExitFailure, inputErr.Code, inputErr.Message, map[string]string{"token": inputErr.Token})
	}
	return fail(f, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}

func outputCompileText(f *OutputFormatter, r *CompileResult, traceID string) error {
	fmt.Fprintln(f.Writer, r.Output)
	if len(r.Params) > 0 {
		params := make([]string, len(r.Params))
		for i, p := range r.Params {
			params[i] = fmt.Sprintf("%v", p)
		}
		fmt.Fprintf(f.Writer, "params: [%s]\n", strings.Join(params, ", "))
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(f.Writer, "warning: %s\n", w)
	}
	if traceID != "" {
		fmt.Fprintf(f.Writer, "trace: %s\n", traceID)
	}
	return nil
}

func isValidBackend(backend string) bool {
	for _, b := range ValidBackends {
		if b == backend {
			return true
		}
	}
	return false
}
