package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/query"
	"github.com/roach88/querymix/internal/querysql"
	"github.com/roach88/querymix/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Schema   string
	Entity   string
	Rows     string // optional YAML seed file
	Now      string

	// TraceGenerator overrides the trace id source for debug queries (for testing).
	// If nil, defaults to UUIDv7Generator.
	TraceGenerator TraceGenerator
}

// RunResult is the payload of a successful run.
type RunResult struct {
	Query  string           `json:"query"`
	Entity string           `json:"entity"`
	SQL    string           `json:"sql"`
	Params []any            `json:"params"`
	Count  int              `json:"count"`
	Rows   []map[string]any `json:"rows"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <query>",
		Short: "Execute a query against a SQLite database",
		Long: `Compile a query to SQL and execute it against a SQLite database.

Tables for every entity of the schema are created if missing. Rows from
--rows (a YAML file mapping entity names to row lists) are inserted
before the query runs; rows whose id already exists are skipped.

Example:
  querymix run --db ./tasks.db --schema tasks.yaml --entity task "status:open"
  querymix run --db ./tasks.db --schema tasks.yaml --entity task --rows seed.yaml "prio>=3"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "path to schema descriptor (.yaml or .cue)")
	cmd.Flags().StringVar(&opts.Entity, "entity", "", "entity the query runs against")
	cmd.Flags().StringVar(&opts.Rows, "rows", "", "YAML file with rows to insert first")
	cmd.Flags().StringVar(&opts.Now, "now", "", "pin the current time (RFC3339)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}

func runQuery(opts *RunOptions, q string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	clock, err := parseClock(opts.Now)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	target, err := loadTarget(formatter, opts.Schema, opts.Entity)
	if err != nil {
		return err
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	if err := st.CreateTables(ctx, target.Registry); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeDatabase, fmt.Sprintf("failed to create tables: %v", err), nil)
	}
	if opts.Rows != "" {
		if err := seedRows(ctx, st, target, opts.Rows, logger); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeRows, err.Error(), nil)
		}
	}

	factory := querysql.NewFactory(target.Registry, target.Entity)
	res, err := query.New[querysql.Condition](factory, target.Entity,
		query.WithClock(clock),
		query.WithLogger(logger),
		query.WithNestedResolver(querysql.NestedResolver(target.Registry)),
	).WithTags(query.DefaultTags[querysql.Condition]()).Compile(q)
	if err != nil {
		return queryError(formatter, err)
	}
	traceID := traceDebugQuery(logger, opts.TraceGenerator, res.Debugging, target.Entity.Name, q)

	sqlText, params, err := factory.Compile(res)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	logger.Debug("executing query", "sql", sqlText, "params", len(params))

	rows, err := st.Find(ctx, target.Entity, sqlText, params)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeDatabase, fmt.Sprintf("query failed: %v", err), nil)
	}

	result := RunResult{
		Query:  q,
		Entity: target.Entity.Name,
		SQL:    sqlText,
		Params: params,
		Count:  len(rows),
		Rows:   make([]map[string]any, 0, len(rows)),
	}
	if result.Params == nil {
		result.Params = []any{}
	}
	for _, row := range rows {
		result.Rows = append(result.Rows, rowToMap(row))
	}

	if formatter.Format == "json" {
		return formatter.SuccessWithTrace(result, traceID)
	}
	return outputRunText(formatter, rows, traceID)
}

// seedRows inserts the rows of a seed file in entity name order.
func seedRows(ctx context.Context, st *store.Store, target *Target, path string, logger *slog.Logger) error {
	rows, err := loadRows(path)
	if err != nil {
		return fmt.Errorf("failed to load rows: %w", err)
	}

	names := make([]string, 0, len(rows))
	for name := range rows {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entity, err := target.Registry.MustEntity(name)
		if err != nil {
			return err
		}
		if err := st.Insert(ctx, entity, rows[name]...); err != nil {
			return fmt.Errorf("failed to insert %s rows: %w", name, err)
		}
		logger.Debug("rows inserted", "entity", name, "count", len(rows[name]))
	}
	return nil
}

// rowToMap converts a stored row for JSON output.
// Temporal values keep their kind's textual form.
func rowToMap(row ir.IRObject) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if t, ok := v.(ir.IRTime); ok {
			out[k] = t.String()
			continue
		}
		n, err := ir.Native(v)
		if err != nil {
			out[k] = ir.Format(v)
			continue
		}
		out[k] = n
	}
	return out
}

func outputRunText(f *OutputFormatter, rows []ir.IRObject, traceID string) error {
	for _, row := range rows {
		data, err := ir.MarshalCanonical(row)
		if err != nil {
			return err
		}
		fmt.Fprintln(f.Writer, string(data))
	}
	fmt.Fprintf(f.Writer, "%d row(s)\n", len(rows))
	if traceID != "" {
		fmt.Fprintf(f.Writer, "trace: %s\n", traceID)
	}
	return nil
}
