package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/coder/quartz"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/query"
	"github.com/roach88/querymix/internal/queryes"
	"github.com/roach88/querymix/internal/queryir"
	"github.com/roach88/querymix/internal/querymongo"
	"github.com/roach88/querymix/internal/querysql"
	"github.com/roach88/querymix/internal/schema"
	"github.com/roach88/querymix/internal/store"
)

// Harness is the scenario execution engine.
// It compiles every case with each backend against one registry and store.
type Harness struct {
	registry *schema.Registry
	store    *store.Store
	clock    quartz.Clock
	logger   *slog.Logger
	seeded   bool
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load and validate the descriptor file
// 2. Create tables and seed rows
// 3. Compile every case with the IR, SQL, MongoDB and Elasticsearch factories
// 4. Execute SQL and in-memory matching when rows were seeded
// 5. Return result with pass/fail, outputs, and errors
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with compiler logs sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	registry, err := schema.Load(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	if errs := schema.Validate(registry); len(errs) > 0 {
		return nil, fmt.Errorf("invalid schema: %w", errs[0])
	}

	var clock quartz.Clock = quartz.NewReal()
	if scenario.Now != "" {
		now, err := time.Parse(time.RFC3339, scenario.Now)
		if err != nil {
			return nil, fmt.Errorf("invalid now: %w", err)
		}
		clock = query.PinnedClock(now)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		registry: registry,
		store:    st,
		clock:    clock,
		logger:   logger,
	}

	ctx := context.Background()
	if err := h.seed(ctx, scenario.Rows); err != nil {
		return nil, fmt.Errorf("failed to seed rows: %w", err)
	}

	result := NewResult()
	for i, c := range scenario.Cases {
		entityName := c.Entity
		if entityName == "" {
			entityName = scenario.Entity
		}
		cr, err := h.runCase(ctx, entityName, c.Query)
		if err != nil {
			return nil, fmt.Errorf("cases[%d] %q: %w", i, c.Query, err)
		}
		result.Cases = append(result.Cases, cr)
		for _, e := range evaluateCase(i, c, cr) {
			result.AddError(e.Error())
		}
	}
	return result, nil
}

func (h *Harness) seed(ctx context.Context, rows map[string][]map[string]any) error {
	if err := h.store.CreateTables(ctx, h.registry); err != nil {
		return err
	}

	names := make([]string, 0, len(rows))
	for name := range rows {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entity, err := h.registry.MustEntity(name)
		if err != nil {
			return err
		}
		objs := make([]ir.IRObject, 0, len(rows[name]))
		for i, raw := range rows[name] {
			v, err := ir.FromNative(map[string]any(raw))
			if err != nil {
				return fmt.Errorf("%s row %d: %w", name, i, err)
			}
			objs = append(objs, v.(ir.IRObject))
		}
		if err := h.store.Insert(ctx, entity, objs...); err != nil {
			return err
		}
		h.seeded = true
	}
	return nil
}

func (h *Harness) runCase(ctx context.Context, entityName, q string) (CaseResult, error) {
	cr := CaseResult{Query: q, Entity: entityName}

	entity, err := h.registry.MustEntity(entityName)
	if err != nil {
		return cr, err
	}

	opts := []query.Option{query.WithClock(h.clock), query.WithLogger(h.logger)}
	joined := append(opts, query.WithNestedResolver(querysql.NestedResolver(h.registry)))

	tree, err := query.New[queryir.Node](queryir.NewFactory(), entity, joined...).
		WithTags(query.DefaultTags[queryir.Node]()).
		Compile(q)
	if err != nil {
		var inputErr *query.InputError
		if errors.As(err, &inputErr) {
			cr.Error = inputErr.Code
			return cr, nil
		}
		return cr, err
	}
	cr.IR = queryir.Format(tree.Constraint)
	cr.Debug = tree.Debugging
	validation := queryir.Validate(tree.Constraint)
	cr.Portable = validation.IsPortable
	if !validation.IsPortable {
		cr.Warnings = validation.Warnings
	}

	sqlFactory := querysql.NewFactory(h.registry, entity)
	cond, err := query.New[querysql.Condition](sqlFactory, entity, joined...).
		WithTags(query.DefaultTags[querysql.Condition]()).
		Compile(q)
	if err != nil {
		return cr, err
	}
	if cr.SQL, cr.Params, err = sqlFactory.Compile(cond); err != nil {
		return cr, err
	}

	filter, err := query.New[bson.D](querymongo.NewFactory(), entity, opts...).
		WithTags(query.DefaultTags[bson.D]()).
		Compile(q)
	if err != nil {
		return cr, err
	}
	if cr.Mongo, err = querymongo.Render(querymongo.Filter(filter)); err != nil {
		return cr, err
	}

	body, err := query.New[queryes.Query](queryes.NewFactory(), entity, opts...).
		WithTags(query.DefaultTags[queryes.Query]()).
		Compile(q)
	if err != nil {
		return cr, err
	}
	if cr.ES, err = queryes.Render(queryes.Body(body)); err != nil {
		return cr, err
	}

	if !h.seeded {
		return cr, nil
	}

	rows, err := h.store.Query(ctx, sqlFactory, cond)
	if err != nil {
		return cr, err
	}
	cr.Rows = ir.IRArray(store.IDs(rows))

	all, err := h.store.Query(ctx, sqlFactory, query.Result[querysql.Condition]{})
	if err != nil {
		return cr, err
	}
	cr.Matches = ir.IRArray{}
	for _, row := range all {
		ok, err := queryir.Match(tree.Constraint, row)
		if err != nil {
			return cr, err
		}
		if ok {
			cr.Matches = append(cr.Matches, row[schema.IDField])
		}
	}
	return cr, nil
}
