package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/coder/quartz"
	"gopkg.in/yaml.v3"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/query"
	"github.com/roach88/querymix/internal/schema"
)

// Target is a validated schema plus the entity a command queries.
type Target struct {
	Registry *schema.Registry
	Entity   *schema.Entity
}

// loadRegistry loads and validates a descriptor file.
// Failures are reported through f and returned as *ExitError.
func loadRegistry(f *OutputFormatter, path string) (*schema.Registry, error) {
	if path == "" {
		return nil, fail(f, ExitCommandError, ErrCodeSchema, "--schema is required", nil)
	}

	f.VerboseLog("Loading schema %s", path)
	registry, err := schema.Load(path)
	if err != nil {
		var loadErr *schema.LoadError
		if errors.As(err, &loadErr) && loadErr.Code == schema.ErrCodeNotFound {
			return nil, fail(f, ExitCommandError, ErrCodeSchema, err.Error(), nil)
		}
		return nil, fail(f, ExitFailure, ErrCodeSchema, err.Error(), nil)
	}

	if errs := schema.Validate(registry); len(errs) > 0 {
		return nil, fail(f, ExitFailure, ErrCodeInvalid,
			fmt.Sprintf("schema has %d validation error(s)", len(errs)), errs)
	}
	return registry, nil
}

// loadTarget loads a descriptor file and looks up entity in it.
func loadTarget(f *OutputFormatter, path, entity string) (*Target, error) {
	registry, err := loadRegistry(f, path)
	if err != nil {
		return nil, err
	}
	e, err := registry.MustEntity(entity)
	if err != nil {
		return nil, fail(f, ExitCommandError, ErrCodeEntity, err.Error(), nil)
	}
	f.VerboseLog("Using entity %s (%d fields)", e.Name, len(e.Fields))
	return &Target{Registry: registry, Entity: e}, nil
}

// newLogger returns the text logger commands hand to the compiler.
// Debug records are only emitted in verbose mode.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseClock returns the real clock, or one pinned to now when set.
func parseClock(now string) (quartz.Clock, error) {
	if now == "" {
		return quartz.NewReal(), nil
	}
	t, err := time.Parse(time.RFC3339, now)
	if err != nil {
		return nil, fmt.Errorf("invalid --now %q: %w", now, err)
	}
	return query.PinnedClock(t), nil
}

// loadRows reads a YAML seed file mapping entity names to row lists.
func loadRows(path string) (map[string][]ir.IRObject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string][]map[string]any
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse rows: %w", err)
	}

	rows := make(map[string][]ir.IRObject, len(raw))
	for name, list := range raw {
		objs := make([]ir.IRObject, 0, len(list))
		for i, r := range list {
			v, err := ir.FromNative(r)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", name, i, err)
			}
			objs = append(objs, v.(ir.IRObject))
		}
		rows[name] = objs
	}
	return rows, nil
}
