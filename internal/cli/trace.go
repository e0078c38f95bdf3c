package cli

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/querymix/internal/ir"
)

// TraceGenerator produces the correlation id attached to debug queries.
type TraceGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-ordered UUIDv7 trace ids.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7, or a random UUID if the clock sequence
// cannot be read.
func (UUIDv7Generator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// traceDebugQuery logs a debug query with a fresh trace id and returns the id.
// Queries without the "??" prefix get no trace id.
func traceDebugQuery(logger *slog.Logger, gen TraceGenerator, debugging bool, entity, q string) string {
	if !debugging {
		return ""
	}
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	traceID := gen.Generate()
	logger.Debug("debug query",
		"trace_id", traceID,
		"entity", entity,
		"fingerprint", ir.QueryFingerprint(entity, q))
	return traceID
}
