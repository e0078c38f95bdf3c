package query

import (
	"time"

	"github.com/grafana/regexp"
	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/schema"
)

// deltaExpr matches temporal shorthands like "-3d", "5h" or "+30m".
var deltaExpr = regexp.MustCompile(`^([+-]?)(\d+)([dhm])$`)

// coerce turns a raw value into the comparison value for field.
//
// Order: temporal delta (date/time fields only), raw text for references,
// then the field transform. A failing transform falls back to the raw text so
// a malformed value matches nothing instead of aborting the query.
func (c *Compiler[C]) coerce(field *schema.Field, raw string) ir.IRValue {
	if kind, ok := field.TimeKind(); ok {
		if t, ok := c.delta(raw); ok {
			return ir.NewIRTime(t, kind)
		}
	}

	if field.IsReference() {
		return ir.IRString(raw)
	}

	v, err := field.Value(raw)
	if err != nil {
		c.logger.Debug("value transform failed, comparing raw text",
			"entity", c.entity.Name,
			"field", field.Name,
			"value", raw,
			"error", err)
		return ir.IRString(raw)
	}
	return v
}

// delta resolves a temporal shorthand against the compiler's clock.
func (c *Compiler[C]) delta(raw string) (time.Time, bool) {
	m := deltaExpr.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}
	d, err := str2duration.ParseDuration(m[2] + m[3])
	if err != nil {
		return time.Time{}, false
	}
	if m[1] == "-" {
		d = -d
	}
	return c.clock.Now().Add(d), true
}
