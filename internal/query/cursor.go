package query

import "unicode"

// EOI is returned by the cursor at end of input. It is not a valid rune.
const EOI rune = -1

// maxLookahead bounds Next.
const maxLookahead = 3

// cursor is a one-pass reader over the runes of a query.
// Reads past the end return EOI indefinitely.
type cursor struct {
	src []rune
	pos int
}

func newCursor(q string) *cursor {
	return &cursor{src: []rune(q)}
}

// Current returns the rune under the cursor.
func (c *cursor) Current() rune {
	return c.Next(0)
}

// Next returns the rune k positions ahead (0 = current).
func (c *cursor) Next(k int) rune {
	if k < 0 || k > maxLookahead {
		panic("query: lookahead out of range")
	}
	i := c.pos + k
	if i >= len(c.src) {
		return EOI
	}
	return c.src[i]
}

// Consume returns the current rune and advances.
func (c *cursor) Consume() rune {
	r := c.Current()
	if r != EOI {
		c.pos++
	}
	return r
}

// ConsumeN advances n runes, stopping at end of input.
func (c *cursor) ConsumeN(n int) {
	for i := 0; i < n; i++ {
		c.Consume()
	}
}

// AtEnd reports whether the input is exhausted.
func (c *cursor) AtEnd() bool {
	return c.Current() == EOI
}

// Is reports whether the current rune is one of rs.
func (c *cursor) Is(rs ...rune) bool {
	return isAny(c.Current(), rs...)
}

// Pos returns the current offset in runes.
func (c *cursor) Pos() int {
	return c.pos
}

// Text returns the source between two offsets.
func (c *cursor) Text(from, to int) string {
	if to > len(c.src) {
		to = len(c.src)
	}
	if from >= to {
		return ""
	}
	return string(c.src[from:to])
}

// SkipWhitespace consumes whitespace and reports whether any was skipped.
func (c *cursor) SkipWhitespace() bool {
	skipped := false
	for isSpace(c.Current()) {
		c.Consume()
		skipped = true
	}
	return skipped
}

func isAny(r rune, rs ...rune) bool {
	for _, x := range rs {
		if r == x {
			return true
		}
	}
	return false
}

func isSpace(r rune) bool {
	return r != EOI && unicode.IsSpace(r)
}
