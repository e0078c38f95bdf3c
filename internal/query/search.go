package query

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/querymix/internal/schema"
)

// compileSearch builds the default free-text constraint for tok.
//
// Exact tokens compare the whole text for equality in every search field.
// Other tokens are split into words; each word must match at least one
// search field using that field's mode.
func (c *Compiler[C]) compileSearch(tok Token) (C, bool) {
	f := c.factory
	if tok.Exact {
		text := norm.NFC.String(tok.Text)
		nodes := make([]C, 0, len(c.search))
		for _, sf := range c.search {
			nodes = append(nodes, f.Search(sf.Field, schema.SearchEqual, text))
		}
		return OrAll(f, nodes)
	}

	var groups []C
	for _, word := range strings.Fields(tok.Text) {
		word = norm.NFC.String(word)
		nodes := make([]C, 0, len(c.search))
		for _, sf := range c.search {
			nodes = append(nodes, f.Search(sf.Field, sf.Mode, word))
		}
		if group, ok := OrAll(f, nodes); ok {
			groups = append(groups, group)
		}
	}
	return AndAll(f, groups)
}
