package query

import (
	"log/slog"
	"strings"

	"github.com/coder/quartz"

	"github.com/roach88/querymix/internal/schema"
)

// Compiler compiles query strings for one entity into constraints of type C.
type Compiler[C any] struct {
	settings
	factory Factory[C]
	entity  *schema.Entity
	tags    *TagRegistry[C]
	custom  map[string]CustomField[C]
}

// New creates a compiler for entity. Search fields default to the entity's
// declared search paths.
func New[C any](factory Factory[C], entity *schema.Entity, opts ...Option) *Compiler[C] {
	c := &Compiler[C]{
		factory: factory,
		entity:  entity,
	}
	for _, opt := range opts {
		opt(&c.settings)
	}
	if c.clock == nil {
		c.clock = quartz.NewReal()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if !c.searchSet {
		c.search = c.defaultSearchFields()
	}
	return c
}

// Entity returns the entity the compiler targets.
func (c *Compiler[C]) Entity() *schema.Entity {
	return c.entity
}

// SearchFields returns the effective default search fields.
func (c *Compiler[C]) SearchFields() []SearchField {
	return append([]SearchField(nil), c.search...)
}

// Compile parses q and builds its constraint.
//
// Blank queries yield no constraint. A leading "??" sets Result.Debugging.
// The only error is an *InputError for queries the user has to fix.
func (c *Compiler[C]) Compile(q string) (Result[C], error) {
	p := &parser[C]{c: c, in: newCursor(q)}

	var res Result[C]
	p.in.SkipWhitespace()
	if p.in.Is('?') && p.in.Next(1) == '?' {
		res.Debugging = true
		p.in.ConsumeN(2)
	}

	var parts []C
	for {
		node, ok, err := p.parseOr()
		if err != nil {
			return Result[C]{}, err
		}
		if ok {
			parts = append(parts, node)
		}
		if p.in.AtEnd() {
			break
		}
		// Unmatched ")" at top level
		p.in.Consume()
	}

	res.Constraint, res.HasConstraint = AndAll(c.factory, parts)
	if res.Debugging {
		c.logger.Debug("query compiled in debug mode",
			"entity", c.entity.Name,
			"query", q,
			"has_constraint", res.HasConstraint)
	}
	return res, nil
}

// parser holds the state of one Compile call.
type parser[C any] struct {
	c  *Compiler[C]
	in *cursor
}

func (p *parser[C]) atGroupEnd() bool {
	return p.in.AtEnd() || p.in.Is(')')
}

// OR := AND ( "or" AND )*
func (p *parser[C]) parseOr() (C, bool, error) {
	var nodes []C
	for !p.atGroupEnd() {
		node, ok, err := p.parseAnd()
		if err != nil {
			return node, false, err
		}
		if ok {
			nodes = append(nodes, node)
		}
		if !p.atOr() {
			break
		}
		p.in.ConsumeN(2)
	}
	node, ok := OrAll(p.c.factory, nodes)
	return node, ok, nil
}

// AND := EXPR ( ("and" | "&&")? EXPR )*
func (p *parser[C]) parseAnd() (C, bool, error) {
	var nodes []C
	for !p.atGroupEnd() {
		node, ok, err := p.parseExpression(false)
		if err != nil {
			return node, false, err
		}
		if ok {
			nodes = append(nodes, node)
		}
		p.in.SkipWhitespace()
		if p.atOr() {
			break
		}
		if p.atAnd() {
			p.in.ConsumeN(3)
		}
		if p.in.Is('&') && p.in.Next(1) == '&' {
			p.in.ConsumeN(2)
		}
	}
	node, ok := AndAll(p.c.factory, nodes)
	return node, ok, nil
}

// atKeywordEnd reports whether r may follow a keyword connective.
func atKeywordEnd(r rune) bool {
	return r == EOI || isSpace(r) || isAny(r, '(', '!', '"')
}

func (p *parser[C]) atOr() bool {
	return p.in.Is('o', 'O') && isAny(p.in.Next(1), 'r', 'R') && atKeywordEnd(p.in.Next(2))
}

func (p *parser[C]) atAnd() bool {
	return p.in.Is('a', 'A') && isAny(p.in.Next(1), 'n', 'N') && isAny(p.in.Next(2), 'd', 'D') &&
		atKeywordEnd(p.in.Next(3))
}

// EXPR := "!" EXPR | "-" EXPR | "(" OR ")" | TAG | FIELD_OP | SEARCH_TERM
//
// negated is threaded down so "!field:-" can become filled(field) and a
// double negation cancels out.
func (p *parser[C]) parseExpression(negated bool) (C, bool, error) {
	var zero C
	p.in.SkipWhitespace()

	if p.in.Is('!', '-') {
		p.in.Consume()
		return p.parseExpression(!negated)
	}

	if p.in.Is('(') {
		node, ok, err := p.parseBrackets()
		if err != nil {
			return zero, false, err
		}
		node, ok = p.negate(node, ok, negated)
		return node, ok, nil
	}

	if p.in.Is('|') && p.in.Next(1) == '|' {
		node, ok := p.parseTag()
		node, ok = p.negate(node, ok, negated)
		return node, ok, nil
	}

	// Skip stray operator characters, but leave ")" to close the group
	for !p.in.AtEnd() && !p.in.Is(')') && !p.continueToken(false) {
		p.in.Consume()
	}
	if p.atGroupEnd() {
		return zero, false, nil
	}

	tok := p.readToken()
	skipped := p.in.SkipWhitespace()
	if p.atOperator() {
		return p.parseFieldOperation(tok, skipped, negated)
	}

	if len(p.c.search) == 0 {
		return zero, false, missingOperator(tok.Text)
	}
	node, ok := p.c.compileSearch(tok)
	node, ok = p.negate(node, ok, negated)
	return node, ok, nil
}

func (p *parser[C]) negate(node C, ok, negated bool) (C, bool) {
	if !ok || !negated {
		return node, ok
	}
	return p.c.factory.Not(node), true
}

func (p *parser[C]) parseBrackets() (C, bool, error) {
	p.in.Consume()
	node, ok, err := p.parseOr()
	if err != nil {
		return node, false, err
	}
	if p.in.Is(')') {
		p.in.Consume()
	}
	return node, ok, nil
}

// parseFieldOperation handles a token followed by an operator.
//
// Unknown fields are offered to the custom fields first. Otherwise the token
// becomes a search term: "x:y" is searched as one literal, while for "x :y"
// only "x" is searched and the rest is left to the parser.
func (p *parser[C]) parseFieldOperation(tok Token, skipped, negated bool) (C, bool, error) {
	var zero C
	f := p.c.factory

	if mapping, field, ok := p.c.resolve(tok.Text); ok {
		op := p.readOperator()
		value := p.parseValue()
		node := p.operation(mapping, field, op, value, negated)
		return node, true, nil
	}

	if custom, ok := p.c.custom[tok.Text]; ok {
		from := p.in.Pos()
		op := p.readOperator()
		value := p.parseValue()
		if node, ok := custom.Compile(f, op, value); ok {
			node, ok = p.negate(node, ok, negated)
			return node, ok, nil
		}
		if len(p.c.search) == 0 {
			return zero, false, unknownField(tok.Text)
		}
		// Declined: search the whole "field:value" literal
		tok = Token{Text: tok.Text + p.in.Text(from, p.in.Pos()), Exact: tok.Exact}
		node, ok := p.c.compileSearch(tok)
		node, ok = p.negate(node, ok, negated)
		return node, ok, nil
	}

	if len(p.c.search) == 0 {
		return zero, false, unknownField(tok.Text)
	}

	if !skipped {
		tok = p.operatorAsTokenPart(tok)
	}
	node, ok := p.c.compileSearch(tok)
	node, ok = p.negate(node, ok, negated)
	return node, ok, nil
}

// operation builds the constraint for a resolved field.
// The bare value "-" tests presence instead of comparing.
func (p *parser[C]) operation(mapping schema.Mapping, field *schema.Field, op Operator, value Token, negated bool) C {
	f := p.c.factory
	if !value.Exact && value.Text == "-" && (op == OpEq || op == OpNe) {
		if (op == OpNe) != negated {
			return f.Filled(mapping)
		}
		return f.NotFilled(mapping)
	}

	node := Apply(f, op, mapping, p.c.coerce(field, value.Text))
	if negated {
		return f.Not(node)
	}
	return node
}

// operatorAsTokenPart appends the operator and the following characters to
// tok, turning "hello:world" back into a single search literal.
func (p *parser[C]) operatorAsTokenPart(tok Token) Token {
	var sb strings.Builder
	sb.WriteString(tok.Text)
	for p.atOperator() || p.continueToken(false) {
		if p.in.Is('\\') {
			p.in.Consume()
			if p.in.AtEnd() {
				break
			}
		}
		sb.WriteRune(p.in.Consume())
	}
	return Token{Text: sb.String(), Exact: tok.Exact}
}

func (p *parser[C]) atOperator() bool {
	if p.in.Is('=', ':', '<', '>') {
		return true
	}
	return p.in.Is('!') && p.in.Next(1) == '='
}

func (p *parser[C]) continueToken(inQuotes bool) bool {
	if p.in.AtEnd() {
		return false
	}
	if inQuotes {
		return !p.in.Is('"')
	}
	return !p.in.Is(')', ':') && !isSpace(p.in.Current()) && !p.atOperator()
}

// readToken reads a field path or search term. A backslash takes the next
// character literally.
func (p *parser[C]) readToken() Token {
	var sb strings.Builder
	inQuotes := p.in.Is('"')
	if inQuotes {
		p.in.Consume()
	}
	for p.continueToken(inQuotes) {
		if p.in.Is('\\') {
			p.in.Consume()
			if p.in.AtEnd() {
				break
			}
		}
		sb.WriteRune(p.in.Consume())
	}
	if inQuotes && p.in.Is('"') {
		p.in.Consume()
	}
	return Token{Text: sb.String(), Exact: inQuotes}
}

// readOperator consumes the operator under the cursor. Callers check
// atOperator first.
func (p *parser[C]) readOperator() Operator {
	cur, next := p.in.Current(), p.in.Next(1)
	switch {
	case cur == '!' && next == '=', cur == '<' && next == '>':
		p.in.ConsumeN(2)
		return OpNe
	case cur == '<' && next == '=':
		p.in.ConsumeN(2)
		return OpLte
	case cur == '>' && next == '=':
		p.in.ConsumeN(2)
		return OpGte
	case cur == '>':
		p.in.Consume()
		return OpGt
	case cur == '<':
		p.in.Consume()
		return OpLt
	default:
		p.in.Consume()
		return OpEq
	}
}

// parseValue reads a quoted or bare value.
func (p *parser[C]) parseValue() Token {
	p.in.SkipWhitespace()
	if p.in.Is('"') {
		p.in.Consume()
		var sb strings.Builder
		for !p.in.AtEnd() && !p.in.Is('"') {
			if p.in.Is('\\') {
				p.in.Consume()
				if p.in.AtEnd() {
					break
				}
			}
			sb.WriteRune(p.in.Consume())
		}
		p.in.Consume()
		return Token{Text: sb.String(), Exact: true}
	}
	return p.readBareValue()
}

// readBareValue reads up to whitespace or a ")" that closes no "(" opened
// inside the value.
func (p *parser[C]) readBareValue() Token {
	var sb strings.Builder
	open := 0
	for !p.in.AtEnd() && !isSpace(p.in.Current()) {
		if p.in.Is(')') {
			if open == 0 {
				break
			}
			open--
		}
		if p.in.Is('(') {
			open++
		}
		sb.WriteRune(p.in.Consume())
	}
	return Token{Text: sb.String()}
}

// parseTag reads ||type:value|| and dispatches it to the tag registry.
// Malformed tags and unknown types yield no constraint.
func (p *parser[C]) parseTag() (C, bool) {
	var zero C
	p.in.ConsumeN(2)
	var sb strings.Builder
	for !p.in.AtEnd() && !(p.in.Is('|') && p.in.Next(1) == '|') {
		sb.WriteRune(p.in.Consume())
	}
	p.in.ConsumeN(2)

	typ, value, found := strings.Cut(sb.String(), ":")
	if !found || typ == "" || strings.TrimSpace(value) == "" {
		return zero, false
	}
	handler := p.c.tags.Lookup(typ)
	if handler == nil {
		p.c.logger.Debug("no handler for query tag", "type", typ, "entity", p.c.entity.Name)
		return zero, false
	}
	return handler(p.c.factory, p.c.entity, value)
}
