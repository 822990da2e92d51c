package tag

import (
	"fmt"
	"strings"
)

// SyntaxError reports a malformed query string.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("query syntax error at offset %d: %s", e.Pos, e.Msg)
}

var predicateOps = map[string]Op{
	"eq":       OpEq,
	"contains": OpContains,
	"begins":   OpBeginsWith,
	"ends":     OpEndsIn,
}

// ParseQuery parses the query text syntax:
//
//	expr   := term ('|' term)*
//	term   := factor ('&' factor)*
//	factor := '(' expr ')' | pred
//	pred   := ('eq' | 'contains' | 'begins' | 'ends') '(' tagtext ')'
//
// tagtext runs up to the next ')' and is decoded with FromText. & binds
// tighter than |, and both associate to the left.
func ParseQuery(s string) (Query, error) {
	p := &queryParser{src: s}
	q, err := p.expr()
	if err != nil {
		return Query{}, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return Query{}, p.errorf("unexpected %q", p.src[p.pos])
	}
	return q, nil
}

type queryParser struct {
	src string
	pos int
}

func (p *queryParser) errorf(format string, args ...any) error {
	return &SyntaxError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *queryParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

// accept consumes c if it is the next non-space byte.
func (p *queryParser) accept(c byte) bool {
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *queryParser) expr() (Query, error) {
	left, err := p.term()
	if err != nil {
		return Query{}, err
	}
	for p.accept('|') {
		right, err := p.term()
		if err != nil {
			return Query{}, err
		}
		left = Or(left, right)
	}
	return left, nil
}

func (p *queryParser) term() (Query, error) {
	left, err := p.factor()
	if err != nil {
		return Query{}, err
	}
	for p.accept('&') {
		right, err := p.factor()
		if err != nil {
			return Query{}, err
		}
		left = And(left, right)
	}
	return left, nil
}

func (p *queryParser) factor() (Query, error) {
	if p.accept('(') {
		q, err := p.expr()
		if err != nil {
			return Query{}, err
		}
		if !p.accept(')') {
			return Query{}, p.errorf("missing ')'")
		}
		return q, nil
	}
	return p.predicate()
}

func (p *queryParser) predicate() (Query, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= 'a' && p.src[p.pos] <= 'z' {
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "" {
		if p.pos >= len(p.src) {
			return Query{}, p.errorf("unexpected end of query")
		}
		return Query{}, p.errorf("expected predicate, found %q", p.src[p.pos])
	}
	op, ok := predicateOps[name]
	if !ok {
		p.pos = start
		return Query{}, p.errorf("unknown predicate %q", name)
	}
	if !p.accept('(') {
		return Query{}, p.errorf("expected '(' after %s", name)
	}
	end := strings.IndexByte(p.src[p.pos:], ')')
	if end < 0 {
		return Query{}, p.errorf("unterminated tag in %s", name)
	}
	t := FromText(p.src[p.pos : p.pos+end])
	p.pos += end + 1
	return Query{op: op, tag: t}, nil
}
