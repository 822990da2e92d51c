package tag

import "fmt"

// Op identifies the kind of a Query node.
type Op uint8

const (
	OpEq Op = iota
	OpContains
	OpBeginsWith
	OpEndsIn
	OpAnd
	OpOr
)

// Query is a boolean predicate tree evaluated against a single Tag.
// Leaf nodes hold a Tag operand; And and Or nodes own two sub-queries.
// Queries are immutable once built, so a sub-query can never be reached
// from two parents through mutation.
type Query struct {
	op    Op
	tag   Tag
	left  *Query
	right *Query
}

// Eq matches tags structurally equal to t.
func Eq(t Tag) Query { return Query{op: OpEq, tag: t} }

// Contains matches tags that contain t as a contiguous run.
func Contains(t Tag) Query { return Query{op: OpContains, tag: t} }

// BeginsWith matches tags whose head side starts with t.
func BeginsWith(t Tag) Query { return Query{op: OpBeginsWith, tag: t} }

// EndsIn matches tags whose tail end finishes with t.
func EndsIn(t Tag) Query { return Query{op: OpEndsIn, tag: t} }

// And matches when both p and q match.
func And(p, q Query) Query { return Query{op: OpAnd, left: &p, right: &q} }

// Or matches when either p or q matches.
func Or(p, q Query) Query { return Query{op: OpOr, left: &p, right: &q} }

func (q Query) Op() Op { return q.op }

// Operand returns the tag of a leaf query. ok is false for And and Or.
func (q Query) Operand() (t Tag, ok bool) {
	if q.op == OpAnd || q.op == OpOr {
		return Nil, false
	}
	return q.tag, true
}

// Children returns the operands of an And or Or query.
func (q Query) Children() (left, right Query, ok bool) {
	if q.op != OpAnd && q.op != OpOr {
		return Query{}, Query{}, false
	}
	return *q.left, *q.right, true
}

// Equal reports whether two queries have the same structure and operands.
func (q Query) Equal(other Query) bool {
	if q.op != other.op {
		return false
	}
	if q.op == OpAnd || q.op == OpOr {
		return q.left.Equal(*other.left) && q.right.Equal(*other.right)
	}
	return q.tag.Equal(other.tag)
}

var predicateNames = map[Op]string{
	OpEq:         "eq",
	OpContains:   "contains",
	OpBeginsWith: "begins",
	OpEndsIn:     "ends",
}

// String renders q in the query text syntax accepted by ParseQuery.
func (q Query) String() string {
	switch q.op {
	case OpAnd:
		return fmt.Sprintf("(%s & %s)", q.left, q.right)
	case OpOr:
		return fmt.Sprintf("(%s | %s)", q.left, q.right)
	default:
		return fmt.Sprintf("%s(%s)", predicateNames[q.op], q.tag)
	}
}
