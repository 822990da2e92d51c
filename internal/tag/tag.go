// Package tag implements the tag data model: typed atomic values, ordered tag
// sequences stored as cons lists, and the query trees evaluated against them.
package tag

import "strings"

// Tag is an immutable sequence of TagType values stored as a cons list.
// The zero value is Nil, the empty sequence.
//
// Append puts a value in front of the sequence, so a Tag built by repeated
// appends reads head to tail in the reverse order of the Append calls. The
// text syntax lists values head first; see FromText.
//
// Tails are shared between tags; this is safe because no operation ever
// modifies a node after construction.
type Tag struct {
	node *cons
}

type cons struct {
	head TagType
	tail Tag
}

// Nil is the empty tag.
var Nil = Tag{}

// New returns the empty tag.
func New() Tag { return Nil }

// Of builds a tag from values given in cons order: items[0] becomes the head.
func Of(items ...TagType) Tag {
	t := Nil
	for i := len(items) - 1; i >= 0; i-- {
		t = t.Append(items[i])
	}
	return t
}

// Append returns a new tag with v as its head and t as its tail.
func (t Tag) Append(v TagType) Tag {
	return Tag{node: &cons{head: v, tail: t}}
}

// IsNil reports whether t is the empty tag.
func (t Tag) IsNil() bool { return t.node == nil }

// Head returns the first value of the cons list. ok is false for Nil.
func (t Tag) Head() (v TagType, ok bool) {
	if t.node == nil {
		return TagType{}, false
	}
	return t.node.head, true
}

// Tail returns everything after the head. The tail of Nil is Nil.
func (t Tag) Tail() Tag {
	if t.node == nil {
		return Nil
	}
	return t.node.tail
}

// Len returns the number of values in the tag.
func (t Tag) Len() int {
	n := 0
	for c := t.node; c != nil; c = c.tail.node {
		n++
	}
	return n
}

// Items returns the values in cons order, head first.
func (t Tag) Items() []TagType {
	items := make([]TagType, 0, t.Len())
	for c := t.node; c != nil; c = c.tail.node {
		items = append(items, c.head)
	}
	return items
}

// Equal reports structural equality.
func (t Tag) Equal(other Tag) bool {
	a, b := t.node, other.node
	for a != nil && b != nil {
		if a == b {
			return true
		}
		if a.head != b.head {
			return false
		}
		a, b = a.tail.node, b.tail.node
	}
	return a == nil && b == nil
}

// Compare orders tags structurally: Nil sorts before any non-empty tag, and
// two non-empty tags compare by head and then by tail.
func Compare(a, b Tag) int {
	x, y := a.node, b.node
	for {
		switch {
		case x == y:
			return 0
		case x == nil:
			return -1
		case y == nil:
			return 1
		}
		if c := CompareTypes(x.head, y.head); c != 0 {
			return c
		}
		x, y = x.tail.node, y.tail.node
	}
}

// Less reports whether a sorts before b.
func Less(a, b Tag) bool { return Compare(a, b) < 0 }

// BeginsWith reports whether prefix matches t anchored at the head, the most
// recently appended value.
func (t Tag) BeginsWith(prefix Tag) bool {
	a, b := t.node, prefix.node
	for b != nil {
		if a == nil || a.head != b.head {
			return false
		}
		a, b = a.tail.node, b.tail.node
	}
	return true
}

// Contains reports whether sub appears as a contiguous run anywhere in t.
// Nil is contained in every tag.
func (t Tag) Contains(sub Tag) bool {
	if sub.node == nil {
		return true
	}
	for c := t; c.node != nil; c = c.node.tail {
		if c.BeginsWith(sub) {
			return true
		}
	}
	return false
}

// EndsIn reports whether suffix matches t anchored at the end of the cons
// chain, the least recently appended value.
func (t Tag) EndsIn(suffix Tag) bool {
	if suffix.node == nil {
		return true
	}
	for c := t; c.node != nil; c = c.node.tail {
		if c.Equal(suffix) {
			return true
		}
	}
	return false
}

// MatchQuery evaluates q against t.
func (t Tag) MatchQuery(q Query) bool {
	switch q.op {
	case OpOr:
		return t.MatchQuery(*q.left) || t.MatchQuery(*q.right)
	case OpAnd:
		return t.MatchQuery(*q.left) && t.MatchQuery(*q.right)
	case OpEq:
		return t.Equal(q.tag)
	case OpContains:
		return t.Contains(q.tag)
	case OpBeginsWith:
		return t.BeginsWith(q.tag)
	case OpEndsIn:
		return t.EndsIn(q.tag)
	default:
		return false
	}
}

// String renders t in the text syntax: tokens in cons order, head first,
// joined by the delimiter. Nil renders as "".
func (t Tag) String() string {
	var b strings.Builder
	for c := t.node; c != nil; c = c.tail.node {
		if c != t.node {
			b.WriteByte(Delimiter)
		}
		b.WriteString(c.head.String())
	}
	return b.String()
}
