package tagdb

import (
	"github.com/tidwall/btree"

	"tagdb/internal/tag"
)

// TaggedFile pairs a file path with the set of tags attached to it.
// Tags are kept unique and ordered by tag.Compare.
type TaggedFile struct {
	path string
	tags *btree.BTreeG[tag.Tag]
}

// NewTaggedFile creates a TaggedFile holding the given tags. Duplicates
// collapse into one entry.
func NewTaggedFile(path string, tags ...tag.Tag) *TaggedFile {
	f := &TaggedFile{
		path: path,
		tags: btree.NewBTreeG(tag.Less),
	}
	for _, t := range tags {
		f.tags.Set(t)
	}
	return f
}

// Path returns the file path.
func (f *TaggedFile) Path() string {
	return f.path
}

// Tags returns the tags in ascending order.
func (f *TaggedFile) Tags() []tag.Tag {
	tags := make([]tag.Tag, 0, f.tags.Len())
	f.tags.Scan(func(t tag.Tag) bool {
		tags = append(tags, t)
		return true
	})
	return tags
}

// Len returns the number of tags.
func (f *TaggedFile) Len() int {
	return f.tags.Len()
}

// HasTag reports whether t is in the set.
func (f *TaggedFile) HasTag(t tag.Tag) bool {
	_, ok := f.tags.Get(t)
	return ok
}

// MatchQuery reports whether any tag of the file matches q.
func (f *TaggedFile) MatchQuery(q tag.Query) bool {
	matched := false
	f.tags.Scan(func(t tag.Tag) bool {
		matched = t.MatchQuery(q)
		return !matched
	})
	return matched
}

// RemoveAllMatching deletes every tag that matches q and returns how many
// were removed. Running it again with the same query removes nothing.
func (f *TaggedFile) RemoveAllMatching(q tag.Query) int {
	var doomed []tag.Tag
	f.tags.Scan(func(t tag.Tag) bool {
		if t.MatchQuery(q) {
			doomed = append(doomed, t)
		}
		return true
	})
	for _, t := range doomed {
		f.tags.Delete(t)
	}
	return len(doomed)
}

// AddTag inserts t and reports whether it was not already present.
func (f *TaggedFile) AddTag(t tag.Tag) bool {
	_, replaced := f.tags.Set(t)
	return !replaced
}

// Equal reports whether both files have the same path and tag set.
func (f *TaggedFile) Equal(other *TaggedFile) bool {
	if f.path != other.path || f.tags.Len() != other.tags.Len() {
		return false
	}
	a, b := f.Tags(), other.Tags()
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
