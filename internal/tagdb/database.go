// Package tagdb holds the tag database: tagged files keyed by path, the bulk
// query-driven edits over them, and the service that loads, edits and saves
// a database through a Store.
package tagdb

import (
	"sort"

	"tagdb/internal/tag"
)

// Database is a collection of TaggedFile entries, at most one per path,
// bound to the location it is persisted at.
//
// A Database is not safe for concurrent use. Callers sharing one across
// goroutines must serialize every call behind a single lock.
type Database struct {
	location string
	files    map[string]*TaggedFile
}

// New creates an empty database bound to location.
func New(location string) *Database {
	return &Database{
		location: location,
		files:    make(map[string]*TaggedFile),
	}
}

// Restore rebuilds a database from stored entries. Entries sharing a path
// are merged.
func Restore(location string, files []*TaggedFile) *Database {
	db := New(location)
	for _, f := range files {
		existing, ok := db.files[f.path]
		if !ok {
			db.files[f.path] = NewTaggedFile(f.path, f.Tags()...)
			continue
		}
		for _, t := range f.Tags() {
			existing.AddTag(t)
		}
	}
	return db
}

// Location returns where the database is persisted.
func (db *Database) Location() string {
	return db.location
}

// Len returns the number of registered files.
func (db *Database) Len() int {
	return len(db.files)
}

// File returns the entry for path.
func (db *Database) File(path string) (*TaggedFile, bool) {
	f, ok := db.files[path]
	return f, ok
}

// Files returns all entries ordered by path.
func (db *Database) Files() []*TaggedFile {
	files := make([]*TaggedFile, 0, len(db.files))
	for _, f := range db.files {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files
}

// MatchQuery returns the paths of all files with at least one tag matching
// q, in ascending order.
func (db *Database) MatchQuery(q tag.Query) []string {
	var paths []string
	for p, f := range db.files {
		if f.MatchQuery(q) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// RemoveMatching deletes every file entry that matches q and returns how
// many were deleted.
func (db *Database) RemoveMatching(q tag.Query) int {
	paths := db.MatchQuery(q)
	for _, p := range paths {
		delete(db.files, p)
	}
	return len(paths)
}

// RemoveMatchingTags removes the tags matching q from every file and
// returns the total number of tags removed. File entries are kept even when
// left without tags.
func (db *Database) RemoveMatchingTags(q tag.Query) int {
	removed := 0
	for _, f := range db.files {
		removed += f.RemoveAllMatching(q)
	}
	return removed
}

// RemoveMatchingTagsForFile removes the tags matching q from the file at
// path. It returns 0 when path is not registered.
func (db *Database) RemoveMatchingTagsForFile(path string, q tag.Query) int {
	f, ok := db.files[path]
	if !ok {
		return 0
	}
	return f.RemoveAllMatching(q)
}

// AddTagMatching adds t to every file whose tag set matches q and returns
// the number of files that gained it. Matching files that already carry t
// are not counted.
func (db *Database) AddTagMatching(q tag.Query, t tag.Tag) int {
	added := 0
	for _, p := range db.MatchQuery(q) {
		if db.files[p].AddTag(t) {
			added++
		}
	}
	return added
}

// AddTagToFile adds t to the file at path. It reports false when path is
// not registered.
func (db *Database) AddTagToFile(path string, t tag.Tag) bool {
	f, ok := db.files[path]
	if !ok {
		return false
	}
	f.AddTag(t)
	return true
}

// AddFile registers path with an empty tag set. An existing entry is left
// untouched; the return value reports whether path was new.
func (db *Database) AddFile(path string) bool {
	if _, ok := db.files[path]; ok {
		return false
	}
	db.files[path] = NewTaggedFile(path)
	return true
}

// Equal reports whether both databases have the same location and entries.
func (db *Database) Equal(other *Database) bool {
	if db.location != other.location || len(db.files) != len(other.files) {
		return false
	}
	for p, f := range db.files {
		g, ok := other.files[p]
		if !ok || !f.Equal(g) {
			return false
		}
	}
	return true
}
