package tagdb

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by stores when a location holds no database.
var ErrNotFound = errors.New("database not found")

// StorageError reports a failed load or save. It is the only error the
// database layer produces; queries and in-memory edits cannot fail.
type StorageError struct {
	Op       string // "load" or "save"
	Location string
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s database at %s: %v", e.Op, e.Location, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
