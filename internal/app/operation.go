package app

import (
	"time"

	"github.com/google/uuid"
)

// Operation tracks one CLI command. Its ID tags every log line the command
// writes. Only mutating operations may write the database back on Close,
// and only when they succeeded.
type Operation struct {
	ID         string
	Name       string
	Parameters string
	Mutating   bool
	Status     string // "success" or "error"
	StartedAt  time.Time
	Err        error
}

// NewOperation creates a new operation in the success state.
func NewOperation(name, parameters string, mutating bool) *Operation {
	return &Operation{
		ID:         uuid.NewString(),
		Name:       name,
		Parameters: parameters,
		Mutating:   mutating,
		Status:     "success",
		StartedAt:  time.Now(),
	}
}

// Fail marks the operation as failed. The first error is kept.
func (op *Operation) Fail(err error) {
	if err == nil {
		return
	}
	op.Status = "error"
	if op.Err == nil {
		op.Err = err
	}
}

// Succeeded reports whether no failure was recorded.
func (op *Operation) Succeeded() bool {
	return op.Status == "success"
}
