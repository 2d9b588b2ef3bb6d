package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrReplayRequired  = errors.New("fabric has not replayed history yet")
)

// FieldError is a single invalid field of a command payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field of a command, not just the
// first one found.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) Addf(field, format string, args ...any) {
	e.Add(field, fmt.Sprintf(format, args...))
}

// ErrOrNil returns the error if any field was flagged, nil otherwise.
func (e *ValidationError) ErrOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NotFoundError reports every referenced account name that does not exist.
type NotFoundError struct {
	Names []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("account(s) not found: %s", strings.Join(e.Names, ", "))
}

func (e *NotFoundError) Unwrap() error {
	return ErrAccountNotFound
}

// CycleError is returned when linking two accounts would make one its own
// ancestor. Path holds the ancestor chain that closes the loop.
type CycleError struct {
	SubAccount    string
	ParentAccount string
	Path          []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf(
		"linking %q under %q would create a cycle: %s",
		e.SubAccount, e.ParentAccount, strings.Join(e.Path, " -> "),
	)
}

// DepthExceededError is returned when linking would grow an ancestor chain
// beyond the allowed maximum.
type DepthExceededError struct {
	SubAccount    string
	ParentAccount string
	Depth         int
	MaxDepth      int
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf(
		"linking %q under %q would result in a tree of depth %d, maximum is %d",
		e.SubAccount, e.ParentAccount, e.Depth, e.MaxDepth,
	)
}

// ConflictError signals that the aggregate's version advanced between the
// read a command was derived from and its dispatch. Retryable by the caller.
type ConflictError struct {
	Aggregate       string
	ExpectedVersion uint64
	ActualVersion   uint64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"%s aggregate version advanced from %d to %d since the command was prepared",
		e.Aggregate, e.ExpectedVersion, e.ActualVersion,
	)
}

// TaskFailedError wraps the error that failed a saga task. All completed
// prior tasks were compensated.
type TaskFailedError struct {
	SagaID string
	Task   string
	Err    error
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("saga %s: task %s failed: %v", e.SagaID, e.Task, e.Err)
}

func (e *TaskFailedError) Unwrap() error {
	return e.Err
}

// CompensationFailedError is fatal: a compensating command itself failed,
// leaving the books inconsistent. Requires operator attention, never an
// automatic retry.
type CompensationFailedError struct {
	SagaID string
	Task   string
	Cause  error
	Err    error
}

func (e *CompensationFailedError) Error() string {
	return fmt.Sprintf(
		"saga %s: compensation of task %s failed: %v (compensating for: %v)",
		e.SagaID, e.Task, e.Err, e.Cause,
	)
}

func (e *CompensationFailedError) Unwrap() error {
	return e.Err
}
