package studio

import (
	"errors"
	"strings"

	"github.com/david/studio-desk/internal/editorial"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrIllegalTransition = editorial.ErrIllegalTransition
	ErrLocked            = errors.New("locked")
	ErrConflict          = errors.New("changed concurrently")
	ErrAIUnavailable     = errors.New("ai service unavailable")
)

// NotFoundError names the missing entity, e.g. "Section not found".
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// RuleError is a business-rule rejection with a user-facing message.
type RuleError struct {
	Message string
	Kind    error
}

func (e *RuleError) Error() string { return e.Message }
func (e *RuleError) Unwrap() error { return e.Kind }

// LockCheckError lists the consistency checks a section failed before locking.
type LockCheckError struct {
	Problems []string
}

func (e *LockCheckError) Error() string { return strings.Join(e.Problems, " ") }
func (e *LockCheckError) Unwrap() error { return ErrIllegalTransition }

// InputError rejects a request value that is well-formed but invalid.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// BadRequestError rejects a request that cannot be acted on at all.
type BadRequestError struct {
	Message string
	Err     error
}

func (e *BadRequestError) Error() string { return e.Message }
func (e *BadRequestError) Unwrap() error { return e.Err }
