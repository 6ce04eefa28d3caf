package workflow

import (
	"errors"
	"fmt"

	"github.com/david/studio-desk/internal/editorial"
)

var (
	// ErrBusy means a mutating call for the same item is still in flight.
	ErrBusy = errors.New("another request for this item is still pending")

	ErrSectionLocked     = errors.New("section is locked")
	ErrApplicationLocked = editorial.ErrApplicationLocked
)

// ValidationError rejects input before any request is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
