package ledger

import (
	"errors"
	"fmt"
)

// Error taxonomy consumed by the presentation layers. Every command handler
// returns one of these (or wraps one); a single mapping turns them into
// user-facing text.
var (
	ErrNotFound  = errors.New("record not found")
	ErrForbidden = errors.New("not allowed")
)

// ValidationError carries a user-visible usage message. No state changes
// when one is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
