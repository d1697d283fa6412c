package ticket

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("ticket not found")
	ErrLineNotFound         = errors.New("ticket line not found")
	ErrInvalidTransition    = errors.New("invalid state transition")
	ErrLTVExceeded          = errors.New("ltv ratio exceeds maximum allowed")
	ErrAmountOutOfRange     = errors.New("principal amount out of range")
	ErrNoItems              = errors.New("ticket must have at least one pawned item")
	ErrNonPositiveAppraisal = errors.New("appraised value must be greater than zero")
	ErrNegativeWeight       = errors.New("weight cannot be negative")
	ErrSerialRequired       = errors.New("serial number is required for this category")
	ErrMaturityNotFuture    = errors.New("maturity date must be in the future")
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotEditable          = errors.New("only draft tickets can be amended")
)

// ValidationError wraps a sentinel with the human-readable detail shown to the caller.
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error, format string, args ...any) error {
	return &ValidationError{Err: err, Details: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is one of the save-time validation failures.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
