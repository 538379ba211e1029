package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrCartEmpty         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("transition not allowed from current step")
	ErrWizardClosed      = errors.New("checkout already completed")
)

// ValidationError is reported against a single input field; the wizard
// stays on its current step and keeps every value entered so far.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
