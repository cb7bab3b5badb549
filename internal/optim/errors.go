package optim

import (
	"fmt"

	"github.com/pkg/errors"
)

// Common errors.
var (
	ErrInvalidConfig        = errors.New("invalid optimizer configuration")
	ErrUnsupportedOptimizer = errors.New("unsupported optimizer")
	ErrShapeMismatch        = errors.New("gradient shape does not match variable")
	ErrNonFiniteGradient    = errors.New("gradient global norm is not finite")
	ErrInvalidState         = errors.New("invalid optimizer state")
)

// ConfigError describes a rejected construction-time setting.
//
// Every ConfigError matches ErrInvalidConfig under errors.Is.
type ConfigError struct {
	Field   string // Configuration field (e.g., "steps", "optimizer")
	Value   any    // Rejected value
	Message string // Why it was rejected
	cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Message)
}

// Is reports whether target is ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Unwrap returns the more specific cause, if any.
func (e *ConfigError) Unwrap() error {
	return e.cause
}

func configError(field string, value any, msg string) error {
	return errors.WithStack(&ConfigError{Field: field, Value: value, Message: msg})
}

func configErrorWithCause(field string, value any, msg string, cause error) error {
	return errors.WithStack(&ConfigError{Field: field, Value: value, Message: msg, cause: cause})
}
