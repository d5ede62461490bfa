package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	// ErrValidation covers malformed causes maps, cyclic graphs, overlapping
	// treatment/response labels and unknown identifiers.
	ErrValidation = errors.New("validation error")
	// ErrGenerator is raised when a step's generator fails or returns a value
	// that does not match its declared kind.
	ErrGenerator = errors.New("generator error")
	// ErrUnsupported marks requests that are structurally impossible, such as
	// the density of an opaque random step.
	ErrUnsupported = errors.New("unsupported operation")
	// ErrShape covers row-count mismatches and duplicate indices.
	ErrShape = errors.New("shape error")

	ErrNotFound         = fmt.Errorf("%w: not found", ErrValidation)
	ErrVariableNotFound = fmt.Errorf("%w: variable", ErrNotFound)
	ErrStepNotFound     = fmt.Errorf("%w: step", ErrNotFound)
	ErrCyclic           = fmt.Errorf("%w: causes map is cyclic", ErrValidation)
)

// Error constructors with context
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, field, reason)
}

func NewUnknownNamesError(set string, names []string) error {
	return fmt.Errorf("%w: %s references undeclared names [%s]", ErrValidation, set, strings.Join(names, ", "))
}

func NewGeneratorError(step string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: generator failed for step %q", ErrGenerator, step)
	}
	return fmt.Errorf("%w: generator failed for step %q: %v", ErrGenerator, step, err)
}

func NewKindMismatchError(step, kind string, value interface{}) error {
	return fmt.Errorf("%w: step %q of kind %s returned incompatible value of type %T", ErrGenerator, step, kind, value)
}

func NewUnsupportedError(what string) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, what)
}

func NewShapeError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrShape, fmt.Sprintf(format, args...))
}

// Error checking helpers
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsGeneratorError(err error) bool {
	return errors.Is(err, ErrGenerator)
}

func IsUnsupportedError(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

func IsShapeError(err error) bool {
	return errors.Is(err, ErrShape)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
