package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrSliceNotFound    = fmt.Errorf("%w: dimension slice", ErrNotFound)
	ErrUnknownDimension = fmt.Errorf("%w: dimension", ErrNotFound)
	ErrNoMetrics        = fmt.Errorf("%w: insight metrics", ErrNotFound)

	// Navigation errors
	ErrUnresolvedPath = errors.New("row path does not resolve")

	// Validation errors
	ErrInvalidMode        = errors.New("invalid ranking mode")
	ErrInvalidSensitivity = errors.New("invalid sensitivity")
	ErrInvalidSlice       = errors.New("invalid dimension slice")
)

// Error constructors with context
func NewSliceNotFoundError(key string) error {
	return fmt.Errorf("%w: %q referenced but missing from catalog", ErrSliceNotFound, key)
}

func NewUnresolvedPathError(path []string, segment int) error {
	if segment < 0 || segment >= len(path) {
		return fmt.Errorf("%w: empty path", ErrUnresolvedPath)
	}
	return fmt.Errorf("%w: segment %d (%q) of %v", ErrUnresolvedPath, segment, path[segment], path)
}

func NewInvalidSliceError(key string, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidSlice, key, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDataIntegrityError reports whether err signals an upstream contract violation.
func IsDataIntegrityError(err error) bool {
	return errors.Is(err, ErrSliceNotFound) ||
		errors.Is(err, ErrInvalidSlice)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidMode) ||
		errors.Is(err, ErrInvalidSensitivity) ||
		errors.Is(err, ErrInvalidSlice)
}
