package core

import (
	"errors"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	missing := NewSliceNotFoundError("country:US")
	if !IsNotFoundError(missing) {
		t.Error("Expected missing slice to be a not-found error")
	}
	if !IsDataIntegrityError(missing) {
		t.Error("Expected missing slice to be a data-integrity error")
	}

	path := NewUnresolvedPathError([]string{"a", "b"}, 1)
	if !errors.Is(path, ErrUnresolvedPath) {
		t.Errorf("Expected ErrUnresolvedPath, got %v", path)
	}
	if IsDataIntegrityError(path) {
		t.Error("Unresolved path should not be a data-integrity error")
	}

	if !IsValidationError(ErrInvalidMode) {
		t.Error("Expected invalid mode to be a validation error")
	}
}
