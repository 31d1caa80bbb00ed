package errors

import (
	"unicode"
)

// ValidatePath validates a filesystem path supplied by the user.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters: %q", path)
		}
	}

	return nil
}

// ValidatePositive rejects values below 1 with an INVALID_POLICY error.
func ValidatePositive(name string, v int) error {
	if v < 1 {
		return New(ErrCodeInvalidPolicy, "%s must be at least 1, got %d", name, v).WithStage(StageValidate)
	}
	return nil
}

// ValidateOptionalPositive is ValidatePositive for optional values; nil passes.
func ValidateOptionalPositive(name string, v *int) error {
	if v == nil {
		return nil
	}
	return ValidatePositive(name, *v)
}
