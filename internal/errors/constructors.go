package errors

import "fmt"

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *NavgenError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *NavgenError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// InputNotFound reports a missing documentation input (main page, source dir).
func InputNotFound(kind, path string) *NavgenError {
	return New(ErrCodeInputNotFound, fmt.Sprintf("%s not found: %s", kind, path)).
		WithDetail("kind", kind).
		WithDetail("path", path)
}

func ParseFailed(path string, err error) *NavgenError {
	return Wrap(err, ErrCodeParseFailed, fmt.Sprintf("failed to parse %s", path)).
		WithDetail("path", path)
}

// MalformedIndex reports a navigation script that cannot be decoded.
func MalformedIndex(path, reason string) *NavgenError {
	return New(ErrCodeMalformedIndex, fmt.Sprintf("malformed navigation script %s: %s", path, reason)).
		WithDetail("path", path)
}

func WriteFailed(path string, err error) *NavgenError {
	return Wrap(err, ErrCodeWriteFailed, fmt.Sprintf("failed to write %s", path)).
		WithDetail("path", path)
}
