package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Input errors
	ErrCodeInputNotFound ErrorCode = "INPUT_NOT_FOUND"
	ErrCodeParseFailed   ErrorCode = "PARSE_FAILED"

	// Index errors
	ErrCodeMalformedIndex ErrorCode = "MALFORMED_INDEX"
	ErrCodeWriteFailed    ErrorCode = "WRITE_FAILED"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// NavgenError represents a structured error with context
type NavgenError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *NavgenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *NavgenError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *NavgenError) WithDetail(key string, value interface{}) *NavgenError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *NavgenError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new NavgenError
func New(code ErrorCode, message string) *NavgenError {
	return &NavgenError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a NavgenError
func Wrap(err error, code ErrorCode, message string) *NavgenError {
	return &NavgenError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific NavgenError code
func Is(err error, code ErrorCode) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	navErr, ok := err.(*NavgenError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return navErr.Code
}
