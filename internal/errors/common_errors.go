package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeValidation marks a raw table or config that cannot be canonicalized.
	ErrTypeValidation ErrorType = "VALIDATION"
	// ErrTypeConversion marks canonical input that cannot become a wide table.
	ErrTypeConversion ErrorType = "CONVERSION"
	// ErrTypeResampling marks a wide table or resolution that cannot be re-gridded.
	ErrTypeResampling ErrorType = "RESAMPLING"

	ErrTypeNetwork  ErrorType = "NETWORK"
	ErrTypeParsing  ErrorType = "PARSING"
	ErrTypeStorage  ErrorType = "STORAGE"
	ErrTypeNotFound ErrorType = "NOT_FOUND"
	ErrTypeConfig   ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewValidationError creates a canonicalization error.
func NewValidationError(format string, args ...interface{}) *AppError {
	return NewAppError(ErrTypeValidation, fmt.Sprintf(format, args...), nil)
}

// NewConversionError creates a wide-assembly error.
func NewConversionError(format string, args ...interface{}) *AppError {
	return NewAppError(ErrTypeConversion, fmt.Sprintf(format, args...), nil)
}

// NewResamplingError creates a resampling error.
func NewResamplingError(format string, args ...interface{}) *AppError {
	return NewAppError(ErrTypeResampling, fmt.Sprintf(format, args...), nil)
}

// NewNetworkError creates a network-related error
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether any AppError in err's chain has the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	for err != nil {
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Type == t {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return IsType(err, ErrTypeValidation) }

// IsConversion reports whether err is a conversion error.
func IsConversion(err error) bool { return IsType(err, ErrTypeConversion) }

// IsResampling reports whether err is a resampling error.
func IsResampling(err error) bool { return IsType(err, ErrTypeResampling) }
