package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Listings API errors
var (
	ErrSourceUnavailable   = errors.New("listings API unavailable")
	ErrUnexpectedStatus    = errors.New("unexpected HTTP status")
	ErrResponseTooLarge    = errors.New("response size exceeds limit")
	ErrObservationNotFound = errors.New("observation not found")
)

// Data Processing errors
var (
	ErrInvalidDataFormat   = errors.New("invalid data format")
	ErrDataMarshalFailed   = errors.New("failed to marshal data")
	ErrDataUnmarshalFailed = errors.New("failed to unmarshal data")
	ErrExportFailed        = errors.New("failed to export chart")
)

// Validation errors
var (
	ErrInvalidRange      = errors.New("unknown range")
	ErrInvalidPreference = errors.New("invalid preference value")
	ErrMissingSelection  = errors.New("no observation selected")
)

// Configuration errors
var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Database errors
var (
	ErrDatabaseNotInit    = errors.New("database not initialized")
	ErrDatabaseConnection = errors.New("database connection error")
	ErrQueryFailed        = errors.New("database query failed")
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeData       ErrorType = "data_processing"
	ErrorTypeConfig     ErrorType = "configuration"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// CategorizedError wraps an error with additional context and categorization
type CategorizedError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]any
}

func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

func (e *CategorizedError) Is(target error) bool {
	if target == nil {
		return false
	}
	if other, ok := target.(*CategorizedError); ok {
		return e.Type == other.Type && e.Code == other.Code
	}
	return errors.Is(e.Cause, target)
}

func NewCategorizedError(errorType ErrorType, code, message string, cause error) *CategorizedError {
	return &CategorizedError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error
func (e *CategorizedError) WithContext(key string, value any) *CategorizedError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func NewDataError(code, message string, cause error) *CategorizedError {
	return NewCategorizedError(ErrorTypeData, code, message, cause)
}

func NewConfigError(code, message string, cause error) *CategorizedError {
	return NewCategorizedError(ErrorTypeConfig, code, message, cause)
}

func NewNetworkError(code, message string, cause error) *CategorizedError {
	return NewCategorizedError(ErrorTypeNetwork, code, message, cause)
}

func NewDatabaseError(code, message string, cause error) *CategorizedError {
	return NewCategorizedError(ErrorTypeDatabase, code, message, cause)
}

func NewValidationError(code, message string, cause error) *CategorizedError {
	return NewCategorizedError(ErrorTypeValidation, code, message, cause)
}

func NewNotFoundError(code, message string, cause error) *CategorizedError {
	return NewCategorizedError(ErrorTypeNotFound, code, message, cause)
}

func IsNetworkError(err error) bool {
	return GetErrorType(err) == ErrorTypeNetwork
}

func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// GetErrorCode extracts error code from categorized error
func GetErrorCode(err error) string {
	var categorizedErr *CategorizedError
	if errors.As(err, &categorizedErr) {
		return categorizedErr.Code
	}
	return "unknown"
}

// GetErrorType extracts error type from categorized error
func GetErrorType(err error) ErrorType {
	var categorizedErr *CategorizedError
	if errors.As(err, &categorizedErr) {
		return categorizedErr.Type
	}
	return ErrorTypeInternal
}

// HTTPStatus maps an error category onto the status code handlers reply with.
func HTTPStatus(err error) int {
	switch GetErrorType(err) {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeNetwork:
		return http.StatusBadGateway
	case ErrorTypeDatabase, ErrorTypeConfig:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WrapError wraps an existing error with categorization
func WrapError(err error, errorType ErrorType, code, message string) *CategorizedError {
	if err == nil {
		return nil
	}
	return NewCategorizedError(errorType, code, message, err)
}
