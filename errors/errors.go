package errors

import "fmt"

// Application error types organized by category for better error handling

type ErrorType int

// Domain/Business Logic Errors - errors related to business rules and validation
const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeValidation
	ErrorTypeNotFound
	ErrorTypeInsufficientStock
	ErrorTypeTooManyAttempts
	ErrorTypeVersionConflict

	// Infrastructure Errors - errors related to external systems and services
	ErrorTypeDatabase
	ErrorTypeCacheUnavailable

	// System/Configuration Errors - errors related to system setup and configuration
	ErrorTypeConfiguration
)

// String returns the string representation of error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND_ERROR"
	case ErrorTypeInsufficientStock:
		return "INSUFFICIENT_STOCK_ERROR"
	case ErrorTypeTooManyAttempts:
		return "TOO_MANY_ATTEMPTS_ERROR"
	case ErrorTypeVersionConflict:
		return "VERSION_CONFLICT_ERROR"
	case ErrorTypeDatabase:
		return "DATABASE_ERROR"
	case ErrorTypeCacheUnavailable:
		return "CACHE_UNAVAILABLE_ERROR"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Short aliases used throughout the codebase
const (
	ValidationError        = ErrorTypeValidation
	NotFoundError          = ErrorTypeNotFound
	InsufficientStockError = ErrorTypeInsufficientStock
	TooManyAttemptsError   = ErrorTypeTooManyAttempts
	VersionConflictError   = ErrorTypeVersionConflict
	DatabaseError          = ErrorTypeDatabase
	CacheUnavailableError  = ErrorTypeCacheUnavailable
	ConfigurationError     = ErrorTypeConfiguration
)

type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// Domain/Business Logic Error Constructors
func NewValidationError(message string) *AppError {
	return New(ValidationError, message)
}

func NewNotFoundError(message string) *AppError {
	return New(NotFoundError, message)
}

// NewInsufficientStockError reports a reservation that cannot be satisfied.
// The offending product ids are carried in the message so the caller can
// surface them; no partial decrements have been applied when this is returned.
func NewInsufficientStockError(message string) *AppError {
	return New(InsufficientStockError, message)
}

func NewTooManyAttemptsError(message string) *AppError {
	return New(TooManyAttemptsError, message)
}

func NewVersionConflictError(message string) *AppError {
	return New(VersionConflictError, message)
}

// Infrastructure Error Constructors
func NewDatabaseError(message string, cause error) *AppError {
	return Wrap(DatabaseError, message, cause)
}

func NewCacheUnavailableError(message string, cause error) *AppError {
	return Wrap(CacheUnavailableError, message, cause)
}

// System/Configuration Error Constructors
func NewConfigurationError(message string, cause error) *AppError {
	return Wrap(ConfigurationError, message, cause)
}

// Helper functions for error type checking
func IsValidationError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == ValidationError
	}
	return false
}

func IsNotFoundError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == NotFoundError
	}
	return false
}

func IsInsufficientStockError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == InsufficientStockError
	}
	return false
}

func IsTooManyAttemptsError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == TooManyAttemptsError
	}
	return false
}

func IsVersionConflictError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == VersionConflictError
	}
	return false
}

func IsDatabaseError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == DatabaseError
	}
	return false
}

func IsCacheUnavailableError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == CacheUnavailableError
	}
	return false
}

func IsConfigurationError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == ConfigurationError
	}
	return false
}
