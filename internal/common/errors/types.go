package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeConnection represents failures talking to a remote backend
	ErrTypeConnection ErrorType = "connection"
	// ErrTypeValidation represents invalid arguments supplied by the caller
	ErrTypeValidation ErrorType = "validation"
	// ErrTypeConfig represents configuration errors
	ErrTypeConfig ErrorType = "config"
	// ErrTypeNotFound represents resource not found errors
	ErrTypeNotFound ErrorType = "not_found"
	// ErrTypeInternal represents internal system errors
	ErrTypeInternal ErrorType = "internal"
	// ErrTypeParse represents a stored value that cannot be converted to the requested type
	ErrTypeParse ErrorType = "parse"
	// ErrTypeTypeMismatch represents a read into a different Go type than was stored
	ErrTypeTypeMismatch ErrorType = "type_mismatch"
	// ErrTypeConsistency represents a broken internal invariant (locking or logic bug)
	ErrTypeConsistency ErrorType = "consistency"
	// ErrTypeCapacity represents a write rejected by a container size limit
	ErrTypeCapacity ErrorType = "capacity"
	// ErrTypeStore represents a failure persisting a computed set-algebra result
	ErrTypeStore ErrorType = "store"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	parts := []string{string(e.Type), e.Message}

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		contextParts := make([]string, 0, len(keys))
		for _, k := range keys {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, fmt.Sprintf("context={%s}", strings.Join(contextParts, ", ")))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause
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

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// ConnectionError creates a new connection error
func ConnectionError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeConnection,
		Message: msg,
		Cause:   cause,
	}
}

// ValidationError creates a new validation error
func ValidationError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeValidation,
		Message: msg,
	}
}

// ConfigError creates a new configuration error
func ConfigError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeConfig,
		Message: msg,
	}
}

// NotFoundError creates a new not found error
func NotFoundError(resource string) *AppError {
	return &AppError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// InternalError creates a new internal error
func InternalError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeInternal,
		Message: msg,
		Cause:   cause,
	}
}

// ParseError reports a stored value that could not be converted to the wanted type.
func ParseError(value, target string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeParse,
		Message: fmt.Sprintf("unable to parse %q into %s", value, target),
		Cause:   cause,
	}
}

// TypeMismatchError reports a read of key into a type other than the stored one.
func TypeMismatchError(key, stored, requested string) *AppError {
	return &AppError{
		Type:    ErrTypeTypeMismatch,
		Message: fmt.Sprintf("entry %q holds %s, requested %s", key, stored, requested),
	}
}

// ConsistencyError creates a new internal-consistency error
func ConsistencyError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeConsistency,
		Message: msg,
	}
}

// CapacityError reports a write that would grow a container past its limit.
func CapacityError(key string, limit int) *AppError {
	return &AppError{
		Type:    ErrTypeCapacity,
		Message: fmt.Sprintf("container %q would exceed %d entries", key, limit),
	}
}

// StoreError reports a failure writing a computed result into destination.
func StoreError(destination string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeStore,
		Message: fmt.Sprintf("failed to store result into %q", destination),
		Cause:   cause,
	}
}

// IsType checks if an error, or any error it wraps, is an AppError of errType
func IsType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}

	return appErr.Type == errType
}

// GetType returns the error type if it's an AppError, otherwise returns ErrTypeInternal
func GetType(err error) ErrorType {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return ErrTypeInternal
	}

	return appErr.Type
}
