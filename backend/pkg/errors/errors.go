package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeResolver represents location resolution errors
	ErrorTypeResolver ErrorType = "resolver"
	// ErrorTypeExtraction represents preference extraction errors
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// ErrorType returns the category this error belongs to
func (e *BaseError) ErrorType() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when the Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph operation fails
type ErrGraphQueryFailed struct {
	*BaseError
	Operation string
}

func NewGraphQueryFailed(operation string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("graph operation failed: %s", operation), err),
		Operation: operation,
	}
}

// Resolver Errors

// ErrNoLocationAvailable is returned when no explicit location was supplied
// and the user has no location history to fall back on
type ErrNoLocationAvailable struct {
	*BaseError
	UserID string
}

func NewNoLocationAvailable(userID string) *ErrNoLocationAvailable {
	return &ErrNoLocationAvailable{
		BaseError: NewBaseError(ErrorTypeResolver, fmt.Sprintf("no location available for user: %s", userID), nil),
		UserID:    userID,
	}
}

// Extraction Errors

// ErrModelOutputMalformed is returned when model output cannot be parsed even
// after brace completion. It is absorbed by the sanitizer and only surfaces
// in diagnostics, never to callers.
type ErrModelOutputMalformed struct {
	*BaseError
}

func NewModelOutputMalformed(err error) *ErrModelOutputMalformed {
	return &ErrModelOutputMalformed{
		BaseError: NewBaseError(ErrorTypeExtraction, "model output is not valid JSON", err),
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error (or any error it wraps) is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	var typed interface{ ErrorType() ErrorType }
	if errors.As(err, &typed) {
		return typed.ErrorType() == errType
	}
	return false
}

// IsNoLocationAvailable checks whether err is the resolver's terminal
// no-location condition
func IsNoLocationAvailable(err error) bool {
	var target *ErrNoLocationAvailable
	return errors.As(err, &target)
}

// IsConnectionFailed checks whether err is a Neo4j connection failure
func IsConnectionFailed(err error) bool {
	var target *ErrGraphConnectionFailed
	return errors.As(err, &target)
}
