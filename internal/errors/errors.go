package errors

import (
	"fmt"
	"time"
)

// Error types for the job matching pipeline
type ErrorType string

const (
	// Catalog errors
	ErrorTypeCatalog      ErrorType = "catalog"
	ErrorTypeCatalogLoad  ErrorType = "catalog_load"
	ErrorTypeCatalogParse ErrorType = "catalog_parse"

	// Matching errors
	ErrorTypeMatching ErrorType = "matching"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// CatalogError represents an error while loading or querying the job catalog
type CatalogError struct {
	Type        ErrorType
	Source      string
	Operation   string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// NewCatalogError creates a new catalog error with context
func NewCatalogError(op string, err error) *CatalogError {
	return &CatalogError{
		Type:       ErrorTypeCatalog,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithSource adds the catalog source (file path or dataset name) to the error
func (e *CatalogError) WithSource(source string) *CatalogError {
	e.Source = source
	return e
}

// WithRecoverable marks the error as recoverable
func (e *CatalogError) WithRecoverable(recoverable bool) *CatalogError {
	e.Recoverable = recoverable
	return e
}

// Error implements the error interface
func (e *CatalogError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.Source, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *CatalogError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable checks if the error can be retried
func (e *CatalogError) IsRecoverable() bool {
	return e.Recoverable
}

// ParseError represents a malformed catalog or dictionary record
type ParseError struct {
	Type       ErrorType
	Path       string
	Line       int
	Field      string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(path string, line int, field string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeCatalogParse,
		Path:       path,
		Line:       line,
		Field:      field,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d (field %q): %v",
		e.Path, e.Line, e.Field, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// MatchingError represents a match operation error
type MatchingError struct {
	Type       ErrorType
	Query      string
	Underlying error
	Timestamp  time.Time
}

// NewMatchingError creates a new matching error
func NewMatchingError(query string, err error) *MatchingError {
	return &MatchingError{
		Type:       ErrorTypeMatching,
		Query:      query,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *MatchingError) Error() string {
	return fmt.Sprintf("matching failed for query %q: %v", e.Query, e.Underlying)
}

// Unwrap returns the underlying error
func (e *MatchingError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
