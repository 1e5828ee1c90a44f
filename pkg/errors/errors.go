// Package errors provides the fwmap error taxonomy.
//
// Four failure classes matter to reconciliation: an extraction miss drops a
// candidate, an evidence violation prunes a record, an unavailable
// collaborator skips one source for the run, and malformed persisted state
// loads as empty. None of them abort a batch.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// New is errors.New.
var New = errors.New

// Sentinels
var (
	// ErrNotFound indicates a requested record or device does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates caller-supplied input was rejected.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtractionMiss indicates a required field was absent from the input text.
	ErrExtractionMiss = errors.New("extraction miss")

	// ErrNoEvidence indicates a record has neither an artifact nor a usable URL.
	ErrNoEvidence = errors.New("no evidence")

	// ErrCollaboratorUnavailable indicates an external source could not be reached.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	// ErrRateLimited indicates the release host refused the request for quota reasons.
	ErrRateLimited = errors.New("rate limited")
)

// ExtractionMiss reports that a required field could not be extracted.
type ExtractionMiss struct {
	Field string
	Input string
}

// Error implements the error interface.
func (e *ExtractionMiss) Error() string {
	return fmt.Sprintf("no %s found in %q", e.Field, e.Input)
}

// Is implements errors.Is support.
func (e *ExtractionMiss) Is(target error) bool {
	return target == ErrExtractionMiss
}

// NewExtractionMiss creates an ExtractionMiss.
func NewExtractionMiss(field, input string) *ExtractionMiss {
	return &ExtractionMiss{Field: field, Input: input}
}

// EvidenceError reports a non-manual candidate or record without evidence.
type EvidenceError struct {
	Key    string
	Reason string
}

// Error implements the error interface.
func (e *EvidenceError) Error() string {
	return fmt.Sprintf("firmware %s has no evidence: %s", e.Key, e.Reason)
}

// Is implements errors.Is support.
func (e *EvidenceError) Is(target error) bool {
	return target == ErrNoEvidence
}

// CollaboratorError wraps a failure of an external source.
type CollaboratorError struct {
	Collaborator string // "releases", "directory", "crawl"
	Op           string
	Err          error
}

// Error implements the error interface.
func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s unavailable during %s: %v", e.Collaborator, e.Op, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *CollaboratorError) Is(target error) bool {
	return target == ErrCollaboratorUnavailable
}

// NewCollaboratorError creates a CollaboratorError.
func NewCollaboratorError(collaborator, op string, err error) *CollaboratorError {
	return &CollaboratorError{Collaborator: collaborator, Op: op, Err: err}
}

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents rejected input.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents a failed call to the release host.
type APIError struct {
	Host       string
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Host, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Host, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return target == ErrRateLimited
	case e.StatusCode == http.StatusForbidden && e.Message == "rate limit exceeded":
		return target == ErrRateLimited
	case e.StatusCode >= 500:
		return target == ErrCollaboratorUnavailable
	case e.StatusCode == http.StatusNotFound:
		return target == ErrNotFound
	}
	return false
}

// ParseError represents a malformed document.
type ParseError struct {
	Format  string
	File    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError represents a failed filesystem operation.
type IOError struct {
	Operation string
	Path      string
	Err       error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *IOError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError reports whether err is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsExtractionMiss reports whether err is an extraction miss.
func IsExtractionMiss(err error) bool {
	return errors.Is(err, ErrExtractionMiss)
}

// IsCollaboratorUnavailable reports whether err marks an unreachable source.
func IsCollaboratorUnavailable(err error) bool {
	return errors.Is(err, ErrCollaboratorUnavailable)
}

// WrapIO wraps err as an IOError. A nil err returns nil.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapParse wraps err as a ParseError. A nil err returns nil.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}

// WrapCollaborator wraps err as a CollaboratorError. A nil err returns nil.
func WrapCollaborator(collaborator, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewCollaboratorError(collaborator, op, err)
}
