// Package apperrors defines the failure kinds of a download run.
//
// Only ExpiredError is recoverable; every other kind aborts the run.
package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// ExpiredError is returned when the redirect page did not produce a download link in time.
type ExpiredError struct {
	Episode string
	After   time.Duration
}

// Error implements the error interface.
func (e *ExpiredError) Error() string {
	return fmt.Sprintf("link for episode %s expired after %s", e.Episode, e.After)
}

// Is allows for error checking with errors.Is().
func (e *ExpiredError) Is(target error) bool {
	_, ok := target.(*ExpiredError)
	return ok
}

// NewExpiredError creates a new ExpiredError.
func NewExpiredError(episode string, after time.Duration) *ExpiredError {
	return &ExpiredError{Episode: episode, After: after}
}

// TransportError is returned when a download answered with a non-success status.
type TransportError struct {
	URL        string
	StatusCode int
	Status     string
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("download %s: unexpected HTTP status %s", e.URL, e.Status)
}

// Is allows for error checking with errors.Is().
func (e *TransportError) Is(target error) bool {
	_, ok := target.(*TransportError)
	return ok
}

// NewTransportError creates a new TransportError.
func NewTransportError(url string, code int, status string) *TransportError {
	return &TransportError{URL: url, StatusCode: code, Status: status}
}

// StructuralError is returned when an element the site always had is missing.
// It usually means the site layout changed.
type StructuralError struct {
	What     string
	Selector string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	return fmt.Sprintf("page structure changed: %s not found (%s)", e.What, e.Selector)
}

// Is allows for error checking with errors.Is().
func (e *StructuralError) Is(target error) bool {
	_, ok := target.(*StructuralError)
	return ok
}

// NewStructuralError creates a new StructuralError.
func NewStructuralError(what, selector string) *StructuralError {
	return &StructuralError{What: what, Selector: selector}
}

// FilesystemError wraps a failed create, write, rename or scan.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *FilesystemError) Is(target error) bool {
	_, ok := target.(*FilesystemError)
	return ok
}

// NewFilesystemError creates a new FilesystemError.
func NewFilesystemError(op, path string, err error) *FilesystemError {
	return &FilesystemError{Op: op, Path: path, Err: err}
}

// IsRecoverable reports whether a run can continue after err by restarting the pass.
func IsRecoverable(err error) bool {
	return err != nil && errors.Is(err, &ExpiredError{})
}
