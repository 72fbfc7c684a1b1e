// Package errors provides the typed error hierarchy for scimrename operations.
// Every failure carries a kind so callers can tell a bad mapping row from a
// dead SCIM endpoint and decide whether to skip, abort or report.
package errors

import (
	"fmt"
	"path/filepath"
)

// ErrorType represents the category of error for classification and handling.
type ErrorType string

// Error type constants define the categories of errors that can occur while
// downloading or renaming users.
const (
	ErrTypeFile         ErrorType = "file"
	ErrTypeConfig       ErrorType = "config"
	ErrTypeParsing      ErrorType = "parsing"
	ErrTypeTransport    ErrorType = "transport"
	ErrTypePrecondition ErrorType = "precondition"
	ErrTypeAborted      ErrorType = "aborted"
)

// RenameError is the base error type that provides structured error information.
// Path names the file, URL or unit of work (page, uid) the error relates to.
type RenameError struct {
	Type    ErrorType
	Path    string
	Message string
	Cause   error
}

func (e *RenameError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s error for %s: %s", e.Type, e.Path, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *RenameError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *RenameError of the same kind, which lets
// errors.Is(err, errors.Precondition) style checks work through wrapping.
func (e *RenameError) Is(target error) bool {
	t, ok := target.(*RenameError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// Sentinels usable as errors.Is targets.
var (
	File         = &RenameError{Type: ErrTypeFile}
	Config       = &RenameError{Type: ErrTypeConfig}
	Parsing      = &RenameError{Type: ErrTypeParsing}
	Transport    = &RenameError{Type: ErrTypeTransport}
	Precondition = &RenameError{Type: ErrTypePrecondition}
	Aborted      = &RenameError{Type: ErrTypeAborted}
)

// FileError represents file system operation errors on the mapping file,
// its backups or the log file.
type FileError struct {
	*RenameError
}

// NewFileError creates a file operation error with context.
func NewFileError(path, message string, cause error) *FileError {
	return &FileError{
		RenameError: &RenameError{
			Type:    ErrTypeFile,
			Path:    path,
			Message: message,
			Cause:   cause,
		},
	}
}

// ConfigError represents configuration validation and loading errors.
// Raised before any request is sent so a bad token never reaches the API.
type ConfigError struct {
	*RenameError
}

// NewConfigError creates a configuration error without path context.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{
		RenameError: &RenameError{
			Type:    ErrTypeConfig,
			Message: message,
			Cause:   cause,
		},
	}
}

// NewConfigErrorWithPath creates a configuration error tied to a file such
// as a .env file.
func NewConfigErrorWithPath(path, message string, cause error) *ConfigError {
	return &ConfigError{
		RenameError: &RenameError{
			Type:    ErrTypeConfig,
			Path:    path,
			Message: message,
			Cause:   cause,
		},
	}
}

// ParsingError represents malformed mapping rows or undecodable API payloads.
type ParsingError struct {
	*RenameError
}

// NewParsingError creates a parsing error with file and context information.
func NewParsingError(path, message string, cause error) *ParsingError {
	return &ParsingError{
		RenameError: &RenameError{
			Type:    ErrTypeParsing,
			Path:    path,
			Message: message,
			Cause:   cause,
		},
	}
}

// TransportError represents a failed exchange with the SCIM API, either a
// network failure or a non-2xx status.
type TransportError struct {
	*RenameError
	StatusCode int
	Body       string
}

// NewTransportError creates a transport error for a network failure.
func NewTransportError(url, message string, cause error) *TransportError {
	return &TransportError{
		RenameError: &RenameError{
			Type:    ErrTypeTransport,
			Path:    url,
			Message: message,
			Cause:   cause,
		},
	}
}

// NewStatusError creates a transport error for a non-2xx response.
func NewStatusError(url string, statusCode int, body string) *TransportError {
	return &TransportError{
		RenameError: &RenameError{
			Type:    ErrTypeTransport,
			Path:    url,
			Message: fmt.Sprintf("unexpected status %d: %s", statusCode, body),
		},
		StatusCode: statusCode,
		Body:       body,
	}
}

// PreconditionError represents an operation that cannot start or finish
// because its input is empty (nothing fetched, nothing eligible).
type PreconditionError struct {
	*RenameError
}

// NewPreconditionError creates a precondition error.
func NewPreconditionError(path, message string) *PreconditionError {
	return &PreconditionError{
		RenameError: &RenameError{
			Type:    ErrTypePrecondition,
			Path:    path,
			Message: message,
		},
	}
}

// AbortedError represents a unit of work abandoned after retries ran out.
type AbortedError struct {
	*RenameError
	Attempts int
}

// NewAbortedError creates an aborted error for the given unit of work.
func NewAbortedError(unit string, attempts int, cause error) *AbortedError {
	return &AbortedError{
		RenameError: &RenameError{
			Type:    ErrTypeAborted,
			Path:    unit,
			Message: fmt.Sprintf("giving up after %d attempts", attempts),
			Cause:   cause,
		},
		Attempts: attempts,
	}
}

// WrapFileError converts standard Go errors into typed file errors with an
// absolute path.
func WrapFileError(path string, err error) error {
	if err == nil {
		return nil
	}

	absPath, absErr := filepath.Abs(path)
	if absErr != nil {
		absPath = path
	}
	return NewFileError(absPath, "file operation failed", err)
}
