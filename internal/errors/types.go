package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeSyntax   ErrorType = "syntax"
	ErrorTypeBundle   ErrorType = "bundle"
	ErrorTypeUpload   ErrorType = "upload"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeNetwork  ErrorType = "network"
	ErrorTypeInternal ErrorType = "internal"
)

// CloudSyncError is a structured error type with context.
type CloudSyncError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	FilePath    string
	Line        int
	Column      int
	Recoverable bool
}

// Error implements the error interface.
func (e *CloudSyncError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.FilePath != "" {
		location := e.FilePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
			if e.Column > 0 {
				location += fmt.Sprintf(":%d", e.Column)
			}
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *CloudSyncError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *CloudSyncError) Is(target error) bool {
	var t *CloudSyncError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *CloudSyncError) WithContext(key string, value interface{}) *CloudSyncError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithLocation adds file location information.
func (e *CloudSyncError) WithLocation(filePath string, line, column int) *CloudSyncError {
	e.FilePath = filePath
	e.Line = line
	e.Column = column

	return e
}

// NewConfigError creates a configuration error. Configuration errors are
// recoverable because the CLI re-prompts for the offending value.
func NewConfigError(code, message string) *CloudSyncError {
	return &CloudSyncError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewBundleError creates a bundling error.
func NewBundleError(code, message string, cause error) *CloudSyncError {
	return &CloudSyncError{
		Type:        ErrorTypeBundle,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewUploadError creates an upload error.
func NewUploadError(code, message string, cause error) *CloudSyncError {
	return &CloudSyncError{
		Type:        ErrorTypeUpload,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewNetworkError creates a network error.
func NewNetworkError(code, message string, cause error) *CloudSyncError {
	return &CloudSyncError{
		Type:        ErrorTypeNetwork,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *CloudSyncError {
	return &CloudSyncError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *CloudSyncError {
	return &CloudSyncError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// WrapError attaches a category and code to err. Recoverability follows
// the category: config, syntax, bundle, upload and network failures are.
func WrapError(err error, errType ErrorType, code, message string) *CloudSyncError {
	if err == nil {
		return nil
	}
	recoverable := errType != ErrorTypeIO && errType != ErrorTypeInternal
	return &CloudSyncError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: recoverable,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var se *SyntaxError
	if errors.As(err, &se) {
		return true
	}

	var ce *CloudSyncError
	if errors.As(err, &ce) {
		return ce.Recoverable
	}

	return false
}

// GetErrorType returns the category of err. Errors not produced by this
// package are reported as internal.
func GetErrorType(err error) ErrorType {
	var se *SyntaxError
	if errors.As(err, &se) {
		return ErrorTypeSyntax
	}

	var ce *CloudSyncError
	if errors.As(err, &ce) {
		return ce.Type
	}

	return ErrorTypeInternal
}

// IsUploadError checks if an error happened while uploading.
func IsUploadError(err error) bool {
	return GetErrorType(err) == ErrorTypeUpload
}

// IsBundleError checks if an error happened while bundling.
func IsBundleError(err error) bool {
	return GetErrorType(err) == ErrorTypeBundle
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger   Logger
	notifier Notifier
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// Notifier receives errors that nobody anticipated, typically an error
// tracking service.
type Notifier interface {
	Notify(ctx context.Context, err error)
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger, notifier Notifier) *ErrorHandler {
	return &ErrorHandler{
		logger:   logger,
		notifier: notifier,
	}
}

// Handle logs err according to its category. Internal and I/O errors are
// forwarded to the notifier as well.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	errType := GetErrorType(err)
	switch errType {
	case ErrorTypeSyntax, ErrorTypeConfig:
		if h.logger != nil {
			h.logger.Warn(ctx, err, "Invalid input", "type", errType)
		}
	case ErrorTypeBundle:
		if h.logger != nil {
			h.logger.Warn(ctx, err, "Bundling failed", "type", errType)
		}
	case ErrorTypeUpload, ErrorTypeNetwork:
		if h.logger != nil {
			h.logger.Error(ctx, err, "Upload error", "type", errType)
		}
	default:
		if h.logger != nil {
			h.logger.Error(ctx, err, "Unexpected error", "type", errType)
		}
		if h.notifier != nil {
			h.notifier.Notify(ctx, err)
		}
	}
}

// Common error codes.
const (
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeInvalidMode      = "ERR_INVALID_MODE"
	ErrCodeInvalidSubdomain = "ERR_INVALID_SUBDOMAIN"
	ErrCodeBundleFailed     = "ERR_BUNDLE_FAILED"
	ErrCodeUploadFailed     = "ERR_UPLOAD_FAILED"
	ErrCodeRequestFailed    = "ERR_REQUEST_FAILED"
	ErrCodeArtifact         = "ERR_ARTIFACT"
	ErrCodeWalkFailed       = "ERR_WALK_FAILED"
	ErrCodePanic            = "ERR_PANIC"
	ErrCodeInternalError    = "ERR_INTERNAL"
)

// ErrInvalidSubdomain creates a subdomain validation error.
func ErrInvalidSubdomain(subdomain string) *CloudSyncError {
	return NewConfigError(ErrCodeInvalidSubdomain, "invalid subdomain: "+subdomain)
}

// ErrFileNotFound creates a missing path error.
func ErrFileNotFound(path string) *CloudSyncError {
	return NewConfigError(ErrCodeFileNotFound, "file not found: "+path)
}
