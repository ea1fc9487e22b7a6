package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nodewee/doc-pipeline/pkg/constants"
	"github.com/nodewee/doc-pipeline/pkg/types"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeSystem     ErrorType = "system"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypePermission ErrorType = "permission"

	// Pipeline failures. All of them are fatal to the run.
	ErrorTypeUnclassifiable      ErrorType = "unclassifiable_input"
	ErrorTypeResourceDirMissing  ErrorType = "resource_directory_missing"
	ErrorTypeResourceFileMissing ErrorType = "resource_file_missing"
	ErrorTypeStageFailed         ErrorType = "stage_failed"
)

// Context keys used by the pipeline error constructors
const (
	ContextStage    = "stage"
	ContextKind     = "kind"
	ContextLanguage = "language"
	ContextPath     = "path"
	ContextExitCode = "exit_code"
)

// AppError represents an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type
	}
	return false
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// ContextString returns a context value as a string, or "" when absent
func (e *AppError) ContextString(key string) string {
	if v, ok := e.Context[key]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

// NewError creates a new application error
func NewError(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return NewError(ErrorTypeValidation, message, cause)
}

// NewUnclassifiableError reports that no input file carried a known template tag
func NewUnclassifiableError(message string) *AppError {
	return NewError(ErrorTypeUnclassifiable, message, nil)
}

// NewResourceDirMissingError reports a missing per-language resource directory
func NewResourceDirMissingError(lang, path string) *AppError {
	msg := fmt.Sprintf("unable to find data files for language '%s' in path %s", lang, path)
	return NewError(ErrorTypeResourceDirMissing, msg, nil).
		WithContext(ContextLanguage, lang).
		WithContext(ContextPath, path)
}

// NewResourceFileMissingError reports an unresolved correction resource
func NewResourceFileMissingError(kind types.ResourceKind, lang, path string) *AppError {
	msg := fmt.Sprintf("unable to find %s file for language '%s' in path %s", kind, lang, path)
	return NewError(ErrorTypeResourceFileMissing, msg, nil).
		WithContext(ContextKind, string(kind)).
		WithContext(ContextLanguage, lang).
		WithContext(ContextPath, path)
}

// NewStageFailedError reports a failed engine invocation
func NewStageFailedError(stage types.StageName, exitCode int, cause error) *AppError {
	msg := fmt.Sprintf("%s stage failed", stage)
	if exitCode != 0 {
		msg = fmt.Sprintf("%s stage failed with exit status %d", stage, exitCode)
	}
	return NewError(ErrorTypeStageFailed, msg, cause).
		WithContext(ContextStage, string(stage)).
		WithContext(ContextExitCode, exitCode)
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the original type unless explicitly overridden
	var appErr *AppError
	if errors.As(err, &appErr) && errorType == "" {
		return &AppError{
			Type:    appErr.Type,
			Message: message + ": " + appErr.Message,
			Cause:   appErr.Cause,
			Context: appErr.Context,
		}
	}

	if errorType == "" {
		errorType = classifyError(err)
	}

	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// classifyError automatically classifies an error based on its content
func classifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeSystem
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "permission denied") || strings.Contains(errStr, "access denied"):
		return ErrorTypePermission
	case strings.Contains(errStr, "no such file") || strings.Contains(errStr, "not found"):
		return ErrorTypeNotFound
	case strings.Contains(errStr, "invalid") || strings.Contains(errStr, "bad"):
		return ErrorTypeValidation
	default:
		return ErrorTypeSystem
	}
}

// GetErrorType extracts the error type from an error
func GetErrorType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return classifyError(err)
}

// ExitCode maps an error to the process exit code expected by the host job
// system. Both resource failures share one code.
func ExitCode(err error) int {
	if err == nil {
		return constants.ExitSuccess
	}
	switch GetErrorType(err) {
	case ErrorTypeUnclassifiable:
		return constants.ExitUnclassifiable
	case ErrorTypeResourceDirMissing, ErrorTypeResourceFileMissing:
		return constants.ExitMissingResources
	default:
		return constants.ExitFailure
	}
}

