package errors

import (
	"errors"
)

var (
	// General Errors
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrPathNotAccessible = errors.New("path is not accessible")
	ErrInvalidURL        = errors.New("invalid URL")

	// Workflow Document Errors
	ErrWorkflowNotFound       = errors.New("workflow not found")
	ErrWorkflowRead           = errors.New("error reading workflow document")
	ErrWorkflowParse          = errors.New("error parsing workflow document")
	ErrWorkflowEncode         = errors.New("error encoding workflow document")
	ErrUnsupportedFormat      = errors.New("unsupported workflow document format")
	ErrUnsupportedCompression = errors.New("unsupported compression format")
	ErrStepIndexOutOfRange    = errors.New("step index out of range")

	// Validation Errors
	ErrValidationFailed = errors.New("workflow validation failed")

	// Execution Errors
	ErrNoHandler   = errors.New("no handler registered for step type")
	ErrStepFailed  = errors.New("step execution failed")
	ErrStepSkipped = errors.New("step skipped")
	ErrHookFailed  = errors.New("hook command failed")

	// Configuration Errors
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrConfigFileNotFound = errors.New("configuration file not found")
	ErrConfigParseError   = errors.New("error parsing configuration")
)

// Is reports whether any error in err's tree matches target
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's tree that matches target
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Join returns an error that wraps the given errors, or nil if all are nil
func Join(errs ...error) error { return errors.Join(errs...) }
