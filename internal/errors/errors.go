// Package errors classifies pipeline failures so the invoking workflow can
// tell a bad input file from a transient collaborator outage.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode represents a classified pipeline error.
type ErrorCode string

const (
	ErrParse                ErrorCode = "parse_error"
	ErrConfig               ErrorCode = "config_error"
	ErrResolution           ErrorCode = "resolution_error"
	ErrModelInvocation      ErrorCode = "model_invocation_error"
	ErrMalformedModelOutput ErrorCode = "malformed_model_output"
	ErrMalformedTranscript  ErrorCode = "malformed_transcript"
	ErrInvalidRecord        ErrorCode = "invalid_record"
	ErrQuerySubmission      ErrorCode = "query_submission_error"
	ErrStorage              ErrorCode = "storage_error"
	ErrWorkflow             ErrorCode = "workflow_error"
	ErrTranscription        ErrorCode = "transcription_error"
	ErrTimeout              ErrorCode = "timeout"
	ErrContextCancelled     ErrorCode = "context_cancelled"
)

// PipelineError is a structured error for pipeline failures.
type PipelineError struct {
	Code    ErrorCode
	Stage   string
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	} else if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	if e.Stage != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Stage, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// New returns a PipelineError without an underlying cause.
func New(code ErrorCode, stage, format string, args ...any) *PipelineError {
	return &PipelineError{Code: code, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and stage to err. Context expiry and cancellation win
// over the supplied code so callers always see a timeout as a timeout.
// An err that is already a PipelineError is returned unchanged.
func Wrap(err error, code ErrorCode, stage, message string) error {
	if err == nil {
		return nil
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = ErrTimeout
	case errors.Is(err, context.Canceled):
		code = ErrContextCancelled
	}
	return &PipelineError{Code: code, Stage: stage, Message: message, Cause: err}
}

// CodeOf returns the code of the first PipelineError in err's chain, or ""
// when err is not classified.
func CodeOf(err error) ErrorCode {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsRetryable returns true if the error is likely transient and worth
// retrying by the invoking workflow.
func IsRetryable(err error) bool {
	if info, ok := ErrorCodeRegistry[CodeOf(err)]; ok {
		return info.Retryable
	}
	return false
}
