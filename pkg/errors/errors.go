// SPDX-License-Identifier: Apache-2.0

// Package errors provides typed errors for resource agent definition and
// dispatch, and maps them to OCF exit statuses.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jllopis/kairos-ocf/pkg/core"
)

// ErrorCode classifies agent errors.
type ErrorCode string

const (
	// CodeInternal indicates an internal error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeIncompleteAgent indicates an agent type lacks mandatory actions.
	CodeIncompleteAgent ErrorCode = "INCOMPLETE_AGENT_DEFINITION"

	// CodeInvalidParameterSpec indicates a malformed parameter declaration.
	CodeInvalidParameterSpec ErrorCode = "INVALID_PARAMETER_SPEC"

	// CodeInvalidActionSpec indicates a malformed action declaration.
	CodeInvalidActionSpec ErrorCode = "INVALID_ACTION_SPEC"

	// CodeMissingParameter indicates a required parameter was not supplied.
	CodeMissingParameter ErrorCode = "MISSING_REQUIRED_PARAMETER"

	// CodeInvalidParameterValue indicates a parameter value failed coercion.
	CodeInvalidParameterValue ErrorCode = "INVALID_PARAMETER_VALUE"

	// CodeUnknownAction indicates the requested action is not registered.
	CodeUnknownAction ErrorCode = "UNKNOWN_ACTION"

	// CodeNoAction indicates the agent was invoked without an action.
	CodeNoAction ErrorCode = "NO_ACTION_GIVEN"

	// CodeMissingDescription indicates the agent has no description text.
	CodeMissingDescription ErrorCode = "MISSING_DESCRIPTION"

	// CodeInvalidDescriptor indicates an agent definition file could not be read or parsed.
	CodeInvalidDescriptor ErrorCode = "INVALID_DESCRIPTOR"

	// CodeActionFailed indicates an action handler failed.
	CodeActionFailed ErrorCode = "ACTION_FAILED"
)

// Sentinels usable with errors.Is; matching is by code.
var (
	ErrIncompleteAgent       = &AgentError{Code: CodeIncompleteAgent}
	ErrInvalidParameterSpec  = &AgentError{Code: CodeInvalidParameterSpec}
	ErrInvalidActionSpec     = &AgentError{Code: CodeInvalidActionSpec}
	ErrMissingParameter      = &AgentError{Code: CodeMissingParameter}
	ErrInvalidParameterValue = &AgentError{Code: CodeInvalidParameterValue}
	ErrUnknownAction         = &AgentError{Code: CodeUnknownAction}
	ErrNoAction              = &AgentError{Code: CodeNoAction}
	ErrMissingDescription    = &AgentError{Code: CodeMissingDescription}
	ErrInvalidDescriptor     = &AgentError{Code: CodeInvalidDescriptor}
)

// AgentError is a typed error with context for logging.
// It implements the error interface and can be unwrapped with errors.As().
type AgentError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Recoverable bool
	status      *core.Status
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *AgentError) Unwrap() error {
	return e.Err
}

// Is matches another AgentError with the same code.
func (e *AgentError) Is(target error) bool {
	t, ok := target.(*AgentError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *AgentError) MarshalJSON() ([]byte, error) {
	cause := ""
	if e.Err != nil {
		cause = e.Err.Error()
	}
	return json.Marshal(&struct {
		Message     string                 `json:"message"`
		Code        string                 `json:"code"`
		Err         string                 `json:"error,omitempty"`
		Status      int                    `json:"status"`
		Recoverable bool                   `json:"recoverable"`
		Context     map[string]interface{} `json:"context,omitempty"`
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         cause,
		Status:      int(e.Status()),
		Recoverable: e.Recoverable,
		Context:     e.Context,
	})
}

// New creates a new AgentError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *AgentError {
	return &AgentError{
		Code:    code,
		Message: msg,
		Err:     cause,
		Context: make(map[string]interface{}),
	}
}

// Newf creates an AgentError with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...any) *AgentError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *AgentError) WithContext(key string, value interface{}) *AgentError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *AgentError) WithRecoverable(recoverable bool) *AgentError {
	e.Recoverable = recoverable
	return e
}

// WithStatus overrides the exit status the error maps to.
func (e *AgentError) WithStatus(status core.Status) *AgentError {
	e.status = &status
	return e
}

// Status returns the OCF exit status for the error.
func (e *AgentError) Status() core.Status {
	if e.status != nil {
		return *e.status
	}
	return codeToStatus(e.Code)
}

// AsAgentError attempts to convert an error to an AgentError.
// Returns the error as AgentError if it is one, or wraps it otherwise.
func AsAgentError(err error) *AgentError {
	if err == nil {
		return nil
	}
	var ae *AgentError
	if errors.As(err, &ae) {
		return ae
	}
	return New(CodeInternal, "wrapped error", err)
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	var ae *AgentError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Code == code
}

// StatusOf returns the exit status an error maps to.
// A nil error maps to success; foreign errors map to a generic failure.
func StatusOf(err error) core.Status {
	if err == nil {
		return core.Success
	}
	var ae *AgentError
	if errors.As(err, &ae) {
		return ae.Status()
	}
	return core.ErrGeneric
}

// WithStatus wraps err so that it reports the given exit status.
func WithStatus(status core.Status, err error) *AgentError {
	return New(CodeActionFailed, "action failed", err).WithStatus(status)
}

// RecoverableString returns "true" or "false" as a string for observability.
func (e *AgentError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}

// codeToStatus maps error codes to OCF exit statuses.
func codeToStatus(code ErrorCode) core.Status {
	switch code {
	case CodeMissingParameter, CodeInvalidParameterValue:
		return core.ErrConfigured
	case CodeUnknownAction:
		return core.ErrUnimplemented
	case CodeNoAction:
		return core.ErrArgs
	default:
		return core.ErrGeneric
	}
}
