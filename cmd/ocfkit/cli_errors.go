// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package main implements ocfkit, the developer CLI for resource agents.
package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/jllopis/kairos-ocf/pkg/errors"
)

// CLIError wraps AgentError with CLI-specific formatting and hints.
type CLIError struct {
	*errors.AgentError
	Hint string
}

// NewCLIError creates a new CLI error.
func NewCLIError(ae *errors.AgentError, hint string) *CLIError {
	return &CLIError{
		AgentError: ae,
		Hint:       hint,
	}
}

// Error returns the formatted error message with hints.
func (e *CLIError) Error() string {
	if e.AgentError == nil {
		return "unknown error"
	}

	msg := e.AgentError.Error()
	if e.Hint != "" {
		msg += "\n  Hint: " + e.Hint
	}
	return msg
}

// PrintError prints the error with appropriate formatting.
func (e *CLIError) PrintError(w io.Writer, asJSON bool) {
	if asJSON {
		payload, _ := json.Marshal(map[string]any{
			"error": map[string]string{
				"code":    string(e.AgentError.Code),
				"message": e.AgentError.Message,
				"hint":    e.Hint,
			},
		})
		fmt.Fprintln(w, string(payload))
		return
	}

	fmt.Fprintf(w, "Error [%s]: %s\n", FormatErrorCode(e.AgentError.Code), e.AgentError.Message)
	if e.AgentError.Err != nil {
		fmt.Fprintf(w, "  Cause: %v\n", e.AgentError.Err)
	}
	if e.Hint != "" {
		fmt.Fprintf(w, "  Hint: %s\n", e.Hint)
	}
}

// NewInvalidArgumentError creates an invalid argument error with CLI hints.
func NewInvalidArgumentError(arg, reason string) *CLIError {
	ae := errors.New(errors.CodeInternal, fmt.Sprintf("invalid argument: %s", reason), nil).
		WithContext("argument", arg).
		WithContext("reason", reason).
		WithRecoverable(false)
	return NewCLIError(ae, "run 'ocfkit help' for usage information")
}

// NewDescriptorError wraps a descriptor loading failure.
func NewDescriptorError(err error, path string) *CLIError {
	var ae *errors.AgentError
	if !stderrors.As(err, &ae) {
		ae = errors.New(errors.CodeInternal, "cannot load descriptor", err)
	}
	ae = ae.WithContext("path", path)

	hint := fmt.Sprintf("check %s for syntax errors", path)
	switch ae.Code {
	case errors.CodeIncompleteAgent:
		hint = "declare start, stop and monitor in the actions list"
	case errors.CodeMissingDescription:
		hint = "add shortdesc or longdesc to the descriptor"
	case errors.CodeInvalidParameterSpec:
		hint = "every parameter needs shortdesc and longdesc; required parameters take no default"
	}
	return NewCLIError(ae, hint)
}

// NewStateError wraps a journal database failure.
func NewStateError(err error, path string) *CLIError {
	ae := errors.New(errors.CodeInternal, "cannot read journal", err).
		WithContext("db", path).
		WithRecoverable(true)
	return NewCLIError(ae, "pass --db or set state.path in the agent configuration")
}

// NewConfigError creates a configuration error with CLI hints.
func NewConfigError(err error, configPath string) *CLIError {
	ae := errors.New(errors.CodeInternal, "configuration error", err).
		WithContext("config_path", configPath).
		WithRecoverable(false)

	hint := "check your configuration file syntax"
	if configPath != "" {
		hint = fmt.Sprintf("check %s for syntax errors", configPath)
	}
	return NewCLIError(ae, hint)
}

// PrintSimpleError prints a simple error message (for non-AgentError cases).
func PrintSimpleError(w io.Writer, err error, asJSON bool) {
	if asJSON {
		payload, _ := json.Marshal(map[string]any{
			"error": map[string]string{"code": "UNKNOWN", "message": err.Error()},
		})
		fmt.Fprintln(w, string(payload))
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err.Error())
}

// FormatErrorCode returns a user-friendly name for error codes.
func FormatErrorCode(code errors.ErrorCode) string {
	switch code {
	case errors.CodeInternal:
		return "Internal Error"
	case errors.CodeIncompleteAgent:
		return "Incomplete Agent"
	case errors.CodeInvalidParameterSpec:
		return "Invalid Parameter"
	case errors.CodeInvalidActionSpec:
		return "Invalid Action"
	case errors.CodeMissingDescription:
		return "Missing Description"
	case errors.CodeInvalidDescriptor:
		return "Invalid Descriptor"
	default:
		return string(code)
	}
}
