// SPDX-License-Identifier: Apache-2.0

// Package core provides the shared types of the resource agent runtime:
// exit statuses, roles, the environment accessor and context helpers.
package core

import "fmt"

// Status is the exit code an agent process reports to the resource manager.
type Status int

const (
	// Success means the action completed.
	Success Status = 0

	// ErrGeneric is an unspecified failure.
	ErrGeneric Status = 1

	// ErrArgs means the agent was invoked with bad arguments.
	ErrArgs Status = 2

	// ErrUnimplemented means the requested action is not supported.
	ErrUnimplemented Status = 3

	// ErrPerm means the action failed for lack of privileges.
	ErrPerm Status = 4

	// ErrInstalled means a required component is missing on the node.
	ErrInstalled Status = 5

	// ErrConfigured means the resource configuration is invalid.
	ErrConfigured Status = 6

	// NotRunning means the resource is cleanly stopped.
	NotRunning Status = 7

	// RunningMaster means the resource is running in the master role.
	RunningMaster Status = 8

	// FailedMaster means the resource failed while in the master role.
	FailedMaster Status = 9
)

var statusNames = map[Status]string{
	Success:          "OCF_SUCCESS",
	ErrGeneric:       "OCF_ERR_GENERIC",
	ErrArgs:          "OCF_ERR_ARGS",
	ErrUnimplemented: "OCF_ERR_UNIMPLEMENTED",
	ErrPerm:          "OCF_ERR_PERM",
	ErrInstalled:     "OCF_ERR_INSTALLED",
	ErrConfigured:    "OCF_ERR_CONFIGURED",
	NotRunning:       "OCF_NOT_RUNNING",
	RunningMaster:    "OCF_RUNNING_MASTER",
	FailedMaster:     "OCF_FAILED_MASTER",
}

// String returns the OCF constant name for the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("OCF_STATUS(%d)", int(s))
}

// Valid reports whether s is one of the defined exit codes.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}
