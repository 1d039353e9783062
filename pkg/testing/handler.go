// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/errors"
	"github.com/jllopis/kairos-ocf/pkg/ra"
)

// ScriptedHandler is a fake action handler for testing agents.
// It returns queued outcomes in order and records every call.
type ScriptedHandler struct {
	mu           sync.Mutex
	outcomes     []Outcome
	currentIndex int
	calls        []Call
	defaultErr   error
	onCall       func(ctx context.Context, a *ra.Agent) (core.Status, error)
}

// Outcome is one scripted handler result.
type Outcome struct {
	Status core.Status
	Error  error
	// Condition allows conditional outcomes based on the invocation
	Condition func(call Call) bool
}

// Call records one handler invocation.
type Call struct {
	Action   string
	Instance string
	Params   map[string]string
	Probe    bool
}

// NewScriptedHandler creates a new scripted handler.
func NewScriptedHandler() *ScriptedHandler {
	return &ScriptedHandler{
		outcomes: make([]Outcome, 0),
		calls:    make([]Call, 0),
	}
}

// AddStatus queues a status with no error.
func (h *ScriptedHandler) AddStatus(status core.Status) *ScriptedHandler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outcomes = append(h.outcomes, Outcome{Status: status})
	return h
}

// AddError queues a failure.
func (h *ScriptedHandler) AddError(status core.Status, err error) *ScriptedHandler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outcomes = append(h.outcomes, Outcome{Status: status, Error: err})
	return h
}

// AddOutcome adds a fully configured outcome.
func (h *ScriptedHandler) AddOutcome(o Outcome) *ScriptedHandler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outcomes = append(h.outcomes, o)
	return h
}

// WithDefaultError sets the error to return when no outcomes are queued.
func (h *ScriptedHandler) WithDefaultError(err error) *ScriptedHandler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.defaultErr = err
	return h
}

// WithFunc sets a custom function that runs instead of the script.
func (h *ScriptedHandler) WithFunc(fn func(ctx context.Context, a *ra.Agent) (core.Status, error)) *ScriptedHandler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCall = fn
	return h
}

// Handler returns the ra.Handler to register on an action.
func (h *ScriptedHandler) Handler() ra.Handler {
	return h.handle
}

func (h *ScriptedHandler) handle(ctx context.Context, a *ra.Agent) (core.Status, error) {
	call := Call{
		Action:   a.Env().Action(),
		Instance: a.Instance(),
		Params:   a.Env().ResKeys(),
		Probe:    a.Env().IsProbe(),
	}

	h.mu.Lock()
	h.calls = append(h.calls, call)
	fn := h.onCall
	h.mu.Unlock()

	if fn != nil {
		return fn(ctx, a)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for h.currentIndex < len(h.outcomes) {
		o := h.outcomes[h.currentIndex]
		h.currentIndex++
		if o.Condition == nil || o.Condition(call) {
			return o.Status, o.Error
		}
	}
	if h.defaultErr != nil {
		return core.ErrGeneric, h.defaultErr
	}
	return core.ErrGeneric, errors.New(errors.CodeActionFailed,
		fmt.Sprintf("no more scripted outcomes (call %d)", len(h.calls)), nil)
}

// Calls returns all recorded calls.
func (h *ScriptedHandler) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]Call, len(h.calls))
	copy(result, h.calls)
	return result
}

// LastCall returns the most recent call.
func (h *ScriptedHandler) LastCall() *Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.calls) == 0 {
		return nil
	}
	c := h.calls[len(h.calls)-1]
	return &c
}

// CallCount returns the number of invocations.
func (h *ScriptedHandler) CallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

// Reset clears all state.
func (h *ScriptedHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentIndex = 0
	h.calls = h.calls[:0]
}
