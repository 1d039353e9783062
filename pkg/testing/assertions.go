// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/errors"
	"github.com/jllopis/kairos-ocf/pkg/ra"
	"github.com/jllopis/kairos-ocf/pkg/state"
)

// Assertions collects non-fatal checks on agent outcomes. Every check
// reports through t.Errorf and marks the helper as failed.
type Assertions struct {
	t      *testing.T
	failed bool
}

// NewAssertions creates a new assertions helper.
func NewAssertions(t *testing.T) *Assertions {
	return &Assertions{t: t}
}

// Failed returns true if any assertion has failed.
func (a *Assertions) Failed() bool {
	return a.failed
}

func (a *Assertions) fail(format string, args ...any) {
	a.t.Helper()
	a.t.Errorf(format, args...)
	a.failed = true
}

// AssertStatus checks an exit status.
func (a *Assertions) AssertStatus(got, want core.Status, msg string) {
	a.t.Helper()
	if got != want {
		a.fail("%s: status %s, want %s", msg, got, want)
	}
}

// AssertErrorCode checks that err carries code anywhere in its chain.
func (a *Assertions) AssertErrorCode(err error, code errors.ErrorCode, msg string) {
	a.t.Helper()
	switch {
	case err == nil:
		a.fail("%s: no error, want %s", msg, code)
	case !errors.HasCode(err, code):
		a.fail("%s: error %q does not carry %s", msg, err, code)
	}
}

// AssertState checks the value a store holds under key. An empty want
// asserts the key is absent.
func (a *Assertions) AssertState(ctx context.Context, store state.Store, key, want string) {
	a.t.Helper()
	got, err := store.Get(ctx, key)
	switch {
	case want == "" && stderrors.Is(err, state.ErrNotFound):
	case want == "" && err == nil:
		a.fail("state %s: holds %q, want absent", key, got)
	case err != nil:
		a.fail("state %s: %v", key, err)
	case got != want:
		a.fail("state %s: %q, want %q", key, got, want)
	}
}

// MetadataAssertions provides assertion helpers for metadata documents.
type MetadataAssertions struct {
	*Assertions
	doc *ra.ResourceAgentNode
}

// AssertMetadata parses a rendered metadata document.
func (a *Assertions) AssertMetadata(document string) *MetadataAssertions {
	a.t.Helper()
	doc, err := ra.ParseMetadata(strings.NewReader(document))
	if err != nil {
		a.fail("metadata does not parse: %v", err)
		return &MetadataAssertions{Assertions: a, doc: &ra.ResourceAgentNode{}}
	}
	return &MetadataAssertions{Assertions: a, doc: doc}
}

// Document returns the parsed document.
func (m *MetadataAssertions) Document() *ra.ResourceAgentNode {
	return m.doc
}

// HasName asserts the agent name attribute.
func (m *MetadataAssertions) HasName(name string) *MetadataAssertions {
	m.t.Helper()
	if m.doc.Name != name {
		m.fail("expected agent name %q, got %q", name, m.doc.Name)
	}
	return m
}

// HasShortDesc asserts the agent short description.
func (m *MetadataAssertions) HasShortDesc(text string) *MetadataAssertions {
	m.t.Helper()
	if m.doc.ShortDesc.Text != text {
		m.fail("expected shortdesc %q, got %q", text, m.doc.ShortDesc.Text)
	}
	return m
}

// HasParameters asserts the parameter names in document order.
func (m *MetadataAssertions) HasParameters(names ...string) *MetadataAssertions {
	m.t.Helper()
	got := make([]string, 0, len(m.doc.Parameters.Items))
	for _, p := range m.doc.Parameters.Items {
		got = append(got, p.Name)
	}
	if strings.Join(got, ",") != strings.Join(names, ",") {
		m.fail("expected parameters %v, got %v", names, got)
	}
	return m
}

// HasRequiredParameter asserts a parameter is marked required.
func (m *MetadataAssertions) HasRequiredParameter(name string) *MetadataAssertions {
	m.t.Helper()
	for _, p := range m.doc.Parameters.Items {
		if p.Name == name {
			if p.Required != "1" {
				m.fail("parameter %q is not required", name)
			}
			return m
		}
	}
	m.fail("parameter %q not found", name)
	return m
}

// HasActionCount asserts how many action elements carry the given name.
func (m *MetadataAssertions) HasActionCount(name string, count int) *MetadataAssertions {
	m.t.Helper()
	n := 0
	for _, a := range m.doc.Actions.Items {
		if a.Name == name {
			n++
		}
	}
	if n != count {
		m.fail("expected %d %q actions, got %d", count, name, n)
	}
	return m
}

// HasAction asserts an action variant exists with the given timeout and
// role. An empty role matches a variant without role.
func (m *MetadataAssertions) HasAction(name, timeout string, role core.Role) *MetadataAssertions {
	m.t.Helper()
	for _, a := range m.doc.Actions.Items {
		if a.Name == name && a.Timeout == timeout && a.Role == string(role) {
			return m
		}
	}
	m.fail("action %q (timeout %s, role %q) not found", name, timeout, role)
	return m
}

// ScenarioResultAssertions provides assertions for scenario results.
type ScenarioResultAssertions struct {
	*Assertions
	result *ScenarioResult
}

// AssertScenarioResult creates assertions for a scenario result.
func (a *Assertions) AssertScenarioResult(result *ScenarioResult) *ScenarioResultAssertions {
	a.t.Helper()
	if result == nil {
		a.fail("scenario result is nil")
		return &ScenarioResultAssertions{Assertions: a, result: &ScenarioResult{}}
	}
	return &ScenarioResultAssertions{Assertions: a, result: result}
}

// Succeeded asserts the scenario exited with OCF_SUCCESS and no error.
func (s *ScenarioResultAssertions) Succeeded() *ScenarioResultAssertions {
	s.t.Helper()
	if s.result.Status != core.Success || s.result.Error != nil {
		s.fail("expected success, got %s: %v", s.result.Status, s.result.Error)
	}
	return s
}

// HasStatus asserts the exit status.
func (s *ScenarioResultAssertions) HasStatus(status core.Status) *ScenarioResultAssertions {
	s.t.Helper()
	if s.result.Status != status {
		s.fail("expected status %s, got %s", status, s.result.Status)
	}
	return s
}

// HasErrorCode asserts the invocation error carries code.
func (s *ScenarioResultAssertions) HasErrorCode(code errors.ErrorCode) *ScenarioResultAssertions {
	s.t.Helper()
	s.AssertErrorCode(s.result.Error, code, "scenario error")
	return s
}

// StdoutContains asserts stdout contains the substring.
func (s *ScenarioResultAssertions) StdoutContains(substr string) *ScenarioResultAssertions {
	s.t.Helper()
	if !strings.Contains(s.result.Stdout, substr) {
		s.fail("stdout %q does not contain %q", s.result.Stdout, substr)
	}
	return s
}

// StderrContains asserts stderr contains the substring.
func (s *ScenarioResultAssertions) StderrContains(substr string) *ScenarioResultAssertions {
	s.t.Helper()
	if !strings.Contains(s.result.Stderr, substr) {
		s.fail("stderr %q does not contain %q", s.result.Stderr, substr)
	}
	return s
}

// Quick assertion functions for common patterns

// RequireNoError fails the test immediately if err is not nil.
func RequireNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

// RequireEqual fails the test immediately if values are not equal.
func RequireEqual(t *testing.T, expected, actual any, msg string) {
	t.Helper()
	if expected != actual {
		t.Fatalf("%s: expected %v, got %v", msg, expected, actual)
	}
}
