// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package testing provides utilities for testing resource agents in-process.
//
// This package includes:
//   - Scenario definitions for declarative action testing
//   - Scripted handlers that record their invocations
//   - Assertion helpers for results and metadata documents
//
// Example usage:
//
//	scenario := testing.NewScenario("start succeeds").
//	    ForAction("start").
//	    WithParam("ip", "10.0.0.1").
//	    ExpectStatus(core.Success)
//
//	result := scenario.Run(t, descriptor)
//	result.Assert(t, scenario)
package testing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/environment"
	"github.com/jllopis/kairos-ocf/pkg/ra"
	"github.com/jllopis/kairos-ocf/pkg/state"
)

// DefaultScript is the script name scenarios run under.
const DefaultScript = "testagent"

// Scenario defines one invocation of an agent and what it should produce.
type Scenario struct {
	name          string
	description   string
	script        string
	action        string
	instance      string
	params        map[string]string
	context       context.Context
	timeout       time.Duration
	store         state.Store
	journal       state.Journal
	logger        *slog.Logger
	expectations  []Expectation
	setupFuncs    []func() error
	teardownFuncs []func() error
}

// Expectation defines a condition to verify after running a scenario.
type Expectation interface {
	// Check verifies the expectation against the result.
	Check(result *ScenarioResult) error
	// Description returns a human-readable description of the expectation.
	Description() string
}

// ScenarioResult contains the outcome of running a scenario.
type ScenarioResult struct {
	Status   core.Status
	Action   string
	RunID    string
	Error    error
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// NewScenario creates a new test scenario with the given name.
func NewScenario(name string) *Scenario {
	return &Scenario{
		name:         name,
		script:       DefaultScript,
		params:       make(map[string]string),
		timeout:      30 * time.Second,
		context:      context.Background(),
		expectations: make([]Expectation, 0),
	}
}

// WithDescription adds a description to the scenario.
func (s *Scenario) WithDescription(desc string) *Scenario {
	s.description = desc
	return s
}

// WithScript sets the script name the agent sees.
func (s *Scenario) WithScript(script string) *Scenario {
	s.script = script
	return s
}

// ForAction sets the action to invoke. An empty action exercises the
// usage path.
func (s *Scenario) ForAction(action string) *Scenario {
	s.action = action
	return s
}

// WithInstance sets the resource instance name.
func (s *Scenario) WithInstance(instance string) *Scenario {
	s.instance = instance
	return s
}

// WithParam sets one raw resource parameter.
func (s *Scenario) WithParam(name, value string) *Scenario {
	s.params[name] = value
	return s
}

// WithParams merges raw resource parameters into the scenario.
func (s *Scenario) WithParams(params map[string]string) *Scenario {
	for k, v := range params {
		s.params[k] = v
	}
	return s
}

// WithStore shares a state store across scenarios, so a start followed
// by a monitor sees the same resource state.
func (s *Scenario) WithStore(store state.Store) *Scenario {
	s.store = store
	return s
}

// WithJournal records the invocation in j.
func (s *Scenario) WithJournal(j state.Journal) *Scenario {
	s.journal = j
	return s
}

// WithLogger sets the logger handed to the dispatcher. Logs are discarded
// by default.
func (s *Scenario) WithLogger(logger *slog.Logger) *Scenario {
	s.logger = logger
	return s
}

// WithContext sets the context for the scenario.
func (s *Scenario) WithContext(ctx context.Context) *Scenario {
	s.context = ctx
	return s
}

// WithTimeout sets the timeout for the scenario.
func (s *Scenario) WithTimeout(d time.Duration) *Scenario {
	s.timeout = d
	return s
}

// WithSetup adds a setup function to run before the scenario.
func (s *Scenario) WithSetup(fn func() error) *Scenario {
	s.setupFuncs = append(s.setupFuncs, fn)
	return s
}

// WithTeardown adds a teardown function to run after the scenario.
func (s *Scenario) WithTeardown(fn func() error) *Scenario {
	s.teardownFuncs = append(s.teardownFuncs, fn)
	return s
}

// Expect adds an expectation to the scenario.
func (s *Scenario) Expect(exp Expectation) *Scenario {
	s.expectations = append(s.expectations, exp)
	return s
}

// ExpectStatus expects the given exit status.
func (s *Scenario) ExpectStatus(status core.Status) *Scenario {
	return s.Expect(&statusExpectation{status: status})
}

// ExpectSuccess expects OCF_SUCCESS and no error.
func (s *Scenario) ExpectSuccess() *Scenario {
	return s.ExpectStatus(core.Success).ExpectNoError()
}

// ExpectStdout adds a stdout expectation.
func (s *Scenario) ExpectStdout(matcher StringMatcher) *Scenario {
	return s.Expect(&streamExpectation{stream: "stdout", matcher: matcher})
}

// ExpectStderr adds a stderr expectation.
func (s *Scenario) ExpectStderr(matcher StringMatcher) *Scenario {
	return s.Expect(&streamExpectation{stream: "stderr", matcher: matcher})
}

// ExpectNoError expects the invocation to report no error.
func (s *Scenario) ExpectNoError() *Scenario {
	return s.Expect(&noErrorExpectation{})
}

// ExpectError expects an error matching the given pattern.
func (s *Scenario) ExpectError(matcher StringMatcher) *Scenario {
	return s.Expect(&errorExpectation{matcher: matcher})
}

// ExpectMaxDuration expects the scenario to complete within the given duration.
func (s *Scenario) ExpectMaxDuration(d time.Duration) *Scenario {
	return s.Expect(&maxDurationExpectation{max: d})
}

// Environment returns the environment the scenario dispatches against.
func (s *Scenario) Environment() environment.Static {
	params := make(map[string]string, len(s.params))
	for k, v := range s.params {
		params[k] = v
	}
	env := environment.NewStatic(s.script, s.action, params)
	env.Instance = s.instance
	return env
}

// Run dispatches the scenario's action against d.
func (s *Scenario) Run(t *testing.T, d *ra.Descriptor) *ScenarioResult {
	t.Helper()

	for _, setup := range s.setupFuncs {
		if err := setup(); err != nil {
			t.Fatalf("scenario %q setup failed: %v", s.name, err)
		}
	}

	defer func() {
		for _, teardown := range s.teardownFuncs {
			if err := teardown(); err != nil {
				t.Errorf("scenario %q teardown failed: %v", s.name, err)
			}
		}
	}()

	var stdout, stderr bytes.Buffer
	logger := s.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	opts := []ra.DispatcherOption{
		ra.WithStreams(&stdout, &stderr),
		ra.WithDispatchLogger(logger),
	}
	if s.store != nil {
		opts = append(opts, ra.WithStore(s.store))
	}
	if s.journal != nil {
		opts = append(opts, ra.WithJournal(s.journal))
	}

	disp, err := ra.NewDispatcher(d, s.Environment(), opts...)
	if err != nil {
		t.Fatalf("scenario %q: %v", s.name, err)
	}

	ctx, cancel := context.WithTimeout(s.context, s.timeout)
	defer cancel()

	start := time.Now()
	res := disp.Dispatch(ctx)
	duration := time.Since(start)

	return &ScenarioResult{
		Status:   res.Status,
		Action:   res.Action,
		RunID:    res.RunID,
		Error:    res.Err,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}
}

// Assert checks all expectations and reports failures to the test.
func (r *ScenarioResult) Assert(t *testing.T, scenario *Scenario) {
	t.Helper()

	for _, exp := range scenario.expectations {
		if err := exp.Check(r); err != nil {
			t.Errorf("expectation %q failed: %v", exp.Description(), err)
		}
	}
}

// StringMatcher defines how to match strings in expectations.
type StringMatcher interface {
	Match(s string) bool
	Description() string
}

// Contains returns a matcher that checks if the string contains the substring.
func Contains(substr string) StringMatcher {
	return &containsMatcher{substr: substr}
}

// Equals returns a matcher that checks exact string equality.
func Equals(expected string) StringMatcher {
	return &equalsMatcher{expected: expected}
}

// Regex returns a matcher that checks against a regular expression.
func Regex(pattern string) StringMatcher {
	return &regexMatcher{pattern: pattern}
}

// HasPrefix returns a matcher that checks if the string has the given prefix.
func HasPrefix(prefix string) StringMatcher {
	return &prefixMatcher{prefix: prefix}
}

// Empty matches the empty string.
func Empty() StringMatcher {
	return &equalsMatcher{expected: ""}
}

type containsMatcher struct {
	substr string
}

func (m *containsMatcher) Match(s string) bool {
	return strings.Contains(s, m.substr)
}

func (m *containsMatcher) Description() string {
	return fmt.Sprintf("contains %q", m.substr)
}

type equalsMatcher struct {
	expected string
}

func (m *equalsMatcher) Match(s string) bool {
	return s == m.expected
}

func (m *equalsMatcher) Description() string {
	return fmt.Sprintf("equals %q", m.expected)
}

type regexMatcher struct {
	pattern string
}

func (m *regexMatcher) Match(s string) bool {
	re, err := regexp.Compile(m.pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func (m *regexMatcher) Description() string {
	return fmt.Sprintf("matches regex %q", m.pattern)
}

type prefixMatcher struct {
	prefix string
}

func (m *prefixMatcher) Match(s string) bool {
	return strings.HasPrefix(s, m.prefix)
}

func (m *prefixMatcher) Description() string {
	return fmt.Sprintf("has prefix %q", m.prefix)
}

// Expectation implementations

type statusExpectation struct {
	status core.Status
}

func (e *statusExpectation) Check(r *ScenarioResult) error {
	if r.Status != e.status {
		return fmt.Errorf("status %s (%d), want %s (%d)", r.Status, int(r.Status), e.status, int(e.status))
	}
	return nil
}

func (e *statusExpectation) Description() string {
	return fmt.Sprintf("status %s", e.status)
}

type streamExpectation struct {
	stream  string
	matcher StringMatcher
}

func (e *streamExpectation) Check(r *ScenarioResult) error {
	got := r.Stdout
	if e.stream == "stderr" {
		got = r.Stderr
	}
	if !e.matcher.Match(got) {
		return fmt.Errorf("%s %q does not match: %s", e.stream, got, e.matcher.Description())
	}
	return nil
}

func (e *streamExpectation) Description() string {
	return fmt.Sprintf("%s %s", e.stream, e.matcher.Description())
}

type noErrorExpectation struct{}

func (e *noErrorExpectation) Check(r *ScenarioResult) error {
	if r.Error != nil {
		return fmt.Errorf("expected no error, got: %v", r.Error)
	}
	return nil
}

func (e *noErrorExpectation) Description() string {
	return "no error"
}

type errorExpectation struct {
	matcher StringMatcher
}

func (e *errorExpectation) Check(r *ScenarioResult) error {
	if r.Error == nil {
		return fmt.Errorf("expected error matching %s, got nil", e.matcher.Description())
	}
	if !e.matcher.Match(r.Error.Error()) {
		return fmt.Errorf("error %q does not match: %s", r.Error.Error(), e.matcher.Description())
	}
	return nil
}

func (e *errorExpectation) Description() string {
	return fmt.Sprintf("error %s", e.matcher.Description())
}

type maxDurationExpectation struct {
	max time.Duration
}

func (e *maxDurationExpectation) Check(r *ScenarioResult) error {
	if r.Duration > e.max {
		return fmt.Errorf("duration %v exceeds maximum %v", r.Duration, e.max)
	}
	return nil
}

func (e *maxDurationExpectation) Description() string {
	return fmt.Sprintf("duration <= %v", e.max)
}
