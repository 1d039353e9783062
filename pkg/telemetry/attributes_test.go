// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestAgentAttributes(t *testing.T) {
	attrs := AgentAttributes("dummy", "1.0", "run-123")

	expected := map[string]any{
		AttrAgentName:    "dummy",
		AttrAgentVersion: "1.0",
		AttrRunID:        "run-123",
	}

	assertAttributes(t, attrs, expected)
}

func TestAgentAttributes_OmitsEmpty(t *testing.T) {
	attrs := AgentAttributes("dummy", "", "")
	if len(attrs) != 1 {
		t.Fatalf("expected only the agent name, got %v", attrs)
	}
}

func TestInvocationAttributes(t *testing.T) {
	attrs := InvocationAttributes("monitor", true, false, true)

	expected := map[string]any{
		AttrAction:      "monitor",
		AttrProbe:       true,
		AttrClone:       false,
		AttrMasterSlave: true,
	}

	assertAttributes(t, attrs, expected)
}

func TestInvocationAttributes_NoAction(t *testing.T) {
	attrs := InvocationAttributes("", false, false, false)
	assertAttributes(t, attrs, map[string]any{AttrAction: "none"})
}

func TestOutcomeAttributes(t *testing.T) {
	attrs := OutcomeAttributes(7, "OCF_NOT_RUNNING", 12.5, "ACTION_FAILED")

	expected := map[string]any{
		AttrStatus:     7,
		AttrStatusName: "OCF_NOT_RUNNING",
		AttrDurationMs: 12.5,
		AttrErrorCode:  "ACTION_FAILED",
	}

	assertAttributes(t, attrs, expected)
}

// assertAttributes checks that expected key-value pairs exist in attrs
func assertAttributes(t *testing.T, attrs []attribute.KeyValue, expected map[string]any) {
	t.Helper()

	found := make(map[string]attribute.KeyValue)
	for _, attr := range attrs {
		found[string(attr.Key)] = attr
	}

	for key, expectedVal := range expected {
		attr, ok := found[key]
		if !ok {
			t.Errorf("missing attribute %s", key)
			continue
		}

		var actualVal any
		switch attr.Value.Type() {
		case attribute.STRING:
			actualVal = attr.Value.AsString()
		case attribute.INT64:
			actualVal = int(attr.Value.AsInt64())
		case attribute.FLOAT64:
			actualVal = attr.Value.AsFloat64()
		case attribute.BOOL:
			actualVal = attr.Value.AsBool()
		}

		if actualVal != expectedVal {
			t.Errorf("attribute %s: got %v, want %v", key, actualVal, expectedVal)
		}
	}
}
