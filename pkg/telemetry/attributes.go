// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides logging, tracing and metrics for resource
// agent processes.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for agent telemetry.
const (
	// Agent attributes
	AttrAgentName    = "ocf.agent.name"
	AttrAgentVersion = "ocf.agent.version"
	AttrRunID        = "ocf.run_id"

	// Invocation attributes
	AttrAction      = "ocf.action"
	AttrProbe       = "ocf.probe"
	AttrClone       = "ocf.clone"
	AttrMasterSlave = "ocf.master_slave"

	// Outcome attributes
	AttrStatus     = "ocf.status"
	AttrStatusName = "ocf.status.name"
	AttrDurationMs = "ocf.duration_ms"
	AttrErrorCode  = "error.code"
)

// AgentAttributes returns common attributes for agent spans.
func AgentAttributes(name, version, runID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrAgentName, name),
	}
	if version != "" {
		attrs = append(attrs, attribute.String(AttrAgentVersion, version))
	}
	if runID != "" {
		attrs = append(attrs, attribute.String(AttrRunID, runID))
	}
	return attrs
}

// InvocationAttributes describes the requested action and resource mode.
func InvocationAttributes(action string, probe, clone, masterSlave bool) []attribute.KeyValue {
	if action == "" {
		action = "none"
	}
	return []attribute.KeyValue{
		attribute.String(AttrAction, action),
		attribute.Bool(AttrProbe, probe),
		attribute.Bool(AttrClone, clone),
		attribute.Bool(AttrMasterSlave, masterSlave),
	}
}

// OutcomeAttributes describes how an invocation ended.
func OutcomeAttributes(status int, statusName string, durationMs float64, errorCode string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int(AttrStatus, status),
		attribute.String(AttrStatusName, statusName),
	}
	if durationMs > 0 {
		attrs = append(attrs, attribute.Float64(AttrDurationMs, durationMs))
	}
	if errorCode != "" {
		attrs = append(attrs, attribute.String(AttrErrorCode, errorCode))
	}
	return attrs
}
