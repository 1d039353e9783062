// SPDX-License-Identifier: Apache-2.0
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jllopis/kairos-ocf/pkg/errors"
)

// DispatchMetrics tracks action invocations, their outcome and duration.
type DispatchMetrics struct {
	// actionCounter tracks invocations by action and exit status
	actionCounter metric.Int64Counter

	// durationHistogram tracks handler latency per action
	durationHistogram metric.Float64Histogram

	// errorCounter tracks dispatch errors by code
	errorCounter metric.Int64Counter
}

// NewDispatchMetrics creates the dispatch instruments from the global meter provider.
func NewDispatchMetrics(ctx context.Context) (*DispatchMetrics, error) {
	meter := otel.Meter("kairos-ocf/dispatch")

	actionCounter, err := meter.Int64Counter(
		"ocf.actions.total",
		metric.WithDescription("Agent invocations by action and exit status"),
	)
	if err != nil {
		return nil, err
	}

	durationHistogram, err := meter.Float64Histogram(
		"ocf.action.duration",
		metric.WithDescription("Action duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"ocf.errors.total",
		metric.WithDescription("Dispatch errors by code and component"),
	)
	if err != nil {
		return nil, err
	}

	return &DispatchMetrics{
		actionCounter:     actionCounter,
		durationHistogram: durationHistogram,
		errorCounter:      errorCounter,
	}, nil
}

// RecordAction records one finished invocation.
func (dm *DispatchMetrics) RecordAction(ctx context.Context, agent, action string, status int, statusName string, durationMs float64) {
	if dm == nil {
		return
	}

	if action == "" {
		action = "none"
	}
	dm.actionCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(AttrAgentName, agent),
			attribute.String(AttrAction, action),
			attribute.Int(AttrStatus, status),
			attribute.String(AttrStatusName, statusName),
		),
	)
	dm.durationHistogram.Record(ctx, durationMs,
		metric.WithAttributes(
			attribute.String(AttrAgentName, agent),
			attribute.String(AttrAction, action),
		),
	)
}

// RecordErrorMetric increments the error counter for the given error and component.
func (dm *DispatchMetrics) RecordErrorMetric(ctx context.Context, err error, component string) {
	if dm == nil || err == nil {
		return
	}

	ae := errors.AsAgentError(err)
	dm.errorCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(AttrErrorCode, string(ae.Code)),
			attribute.String("component", component),
			attribute.String("recoverable", ae.RecoverableString()),
		),
	)
}
