// SPDX-License-Identifier: Apache-2.0
// Resource agent dashboards and alerts
// This file documents dashboard templates for an OTEL UI or Grafana fed by
// agents running with telemetry.exporter=otlp.
//
// DASHBOARD: Action Outcomes
//   Shows what the cluster manager asks of each agent and how it ends.
//
//   Queries:
//   - ocf.actions.total{ocf.agent.name, ocf.action, ocf.status.name} (rate 5m)
//     Metric: Invocations by action and exit status
//     Display: Stacked bar per agent (OCF_SUCCESS, OCF_NOT_RUNNING, OCF_ERR_*)
//     Note: monitor with OCF_NOT_RUNNING is normal during probes
//
//   - ocf.action.duration{ocf.agent.name, ocf.action} (p50, p95, p99)
//     Metric: Handler latency in milliseconds
//     Display: Heatmap per action
//     Compare against the advertised timeout of each action in meta-data
//
// DASHBOARD: Dispatch Errors
//   Errors raised before or by the handler.
//
//   Queries:
//   - ocf.errors.total{error.code} (rate 5m)
//     Metric: Errors by code
//     Display: Line chart (MISSING_REQUIRED_PARAMETER, INVALID_PARAMETER_VALUE,
//              UNKNOWN_ACTION, ACTION_FAILED, INTERNAL_ERROR)
//
//   - ocf.errors.total by (error.code, recoverable)
//     Insight: parameter errors clear once the resource definition is fixed;
//     INTERNAL_ERROR usually means a handler panicked
//
// ALERT RULES (Prometheus/AlertManager format):
//
// Alert 1: Misconfigured Resource
//   Name: OCFMisconfiguredResource
//   Condition: increase(ocf.errors.total{error.code=~"MISSING_REQUIRED_PARAMETER|INVALID_PARAMETER_VALUE"}[10m]) > 0
//   Severity: warning
//   Message: "{{ $labels.ocf.agent.name }} rejects its parameters"
//   Action: Check the resource definition in the CIB
//
// Alert 2: Slow Monitor
//   Name: OCFSlowMonitor
//   Condition: histogram_quantile(0.95, ocf.action.duration{ocf.action="monitor"}) > 15000
//   Duration: 10m
//   Severity: warning
//   Message: "monitor p95 {{ $value }}ms is close to the default 20s timeout"
//
// Alert 3: Handler Panics
//   Name: OCFHandlerPanics
//   Condition: increase(ocf.errors.total{error.code="INTERNAL_ERROR"}[5m]) > 0
//   Severity: critical
//   Action: Read the agent log; the run id links log lines, span and journal entry
//
// TRACES:
//   Every invocation is one span named ocf.dispatch carrying ocf.run_id,
//   ocf.action, ocf.probe, ocf.clone, ocf.master_slave and ocf.status.
//   The same run id is in the agent log and in the invocation journal
//   (ocfkit journal --run <id>).
package internal
