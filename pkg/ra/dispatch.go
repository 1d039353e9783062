// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package ra

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/errors"
	"github.com/jllopis/kairos-ocf/pkg/state"
	"github.com/jllopis/kairos-ocf/pkg/telemetry"
)

// Result is the outcome of one dispatch. Status is the process exit code.
type Result struct {
	Status core.Status
	Action string
	RunID  string
	Err    error
}

// Dispatcher runs the single action requested by the environment.
type Dispatcher struct {
	desc    *Descriptor
	env     core.Environment
	logger  *slog.Logger
	stdout  io.Writer
	stderr  io.Writer
	metrics *telemetry.DispatchMetrics
	journal state.Journal
	store   state.Store
	tracer  trace.Tracer
	now     func() time.Time
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchLogger sets the logger used for dispatch and handed to the agent.
func WithDispatchLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithStreams sets standard output and error.
func WithStreams(stdout, stderr io.Writer) DispatcherOption {
	return func(d *Dispatcher) {
		if stdout != nil {
			d.stdout = stdout
		}
		if stderr != nil {
			d.stderr = stderr
		}
	}
}

// WithMetrics records every dispatch in m.
func WithMetrics(m *telemetry.DispatchMetrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithJournal records every dispatch in j.
func WithJournal(j state.Journal) DispatcherOption {
	return func(d *Dispatcher) { d.journal = j }
}

// WithStore hands s to the agent as its state store.
func WithStore(s state.Store) DispatcherOption {
	return func(d *Dispatcher) { d.store = s }
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) DispatcherOption {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracer = t
		}
	}
}

// NewDispatcher validates that desc is complete and binds it to env.
func NewDispatcher(desc *Descriptor, env core.Environment, opts ...DispatcherOption) (*Dispatcher, error) {
	if desc == nil || env == nil {
		return nil, errors.New(errors.CodeInternal, "dispatcher needs a descriptor and an environment", nil)
	}
	if err := desc.AssertComplete(); err != nil {
		return nil, err
	}
	d := &Dispatcher{
		desc:   desc,
		env:    env,
		logger: slog.Default(),
		stdout: os.Stdout,
		stderr: os.Stderr,
		tracer: otel.Tracer("kairos-ocf/ra"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch resolves the requested action, validates every parameter
// (except for meta-data) and runs the handler. It never exits the process.
func (d *Dispatcher) Dispatch(ctx context.Context) Result {
	ctx, runID := core.EnsureRunID(ctx)
	action := d.env.Action()
	started := d.now()

	ctx, span := d.tracer.Start(ctx, "ocf.dispatch")
	defer span.End()
	span.SetAttributes(telemetry.AgentAttributes(d.agentName(), d.desc.Version(), runID)...)
	span.SetAttributes(telemetry.InvocationAttributes(action, d.env.IsProbe(), d.env.IsClone(), d.env.IsMasterSlave())...)

	logger := d.logger.With("action", action, "run_id", runID)
	status, err := d.run(ctx, logger, action)
	res := Result{Status: status, Action: action, RunID: runID, Err: err}
	d.finish(ctx, span, logger, res, started)
	return res
}

func (d *Dispatcher) run(ctx context.Context, logger *slog.Logger, action string) (core.Status, error) {
	if action == "" {
		d.printUsage()
		if short, long, ok := d.desc.Description(); ok {
			fmt.Fprintln(d.stdout, short)
			fmt.Fprintln(d.stdout, long)
		}
		return core.ErrArgs, errors.New(errors.CodeNoAction, "no action given", nil)
	}

	spec, ok := d.desc.Action(action)
	if !ok {
		logger.Error(fmt.Sprintf("%s: action not supported", action))
		d.printUsage()
		return core.ErrUnimplemented, errors.Newf(errors.CodeUnknownAction, "%s: action not supported", action)
	}

	agent, err := NewAgent(d.desc, d.env,
		WithLogger(logger),
		WithState(d.store),
		WithOutput(d.stdout, d.stderr),
	)
	if err != nil {
		return core.ErrGeneric, err
	}

	if action != ActionMetaData {
		if err := agent.ValidateParameters(); err != nil {
			ae := errors.AsAgentError(err)
			logger.Error(ae.Message, "code", string(ae.Code))
			return core.ErrConfigured, err
		}
	}

	return invoke(ctx, spec.ResolveHandler(), agent)
}

// invoke runs h, turning panics into generic errors.
func invoke(ctx context.Context, h Handler, agent *Agent) (status core.Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			status = core.ErrGeneric
			err = errors.Newf(errors.CodeInternal, "handler panic: %v", r)
		}
	}()
	status, err = h(ctx, agent)
	return exitStatus(status, err)
}

// exitStatus reconciles a handler's status with its error: an explicit
// failure status wins, otherwise the error decides. Statuses outside the
// defined range become generic errors.
func exitStatus(status core.Status, err error) (core.Status, error) {
	if err != nil && status == core.Success {
		status = errors.StatusOf(err)
	}
	if !status.Valid() {
		return core.ErrGeneric, errors.Newf(errors.CodeActionFailed, "handler returned invalid status %d", int(status))
	}
	return status, err
}

func (d *Dispatcher) finish(ctx context.Context, span trace.Span, logger *slog.Logger, res Result, started time.Time) {
	finished := d.now()
	durationMs := float64(finished.Sub(started).Microseconds()) / 1000

	errorCode := ""
	if res.Err != nil {
		ae := errors.AsAgentError(res.Err)
		errorCode = string(ae.Code)
		span.RecordError(res.Err)
		d.metrics.RecordErrorMetric(ctx, res.Err, "dispatch")
	}
	span.SetAttributes(telemetry.OutcomeAttributes(int(res.Status), res.Status.String(), durationMs, errorCode)...)
	if res.Status == core.Success {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, res.Status.String())
	}
	d.metrics.RecordAction(ctx, d.agentName(), res.Action, int(res.Status), res.Status.String(), durationMs)

	if d.journal != nil {
		inv := state.Invocation{
			RunID:      res.RunID,
			Agent:      d.agentName(),
			Action:     res.Action,
			Status:     int(res.Status),
			StatusName: res.Status.String(),
			StartedAt:  started,
			FinishedAt: finished,
		}
		if res.Err != nil {
			inv.Error = res.Err.Error()
		}
		if err := d.journal.Record(ctx, inv); err != nil {
			logger.Warn("journal record failed", "error", err)
		}
	}

	attrs := []any{"status", res.Status.String(), "duration_ms", durationMs}
	if res.Err != nil {
		attrs = append(attrs, "error", res.Err.Error())
	}
	logger.Debug("action finished", attrs...)
}

func (d *Dispatcher) printUsage() {
	fmt.Fprintf(d.stderr, "Usage: %s {%s}\n", d.env.ScriptName(), strings.Join(d.desc.ActionNames(), "|"))
}

func (d *Dispatcher) agentName() string {
	if name := d.desc.Name(); name != "" {
		return name
	}
	return d.env.ScriptName()
}
