// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/errors"
	"github.com/jllopis/kairos-ocf/pkg/ra"
	"github.com/jllopis/kairos-ocf/pkg/state"
)

const doc = `Dummy resource agent

Tracks a fake backing store in the agent state store. Useful to exercise
a cluster manager without touching real resources.

The resource can run as a single primitive or as a multistate
(master/slave) resource; promote and demote switch the recorded role.`

var (
	hbaType = ra.MustParameter("Backing store type", `
Type of the backing store this instance pretends to manage. It is reported
by monitor and otherwise ignored.
`, ra.Required())

	frobnicate = ra.MustParameter("Path to frobnicate binary", `
Full path to the frobnicate program. Accepted for compatibility and not
used by this agent.
`)
)

// Resource state values kept per instance.
const (
	stateStarted = "started"
	stateMaster  = "master"
)

func descriptor() (*ra.Descriptor, error) {
	return ra.Define(
		ra.WithName("dummyagent"),
		ra.WithVersion("0.0.1"),
		ra.WithDoc(doc),
		ra.WithParameter("hba_type", hbaType),
		ra.WithParameter("frobnicate", frobnicate),
		ra.WithAction(ra.MustAction("", Start, ra.NewVariant(ra.Timeout(20)))),
		ra.WithAction(ra.MustAction("", Stop, ra.NewVariant(ra.Timeout(20)))),
		ra.WithAction(ra.MustAction("", Monitor,
			ra.NewVariant(ra.Timeout(20), ra.Depth(0), ra.Interval(10)),
			ra.NewVariant(ra.Timeout(20), ra.Depth(0), ra.Interval(20), ra.OnRole(core.RoleSlave)),
			ra.NewVariant(ra.Timeout(20), ra.Depth(0), ra.Interval(10), ra.OnRole(core.RoleMaster)),
		)),
		ra.WithAction(ra.MustAction("", Promote, ra.NewVariant(ra.Timeout(20)))),
		ra.WithAction(ra.MustAction("", Demote, ra.NewVariant(ra.Timeout(20)))),
	)
}

// Start marks the instance as running.
func Start(ctx context.Context, a *ra.Agent) (core.Status, error) {
	a.Logger().Info("starting")
	if err := a.State().Set(ctx, a.StateKey(), stateStarted); err != nil {
		return core.ErrGeneric, errors.New(errors.CodeActionFailed, "record start", err)
	}
	return core.Success, nil
}

// Stop forgets the instance. Stopping a stopped resource succeeds.
func Stop(ctx context.Context, a *ra.Agent) (core.Status, error) {
	a.Logger().Info("stopping")
	if err := a.State().Delete(ctx, a.StateKey()); err != nil {
		return core.ErrGeneric, errors.New(errors.CodeActionFailed, "record stop", err)
	}
	return core.Success, nil
}

// Monitor reports whether the instance is running, and in which role when
// it is multistate.
func Monitor(ctx context.Context, a *ra.Agent) (core.Status, error) {
	hba, err := a.String("hba_type")
	if err != nil {
		return core.ErrConfigured, err
	}
	a.Logger().Debug("monitoring", "hba_type", hba, "probe", a.Env().IsProbe())

	current, err := a.State().Get(ctx, a.StateKey())
	switch {
	case stderrors.Is(err, state.ErrNotFound):
		return core.NotRunning, nil
	case err != nil:
		return core.ErrGeneric, errors.New(errors.CodeActionFailed, "read state", err)
	}
	if current == stateMaster && a.Env().IsMasterSlave() {
		return core.RunningMaster, nil
	}
	return core.Success, nil
}

// Promote makes a running instance the master.
func Promote(ctx context.Context, a *ra.Agent) (core.Status, error) {
	return transition(ctx, a, stateMaster)
}

// Demote returns a master instance to slave.
func Demote(ctx context.Context, a *ra.Agent) (core.Status, error) {
	return transition(ctx, a, stateStarted)
}

func transition(ctx context.Context, a *ra.Agent, to string) (core.Status, error) {
	if !a.Env().IsMasterSlave() {
		return core.ErrConfigured, errors.New(errors.CodeActionFailed,
			fmt.Sprintf("%s requires a multistate resource", a.Env().Action()), nil)
	}
	if _, err := a.State().Get(ctx, a.StateKey()); err != nil {
		return core.NotRunning, errors.New(errors.CodeActionFailed, "resource is not running", err)
	}
	if err := a.State().Set(ctx, a.StateKey(), to); err != nil {
		return core.ErrGeneric, errors.New(errors.CodeActionFailed, "record role", err)
	}
	return core.Success, nil
}
