// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/ra"
	"github.com/jllopis/kairos-ocf/pkg/state"
	ocftest "github.com/jllopis/kairos-ocf/pkg/testing"
)

func TestDescriptor(t *testing.T) {
	d, err := descriptor()
	if err != nil {
		t.Fatalf("descriptor: %v", err)
	}
	want := []string{"demote", "meta-data", "monitor", "promote", "start", "stop", "validate-all"}
	got := d.ActionNames()
	if len(got) != len(want) {
		t.Fatalf("actions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("actions = %v, want %v", got, want)
		}
	}
}

func TestMetaData(t *testing.T) {
	d, err := descriptor()
	ocftest.RequireNoError(t, err, "descriptor")

	scenario := ocftest.NewScenario("meta-data").
		WithScript("dummyagent").
		ForAction(ra.ActionMetaData).
		ExpectSuccess()
	result := scenario.Run(t, d)
	result.Assert(t, scenario)

	ocftest.NewAssertions(t).AssertMetadata(result.Stdout).
		HasName("dummyagent").
		HasShortDesc("Dummy resource agent").
		HasParameters("hba_type", "frobnicate").
		HasRequiredParameter("hba_type").
		HasActionCount(ra.ActionMonitor, 3).
		HasAction(ra.ActionMonitor, "20", core.RoleSlave).
		HasAction(ra.ActionMonitor, "20", core.RoleMaster).
		HasAction(ra.ActionStart, "20", "")
}

func TestLifecycle(t *testing.T) {
	d, err := descriptor()
	ocftest.RequireNoError(t, err, "descriptor")
	store := state.NewMemory()

	steps := []struct {
		action string
		meta   map[string]string
		want   core.Status
	}{
		{ra.ActionMonitor, nil, core.NotRunning},
		{ra.ActionStart, nil, core.Success},
		{ra.ActionMonitor, map[string]string{"CRM_meta_interval": "10000"}, core.Success},
		{"promote", nil, core.ErrConfigured},
		{"promote", map[string]string{"CRM_meta_master_max": "1"}, core.Success},
		{ra.ActionMonitor, map[string]string{"CRM_meta_master_max": "1"}, core.RunningMaster},
		{"demote", map[string]string{"CRM_meta_master_max": "1"}, core.Success},
		{ra.ActionMonitor, map[string]string{"CRM_meta_master_max": "1"}, core.Success},
		{ra.ActionStop, nil, core.Success},
		{ra.ActionStop, nil, core.Success},
		{ra.ActionMonitor, nil, core.NotRunning},
		{"promote", map[string]string{"CRM_meta_master_max": "1"}, core.NotRunning},
	}
	for i, step := range steps {
		scenario := ocftest.NewScenario(step.action).
			WithScript("dummyagent").
			WithInstance("dummy:0").
			ForAction(step.action).
			WithParam("hba_type", "fileio").
			WithParams(step.meta).
			WithStore(store).
			ExpectStatus(step.want)
		result := scenario.Run(t, d)
		if result.Status != step.want {
			t.Fatalf("step %d (%s): status %s, want %s (err %v)", i, step.action, result.Status, step.want, result.Error)
		}
	}
}

func TestMissingHBAType(t *testing.T) {
	d, err := descriptor()
	ocftest.RequireNoError(t, err, "descriptor")

	scenario := ocftest.NewScenario("start without hba_type").
		ForAction(ra.ActionStart).
		ExpectStatus(core.ErrConfigured).
		ExpectError(ocftest.Contains("Required parameter hba_type not set"))
	scenario.Run(t, d).Assert(t, scenario)
}

// Each cluster call is a separate process; state must survive between them.
func TestStatePersistsAcrossProcesses(t *testing.T) {
	d, err := descriptor()
	ocftest.RequireNoError(t, err, "descriptor")

	rsctmp := t.TempDir()
	t.Setenv("HA_RSCTMP", rsctmp)
	t.Setenv("OCF_AGENT_CONFIG", "")
	t.Setenv("OCF_RESOURCE_INSTANCE", "p_dummy")
	t.Setenv("OCF_RESKEY_hba_type", "fileio")

	steps := []struct {
		action string
		want   core.Status
	}{
		{ra.ActionStart, core.Success},
		{ra.ActionMonitor, core.Success},
		{ra.ActionStop, core.Success},
		{ra.ActionMonitor, core.NotRunning},
	}
	for i, step := range steps {
		var stdout, stderr bytes.Buffer
		code := ra.Run(context.Background(), d, []string{"dummyagent", step.action}, &stdout, &stderr)
		if code != int(step.want) {
			t.Fatalf("step %d (%s): exit %d, want %d\nstderr: %s", i, step.action, code, step.want, stderr.String())
		}
	}
	if _, err := os.Stat(filepath.Join(rsctmp, state.DefaultFile)); err != nil {
		t.Errorf("state database not created in HA_RSCTMP: %v", err)
	}
}

func TestStateKeyedByAgent(t *testing.T) {
	d, err := descriptor()
	ocftest.RequireNoError(t, err, "descriptor")
	store := state.NewMemory()
	ctx := context.Background()
	// Another agent type running an instance of the same name.
	ocftest.RequireNoError(t, store.Set(ctx, "otheragent/p_dummy", stateStarted), "seed")

	scenario := ocftest.NewScenario("monitor ignores other agents").
		WithScript("dummyagent").
		WithInstance("p_dummy").
		ForAction(ra.ActionMonitor).
		WithParam("hba_type", "fileio").
		WithStore(store).
		ExpectStatus(core.NotRunning)
	scenario.Run(t, d).Assert(t, scenario)

	start := ocftest.NewScenario("start").
		WithInstance("p_dummy").
		ForAction(ra.ActionStart).
		WithParam("hba_type", "fileio").
		WithStore(store).
		ExpectSuccess()
	start.Run(t, d).Assert(t, start)

	got, err := store.Get(ctx, "dummyagent/p_dummy")
	ocftest.RequireNoError(t, err, "get state")
	ocftest.RequireEqual(t, stateStarted, got, "recorded state")
}
