// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/jllopis/kairos-ocf/pkg/config"
	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/state"
)

type journalEntry struct {
	RunID      string `json:"run_id"`
	Agent      string `json:"agent"`
	Action     string `json:"action"`
	Status     int    `json:"status"`
	StatusName string `json:"status_name"`
	Error      string `json:"error,omitempty"`
	StartedAt  string `json:"started_at"`
	DurationMs int64  `json:"duration_ms"`
}

func (c *cli) runJournal(ctx context.Context, args []string) error {
	cmd := flag.NewFlagSet("journal", flag.ContinueOnError)
	cmd.SetOutput(c.stderr)
	db := cmd.String("db", "", "SQLite state database (default: state.path from the agent configuration)")
	agent := cmd.String("agent", "", "Agent name filter")
	action := cmd.String("action", "", "Action filter")
	runID := cmd.String("run", "", "Run ID filter")
	limit := cmd.Int("limit", 20, "Show only the most recent N entries")
	if err := cmd.Parse(args); err != nil {
		return errReported
	}
	if cmd.NArg() > 0 {
		return NewInvalidArgumentError(cmd.Arg(0), fmt.Sprintf("unexpected args: %v", cmd.Args()))
	}

	path := *db
	if path == "" {
		cfg, err := c.loadConfig()
		if err != nil {
			return err
		}
		path = cfg.State.Path
	}
	if path == "" {
		return NewStateError(fmt.Errorf("no state database configured"), path)
	}
	if _, err := os.Stat(path); err != nil {
		return NewStateError(err, path)
	}

	store, err := state.OpenSQLite(path)
	if err != nil {
		return NewStateError(err, path)
	}
	defer store.Close()

	invocations, err := store.List(ctx, state.Filter{
		Agent:  *agent,
		Action: *action,
		RunID:  *runID,
		Limit:  *limit,
	})
	if err != nil {
		return NewStateError(err, path)
	}

	entries := make([]journalEntry, 0, len(invocations))
	for _, inv := range invocations {
		entries = append(entries, journalEntry{
			RunID:      inv.RunID,
			Agent:      inv.Agent,
			Action:     inv.Action,
			Status:     inv.Status,
			StatusName: inv.StatusName,
			Error:      inv.Error,
			StartedAt:  formatTime(inv.StartedAt),
			DurationMs: inv.Duration().Milliseconds(),
		})
	}

	if c.flags.JSON {
		return c.printJSON(entries)
	}
	writer := c.newTabWriter()
	writeRow(writer, "RUN_ID", "STARTED", "AGENT", "ACTION", "STATUS", "DURATION_MS", "ERROR")
	for _, e := range entries {
		status := e.StatusName
		if status == "" {
			status = core.Status(e.Status).String()
		}
		writeRow(writer, e.RunID, e.StartedAt, e.Agent, e.Action, status, strconv.FormatInt(e.DurationMs, 10), e.Error)
	}
	return writer.Flush()
}

func (c *cli) loadConfig() (*config.Config, error) {
	if c.flags.ConfigPath == "" {
		cfg, err := config.LoadFromEnv()
		if err != nil {
			return nil, NewConfigError(err, os.Getenv(config.PathEnv))
		}
		return cfg, nil
	}
	cfg, err := config.Load(c.flags.ConfigPath)
	if err != nil {
		return nil, NewConfigError(err, c.flags.ConfigPath)
	}
	return cfg, nil
}
