// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"
)

// version is set at build time.
var version = "dev"

// errReported marks failures whose details were already printed.
var errReported = stderrors.New("reported")

type globalFlags struct {
	ConfigPath string
	JSON       bool
	Help       bool
}

type cli struct {
	flags  globalFlags
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global, args, err := parseGlobalFlags(args)
	c := &cli{flags: global, stdout: stdout, stderr: stderr}
	if err != nil {
		c.report(err)
		return 2
	}
	if global.Help || len(args) == 0 {
		printUsage(stdout)
		return 0
	}

	switch args[0] {
	case "validate":
		err = c.runValidate(args[1:])
	case "meta-data", "metadata":
		err = c.runMetaData(args[1:])
	case "journal":
		err = c.runJournal(ctx, args[1:])
	case "help":
		printUsage(stdout)
	case "version":
		fmt.Fprintln(stdout, version)
	default:
		err = NewInvalidArgumentError(args[0], fmt.Sprintf("unknown command %q", args[0]))
	}
	if err != nil {
		c.report(err)
		return 1
	}
	return 0
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var flags globalFlags

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return flags, args[i+1:], nil
		}
		if !strings.HasPrefix(arg, "-") {
			return flags, args[i:], nil
		}
		switch {
		case arg == "-h" || arg == "--help":
			flags.Help = true
			return flags, nil, nil
		case arg == "--json":
			flags.JSON = true
		case arg == "--config":
			if i+1 >= len(args) {
				return flags, nil, NewInvalidArgumentError(arg, "missing value for --config")
			}
			flags.ConfigPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			flags.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			return flags, nil, NewInvalidArgumentError(arg, fmt.Sprintf("unknown global flag %q", arg))
		}
	}
	return flags, nil, nil
}

func (c *cli) report(err error) {
	if stderrors.Is(err, errReported) {
		return
	}
	var ce *CLIError
	if stderrors.As(err, &ce) {
		ce.PrintError(c.stderr, c.flags.JSON)
		return
	}
	PrintSimpleError(c.stderr, err, c.flags.JSON)
}

func (c *cli) printJSON(value any) error {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.stdout, string(payload))
	return err
}

func (c *cli) newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(c.stdout, 0, 8, 2, ' ', 0)
}

func writeRow(writer *tabwriter.Writer, cols ...string) {
	for i, col := range cols {
		cols[i] = normalizeCell(col)
	}
	fmt.Fprintln(writer, strings.Join(cols, "\t"))
}

func normalizeCell(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return strings.ReplaceAll(value, "\n", " ")
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `ocfkit: developer tools for OCF resource agents

Usage:
  ocfkit [global flags] <command> [args]

Global flags:
  --config <path>      Agent configuration file (default $OCF_AGENT_CONFIG)
  --json               JSON output

Commands:
  validate <descriptor.yaml>
  meta-data [--name <agent>] <descriptor.yaml>
  journal [--db <path>] [--agent <name>] [--action <name>] [--run <id>] [--limit N]
  version`)
}
