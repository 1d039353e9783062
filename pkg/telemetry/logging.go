// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"go.opentelemetry.io/otel/trace"
)

// LogConfig selects the log destinations of an agent process. The fields
// mirror the HA_* variables set by the cluster stack.
type LogConfig struct {
	Tag         string
	Level       string
	Debug       bool
	Format      string // ocf, json
	Interactive bool
	UseLogd     bool
	Facility    string
	LogFile     string
	DebugLog    string
	Stderr      io.Writer
}

// ConfigureLogging builds the agent logger and installs it as the slog
// default. The returned function releases opened files and connections.
func ConfigureLogging(cfg LogConfig) (*slog.Logger, func() error, error) {
	handler, closer, err := newAgentHandler(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(&traceHandler{next: handler})
	slog.SetDefault(logger)
	return logger, closer, nil
}

// StdinIsTerminal reports whether the agent was started from a shell.
func StdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newAgentHandler(cfg LogConfig) (slog.Handler, func() error, error) {
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	level := parseLogLevel(cfg.Level)
	if cfg.Debug {
		level = slog.LevelDebug
	}
	noop := func() error { return nil }

	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		return slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}), noop, nil
	}

	// Run from the command line: stderr only.
	if cfg.Interactive {
		return newWriterHandler(stderr, level, longFormat(cfg.Tag)), noop, nil
	}

	// ha_logd takes everything when enabled.
	if cfg.UseLogd {
		return newLogdHandler(cfg.Tag, level), noop, nil
	}

	var (
		handlers []slog.Handler
		closers  []io.Closer
	)
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	if cfg.Facility != "" && cfg.Facility != "none" {
		h, c, err := newSyslogHandler(cfg.Facility, cfg.Tag, level)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, h)
		closers = append(closers, c)
	}

	// The debug log receives every enabled record.
	if cfg.DebugLog != "" {
		f, err := openLogFile(cfg.DebugLog)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		handlers = append(handlers, newWriterHandler(f, level, datedFormat(cfg.Tag)))
		closers = append(closers, f)
	}

	// The main log file never receives debug records.
	if cfg.LogFile != "" {
		f, err := openLogFile(cfg.LogFile)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		fileLevel := level
		if fileLevel < slog.LevelInfo {
			fileLevel = slog.LevelInfo
		}
		handlers = append(handlers, newWriterHandler(f, fileLevel, datedFormat(cfg.Tag)))
		closers = append(closers, f)
	}

	switch len(handlers) {
	case 0:
		return newWriterHandler(stderr, level, longFormat(cfg.Tag)), closeAll, nil
	case 1:
		return handlers[0], closeAll, nil
	default:
		return &fanoutHandler{handlers: handlers}, closeAll, nil
	}
}

func openLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// lineFormat renders the fixed prefix and message of a log line.
type lineFormat func(t time.Time, level slog.Level, msg string) string

func shortFormat(_ time.Time, level slog.Level, msg string) string {
	return levelName(level) + ": " + msg
}

func longFormat(tag string) lineFormat {
	if tag == "" {
		return shortFormat
	}
	return func(_ time.Time, level slog.Level, msg string) string {
		return tag + ": " + levelName(level) + ": " + msg
	}
}

// datedFormat matches the HA_LOGFILE/HA_DEBUGLOG layout of ocf-shellfuncs.
func datedFormat(tag string) lineFormat {
	return func(t time.Time, level slog.Level, msg string) string {
		return tag + ":\t" + t.Format("2006/01/02_15:04:05") + " " + levelName(level) + ": " + msg
	}
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARNING"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// lineHandler renders records as single text lines and hands them to emit.
type lineHandler struct {
	level  slog.Leveler
	format lineFormat
	emit   func(level slog.Level, line string) error
	prefix string
	pre    string
}

func newLineHandler(level slog.Leveler, format lineFormat, emit func(slog.Level, string) error) *lineHandler {
	return &lineHandler{level: level, format: format, emit: emit}
}

func newWriterHandler(w io.Writer, level slog.Leveler, format lineFormat) *lineHandler {
	var mu sync.Mutex
	return newLineHandler(level, format, func(_ slog.Level, line string) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := io.WriteString(w, line+"\n")
		return err
	})
}

func newLogdHandler(tag string, level slog.Leveler) *lineHandler {
	return newLineHandler(level, shortFormat, func(l slog.Level, line string) error {
		dest := "ha-log"
		if l < slog.LevelInfo {
			dest = "ha-debug"
		}
		return exec.Command("ha_logger", "-t", tag, "-D", dest, line).Run()
	})
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *lineHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(h.format(record.Time, record.Level, record.Message))
	b.WriteString(h.pre)
	record.Attrs(func(attr slog.Attr) bool {
		appendAttr(&b, h.prefix, attr)
		return true
	})
	return h.emit(record.Level, b.String())
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	for _, attr := range attrs {
		appendAttr(&b, h.prefix, attr)
	}
	clone := *h
	clone.pre = h.pre + b.String()
	return &clone
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func appendAttr(b *strings.Builder, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix = prefix + attr.Key + "."
		}
		for _, sub := range attr.Value.Group() {
			appendAttr(b, groupPrefix, sub)
		}
		return
	}
	value := attr.Value.String()
	if value == "" || strings.ContainsAny(value, " \t\n\"=") {
		value = strconv.Quote(value)
	}
	b.WriteString(" ")
	b.WriteString(prefix)
	b.WriteString(attr.Key)
	b.WriteString("=")
	b.WriteString(value)
}

// fanoutHandler sends each record to every handler that accepts its level.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, next := range h.handlers {
		if next.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, next := range h.handlers {
		if !next.Enabled(ctx, record.Level) {
			continue
		}
		if err := next.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(h.handlers))
	for i, next := range h.handlers {
		out[i] = next.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: out}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(h.handlers))
	for i, next := range h.handlers {
		out[i] = next.WithGroup(name)
	}
	return &fanoutHandler{handlers: out}
}

type traceHandler struct {
	next slog.Handler
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *traceHandler) Handle(ctx context.Context, record slog.Record) error {
	traceID, spanID := spanIDsFromContext(ctx)
	if traceID != "" && !recordHasAttr(record, "trace_id") {
		record.AddAttrs(slog.String("trace_id", traceID))
	}
	if spanID != "" && !recordHasAttr(record, "span_id") {
		record.AddAttrs(slog.String("span_id", spanID))
	}
	return h.next.Handle(ctx, record)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{next: h.next.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{next: h.next.WithGroup(name)}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func spanIDsFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	span := trace.SpanFromContext(ctx)
	if span == nil {
		return "", ""
	}
	sc := span.SpanContext()
	if !sc.IsValid() {
		return "", ""
	}
	return sc.TraceID().String(), sc.SpanID().String()
}

func recordHasAttr(record slog.Record, key string) bool {
	found := false
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == key {
			found = true
			return false
		}
		return true
	})
	return found
}
