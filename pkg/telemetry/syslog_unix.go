// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows && !plan9

package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"log/syslog"
	"strings"
)

var syslogFacilities = map[string]syslog.Priority{
	"kern":     syslog.LOG_KERN,
	"user":     syslog.LOG_USER,
	"mail":     syslog.LOG_MAIL,
	"daemon":   syslog.LOG_DAEMON,
	"auth":     syslog.LOG_AUTH,
	"syslog":   syslog.LOG_SYSLOG,
	"lpr":      syslog.LOG_LPR,
	"news":     syslog.LOG_NEWS,
	"uucp":     syslog.LOG_UUCP,
	"cron":     syslog.LOG_CRON,
	"authpriv": syslog.LOG_AUTHPRIV,
	"ftp":      syslog.LOG_FTP,
	"local0":   syslog.LOG_LOCAL0,
	"local1":   syslog.LOG_LOCAL1,
	"local2":   syslog.LOG_LOCAL2,
	"local3":   syslog.LOG_LOCAL3,
	"local4":   syslog.LOG_LOCAL4,
	"local5":   syslog.LOG_LOCAL5,
	"local6":   syslog.LOG_LOCAL6,
	"local7":   syslog.LOG_LOCAL7,
}

func newSyslogHandler(facility, tag string, level slog.Leveler) (slog.Handler, io.Closer, error) {
	prio, ok := syslogFacilities[strings.ToLower(strings.TrimSpace(facility))]
	if !ok {
		return nil, nil, fmt.Errorf("unknown syslog facility %q", facility)
	}
	w, err := syslog.New(prio|syslog.LOG_INFO, tag)
	if err != nil {
		return nil, nil, fmt.Errorf("connect syslog: %w", err)
	}
	h := newLineHandler(level, shortFormat, func(l slog.Level, line string) error {
		switch {
		case l >= slog.LevelError:
			return w.Err(line)
		case l >= slog.LevelWarn:
			return w.Warning(line)
		case l >= slog.LevelInfo:
			return w.Info(line)
		default:
			return w.Debug(line)
		}
	})
	return h, w, nil
}
