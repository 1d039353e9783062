// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows || plan9

package telemetry

import (
	"fmt"
	"io"
	"log/slog"
)

func newSyslogHandler(facility, _ string, _ slog.Leveler) (slog.Handler, io.Closer, error) {
	return nil, nil, fmt.Errorf("syslog facility %q is not supported on this platform", facility)
}
