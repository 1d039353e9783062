// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Command dummyagent is a sample OCF resource agent. It tracks a fake
// resource in the agent state store.
package main

import (
	"fmt"
	"os"

	"github.com/jllopis/kairos-ocf/pkg/ra"
)

func main() {
	d, err := descriptor()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ra.Main(d)
}
