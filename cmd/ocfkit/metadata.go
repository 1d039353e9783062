// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"

	"github.com/jllopis/kairos-ocf/pkg/ra"
)

func (c *cli) runMetaData(args []string) error {
	cmd := flag.NewFlagSet("meta-data", flag.ContinueOnError)
	cmd.SetOutput(c.stderr)
	name := cmd.String("name", "", "Agent name (default: descriptor name or file name)")
	if err := cmd.Parse(args); err != nil {
		return errReported
	}
	if cmd.NArg() != 1 {
		return NewInvalidArgumentError("", "usage: ocfkit meta-data [--name <agent>] <descriptor.yaml>")
	}
	path := cmd.Arg(0)

	d, err := ra.LoadDescriptor(path, nil)
	if err != nil {
		return NewDescriptorError(err, path)
	}
	if err := ra.WriteMetadata(c.stdout, d, infoFor(d, path, *name)); err != nil {
		return NewDescriptorError(err, path)
	}
	return nil
}
