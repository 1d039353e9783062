// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jllopis/kairos-ocf/pkg/ra"
)

type validateResult struct {
	Path        string        `json:"path"`
	Descriptor  checkResult   `json:"descriptor"`
	Description checkResult   `json:"description"`
	Parameters  []checkResult `json:"parameters"`
	Actions     []checkResult `json:"actions"`
	Metadata    checkResult   `json:"metadata"`
	Overall     string        `json:"overall"`
}

type checkResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warn", "error", "skip"
	Message string `json:"message,omitempty"`
}

func (c *cli) runValidate(args []string) error {
	if len(args) != 1 {
		return NewInvalidArgumentError(strings.Join(args, " "), "usage: ocfkit validate <descriptor.yaml>")
	}
	path := args[0]
	result := validateDescriptor(path)

	if c.flags.JSON {
		if err := c.printJSON(result); err != nil {
			return err
		}
	} else {
		c.printValidateResult(result)
	}
	if result.Overall == "error" {
		return errReported
	}
	return nil
}

func validateDescriptor(path string) validateResult {
	result := validateResult{
		Path:       path,
		Parameters: []checkResult{},
		Actions:    []checkResult{},
	}

	d, err := ra.LoadDescriptor(path, nil)
	if err != nil {
		result.Descriptor = checkResult{Name: "descriptor", Status: "error", Message: err.Error()}
		result.Description = checkResult{Name: "description", Status: "skip", Message: "descriptor not loaded"}
		result.Metadata = checkResult{Name: "metadata", Status: "skip", Message: "descriptor not loaded"}
		result.Overall = "error"
		return result
	}
	result.Descriptor = checkResult{Name: "descriptor", Status: "ok", Message: agentName(d, path)}

	short, _, ok := d.Description()
	switch {
	case !ok:
		result.Description = checkResult{Name: "description", Status: "error", Message: "no shortdesc or longdesc; meta-data will fail"}
	case short == "":
		result.Description = checkResult{Name: "description", Status: "warn", Message: "shortdesc is empty"}
	default:
		result.Description = checkResult{Name: "description", Status: "ok", Message: short}
	}

	for _, p := range d.Parameters() {
		result.Parameters = append(result.Parameters, checkParameter(p))
	}
	for _, a := range d.Actions() {
		result.Actions = append(result.Actions, checkAction(a))
	}

	if ok {
		var buf bytes.Buffer
		info := infoFor(d, path, "")
		if err := ra.WriteMetadata(&buf, d, info); err != nil {
			result.Metadata = checkResult{Name: "metadata", Status: "error", Message: err.Error()}
		} else if _, err := ra.ParseMetadata(&buf); err != nil {
			result.Metadata = checkResult{Name: "metadata", Status: "error", Message: err.Error()}
		} else {
			result.Metadata = checkResult{Name: "metadata", Status: "ok"}
		}
	} else {
		result.Metadata = checkResult{Name: "metadata", Status: "skip", Message: "no description"}
	}

	result.Overall = overall(result)
	return result
}

func checkParameter(p *ra.ParameterSpec) checkResult {
	r := checkResult{Name: "parameter " + p.Name(), Status: "ok", Message: string(p.ContentType())}
	if p.IsRequired() {
		r.Message += ", required"
	}
	if def, ok := p.Default(); ok {
		r.Message += fmt.Sprintf(", default %q", def)
	}
	return r
}

func checkAction(a *ra.ActionSpec) checkResult {
	variants := a.Variants()
	r := checkResult{Name: "action " + a.Name(), Status: "ok"}
	parts := make([]string, 0, len(variants))
	for _, v := range variants {
		part := fmt.Sprintf("timeout %d", v.Timeout())
		if i, ok := v.Interval(); ok {
			part += fmt.Sprintf(" interval %d", i)
		}
		if v.Role() != "" {
			part += " role " + string(v.Role())
		}
		parts = append(parts, part)
	}
	r.Message = strings.Join(parts, "; ")
	return r
}

func overall(r validateResult) string {
	checks := []checkResult{r.Descriptor, r.Description, r.Metadata}
	checks = append(checks, r.Parameters...)
	checks = append(checks, r.Actions...)
	status := "ok"
	for _, c := range checks {
		switch c.Status {
		case "error":
			return "error"
		case "warn":
			status = "warn"
		}
	}
	return status
}

func agentName(d *ra.Descriptor, path string) string {
	if d.Name() != "" {
		return d.Name()
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func infoFor(d *ra.Descriptor, path, name string) ra.Info {
	if name == "" {
		name = agentName(d, path)
	}
	short, long, _ := d.Description()
	return ra.Info{Name: name, Version: d.Version(), ShortDesc: short, LongDesc: long}
}

func (c *cli) printValidateResult(result validateResult) {
	statusIcon := map[string]string{
		"ok":    "✓",
		"warn":  "⚠",
		"error": "✗",
		"skip":  "○",
	}

	fmt.Fprintf(c.stdout, "Resource Agent Validation: %s\n", result.Path)
	fmt.Fprintln(c.stdout, strings.Repeat("=", 27+len(result.Path)))
	fmt.Fprintln(c.stdout)

	c.printCheck(statusIcon, result.Descriptor)
	c.printCheck(statusIcon, result.Description)
	for _, r := range result.Parameters {
		c.printCheck(statusIcon, r)
	}
	for _, r := range result.Actions {
		c.printCheck(statusIcon, r)
	}
	c.printCheck(statusIcon, result.Metadata)

	fmt.Fprintln(c.stdout)
	switch result.Overall {
	case "ok":
		fmt.Fprintln(c.stdout, "✓ All checks passed")
	case "warn":
		fmt.Fprintln(c.stdout, "⚠ Validation completed with warnings")
	case "error":
		fmt.Fprintln(c.stdout, "✗ Validation failed")
	}
}

func (c *cli) printCheck(icons map[string]string, r checkResult) {
	icon := icons[r.Status]
	if r.Message != "" {
		fmt.Fprintf(c.stdout, "%s %s: %s\n", icon, r.Name, r.Message)
	} else {
		fmt.Fprintf(c.stdout, "%s %s\n", icon, r.Name)
	}
}
