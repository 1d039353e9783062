// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package environment exposes the invocation state of a resource agent
// process: the requested action, the OCF_RESKEY_* parameters and the
// cluster variables that describe how the resource is managed.
package environment

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/jllopis/kairos-ocf/pkg/core"
)

const (
	// ResKeyPrefix prefixes every resource parameter variable.
	ResKeyPrefix = "OCF_RESKEY_"

	// DefaultOCFRoot is used when OCF_ROOT is not set.
	DefaultOCFRoot = "/usr/lib/ocf"

	// DefaultRscTmp is used when HA_RSCTMP is not set.
	DefaultRscTmp = "/run/resource-agents"

	metaDataAction = "meta-data"
	monitorAction  = "monitor"
)

// OS is the core.Environment of the running process. It is a snapshot
// taken once by FromOS and never changes afterwards.
type OS struct {
	script  string
	action  string
	vars    map[string]string
	reskeys map[string]string
	uid     int
}

var _ core.Environment = (*OS)(nil)

// FromOS builds the environment from argv and the process environment.
// Only args[1] is considered an action; further arguments are ignored.
// The locale is neutralised first so helper commands produce stable output.
func FromOS(args []string) (*OS, error) {
	if err := os.Setenv("LC_ALL", "C"); err != nil {
		return nil, fmt.Errorf("set LC_ALL: %w", err)
	}
	if err := os.Unsetenv("LANGUAGE"); err != nil {
		return nil, fmt.Errorf("unset LANGUAGE: %w", err)
	}

	reskeys, err := loadResKeys()
	if err != nil {
		return nil, err
	}

	e := &OS{
		vars:    make(map[string]string),
		reskeys: reskeys,
		uid:     os.Getuid(),
	}
	if len(args) > 0 {
		e.script = filepath.Base(args[0])
	}
	if len(args) > 1 {
		e.action = args[1]
	}
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			e.vars[key] = value
		}
	}
	return e, nil
}

func loadResKeys() (map[string]string, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider(ResKeyPrefix, ".", func(s string) string {
		return strings.TrimPrefix(s, ResKeyPrefix)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load resource parameters: %w", err)
	}
	out := make(map[string]string, len(k.Keys()))
	for _, key := range k.Keys() {
		out[key] = k.String(key)
	}
	return out, nil
}

// Action returns argv[1], or "" when the agent was run without arguments.
func (e *OS) Action() string { return e.action }

// ScriptName returns the basename of argv[0].
func (e *OS) ScriptName() string { return e.script }

// ResKeys returns a copy of the OCF_RESKEY_* variables with the prefix stripped.
func (e *OS) ResKeys() map[string]string {
	out := make(map[string]string, len(e.reskeys))
	for k, v := range e.reskeys {
		out[k] = v
	}
	return out
}

// IsProbe reports a monitor operation with a zero or missing interval.
func (e *OS) IsProbe() bool {
	return e.action == monitorAction && metaInt(e.reskeys, "CRM_meta_interval") == 0
}

// IsClone reports whether this instance belongs to a cloned resource.
func (e *OS) IsClone() bool {
	return metaInt(e.reskeys, "CRM_meta_clone_max") > 0
}

// IsMasterSlave reports whether this instance belongs to a master/slave resource.
func (e *OS) IsMasterSlave() bool {
	return metaInt(e.reskeys, "CRM_meta_master_max") > 0
}

// Getenv returns a variable from the snapshot.
func (e *OS) Getenv(key string) string { return e.vars[key] }

// OCFRoot returns OCF_ROOT or DefaultOCFRoot.
func (e *OS) OCFRoot() string {
	if root, ok := e.vars["OCF_ROOT"]; ok {
		return root
	}
	return DefaultOCFRoot
}

// FunctionsDir returns OCF_FUNCTIONS_DIR or <root>/lib/heartbeat.
func (e *OS) FunctionsDir() string {
	if dir := e.vars["OCF_FUNCTIONS_DIR"]; dir != "" {
		return dir
	}
	return filepath.Join(e.OCFRoot(), "lib", "heartbeat")
}

// ResourceInstance returns the resource instance name, for clones
// including the instance number (p_foo:0). Outside the cluster the
// instance is "default"; a cluster invocation without
// OCF_RESOURCE_INSTANCE is an argument error.
func (e *OS) ResourceInstance() (string, error) {
	if e.action == metaDataAction {
		return "undef", nil
	}
	if ri, ok := e.vars["OCF_RESOURCE_INSTANCE"]; ok {
		return ri, nil
	}
	if _, ok := e.vars["OCF_RA_VERSION_MAJOR"]; !ok {
		return "default", nil
	}
	return "", fmt.Errorf("need to tell us our resource instance name")
}

// RscTmp returns HA_RSCTMP, the node-local directory agents keep state in
// between invocations. It survives agent processes but not a reboot.
func (e *OS) RscTmp() string {
	if dir := e.vars["HA_RSCTMP"]; dir != "" {
		return dir
	}
	return DefaultRscTmp
}

// ResourceType returns OCF_RESOURCE_TYPE or the script name.
func (e *OS) ResourceType() string {
	if rt := e.vars["OCF_RESOURCE_TYPE"]; rt != "" {
		return rt
	}
	return e.script
}

// CheckLevel returns OCF_CHECK_LEVEL (or OCF_RESKEY_OCF_CHECK_LEVEL), default 0.
func (e *OS) CheckLevel() (int, error) {
	raw := e.vars["OCF_CHECK_LEVEL"]
	if raw == "" {
		raw = e.reskeys["OCF_CHECK_LEVEL"]
	}
	if raw == "" {
		return 0, nil
	}
	level, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid check level %q: %w", raw, err)
	}
	return level, nil
}

// IsRoot reports whether the agent runs as uid 0.
func (e *OS) IsRoot() bool { return e.uid == 0 }

// metaInt parses a CRM_meta_* integer; absent or malformed values are 0.
func metaInt(reskeys map[string]string, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(reskeys[key]))
	if err != nil {
		return 0
	}
	return n
}
