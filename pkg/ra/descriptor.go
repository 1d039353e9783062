// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package ra defines resource agent types and runs them: parameters and
// actions are declared on a Descriptor, a Dispatcher executes the action
// requested by the resource manager and the meta-data action renders the
// XML self description.
package ra

import (
	"context"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/errors"
)

// Well-known action names.
const (
	ActionStart       = "start"
	ActionStop        = "stop"
	ActionMonitor     = "monitor"
	ActionMetaData    = "meta-data"
	ActionValidateAll = "validate-all"
	ActionPromote     = "promote"
	ActionDemote      = "demote"
	ActionNotify      = "notify"
	ActionReload      = "reload"
	ActionMigrateTo   = "migrate_to"
	ActionMigrateFrom = "migrate_from"
)

// RequiredActions must be present on every concrete agent type.
var RequiredActions = []string{ActionMetaData, ActionMonitor, ActionStart, ActionStop}

// Descriptor is the definition of an agent type: its parameters and
// actions in declaration order, plus the name, version and description
// used in the metadata. A frozen descriptor is read-only and may be shared.
type Descriptor struct {
	name       string
	version    string
	shortdesc  string
	longdesc   string
	hasDesc    bool
	parameters *orderedmap.OrderedMap[string, *ParameterSpec]
	actions    *orderedmap.OrderedMap[string, *ActionSpec]
	frozen     bool
}

// Declaration is a spec that can be contributed to a descriptor.
// *ParameterSpec and *ActionSpec implement it.
type Declaration interface {
	contribute(d *Descriptor, name string) error
}

func newDescriptor() *Descriptor {
	return &Descriptor{
		parameters: orderedmap.New[string, *ParameterSpec](),
		actions:    orderedmap.New[string, *ActionSpec](),
	}
}

// Base returns the root descriptor every agent type derives from. It
// provides meta-data and validate-all; validate-all succeeds because
// parameters are validated before any handler runs.
func Base() *Descriptor {
	d := newDescriptor()
	d.actions.Set(ActionMetaData, MustAction(ActionMetaData, metaData, NewVariant(Timeout(5))))
	d.actions.Set(ActionValidateAll, MustAction(ActionValidateAll, validateAll, NewVariant(Timeout(5))))
	return d
}

func metaData(_ context.Context, a *Agent) (core.Status, error) {
	d := a.Descriptor()
	short, long, ok := d.Description()
	if !ok {
		return core.ErrGeneric, errors.Newf(errors.CodeMissingDescription,
			"agent %s has no description", a.Env().ScriptName())
	}
	name := d.Name()
	if name == "" {
		name = a.Env().ScriptName()
	}
	info := Info{Name: name, Version: d.Version(), ShortDesc: short, LongDesc: long}
	if err := WriteMetadata(a.Stdout(), d, info); err != nil {
		return core.ErrGeneric, err
	}
	return core.Success, nil
}

func validateAll(context.Context, *Agent) (core.Status, error) {
	return core.Success, nil
}

// Derive returns an unfrozen copy of d. The registries are copied so the
// new descriptor can add or override specs without affecting d. Name and
// version carry over; the description does not.
func (d *Descriptor) Derive() *Descriptor {
	out := newDescriptor()
	out.name = d.name
	out.version = d.version
	for pair := d.parameters.Oldest(); pair != nil; pair = pair.Next() {
		out.parameters.Set(pair.Key, pair.Value)
	}
	for pair := d.actions.Oldest(); pair != nil; pair = pair.Next() {
		out.actions.Set(pair.Key, pair.Value)
	}
	return out
}

// DeclareParameter registers p under name, replacing any parameter of the
// same name in place.
func (d *Descriptor) DeclareParameter(name string, p *ParameterSpec) error {
	if p == nil {
		return errors.Newf(errors.CodeInvalidParameterSpec, "parameter %s is nil", name)
	}
	return d.Contribute(name, p)
}

// DeclareAction registers a under its own name, replacing any action of the
// same name. Chaining is explicit through Wrap.
func (d *Descriptor) DeclareAction(a *ActionSpec) error {
	if a == nil {
		return errors.New(errors.CodeInvalidActionSpec, "action is nil", nil)
	}
	return d.Contribute(a.name, a)
}

// Contribute inserts or overwrites decl in the matching registry.
func (d *Descriptor) Contribute(name string, decl Declaration) error {
	if d.frozen {
		return errors.Newf(errors.CodeInternal, "descriptor %s is frozen", d.displayName())
	}
	return decl.contribute(d, name)
}

func (p *ParameterSpec) contribute(d *Descriptor, name string) error {
	if err := p.bind(name); err != nil {
		return err
	}
	d.parameters.Set(name, p)
	return nil
}

// Actions are keyed by their own name; name is only used for unnamed specs.
func (a *ActionSpec) contribute(d *Descriptor, name string) error {
	key := a.name
	if key == "" {
		key = name
	}
	if key == "" {
		return errors.New(errors.CodeInvalidActionSpec, "action name is required", nil)
	}
	if a.name == "" {
		a = &ActionSpec{name: key, handler: a.handler, variants: a.variants}
	}
	d.actions.Set(key, a)
	return nil
}

// AssertComplete fails when any of RequiredActions is missing.
func (d *Descriptor) AssertComplete() error {
	var missing []string
	for _, name := range RequiredActions {
		if _, ok := d.actions.Get(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return errors.Newf(errors.CodeIncompleteAgent,
		"%s is incomplete; it is missing the following required actions: %s",
		d.displayName(), strings.Join(missing, ", ")).
		WithContext("missing_actions", missing)
}

// Freeze makes d read-only.
func (d *Descriptor) Freeze() { d.frozen = true }

// Frozen reports whether d is read-only.
func (d *Descriptor) Frozen() bool { return d.frozen }

// Name returns the agent name, or "" to use the script name.
func (d *Descriptor) Name() string { return d.name }

// Version returns the agent version, or "".
func (d *Descriptor) Version() string { return d.version }

// Description returns the short and long description.
func (d *Descriptor) Description() (short, long string, ok bool) {
	return d.shortdesc, d.longdesc, d.hasDesc
}

// Parameter returns the parameter declared under name.
func (d *Descriptor) Parameter(name string) (*ParameterSpec, bool) {
	return d.parameters.Get(name)
}

// Parameters returns the parameters in declaration order.
func (d *Descriptor) Parameters() []*ParameterSpec {
	out := make([]*ParameterSpec, 0, d.parameters.Len())
	for pair := d.parameters.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// ParameterNames returns the parameter names in declaration order.
func (d *Descriptor) ParameterNames() []string {
	out := make([]string, 0, d.parameters.Len())
	for pair := d.parameters.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Action returns the action registered under name.
func (d *Descriptor) Action(name string) (*ActionSpec, bool) {
	return d.actions.Get(name)
}

// Actions returns the actions in registration order.
func (d *Descriptor) Actions() []*ActionSpec {
	out := make([]*ActionSpec, 0, d.actions.Len())
	for pair := d.actions.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// ActionNames returns the action names sorted, as printed in usage text.
func (d *Descriptor) ActionNames() []string {
	out := make([]string, 0, d.actions.Len())
	for pair := d.actions.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	sort.Strings(out)
	return out
}

func (d *Descriptor) displayName() string {
	if d.name == "" {
		return "agent"
	}
	return d.name
}
