// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package ra

import (
	"context"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/errors"
)

// Handlers binds handler keys of a descriptor file to Go functions.
type Handlers map[string]Handler

// DescriptorFile is the YAML form of an agent type.
type DescriptorFile struct {
	Name       string          `yaml:"name"`
	Version    string          `yaml:"version"`
	ShortDesc  string          `yaml:"shortdesc"`
	LongDesc   string          `yaml:"longdesc"`
	Parameters []ParameterFile `yaml:"parameters"`
	Actions    []ActionFile    `yaml:"actions"`
}

// ParameterFile is one parameter entry.
type ParameterFile struct {
	Name      string  `yaml:"name"`
	ShortDesc string  `yaml:"shortdesc"`
	LongDesc  string  `yaml:"longdesc"`
	Unique    bool    `yaml:"unique"`
	Required  bool    `yaml:"required"`
	Content   string  `yaml:"content"`
	Default   *string `yaml:"default"`
}

// ActionFile is one action variant. Entries sharing a name chain in order.
type ActionFile struct {
	Name       string `yaml:"name"`
	Handler    string `yaml:"handler"`
	Timeout    *int   `yaml:"timeout"`
	Interval   *int   `yaml:"interval"`
	StartDelay *int   `yaml:"start-delay"`
	Depth      *int   `yaml:"depth"`
	Role       string `yaml:"role"`
}

// LoadDescriptor reads a descriptor file. See ParseDescriptor.
func LoadDescriptor(path string, handlers Handlers) (*Descriptor, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New(errors.CodeInvalidDescriptor, "descriptor path is required", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidDescriptor, "read descriptor", err).
			WithContext("path", path)
	}
	return ParseDescriptor(data, handlers)
}

// ParseDescriptor builds a complete, frozen agent type from YAML. Each
// action runs handlers[handler], where handler defaults to the action
// name; meta-data and validate-all fall back to the built-in handlers.
// With nil handlers the descriptor is only a definition: unbound actions
// report OCF_ERR_UNIMPLEMENTED.
func ParseDescriptor(data []byte, handlers Handlers) (*Descriptor, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.CodeInvalidDescriptor, "empty YAML payload", nil)
	}
	var file DescriptorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.New(errors.CodeInvalidDescriptor, "parse yaml descriptor", err)
	}
	opts, err := file.options(handlers)
	if err != nil {
		return nil, err
	}
	return Define(opts...)
}

func (f DescriptorFile) options(handlers Handlers) ([]Option, error) {
	opts := []Option{
		WithName(f.Name),
		WithVersion(f.Version),
		WithDescription(f.ShortDesc, f.LongDesc),
	}

	for i, pf := range f.Parameters {
		if pf.Name == "" {
			return nil, errors.Newf(errors.CodeInvalidParameterSpec, "parameter %d has no name", i)
		}
		content := ContentType(pf.Content)
		if content == "" {
			content = ContentString
		}
		popts := []ParameterOption{Content(content)}
		if pf.Unique {
			popts = append(popts, Unique())
		}
		if pf.Required {
			popts = append(popts, Required())
		}
		if pf.Default != nil {
			popts = append(popts, Default(*pf.Default))
		}
		p, err := NewParameter(pf.ShortDesc, pf.LongDesc, popts...)
		if err != nil {
			return nil, errors.New(errors.CodeInvalidParameterSpec, "parameter "+pf.Name, err)
		}
		opts = append(opts, WithParameter(pf.Name, p))
	}

	// Group variants by action, keeping first-seen order.
	var order []string
	grouped := make(map[string][]ActionFile)
	for i, af := range f.Actions {
		if af.Name == "" {
			return nil, errors.Newf(errors.CodeInvalidActionSpec, "action %d has no name", i)
		}
		if _, seen := grouped[af.Name]; !seen {
			order = append(order, af.Name)
		}
		grouped[af.Name] = append(grouped[af.Name], af)
	}

	for _, name := range order {
		entries := grouped[name]
		variants := make([]Variant, 0, len(entries))
		key := name
		for _, af := range entries {
			variants = append(variants, af.variant())
			if af.Handler != "" {
				key = af.Handler
			}
		}
		opts = append(opts, bindAction(name, key, handlers, variants))
	}
	return opts, nil
}

func (af ActionFile) variant() Variant {
	var vopts []VariantOption
	if af.Timeout != nil {
		vopts = append(vopts, Timeout(*af.Timeout))
	}
	if af.Interval != nil {
		vopts = append(vopts, Interval(*af.Interval))
	}
	if af.StartDelay != nil {
		vopts = append(vopts, StartDelay(*af.StartDelay))
	}
	if af.Depth != nil {
		vopts = append(vopts, Depth(*af.Depth))
	}
	if af.Role != "" {
		vopts = append(vopts, OnRole(core.Role(af.Role)))
	}
	return NewVariant(vopts...)
}

// bindAction resolves the handler when the option is applied, so actions
// inherited from the parent descriptor can lend theirs.
func bindAction(name, key string, handlers Handlers, variants []Variant) Option {
	return func(d *Descriptor) error {
		h, ok := handlers[key]
		if !ok {
			if inherited, found := d.Action(name); found {
				h = inherited.ResolveHandler()
			} else if handlers == nil {
				h = unimplemented
			} else {
				return errors.Newf(errors.CodeInvalidActionSpec, "no handler bound for action %s (key %q)", name, key)
			}
		}
		spec, err := NewAction(name, h, variants...)
		if err != nil {
			return err
		}
		return d.DeclareAction(spec)
	}
}

func unimplemented(_ context.Context, a *Agent) (core.Status, error) {
	return core.ErrUnimplemented, errors.Newf(errors.CodeActionFailed,
		"%s: no handler bound", a.Env().Action())
}
