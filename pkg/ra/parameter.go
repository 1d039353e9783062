// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package ra

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/errors"
)

// ContentType is the value type of a parameter.
type ContentType string

const (
	ContentString  ContentType = "string"
	ContentInteger ContentType = "integer"
	ContentBoolean ContentType = "boolean"
)

// Valid reports whether c is one of the supported content types.
func (c ContentType) Valid() bool {
	switch c {
	case ContentString, ContentInteger, ContentBoolean:
		return true
	}
	return false
}

// ParameterSpec describes one configuration value an agent accepts. The
// name is assigned when the parameter is declared on a Descriptor.
type ParameterSpec struct {
	name      string
	shortdesc string
	longdesc  string
	unique    bool
	required  bool
	content   ContentType
	def       *string
}

// ParameterOption configures a ParameterSpec.
type ParameterOption func(*ParameterSpec)

// Unique marks the parameter as unique across resource instances.
func Unique() ParameterOption {
	return func(p *ParameterSpec) { p.unique = true }
}

// Required marks the parameter as mandatory.
func Required() ParameterOption {
	return func(p *ParameterSpec) { p.required = true }
}

// Content sets the content type. The default is ContentString.
func Content(c ContentType) ParameterOption {
	return func(p *ParameterSpec) { p.content = c }
}

// Default sets the raw default value. It must coerce to the content type.
func Default(value string) ParameterOption {
	return func(p *ParameterSpec) { p.def = &value }
}

// NewParameter builds a parameter spec.
func NewParameter(shortdesc, longdesc string, opts ...ParameterOption) (*ParameterSpec, error) {
	p := &ParameterSpec{
		shortdesc: shortdesc,
		longdesc:  longdesc,
		content:   ContentString,
	}
	for _, opt := range opts {
		opt(p)
	}
	if strings.TrimSpace(p.shortdesc) == "" || strings.TrimSpace(p.longdesc) == "" {
		return nil, errors.New(errors.CodeInvalidParameterSpec, "parameter needs a short and a long description", nil)
	}
	if !p.content.Valid() {
		return nil, errors.Newf(errors.CodeInvalidParameterSpec,
			"content must be one of string, integer or boolean, got %q", p.content)
	}
	if p.def != nil {
		if p.required {
			return nil, errors.New(errors.CodeInvalidParameterSpec,
				"parameter cannot both be required and have a default value", nil)
		}
		if _, err := p.Coerce(*p.def); err != nil {
			return nil, errors.New(errors.CodeInvalidParameterSpec, "invalid default value", err)
		}
	}
	return p, nil
}

// MustParameter is like NewParameter but panics on error. It is meant for
// package level declarations.
func MustParameter(shortdesc, longdesc string, opts ...ParameterOption) *ParameterSpec {
	p, err := NewParameter(shortdesc, longdesc, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Name returns the declared name, or "" before declaration.
func (p *ParameterSpec) Name() string { return p.name }

// ShortDesc returns the one-line description.
func (p *ParameterSpec) ShortDesc() string { return p.shortdesc }

// LongDesc returns the full description.
func (p *ParameterSpec) LongDesc() string { return p.longdesc }

// IsUnique reports whether the parameter is unique.
func (p *ParameterSpec) IsUnique() bool { return p.unique }

// IsRequired reports whether the parameter is mandatory.
func (p *ParameterSpec) IsRequired() bool { return p.required }

// ContentType returns the value type.
func (p *ParameterSpec) ContentType() ContentType { return p.content }

// Default returns the raw default value.
func (p *ParameterSpec) Default() (string, bool) {
	if p.def == nil {
		return "", false
	}
	return *p.def, true
}

// Coerce converts a raw value to the parameter type: string values are
// returned unchanged, integers are parsed base 10 and booleans follow the
// ocf_is_true convention, where unknown tokens are false.
func (p *ParameterSpec) Coerce(raw string) (any, error) {
	switch p.content {
	case ContentInteger:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, errors.Newf(errors.CodeInvalidParameterValue,
				"parameter %s: %q is not an integer", p.displayName(), raw)
		}
		return n, nil
	case ContentBoolean:
		return core.IsTrue(raw), nil
	default:
		return raw, nil
	}
}

// Resolve looks the parameter up in the environment. An absent optional
// parameter resolves to its coerced default, or nil without one.
func (p *ParameterSpec) Resolve(env core.Environment) (any, error) {
	if p.name == "" {
		return nil, errors.New(errors.CodeInternal, "parameter has not been declared", nil)
	}
	raw, ok := env.ResKeys()[p.name]
	if !ok {
		if p.required {
			return nil, errors.Newf(errors.CodeMissingParameter, "Required parameter %s not set", p.name).
				WithRecoverable(true)
		}
		if p.def == nil {
			return nil, nil
		}
		return p.Coerce(*p.def)
	}
	v, err := p.Coerce(raw)
	if err != nil {
		return nil, errors.AsAgentError(err).WithRecoverable(true)
	}
	return v, nil
}

func (p *ParameterSpec) displayName() string {
	if p.name == "" {
		return "<undeclared>"
	}
	return p.name
}

// bind assigns the declaration name. A spec may be redeclared under the
// same name (subtypes sharing it) but never renamed.
func (p *ParameterSpec) bind(name string) error {
	if name == "" {
		return errors.New(errors.CodeInvalidParameterSpec, "parameter name is required", nil)
	}
	if p.name != "" && p.name != name {
		return errors.Newf(errors.CodeInvalidParameterSpec,
			"parameter already declared as %s, cannot declare it as %s", p.name, name)
	}
	p.name = name
	return nil
}

func (p *ParameterSpec) String() string {
	return fmt.Sprintf("parameter(%s, %s)", p.displayName(), p.content)
}
