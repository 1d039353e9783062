package ra

import (
	"strings"

	"github.com/jllopis/kairos-ocf/pkg/errors"
)

// Option configures a descriptor while it is being defined.
type Option func(*Descriptor) error

// WithName sets the agent name advertised in the metadata.
func WithName(name string) Option {
	return func(d *Descriptor) error {
		d.name = name
		return nil
	}
}

// WithVersion sets the agent version advertised in the metadata.
func WithVersion(version string) Option {
	return func(d *Descriptor) error {
		d.version = version
		return nil
	}
}

// WithDoc sets the description from a doc text: the first line is the
// short description and the remaining lines, each trimmed, form the long
// description followed by a newline. A blank doc leaves the description
// unset.
func WithDoc(doc string) Option {
	return func(d *Descriptor) error {
		doc = strings.TrimSpace(doc)
		if doc == "" {
			return nil
		}
		lines := strings.Split(doc, "\n")
		rest := make([]string, 0, len(lines)-1)
		for _, line := range lines[1:] {
			rest = append(rest, strings.TrimSpace(line))
		}
		d.shortdesc = lines[0]
		d.longdesc = strings.Join(rest, "\n") + "\n"
		d.hasDesc = true
		return nil
	}
}

// WithDescription sets the short and long description verbatim.
func WithDescription(short, long string) Option {
	return func(d *Descriptor) error {
		d.shortdesc = short
		d.longdesc = long
		d.hasDesc = short != "" || long != ""
		return nil
	}
}

// WithParameter declares a parameter.
func WithParameter(name string, p *ParameterSpec) Option {
	return func(d *Descriptor) error {
		return d.DeclareParameter(name, p)
	}
}

// WithAction declares an action.
func WithAction(a *ActionSpec) Option {
	return func(d *Descriptor) error {
		return d.DeclareAction(a)
	}
}

// WithHandler replaces the handler of an already declared action and keeps
// its variants.
func WithHandler(name string, h Handler) Option {
	return func(d *Descriptor) error {
		if h == nil {
			return errors.Newf(errors.CodeInvalidActionSpec, "action %s: nil handler", name)
		}
		a, ok := d.actions.Get(name)
		if !ok {
			return errors.Newf(errors.CodeInvalidActionSpec, "action %s is not declared", name)
		}
		return d.DeclareAction(a.withHandler(h))
	}
}

// WithDeclaration contributes any declaration under name.
func WithDeclaration(name string, decl Declaration) Option {
	return func(d *Descriptor) error {
		return d.Contribute(name, decl)
	}
}

// Define builds a frozen, complete agent type from Base.
func Define(opts ...Option) (*Descriptor, error) {
	return DefineFrom(Base(), opts...)
}

// MustDefine is like Define but panics on error.
func MustDefine(opts ...Option) *Descriptor {
	d, err := Define(opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// DefineFrom derives a concrete agent type from parent.
func DefineFrom(parent *Descriptor, opts ...Option) (*Descriptor, error) {
	d, err := build(parent, opts)
	if err != nil {
		return nil, err
	}
	if err := d.AssertComplete(); err != nil {
		return nil, err
	}
	d.Freeze()
	return d, nil
}

// Extend derives a frozen descriptor from d without requiring the
// mandatory actions, for abstract agent families that concrete types
// finish with DefineFrom.
func (d *Descriptor) Extend(opts ...Option) (*Descriptor, error) {
	out, err := build(d, opts)
	if err != nil {
		return nil, err
	}
	out.Freeze()
	return out, nil
}

func build(parent *Descriptor, opts []Option) (*Descriptor, error) {
	if parent == nil {
		parent = Base()
	}
	d := parent.Derive()
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}
