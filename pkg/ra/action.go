// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package ra

import (
	"context"
	"reflect"
	"regexp"
	"runtime"
	"strings"
	"unicode"

	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/errors"
)

// DefaultTimeout is the advertised timeout of a variant, in seconds.
const DefaultTimeout = 20

// Handler implements an action. A non-nil error without an explicit
// failure status maps to the status of the error.
type Handler func(ctx context.Context, a *Agent) (core.Status, error)

// Variant holds the scheduling hints advertised for one declaration of an
// action. The resource manager enforces them; the agent only publishes them.
type Variant struct {
	timeout    int
	interval   *int
	startDelay *int
	depth      *int
	role       core.Role
}

// VariantOption configures a Variant.
type VariantOption func(*Variant)

// Timeout sets the timeout in seconds.
func Timeout(seconds int) VariantOption {
	return func(v *Variant) { v.timeout = seconds }
}

// Interval sets the recurring interval in seconds.
func Interval(seconds int) VariantOption {
	return func(v *Variant) { v.interval = &seconds }
}

// StartDelay sets the delay before the first run in seconds.
func StartDelay(seconds int) VariantOption {
	return func(v *Variant) { v.startDelay = &seconds }
}

// Depth sets the monitor check depth.
func Depth(depth int) VariantOption {
	return func(v *Variant) { v.depth = &depth }
}

// OnRole restricts the variant to a role.
func OnRole(role core.Role) VariantOption {
	return func(v *Variant) { v.role = role }
}

// NewVariant returns a variant with DefaultTimeout and the given options.
func NewVariant(opts ...VariantOption) Variant {
	v := Variant{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&v)
	}
	return v
}

func (v Variant) Timeout() int { return v.timeout }

func (v Variant) Interval() (int, bool) { return optInt(v.interval) }

func (v Variant) StartDelay() (int, bool) { return optInt(v.startDelay) }

func (v Variant) Depth() (int, bool) { return optInt(v.depth) }

func (v Variant) Role() core.Role { return v.role }

func optInt(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// ActionSpec is one named operation with its handler and the ordered
// variants it is advertised with.
type ActionSpec struct {
	name     string
	handler  Handler
	variants []Variant
}

// NewAction builds an action. An empty name is derived from the handler's
// function name (MetaData becomes meta-data). Without variants the action
// gets a single default one.
func NewAction(name string, h Handler, variants ...Variant) (*ActionSpec, error) {
	if h == nil {
		return nil, errors.Newf(errors.CodeInvalidActionSpec, "action %q has no handler", name)
	}
	if name == "" {
		derived, err := handlerName(h)
		if err != nil {
			return nil, err
		}
		name = derived
	}
	if len(variants) == 0 {
		variants = []Variant{NewVariant()}
	}
	return &ActionSpec{
		name:     name,
		handler:  h,
		variants: append([]Variant(nil), variants...),
	}, nil
}

// MustAction is like NewAction but panics on error.
func MustAction(name string, h Handler, variants ...Variant) *ActionSpec {
	a, err := NewAction(name, h, variants...)
	if err != nil {
		panic(err)
	}
	return a
}

// Name returns the action name.
func (a *ActionSpec) Name() string { return a.name }

// ResolveHandler returns the handler shared by every variant.
func (a *ActionSpec) ResolveHandler() Handler { return a.handler }

// Variants returns the variants in declaration order.
func (a *ActionSpec) Variants() []Variant {
	return append([]Variant(nil), a.variants...)
}

// Wrap chains a onto inner: the result advertises a's variants followed by
// inner's and runs inner's handler. Both must share the same name.
func (a *ActionSpec) Wrap(inner *ActionSpec) (*ActionSpec, error) {
	if inner == nil {
		return nil, errors.Newf(errors.CodeInvalidActionSpec, "cannot chain %s onto nothing", a.name)
	}
	if a.name != inner.name {
		return nil, errors.Newf(errors.CodeInvalidActionSpec,
			"cannot chain action %s onto action %s", a.name, inner.name)
	}
	variants := make([]Variant, 0, len(a.variants)+len(inner.variants))
	variants = append(variants, a.variants...)
	variants = append(variants, inner.variants...)
	return &ActionSpec{name: a.name, handler: inner.handler, variants: variants}, nil
}

// withHandler returns a copy running h with the same variants.
func (a *ActionSpec) withHandler(h Handler) *ActionSpec {
	return &ActionSpec{name: a.name, handler: h, variants: a.variants}
}

var anonymousFunc = regexp.MustCompile(`^func\d+$`)

// handlerName derives an action name from a named function or method.
func handlerName(h Handler) (string, error) {
	fn := runtime.FuncForPC(reflect.ValueOf(h).Pointer())
	if fn == nil {
		return "", errors.New(errors.CodeInvalidActionSpec, "cannot derive action name from handler", nil)
	}
	full := strings.TrimSuffix(fn.Name(), "-fm")
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	base := full
	if i := strings.LastIndex(full, "."); i >= 0 {
		base = full[i+1:]
	}
	if base == "" || anonymousFunc.MatchString(base) {
		return "", errors.Newf(errors.CodeInvalidActionSpec,
			"cannot derive action name from anonymous handler %s", fn.Name())
	}
	return kebab(base), nil
}

// kebab turns MetaData into meta-data and HTTPCheck into http-check.
// Underscores are kept.
func kebab(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('-')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
