package ra

import (
	"context"
	"testing"

	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/errors"
)

func MetaDataProbe(context.Context, *Agent) (core.Status, error) { return core.Success, nil }

func reload(context.Context, *Agent) (core.Status, error) { return core.Success, nil }

type fakeResource struct{}

func (fakeResource) Start(context.Context, *Agent) (core.Status, error) { return core.Success, nil }

func TestNewAction_Defaults(t *testing.T) {
	a, err := NewAction("start", okHandler)
	if err != nil {
		t.Fatalf("NewAction: %v", err)
	}
	vs := a.Variants()
	if len(vs) != 1 || vs[0].Timeout() != DefaultTimeout {
		t.Fatalf("expected one default variant, got %+v", vs)
	}
	if _, ok := vs[0].Interval(); ok {
		t.Error("interval must be unset by default")
	}
	if vs[0].Role() != "" {
		t.Error("role must be unset by default")
	}
}

func TestNewAction_NilHandler(t *testing.T) {
	if _, err := NewAction("start", nil); !errors.HasCode(err, errors.CodeInvalidActionSpec) {
		t.Fatalf("expected INVALID_ACTION_SPEC, got %v", err)
	}
}

func TestNewAction_DerivedName(t *testing.T) {
	tests := []struct {
		name string
		h    Handler
		want string
	}{
		{"function", reload, "reload"},
		{"camel case", MetaDataProbe, "meta-data-probe"},
		{"method value", fakeResource{}.Start, "start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAction("", tt.h)
			if err != nil {
				t.Fatalf("NewAction: %v", err)
			}
			if a.Name() != tt.want {
				t.Errorf("name = %q, want %q", a.Name(), tt.want)
			}
		})
	}
}

func TestNewAction_AnonymousNeedsName(t *testing.T) {
	_, err := NewAction("", func(context.Context, *Agent) (core.Status, error) { return core.Success, nil })
	if !errors.HasCode(err, errors.CodeInvalidActionSpec) {
		t.Fatalf("expected INVALID_ACTION_SPEC, got %v", err)
	}
}

func TestKebab(t *testing.T) {
	tests := map[string]string{
		"start":       "start",
		"Start":       "start",
		"MetaData":    "meta-data",
		"ValidateAll": "validate-all",
		"HTTPCheck":   "http-check",
		"migrate_to":  "migrate_to",
		"Check2Deep":  "check2-deep",
	}
	for in, want := range tests {
		if got := kebab(in); got != want {
			t.Errorf("kebab(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWrap_Chain(t *testing.T) {
	c := &calls{}
	inner := MustAction("monitor", c.handler("monitor", core.Success, nil),
		NewVariant(Interval(10), OnRole(core.RoleMaster)))
	middle := MustAction("monitor", okHandler, NewVariant(Interval(20), OnRole(core.RoleSlave)))
	outer := MustAction("monitor", okHandler, NewVariant(Interval(10), Depth(0)))

	chained, err := middle.Wrap(inner)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	chained, err = outer.Wrap(chained)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}

	vs := chained.Variants()
	if len(vs) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(vs))
	}
	if d, ok := vs[0].Depth(); !ok || d != 0 {
		t.Errorf("outermost variant first: %+v", vs[0])
	}
	if vs[1].Role() != core.RoleSlave || vs[2].Role() != core.RoleMaster {
		t.Errorf("unexpected role order %s, %s", vs[1].Role(), vs[2].Role())
	}

	if _, err := chained.ResolveHandler()(context.Background(), nil); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(c.names) != 1 {
		t.Errorf("terminal handler must run exactly once, ran %d times", len(c.names))
	}
	if len(inner.Variants()) != 1 {
		t.Error("Wrap must not modify its operands")
	}
}

func TestWrap_NameMismatch(t *testing.T) {
	start := MustAction("start", okHandler)
	stop := MustAction("stop", okHandler)
	if _, err := start.Wrap(stop); !errors.HasCode(err, errors.CodeInvalidActionSpec) {
		t.Fatalf("expected INVALID_ACTION_SPEC, got %v", err)
	}
	if _, err := start.Wrap(nil); err == nil {
		t.Fatal("expected error wrapping nil")
	}
}
