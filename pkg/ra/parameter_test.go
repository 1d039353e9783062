package ra

import (
	"testing"

	"github.com/jllopis/kairos-ocf/pkg/environment"
	"github.com/jllopis/kairos-ocf/pkg/errors"
)

func TestNewParameter_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		short string
		long  string
		opts  []ParameterOption
	}{
		{"required with default", "s", "l", []ParameterOption{Required(), Default("x")}},
		{"unknown content", "s", "l", []ParameterOption{Content("float")}},
		{"integer default not numeric", "s", "l", []ParameterOption{Content(ContentInteger), Default("ten")}},
		{"missing shortdesc", "", "l", nil},
		{"missing longdesc", "s", "  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParameter(tt.short, tt.long, tt.opts...)
			if !errors.HasCode(err, errors.CodeInvalidParameterSpec) {
				t.Fatalf("expected INVALID_PARAMETER_SPEC, got %v", err)
			}
		})
	}
}

func TestNewParameter_Defaults(t *testing.T) {
	p, err := NewParameter("Frobnicate", "Whether to frobnicate", Content(ContentBoolean), Default("no"), Unique())
	if err != nil {
		t.Fatalf("NewParameter: %v", err)
	}
	if p.ContentType() != ContentBoolean || !p.IsUnique() || p.IsRequired() {
		t.Errorf("unexpected spec %v", p)
	}
	if def, ok := p.Default(); !ok || def != "no" {
		t.Errorf("Default = %q, %v", def, ok)
	}
	if p.Name() != "" {
		t.Errorf("name must be empty before declaration, got %q", p.Name())
	}

	plain := MustParameter("s", "l")
	if plain.ContentType() != ContentString {
		t.Errorf("default content = %s", plain.ContentType())
	}
}

func TestMustParameter_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustParameter("s", "l", Required(), Default("x"))
}

func TestCoerce_Boolean(t *testing.T) {
	p := MustParameter("s", "l", Content(ContentBoolean))
	for _, raw := range []string{"yes", "true", "1", "YES", "TRUE", "ya", "on", "ON"} {
		v, err := p.Coerce(raw)
		if err != nil || v != true {
			t.Errorf("Coerce(%q) = %v, %v; want true", raw, v, err)
		}
	}
	for _, raw := range []string{"", "no", "false", "0", "True", "Yes", "On", "y", "enabled", " yes"} {
		v, err := p.Coerce(raw)
		if err != nil || v != false {
			t.Errorf("Coerce(%q) = %v, %v; want false", raw, v, err)
		}
	}
}

func TestCoerce_Integer(t *testing.T) {
	p := MustParameter("s", "l", Content(ContentInteger))
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{"-7", -7, false},
		{" 10 ", 10, false},
		{"abc", 0, true},
		{"4.2", 0, true},
		{"0x10", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		v, err := p.Coerce(tt.raw)
		if tt.wantErr {
			if !errors.HasCode(err, errors.CodeInvalidParameterValue) {
				t.Errorf("Coerce(%q): expected INVALID_PARAMETER_VALUE, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil || v != tt.want {
			t.Errorf("Coerce(%q) = %v, %v; want %d", tt.raw, v, err, tt.want)
		}
	}
}

func TestCoerce_String(t *testing.T) {
	p := MustParameter("s", "l")
	v, err := p.Coerce("  keep me  ")
	if err != nil || v != "  keep me  " {
		t.Errorf("Coerce = %q, %v", v, err)
	}
}

func TestResolve(t *testing.T) {
	required := MustParameter("s", "l", Required())
	optional := MustParameter("s", "l", Content(ContentInteger), Default("5"))
	bare := MustParameter("s", "l")
	for name, p := range map[string]*ParameterSpec{"req": required, "opt": optional, "bare": bare} {
		if err := p.bind(name); err != nil {
			t.Fatalf("bind %s: %v", name, err)
		}
	}

	env := environment.NewStatic("agent", "start", map[string]string{"opt": "12"})
	if v, err := optional.Resolve(env); err != nil || v != 12 {
		t.Errorf("opt = %v, %v", v, err)
	}

	_, err := required.Resolve(env)
	if !errors.HasCode(err, errors.CodeMissingParameter) {
		t.Fatalf("expected MISSING_REQUIRED_PARAMETER, got %v", err)
	}
	if got := errors.AsAgentError(err).Message; got != "Required parameter req not set" {
		t.Errorf("message = %q", got)
	}

	empty := environment.NewStatic("agent", "start", nil)
	if v, err := optional.Resolve(empty); err != nil || v != 5 {
		t.Errorf("default should resolve coerced, got %v (%T), %v", v, v, err)
	}
	if v, err := bare.Resolve(empty); err != nil || v != nil {
		t.Errorf("bare = %v, %v", v, err)
	}

	bad := environment.NewStatic("agent", "start", map[string]string{"opt": "many"})
	if _, err := optional.Resolve(bad); !errors.HasCode(err, errors.CodeInvalidParameterValue) {
		t.Errorf("expected INVALID_PARAMETER_VALUE, got %v", err)
	}
}

func TestResolve_Undeclared(t *testing.T) {
	p := MustParameter("s", "l")
	if _, err := p.Resolve(environment.NewStatic("agent", "start", nil)); err == nil {
		t.Fatal("expected error for undeclared parameter")
	}
}

func TestBind(t *testing.T) {
	p := MustParameter("s", "l")
	if err := p.bind("ip"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := p.bind("ip"); err != nil {
		t.Fatalf("rebinding the same name: %v", err)
	}
	if err := p.bind("address"); !errors.HasCode(err, errors.CodeInvalidParameterSpec) {
		t.Fatalf("expected rename to fail, got %v", err)
	}
	if err := MustParameter("s", "l").bind(""); err == nil {
		t.Fatal("expected empty name to fail")
	}
}
