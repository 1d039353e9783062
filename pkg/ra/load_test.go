package ra

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/errors"
)

const dummyYAML = `
name: dummy
version: "1.0"
shortdesc: Dummy resource agent
longdesc: |
  Manages nothing at all.
parameters:
  - name: hba_type
    shortdesc: HBA type
    longdesc: Type of host bus adapter
    required: true
  - name: frobnicate
    shortdesc: Frobnicate
    longdesc: Whether to frobnicate
    content: boolean
    default: no
  - name: retries
    shortdesc: Retries
    longdesc: Number of retries
    content: integer
    default: 3
actions:
  - name: start
    timeout: 40
  - name: stop
  - name: monitor
    handler: check
    interval: 10
    depth: 0
  - name: monitor
    interval: 20
    role: Slave
  - name: monitor
    interval: 10
    role: Master
  - name: meta-data
    timeout: 10
`

func TestParseDescriptor(t *testing.T) {
	c := &calls{}
	handlers := Handlers{
		"start": c.handler("start", core.Success, nil),
		"stop":  c.handler("stop", core.Success, nil),
		"check": c.handler("check", core.NotRunning, nil),
	}
	d, err := ParseDescriptor([]byte(dummyYAML), handlers)
	if err != nil {
		t.Fatalf("ParseDescriptor: %v", err)
	}
	if !d.Frozen() || d.Name() != "dummy" || d.Version() != "1.0" {
		t.Errorf("descriptor = %s %s frozen=%v", d.Name(), d.Version(), d.Frozen())
	}
	short, long, _ := d.Description()
	if short != "Dummy resource agent" || long != "Manages nothing at all.\n" {
		t.Errorf("description = %q / %q", short, long)
	}
	if got := d.ParameterNames(); !reflect.DeepEqual(got, []string{"hba_type", "frobnicate", "retries"}) {
		t.Errorf("parameters = %v", got)
	}
	if def, _ := mustParam(t, d, "frobnicate").Default(); def != "no" {
		t.Errorf("frobnicate default = %q", def)
	}
	if def, _ := mustParam(t, d, "retries").Default(); def != "3" {
		t.Errorf("retries default = %q", def)
	}

	monitor, _ := d.Action("monitor")
	vs := monitor.Variants()
	if len(vs) != 3 || vs[1].Role() != core.RoleSlave || vs[2].Role() != core.RoleMaster {
		t.Fatalf("monitor variants = %+v", vs)
	}
	if _, err := monitor.ResolveHandler()(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c.names, []string{"check"}) {
		t.Errorf("monitor should run the check handler, ran %v", c.names)
	}

	meta, _ := d.Action(ActionMetaData)
	if vs := meta.Variants(); len(vs) != 1 || vs[0].Timeout() != 10 {
		t.Errorf("meta-data variants = %+v", vs)
	}
	r := dispatch(t, d, ActionMetaData, nil)
	if r.result.Status != core.Success {
		t.Fatalf("meta-data should keep the built-in handler: %s %v", r.result.Status, r.result.Err)
	}
}

func mustParam(t *testing.T, d *Descriptor, name string) *ParameterSpec {
	t.Helper()
	p, ok := d.Parameter(name)
	if !ok {
		t.Fatalf("parameter %s not declared", name)
	}
	return p
}

func TestParseDescriptor_NilHandlers(t *testing.T) {
	d, err := ParseDescriptor([]byte(dummyYAML), nil)
	if err != nil {
		t.Fatalf("ParseDescriptor: %v", err)
	}
	r := dispatch(t, d, ActionStart, map[string]string{"hba_type": "qla"})
	if r.result.Status != core.ErrUnimplemented {
		t.Errorf("unbound action status = %s", r.result.Status)
	}
}

func TestParseDescriptor_Errors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		handlers Handlers
		code     errors.ErrorCode
	}{
		{
			name:     "missing handler",
			yaml:     "shortdesc: x\nactions:\n  - name: start\n  - name: stop\n  - name: monitor\n",
			handlers: Handlers{"start": okHandler, "stop": okHandler},
			code:     errors.CodeInvalidActionSpec,
		},
		{
			name:     "incomplete",
			yaml:     "shortdesc: x\nactions:\n  - name: start\n",
			handlers: Handlers{"start": okHandler},
			code:     errors.CodeIncompleteAgent,
		},
		{
			name:     "bad parameter",
			yaml:     "shortdesc: x\nparameters:\n  - name: p\n    shortdesc: s\n    longdesc: l\n    required: true\n    default: x\n",
			handlers: Handlers{},
			code:     errors.CodeInvalidParameterSpec,
		},
		{
			name:     "unnamed action",
			yaml:     "actions:\n  - timeout: 5\n",
			handlers: Handlers{},
			code:     errors.CodeInvalidActionSpec,
		},
		{
			name: "empty payload",
			yaml: "",
			code: errors.CodeInvalidDescriptor,
		},
		{
			name: "malformed yaml",
			yaml: "actions: [unterminated",
			code: errors.CodeInvalidDescriptor,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDescriptor([]byte(tt.yaml), tt.handlers)
			if !errors.HasCode(err, tt.code) {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
		})
	}

	_, err := ParseDescriptor([]byte("shortdesc: x\nparameters:\n  - name: p\n    shortdesc: s\n    longdesc: l\n    content: float\n"), Handlers{})
	if errors.StatusOf(err) != core.ErrGeneric || !strings.Contains(err.Error(), "parameter p") {
		t.Errorf("bad content type: %v", err)
	}
}

func TestLoadDescriptor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dummy.yaml")
	if err := os.WriteFile(path, []byte(dummyYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d, err := LoadDescriptor(path, nil)
	if err != nil {
		t.Fatalf("LoadDescriptor: %v", err)
	}
	if d.Name() != "dummy" {
		t.Errorf("name = %q", d.Name())
	}
	if _, err := LoadDescriptor("", nil); !errors.HasCode(err, errors.CodeInvalidDescriptor) {
		t.Errorf("empty path: %v", err)
	}
	_, err = LoadDescriptor(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	if !errors.HasCode(err, errors.CodeInvalidDescriptor) || !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("absent file: %v", err)
	}
}
