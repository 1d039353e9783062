package ra

import (
	"context"
	"reflect"
	"testing"

	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/errors"
)

func TestBase(t *testing.T) {
	b := Base()
	for _, name := range []string{ActionMetaData, ActionValidateAll} {
		a, ok := b.Action(name)
		if !ok {
			t.Fatalf("base must provide %s", name)
		}
		if vs := a.Variants(); len(vs) != 1 || vs[0].Timeout() != 5 {
			t.Errorf("%s variants = %+v", name, vs)
		}
	}
	err := b.AssertComplete()
	if !errors.HasCode(err, errors.CodeIncompleteAgent) {
		t.Fatalf("expected INCOMPLETE_AGENT_DEFINITION, got %v", err)
	}
}

func TestAssertComplete_Message(t *testing.T) {
	d := Base()
	d.name = "Frobber"
	if err := d.DeclareAction(MustAction(ActionStop, okHandler)); err != nil {
		t.Fatalf("DeclareAction: %v", err)
	}
	err := d.AssertComplete()
	want := "Frobber is incomplete; it is missing the following required actions: monitor, start"
	if got := errors.AsAgentError(err).Message; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestDefine_Incomplete(t *testing.T) {
	_, err := Define(WithAction(MustAction(ActionStart, okHandler)))
	if !errors.HasCode(err, errors.CodeIncompleteAgent) {
		t.Fatalf("expected INCOMPLETE_AGENT_DEFINITION, got %v", err)
	}
}

func TestDerive_Independent(t *testing.T) {
	c := &calls{}
	ip := MustParameter("IP", "IP address", Required())
	parent := defineTest(t, c, WithParameter("ip", ip), WithName("parent"), WithVersion("1.2"))

	child, err := DefineFrom(parent)
	if err != nil {
		t.Fatalf("DefineFrom: %v", err)
	}
	if !reflect.DeepEqual(child.ParameterNames(), parent.ParameterNames()) {
		t.Errorf("parameters differ: %v vs %v", child.ParameterNames(), parent.ParameterNames())
	}
	if !reflect.DeepEqual(child.ActionNames(), parent.ActionNames()) {
		t.Errorf("actions differ: %v vs %v", child.ActionNames(), parent.ActionNames())
	}
	if child.Name() != "parent" || child.Version() != "1.2" {
		t.Errorf("name/version not inherited: %s %s", child.Name(), child.Version())
	}
	if _, _, ok := child.Description(); ok {
		t.Error("description must not be inherited")
	}

	override := MustParameter("Address", "Address to bind", Content(ContentString), Default("0.0.0.0"))
	sibling, err := DefineFrom(parent, WithParameter("ip", override), WithDoc("Sibling"))
	if err != nil {
		t.Fatalf("DefineFrom: %v", err)
	}
	if got, _ := parent.Parameter("ip"); got != ip {
		t.Error("overriding in a subtype changed the parent")
	}
	if got, _ := sibling.Parameter("ip"); got != override {
		t.Error("override not applied")
	}
	if got, _ := child.Parameter("ip"); got != ip {
		t.Error("overriding in a sibling changed another subtype")
	}
}

func TestDeclare_OverrideKeepsPosition(t *testing.T) {
	c := &calls{}
	d := defineTest(t, c,
		WithParameter("a", MustParameter("A", "a")),
		WithParameter("b", MustParameter("B", "b")),
		WithParameter("c", MustParameter("C", "c")),
	)
	child, err := DefineFrom(d, WithParameter("b", MustParameter("B2", "b2")), WithDoc("child"))
	if err != nil {
		t.Fatalf("DefineFrom: %v", err)
	}
	if got := child.ParameterNames(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("order = %v", got)
	}
	if p, _ := child.Parameter("b"); p.ShortDesc() != "B2" {
		t.Errorf("b not overridden")
	}
}

func TestDeclareAction_Replaces(t *testing.T) {
	c := &calls{}
	d := defineTest(t, c)
	replacement := MustAction(ActionStart, c.handler("new-start", core.Success, nil), NewVariant(Timeout(90)))
	child, err := DefineFrom(d, WithAction(replacement))
	if err != nil {
		t.Fatalf("DefineFrom: %v", err)
	}
	a, _ := child.Action(ActionStart)
	if vs := a.Variants(); len(vs) != 1 || vs[0].Timeout() != 90 {
		t.Errorf("redeclaring must replace, not chain: %+v", vs)
	}
}

func TestFrozen(t *testing.T) {
	d := defineTest(t, &calls{})
	if !d.Frozen() {
		t.Fatal("Define must freeze")
	}
	err := d.DeclareParameter("late", MustParameter("s", "l"))
	if err == nil {
		t.Fatal("expected error declaring on a frozen descriptor")
	}
	if err := d.DeclareAction(MustAction("reload", okHandler)); err == nil {
		t.Fatal("expected error declaring on a frozen descriptor")
	}
}

func TestWithDoc(t *testing.T) {
	d, err := Define(append(mandatory(&calls{}), WithDoc(`
		Dummy resource agent

		Manages a dummy resource.
		    Indented line.
	`))...)
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	short, long, ok := d.Description()
	if !ok {
		t.Fatal("description not set")
	}
	if short != "Dummy resource agent" {
		t.Errorf("short = %q", short)
	}
	if long != "\nManages a dummy resource.\nIndented line.\n" {
		t.Errorf("long = %q", long)
	}

	d, _ = Define(append(mandatory(&calls{}), WithDoc("   "))...)
	if _, _, ok := d.Description(); ok {
		t.Error("blank doc must leave the description unset")
	}
}

func TestWithHandler(t *testing.T) {
	c := &calls{}
	d := defineTest(t, c)
	child, err := DefineFrom(d, WithHandler(ActionStart, c.handler("override", core.Success, nil)))
	if err != nil {
		t.Fatalf("DefineFrom: %v", err)
	}
	a, _ := child.Action(ActionStart)
	if vs := a.Variants(); len(vs) != 1 || vs[0].Timeout() != 40 {
		t.Errorf("variants must be kept: %+v", vs)
	}
	if _, err := a.ResolveHandler()(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c.names, []string{"override"}) {
		t.Errorf("calls = %v", c.names)
	}

	if _, err := DefineFrom(d, WithHandler("promote", okHandler)); err == nil {
		t.Error("expected error overriding an undeclared action")
	}
}

func TestExtend(t *testing.T) {
	family, err := Base().Extend(
		WithName("family"),
		WithParameter("pidfile", MustParameter("PID file", "Location of the PID file", Default("/run/x.pid"))),
		WithAction(MustAction(ActionStop, okHandler)),
	)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if !family.Frozen() {
		t.Error("Extend must freeze")
	}
	if err := family.AssertComplete(); err == nil {
		t.Fatal("family is abstract and should be incomplete")
	}

	concrete, err := DefineFrom(family,
		WithDoc("Concrete"),
		WithAction(MustAction(ActionStart, okHandler)),
		WithAction(MustAction(ActionMonitor, okHandler)),
	)
	if err != nil {
		t.Fatalf("DefineFrom: %v", err)
	}
	if got := concrete.ParameterNames(); !reflect.DeepEqual(got, []string{"pidfile"}) {
		t.Errorf("parameters = %v", got)
	}
	want := []string{"meta-data", "monitor", "start", "stop", "validate-all"}
	if got := concrete.ActionNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("actions = %v, want %v", got, want)
	}
}

func TestContribute_UnnamedAction(t *testing.T) {
	d := Base()
	spec := &ActionSpec{handler: okHandler, variants: []Variant{NewVariant()}}
	if err := d.Contribute("reload", spec); err != nil {
		t.Fatalf("Contribute: %v", err)
	}
	if a, ok := d.Action("reload"); !ok || a.Name() != "reload" {
		t.Fatalf("unnamed action not keyed by declaration name")
	}
	if spec.Name() != "" {
		t.Error("Contribute must not mutate the action")
	}
}
