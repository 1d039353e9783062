package ra

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/environment"
)

// calls records which handlers ran.
type calls struct {
	names []string
}

func (c *calls) handler(name string, status core.Status, err error) Handler {
	return func(context.Context, *Agent) (core.Status, error) {
		c.names = append(c.names, name)
		return status, err
	}
}

func (c *calls) ran() bool { return len(c.names) > 0 }

func okHandler(context.Context, *Agent) (core.Status, error) { return core.Success, nil }

// mandatory declares start, stop and monitor backed by c.
func mandatory(c *calls) []Option {
	return []Option{
		WithAction(MustAction(ActionStart, c.handler(ActionStart, core.Success, nil), NewVariant(Timeout(40)))),
		WithAction(MustAction(ActionStop, c.handler(ActionStop, core.Success, nil))),
		WithAction(MustAction(ActionMonitor, c.handler(ActionMonitor, core.NotRunning, nil))),
	}
}

func defineTest(t *testing.T, c *calls, opts ...Option) *Descriptor {
	t.Helper()
	all := append([]Option{WithDoc("Test agent\n\nDoes nothing useful.")}, mandatory(c)...)
	d, err := Define(append(all, opts...)...)
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	return d
}

type run struct {
	result Result
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func dispatch(t *testing.T, d *Descriptor, action string, params map[string]string, opts ...DispatcherOption) *run {
	t.Helper()
	r := &run{}
	env := environment.NewStatic("testagent", action, params)
	opts = append([]DispatcherOption{
		WithStreams(&r.stdout, &r.stderr),
		WithDispatchLogger(discardLogger()),
	}, opts...)
	disp, err := NewDispatcher(d, env, opts...)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	r.result = disp.Dispatch(context.Background())
	return r
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func staticEnv(action string, params map[string]string) environment.Static {
	return environment.NewStatic("testagent", action, params)
}
