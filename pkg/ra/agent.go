package ra

import (
	"io"
	"log/slog"
	"os"

	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/errors"
	"github.com/jllopis/kairos-ocf/pkg/state"
)

// Agent is one invocation of an agent type: the descriptor bound to the
// environment of the running process. Handlers receive it to read
// parameters and reach the logger, state store and output streams.
type Agent struct {
	desc   *Descriptor
	env    core.Environment
	logger *slog.Logger
	store  state.Store
	stdout io.Writer
	stderr io.Writer
	values map[string]resolved
}

type resolved struct {
	value any
	err   error
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithLogger sets the agent logger.
func WithLogger(logger *slog.Logger) AgentOption {
	return func(a *Agent) { a.logger = logger }
}

// WithState sets the state store.
func WithState(store state.Store) AgentOption {
	return func(a *Agent) { a.store = store }
}

// WithOutput sets the standard output and error streams.
func WithOutput(stdout, stderr io.Writer) AgentOption {
	return func(a *Agent) {
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// NewAgent binds d to env. The descriptor must be complete.
func NewAgent(d *Descriptor, env core.Environment, opts ...AgentOption) (*Agent, error) {
	if d == nil {
		return nil, errors.New(errors.CodeInternal, "descriptor is nil", nil)
	}
	if env == nil {
		return nil, errors.New(errors.CodeInternal, "environment is nil", nil)
	}
	if err := d.AssertComplete(); err != nil {
		return nil, err
	}
	a := &Agent{
		desc:   d,
		env:    env,
		logger: slog.Default(),
		stdout: os.Stdout,
		stderr: os.Stderr,
		values: make(map[string]resolved),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.store == nil {
		a.store = state.NewMemory()
	}
	return a, nil
}

// Parameter returns the resolved value of a declared parameter: string,
// int or bool by content type, or nil for an absent optional parameter
// without default. Results are cached for the invocation.
func (a *Agent) Parameter(name string) (any, error) {
	if r, ok := a.values[name]; ok {
		return r.value, r.err
	}
	p, ok := a.desc.Parameter(name)
	if !ok {
		return nil, errors.Newf(errors.CodeInternal, "parameter %s is not declared", name)
	}
	v, err := p.Resolve(a.env)
	a.values[name] = resolved{value: v, err: err}
	return v, err
}

// String returns a string parameter, "" when unset.
func (a *Agent) String(name string) (string, error) {
	v, err := a.Parameter(name)
	if err != nil || v == nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", typeError(name, "string", v)
	}
	return s, nil
}

// Int returns an integer parameter, 0 when unset.
func (a *Agent) Int(name string) (int, error) {
	v, err := a.Parameter(name)
	if err != nil || v == nil {
		return 0, err
	}
	n, ok := v.(int)
	if !ok {
		return 0, typeError(name, "integer", v)
	}
	return n, nil
}

// Bool returns a boolean parameter, false when unset.
func (a *Agent) Bool(name string) (bool, error) {
	v, err := a.Parameter(name)
	if err != nil || v == nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, typeError(name, "boolean", v)
	}
	return b, nil
}

func typeError(name, want string, got any) error {
	return errors.Newf(errors.CodeInternal, "parameter %s is not a %s (got %T)", name, want, got)
}

// ValidateParameters resolves every declared parameter in declaration
// order and returns the first failure.
func (a *Agent) ValidateParameters() error {
	for _, name := range a.desc.ParameterNames() {
		if _, err := a.Parameter(name); err != nil {
			return err
		}
	}
	return nil
}

// Instance returns the resource instance name when the environment knows
// it, and "default" otherwise.
func (a *Agent) Instance() string {
	if ie, ok := a.env.(interface{ ResourceInstance() (string, error) }); ok {
		if instance, err := ie.ResourceInstance(); err == nil && instance != "" {
			return instance
		}
	}
	return "default"
}

// StateKey is the state store key of this resource instance. It is scoped
// by agent type so several agents can share one database.
func (a *Agent) StateKey() string {
	name := a.desc.Name()
	if name == "" {
		name = a.env.ScriptName()
	}
	return name + "/" + a.Instance()
}

// Descriptor returns the agent type.
func (a *Agent) Descriptor() *Descriptor { return a.desc }

// Env returns the invocation environment.
func (a *Agent) Env() core.Environment { return a.env }

// Logger returns the agent logger.
func (a *Agent) Logger() *slog.Logger { return a.logger }

// State returns the store shared across invocations.
func (a *Agent) State() state.Store { return a.store }

// Stdout returns the stream metadata and user output go to.
func (a *Agent) Stdout() io.Writer { return a.stdout }

// Stderr returns the stream usage text goes to.
func (a *Agent) Stderr() io.Writer { return a.stderr }
