package core

// Environment is the read-only view of the process invocation an agent
// receives. It is built once per process and never mutated afterwards.
type Environment interface {
	// Action returns the requested action, or "" when none was given.
	Action() string
	// ScriptName returns the basename of the running executable.
	ScriptName() string
	// ResKeys returns the raw resource parameters keyed by name.
	ResKeys() map[string]string
	// IsProbe reports a monitor invocation with a zero interval.
	IsProbe() bool
	// IsClone reports whether the resource is part of a clone.
	IsClone() bool
	// IsMasterSlave reports whether the resource is multistate.
	IsMasterSlave() bool
}
