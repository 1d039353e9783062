package environment

import "github.com/jllopis/kairos-ocf/pkg/core"

// Static is a fixed core.Environment, used by tests and tools that invoke
// an agent in-process.
type Static struct {
	Script      string
	Instance    string
	ActionName  string
	Params      map[string]string
	Probe       bool
	Clone       bool
	MasterSlave bool
}

var _ core.Environment = Static{}

// NewStatic returns a Static environment for the given action and
// parameters. The probe and clone flags are derived from the CRM_meta_*
// entries the same way OS derives them.
func NewStatic(script, action string, params map[string]string) Static {
	if params == nil {
		params = map[string]string{}
	}
	return Static{
		Script:      script,
		ActionName:  action,
		Params:      params,
		Probe:       action == monitorAction && metaInt(params, "CRM_meta_interval") == 0,
		Clone:       metaInt(params, "CRM_meta_clone_max") > 0,
		MasterSlave: metaInt(params, "CRM_meta_master_max") > 0,
	}
}

func (s Static) Action() string     { return s.ActionName }
func (s Static) ScriptName() string { return s.Script }
func (s Static) IsProbe() bool      { return s.Probe }
func (s Static) IsClone() bool      { return s.Clone }
func (s Static) IsMasterSlave() bool { return s.MasterSlave }

// ResKeys returns a copy of Params.
func (s Static) ResKeys() map[string]string {
	out := make(map[string]string, len(s.Params))
	for k, v := range s.Params {
		out[k] = v
	}
	return out
}

// ResourceInstance returns Instance, or "default" when it is empty.
func (s Static) ResourceInstance() (string, error) {
	if s.Instance == "" {
		return "default", nil
	}
	return s.Instance, nil
}
