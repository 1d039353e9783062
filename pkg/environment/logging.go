package environment

import (
	"fmt"

	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/telemetry"
)

// LogTag returns HA_LOGTAG, or "<script>(<instance>)" when unset.
func (e *OS) LogTag() string {
	if tag := e.vars["HA_LOGTAG"]; tag != "" {
		return tag
	}
	instance, err := e.ResourceInstance()
	if err != nil {
		instance = "undef"
	}
	return fmt.Sprintf("%s(%s)", e.script, instance)
}

// LogConfig maps the HA_* logging variables onto a telemetry.LogConfig.
// HA_LOGFACILITY=none disables syslog; HA_debug and HA_LOGD use the
// cluster boolean convention.
func (e *OS) LogConfig() telemetry.LogConfig {
	return telemetry.LogConfig{
		Tag:      e.LogTag(),
		Debug:    core.IsTrue(e.vars["HA_debug"]),
		UseLogd:  core.IsTrue(e.vars["HA_LOGD"]),
		Facility: e.vars["HA_LOGFACILITY"],
		LogFile:  e.vars["HA_LOGFILE"],
		DebugLog: e.vars["HA_DEBUGLOG"],
	}
}
