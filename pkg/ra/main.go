package ra

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jllopis/kairos-ocf/pkg/config"
	"github.com/jllopis/kairos-ocf/pkg/core"
	"github.com/jllopis/kairos-ocf/pkg/environment"
	"github.com/jllopis/kairos-ocf/pkg/state"
	"github.com/jllopis/kairos-ocf/pkg/telemetry"
)

// Main runs the agent for the current process and exits with its status.
func Main(d *Descriptor) {
	os.Exit(Run(context.Background(), d, os.Args, os.Stdout, os.Stderr))
}

// Run wires configuration, logging, telemetry and state around one
// dispatch and returns the exit code.
func Run(ctx context.Context, d *Descriptor, args []string, stdout, stderr io.Writer) int {
	env, err := environment.FromOS(args)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return int(core.ErrGeneric)
	}

	cfg, cfgErr := config.LoadFromEnv()
	if cfgErr != nil {
		cfg, err = config.Load("")
		if err != nil {
			cfg = &config.Config{}
		}
	}

	logCfg := env.LogConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.Interactive = telemetry.StdinIsTerminal()
	logCfg.Stderr = stderr
	logger, closeLog, err := telemetry.ConfigureLogging(logCfg)
	if err != nil {
		fallback := telemetry.LogConfig{Tag: logCfg.Tag, Level: logCfg.Level, Debug: logCfg.Debug, Interactive: true, Stderr: stderr}
		logger, closeLog, _ = telemetry.ConfigureLogging(fallback)
		logger.Warn("log destinations unavailable, using stderr", "error", err)
	}
	defer func() { _ = closeLog() }()
	if cfgErr != nil {
		logger.Warn("agent configuration not loaded, using defaults", "error", cfgErr)
	}

	name := d.Name()
	if name == "" {
		name = env.ScriptName()
	}
	shutdown, err := telemetry.InitWithConfig(name, d.Version(), telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
		Writer:       stderr,
	})
	if err != nil {
		logger.Warn("telemetry disabled", "error", err)
		shutdown = func(context.Context) error { return nil }
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Debug("telemetry shutdown failed", "error", err)
		}
	}()

	metrics, err := telemetry.NewDispatchMetrics(ctx)
	if err != nil {
		logger.Debug("dispatch metrics disabled", "error", err)
	}

	statePath := resolveStatePath(cfg.State.Path, env)
	backend, err := state.Open(statePath)
	if err != nil {
		logger.Warn("state store unavailable, using memory", "path", statePath, "error", err)
		backend = state.NewMemory()
	}
	defer func() { _ = backend.Close() }()

	opts := []DispatcherOption{
		WithDispatchLogger(logger),
		WithStreams(stdout, stderr),
		WithMetrics(metrics),
		WithStore(backend),
	}
	if cfg.State.Journal {
		opts = append(opts, WithJournal(backend))
	}

	dispatcher, err := NewDispatcher(d, env, opts...)
	if err != nil {
		logger.Error("agent definition is invalid", "error", err)
		return int(core.ErrGeneric)
	}
	return int(dispatcher.Dispatch(ctx).Status)
}

// resolveStatePath puts the state database in HA_RSCTMP unless the
// configuration names one, so state outlives the agent process.
func resolveStatePath(configured string, env *environment.OS) string {
	if configured != "" {
		return configured
	}
	dir := env.RscTmp()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return state.MemoryPath
	}
	return filepath.Join(dir, state.DefaultFile)
}
