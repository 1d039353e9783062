package ra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jllopis/kairos-ocf/pkg/environment"
	"github.com/jllopis/kairos-ocf/pkg/state"
)

func TestResolveStatePath(t *testing.T) {
	rsctmp := filepath.Join(t.TempDir(), "rsctmp")
	t.Setenv("HA_RSCTMP", rsctmp)
	env, err := environment.FromOS([]string{"testagent", "start"})
	if err != nil {
		t.Fatalf("FromOS: %v", err)
	}

	if got := resolveStatePath("/var/lib/agent/state.db", env); got != "/var/lib/agent/state.db" {
		t.Errorf("configured path = %q", got)
	}
	if got := resolveStatePath(state.MemoryPath, env); got != state.MemoryPath {
		t.Errorf("memory path = %q", got)
	}

	want := filepath.Join(rsctmp, state.DefaultFile)
	if got := resolveStatePath("", env); got != want {
		t.Errorf("default path = %q, want %q", got, want)
	}
	if info, err := os.Stat(rsctmp); err != nil || !info.IsDir() {
		t.Errorf("HA_RSCTMP not created: %v", err)
	}
}
