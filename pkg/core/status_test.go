package core

import (
	"context"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		status Status
		code   int
		name   string
	}{
		{Success, 0, "OCF_SUCCESS"},
		{ErrGeneric, 1, "OCF_ERR_GENERIC"},
		{ErrArgs, 2, "OCF_ERR_ARGS"},
		{ErrUnimplemented, 3, "OCF_ERR_UNIMPLEMENTED"},
		{ErrPerm, 4, "OCF_ERR_PERM"},
		{ErrInstalled, 5, "OCF_ERR_INSTALLED"},
		{ErrConfigured, 6, "OCF_ERR_CONFIGURED"},
		{NotRunning, 7, "OCF_NOT_RUNNING"},
		{RunningMaster, 8, "OCF_RUNNING_MASTER"},
		{FailedMaster, 9, "OCF_FAILED_MASTER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if int(tt.status) != tt.code {
				t.Errorf("expected %d, got %d", tt.code, int(tt.status))
			}
			if tt.status.String() != tt.name {
				t.Errorf("expected %q, got %q", tt.name, tt.status.String())
			}
			if !tt.status.Valid() {
				t.Errorf("expected %v to be valid", tt.status)
			}
		})
	}
}

func TestUnknownStatus(t *testing.T) {
	s := Status(42)
	if s.Valid() {
		t.Fatalf("expected status 42 to be invalid")
	}
	if s.String() != "OCF_STATUS(42)" {
		t.Fatalf("unexpected name: %s", s.String())
	}
}

func TestEnsureRunID(t *testing.T) {
	ctx, id := EnsureRunID(context.Background())
	if id == "" {
		t.Fatalf("expected generated run id")
	}
	again, same := EnsureRunID(ctx)
	if same != id {
		t.Fatalf("expected run id to be preserved, got %s and %s", id, same)
	}
	if got, ok := RunID(again); !ok || got != id {
		t.Fatalf("expected run id in context")
	}
}
