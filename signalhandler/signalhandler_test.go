package signalhandler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSetupHandlerDeadline(t *testing.T) {
	ctx, cancel := SetupHandler(context.Background(), 10*time.Millisecond)
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected deadline to fire")
	}
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", ctx.Err())
	}
}

func TestSetupHandlerNoTimeout(t *testing.T) {
	ctx, cancel := SetupHandler(context.Background(), 0)
	if _, ok := ctx.Deadline(); ok {
		t.Fatal("expected no deadline without timeout")
	}
	cancel()
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Fatalf("expected cancelled context after stop, got %v", ctx.Err())
	}
}

func TestResolveWorkers(t *testing.T) {
	if got := ResolveWorkers(3); got != 3 {
		t.Fatalf("ResolveWorkers(3) = %d", got)
	}
	if got := ResolveWorkers(0); got != GetOptimalProcs() || got < 1 {
		t.Fatalf("ResolveWorkers(0) = %d, want %d", got, GetOptimalProcs())
	}
}
