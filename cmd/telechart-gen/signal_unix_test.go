//go:build unix

package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func TestRewriteStopsOnSigterm(t *testing.T) {
	ctx, stop := signal.NotifyContext(context.Background(), stopSignals...)
	defer stop()
	name := filepath.Join(t.TempDir(), "charts.json")
	done := make(chan struct{})
	go func() {
		newTestGenerator().rewrite(ctx, name, time.Millisecond)
		close(done)
	}()
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected SIGTERM to stop the rewrite loop")
	}
}
