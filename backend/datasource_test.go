package backend

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func nextSession(t *testing.T, sessions <-chan Session, accept func(Session) bool) Session {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case s, ok := <-sessions:
			if !ok {
				t.Fatalf("session stream closed early")
			}
			if accept(s) {
				return s
			}
		case <-timeout:
			t.Fatalf("timed out waiting for session")
		}
	}
}

func TestDatasourceLoadFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ds, err := NewDatasource(ctx)
	if err != nil {
		t.Fatalf("failed creating datasource: %v", err)
	}
	defer ds.Close()

	path := filepath.Join(t.TempDir(), "chart.json")
	if err := os.WriteFile(path, []byte(contestChart), 0o644); err != nil {
		t.Fatalf("failed writing chart file: %v", err)
	}
	sessions := ds.Sessions(ctx)
	loaded, err := ds.LoadFile(path)
	if err != nil {
		t.Fatalf("failed watching chart file: %v", err)
	}
	if loaded.Err != nil || len(loaded.Charts) != 2 {
		t.Fatalf("expected 2 charts without error, got %d (%v)", len(loaded.Charts), loaded.Err)
	}
	first := nextSession(t, sessions, func(Session) bool { return true })
	if first.ID != loaded.ID {
		t.Errorf("expected published session %q, got %q", loaded.ID, first.ID)
	}

	// A late subscriber receives the current session right away.
	late := nextSession(t, ds.Sessions(ctx), func(Session) bool { return true })
	if late.ID != loaded.ID {
		t.Errorf("expected late subscriber to get %q, got %q", loaded.ID, late.ID)
	}

	single := `[{"columns": [["x", 1, 2, 3]], "types": {"x": "x"}}]`
	if err := os.WriteFile(path, []byte(single), 0o644); err != nil {
		t.Fatalf("failed rewriting chart file: %v", err)
	}
	reloaded := nextSession(t, sessions, func(s Session) bool {
		return s.Err == nil && len(s.Charts) == 1
	})
	if reloaded.Charts[0].Len() != 3 || reloaded.Path != loaded.Path {
		t.Errorf("expected reloaded chart of 3 samples from %q, got %d from %q", loaded.Path, reloaded.Charts[0].Len(), reloaded.Path)
	}
}

func TestDatasourceLoadStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ds, err := NewDatasource(ctx)
	if err != nil {
		t.Fatalf("failed creating datasource: %v", err)
	}
	session := ds.LoadStream("inline", io.NopCloser(strings.NewReader(`[{"columns": [["y", 1]], "types": {"y": "line"}}]`)))
	if session.Err == nil {
		t.Errorf("expected missing x column to be reported")
	}
	current, ok := ds.Current()
	if !ok || current.ID != session.ID {
		t.Errorf("expected current session %q, got %q (%v)", session.ID, current.ID, ok)
	}
	sub := ds.Sessions(ctx)
	if err := ds.Close(); err != nil {
		t.Errorf("failed closing datasource: %v", err)
	}
	// The buffered session is still delivered before the stream closes.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-sub:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatalf("expected session stream to close")
		}
	}
}
