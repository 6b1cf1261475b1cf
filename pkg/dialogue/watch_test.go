package dialogue

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/talevault/talevault/pkg/vars"
)

// waitForNumber polls the store until name holds want or the deadline
// passes
func waitForNumber(t *testing.T, store Store, name string, want float64) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		value, found, err := store.TryGetValue(context.Background(), name, vars.KindNumber)
		if err != nil {
			t.Fatalf("failed to poll %s: %v", name, err)
		}
		if found {
			if n, _ := value.AsNumber(); n == want {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s == %g", name, want)
}

// TestWatchRerunsOnChange tests that a watched script runs once
// immediately and again after the file is rewritten
func TestWatchRerunsOnChange(t *testing.T) {
	rt, store := setupTestRuntime(t)

	dir := t.TempDir()
	script := filepath.Join(dir, "intro.star")
	if err := os.WriteFile(script, []byte(`set("chapter", 1)`), 0644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- rt.Watch(ctx, script)
	}()

	// Initial run
	waitForNumber(t, store, "chapter", 1)

	// Rewrite triggers a debounced re-run
	if err := os.WriteFile(script, []byte(`set("chapter", 2)`), 0644); err != nil {
		t.Fatalf("failed to rewrite script: %v", err)
	}
	waitForNumber(t, store, "chapter", 2)

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

// TestWatchMissingDir tests the error for an unwatchable path
func TestWatchMissingDir(t *testing.T) {
	rt, _ := setupTestRuntime(t)

	err := rt.Watch(context.Background(), "/nonexistent/dir/script.star")
	if err == nil {
		t.Error("expected error for missing directory")
	}
}
