package commands

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/talevault/talevault/pkg/vars"
)

// useTestDB points the global --db flag at a temp database
func useTestDB(t *testing.T) {
	t.Helper()

	dbPath = filepath.Join(t.TempDir(), "vault.db")
	t.Cleanup(func() { dbPath = "" })
}

// TestGetCommandMissingVariable tests that a missing name surfaces as
// an error through the command's error path
func TestGetCommandMissingVariable(t *testing.T) {
	useTestDB(t)

	cmd := newGetCommand()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs([]string{"missing"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for missing variable")
	}
}

// TestGetCommandFound tests reading back a seeded variable
func TestGetCommandFound(t *testing.T) {
	useTestDB(t)

	ctx := context.Background()
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.SetValue(ctx, "gold", vars.Number(100)); err != nil {
		t.Fatalf("failed to seed variable: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	cmd := newGetCommand()
	cmd.SilenceUsage = true
	cmd.SetArgs([]string{"gold"})

	if err := cmd.Execute(); err != nil {
		t.Errorf("expected seeded variable to be found: %v", err)
	}
}
