package vars

import (
	"context"
	"errors"
	"os"
	"testing"
)

// setupTestStore creates an in-memory SQLite store for testing
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := New(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	return store
}

// TestStoreLifecycle tests database initialization and closure
func TestStoreLifecycle(t *testing.T) {
	store, err := New(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.HealthCheck(ctx); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

// TestStoreMigrations tests that the three variable tables exist
func TestStoreMigrations(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	tables := []string{"text_variables", "number_variables", "boolean_variables"}
	for _, table := range tables {
		query := "SELECT COUNT(*) FROM " + table
		var count int
		err := store.db.QueryRowContext(ctx, query).Scan(&count)
		if err != nil {
			t.Errorf("table %s does not exist or is not accessible: %v", table, err)
		}
	}
}

// TestSetGetRoundTrip tests that a write followed by a typed read
// returns the written value for every kind
func TestSetGetRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	cases := []struct {
		name  string
		value Value
	}{
		{"player_name", Text("Ada")},
		{"gold", Number(100)},
		{"seen_intro", Boolean(true)},
	}

	for _, tc := range cases {
		if err := store.SetValue(ctx, tc.name, tc.value); err != nil {
			t.Fatalf("failed to set %s: %v", tc.name, err)
		}

		got, found, err := store.TryGetValue(ctx, tc.name, tc.value.Kind())
		if err != nil {
			t.Fatalf("failed to get %s: %v", tc.name, err)
		}
		if !found {
			t.Fatalf("expected %s to be found", tc.name)
		}
		if got != tc.value {
			t.Errorf("expected %v, got %v", tc.value, got)
		}
	}
}

// TestTryGetValueAnyKind tests the fixed text -> number -> boolean
// probe order for any-kind reads
func TestTryGetValueAnyKind(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	if err := store.SetValue(ctx, "gold", Number(42)); err != nil {
		t.Fatalf("failed to set gold: %v", err)
	}

	got, found, err := store.TryGetValue(ctx, "gold", KindAny)
	if err != nil {
		t.Fatalf("failed to get gold: %v", err)
	}
	if !found {
		t.Fatal("expected gold to be found via any-kind probe")
	}
	if got.Kind() != KindNumber {
		t.Errorf("expected kind %s, got %s", KindNumber, got.Kind())
	}
	if n, _ := got.AsNumber(); n != 42 {
		t.Errorf("expected 42, got %g", n)
	}

	_, found, err = store.TryGetValue(ctx, "missing", KindAny)
	if err != nil {
		t.Fatalf("unexpected error for missing variable: %v", err)
	}
	if found {
		t.Error("expected missing variable to not be found")
	}
}

// TestTypedReadMismatchIsNotFound tests that reading an existing
// variable under the wrong kind reports not-found, not an error
func TestTypedReadMismatchIsNotFound(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	if err := store.SetValue(ctx, "gold", Number(42)); err != nil {
		t.Fatalf("failed to set gold: %v", err)
	}

	_, found, err := store.TryGetValue(ctx, "gold", KindText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected number variable to not be found under text kind")
	}
}

// TestTypeConflict tests that writing a different kind for an existing
// name fails and leaves the original value unchanged
func TestTypeConflict(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	if err := store.SetValue(ctx, "gold", Number(100)); err != nil {
		t.Fatalf("failed to set gold: %v", err)
	}

	err := store.SetValue(ctx, "gold", Text("rich"))
	if err == nil {
		t.Fatal("expected type-conflict error")
	}
	if !errors.Is(err, ErrTypeConflict) {
		t.Errorf("expected ErrTypeConflict, got %v", err)
	}

	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %T", err)
	}
	if se.Name != "gold" || se.Requested != KindText || se.Existing != KindNumber {
		t.Errorf("unexpected conflict context: %+v", se)
	}

	// Original value must be untouched
	got, found, err := store.TryGetValue(ctx, "gold", KindNumber)
	if err != nil || !found {
		t.Fatalf("expected gold to survive the conflict: found=%v err=%v", found, err)
	}
	if n, _ := got.AsNumber(); n != 100 {
		t.Errorf("expected original value 100, got %g", n)
	}

	// And the conflicting row must not exist
	_, found, err = store.TryGetValue(ctx, "gold", KindText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("conflicting text row should not have been written")
	}
}

// TestIdempotentUpsert tests that re-writing the identical value leaves
// the stored row unchanged and that same-kind writes replace in place
func TestIdempotentUpsert(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	if err := store.SetValue(ctx, "chapter", Number(1)); err != nil {
		t.Fatalf("failed to set chapter: %v", err)
	}
	if err := store.SetValue(ctx, "chapter", Number(1)); err != nil {
		t.Fatalf("identical re-write failed: %v", err)
	}

	got, found, err := store.TryGetValue(ctx, "chapter", KindNumber)
	if err != nil || !found {
		t.Fatalf("expected chapter to be found: found=%v err=%v", found, err)
	}
	if n, _ := got.AsNumber(); n != 1 {
		t.Errorf("expected 1, got %g", n)
	}

	// Same-kind update replaces the value
	if err := store.SetValue(ctx, "chapter", Number(2)); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, _, _ = store.TryGetValue(ctx, "chapter", KindNumber)
	if n, _ := got.AsNumber(); n != 2 {
		t.Errorf("expected 2 after update, got %g", n)
	}

	// Only one row exists
	var count int
	if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM number_variables WHERE name = ?", "chapter").Scan(&count); err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}
}

// TestContainsAndClear tests the seen_intro scenario: set, contains,
// clear, not contains
func TestContainsAndClear(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	if err := store.SetValue(ctx, "seen_intro", Boolean(true)); err != nil {
		t.Fatalf("failed to set seen_intro: %v", err)
	}

	found, err := store.Contains(ctx, "seen_intro")
	if err != nil {
		t.Fatalf("contains failed: %v", err)
	}
	if !found {
		t.Error("expected seen_intro to be contained")
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	found, err = store.Contains(ctx, "seen_intro")
	if err != nil {
		t.Fatalf("contains failed after clear: %v", err)
	}
	if found {
		t.Error("expected seen_intro to be gone after clear")
	}
}

// TestGetAllVariables tests that the snapshot union equals exactly the
// set of keys written and not cleared, with the most recent values
func TestGetAllVariables(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	writes := []struct {
		name  string
		value Value
	}{
		{"gold", Number(100)},
		{"gold", Number(250)}, // overwrite
		{"player_name", Text("Ada")},
		{"seen_intro", Boolean(true)},
		{"met_blacksmith", Boolean(false)},
	}
	for _, w := range writes {
		if err := store.SetValue(ctx, w.name, w.value); err != nil {
			t.Fatalf("failed to set %s: %v", w.name, err)
		}
	}

	snap, err := store.GetAllVariables(ctx)
	if err != nil {
		t.Fatalf("failed to get all variables: %v", err)
	}

	if snap.Len() != 4 {
		t.Errorf("expected 4 variables, got %d", snap.Len())
	}
	if snap.Numbers["gold"] != 250 {
		t.Errorf("expected most recent gold value 250, got %g", snap.Numbers["gold"])
	}
	if snap.Strings["player_name"] != "Ada" {
		t.Errorf("expected player_name Ada, got %q", snap.Strings["player_name"])
	}
	if !snap.Booleans["seen_intro"] {
		t.Error("expected seen_intro true")
	}
	if v, ok := snap.Booleans["met_blacksmith"]; !ok || v {
		t.Errorf("expected met_blacksmith false, got %v (present=%v)", v, ok)
	}
}

// TestSetAllVariables tests bulk apply and the clearFirst flag
func TestSetAllVariables(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	if err := store.SetValue(ctx, "stale", Text("old save")); err != nil {
		t.Fatalf("failed to seed stale variable: %v", err)
	}

	numbers := map[string]float64{"gold": 100, "chapter": 3}
	strs := map[string]string{"player_name": "Ada"}
	booleans := map[string]bool{"seen_intro": true}

	// clearFirst wipes the stale variable before applying
	if err := store.SetAllVariables(ctx, numbers, strs, booleans, true); err != nil {
		t.Fatalf("bulk apply failed: %v", err)
	}

	found, err := store.Contains(ctx, "stale")
	if err != nil {
		t.Fatalf("contains failed: %v", err)
	}
	if found {
		t.Error("expected stale variable to be cleared by clearFirst")
	}

	snap, err := store.GetAllVariables(ctx)
	if err != nil {
		t.Fatalf("failed to get all variables: %v", err)
	}
	if snap.Len() != 4 {
		t.Errorf("expected 4 variables after bulk apply, got %d", snap.Len())
	}

	// Without clearFirst, existing variables stay
	if err := store.SetAllVariables(ctx, map[string]float64{"hp": 20}, nil, nil, false); err != nil {
		t.Fatalf("second bulk apply failed: %v", err)
	}

	snap, err = store.GetAllVariables(ctx)
	if err != nil {
		t.Fatalf("failed to get all variables: %v", err)
	}
	if snap.Len() != 5 {
		t.Errorf("expected 5 variables, got %d", snap.Len())
	}
}

// TestSetAllVariablesConflict tests that a bulk apply into conflicting
// names fails and leaves prior writes applied
func TestSetAllVariablesConflict(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	if err := store.SetValue(ctx, "gold", Text("not a number")); err != nil {
		t.Fatalf("failed to seed conflict: %v", err)
	}

	err := store.SetAllVariables(ctx, map[string]float64{"gold": 100}, nil, nil, false)
	if !errors.Is(err, ErrTypeConflict) {
		t.Errorf("expected ErrTypeConflict, got %v", err)
	}

	// Original text value untouched
	got, found, err := store.TryGetValue(ctx, "gold", KindText)
	if err != nil || !found {
		t.Fatalf("expected original gold to survive: found=%v err=%v", found, err)
	}
	if s, _ := got.AsText(); s != "not a number" {
		t.Errorf("expected original text value, got %q", s)
	}
}

// TestUnsupportedKind tests the unsupported-kind error for both reads
// and writes
func TestUnsupportedKind(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	_, _, err := store.TryGetValue(ctx, "gold", Kind("blob"))
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("expected ErrUnsupportedKind on read, got %v", err)
	}

	if err := store.SetValue(ctx, "gold", Value{}); !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("expected ErrUnsupportedKind on zero-value write, got %v", err)
	}
}

// TestMain sets up and tears down test environment
func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
