package vars_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/talevault/talevault/pkg/vars"
)

// ExampleNew demonstrates creating and initializing a variable store.
func ExampleNew() {
	store, err := vars.New(vars.Config{
		Path: ":memory:", // Use in-memory database for example
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		log.Fatal(err)
	}

	if err := store.Migrate(ctx); err != nil {
		log.Fatal(err)
	}

	defer store.Close()

	fmt.Println("Store initialized successfully")
	// Output: Store initialized successfully
}

// ExampleSQLiteStore_SetValue demonstrates writing and reading typed variables.
func ExampleSQLiteStore_SetValue() {
	store, _ := vars.New(vars.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	if err := store.SetValue(ctx, "gold", vars.Number(100)); err != nil {
		log.Fatal(err)
	}

	value, found, err := store.TryGetValue(ctx, "gold", vars.KindNumber)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("found=%t gold=%s\n", found, value)
	// Output: found=true gold=100
}

// ExampleSQLiteStore_SetValue_conflict demonstrates the one-kind-per-name rule.
func ExampleSQLiteStore_SetValue_conflict() {
	store, _ := vars.New(vars.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	_ = store.SetValue(ctx, "gold", vars.Number(100))

	err := store.SetValue(ctx, "gold", vars.Text("rich"))
	fmt.Println(errors.Is(err, vars.ErrTypeConflict))

	// The original value is untouched
	value, _, _ := store.TryGetValue(ctx, "gold", vars.KindAny)
	fmt.Printf("gold is still %s (%s)\n", value, value.Kind())
	// Output:
	// true
	// gold is still 100 (number)
}

// ExampleSQLiteStore_SetAllVariables demonstrates bulk-loading a save file.
func ExampleSQLiteStore_SetAllVariables() {
	store, _ := vars.New(vars.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	err := store.SetAllVariables(ctx,
		map[string]float64{"gold": 100, "chapter": 3},
		map[string]string{"player_name": "Ada"},
		map[string]bool{"seen_intro": true},
		true, // clear previous save first
	)
	if err != nil {
		log.Fatal(err)
	}

	snap, err := store.GetAllVariables(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("variables: %d\n", snap.Len())
	// Output: variables: 4
}
