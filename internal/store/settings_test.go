package store

import (
	"context"
	"testing"

	"github.com/najdeno/najdeno/internal/db"
)

func TestGetSessionSecretStable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetSessionSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetSessionSecret: %v", err)
	}
	if first == "" {
		t.Fatal("expected non-empty secret")
	}

	// Subsequent calls return the stored value, not a fresh one.
	second, err := GetSessionSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetSessionSecret: %v", err)
	}
	if second != first {
		t.Errorf("expected stable secret, got %q then %q", first, second)
	}
}
