package testutil

import (
	"testing"

	"github.com/ljoubert/planifier/internal/store"
)

// NewTestKV creates an in-memory SQLite key-value store with all
// migrations applied. It automatically closes the store when the test
// completes.
func NewTestKV(t *testing.T) *store.SQLiteKV {
	t.Helper()

	kv, err := store.NewSQLiteKV(":memory:")
	if err != nil {
		t.Fatalf("creating test kv store: %v", err)
	}

	t.Cleanup(func() {
		if err := kv.Close(); err != nil {
			t.Errorf("closing test kv store: %v", err)
		}
	})

	return kv
}
