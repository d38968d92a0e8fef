package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ljoubert/planifier/internal/store"
	"github.com/ljoubert/planifier/tests/testutil"
)

func TestKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewTestKV(t)

	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = %v, %v, want absent", ok, err)
	}

	if err := kv.Put(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := kv.Put(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get(k) = %v, %v", ok, err)
	}
	if string(got) != "v2" {
		t.Fatalf("value = %q, want v2", got)
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("deleting an absent key should be a no-op, got %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "k"); ok {
		t.Fatal("key survived delete")
	}
}

func TestKVCreatesParentDir(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "planner.db")

	kv, err := store.NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("opening kv at %s: %v", path, err)
	}
	defer kv.Close()

	if err := kv.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
}
