package store_test

import (
	"context"
	"testing"

	"github.com/ljoubert/planifier/internal/model"
	"github.com/ljoubert/planifier/internal/store"
	"github.com/ljoubert/planifier/tests/testutil"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestSettingsDefaults(t *testing.T) {
	s, err := store.NewSettingsStore(context.Background(), testutil.NewTestKV(t))
	if err != nil {
		t.Fatalf("creating settings store: %v", err)
	}

	got := s.Get()
	if got.Enabled || got.DefaultTime != 15 {
		t.Fatalf("fresh settings = %+v, want disabled with 15 minute default", got)
	}
}

func TestSettingsPatchMergesAndPersists(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewTestKV(t)

	s, err := store.NewSettingsStore(ctx, kv)
	if err != nil {
		t.Fatalf("creating settings store: %v", err)
	}

	if _, err := s.Update(ctx, model.SettingsPatch{Enabled: boolPtr(true)}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, err := s.Update(ctx, model.SettingsPatch{DefaultTime: intPtr(30)})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	// Each patch only touches its own field.
	if !got.Enabled || got.DefaultTime != 30 {
		t.Fatalf("merged settings = %+v, want enabled with 30 minute default", got)
	}

	reloaded, err := store.NewSettingsStore(ctx, kv)
	if err != nil {
		t.Fatalf("reloading settings store: %v", err)
	}
	if r := reloaded.Get(); r != got {
		t.Fatalf("reloaded settings = %+v, want %+v", r, got)
	}
}

func TestSettingsEmptyPatchIsNoop(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewSettingsStore(ctx, testutil.NewTestKV(t))
	if err != nil {
		t.Fatalf("creating settings store: %v", err)
	}

	before := s.Get()
	after, err := s.Update(ctx, model.SettingsPatch{})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if after != before {
		t.Fatalf("empty patch changed settings: %+v -> %+v", before, after)
	}
}
