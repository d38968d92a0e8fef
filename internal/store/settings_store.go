package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ljoubert/planifier/internal/model"
)

// SettingsStore holds the notification settings singleton, persisted under
// its own key with the same write-through pattern as events.
type SettingsStore struct {
	kv KV

	mu      sync.Mutex
	current model.Settings
}

// NewSettingsStore loads persisted settings, falling back to defaults when
// nothing has been saved yet.
func NewSettingsStore(ctx context.Context, kv KV) (*SettingsStore, error) {
	s := &SettingsStore{kv: kv, current: model.DefaultSettings()}

	blob, ok, err := kv.Get(ctx, keySettings)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if ok && len(blob) > 0 {
		if err := json.Unmarshal(blob, &s.current); err != nil {
			return nil, fmt.Errorf("decoding settings: %w", err)
		}
	}
	return s, nil
}

// Get returns the current settings.
func (s *SettingsStore) Get() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update merges the patch into the current settings and persists the
// result. It returns the merged settings.
func (s *SettingsStore) Update(ctx context.Context, patch model.SettingsPatch) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = patch.Apply(s.current)

	blob, err := json.Marshal(s.current)
	if err != nil {
		return s.current, fmt.Errorf("encoding settings: %w", err)
	}
	if err := s.kv.Put(ctx, keySettings, blob); err != nil {
		return s.current, fmt.Errorf("saving settings: %w", err)
	}
	return s.current, nil
}
