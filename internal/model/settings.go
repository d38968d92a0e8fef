package model

// Settings is the notification settings singleton. There is exactly one
// record per store; it has no identity of its own.
type Settings struct {
	// Enabled is the global reminder switch. It is only set true after the
	// host confirms notification permission.
	Enabled bool `json:"enabled"`

	// DefaultTime is the default reminder lead time in minutes offered to
	// new events.
	DefaultTime int `json:"defaultTime"`
}

// DefaultSettings mirrors the values a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{Enabled: false, DefaultTime: 15}
}

// SettingsPatch is a partial update. Nil fields keep the current value.
type SettingsPatch struct {
	Enabled     *bool
	DefaultTime *int
}

// Apply merges the patch into s and returns the result.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Enabled != nil {
		s.Enabled = *p.Enabled
	}
	if p.DefaultTime != nil {
		s.DefaultTime = *p.DefaultTime
	}
	return s
}
