package model

import (
	"testing"
	"time"
)

func validEvent() Event {
	return Event{
		ID:               "1",
		Title:            "Réunion",
		Date:             time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		Time:             "09:00",
		Category:         CategoryWork,
		Notification:     true,
		NotificationTime: 15,
	}
}

func TestParseCategory(t *testing.T) {
	for _, raw := range []string{"work", "personal", "health", "other"} {
		if _, err := ParseCategory(raw); err != nil {
			t.Fatalf("ParseCategory(%q) failed: %v", raw, err)
		}
	}
	// Leading and trailing whitespace is tolerated.
	if _, err := ParseCategory(" work "); err != nil {
		t.Fatalf("ParseCategory with padding failed: %v", err)
	}
	for _, raw := range []string{"", "sport", "WORK"} {
		if _, err := ParseCategory(raw); err == nil {
			t.Fatalf("ParseCategory(%q) should fail", raw)
		}
	}
}

func TestEventValidate(t *testing.T) {
	if err := validEvent().Validate(); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	// Any non-negative lead time is tolerated, not just the UI presets.
	e := validEvent()
	e.NotificationTime = 7
	if err := e.Validate(); err != nil {
		t.Fatalf("non-preset lead time rejected: %v", err)
	}
	e.NotificationTime = 0
	if err := e.Validate(); err != nil {
		t.Fatalf("zero lead time rejected: %v", err)
	}

	e = validEvent()
	e.Time = "24:00"
	if err := e.Validate(); err == nil {
		t.Fatal("24:00 accepted")
	}
	e.Time = "12:5"
	if err := e.Validate(); err == nil {
		t.Fatal("unpadded minutes accepted")
	}
}
