package model

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies an event. The set is closed: unknown values are
// rejected at construction and never reach the store.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryHealth   Category = "health"
	CategoryOther    Category = "other"
)

// LeadTimePresets are the reminder lead times (in minutes) offered by the
// UI. The store accepts any non-negative value; these are display presets.
var LeadTimePresets = []int{5, 15, 30, 60}

// ParseCategory validates a raw category string.
func ParseCategory(raw string) (Category, error) {
	switch c := Category(strings.TrimSpace(raw)); c {
	case CategoryWork, CategoryPersonal, CategoryHealth, CategoryOther:
		return c, nil
	default:
		return "", fmt.Errorf("unknown category %q", raw)
	}
}

// Event is a single scheduled occurrence in the planner.
type Event struct {
	// ID is an opaque unique identifier, stable for the event's lifetime.
	ID string `json:"id"`

	// Title is the non-empty display string.
	Title string `json:"title"`

	// Description is free text, may be empty.
	Description string `json:"description"`

	// Date is the calendar day the event falls on. Only the year, month,
	// and day components are meaningful; time-of-day is carried in Time.
	Date time.Time `json:"date"`

	// Time is the wall-clock time in zero-padded 24-hour "HH:MM" form.
	// The fixed width makes lexicographic ordering chronological.
	Time string `json:"time"`

	Category Category `json:"category"`

	// Notification controls whether this event produces a reminder.
	Notification bool `json:"notification"`

	// NotificationTime is the reminder lead time in minutes before the
	// event's date+time. Meaningful only when Notification is true.
	NotificationTime int `json:"notificationTime"`
}

// Validate enforces the construction invariants. It is the boundary check:
// the store does not re-validate.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("event title must not be empty")
	}
	if err := validateClockTime(e.Time); err != nil {
		return err
	}
	if _, err := ParseCategory(string(e.Category)); err != nil {
		return err
	}
	if e.NotificationTime < 0 {
		return fmt.Errorf("notification lead time must not be negative, got %d", e.NotificationTime)
	}
	return nil
}

// validateClockTime checks the strict zero-padded "HH:MM" format.
func validateClockTime(raw string) error {
	if len(raw) != 5 || raw[2] != ':' {
		return fmt.Errorf("invalid time %q, expected HH:MM", raw)
	}
	if _, err := time.Parse("15:04", raw); err != nil {
		return fmt.Errorf("invalid time %q, expected HH:MM", raw)
	}
	return nil
}
