package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ljoubert/planifier/internal/dates"
	"github.com/ljoubert/planifier/internal/model"
)

// EventStore owns the full event set. The set lives in memory in insertion
// order and is written through to the key-value layer as one JSON array on
// every mutation. A failed write leaves the in-memory state intact so
// unsaved events are not lost; the caller decides how to surface the
// failure.
type EventStore struct {
	kv KV

	mu     sync.Mutex
	events []model.Event
	index  map[string]int // event id -> slice position
}

// NewEventStore loads the persisted event set and returns a store over it.
// A missing or empty key yields an empty store.
func NewEventStore(ctx context.Context, kv KV) (*EventStore, error) {
	s := &EventStore{kv: kv, index: make(map[string]int)}

	blob, ok, err := kv.Get(ctx, keyEvents)
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	if ok && len(blob) > 0 {
		events, err := decodeEvents(blob)
		if err != nil {
			return nil, fmt.Errorf("loading events: %w", err)
		}
		s.events = events
		for i, e := range events {
			s.index[e.ID] = i
		}
	}
	return s, nil
}

// Upsert replaces the event with the same id, or appends it when new, and
// writes the full set through. It returns the stored event. Validation is
// the caller's job; the store accepts what it is given.
func (s *EventStore) Upsert(ctx context.Context, e model.Event) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pos, ok := s.index[e.ID]; ok {
		// Whole-record replacement, not a field merge.
		s.events[pos] = e
	} else {
		s.index[e.ID] = len(s.events)
		s.events = append(s.events, e)
	}

	if err := s.save(ctx); err != nil {
		return e, fmt.Errorf("saving event %s: %w", e.ID, err)
	}
	return e, nil
}

// Delete removes the event with the given id. Deleting an absent id is an
// idempotent no-op.
func (s *EventStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return nil
	}

	s.events = append(s.events[:pos], s.events[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.events); i++ {
		s.index[s.events[i].ID] = i
	}

	if err := s.save(ctx); err != nil {
		return fmt.Errorf("saving after delete of %s: %w", id, err)
	}
	return nil
}

// Get returns the event with the given id, if present.
func (s *EventStore) Get(id string) (model.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return model.Event{}, false
	}
	return s.events[pos], true
}

// ByDay returns all events on the same calendar day as date, in insertion
// order. Callers re-sort by wall-clock time as needed.
func (s *EventStore) ByDay(date time.Time) []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Event
	for _, e := range s.events {
		if dates.SameDay(e.Date, date) {
			out = append(out, e)
		}
	}
	return out
}

// ByRange returns all events whose date falls within [start, end] by
// calendar day, inclusive on both bounds, in insertion order. Days are
// compared as calendar dates, so bounds and event dates may carry
// different zones.
func (s *EventStore) ByRange(start, end time.Time) []model.Event {
	first := start.Format(dates.DayFormat)
	last := end.Format(dates.DayFormat)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Event
	for _, e := range s.events {
		day := e.Date.Format(dates.DayFormat)
		if day < first || day > last {
			continue
		}
		out = append(out, e)
	}
	return out
}

// All returns a copy of the full event set in insertion order.
func (s *EventStore) All() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Len returns the number of stored events.
func (s *EventStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// save serializes the full set and writes it through. Callers hold s.mu.
func (s *EventStore) save(ctx context.Context) error {
	blob, err := encodeEvents(s.events)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, keyEvents, blob)
}

// eventRecord is the persisted form of an event. The date is stored as a
// bare ISO calendar date so deserialization cannot shift it across a day
// boundary, whatever zone the process runs in.
type eventRecord struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Category         string `json:"category"`
	Notification     bool   `json:"notification"`
	NotificationTime int    `json:"notificationTime"`
}

func encodeEvents(events []model.Event) ([]byte, error) {
	records := make([]eventRecord, 0, len(events))
	for _, e := range events {
		records = append(records, eventRecord{
			ID:               e.ID,
			Title:            e.Title,
			Description:      e.Description,
			Date:             e.Date.Format(dates.DayFormat),
			Time:             e.Time,
			Category:         string(e.Category),
			Notification:     e.Notification,
			NotificationTime: e.NotificationTime,
		})
	}
	blob, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding events: %w", err)
	}
	return blob, nil
}

func decodeEvents(blob []byte) ([]model.Event, error) {
	var records []eventRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, fmt.Errorf("decoding events: %w", err)
	}

	events := make([]model.Event, 0, len(records))
	for _, r := range records {
		day, err := time.ParseInLocation(dates.DayFormat, r.Date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("decoding event %s: bad date %q: %w", r.ID, r.Date, err)
		}
		events = append(events, model.Event{
			ID:               r.ID,
			Title:            r.Title,
			Description:      r.Description,
			Date:             day,
			Time:             r.Time,
			Category:         model.Category(r.Category),
			Notification:     r.Notification,
			NotificationTime: r.NotificationTime,
		})
	}
	return events, nil
}
