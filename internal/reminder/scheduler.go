// Package reminder arms one-shot timers that surface an alert a configured
// number of minutes before an event.
package reminder

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ljoubert/planifier/internal/clock"
	"github.com/ljoubert/planifier/internal/dates"
	"github.com/ljoubert/planifier/internal/model"
	"github.com/ljoubert/planifier/internal/notify"
)

// FireTime computes the instant the reminder for e should fire: the
// event's date+time minus its lead minutes.
func FireTime(e model.Event) (time.Time, error) {
	at, err := dates.At(e.Date, e.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("computing fire time for %s: %w", e.ID, err)
	}
	return at.Add(-time.Duration(e.NotificationTime) * time.Minute), nil
}

type pending struct {
	timer  *time.Timer
	fireAt time.Time
}

// Scheduler arms at most one pending reminder per event id. Re-scheduling
// an id cancels its previous timer before arming the new one, so an edited
// or deleted event can never emit a stale alert.
type Scheduler struct {
	clock    clock.Clock
	notifier notify.Notifier
	enabled  func() bool
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]pending
}

// New builds a scheduler. enabled is consulted on every Schedule call; it
// typically reads the persisted settings singleton.
func New(clk clock.Clock, notifier notify.Notifier, enabled func() bool, logger *slog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		clock:    clk,
		notifier: notifier,
		enabled:  enabled,
		logger:   logger,
		pending:  make(map[string]pending),
	}
}

// Schedule cancels any pending reminder for e.ID, then arms a new one when
// the global switch is on, the event wants a reminder, and the fire instant
// is still ahead of the clock. A fire instant at or before now is silently
// suppressed; there is no fire-late path. It reports whether a timer was
// armed.
func (s *Scheduler) Schedule(e model.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(e.ID)

	if !s.enabled() || !e.Notification {
		return false
	}

	fireAt, err := FireTime(e)
	if err != nil {
		s.logger.Warn("reminder not armed", "event", e.ID, "err", err)
		return false
	}

	now := s.clock.Now()
	if !fireAt.After(now) {
		s.logger.Debug("reminder window already passed", "event", e.ID, "fire_at", fireAt)
		return false
	}

	s.pending[e.ID] = pending{
		timer:  time.AfterFunc(fireAt.Sub(now), func() { s.fire(e, fireAt) }),
		fireAt: fireAt,
	}
	s.logger.Debug("reminder armed", "event", e.ID, "fire_at", fireAt)
	return true
}

// Cancel stops the pending reminder for id, if any.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(id)
}

func (s *Scheduler) cancelLocked(id string) {
	if p, ok := s.pending[id]; ok {
		p.timer.Stop()
		delete(s.pending, id)
	}
}

// PendingAt returns the fire instant of the pending reminder for id.
func (s *Scheduler) PendingAt(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[id]
	return p.fireAt, ok
}

// PendingCount returns the number of armed reminders.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending reminder.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
	}
}

// fire runs on timer expiry. The alert is skipped silently when permission
// was revoked between arming and firing.
func (s *Scheduler) fire(e model.Event, fireAt time.Time) {
	s.mu.Lock()
	p, ok := s.pending[e.ID]
	if !ok || !p.fireAt.Equal(fireAt) {
		// A newer timer replaced this one between expiry and lock.
		s.mu.Unlock()
		return
	}
	delete(s.pending, e.ID)
	s.mu.Unlock()

	if s.notifier.Permission() != notify.PermissionGranted {
		s.logger.Debug("alert skipped, permission not granted", "event", e.ID)
		return
	}

	title := fmt.Sprintf("Rappel: %s", e.Title)
	body := fmt.Sprintf("Dans %d minutes - %s", e.NotificationTime, e.Description)
	if err := s.notifier.Show(title, body, e.ID); err != nil {
		s.logger.Warn("showing alert failed", "event", e.ID, "err", err)
	}
}
