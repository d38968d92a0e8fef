package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ljoubert/planifier/internal/clock"
	"github.com/ljoubert/planifier/internal/model"
	"github.com/ljoubert/planifier/internal/notify"
)

type fakeNotifier struct {
	mu         sync.Mutex
	permission notify.Permission
	shown      []shownAlert
}

type shownAlert struct {
	title, body, tag string
}

func (f *fakeNotifier) RequestPermission(context.Context) (notify.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.permission, nil
}

func (f *fakeNotifier) Permission() notify.Permission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.permission
}

func (f *fakeNotifier) setPermission(p notify.Permission) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permission = p
}

func (f *fakeNotifier) Show(title, body, tag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, shownAlert{title: title, body: body, tag: tag})
	return nil
}

func (f *fakeNotifier) alerts() []shownAlert {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]shownAlert, len(f.shown))
	copy(out, f.shown)
	return out
}

func enabledAlways() bool { return true }

func testEvent() model.Event {
	return model.Event{
		ID:               "evt-1",
		Title:            "Réunion d'équipe",
		Description:      "Salle B",
		Date:             time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		Time:             "10:00",
		Category:         model.CategoryWork,
		Notification:     true,
		NotificationTime: 15,
	}
}

func TestFireTime(t *testing.T) {
	got, err := FireTime(testEvent())
	if err != nil {
		t.Fatalf("FireTime failed: %v", err)
	}
	want := time.Date(2024, time.June, 10, 9, 45, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("FireTime = %v, want %v", got, want)
	}
}

func TestScheduleArmsAtLeadOffset(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	s := New(clock.Fixed{T: now}, &fakeNotifier{permission: notify.PermissionGranted}, enabledAlways, nil)
	defer s.Stop()

	if !s.Schedule(testEvent()) {
		t.Fatal("expected reminder to be armed")
	}
	fireAt, ok := s.PendingAt("evt-1")
	if !ok {
		t.Fatal("expected pending reminder for evt-1")
	}
	want := time.Date(2024, time.June, 10, 9, 45, 0, 0, time.UTC)
	if !fireAt.Equal(want) {
		t.Fatalf("armed at %v, want %v", fireAt, want)
	}
}

func TestSchedulePastWindowSuppressed(t *testing.T) {
	// 09:50 is past the 09:45 fire instant: silently dropped, no
	// fire-immediately semantics.
	now := time.Date(2024, time.June, 10, 9, 50, 0, 0, time.UTC)
	s := New(clock.Fixed{T: now}, &fakeNotifier{permission: notify.PermissionGranted}, enabledAlways, nil)
	defer s.Stop()

	if s.Schedule(testEvent()) {
		t.Fatal("expected past-window reminder to be suppressed")
	}
	if s.PendingCount() != 0 {
		t.Fatalf("expected no pending reminders, got %d", s.PendingCount())
	}
}

func TestScheduleExactlyAtFireInstantSuppressed(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 45, 0, 0, time.UTC)
	s := New(clock.Fixed{T: now}, &fakeNotifier{permission: notify.PermissionGranted}, enabledAlways, nil)
	defer s.Stop()

	if s.Schedule(testEvent()) {
		t.Fatal("fire instant equal to now must be suppressed")
	}
}

func TestScheduleDisabledGlobally(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	s := New(clock.Fixed{T: now}, &fakeNotifier{permission: notify.PermissionGranted}, func() bool { return false }, nil)
	defer s.Stop()

	if s.Schedule(testEvent()) {
		t.Fatal("expected no timer while reminders are disabled")
	}
}

func TestScheduleEventOptedOut(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	s := New(clock.Fixed{T: now}, &fakeNotifier{permission: notify.PermissionGranted}, enabledAlways, nil)
	defer s.Stop()

	e := testEvent()
	e.Notification = false
	if s.Schedule(e) {
		t.Fatal("expected no timer for an event with notifications off")
	}
}

func TestRescheduleReplacesPreviousTimer(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	s := New(clock.Fixed{T: now}, &fakeNotifier{permission: notify.PermissionGranted}, enabledAlways, nil)
	defer s.Stop()

	s.Schedule(testEvent())

	edited := testEvent()
	edited.Time = "14:00"
	if !s.Schedule(edited) {
		t.Fatal("expected edited event to re-arm")
	}

	if s.PendingCount() != 1 {
		t.Fatalf("expected a single pending reminder after edit, got %d", s.PendingCount())
	}
	fireAt, _ := s.PendingAt("evt-1")
	want := time.Date(2024, time.June, 10, 13, 45, 0, 0, time.UTC)
	if !fireAt.Equal(want) {
		t.Fatalf("armed at %v, want %v", fireAt, want)
	}
}

func TestRescheduleToIneligibleCancelsOldTimer(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	s := New(clock.Fixed{T: now}, &fakeNotifier{permission: notify.PermissionGranted}, enabledAlways, nil)
	defer s.Stop()

	s.Schedule(testEvent())

	edited := testEvent()
	edited.Notification = false
	s.Schedule(edited)

	if s.PendingCount() != 0 {
		t.Fatalf("expected old timer cancelled, got %d pending", s.PendingCount())
	}
}

func TestCancel(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	s := New(clock.Fixed{T: now}, &fakeNotifier{permission: notify.PermissionGranted}, enabledAlways, nil)
	defer s.Stop()

	s.Schedule(testEvent())
	s.Cancel("evt-1")
	if _, ok := s.PendingAt("evt-1"); ok {
		t.Fatal("expected reminder cancelled")
	}

	// Cancelling an absent id is a no-op.
	s.Cancel("evt-1")
}

// armSoon schedules e so its timer expires roughly delay of real time from
// now, by pinning the fake clock just short of the fire instant.
func armSoon(t *testing.T, n notify.Notifier, e model.Event, delay time.Duration) *Scheduler {
	t.Helper()
	fireAt, err := FireTime(e)
	if err != nil {
		t.Fatalf("FireTime failed: %v", err)
	}
	s := New(clock.Fixed{T: fireAt.Add(-delay)}, n, enabledAlways, nil)
	if !s.Schedule(e) {
		t.Fatal("expected reminder to be armed")
	}
	return s
}

func waitForAlerts(t *testing.T, f *fakeNotifier, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(f.alerts()) >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d alert(s), got %d", want, len(f.alerts()))
}

func TestFireEmitsAlert(t *testing.T) {
	f := &fakeNotifier{permission: notify.PermissionGranted}
	s := armSoon(t, f, testEvent(), 20*time.Millisecond)
	defer s.Stop()

	waitForAlerts(t, f, 1)

	got := f.alerts()[0]
	if got.title != "Rappel: Réunion d'équipe" {
		t.Fatalf("alert title = %q", got.title)
	}
	if got.body != "Dans 15 minutes - Salle B" {
		t.Fatalf("alert body = %q", got.body)
	}
	if got.tag != "evt-1" {
		t.Fatalf("alert tag = %q, want event id", got.tag)
	}
	if s.PendingCount() != 0 {
		t.Fatalf("fired reminder still pending, count = %d", s.PendingCount())
	}
}

func TestFireSkippedWhenPermissionRevoked(t *testing.T) {
	f := &fakeNotifier{permission: notify.PermissionGranted}
	s := armSoon(t, f, testEvent(), 30*time.Millisecond)
	defer s.Stop()

	// Revoke between arming and firing: the alert is skipped silently.
	f.setPermission(notify.PermissionDenied)

	time.Sleep(100 * time.Millisecond)
	if n := len(f.alerts()); n != 0 {
		t.Fatalf("expected no alerts after revocation, got %d", n)
	}
	if s.PendingCount() != 0 {
		t.Fatal("expired reminder should be dropped from the pending map")
	}
}

func TestStopCancelsEverything(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	s := New(clock.Fixed{T: now}, &fakeNotifier{permission: notify.PermissionGranted}, enabledAlways, nil)

	for _, id := range []string{"a", "b", "c"} {
		e := testEvent()
		e.ID = id
		s.Schedule(e)
	}
	s.Stop()
	if s.PendingCount() != 0 {
		t.Fatalf("expected empty pending map after Stop, got %d", s.PendingCount())
	}
}
