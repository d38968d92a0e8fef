// Package planner ties the event store, settings, and reminder scheduler
// together: submissions flow through validation into the store and arm a
// reminder; queries bucket the store by calendar day.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ljoubert/planifier/internal/clock"
	"github.com/ljoubert/planifier/internal/dates"
	"github.com/ljoubert/planifier/internal/model"
	"github.com/ljoubert/planifier/internal/notify"
	"github.com/ljoubert/planifier/internal/reminder"
	"github.com/ljoubert/planifier/internal/store"
)

// DaySchedule is one day of a week view: the day's events sorted by
// wall-clock time.
type DaySchedule struct {
	Date   time.Time
	Events []model.Event
}

// Stats are the counters shown in the statistics view.
type Stats struct {
	Total    int
	Today    int
	ThisWeek int
}

type Planner struct {
	events   *store.EventStore
	settings *store.SettingsStore
	sched    *reminder.Scheduler
	notifier notify.Notifier
	clock    clock.Clock
	logger   *slog.Logger
}

func New(
	events *store.EventStore,
	settings *store.SettingsStore,
	sched *reminder.Scheduler,
	notifier notify.Notifier,
	clk clock.Clock,
	logger *slog.Logger,
) *Planner {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		events:   events,
		settings: settings,
		sched:    sched,
		notifier: notifier,
		clock:    clk,
		logger:   logger,
	}
}

// SubmitEvent validates and stores an event, then arms its reminder. A new
// event (empty id) gets a fresh uuid; an existing id is replaced in full.
func (p *Planner) SubmitEvent(ctx context.Context, e model.Event) (model.Event, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.Date = dates.Normalize(e.Date)

	if err := e.Validate(); err != nil {
		return model.Event{}, fmt.Errorf("invalid event: %w", err)
	}

	stored, err := p.events.Upsert(ctx, e)
	if err != nil {
		return model.Event{}, err
	}

	p.sched.Schedule(stored)
	p.logger.Debug("event stored", "event", stored.ID, "date", stored.Date.Format(dates.DayFormat))
	return stored, nil
}

// DeleteEvent removes the event and cancels its pending reminder. Deleting
// an unknown id is a no-op.
func (p *Planner) DeleteEvent(ctx context.Context, id string) error {
	if err := p.events.Delete(ctx, id); err != nil {
		return err
	}
	p.sched.Cancel(id)
	return nil
}

// Day returns the events on the given calendar day, sorted by wall-clock
// time. Lexicographic order on the zero-padded "HH:MM" strings is
// chronological.
func (p *Planner) Day(date time.Time) []model.Event {
	events := p.events.ByDay(date)
	sortByTime(events)
	return events
}

// Week partitions the ISO week containing date (Monday through Sunday)
// into seven day schedules, each sorted by time. Empty days are included.
func (p *Planner) Week(date time.Time) []DaySchedule {
	start, end := dates.WeekBounds(date)
	inRange := p.events.ByRange(start, end)

	byDay := make(map[string][]model.Event)
	for _, e := range inRange {
		key := e.Date.Format(dates.DayFormat)
		byDay[key] = append(byDay[key], e)
	}

	days := dates.DaysInRange(start, end)
	schedules := make([]DaySchedule, 0, len(days))
	for _, d := range days {
		events := byDay[d.Format(dates.DayFormat)]
		sortByTime(events)
		schedules = append(schedules, DaySchedule{Date: d, Events: events})
	}
	return schedules
}

// Stats counts all events, today's, and the current ISO week's.
func (p *Planner) Stats() Stats {
	now := p.clock.Now()
	start, end := dates.WeekBounds(now)
	return Stats{
		Total:    p.events.Len(),
		Today:    len(p.events.ByDay(now)),
		ThisWeek: len(p.events.ByRange(start, end)),
	}
}

// EnableNotifications asks the host for permission and, only when granted,
// flips the persisted reminder switch on. Denial and dismissal are valid
// outcomes, not errors.
func (p *Planner) EnableNotifications(ctx context.Context) (notify.Permission, error) {
	perm, err := p.notifier.RequestPermission(ctx)
	if err != nil {
		return perm, fmt.Errorf("requesting notification permission: %w", err)
	}
	if perm != notify.PermissionGranted {
		return perm, nil
	}

	enabled := true
	if _, err := p.settings.Update(ctx, model.SettingsPatch{Enabled: &enabled}); err != nil {
		return perm, err
	}
	return perm, nil
}

// ArmWindow arms reminders for every stored event whose fire instant falls
// within (now, now+horizon]. Pending timers are re-armed in place, so the
// sweep is safe to run repeatedly. It returns the number of armed timers.
func (p *Planner) ArmWindow(horizon time.Duration) int {
	now := p.clock.Now()
	limit := now.Add(horizon)

	armed := 0
	for _, e := range p.events.All() {
		if !e.Notification {
			continue
		}
		fireAt, err := reminder.FireTime(e)
		if err != nil {
			p.logger.Warn("skipping malformed event in sweep", "event", e.ID, "err", err)
			continue
		}
		if !fireAt.After(now) || fireAt.After(limit) {
			continue
		}
		if p.sched.Schedule(e) {
			armed++
		}
	}
	if armed > 0 {
		p.logger.Info("reminder sweep armed timers", "count", armed, "horizon", horizon)
	}
	return armed
}

func sortByTime(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})
}
