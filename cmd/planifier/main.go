// Command planifier is the local planner: events live in a SQLite-backed
// key-value store, and the watch mode arms reminder notifications ahead of
// each event.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/ljoubert/planifier/internal/clock"
	"github.com/ljoubert/planifier/internal/dates"
	"github.com/ljoubert/planifier/internal/model"
	"github.com/ljoubert/planifier/internal/notify"
	"github.com/ljoubert/planifier/internal/planner"
	"github.com/ljoubert/planifier/internal/premium"
	"github.com/ljoubert/planifier/internal/reminder"
	"github.com/ljoubert/planifier/internal/store"
)

const usage = `usage: planifier <command> [flags]

commands:
  add       add or update an event
  list      list events on a day
  week      show the week around a day
  delete    delete an event by id
  stats     show event counters
  enable    request notification permission and enable reminders
  register  create a local account and sign in
  login     sign in with an existing account
  premium   activate premium with a code
  watch     run the reminder daemon
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// A .env next to the binary may point at an alternate config file.
	_ = godotenv.Load()

	configPath := os.Getenv("PLANIFIER_CONFIG")
	if configPath == "" {
		configPath = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "planifier: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)

	if err := run(os.Args[1], os.Args[2:], cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "planifier: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// app bundles everything a subcommand needs.
type app struct {
	cfg      *model.AppConfig
	logger   *slog.Logger
	kv       *store.SQLiteKV
	events   *store.EventStore
	settings *store.SettingsStore
	accounts *store.AccountStore
	gate     *premium.Gate
	sched    *reminder.Scheduler
	planner  *planner.Planner
}

func newApp(ctx context.Context, cfg *model.AppConfig, logger *slog.Logger, notifier notify.Notifier) (*app, error) {
	kv, err := store.NewSQLiteKV(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	events, err := store.NewEventStore(ctx, kv)
	if err != nil {
		kv.Close()
		return nil, err
	}
	settings, err := store.NewSettingsStore(ctx, kv)
	if err != nil {
		kv.Close()
		return nil, err
	}
	accounts := store.NewAccountStore(kv)

	sched := reminder.New(clock.System{}, notifier, func() bool { return settings.Get().Enabled }, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		kv:       kv,
		events:   events,
		settings: settings,
		accounts: accounts,
		gate:     premium.NewGate(accounts),
		sched:    sched,
		planner:  planner.New(events, settings, sched, notifier, clock.System{}, logger),
	}, nil
}

func (a *app) close() {
	a.sched.Stop()
	if err := a.kv.Close(); err != nil {
		a.logger.Warn("closing store failed", "err", err)
	}
}

func run(command string, args []string, cfg *model.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Only the commands that interact with the host notification surface
	// get a real notifier; the rest stay silent.
	var notifier notify.Notifier = notify.NewNoop()
	if command == "watch" || command == "enable" {
		notifier = notify.NewConsole(logger)
	}

	a, err := newApp(ctx, cfg, logger, notifier)
	if err != nil {
		return err
	}
	defer a.close()

	switch command {
	case "add":
		return a.cmdAdd(ctx, args)
	case "list":
		return a.cmdList(args)
	case "week":
		return a.cmdWeek(args)
	case "delete":
		return a.cmdDelete(ctx, args)
	case "stats":
		return a.cmdStats()
	case "enable":
		return a.cmdEnable(ctx)
	case "register":
		return a.cmdRegister(ctx, args)
	case "login":
		return a.cmdLogin(ctx, args)
	case "premium":
		return a.cmdPremium(ctx, args)
	case "watch":
		return a.cmdWatch(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// resolveLead maps the -lead flag onto a lead time. Negative means unset
// and falls back to the configured default; zero is a valid explicit lead.
func resolveLead(flagValue, defaultLead int) int {
	if flagValue < 0 {
		return defaultLead
	}
	return flagValue
}

func parseDay(raw string) (time.Time, error) {
	if raw == "" || raw == "today" {
		return dates.Normalize(time.Now()), nil
	}
	day, err := time.ParseInLocation(dates.DayFormat, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", raw, err)
	}
	return day, nil
}

func (a *app) cmdAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	id := fs.String("id", "", "event id (empty creates a new event)")
	title := fs.String("title", "", "event title")
	desc := fs.String("desc", "", "event description")
	date := fs.String("date", "today", "event date (YYYY-MM-DD)")
	at := fs.String("time", "", "event time (HH:MM)")
	category := fs.String("category", string(model.CategoryPersonal), "work|personal|health|other")
	remind := fs.Bool("remind", true, "arm a reminder for this event")
	lead := fs.Int("lead", -1,
		fmt.Sprintf("reminder lead time in minutes, e.g. one of %v (-1 uses the default)", model.LeadTimePresets))
	if err := fs.Parse(args); err != nil {
		return err
	}

	day, err := parseDay(*date)
	if err != nil {
		return err
	}
	cat, err := model.ParseCategory(*category)
	if err != nil {
		return err
	}
	leadTime := resolveLead(*lead, a.settings.Get().DefaultTime)

	stored, err := a.planner.SubmitEvent(ctx, model.Event{
		ID:               *id,
		Title:            *title,
		Description:      *desc,
		Date:             day,
		Time:             *at,
		Category:         cat,
		Notification:     *remind,
		NotificationTime: leadTime,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s %s  %s\n", stored.ID, stored.Date.Format(dates.DayFormat), stored.Time, stored.Title)
	return nil
}

func (a *app) cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	date := fs.String("date", "today", "day to list (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	day, err := parseDay(*date)
	if err != nil {
		return err
	}

	events := a.planner.Day(day)
	if len(events) == 0 {
		fmt.Printf("no events on %s\n", day.Format(dates.DayFormat))
		return nil
	}
	for _, e := range events {
		printEvent(e)
	}
	return nil
}

func (a *app) cmdWeek(args []string) error {
	fs := flag.NewFlagSet("week", flag.ContinueOnError)
	date := fs.String("date", "today", "any day of the week to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	day, err := parseDay(*date)
	if err != nil {
		return err
	}

	for _, schedule := range a.planner.Week(day) {
		fmt.Printf("%s %s\n", schedule.Date.Weekday(), schedule.Date.Format(dates.DayFormat))
		if len(schedule.Events) == 0 {
			fmt.Println("  —")
			continue
		}
		for _, e := range schedule.Events {
			fmt.Print("  ")
			printEvent(e)
		}
	}
	return nil
}

func printEvent(e model.Event) {
	line := fmt.Sprintf("%s  %-8s  %s", e.Time, e.Category, e.Title)
	if e.Notification {
		line += fmt.Sprintf("  (rappel %d min avant)", e.NotificationTime)
	}
	fmt.Printf("%s  [%s]\n", line, e.ID)
}

func (a *app) cmdDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.String("id", "", "event id to delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("delete requires -id")
	}
	return a.planner.DeleteEvent(ctx, *id)
}

func (a *app) cmdStats() error {
	stats := a.planner.Stats()
	fmt.Printf("total events: %d\ntoday:        %d\nthis week:    %d\n",
		stats.Total, stats.Today, stats.ThisWeek)
	return nil
}

func (a *app) cmdEnable(ctx context.Context) error {
	perm, err := a.planner.EnableNotifications(ctx)
	if err != nil {
		return err
	}
	if perm != notify.PermissionGranted {
		fmt.Printf("notification permission %s; reminders stay disabled\n", perm)
		return nil
	}
	fmt.Println("reminders enabled")
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	username := fs.String("user", "", "username")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	session, err := a.accounts.Register(ctx, model.User{
		Username: strings.TrimSpace(*username),
		Email:    strings.TrimSpace(*email),
		Password: *password,
	})
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s\n", session.Username)
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("user", "", "username")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	session, err := a.accounts.Login(ctx, strings.TrimSpace(*username), *password)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s\n", session.Username)
	return nil
}

func (a *app) cmdPremium(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("premium", flag.ContinueOnError)
	code := fs.String("code", "", "activation code")
	cancel := fs.Bool("cancel", false, "cancel the premium subscription")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *cancel {
		if err := a.gate.Cancel(ctx); err != nil {
			return err
		}
		fmt.Println("premium cancelled")
		return nil
	}

	if err := a.gate.Activate(ctx, *code); err != nil {
		return err
	}
	fmt.Println("premium activated")
	return nil
}

// cmdWatch runs the reminder daemon: an initial arm sweep, then a periodic
// one so events entering the horizon window get their timers armed.
func (a *app) cmdWatch(ctx context.Context) error {
	horizon := time.Duration(a.cfg.Reminders.HorizonHours) * time.Hour
	a.planner.ArmWindow(horizon)

	scheduler := cron.New(cron.WithLocation(time.Local))
	spec := fmt.Sprintf("@every %dm", a.cfg.Reminders.SweepIntervalMin)
	if _, err := scheduler.AddFunc(spec, func() { a.planner.ArmWindow(horizon) }); err != nil {
		return fmt.Errorf("scheduling arm sweep: %w", err)
	}
	scheduler.Start()
	defer func() {
		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
	}()

	a.logger.Info("watching for reminders",
		"events", a.events.Len(),
		"pending", a.sched.PendingCount(),
		"horizon", horizon,
	)

	<-ctx.Done()
	a.logger.Info("shutting down")
	return nil
}
