// Package notify abstracts the host's notification capability: asking for
// permission and emitting fire-and-forget alerts.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Permission is the host's answer to a notification-permission request.
type Permission string

const (
	// PermissionGranted allows alerts to be shown.
	PermissionGranted Permission = "granted"

	// PermissionDenied is a valid terminal state, not an error; it simply
	// keeps reminders from arming.
	PermissionDenied Permission = "denied"

	// PermissionDefault means the user dismissed the request without
	// answering.
	PermissionDefault Permission = "default"
)

// Notifier is the host notification capability. Show is fire-and-forget
// with no delivery confirmation; tag is a dedup hint the host may use.
type Notifier interface {
	// RequestPermission asks the host for permission. It may suspend the
	// caller until the user responds out-of-band.
	RequestPermission(ctx context.Context) (Permission, error)

	// Permission returns the current permission state. It is re-checked
	// at fire time, since the host may revoke between arming and firing.
	Permission() Permission

	Show(title, body, tag string) error
}

// Console emits alerts on the terminal. Permission is always granted;
// there is nothing to ask the user for.
type Console struct {
	logger *slog.Logger
}

func NewConsole(logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{logger: logger}
}

func (c *Console) RequestPermission(context.Context) (Permission, error) {
	return PermissionGranted, nil
}

func (c *Console) Permission() Permission { return PermissionGranted }

func (c *Console) Show(title, body, tag string) error {
	if _, err := fmt.Fprintf(os.Stdout, "\a%s\n%s\n", title, body); err != nil {
		return fmt.Errorf("writing alert: %w", err)
	}
	c.logger.Debug("alert shown", "title", title, "tag", tag)
	return nil
}

// Noop answers every permission request with denied and drops alerts.
// Useful for tests and headless runs.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) RequestPermission(context.Context) (Permission, error) {
	return PermissionDenied, nil
}

func (Noop) Permission() Permission { return PermissionDenied }

func (Noop) Show(string, string, string) error { return nil }
