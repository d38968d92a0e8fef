// Package premium gates cosmetic features behind a fixed activation code.
// The gate is cosmetic; it is not a security mechanism.
package premium

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ljoubert/planifier/internal/store"
)

// activationCode unlocks premium. Matched case-insensitively.
const activationCode = "bonjour"

var (
	ErrNotLoggedIn = errors.New("premium requires a signed-in account")
	ErrInvalidCode = errors.New("invalid activation code")
)

// Gate manages the premium flag of the signed-in user.
type Gate struct {
	accounts *store.AccountStore
}

func NewGate(accounts *store.AccountStore) *Gate {
	return &Gate{accounts: accounts}
}

// Activate unlocks premium for the signed-in user when the code matches.
func (g *Gate) Activate(ctx context.Context, code string) error {
	session, ok, err := g.accounts.Current(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotLoggedIn
	}

	if !strings.EqualFold(strings.TrimSpace(code), activationCode) {
		return ErrInvalidCode
	}

	if err := g.accounts.SetPremium(ctx, session.Username); err != nil {
		return fmt.Errorf("activating premium: %w", err)
	}
	return nil
}

// Cancel clears the signed-in user's premium flags.
func (g *Gate) Cancel(ctx context.Context) error {
	session, ok, err := g.accounts.Current(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotLoggedIn
	}

	if err := g.accounts.ClearPremium(ctx, session.Username); err != nil {
		return fmt.Errorf("cancelling premium: %w", err)
	}
	return nil
}

// Status reports whether the signed-in user has premium. A signed-out
// session is simply not premium.
func (g *Gate) Status(ctx context.Context) (bool, error) {
	session, ok, err := g.accounts.Current(ctx)
	if err != nil || !ok {
		return false, err
	}
	return g.accounts.HasPremium(ctx, session.Username)
}
