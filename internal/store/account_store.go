package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ljoubert/planifier/internal/model"
)

// Account errors callers branch on.
var (
	ErrUsernameTaken  = errors.New("username already taken")
	ErrBadCredentials = errors.New("unknown username or wrong password")
)

// AccountStore manages local accounts and the premium flags tied to them.
// Credentials are matched in plaintext against the stored user list; this
// is a convenience feature, not an authentication mechanism.
type AccountStore struct {
	kv KV
}

func NewAccountStore(kv KV) *AccountStore {
	return &AccountStore{kv: kv}
}

// Register adds a new user and signs them in. A duplicate username is
// rejected with ErrUsernameTaken.
func (s *AccountStore) Register(ctx context.Context, u model.User) (model.Session, error) {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return model.Session{}, err
	}

	for _, existing := range users {
		if existing.Username == u.Username {
			return model.Session{}, ErrUsernameTaken
		}
	}

	users = append(users, u)
	if err := s.saveUsers(ctx, users); err != nil {
		return model.Session{}, err
	}

	session := model.Session{Username: u.Username, Email: u.Email}
	if err := s.setCurrent(ctx, session); err != nil {
		return model.Session{}, err
	}
	return session, nil
}

// Login matches the credentials against the stored user list and signs the
// user in on success.
func (s *AccountStore) Login(ctx context.Context, username, password string) (model.Session, error) {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return model.Session{}, err
	}

	for _, u := range users {
		if u.Username == username && u.Password == password {
			session := model.Session{Username: u.Username, Email: u.Email}
			if err := s.setCurrent(ctx, session); err != nil {
				return model.Session{}, err
			}
			return session, nil
		}
	}
	return model.Session{}, ErrBadCredentials
}

// Logout clears the session and the global premium flag. The per-user
// premium flag survives so a later login restores premium.
func (s *AccountStore) Logout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, keyCurrentUser); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if err := s.kv.Delete(ctx, keyPremium); err != nil {
		return fmt.Errorf("clearing premium flag: %w", err)
	}
	return nil
}

// Current returns the signed-in session, if any.
func (s *AccountStore) Current(ctx context.Context) (model.Session, bool, error) {
	blob, ok, err := s.kv.Get(ctx, keyCurrentUser)
	if err != nil {
		return model.Session{}, false, fmt.Errorf("loading session: %w", err)
	}
	if !ok || len(blob) == 0 {
		return model.Session{}, false, nil
	}

	var session model.Session
	if err := json.Unmarshal(blob, &session); err != nil {
		return model.Session{}, false, fmt.Errorf("decoding session: %w", err)
	}
	return session, true, nil
}

// SetPremium records premium for the given user, both globally and on the
// per-user key.
func (s *AccountStore) SetPremium(ctx context.Context, username string) error {
	if err := s.kv.Put(ctx, keyPremium, []byte("true")); err != nil {
		return fmt.Errorf("setting premium flag: %w", err)
	}
	if err := s.kv.Put(ctx, premiumKey(username), []byte("true")); err != nil {
		return fmt.Errorf("setting premium flag for %s: %w", username, err)
	}
	return nil
}

// ClearPremium removes both premium flags for the given user.
func (s *AccountStore) ClearPremium(ctx context.Context, username string) error {
	if err := s.kv.Delete(ctx, premiumKey(username)); err != nil {
		return fmt.Errorf("clearing premium flag for %s: %w", username, err)
	}
	if err := s.kv.Delete(ctx, keyPremium); err != nil {
		return fmt.Errorf("clearing premium flag: %w", err)
	}
	return nil
}

// HasPremium reports whether the given user has premium unlocked.
func (s *AccountStore) HasPremium(ctx context.Context, username string) (bool, error) {
	blob, ok, err := s.kv.Get(ctx, premiumKey(username))
	if err != nil {
		return false, fmt.Errorf("reading premium flag for %s: %w", username, err)
	}
	return ok && string(blob) == "true", nil
}

func premiumKey(username string) string {
	return "premium-" + strings.TrimSpace(username)
}

func (s *AccountStore) loadUsers(ctx context.Context) ([]model.User, error) {
	blob, ok, err := s.kv.Get(ctx, keyUsers)
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	if !ok || len(blob) == 0 {
		return nil, nil
	}

	var users []model.User
	if err := json.Unmarshal(blob, &users); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}
	return users, nil
}

func (s *AccountStore) saveUsers(ctx context.Context, users []model.User) error {
	blob, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encoding users: %w", err)
	}
	if err := s.kv.Put(ctx, keyUsers, blob); err != nil {
		return fmt.Errorf("saving users: %w", err)
	}
	return nil
}

func (s *AccountStore) setCurrent(ctx context.Context, session model.Session) error {
	blob, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.kv.Put(ctx, keyCurrentUser, blob); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}
