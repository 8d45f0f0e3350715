package catalog

import (
	"fmt"
	"strings"
)

// SessionOptions controls login policy.
type SessionOptions struct {
	// AutoCreateUsers makes Login create unknown regular accounts instead of rejecting them.
	AutoCreateUsers bool
}

// Session tracks the account currently logged in. It lives for the process only.
type Session struct {
	m       *Manager
	opts    SessionOptions
	current *User
}

// NewSession starts with nobody logged in.
func NewSession(m *Manager, opts SessionOptions) *Session {
	return &Session{m: m, opts: opts}
}

// Login authenticates username. "admin" in any case resolves to the administrator account;
// other names must match exactly. Accounts without a password ignore password.
func (s *Session) Login(username, password string) (*User, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		return nil, fmt.Errorf("%w: please enter a username", ErrInvalidInput)
	}

	// An auto-created account that failed to save is still logged in; err reports the save.
	u, err := s.lookup(name)
	if u == nil {
		return nil, err
	}
	if perr := checkPassword(u, password); perr != nil {
		return nil, perr
	}
	s.current = u
	return u, err
}

func (s *Session) lookup(name string) (*User, error) {
	cat := s.m.Catalog()
	if strings.EqualFold(name, AdminUsername) {
		if admin, ok := cat.Administrator(); ok {
			return admin, nil
		}
		return nil, fmt.Errorf("%w: no administrator account", ErrNotFound)
	}
	if u, ok := cat.User(name); ok {
		return u, nil
	}
	if !s.opts.AutoCreateUsers {
		return nil, fmt.Errorf("%w: user %q", ErrNotFound, name)
	}
	return s.m.CreateUser(name, "")
}

// Logout clears the current user. Calling it twice is harmless.
func (s *Session) Logout() { s.current = nil }

// Current returns the logged-in user or nil.
func (s *Session) Current() *User { return s.current }

// IsAdmin reports whether the logged-in user has the administrator role.
func (s *Session) IsAdmin() bool { return s.current != nil && s.current.IsAdmin() }

// RequireUser returns the logged-in user or ErrNotLoggedIn.
func (s *Session) RequireUser() (*User, error) {
	if s.current == nil {
		return nil, ErrNotLoggedIn
	}
	return s.current, nil
}

// RequireOwner returns the logged-in user when it may hold albums. The administrator
// gets ErrForbidden.
func (s *Session) RequireOwner() (*User, error) {
	u, err := s.RequireUser()
	if err != nil {
		return nil, err
	}
	if err := ownsPhotos(u); err != nil {
		return nil, err
	}
	return u, nil
}

// RequireAdmin fails unless the administrator is logged in.
func (s *Session) RequireAdmin() error {
	if s.current == nil {
		return ErrNotLoggedIn
	}
	if !s.current.IsAdmin() {
		return fmt.Errorf("%w: %s is not an administrator", ErrForbidden, s.current.Username)
	}
	return nil
}
