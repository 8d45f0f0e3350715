package catalog

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Users returns every account in catalog order.
func (m *Manager) Users() []*User { return m.cat.Users }

// CreateUser adds a regular account. An empty password leaves the account password-less.
func (m *Manager) CreateUser(username, password string) (*User, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		return nil, fmt.Errorf("%w: username cannot be empty", ErrInvalidInput)
	}
	if strings.EqualFold(name, AdminUsername) {
		return nil, fmt.Errorf("%w: %q is reserved", ErrDuplicateName, name)
	}
	if _, ok := m.cat.User(name); ok {
		return nil, fmt.Errorf("%w: user %q already exists", ErrDuplicateName, name)
	}

	u := NewUser(name)
	if password != "" {
		hash, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	m.cat.Users = append(m.cat.Users, u)
	return u, m.Save()
}

// DeleteUser removes an account and everything it owns. Protected accounts cannot be deleted.
func (m *Manager) DeleteUser(username string) error {
	idx := slices.IndexFunc(m.cat.Users, func(u *User) bool { return u.Username == username })
	if idx < 0 {
		return fmt.Errorf("%w: user %q", ErrNotFound, username)
	}
	if m.cat.Users[idx].Protected {
		return fmt.Errorf("%w: cannot delete protected user %q", ErrForbidden, username)
	}
	m.cat.Users = slices.Delete(m.cat.Users, idx, idx+1)
	return m.Save()
}

// SetPassword replaces the user's password; an empty password removes it.
func (m *Manager) SetPassword(u *User, password string) error {
	if password == "" {
		u.PasswordHash = ""
		return m.Save()
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return m.Save()
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return string(hash), nil
}

// checkPassword verifies password against u. Accounts without a password accept anything.
func checkPassword(u *User, password string) error {
	if !u.HasPassword() {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
