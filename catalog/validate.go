package catalog

import (
	"fmt"
	"strings"
)

// ParseTag parses "name=value". Both sides are trimmed and must be non-empty.
func ParseTag(s string) (Tag, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return Tag{}, fmt.Errorf("%w: tag %q must look like name=value", ErrInvalidInput, s)
	}
	t := Tag{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)}
	if t.Name == "" || t.Value == "" {
		return Tag{}, fmt.Errorf("%w: tag %q needs both a name and a value", ErrInvalidInput, s)
	}
	return t, nil
}

// Validate checks the invariants a freshly loaded catalog must satisfy.
// A nil Photos table is replaced with an empty one.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Users))
	for _, u := range c.Users {
		if u == nil || strings.TrimSpace(u.Username) == "" {
			return fmt.Errorf("%w: user without a name", ErrCorruptSnapshot)
		}
		if seen[u.Username] {
			return fmt.Errorf("%w: user %q listed twice", ErrCorruptSnapshot, u.Username)
		}
		seen[u.Username] = true

		switch u.Role {
		case RoleRegular, RoleAdministrator:
		case "":
			u.Role = RoleRegular
		default:
			return fmt.Errorf("%w: user %q has unknown role %q", ErrCorruptSnapshot, u.Username, u.Role)
		}
		if u.Photos == nil {
			u.Photos = make(map[PhotoID]*Photo)
		}
		for id, p := range u.Photos {
			if p == nil || p.ID != id {
				return fmt.Errorf("%w: user %q photo table entry %q is inconsistent", ErrCorruptSnapshot, u.Username, id)
			}
		}
		if err := validateAlbums(u); err != nil {
			return err
		}
	}
	return nil
}

func validateAlbums(u *User) error {
	names := make(map[string]bool, len(u.Albums))
	for _, a := range u.Albums {
		if a == nil {
			return fmt.Errorf("%w: user %q has a nil album", ErrCorruptSnapshot, u.Username)
		}
		key := strings.ToLower(a.Name)
		if names[key] {
			return fmt.Errorf("%w: user %q has album %q twice", ErrCorruptSnapshot, u.Username, a.Name)
		}
		names[key] = true

		paths := make(map[string]bool, len(a.PhotoIDs))
		for _, id := range a.PhotoIDs {
			p, ok := u.Photos[id]
			if !ok {
				return fmt.Errorf("%w: album %q references unknown photo %q", ErrCorruptSnapshot, a.Name, id)
			}
			if paths[p.Path] {
				return fmt.Errorf("%w: album %q holds %s twice", ErrCorruptSnapshot, a.Name, p.Path)
			}
			paths[p.Path] = true
		}
	}
	return nil
}
