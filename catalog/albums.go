package catalog

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// CreateAlbum adds an empty album. Names are trimmed and must be unique per user
// ignoring case.
func (m *Manager) CreateAlbum(u *User, name string) (*Album, error) {
	n, err := m.checkAlbumName(u, name, nil)
	if err != nil {
		return nil, err
	}
	a := &Album{Name: n}
	u.Albums = append(u.Albums, a)
	return a, m.Save()
}

// RenameAlbum changes the album's name under the same rules as CreateAlbum.
func (m *Manager) RenameAlbum(u *User, a *Album, newName string) error {
	n, err := m.checkAlbumName(u, newName, a)
	if err != nil {
		return err
	}
	a.Name = n
	return m.Save()
}

// DeleteAlbum removes the album from the user. Photos only it referenced are dropped.
func (m *Manager) DeleteAlbum(u *User, a *Album) error {
	if err := ownsPhotos(u); err != nil {
		return err
	}
	idx := slices.Index(u.Albums, a)
	if idx < 0 {
		return fmt.Errorf("%w: album %q", ErrNotFound, a.Name)
	}
	u.Albums = slices.Delete(u.Albums, idx, idx+1)
	prune(u)
	return m.Save()
}

// Album finds one of the user's albums by name, ignoring case.
func (m *Manager) Album(u *User, name string) (*Album, error) {
	if err := ownsPhotos(u); err != nil {
		return nil, err
	}
	n := strings.TrimSpace(name)
	for _, a := range u.Albums {
		if strings.EqualFold(a.Name, n) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: album %q", ErrNotFound, n)
}

// AlbumPhotos resolves the album's photo IDs in order.
func (m *Manager) AlbumPhotos(u *User, a *Album) []*Photo {
	photos := make([]*Photo, 0, len(a.PhotoIDs))
	for _, id := range a.PhotoIDs {
		if p, ok := u.Photos[id]; ok {
			photos = append(photos, p)
		}
	}
	return photos
}

// AlbumSize returns the number of photos in a.
func (m *Manager) AlbumSize(a *Album) int { return a.Size() }

// EarliestDate returns the oldest capture date in the album; false when it is empty.
func (m *Manager) EarliestDate(u *User, a *Album) (time.Time, bool) {
	return m.dateBound(u, a, func(t, best time.Time) bool { return t.Before(best) })
}

// LatestDate returns the newest capture date in the album; false when it is empty.
func (m *Manager) LatestDate(u *User, a *Album) (time.Time, bool) {
	return m.dateBound(u, a, func(t, best time.Time) bool { return t.After(best) })
}

func (m *Manager) dateBound(u *User, a *Album, better func(t, best time.Time) bool) (time.Time, bool) {
	var (
		best  time.Time
		found bool
	)
	for _, p := range m.AlbumPhotos(u, a) {
		if !found || better(p.CaptureDate, best) {
			best, found = p.CaptureDate, true
		}
	}
	return best, found
}

func (m *Manager) checkAlbumName(u *User, name string, self *Album) (string, error) {
	if err := ownsPhotos(u); err != nil {
		return "", err
	}
	n := strings.TrimSpace(name)
	if n == "" {
		return "", fmt.Errorf("%w: album name cannot be empty", ErrInvalidInput)
	}
	for _, a := range u.Albums {
		if a != self && strings.EqualFold(a.Name, n) {
			return "", fmt.Errorf("%w: album %q already exists", ErrDuplicateName, a.Name)
		}
	}
	return n, nil
}
