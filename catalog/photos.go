package catalog

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// AddPhoto creates a photo for the file at path and appends it to a. The capture date is
// the file's modification time. A path already present in a is rejected.
func (m *Manager) AddPhoto(u *User, a *Album, path string) (*Photo, error) {
	if err := ownsPhotos(u); err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: photo path cannot be empty", ErrInvalidInput)
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, path, err)
	}
	if albumHasPath(u, a, abs) {
		return nil, fmt.Errorf("%w: %s is already in album %q", ErrDuplicateContent, abs, a.Name)
	}

	p, err := newPhoto(m.newID(), abs, m.stat)
	if err != nil {
		return nil, err
	}
	u.Photos[p.ID] = p
	a.PhotoIDs = append(a.PhotoIDs, p.ID)
	return p, m.Save()
}

// Photo returns the user's photo with the given ID.
func (m *Manager) Photo(u *User, id PhotoID) (*Photo, error) {
	if err := ownsPhotos(u); err != nil {
		return nil, err
	}
	p, ok := u.Photos[id]
	if !ok {
		return nil, fmt.Errorf("%w: photo %q", ErrNotFound, id)
	}
	return p, nil
}

// RemovePhoto drops the photo from a only; other albums keep their reference.
func (m *Manager) RemovePhoto(u *User, a *Album, id PhotoID) error {
	if err := ownsPhotos(u); err != nil {
		return err
	}
	idx := a.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: photo %q in album %q", ErrNotFound, id, a.Name)
	}
	a.PhotoIDs = slices.Delete(a.PhotoIDs, idx, idx+1)
	prune(u)
	return m.Save()
}

// SetCaption trims and stores text as the photo's caption.
func (m *Manager) SetCaption(u *User, id PhotoID, text string) error {
	p, err := m.Photo(u, id)
	if err != nil {
		return err
	}
	p.Caption = strings.TrimSpace(text)
	return m.Save()
}

// CopyPhoto makes to reference the same photo as from. Caption and tag edits stay shared.
func (m *Manager) CopyPhoto(u *User, id PhotoID, from, to *Album) error {
	p, err := m.transferable(u, id, from, to)
	if err != nil {
		return err
	}
	to.PhotoIDs = append(to.PhotoIDs, p.ID)
	return m.Save()
}

// MovePhoto appends the photo to to and removes it from from.
func (m *Manager) MovePhoto(u *User, id PhotoID, from, to *Album) error {
	p, err := m.transferable(u, id, from, to)
	if err != nil {
		return err
	}
	to.PhotoIDs = append(to.PhotoIDs, p.ID)
	from.PhotoIDs = slices.DeleteFunc(from.PhotoIDs, func(pid PhotoID) bool { return pid == p.ID })
	return m.Save()
}

func (m *Manager) transferable(u *User, id PhotoID, from, to *Album) (*Photo, error) {
	p, err := m.Photo(u, id)
	if err != nil {
		return nil, err
	}
	if !from.Contains(id) {
		return nil, fmt.Errorf("%w: photo %q in album %q", ErrNotFound, id, from.Name)
	}
	if from == to || albumHasPath(u, to, p.Path) {
		return nil, fmt.Errorf("%w: album %q already contains %s", ErrDuplicateContent, to.Name, p.Path)
	}
	return p, nil
}

// AddTag attaches name=value to the photo unless an equal tag (ignoring case) exists.
func (m *Manager) AddTag(u *User, id PhotoID, name, value string) (Tag, error) {
	p, err := m.Photo(u, id)
	if err != nil {
		return Tag{}, err
	}
	t := Tag{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)}
	if t.Name == "" || t.Value == "" {
		return Tag{}, fmt.Errorf("%w: tag needs both a name and a value", ErrInvalidInput)
	}
	if p.HasTag(t.Name, t.Value) {
		return Tag{}, fmt.Errorf("%w: photo already tagged %s", ErrDuplicateContent, t)
	}
	p.Tags = append(p.Tags, t)
	return t, m.Save()
}

// RemoveTag removes the first tag equal to t.
func (m *Manager) RemoveTag(u *User, id PhotoID, t Tag) error {
	p, err := m.Photo(u, id)
	if err != nil {
		return err
	}
	idx := slices.Index(p.Tags, t)
	if idx < 0 {
		return fmt.Errorf("%w: tag %s", ErrNotFound, t)
	}
	p.Tags = slices.Delete(p.Tags, idx, idx+1)
	return m.Save()
}
