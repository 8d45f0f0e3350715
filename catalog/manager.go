package catalog

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type statFunc func(string) (os.FileInfo, error)

// Manager is the query/mutation facade over an in-memory Catalog. Every operation that
// changes state saves the whole catalog through the Store before returning.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	cat    *Catalog
	store  Store
	logger *zap.Logger
	stat   statFunc
	newID  func() PhotoID
	loc    *time.Location
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithStat replaces os.Stat when reading photo capture dates.
func WithStat(fn func(string) (os.FileInfo, error)) Option {
	return func(m *Manager) { m.stat = fn }
}

// WithIDGenerator replaces the random photo ID generator.
func WithIDGenerator(fn func() PhotoID) Option {
	return func(m *Manager) { m.newID = fn }
}

// WithLocation sets the time zone used to cut days in date searches.
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// NewManager wraps cat. store may be nil, in which case nothing is persisted.
func NewManager(cat *Catalog, store Store, opts ...Option) *Manager {
	m := &Manager{
		cat:    cat,
		store:  store,
		logger: zap.NewNop(),
		stat:   os.Stat,
		newID:  newPhotoID,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Catalog returns the managed catalog.
func (m *Manager) Catalog() *Catalog { return m.cat }

// Save writes the catalog through the store.
func (m *Manager) Save() error {
	if m.store == nil {
		return nil
	}
	if err := m.store.Save(m.cat); err != nil {
		m.logger.Error("save catalog", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func newPhotoID() PhotoID { return PhotoID(uuid.NewString()) }

func newPhoto(id PhotoID, path string, stat statFunc) (*Photo, error) {
	info, err := stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidInput, path)
	}
	return &Photo{
		ID:          id,
		Path:        path,
		CaptureDate: info.ModTime().UTC(),
	}, nil
}

// ownsPhotos fails for the administrator, which manages accounts but keeps no albums.
func ownsPhotos(u *User) error {
	if u.IsAdmin() {
		return fmt.Errorf("%w: %s manages accounts and has no albums", ErrForbidden, u.Username)
	}
	return nil
}

func albumHasPath(u *User, a *Album, path string) bool {
	for _, id := range a.PhotoIDs {
		if p, ok := u.Photos[id]; ok && p.Path == path {
			return true
		}
	}
	return false
}

// prune drops photos that no album of u references any more.
func prune(u *User) {
	used := make(map[PhotoID]bool, len(u.Photos))
	for _, a := range u.Albums {
		for _, id := range a.PhotoIDs {
			used[id] = true
		}
	}
	for id := range u.Photos {
		if !used[id] {
			delete(u.Photos, id)
		}
	}
}
