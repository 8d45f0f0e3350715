package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// memStore keeps the last saved catalog in memory.
type memStore struct {
	load    *Catalog
	loadErr error
	saved   *Catalog
	saves   int
	saveErr error
}

var _ Store = (*memStore)(nil)

func (s *memStore) Load() (*Catalog, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.load == nil {
		return nil, ErrNoSnapshot
	}
	return s.load, nil
}

func (s *memStore) Save(c *Catalog) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = c
	return nil
}

func (s *memStore) Close() error { return nil }

// newTestManager returns a manager over a catalog holding a single user "alice".
func newTestManager(t *testing.T) (*Manager, *memStore, *User) {
	t.Helper()
	cat := New()
	alice := NewUser("alice")
	cat.Users = append(cat.Users, alice)
	st := &memStore{}
	return NewManager(cat, st, WithLocation(time.UTC)), st, alice
}

// writeImage creates an (empty) image file with the given modification time.
func writeImage(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("not really an image"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", name, err)
	}
	return path
}

func mustAlbum(t *testing.T, m *Manager, u *User, name string) *Album {
	t.Helper()
	a, err := m.CreateAlbum(u, name)
	require.NoError(t, err)
	return a
}

func mustPhoto(t *testing.T, m *Manager, u *User, a *Album, path string) *Photo {
	t.Helper()
	p, err := m.AddPhoto(u, a, path)
	require.NoError(t, err)
	return p
}

func TestManager_SaveFailureKeepsMutation(t *testing.T) {
	m, st, alice := newTestManager(t)
	st.saveErr = errors.New("disk full")

	a, err := m.CreateAlbum(alice, "Trip")
	require.ErrorIs(t, err, ErrPersistence)
	require.NotNil(t, a)
	require.Len(t, alice.Albums, 1)
	require.Equal(t, 1, st.saves)
}

func TestManager_NilStoreDoesNotPersist(t *testing.T) {
	cat := New()
	u := NewUser("bob")
	cat.Users = append(cat.Users, u)
	m := NewManager(cat, nil)

	_, err := m.CreateAlbum(u, "x")
	require.NoError(t, err)
	require.Same(t, cat, m.Catalog())
}

func TestManager_IDGenerator(t *testing.T) {
	dir := t.TempDir()
	m, _, alice := newTestManager(t)
	next := 0
	WithIDGenerator(func() PhotoID {
		next++
		return PhotoID("p" + string(rune('0'+next)))
	})(m)

	a := mustAlbum(t, m, alice, "a")
	p := mustPhoto(t, m, alice, a, writeImage(t, dir, "one.jpg", time.Now()))
	require.Equal(t, PhotoID("p1"), p.ID)
}
