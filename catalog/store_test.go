package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stockDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.JPG", "c.jpeg", "d.gif", "e.BMP", "notes.txt", "f.tiff"} {
		writeImage(t, dir, name, time.Now())
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755))
	return dir
}

func TestLoadOrInitSeedsDefaults(t *testing.T) {
	dir := stockDir(t)
	st := &memStore{}

	c := LoadOrInit(st, dir, nil)
	require.Len(t, c.Users, 2)
	require.Same(t, c, st.saved, "seeded catalog is persisted immediately")

	admin, stock := c.Users[0], c.Users[1]
	assert.Equal(t, "admin", admin.Username)
	assert.Equal(t, RoleAdministrator, admin.Role)
	assert.True(t, admin.Protected)
	assert.Empty(t, admin.Albums)

	assert.Equal(t, "stock", stock.Username)
	assert.Equal(t, RoleRegular, stock.Role)
	require.Len(t, stock.Albums, 1)
	assert.Equal(t, "stock", stock.Albums[0].Name)
	assert.Equal(t, 5, stock.Albums[0].Size())
	for _, p := range stock.Photos {
		assert.True(t, filepath.IsAbs(p.Path), p.Path)
		assert.True(t, IsImageFile(p.Path), p.Path)
	}
}

func TestLoadOrInitMissingStockDir(t *testing.T) {
	c := LoadOrInit(&memStore{}, filepath.Join(t.TempDir(), "absent"), nil)
	stock, ok := c.User("stock")
	require.True(t, ok)
	assert.Zero(t, stock.Albums[0].Size())
}

func TestLoadOrInitUsesValidSnapshot(t *testing.T) {
	existing := New()
	existing.Users = append(existing.Users, NewUser("zoe"))
	st := &memStore{load: existing}

	c := LoadOrInit(st, "", nil)
	assert.Same(t, existing, c)
	assert.Zero(t, st.saves)
}

func TestLoadOrInitFallsBackOnBadSnapshot(t *testing.T) {
	t.Run("load error", func(t *testing.T) {
		st := &memStore{loadErr: errors.New("unexpected EOF")}
		c := LoadOrInit(st, "", nil)
		assert.Len(t, c.Users, 2)
		assert.Equal(t, 1, st.saves)
	})

	t.Run("invalid snapshot", func(t *testing.T) {
		broken := New()
		u := NewUser("zoe")
		u.Albums = []*Album{{Name: "x", PhotoIDs: []PhotoID{"dangling"}}}
		broken.Users = append(broken.Users, u)
		st := &memStore{load: broken}

		c := LoadOrInit(st, "", nil)
		assert.NotSame(t, broken, c)
		_, ok := c.User("admin")
		assert.True(t, ok)
	})

	t.Run("save failure still returns catalog", func(t *testing.T) {
		st := &memStore{saveErr: errors.New("read-only fs")}
		c := LoadOrInit(st, "", nil)
		assert.Len(t, c.Users, 2)
	})
}

func TestIsImageFile(t *testing.T) {
	for name, want := range map[string]bool{
		"a.png": true, "a.PNG": true, "b.jpeg": true, "c.Gif": true, "d.bmp": true,
		"e.tif": false, "noext": false, "jpg": false,
	} {
		assert.Equal(t, want, IsImageFile(name), name)
	}
}
