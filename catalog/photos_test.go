package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPhoto(t *testing.T) {
	dir := t.TempDir()
	m, st, alice := newTestManager(t)
	trip := mustAlbum(t, m, alice, "Trip")
	mtime := time.Date(2022, 7, 14, 10, 30, 0, 0, time.UTC)
	path := writeImage(t, dir, "a.jpg", mtime)

	p, err := m.AddPhoto(alice, trip, path)
	require.NoError(t, err)
	assert.Equal(t, path, p.Path)
	assert.True(t, p.CaptureDate.Equal(mtime))
	assert.Empty(t, p.Caption)
	assert.Empty(t, p.Tags)
	assert.Equal(t, []PhotoID{p.ID}, trip.PhotoIDs)
	saves := st.saves

	_, err = m.AddPhoto(alice, trip, path)
	require.ErrorIs(t, err, ErrDuplicateContent)
	assert.Equal(t, 1, trip.Size(), "duplicate must not change the album")
	assert.Equal(t, saves, st.saves)

	_, err = m.AddPhoto(alice, trip, filepath.Join(dir, "missing.jpg"))
	require.ErrorIs(t, err, ErrNotFound)
	_, err = m.AddPhoto(alice, trip, "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = m.AddPhoto(alice, trip, dir)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddPhotoMakesPathAbsolute(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "rel.png", time.Now())
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	m, _, alice := newTestManager(t)
	a := mustAlbum(t, m, alice, "a")
	p := mustPhoto(t, m, alice, a, "rel.png")
	assert.True(t, filepath.IsAbs(p.Path))

	_, err = m.AddPhoto(alice, a, "./rel.png")
	require.ErrorIs(t, err, ErrDuplicateContent)
}

func TestSamePathInTwoAlbumsIsAllowed(t *testing.T) {
	dir := t.TempDir()
	m, _, alice := newTestManager(t)
	a := mustAlbum(t, m, alice, "a")
	b := mustAlbum(t, m, alice, "b")
	path := writeImage(t, dir, "x.gif", time.Now())

	pa := mustPhoto(t, m, alice, a, path)
	pb := mustPhoto(t, m, alice, b, path)
	assert.NotEqual(t, pa.ID, pb.ID, "adding creates an independent photo")
}

func TestRemovePhotoKeepsOtherAlbums(t *testing.T) {
	dir := t.TempDir()
	m, _, alice := newTestManager(t)
	a := mustAlbum(t, m, alice, "a")
	b := mustAlbum(t, m, alice, "b")
	p := mustPhoto(t, m, alice, a, writeImage(t, dir, "x.jpg", time.Now()))
	require.NoError(t, m.CopyPhoto(alice, p.ID, a, b))

	require.NoError(t, m.RemovePhoto(alice, a, p.ID))
	assert.Zero(t, a.Size())
	assert.True(t, b.Contains(p.ID))
	assert.Contains(t, alice.Photos, p.ID)

	require.NoError(t, m.RemovePhoto(alice, b, p.ID))
	assert.NotContains(t, alice.Photos, p.ID, "unreferenced photos are dropped")
	require.ErrorIs(t, m.RemovePhoto(alice, b, p.ID), ErrNotFound)
}

func TestCopyPhotoAliases(t *testing.T) {
	dir := t.TempDir()
	m, _, alice := newTestManager(t)
	a := mustAlbum(t, m, alice, "A")
	b := mustAlbum(t, m, alice, "B")
	p := mustPhoto(t, m, alice, a, writeImage(t, dir, "x.jpg", time.Now()))

	require.NoError(t, m.CopyPhoto(alice, p.ID, a, b))
	require.NoError(t, m.SetCaption(alice, p.ID, "  sunset  "))
	_, err := m.AddTag(alice, p.ID, "place", "beach")
	require.NoError(t, err)

	viaA := m.AlbumPhotos(alice, a)[0]
	viaB := m.AlbumPhotos(alice, b)[0]
	assert.Same(t, viaA, viaB)
	assert.Equal(t, "sunset", viaB.Caption)
	assert.Equal(t, []Tag{{Name: "place", Value: "beach"}}, viaB.Tags)

	require.ErrorIs(t, m.CopyPhoto(alice, p.ID, a, b), ErrDuplicateContent)
	require.ErrorIs(t, m.CopyPhoto(alice, p.ID, a, a), ErrDuplicateContent)
	assert.Equal(t, 1, b.Size())
}

func TestCopyRejectsSamePathFromDifferentPhoto(t *testing.T) {
	dir := t.TempDir()
	m, _, alice := newTestManager(t)
	a := mustAlbum(t, m, alice, "a")
	b := mustAlbum(t, m, alice, "b")
	path := writeImage(t, dir, "x.jpg", time.Now())
	pa := mustPhoto(t, m, alice, a, path)
	mustPhoto(t, m, alice, b, path)

	require.ErrorIs(t, m.CopyPhoto(alice, pa.ID, a, b), ErrDuplicateContent)
	require.ErrorIs(t, m.MovePhoto(alice, pa.ID, a, b), ErrDuplicateContent)
	assert.True(t, a.Contains(pa.ID))
}

func TestMovePhoto(t *testing.T) {
	dir := t.TempDir()
	m, _, alice := newTestManager(t)
	a := mustAlbum(t, m, alice, "A")
	b := mustAlbum(t, m, alice, "B")
	p := mustPhoto(t, m, alice, a, writeImage(t, dir, "1.jpg", time.Now()))
	mustPhoto(t, m, alice, a, writeImage(t, dir, "2.jpg", time.Now()))
	before := a.Size()

	require.NoError(t, m.MovePhoto(alice, p.ID, a, b))
	assert.False(t, a.Contains(p.ID))
	assert.True(t, b.Contains(p.ID))
	assert.Equal(t, before-1, a.Size())
	assert.Contains(t, alice.Photos, p.ID)

	require.ErrorIs(t, m.MovePhoto(alice, p.ID, a, b), ErrNotFound, "photo is no longer in the source")
	require.ErrorIs(t, m.MovePhoto(alice, "nope", b, a), ErrNotFound)
}

func TestAddTagSuppressesCaseInsensitiveDuplicates(t *testing.T) {
	dir := t.TempDir()
	m, st, alice := newTestManager(t)
	trip := mustAlbum(t, m, alice, "Trip")
	p := mustPhoto(t, m, alice, trip, writeImage(t, dir, "a.jpg", time.Now()))

	tag, err := m.AddTag(alice, p.ID, "person", "bob")
	require.NoError(t, err)
	assert.Equal(t, Tag{Name: "person", Value: "bob"}, tag)
	saves := st.saves

	_, err = m.AddTag(alice, p.ID, "PERSON", "BOB")
	require.ErrorIs(t, err, ErrDuplicateContent)
	assert.Len(t, p.Tags, 1)
	assert.Equal(t, saves, st.saves)

	_, err = m.AddTag(alice, p.ID, "person", "carol")
	require.NoError(t, err)
	_, err = m.AddTag(alice, p.ID, "", "x")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = m.AddTag(alice, "missing", "a", "b")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveTag(t *testing.T) {
	dir := t.TempDir()
	m, _, alice := newTestManager(t)
	a := mustAlbum(t, m, alice, "a")
	p := mustPhoto(t, m, alice, a, writeImage(t, dir, "a.jpg", time.Now()))
	_, _ = m.AddTag(alice, p.ID, "person", "bob")
	_, _ = m.AddTag(alice, p.ID, "place", "home")

	require.NoError(t, m.RemoveTag(alice, p.ID, Tag{Name: "person", Value: "bob"}))
	assert.Equal(t, []Tag{{Name: "place", Value: "home"}}, p.Tags)
	require.ErrorIs(t, m.RemoveTag(alice, p.ID, Tag{Name: "person", Value: "bob"}), ErrNotFound)
}

func TestDisplayName(t *testing.T) {
	p := &Photo{Path: "/img/beach.jpg"}
	assert.Equal(t, "beach.jpg", p.DisplayName())
	p.Caption = "Beach"
	assert.Equal(t, "Beach", p.DisplayName())
}
