package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAlbum(t *testing.T) {
	m, st, alice := newTestManager(t)

	a, err := m.CreateAlbum(alice, "  Trip  ")
	require.NoError(t, err)
	assert.Equal(t, "Trip", a.Name)
	assert.Equal(t, 1, st.saves)

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", ErrInvalidInput},
		{"blank", "   ", ErrInvalidInput},
		{"same name", "Trip", ErrDuplicateName},
		{"different case", "tRIP", ErrDuplicateName},
		{"padded different case", " TRIP ", ErrDuplicateName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.CreateAlbum(alice, tt.input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Len(t, alice.Albums, 1)
	assert.Equal(t, 1, st.saves, "rejected requests must not save")
}

func TestRenameAlbum(t *testing.T) {
	m, _, alice := newTestManager(t)
	trip := mustAlbum(t, m, alice, "Trip")
	mustAlbum(t, m, alice, "Family")

	require.NoError(t, m.RenameAlbum(alice, trip, "TRIP"), "renaming to itself with new case is allowed")
	assert.Equal(t, "TRIP", trip.Name)

	require.ErrorIs(t, m.RenameAlbum(alice, trip, "family"), ErrDuplicateName)
	require.ErrorIs(t, m.RenameAlbum(alice, trip, " "), ErrInvalidInput)
	assert.Equal(t, "TRIP", trip.Name)

	require.NoError(t, m.RenameAlbum(alice, trip, " Vacation "))
	assert.Equal(t, "Vacation", trip.Name)
}

func TestAlbumNamesStayDistinct(t *testing.T) {
	m, _, alice := newTestManager(t)
	ops := []string{"a", "A", "b", "B ", "c", "rename:a->b", "rename:a->C", "rename:b->x", "x", "rename:c->A"}
	for _, op := range ops {
		if from, to, ok := strings.Cut(strings.TrimPrefix(op, "rename:"), "->"); ok && strings.HasPrefix(op, "rename:") {
			if a, err := m.Album(alice, from); err == nil {
				_ = m.RenameAlbum(alice, a, to)
			}
			continue
		}
		_, _ = m.CreateAlbum(alice, op)
	}

	seen := map[string]bool{}
	for _, a := range alice.Albums {
		key := strings.ToLower(a.Name)
		require.False(t, seen[key], "duplicate album name %q", a.Name)
		seen[key] = true
	}
}

func TestDeleteAlbumPrunesUnreferencedPhotos(t *testing.T) {
	dir := t.TempDir()
	m, _, alice := newTestManager(t)
	a := mustAlbum(t, m, alice, "a")
	b := mustAlbum(t, m, alice, "b")
	shared := mustPhoto(t, m, alice, a, writeImage(t, dir, "shared.jpg", time.Now()))
	only := mustPhoto(t, m, alice, a, writeImage(t, dir, "only.jpg", time.Now()))
	require.NoError(t, m.CopyPhoto(alice, shared.ID, a, b))

	require.NoError(t, m.DeleteAlbum(alice, a))
	assert.Len(t, alice.Albums, 1)
	assert.Contains(t, alice.Photos, shared.ID)
	assert.NotContains(t, alice.Photos, only.ID)

	require.ErrorIs(t, m.DeleteAlbum(alice, a), ErrNotFound)
}

func TestAlbumLookupAndDates(t *testing.T) {
	dir := t.TempDir()
	m, _, alice := newTestManager(t)
	a := mustAlbum(t, m, alice, "Trip")

	_, ok := m.EarliestDate(alice, a)
	assert.False(t, ok, "empty album has no earliest date")
	_, ok = m.LatestDate(alice, a)
	assert.False(t, ok)

	early := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	mid := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)
	mustPhoto(t, m, alice, a, writeImage(t, dir, "mid.jpg", mid))
	mustPhoto(t, m, alice, a, writeImage(t, dir, "late.jpg", late))
	mustPhoto(t, m, alice, a, writeImage(t, dir, "early.jpg", early))

	got, ok := m.EarliestDate(alice, a)
	require.True(t, ok)
	assert.True(t, got.Equal(early), "earliest = %v", got)
	got, ok = m.LatestDate(alice, a)
	require.True(t, ok)
	assert.True(t, got.Equal(late), "latest = %v", got)
	assert.Equal(t, 3, m.AlbumSize(a))

	found, err := m.Album(alice, " trip ")
	require.NoError(t, err)
	assert.Same(t, a, found)
	_, err = m.Album(alice, "nope")
	require.ErrorIs(t, err, ErrNotFound)
}
