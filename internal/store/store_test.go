package store

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/shifumi/internal/gesture"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func TestNew_CreatesDatabase(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "a", "b", "test.db")
	s, err := New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
	assert.Equal(t, dbPath, s.Path())
}

func TestNew_RunsMigrations(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	var name string
	err := s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='samples'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "samples", name)

	version, dirty, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestNew_Reopen(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	require.NoError(t, err)
	_, err = s.Samples().Create(gesture.Rock, testImage(8, 8))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	counts, err := s.Samples().Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, counts[gesture.Rock])
}

func TestSamples_CreateAndGet(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t).Samples()

	created, err := repo.Create(gesture.Paper, testImage(30, 20))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 30, created.Width)
	assert.Equal(t, 20, created.Height)

	got, err := repo.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, gesture.Paper, got.Gesture)
	assert.Equal(t, created.Image, got.Image)
	assert.True(t, bytes.HasPrefix(got.Image, []byte("RIFF")), "expected a RIFF container")
	assert.Equal(t, []byte("WEBP"), got.Image[8:12])
}

func TestSamples_CreateRejects(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t).Samples()

	_, err := repo.Create(gesture.NoMove, testImage(4, 4))
	assert.Error(t, err)
	_, err = repo.Create(gesture.Move("Lizard"), testImage(4, 4))
	assert.Error(t, err)
	_, err = repo.Create(gesture.Rock, nil)
	assert.Error(t, err)
	_, err = repo.Create(gesture.Rock, image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.Error(t, err)
}

func TestSamples_Counts(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t).Samples()

	counts, err := repo.Counts()
	require.NoError(t, err)
	assert.Equal(t, map[gesture.Move]int{gesture.Rock: 0, gesture.Paper: 0, gesture.Scissors: 0}, counts)

	for _, m := range []gesture.Move{gesture.Rock, gesture.Rock, gesture.Scissors} {
		_, err := repo.Create(m, testImage(4, 4))
		require.NoError(t, err)
	}

	counts, err = repo.Counts()
	require.NoError(t, err)
	assert.Equal(t, map[gesture.Move]int{gesture.Rock: 2, gesture.Paper: 0, gesture.Scissors: 1}, counts)
}

func TestSamples_List(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t).Samples()
	for _, m := range []gesture.Move{gesture.Rock, gesture.Paper, gesture.Rock} {
		_, err := repo.Create(m, testImage(4, 4))
		require.NoError(t, err)
	}

	all, err := repo.List(gesture.NoMove, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, s := range all {
		assert.Nil(t, s.Image, "list must not load image bytes")
	}

	rocks, err := repo.List(gesture.Rock, 10)
	require.NoError(t, err)
	assert.Len(t, rocks, 2)

	limited, err := repo.List(gesture.NoMove, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSamples_Delete(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t).Samples()
	created, err := repo.Create(gesture.Scissors, testImage(4, 4))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(created.ID))
	assert.ErrorIs(t, repo.Delete(created.ID), ErrNotFound)

	_, err = repo.Get(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
