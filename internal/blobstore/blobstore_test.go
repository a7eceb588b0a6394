package blobstore

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hvac-maintenance-backend/internal/model"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s := NewInMemory()
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func photo(id string) model.MaintenancePhoto {
	return model.MaintenancePhoto{
		ID:          id,
		URL:         "data:image/jpeg;base64," + id,
		Description: "teszt fotó",
		Timestamp:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPutAndGetPhotos(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutPhoto(ctx, photo("photo-1")))
	require.NoError(t, s.PutPhoto(ctx, photo("photo-2")))

	photos, err := s.GetPhotosByIDs(ctx, []string{"photo-1", "photo-2"})
	require.NoError(t, err)
	require.Len(t, photos, 2)

	byID := make(map[string]model.MaintenancePhoto, len(photos))
	for _, p := range photos {
		byID[p.ID] = p
	}
	assert.Equal(t, "data:image/jpeg;base64,photo-1", byID["photo-1"].URL)
	assert.Equal(t, "teszt fotó", byID["photo-2"].Description)
	assert.True(t, byID["photo-1"].Timestamp.Equal(photo("photo-1").Timestamp))
}

func TestGetOmitsMissingIDs(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutPhoto(ctx, photo("photo-1")))

	photos, err := s.GetPhotosByIDs(ctx, []string{"photo-1", "photo-missing"})
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "photo-1", photos[0].ID)
}

func TestPutReplacesExistingRecord(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutPhoto(ctx, photo("photo-1")))
	updated := photo("photo-1")
	updated.Description = "csere után"
	require.NoError(t, s.PutPhoto(ctx, updated))

	photos, err := s.GetPhotosByIDs(ctx, []string{"photo-1"})
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "csere után", photos[0].Description)
}

func TestHas(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	found, err := s.Has(ctx, "photo-1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.PutPhoto(ctx, photo("photo-1")))

	found, err = s.Has(ctx, "photo-1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestClearAll(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutPhoto(ctx, photo("photo-1")))
	require.NoError(t, s.PutPhoto(ctx, photo("photo-2")))
	require.NoError(t, s.ClearAll(ctx))

	photos, err := s.GetPhotosByIDs(ctx, []string{"photo-1", "photo-2"})
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestCancelledContextIsRejected(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.PutPhoto(ctx, photo("photo-1")))
	_, err := s.GetPhotosByIDs(ctx, []string{"photo-1"})
	assert.Error(t, err)
}

func TestSeedDemoPhotosMissingAssetsAreSkipped(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	// No assets on disk: seeding is a no-op, not an error.
	require.NoError(t, s.SeedDemoPhotos(ctx, t.TempDir()))

	ids := DemoPhotoIDs()
	require.NotEmpty(t, ids)
	photos, err := s.GetPhotosByIDs(ctx, ids)
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestSeedDemoPhotosLoadsAndPreservesExisting(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fan01.jpg"), []byte("jpegbytes"), 0o644))

	require.NoError(t, s.SeedDemoPhotos(ctx, dir))

	photos, err := s.GetPhotosByIDs(ctx, []string{"photo-demo-fan-01"})
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString([]byte("jpegbytes")), photos[0].URL)
	assert.Equal(t, "Ventilátor", photos[0].Description)

	// Re-seeding with changed bytes leaves the stored record alone.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fan01.jpg"), []byte("changed"), 0o644))
	require.NoError(t, s.SeedDemoPhotos(ctx, dir))

	photos, err = s.GetPhotosByIDs(ctx, []string{"photo-demo-fan-01"})
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Contains(t, photos[0].URL, base64.StdEncoding.EncodeToString([]byte("jpegbytes")))
}
