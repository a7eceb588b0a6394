package blobstore

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hvac-maintenance-backend/internal/model"
)

type demoPhotoEntry struct {
	id          string
	file        string
	description string
}

var demoPhotoEntries = []demoPhotoEntry{
	{id: "photo-demo-1000011602", file: "1000011602.jpg", description: "Karbantartási fotó"},
	{id: "photo-demo-1000011603", file: "1000011603.jpg", description: "Karbantartási fotó"},
	{id: "photo-demo-1000011604", file: "1000011604.jpg", description: "Karbantartási fotó"},
	{id: "photo-demo-1000011605", file: "1000011605.webp", description: "Karbantartási fotó"},
	{id: "photo-demo-1000011606", file: "1000011606.jpg", description: "Karbantartási fotó"},
	{id: "photo-demo-1000011607", file: "1000011607.jpg", description: "Karbantartási fotó"},
	{id: "photo-demo-1000011608", file: "1000011608.jpg", description: "Karbantartási fotó"},
	{id: "photo-demo-fan-01", file: "fan01.jpg", description: "Ventilátor"},
	{id: "photo-demo-fan-02", file: "fan02.jpg", description: "Ventilátor"},
	{id: "photo-demo-indoor-01", file: "indoor01.jpg", description: "Beltéri egység"},
}

// DemoPhotoIDs returns the ids of the seeded demo photos.
func DemoPhotoIDs() []string {
	ids := make([]string, 0, len(demoPhotoEntries))
	for _, entry := range demoPhotoEntries {
		ids = append(ids, entry.id)
	}
	return ids
}

// SeedDemoPhotos loads the demo images from dir into the store as data
// urls. Entries already present are left alone, so re-seeding is cheap and
// user data is never overwritten. A missing image file skips that entry.
func (s *Store) SeedDemoPhotos(ctx context.Context, dir string) error {
	for _, entry := range demoPhotoEntries {
		exists, err := s.Has(ctx, entry.id)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, entry.file))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("read demo photo %q: %w", entry.file, err)
		}

		photo := model.MaintenancePhoto{
			ID:          entry.id,
			URL:         dataURL(entry.file, raw),
			Description: entry.description,
			Timestamp:   time.Now().UTC(),
		}
		if err := s.PutPhoto(ctx, photo); err != nil {
			return err
		}
	}
	return nil
}

func dataURL(name string, raw []byte) string {
	mime := "image/jpeg"
	if filepath.Ext(name) == ".webp" {
		mime = "image/webp"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw)
}
