package internal

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hvac-maintenance-backend/internal/blobstore"
	"hvac-maintenance-backend/internal/catalog"
	"hvac-maintenance-backend/internal/kv"
	"hvac-maintenance-backend/internal/ledger"
	"hvac-maintenance-backend/internal/model"
	"hvac-maintenance-backend/internal/seed"
	"hvac-maintenance-backend/internal/session"
)

// The full durable round trip: one session records a visit and shuts down,
// a second session over the same stores comes back with the visit intact
// and photo urls rehydrated from the blob store.
func TestSessionSurvivesRestart(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&kv.Entry{}))

	blobs := blobstore.NewInMemory()
	t.Cleanup(func() { _ = blobs.Close() })

	cat := catalog.Demo()
	seedPast := seed.PastWorks(cat.Devices(), time.Now())
	kvStore := kv.NewGormStore(db, 512*1024)
	ctx := context.Background()

	newSession := func() *session.Session {
		return session.New(session.Options{
			Catalog:  cat,
			Ledger:   ledger.New(kvStore, seedPast, 50),
			Blobs:    blobs,
			Identity: session.StaticIdentity("u-tech"),
		})
	}

	// First run: record and complete one visit with a photo.
	first := newSession()
	workID := first.Start("DEMO-DEVICE-001")
	first.UpdateNotes(workID, "szűrő és kondenzátor tisztítva")
	first.AddPhoto(ctx, workID, model.MaintenancePhoto{
		ID:          "photo-restart-1",
		URL:         "data:image/jpeg;base64,abc",
		Description: "tisztítás után",
		Timestamp:   time.Now().UTC(),
	})
	first.Complete(workID)
	first.PersistNow()

	// Second run: the completed visit is back, merged ahead of the seeds.
	second := newSession()
	work, ok := second.Find(workID)
	require.True(t, ok)
	assert.Equal(t, model.StatusCompleted, work.Status)
	assert.Equal(t, "szűrő és kondenzátor tisztítva", work.Notes)
	require.Len(t, work.Photos, 1)
	assert.Empty(t, work.Photos[0].URL, "the ledger never stores image bytes")

	assert.Len(t, second.Past(), len(seedPast)+1)

	// Hydration pulls the bytes back out of the blob store.
	second.HydratePhotos(ctx)
	work, ok = second.Find(workID)
	require.True(t, ok)
	require.Len(t, work.Photos, 1)
	assert.Equal(t, "data:image/jpeg;base64,abc", work.Photos[0].URL)
	assert.Equal(t, "tisztítás után", work.Photos[0].Description)
}

// Repeated load/persist cycles must converge: seeded history is merged by
// id on every load and never duplicated in the durable payload.
func TestRepeatedRestartsKeepSeedHistoryStable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&kv.Entry{}))

	blobs := blobstore.NewInMemory()
	t.Cleanup(func() { _ = blobs.Close() })

	cat := catalog.Demo()
	seedPast := seed.PastWorks(cat.Devices(), time.Now())
	kvStore := kv.NewGormStore(db, 512*1024)

	for i := 0; i < 3; i++ {
		s := session.New(session.Options{
			Catalog:  cat,
			Ledger:   ledger.New(kvStore, seedPast, 50),
			Blobs:    blobs,
			Identity: session.StaticIdentity("u-tech"),
		})
		s.PersistNow()
		assert.Len(t, s.Past(), len(seedPast), "cycle %d", i)
	}
}
