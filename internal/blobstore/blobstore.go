package blobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"

	"hvac-maintenance-backend/internal/model"
)

// Store is an append-only keyed store for photo records, backed by an
// embedded badger database. The database is opened lazily and once; all
// operations are safe for concurrent use.
type Store struct {
	path     string
	inMemory bool

	openOnce sync.Once
	openErr  error
	db       *badger.DB
}

// New creates a Store persisting under path. The database is not opened
// until the first operation.
func New(path string) *Store {
	return &Store{path: path}
}

// NewInMemory creates a Store with no disk persistence, for tests.
func NewInMemory() *Store {
	return &Store{inMemory: true}
}

func (s *Store) open() (*badger.DB, error) {
	s.openOnce.Do(func() {
		var opts badger.Options
		if s.inMemory {
			opts = badger.DefaultOptions("").WithInMemory(true)
		} else {
			opts = badger.DefaultOptions(s.path)
		}
		opts = opts.WithLogger(nil)
		s.db, s.openErr = badger.Open(opts)
		if s.openErr != nil {
			s.openErr = fmt.Errorf("open photo store: %w", s.openErr)
		}
	})
	return s.db, s.openErr
}

// Close closes the underlying database if it was ever opened.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutPhoto stores one photo record keyed by its id, replacing any previous
// record with the same id.
func (s *Store) PutPhoto(ctx context.Context, photo model.MaintenancePhoto) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db, err := s.open()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(photo)
	if err != nil {
		return fmt.Errorf("marshal photo %q: %w", photo.ID, err)
	}
	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(photo.ID), raw)
	})
	if err != nil {
		return fmt.Errorf("put photo %q: %w", photo.ID, err)
	}
	return nil
}

// GetPhotosByIDs fetches the photos for the given ids in one read
// transaction. Missing ids are silently omitted; the result order is
// unspecified.
func (s *Store) GetPhotosByIDs(ctx context.Context, ids []string) ([]model.MaintenancePhoto, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	photos := make([]model.MaintenancePhoto, 0, len(ids))
	err = db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get([]byte(id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get photo %q: %w", id, err)
			}
			if err := item.Value(func(val []byte) error {
				var photo model.MaintenancePhoto
				if err := json.Unmarshal(val, &photo); err != nil {
					return fmt.Errorf("decode photo %q: %w", id, err)
				}
				photos = append(photos, photo)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// Has reports whether a photo with the given id exists.
func (s *Store) Has(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	db, err := s.open()
	if err != nil {
		return false, err
	}
	found := false
	err = db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("check photo %q: %w", id, err)
	}
	return found, nil
}

// ClearAll removes every photo record.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db, err := s.open()
	if err != nil {
		return err
	}
	if err := db.DropAll(); err != nil {
		return fmt.Errorf("clear photo store: %w", err)
	}
	return nil
}
