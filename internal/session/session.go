// Package session implements the in-memory maintenance session controller:
// the three-partition work ledger (current / today / past) and the mutation
// API the view layer calls. Mutations run to completion under one lock;
// durable persistence is an asynchronous effect that always snapshots the
// latest state at the time it runs.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"hvac-maintenance-backend/internal/blobstore"
	"hvac-maintenance-backend/internal/ledger"
	"hvac-maintenance-backend/internal/model"
	"hvac-maintenance-backend/internal/seed"
)

// Catalog is the read-only device lookup consulted at visit start.
type Catalog interface {
	Lookup(id string) model.Device
}

// Ledger is the durable structured-state tier.
type Ledger interface {
	Load() ledger.State
	Persist(state ledger.State)
	Clear() error
	Seed() []model.MaintenanceWork
}

// Blobs is the durable photo tier. All operations are best-effort relative
// to session continuity.
type Blobs interface {
	PutPhoto(ctx context.Context, photo model.MaintenancePhoto) error
	GetPhotosByIDs(ctx context.Context, ids []string) ([]model.MaintenancePhoto, error)
	ClearAll(ctx context.Context) error
}

// Identity supplies the operator id stamped onto new works.
type Identity interface {
	CurrentUserID() string
}

// StaticIdentity is an Identity returning a fixed user id.
type StaticIdentity string

func (s StaticIdentity) CurrentUserID() string {
	if s == "" {
		return "unknown"
	}
	return string(s)
}

// Notifier receives non-fatal warnings (storage and hydration failures).
// Warnings are informational; no session operation fails on their account.
type Notifier interface {
	Warnf(format string, args ...any)
}

type logNotifier struct{}

func (logNotifier) Warnf(format string, args ...any) {
	log.Printf("Warning: "+format, args...)
}

// Options configures a Session. Catalog, Ledger and Blobs are required;
// Clock, Identity and Notifier default to time.Now, "unknown" and the log
// sink.
type Options struct {
	Catalog  Catalog
	Ledger   Ledger
	Blobs    Blobs
	Clock    func() time.Time
	Identity Identity
	Notifier Notifier
}

// Session owns the in-memory ledger partitions and their transition rules.
type Session struct {
	catalog  Catalog
	ledger   Ledger
	blobs    Blobs
	clock    func() time.Time
	identity Identity
	notifier Notifier

	mu          sync.Mutex
	current     *model.MaintenanceWork
	today       []model.MaintenanceWork
	past        []model.MaintenanceWork
	shiftClosed bool
	closed      bool

	dirty chan struct{}
}

// New builds a session and synchronously loads the structured state from
// the ledger. Photo hydration is a separate phase (HydratePhotos) so
// callers can render text state before image payloads arrive.
func New(opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Identity == nil {
		opts.Identity = StaticIdentity("unknown")
	}
	if opts.Notifier == nil {
		opts.Notifier = logNotifier{}
	}

	s := &Session{
		catalog:  opts.Catalog,
		ledger:   opts.Ledger,
		blobs:    opts.Blobs,
		clock:    opts.Clock,
		identity: opts.Identity,
		notifier: opts.Notifier,
		dirty:    make(chan struct{}, 1),
	}

	state := s.ledger.Load()
	s.current = state.Current
	s.today = state.Today
	s.past = state.Past
	s.shiftClosed = state.ShiftClosed
	return s
}

// Run drives the persistence effect loop until ctx is cancelled. Each
// mutation marks the session dirty; the loop snapshots whatever the state
// is when it wakes, so a rapid burst of mutations coalesces into one write
// reflecting the latest state.
func (s *Session) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.closed = true
			s.mu.Unlock()
			// Final write so a clean shutdown never loses the last burst.
			s.PersistNow()
			return
		case <-s.dirty:
			s.PersistNow()
		}
	}
}

// PersistNow synchronously persists the current state. Exposed for shutdown
// and tests; normal mutations go through the dirty channel.
func (s *Session) PersistNow() {
	s.mu.Lock()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.ledger.Persist(snapshot)
}

func (s *Session) snapshotLocked() ledger.State {
	state := ledger.State{
		Today:       make([]model.MaintenanceWork, 0, len(s.today)),
		Past:        make([]model.MaintenanceWork, 0, len(s.past)),
		ShiftClosed: s.shiftClosed,
	}
	if s.current != nil {
		w := s.current.Clone()
		state.Current = &w
	}
	for _, w := range s.today {
		state.Today = append(state.Today, w.Clone())
	}
	for _, w := range s.past {
		state.Past = append(state.Past, w.Clone())
	}
	return state
}

func (s *Session) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// Start opens a new maintenance work for the given device and makes it the
// current work. Unknown devices get placeholder metadata; Start never
// fails. Starting new work implicitly reopens a closed shift, and an
// unfinished previous work is discarded (abort semantics) so at most one
// record is ever in progress.
func (s *Session) Start(deviceID string) string {
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		s.markDirty()
	}()

	s.shiftClosed = false
	if s.current != nil {
		s.removeFromTodayLocked(s.current.ID)
		s.current = nil
	}

	device := s.catalog.Lookup(deviceID)
	work := model.MaintenanceWork{
		ID:               "MW-" + uuid.NewString(),
		DeviceID:         deviceID,
		DeviceModel:      device.Model,
		DeviceKind:       device.Kind,
		DeviceAddress:    device.Address,
		DeviceLocation:   device.Location,
		ExecutorID:       s.identity.CurrentUserID(),
		Status:           model.StatusInProgress,
		IsMalfunctioning: false,
		Notes:            "",
		Photos:           []model.MaintenancePhoto{},
		StartTime:        s.clock(),
	}

	current := work.Clone()
	s.current = &current
	s.today = append(s.today, work)
	return work.ID
}

// UpdateNotes replaces the notes on the matching record. Past records are
// only touched when already completed; history mid-transition is not
// editable.
func (s *Session) UpdateNotes(workID, notes string) {
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		s.markDirty()
	}()

	if s.current != nil && s.current.ID == workID {
		s.current.Notes = notes
	}
	for i := range s.today {
		if s.today[i].ID == workID {
			s.today[i].Notes = notes
		}
	}
	for i := range s.past {
		if s.past[i].ID == workID && s.past[i].Status == model.StatusCompleted {
			s.past[i].Notes = notes
		}
	}
}

// AddPhoto appends the photo to the matching record, preserving insertion
// order, and independently persists it to the blob store. A blob-store
// failure is logged and never blocks the ledger mutation.
func (s *Session) AddPhoto(ctx context.Context, workID string, photo model.MaintenancePhoto) {
	if err := s.blobs.PutPhoto(ctx, photo); err != nil {
		s.notifier.Warnf("failed to store photo %s: %v", photo.ID, err)
	}

	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		s.markDirty()
	}()

	if s.current != nil && s.current.ID == workID {
		s.current.Photos = append(s.current.Photos, photo)
	}
	for i := range s.today {
		if s.today[i].ID == workID {
			s.today[i].Photos = append(s.today[i].Photos, photo)
		}
	}
	for i := range s.past {
		if s.past[i].ID == workID && s.past[i].Status == model.StatusCompleted {
			s.past[i].Photos = append(s.past[i].Photos, photo)
		}
	}
}

// ToggleMalfunction flips the malfunction flag on every partition holding
// the id, archived records included: malfunction status may need correction
// after archival.
func (s *Session) ToggleMalfunction(workID string) {
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		s.markDirty()
	}()

	if s.current != nil && s.current.ID == workID {
		s.current.IsMalfunctioning = !s.current.IsMalfunctioning
	}
	for i := range s.today {
		if s.today[i].ID == workID {
			s.today[i].IsMalfunctioning = !s.today[i].IsMalfunctioning
		}
	}
	for i := range s.past {
		if s.past[i].ID == workID {
			s.past[i].IsMalfunctioning = !s.past[i].IsMalfunctioning
		}
	}
}

// Complete transitions the work to completed, stamps the end time, archives
// it into past (a no-op when the id is already archived) and clears the
// current slot. The at-least-one-photo rule is enforced by the caller
// before invoking Complete.
func (s *Session) Complete(workID string) {
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		s.markDirty()
	}()

	endTime := s.clock()

	var toArchive *model.MaintenanceWork
	if s.current != nil && s.current.ID == workID {
		w := s.current.Clone()
		toArchive = &w
	} else {
		for i := range s.today {
			if s.today[i].ID == workID {
				w := s.today[i].Clone()
				toArchive = &w
				break
			}
		}
	}

	for i := range s.today {
		if s.today[i].ID == workID {
			s.today[i].Status = model.StatusCompleted
			t := endTime
			s.today[i].EndTime = &t
		}
	}

	if toArchive != nil {
		exists := false
		for i := range s.past {
			if s.past[i].ID == workID {
				exists = true
				break
			}
		}
		if !exists {
			toArchive.Status = model.StatusCompleted
			t := endTime
			toArchive.EndTime = &t
			s.past = append([]model.MaintenanceWork{*toArchive}, s.past...)
		}
	}

	if s.current != nil && s.current.ID == workID {
		s.current = nil
	}
}

// Abort removes the work from today and clears the current slot if it was
// the aborted one. No past entry is created; this is destructive and
// irreversible.
func (s *Session) Abort(workID string) {
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		s.markDirty()
	}()

	s.removeFromTodayLocked(workID)
	if s.current != nil && s.current.ID == workID {
		s.current = nil
	}
}

func (s *Session) removeFromTodayLocked(workID string) {
	kept := s.today[:0]
	for _, w := range s.today {
		if w.ID != workID {
			kept = append(kept, w)
		}
	}
	s.today = kept
}

// MarkEdited stamps the last-edited time on the record across all
// partitions, independent of any content mutation.
func (s *Session) MarkEdited(workID string) {
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		s.markDirty()
	}()

	now := s.clock()
	if s.current != nil && s.current.ID == workID {
		t := now
		s.current.LastEdited = &t
	}
	for i := range s.today {
		if s.today[i].ID == workID {
			t := now
			s.today[i].LastEdited = &t
		}
	}
	for i := range s.past {
		if s.past[i].ID == workID {
			t := now
			s.past[i].LastEdited = &t
		}
	}
}

// CloseShift clears today and current and raises the shift-closed flag.
func (s *Session) CloseShift() {
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		s.markDirty()
	}()

	s.today = []model.MaintenanceWork{}
	s.current = nil
	s.shiftClosed = true
}

// Reset clears the durable ledger key and all photo blobs and restores the
// session to the seed state. The returned bool reports whether the blob
// clear succeeded; the ledger clear is best-effort and only logged.
func (s *Session) Reset(ctx context.Context) bool {
	if err := s.ledger.Clear(); err != nil {
		s.notifier.Warnf("failed to clear maintenance state: %v", err)
	}

	photosCleared := true
	if err := s.blobs.ClearAll(ctx); err != nil {
		photosCleared = false
		s.notifier.Warnf("failed to clear stored photos: %v", err)
	}

	s.mu.Lock()
	s.current = nil
	s.today = []model.MaintenanceWork{}
	s.past = s.ledger.Seed()
	s.shiftClosed = false
	s.mu.Unlock()

	return photosCleared
}

// HydratePhotos back-fills photo urls from the blob store in one batch.
// Results arriving after shutdown are discarded.
func (s *Session) HydratePhotos(ctx context.Context) {
	s.mu.Lock()
	snapshot := ledger.State{Current: s.current, Today: s.today, Past: s.past}
	ids := ledger.CollectUnhydratedPhotoIDs(snapshot)
	s.mu.Unlock()

	if len(ids) == 0 {
		return
	}

	photos, err := s.blobs.GetPhotosByIDs(ctx, ids)
	if err != nil {
		s.notifier.Warnf("failed to load stored photos: %v", err)
		return
	}
	if len(photos) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	state := ledger.State{Current: s.current, Today: s.today, Past: s.past}
	ledger.ApplyPhotoURLs(&state, photos)
}

// AttachDemoPhotos decorates photo-less past works with the seeded demo
// photos so the demo history renders with imagery. Safe to call on every
// startup; works that gained real photos are untouched.
func (s *Session) AttachDemoPhotos(ctx context.Context, demoIDs []string) {
	photos, err := s.blobs.GetPhotosByIDs(ctx, demoIDs)
	if err != nil {
		s.notifier.Warnf("failed to load demo photos: %v", err)
		return
	}
	if len(photos) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	seed.AttachDemoPhotos(s.past, photos)
}

// Current returns a copy of the in-progress work, or nil.
func (s *Session) Current() *model.MaintenanceWork {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	w := s.current.Clone()
	return &w
}

// Today returns a copy of the works started in the active session.
func (s *Session) Today() []model.MaintenanceWork {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MaintenanceWork, 0, len(s.today))
	for _, w := range s.today {
		out = append(out, w.Clone())
	}
	return out
}

// Past returns a copy of the archived works.
func (s *Session) Past() []model.MaintenanceWork {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MaintenanceWork, 0, len(s.past))
	for _, w := range s.past {
		out = append(out, w.Clone())
	}
	return out
}

// ShiftClosed reports whether the shift has been closed.
func (s *Session) ShiftClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shiftClosed
}

// Find returns a copy of the record with the given id from whichever
// partition holds it, preferring current, then today, then past.
func (s *Session) Find(workID string) (model.MaintenanceWork, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == workID {
		return s.current.Clone(), true
	}
	for _, w := range s.today {
		if w.ID == workID {
			return w.Clone(), true
		}
	}
	for _, w := range s.past {
		if w.ID == workID {
			return w.Clone(), true
		}
	}
	return model.MaintenanceWork{}, false
}

var _ Blobs = (*blobstore.Store)(nil)
