package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"hvac-maintenance-backend/internal/kv"
	"hvac-maintenance-backend/internal/model"
)

// StateKey is the single durable key holding the serialized ledger payload.
const StateKey = "maintenance/state"

// State is the three-partition ledger plus the shift flag.
type State struct {
	Current     *model.MaintenanceWork
	Today       []model.MaintenanceWork
	Past        []model.MaintenanceWork
	ShiftClosed bool
}

// Store reconciles the in-memory ledger with the durable key/value tier.
type Store struct {
	kv       kv.Store
	seedPast []model.MaintenanceWork
	maxPast  int
}

// New creates a ledger store. seedPast is the read-only historical seed set;
// maxPast caps how many real past works are persisted.
func New(store kv.Store, seedPast []model.MaintenanceWork, maxPast int) *Store {
	return &Store{kv: store, seedPast: seedPast, maxPast: maxPast}
}

// defaultState is the clean fallback: empty session, seed history.
func (s *Store) defaultState() State {
	return State{
		Current:     nil,
		Today:       []model.MaintenanceWork{},
		Past:        s.clonedSeed(),
		ShiftClosed: false,
	}
}

func (s *Store) clonedSeed() []model.MaintenanceWork {
	out := make([]model.MaintenanceWork, 0, len(s.seedPast))
	for _, w := range s.seedPast {
		out = append(out, w.Clone())
	}
	return out
}

// Load reads the durable payload and reconciles it with the seed set. Any
// storage or decode failure falls back to the clean default state; a corrupt
// payload is never fatal.
func (s *Store) Load() State {
	raw, ok, err := s.kv.Get(StateKey)
	if err != nil {
		log.Printf("Warning: failed to read maintenance state: %v. Starting from seed data.", err)
		return s.defaultState()
	}
	if !ok {
		return s.defaultState()
	}

	var stored model.StoredState
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		log.Printf("Warning: stored maintenance state is malformed: %v. Starting from seed data.", err)
		return s.defaultState()
	}

	state := State{ShiftClosed: stored.ShiftClosed}
	if stored.Current != nil {
		w := model.DeserializeWork(*stored.Current)
		state.Current = &w
	}
	state.Today = make([]model.MaintenanceWork, 0, len(stored.Today))
	for _, sw := range stored.Today {
		state.Today = append(state.Today, model.DeserializeWork(sw))
	}
	state.Past = s.mergePast(stored.Past)
	return state
}

// mergePast merges seed history with persisted history by id; the persisted
// record wins on collision so real edits override the seed. Seed order is
// preserved, persisted-only records follow in stored order.
func (s *Store) mergePast(stored []model.StoredWork) []model.MaintenanceWork {
	persisted := make(map[string]model.MaintenanceWork, len(stored))
	order := make([]string, 0, len(stored))
	for _, sw := range stored {
		w := model.DeserializeWork(sw)
		if _, seen := persisted[w.ID]; !seen {
			order = append(order, w.ID)
		}
		persisted[w.ID] = w
	}

	merged := make([]model.MaintenanceWork, 0, len(s.seedPast)+len(stored))
	seedIDs := make(map[string]bool, len(s.seedPast))
	for _, seed := range s.seedPast {
		seedIDs[seed.ID] = true
		if override, ok := persisted[seed.ID]; ok {
			merged = append(merged, override)
			continue
		}
		merged = append(merged, seed.Clone())
	}
	for _, id := range order {
		if !seedIDs[id] {
			merged = append(merged, persisted[id])
		}
	}
	return merged
}

// Persist writes the ledger to the durable key. Photo urls are dropped from
// the payload, demo-seeded past records are filtered out, and the remaining
// past records are capped to the most recent maxPast. On a quota failure the
// write is retried with past emptied; if that also fails the key is removed
// so a partial payload is never left behind. Persist never returns an error
// to the mutation path.
func (s *Store) Persist(state State) {
	payload := s.serialize(state, s.retainedPast(state.Past))
	if err := s.write(payload); err == nil {
		return
	} else if !errors.Is(err, kv.ErrQuotaExceeded) {
		log.Printf("Warning: failed to persist maintenance state: %v", err)
	}

	// Quota (or write) failure: shed history first, it is the unbounded part.
	reduced := s.serialize(state, nil)
	if err := s.write(reduced); err != nil {
		log.Printf("Warning: failed to persist reduced maintenance state: %v. Clearing stored key.", err)
		if delErr := s.kv.Delete(StateKey); delErr != nil {
			log.Printf("Warning: failed to clear maintenance state key: %v", delErr)
		}
	}
}

// Clear removes the durable key.
func (s *Store) Clear() error {
	return s.kv.Delete(StateKey)
}

// Seed returns a fresh copy of the seed history.
func (s *Store) Seed() []model.MaintenanceWork {
	return s.clonedSeed()
}

func (s *Store) serialize(state State, past []model.MaintenanceWork) model.StoredState {
	stored := model.StoredState{
		SchemaVersion: model.CurrentSchemaVersion,
		Today:         make([]model.StoredWork, 0, len(state.Today)),
		Past:          make([]model.StoredWork, 0, len(past)),
		ShiftClosed:   state.ShiftClosed,
	}
	if state.Current != nil {
		sw := model.SerializeWork(*state.Current)
		stored.Current = &sw
	}
	for _, w := range state.Today {
		stored.Today = append(stored.Today, model.SerializeWork(w))
	}
	for _, w := range past {
		stored.Past = append(stored.Past, model.SerializeWork(w))
	}
	return stored
}

// retainedPast filters out seeded records and keeps the most recent maxPast
// by end time (falling back to start time), newest first.
func (s *Store) retainedPast(past []model.MaintenanceWork) []model.MaintenanceWork {
	retained := make([]model.MaintenanceWork, 0, len(past))
	for _, w := range past {
		if !model.IsDemoWork(w.ID) {
			retained = append(retained, w)
		}
	}
	sort.SliceStable(retained, func(i, j int) bool {
		return effectiveTime(retained[i]).After(effectiveTime(retained[j]))
	})
	if s.maxPast > 0 && len(retained) > s.maxPast {
		retained = retained[:s.maxPast]
	}
	return retained
}

func effectiveTime(w model.MaintenanceWork) time.Time {
	if w.EndTime != nil {
		return *w.EndTime
	}
	return w.StartTime
}

func (s *Store) write(stored model.StoredState) error {
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal maintenance state: %w", err)
	}
	return s.kv.Set(StateKey, string(raw))
}

// CollectUnhydratedPhotoIDs returns the ids of every photo across all
// partitions whose url is still empty, deduplicated.
func CollectUnhydratedPhotoIDs(state State) []string {
	seen := make(map[string]bool)
	var ids []string
	collect := func(w model.MaintenanceWork) {
		for _, p := range w.Photos {
			if p.URL == "" && !seen[p.ID] {
				seen[p.ID] = true
				ids = append(ids, p.ID)
			}
		}
	}
	if state.Current != nil {
		collect(*state.Current)
	}
	for _, w := range state.Today {
		collect(w)
	}
	for _, w := range state.Past {
		collect(w)
	}
	return ids
}

// ApplyPhotoURLs back-fills urls onto matching photo references across all
// partitions. References with no match are left untouched.
func ApplyPhotoURLs(state *State, photos []model.MaintenancePhoto) {
	byID := make(map[string]string, len(photos))
	for _, p := range photos {
		byID[p.ID] = p.URL
	}
	apply := func(w *model.MaintenanceWork) {
		for i := range w.Photos {
			if w.Photos[i].URL == "" {
				if url, ok := byID[w.Photos[i].ID]; ok {
					w.Photos[i].URL = url
				}
			}
		}
	}
	if state.Current != nil {
		apply(state.Current)
	}
	for i := range state.Today {
		apply(&state.Today[i])
	}
	for i := range state.Past {
		apply(&state.Past[i])
	}
}
