// Package memory provides an in-memory repository.Store for tests and dry runs.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/repository"
)

var _ repository.Store = (*Store)(nil)

// Store keeps catalog entries, batches and detections in maps.
// All returned values are copies; callers never share state with the store.
type Store struct {
	mu         sync.RWMutex
	entries    map[uint]catalog.Entry
	byName     map[string]uint
	batches    map[string]catalog.Batch
	detections map[uint]catalog.DetectionRecord
	nextEntry  uint
	nextDet    uint
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entries:    make(map[uint]catalog.Entry),
		byName:     make(map[string]uint),
		batches:    make(map[string]catalog.Batch),
		detections: make(map[uint]catalog.DetectionRecord),
	}
}

// AllNames returns every catalog name, ordered by id.
func (s *Store) AllNames(_ context.Context) ([]catalog.NameRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := make([]catalog.NameRef, 0, len(s.entries))
	for id, e := range s.entries {
		refs = append(refs, catalog.NameRef{ID: id, Name: e.Name})
	}
	slices.SortFunc(refs, func(a, b catalog.NameRef) int { return cmp.Compare(a.ID, b.ID) })
	return refs, nil
}

// EntryByName returns the entry with exactly this name.
func (s *Store) EntryByName(_ context.Context, name string) (*catalog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[name]
	if !ok {
		return nil, repository.ErrEntryNotFound
	}
	e := cloneEntry(s.entries[id])
	return &e, nil
}

// EntryByID returns the entry with this id.
func (s *Store) EntryByID(_ context.Context, id uint) (*catalog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, repository.ErrEntryNotFound
	}
	e = cloneEntry(e)
	return &e, nil
}

// InsertEntry stores a new entry.
func (s *Store) InsertEntry(_ context.Context, entry *catalog.Entry) (uint, error) {
	if entry == nil || entry.Name == "" {
		return 0, errors.NewValidationError("name", "", "catalog entry name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[entry.Name]; exists {
		return 0, repository.ErrDuplicateName
	}
	s.nextEntry++
	entry.ID = s.nextEntry
	s.entries[entry.ID] = cloneEntry(*entry)
	s.byName[entry.Name] = entry.ID
	return entry.ID, nil
}

// InsertDetection stores a new detection record.
func (s *Store) InsertDetection(_ context.Context, rec *catalog.DetectionRecord) (uint, error) {
	if rec == nil || rec.BatchID == "" {
		return 0, errors.NewValidationError("batch_id", "", "batch id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextDet++
	rec.ID = s.nextDet
	s.detections[rec.ID] = cloneRecord(*rec)
	return rec.ID, nil
}

// DeleteDetections removes the given ids. Missing ids are ignored.
func (s *Store) DeleteDetections(_ context.Context, ids []uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, id := range ids {
		if _, ok := s.detections[id]; ok {
			delete(s.detections, id)
			n++
		}
	}
	return n, nil
}

// DetectionsByBatch returns the batch's records ordered by id.
func (s *Store) DetectionsByBatch(_ context.Context, batchID string) ([]catalog.DetectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.DetectionRecord, 0)
	for _, rec := range s.detections {
		if rec.BatchID == batchID {
			out = append(out, cloneRecord(rec))
		}
	}
	slices.SortFunc(out, func(a, b catalog.DetectionRecord) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// Batch returns the batch with this id.
func (s *Store) Batch(_ context.Context, id string) (*catalog.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.batches[id]
	if !ok {
		return nil, repository.ErrBatchNotFound
	}
	return &b, nil
}

// SaveBatch creates or replaces a batch.
func (s *Store) SaveBatch(_ context.Context, batch *catalog.Batch) error {
	if batch == nil || batch.ID == "" {
		return errors.NewValidationError("id", "", "batch id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.batches[batch.ID] = *batch
	return nil
}

// SaveWeightEstimates attaches the estimates to their detections.
// Nothing is written if any estimate references an unknown detection.
func (s *Store) SaveWeightEstimates(_ context.Context, estimates []catalog.WeightEstimate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, est := range estimates {
		if _, ok := s.detections[est.DetectionID]; !ok {
			return errors.NewNotFoundError("detection", strconv.FormatUint(uint64(est.DetectionID), 10))
		}
	}
	for _, est := range estimates {
		rec := s.detections[est.DetectionID]
		w := est
		rec.Weight = &w
		s.detections[est.DetectionID] = rec
	}
	return nil
}

func cloneEntry(e catalog.Entry) catalog.Entry {
	if e.Weight != nil {
		w := *e.Weight
		e.Weight = &w
	}
	return e
}

func cloneRecord(r catalog.DetectionRecord) catalog.DetectionRecord {
	if r.Weight != nil {
		w := *r.Weight
		r.Weight = &w
	}
	return r
}
