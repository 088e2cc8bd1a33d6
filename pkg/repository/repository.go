// Package repository defines the storage surface consumed by the reconciliation
// engine. Implementations live in internal/store (gorm over SQLite) and in
// pkg/repository/memory.
//
// Lookups report a missing row with one of the sentinel errors below, never
// with (nil, nil), so callers can tell "no match" apart from a storage failure.
package repository

import (
	"context"
	"fmt"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/errors"
)

// Sentinel errors returned by every implementation.
var (
	// ErrEntryNotFound is returned when no catalog entry has the requested name or id.
	ErrEntryNotFound = fmt.Errorf("catalog entry %w", errors.ErrNotFound)

	// ErrBatchNotFound is returned when no batch has the requested id.
	ErrBatchNotFound = fmt.Errorf("batch %w", errors.ErrNotFound)

	// ErrDuplicateName is returned by InsertEntry when the unique name is taken.
	ErrDuplicateName = fmt.Errorf("catalog entry name %w", errors.ErrAlreadyExists)
)

// NameSource provides the {id, name} projection of the catalog.
type NameSource interface {
	AllNames(ctx context.Context) ([]catalog.NameRef, error)
}

// CatalogReader looks up catalog entries.
type CatalogReader interface {
	EntryByName(ctx context.Context, name string) (*catalog.Entry, error)
	EntryByID(ctx context.Context, id uint) (*catalog.Entry, error)
}

// CatalogWriter adds catalog entries.
type CatalogWriter interface {
	// InsertEntry stores a new entry, sets entry.ID and returns it.
	InsertEntry(ctx context.Context, entry *catalog.Entry) (uint, error)
}

// DetectionStore persists reconciled detections.
type DetectionStore interface {
	// InsertDetection stores a record, sets rec.ID and returns it.
	InsertDetection(ctx context.Context, rec *catalog.DetectionRecord) (uint, error)
	// DeleteDetections removes the given ids and reports how many existed.
	DeleteDetections(ctx context.Context, ids []uint) (int64, error)
	// DetectionsByBatch returns the batch's records ordered by id.
	// An unknown batch yields an empty slice.
	DetectionsByBatch(ctx context.Context, batchID string) ([]catalog.DetectionRecord, error)
}

// Repository is the full storage surface of the reconciliation workflow.
type Repository interface {
	NameSource
	CatalogReader
	CatalogWriter
	DetectionStore
}

// WeightStore is the storage surface of weight estimation.
type WeightStore interface {
	CatalogReader
	Batch(ctx context.Context, id string) (*catalog.Batch, error)
	SaveBatch(ctx context.Context, batch *catalog.Batch) error
	DetectionsByBatch(ctx context.Context, batchID string) ([]catalog.DetectionRecord, error)
	// SaveWeightEstimates applies all estimates atomically.
	SaveWeightEstimates(ctx context.Context, estimates []catalog.WeightEstimate) error
}

// Store is implemented by complete storage backends.
type Store interface {
	Repository
	WeightStore
}
