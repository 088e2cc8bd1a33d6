// Package reconcile resolves detected items against the regulations catalog.
//
// Each detection walks a fixed ladder: the raw label is mapped through the
// detector vocabulary, then looked up by exact name, then matched
// approximately against the catalog names (accepted at score 90 or above),
// and finally handed to the synthesizer. Every resolved item is stored as a
// DetectionRecord with a packing class derived from its catalog entry.
//
// The accept threshold is deliberately stricter than the autocomplete cutoff
// of 30: here the match decides what gets persisted.
package reconcile

import (
	"context"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/constants"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/labels"
	"github.com/agentstation/carryon/pkg/nameindex"
	"github.com/agentstation/carryon/pkg/repository"
)

// Workflow is the reconciliation interface
type Workflow interface {
	// Reconcile resolves and stores a batch of detections. An empty batch
	// returns an empty result without touching storage.
	Reconcile(ctx context.Context, batchID string, detections []catalog.Detection) (*Result, error)

	// DeleteByIDs removes detection records and returns what remains in the batch.
	DeleteByIDs(ctx context.Context, batchID string, ids []uint) ([]catalog.DetectionRecord, error)
}

// Index is the name index used for approximate lookup.
type Index interface {
	AllNames(ctx context.Context) []string
	Match(ctx context.Context, query string, cutoff float64) (nameindex.MatchResult, bool)
	Refresh(ctx context.Context) error
}

// Synthesizer creates catalog entries for unseen items.
type Synthesizer interface {
	Synthesize(ctx context.Context, itemName string) (*catalog.Entry, bool, error)
}

// LabelMapper translates detector labels into catalog names.
type LabelMapper interface {
	Map(raw string, candidates []string) string
}

// Recorder receives resolution tiers. *metrics.Metrics implements it.
type Recorder interface {
	RecordResolution(tier string)
}

// workflow is the default implementation of Workflow
type workflow struct {
	repo     repository.Repository
	index    Index
	mapper   LabelMapper
	synth    Synthesizer
	recorder Recorder
	accept   float64
}

// Option configures a Workflow
type Option func(*workflow) error

// WithSynthesizer enables the synthesis tier. Without it, items that miss
// the exact and fuzzy tiers are unresolved.
func WithSynthesizer(s Synthesizer) Option {
	return func(w *workflow) error {
		w.synth = s
		return nil
	}
}

// WithLabelMapper replaces the built-in detector vocabulary.
func WithLabelMapper(m LabelMapper) Option {
	return func(w *workflow) error {
		if m == nil {
			return errors.NewValidationError("mapper", nil, "label mapper cannot be nil")
		}
		w.mapper = m
		return nil
	}
}

// WithAcceptThreshold sets the minimum fuzzy score for reusing a catalog entry.
func WithAcceptThreshold(threshold float64) Option {
	return func(w *workflow) error {
		if threshold < 0 || threshold > 100 {
			return errors.NewValidationError("accept_threshold", threshold, "must be between 0 and 100")
		}
		w.accept = threshold
		return nil
	}
}

// WithRecorder reports resolution tiers to r.
func WithRecorder(r Recorder) Option {
	return func(w *workflow) error {
		w.recorder = r
		return nil
	}
}

// New creates a Workflow over a repository and a name index.
func New(repo repository.Repository, index Index, opts ...Option) (Workflow, error) {
	if repo == nil {
		return nil, errors.NewValidationError("repository", nil, "repository is required")
	}
	if index == nil {
		return nil, errors.NewValidationError("index", nil, "name index is required")
	}

	w := &workflow{
		repo:   repo,
		index:  index,
		mapper: labels.Default(),
		accept: constants.AcceptThreshold,
	}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	return w, nil
}
