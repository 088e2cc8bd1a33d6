// Package nameindex keeps the catalog's name universe in memory for exact and
// approximate lookup.
//
// The index holds an immutable Snapshot behind an atomic pointer. A refresh
// builds a complete new snapshot off to the side and swaps it in, so readers
// never observe a half-built index and lookups in flight keep using the
// snapshot they started with. When storage fails during a refresh the last
// good snapshot keeps being served and the refresh is retried on the next call.
package nameindex

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agentstation/carryon/pkg/constants"
	"github.com/agentstation/carryon/pkg/fuzzy"
	"github.com/agentstation/carryon/pkg/logging"
	"github.com/agentstation/carryon/pkg/repository"
)

// Recorder receives refresh outcomes. *metrics.Metrics implements it.
type Recorder interface {
	RecordIndexRefresh(outcome string, names int)
}

// MatchResult is an approximate lookup result.
// Score is a 0..100 similarity percentage rounded to two decimals, not a probability.
type MatchResult struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	CatalogID uint    `json:"catalog_id"`
}

// Index is a refreshable name index over a repository.NameSource.
type Index struct {
	src       repository.NameSource
	interval  time.Duration
	cutoff    float64
	algorithm fuzzy.Algorithm
	now       func() time.Time
	recorder  Recorder

	snap      atomic.Pointer[Snapshot]
	refreshMu sync.Mutex
}

// New creates an index. It starts with an empty, already stale snapshot, so
// the first lookup loads the catalog.
func New(src repository.NameSource, opts ...Option) *Index {
	ix := &Index{
		src:       src,
		interval:  constants.DefaultIndexRefreshInterval,
		cutoff:    constants.SuggestCutoff,
		algorithm: fuzzy.WRatio,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(ix)
	}
	ix.snap.Store(emptySnapshot())
	return ix
}

func (ix *Index) stale(s *Snapshot) bool {
	return s.builtAt.IsZero() || ix.now().Sub(s.builtAt) > ix.interval
}

// RefreshIfStale reloads the snapshot when it is older than the refresh interval.
// Concurrent callers wait for a single reload instead of each starting one.
// On failure the previous snapshot stays in place and the error is returned.
func (ix *Index) RefreshIfStale(ctx context.Context) error {
	if !ix.stale(ix.snap.Load()) {
		return nil
	}

	ix.refreshMu.Lock()
	defer ix.refreshMu.Unlock()

	if !ix.stale(ix.snap.Load()) {
		return nil
	}
	return ix.refreshLocked(ctx)
}

// Refresh reloads the snapshot unconditionally.
func (ix *Index) Refresh(ctx context.Context) error {
	ix.refreshMu.Lock()
	defer ix.refreshMu.Unlock()
	return ix.refreshLocked(ctx)
}

func (ix *Index) refreshLocked(ctx context.Context) error {
	refs, err := ix.src.AllNames(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn().
			Err(err).
			Int("names", ix.snap.Load().Len()).
			Msg("Name index refresh failed, serving last snapshot")
		ix.record("error", 0)
		return err
	}

	next := newSnapshot(refs, ix.now())
	ix.snap.Store(next)
	ix.record("success", next.Len())

	logging.FromContext(ctx).Debug().
		Int("names", next.Len()).
		Msg("Name index refreshed")
	return nil
}

func (ix *Index) record(outcome string, names int) {
	if ix.recorder != nil {
		ix.recorder.RecordIndexRefresh(outcome, names)
	}
}

// Snapshot returns the current snapshot after refreshing it if stale.
// A refresh failure is logged and the last good snapshot returned.
func (ix *Index) Snapshot(ctx context.Context) *Snapshot {
	_ = ix.RefreshIfStale(ctx)
	return ix.snap.Load()
}

// AllNames returns the current name list.
func (ix *Index) AllNames(ctx context.Context) []string {
	return ix.Snapshot(ctx).Names()
}

// IDForName returns the catalog id of an exact name.
func (ix *Index) IDForName(ctx context.Context, name string) (uint, bool) {
	return ix.Snapshot(ctx).ID(name)
}

// Autocomplete returns up to limit names scoring at least the suggestion
// cutoff against query, best first. A limit of zero or less uses the default.
func (ix *Index) Autocomplete(ctx context.Context, query string, limit int) []string {
	if limit <= 0 {
		limit = constants.DefaultSuggestLimit
	}

	matches := fuzzy.ExtractTop(query, ix.Snapshot(ctx).names, ix.algorithm, limit, ix.cutoff)
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Candidate
	}
	return names
}

// BestMatch returns the best name scoring at least the suggestion cutoff.
func (ix *Index) BestMatch(ctx context.Context, query string) (MatchResult, bool) {
	return ix.Match(ctx, query, ix.cutoff)
}

// Match returns the best name scoring at least cutoff. Ties go to the name
// that comes first in the snapshot.
func (ix *Index) Match(ctx context.Context, query string, cutoff float64) (MatchResult, bool) {
	snap := ix.Snapshot(ctx)

	best, ok := fuzzy.ExtractBest(query, snap.names, ix.algorithm, cutoff)
	if !ok {
		return MatchResult{}, false
	}
	id, _ := snap.ID(best.Candidate)
	return MatchResult{
		Name:      best.Candidate,
		Score:     math.Round(best.Score*100) / 100,
		CatalogID: id,
	}, true
}
