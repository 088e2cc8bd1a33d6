package nameindex

import (
	"time"

	"github.com/agentstation/carryon/pkg/fuzzy"
)

// Option configures an Index.
type Option func(*Index)

// WithInterval sets how long a snapshot stays fresh.
func WithInterval(d time.Duration) Option {
	return func(ix *Index) {
		if d > 0 {
			ix.interval = d
		}
	}
}

// WithCutoff sets the minimum score for Autocomplete and BestMatch.
func WithCutoff(cutoff float64) Option {
	return func(ix *Index) {
		ix.cutoff = cutoff
	}
}

// WithAlgorithm sets the scorer used for approximate lookups.
func WithAlgorithm(alg fuzzy.Algorithm) Option {
	return func(ix *Index) {
		ix.algorithm = alg
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(ix *Index) {
		if now != nil {
			ix.now = now
		}
	}
}

// WithRecorder reports refresh outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(ix *Index) {
		ix.recorder = r
	}
}
