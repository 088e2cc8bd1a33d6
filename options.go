package carryon

import (
	"time"

	"github.com/agentstation/carryon/pkg/constants"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/oracle"
	"github.com/agentstation/carryon/pkg/reconcile"
)

// Recorder receives metrics from every component. *metrics.Metrics implements it.
type Recorder interface {
	RecordResolution(tier string)
	RecordOracleCall(kind, outcome string)
	RecordIndexRefresh(outcome string, names int)
}

// Option is a function that configures a Client
type Option func(*options) error

// options holds the client configuration
type options struct {
	oracle          oracle.Oracle
	oracleTimeout   time.Duration
	recorder        Recorder
	mapper          reconcile.LabelMapper
	indexInterval   time.Duration
	suggestCutoff   float64
	acceptThreshold float64
	labelThreshold  float64
	synthesis       bool
}

// defaults returns the default configuration
func defaults() *options {
	return &options{
		oracle:          oracle.Unavailable,
		oracleTimeout:   constants.DefaultOracleTimeout,
		indexInterval:   constants.DefaultIndexRefreshInterval,
		suggestCutoff:   constants.SuggestCutoff,
		acceptThreshold: constants.AcceptThreshold,
		labelThreshold:  constants.LabelThreshold,
		synthesis:       true,
	}
}

// apply applies the given options in order
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithOracle configures the knowledge oracle used for synthesis and weight estimation.
func WithOracle(o oracle.Oracle) Option {
	return func(opts *options) error {
		if o == nil {
			return errors.NewValidationError("oracle", nil, "oracle cannot be nil")
		}
		opts.oracle = o
		return nil
	}
}

// WithOracleTimeout bounds every oracle call. Zero disables the bound.
func WithOracleTimeout(d time.Duration) Option {
	return func(opts *options) error {
		if d < 0 {
			return errors.NewValidationError("oracle_timeout", d, "must not be negative")
		}
		opts.oracleTimeout = d
		return nil
	}
}

// WithRecorder reports metrics to r.
func WithRecorder(r Recorder) Option {
	return func(opts *options) error {
		opts.recorder = r
		return nil
	}
}

// WithLabelMapper replaces the built-in detector vocabulary.
func WithLabelMapper(m reconcile.LabelMapper) Option {
	return func(opts *options) error {
		if m == nil {
			return errors.NewValidationError("label_mapper", nil, "label mapper cannot be nil")
		}
		opts.mapper = m
		return nil
	}
}

// WithIndexRefreshInterval configures how long a name index snapshot stays fresh.
func WithIndexRefreshInterval(d time.Duration) Option {
	return func(opts *options) error {
		if d <= 0 {
			return errors.NewValidationError("index_refresh_interval", d, "must be positive")
		}
		opts.indexInterval = d
		return nil
	}
}

// WithSuggestCutoff sets the minimum score for autocomplete and best-match lookups.
func WithSuggestCutoff(cutoff float64) Option {
	return func(opts *options) error {
		if err := checkScore("suggest_cutoff", cutoff); err != nil {
			return err
		}
		opts.suggestCutoff = cutoff
		return nil
	}
}

// WithAcceptThreshold sets the minimum score for reusing a catalog entry during reconciliation.
func WithAcceptThreshold(threshold float64) Option {
	return func(opts *options) error {
		if err := checkScore("accept_threshold", threshold); err != nil {
			return err
		}
		opts.acceptThreshold = threshold
		return nil
	}
}

// WithLabelThreshold sets the minimum score for mapping an unknown detector label.
// It has no effect together with WithLabelMapper.
func WithLabelThreshold(threshold float64) Option {
	return func(opts *options) error {
		if err := checkScore("label_threshold", threshold); err != nil {
			return err
		}
		opts.labelThreshold = threshold
		return nil
	}
}

// WithSynthesis enables or disables catalog synthesis for unmatched items.
func WithSynthesis(enabled bool) Option {
	return func(opts *options) error {
		opts.synthesis = enabled
		return nil
	}
}

func checkScore(field string, v float64) error {
	if v < 0 || v > 100 {
		return errors.NewValidationError(field, v, "must be between 0 and 100")
	}
	return nil
}
