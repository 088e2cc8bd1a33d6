// Package synth synthesizes catalog entries for unseen items through the
// knowledge oracle.
//
// A reply is strictly decoded into the seven regulation fields plus an
// optional weight reference. Anything that does not decode is "no result".
// Regulation values outside the allowed sets are coerced to "아니요" before the
// entry is stored: an unknown answer never grants permission.
//
// Synthesis is neither idempotent nor deterministic. It is a last-resort
// enrichment step, not a primary data path.
package synth

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/constants"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/logging"
	"github.com/agentstation/carryon/pkg/oracle"
	"github.com/agentstation/carryon/pkg/repository"
)

// Recorder receives oracle call outcomes. *metrics.Metrics implements it.
type Recorder interface {
	RecordOracleCall(kind, outcome string)
}

// Store is the storage the synthesizer reads and writes.
type Store interface {
	repository.CatalogReader
	repository.CatalogWriter
}

// Synthesizer creates catalog entries from oracle replies.
type Synthesizer struct {
	oracle   oracle.Oracle
	store    Store
	recorder Recorder
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithRecorder reports oracle outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(s *Synthesizer) {
		s.recorder = r
	}
}

// New creates a Synthesizer. A nil oracle behaves like oracle.Unavailable.
func New(o oracle.Oracle, store Store, opts ...Option) *Synthesizer {
	if o == nil {
		o = oracle.Unavailable
	}
	s := &Synthesizer{oracle: o, store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize asks the oracle about itemName and stores the resulting entry
// with source "api".
//
// ok is false when the oracle failed or its reply could not be decoded; that
// is logged and is not an error. err is only set for invalid input or when the
// entry could not be written. If another writer stored the same name first,
// the existing entry is returned.
func (s *Synthesizer) Synthesize(ctx context.Context, itemName string) (entry *catalog.Entry, ok bool, err error) {
	name := strings.TrimSpace(itemName)
	if name == "" {
		return nil, false, errors.NewValidationError("item_name", itemName, "item name is required")
	}
	if len(name) > constants.MaxNameLength {
		return nil, false, errors.NewValidationError("item_name", itemName, "item name is too long")
	}

	logger := logging.FromContext(ctx).With().Str("item_name", name).Logger()

	prompt, _ := json.Marshal(name)
	reply, err := s.oracle.Generate(ctx, oracle.Request{
		Kind:              oracle.KindItem,
		SystemInstruction: itemInstruction,
		Prompt:            string(prompt),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Item synthesis call failed")
		s.record("error")
		return nil, false, nil
	}

	decoded, err := decodeItemReply(reply)
	if err != nil {
		logger.Warn().Err(err).Str("reason", "malformed_reply").Msg("Discarding item synthesis reply")
		s.record("malformed")
		return nil, false, nil
	}
	s.record("success")

	candidate := decoded.toEntry(name)
	if string(candidate.CarryOn) != strings.TrimSpace(decoded.CarryOn) || string(candidate.Checked) != strings.TrimSpace(decoded.Checked) {
		logger.Info().
			Str("carry_on", decoded.CarryOn).
			Str("checked", decoded.Checked).
			Msg("Coerced out-of-set regulation values to 아니요")
	}

	if _, err := s.store.InsertEntry(ctx, candidate); err != nil {
		if errors.IsAlreadyExists(err) {
			existing, getErr := s.store.EntryByName(ctx, name)
			if getErr == nil {
				logger.Debug().Uint("catalog_id", existing.ID).Msg("Entry appeared concurrently, reusing it")
				return existing, true, nil
			}
			err = getErr
		}
		return nil, false, errors.WrapResource("insert", "catalog entry", name, err)
	}

	logger.Info().
		Uint("catalog_id", candidate.ID).
		Str("packing", candidate.Packing().String()).
		Msg("Synthesized catalog entry")
	return candidate, true, nil
}

func (s *Synthesizer) record(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordOracleCall(oracle.KindItem, outcome)
	}
}
