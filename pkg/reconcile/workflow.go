package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/constants"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/logging"
)

// Reconcile resolves every detection and stores one record per resolved item.
//
// All input is validated before any side effect. A storage read failure or an
// oracle miss drops that item only. A failed write aborts the call with a
// *errors.ResourceError; records stored before the failure remain. Callers
// must serialize calls for the same batch.
func (w *workflow) Reconcile(ctx context.Context, batchID string, detections []catalog.Detection) (*Result, error) {
	start := time.Now()

	batchID = strings.TrimSpace(batchID)
	if err := validate(batchID, detections); err != nil {
		return nil, err
	}

	result := &Result{
		Records:  make([]catalog.DetectionRecord, 0, len(detections)),
		Outcomes: make([]Outcome, 0, len(detections)),
		Metadata: ResultMetadata{BatchID: batchID, StartTime: start},
	}
	if len(detections) == 0 {
		result.finish()
		return result, nil
	}

	ctx = logging.WithBatch(ctx, batchID)
	logger := logging.FromContext(ctx)
	candidates := w.index.AllNames(ctx)

	for i, det := range detections {
		label := strings.TrimSpace(det.Label)
		outcome, entry, err := w.resolve(logging.WithItem(ctx, label), label, candidates)
		if err != nil {
			return nil, err
		}
		outcome.Index = i

		if entry != nil {
			rec := catalog.DetectionRecord{
				BatchID:      batchID,
				RawLabel:     label,
				ResolvedName: entry.Name,
				NameEN:       entry.NameEN,
				CatalogID:    entry.ID,
				BBox:         det.BBox,
				Confidence:   det.Confidence,
				Packing:      entry.Packing(),
			}
			if _, err := w.repo.InsertDetection(ctx, &rec); err != nil {
				return nil, errors.WrapResource("insert", "detection", label, err)
			}
			outcome.RecordID = rec.ID
			result.Records = append(result.Records, rec)
			if outcome.Tier == TierSynthesized {
				result.Synthesized = append(result.Synthesized, *entry)
			}
		} else {
			result.Warnings = append(result.Warnings, fmt.Sprintf("detection %d (%s) dropped: %s", i, label, outcome.Reason))
		}

		result.Outcomes = append(result.Outcomes, outcome)
		result.Metadata.Stats.add(outcome.Tier)
		if w.recorder != nil {
			w.recorder.RecordResolution(outcome.Tier.String())
		}
	}

	if len(result.Synthesized) > 0 {
		// New names must be visible to the next approximate lookup.
		_ = w.index.Refresh(ctx)
	}

	result.finish()
	logger.Info().
		Int("detections", result.Metadata.Stats.Total).
		Int("records", len(result.Records)).
		Int("synthesized", result.Metadata.Stats.Synthesized).
		Int("dropped", result.Metadata.Stats.Dropped()).
		Dur("duration", result.Metadata.Duration).
		Msg("Reconciled batch")

	return result, nil
}

// resolve walks one label down the ladder. A nil entry means the item is
// dropped; the outcome says why. Only a write failure returns an error.
func (w *workflow) resolve(ctx context.Context, raw string, candidates []string) (Outcome, *catalog.Entry, error) {
	logger := logging.FromContext(ctx)
	name := w.mapper.Map(raw, candidates)
	outcome := Outcome{RawLabel: raw, MappedName: name}

	entry, err := w.repo.EntryByName(ctx, name)
	switch {
	case err == nil:
		outcome.Tier, outcome.ResolvedName, outcome.Score = TierExact, entry.Name, 100
		return outcome, entry, nil
	case !errors.IsNotFound(err):
		return w.failed(ctx, outcome, "exact lookup", err), nil, nil
	}

	if m, ok := w.index.Match(ctx, name, w.accept); ok {
		entry, err := w.repo.EntryByID(ctx, m.CatalogID)
		switch {
		case err == nil:
			outcome.Tier, outcome.ResolvedName, outcome.Score = TierFuzzy, entry.Name, m.Score
			return outcome, entry, nil
		case !errors.IsNotFound(err):
			return w.failed(ctx, outcome, "fuzzy lookup", err), nil, nil
		}
		// The index is older than the catalog; fall through to synthesis.
		logger.Debug().Str("name", m.Name).Msg("Fuzzy match no longer in catalog")
	}

	if w.synth == nil {
		outcome.Tier, outcome.Reason = TierUnresolved, "no catalog match and synthesis disabled"
		logger.Warn().Str("mapped_name", name).Str("reason", outcome.Reason).Msg("Skipping detection")
		return outcome, nil, nil
	}

	entry, ok, err := w.synth.Synthesize(ctx, name)
	if err != nil {
		return outcome, nil, err
	}
	if !ok {
		outcome.Tier, outcome.Reason = TierUnresolved, "oracle returned no usable record"
		logger.Warn().Str("mapped_name", name).Str("reason", outcome.Reason).Msg("Skipping detection")
		return outcome, nil, nil
	}

	outcome.Tier, outcome.ResolvedName = TierSynthesized, entry.Name
	return outcome, entry, nil
}

func (w *workflow) failed(ctx context.Context, outcome Outcome, stage string, err error) Outcome {
	outcome.Tier = TierFailed
	outcome.Reason = fmt.Sprintf("%s failed: %v", stage, err)
	logging.FromContext(ctx).Warn().
		Err(err).
		Str("mapped_name", outcome.MappedName).
		Str("reason", stage+" failed").
		Msg("Skipping detection")
	return outcome
}

// DeleteByIDs deletes the given records and re-reads the batch. Ids are
// deleted whether or not they belong to batchID; missing ids are ignored.
func (w *workflow) DeleteByIDs(ctx context.Context, batchID string, ids []uint) ([]catalog.DetectionRecord, error) {
	batchID = strings.TrimSpace(batchID)
	if batchID == "" {
		return nil, errors.NewValidationError("batch_id", batchID, "batch id is required")
	}

	ctx = logging.WithBatch(ctx, batchID)
	if len(ids) > 0 {
		n, err := w.repo.DeleteDetections(ctx, ids)
		if err != nil {
			return nil, errors.WrapResource("delete", "detections", batchID, err)
		}
		logging.FromContext(ctx).Info().
			Int("requested", len(ids)).
			Int64("deleted", n).
			Msg("Deleted detections")
	}

	records, err := w.repo.DetectionsByBatch(ctx, batchID)
	if err != nil {
		return nil, errors.WrapResource("fetch", "detections", batchID, err)
	}
	return records, nil
}

func validate(batchID string, detections []catalog.Detection) error {
	if batchID == "" {
		return errors.NewValidationError("batch_id", batchID, "batch id is required")
	}
	for i, det := range detections {
		label := strings.TrimSpace(det.Label)
		field := fmt.Sprintf("detections[%d].label", i)
		if label == "" {
			return errors.NewValidationError(field, det.Label, "label is required")
		}
		if len(label) > constants.MaxNameLength {
			return errors.NewValidationError(field, det.Label, "label is too long")
		}
	}
	return nil
}

func (r *Result) finish() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
	r.Metadata.Stats.Total = len(r.Outcomes)
}
