// Package weights estimates the weight of detected items.
//
// An estimate is produced once per detection and then cached in storage.
// Detections without an estimate whose catalog entry carries a weight
// reference are sent to the oracle in a single batch, together with the
// share of the image their bounding box covers. Detections without reference
// data are never estimated. A batch reply that does not decode, or that
// contains a single invalid element, is discarded whole.
package weights

import (
	"cmp"
	"context"
	"encoding/json"
	"math"
	"slices"
	"strings"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/logging"
	"github.com/agentstation/carryon/pkg/oracle"
	"github.com/agentstation/carryon/pkg/repository"
)

// Recorder receives oracle call outcomes. *metrics.Metrics implements it.
type Recorder interface {
	RecordOracleCall(kind, outcome string)
}

// Estimator fills in weight estimates for a batch.
type Estimator struct {
	oracle   oracle.Oracle
	store    repository.WeightStore
	recorder Recorder
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithRecorder reports oracle outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(e *Estimator) {
		e.recorder = r
	}
}

// New creates an Estimator. A nil oracle behaves like oracle.Unavailable.
func New(o oracle.Oracle, store repository.WeightStore, opts ...Option) *Estimator {
	if o == nil {
		o = oracle.Unavailable
	}
	e := &Estimator{oracle: o, store: store}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// request is one element of the batch prompt.
type request struct {
	ID          uint    `json:"id"`
	ItemName    string  `json:"item_name"`
	AvgWeight   string  `json:"avg_weight"`
	WeightRange string  `json:"weight_range"`
	BBoxRatio   float64 `json:"bbox_ratio"`
}

// Estimate returns the batch's weight estimates ordered by detection id.
//
// Cached estimates are returned unchanged. New estimates are stored in one
// transaction before they are returned. An oracle failure leaves the
// affected detections without an estimate and is not an error; storage
// failures are.
func (e *Estimator) Estimate(ctx context.Context, batchID string) ([]catalog.WeightEstimate, error) {
	batchID = strings.TrimSpace(batchID)
	if batchID == "" {
		return nil, errors.NewValidationError("batch_id", batchID, "batch id is required")
	}

	ctx = logging.WithBatch(ctx, batchID)
	logger := logging.FromContext(ctx)

	records, err := e.store.DetectionsByBatch(ctx, batchID)
	if err != nil {
		return nil, errors.WrapResource("fetch", "detections", batchID, err)
	}

	imageArea, err := e.imageArea(ctx, batchID)
	if err != nil {
		return nil, err
	}

	estimates := make([]catalog.WeightEstimate, 0, len(records))
	var pending []request
	refs := make(map[uint]*catalog.WeightReference)
	for _, rec := range records {
		if rec.Weight != nil {
			estimates = append(estimates, *rec.Weight)
			continue
		}

		ref, err := e.reference(ctx, rec.CatalogID, refs)
		if err != nil {
			return nil, err
		}
		if ref == nil {
			logger.Debug().Uint("detection_id", rec.ID).Str("item_name", rec.ResolvedName).Msg("No weight reference, skipping")
			continue
		}

		pending = append(pending, request{
			ID:          rec.ID,
			ItemName:    rec.ResolvedName,
			AvgWeight:   ref.Average(),
			WeightRange: ref.Range,
			BBoxRatio:   bboxRatio(rec.BBox, imageArea),
		})
	}

	if len(pending) > 0 {
		fresh := e.predict(ctx, pending)
		if len(fresh) > 0 {
			if err := e.store.SaveWeightEstimates(ctx, fresh); err != nil {
				return nil, errors.WrapResource("update", "weight estimates", batchID, err)
			}
			logger.Info().Int("estimated", len(fresh)).Int("requested", len(pending)).Msg("Stored weight estimates")
			estimates = append(estimates, fresh...)
		}
	}

	slices.SortFunc(estimates, func(a, b catalog.WeightEstimate) int {
		return cmp.Compare(a.DetectionID, b.DetectionID)
	})
	return estimates, nil
}

// imageArea returns the batch image area, or 0 when the batch or its dimensions are unknown.
func (e *Estimator) imageArea(ctx context.Context, batchID string) (float64, error) {
	batch, err := e.store.Batch(ctx, batchID)
	switch {
	case err == nil:
		return batch.ImageArea(), nil
	case errors.IsNotFound(err):
		return 0, nil
	default:
		return 0, errors.WrapResource("fetch", "batch", batchID, err)
	}
}

// reference returns the weight reference of a catalog entry, memoized in seen.
func (e *Estimator) reference(ctx context.Context, catalogID uint, seen map[uint]*catalog.WeightReference) (*catalog.WeightReference, error) {
	if catalogID == 0 {
		return nil, nil
	}
	if ref, ok := seen[catalogID]; ok {
		return ref, nil
	}

	entry, err := e.store.EntryByID(ctx, catalogID)
	switch {
	case errors.IsNotFound(err):
		seen[catalogID] = nil
		return nil, nil
	case err != nil:
		return nil, errors.WrapResource("fetch", "catalog entry", "", err)
	}

	var ref *catalog.WeightReference
	if entry.Weight != nil && entry.Weight.Valid() {
		ref = entry.Weight
	}
	seen[catalogID] = ref
	return ref, nil
}

// predict makes the batch oracle call. It returns nil when the call fails or
// the reply is rejected.
func (e *Estimator) predict(ctx context.Context, pending []request) []catalog.WeightEstimate {
	logger := logging.FromContext(ctx)

	prompt, err := json.Marshal(pending)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode weight batch")
		return nil
	}

	reply, err := e.oracle.Generate(ctx, oracle.Request{
		Kind:              oracle.KindWeights,
		SystemInstruction: batchInstruction,
		Prompt:            string(prompt),
	})
	if err != nil {
		logger.Warn().Err(err).Int("items", len(pending)).Msg("Weight batch call failed")
		e.record("error")
		return nil
	}

	requested := make(map[uint]bool, len(pending))
	for _, p := range pending {
		requested[p.ID] = true
	}

	estimates, err := decodeBatchReply(reply, requested)
	if err != nil {
		logger.Warn().Err(err).Str("reason", "malformed_reply").Int("items", len(pending)).Msg("Discarding weight batch reply")
		e.record("malformed")
		return nil
	}
	e.record("success")
	return estimates
}

func (e *Estimator) record(outcome string) {
	if e.recorder != nil {
		e.recorder.RecordOracleCall(oracle.KindWeights, outcome)
	}
}

// bboxRatio is the share of the image covered by box, rounded to four decimals.
func bboxRatio(box catalog.BBox, imageArea float64) float64 {
	if imageArea <= 0 {
		return 0
	}
	return math.Round(box.Area()/imageArea*1e4) / 1e4
}
