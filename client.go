// Package carryon reconciles object detections against a catalog of airline
// baggage regulations.
//
// A detector reports raw labels ("laptop", "portable-charger") with bounding
// boxes. carryon maps each label onto a catalog item name, finds or creates
// the matching catalog entry, and stores a detection record carrying the
// packing verdict: carry-on, checked, both or none. Items missing from the
// catalog are synthesized through a generative knowledge oracle.
//
// Example usage:
//
//	st, err := store.Open(ctx, store.Config{Path: "carryon.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
//	client, err := carryon.New(st, carryon.WithOracle(gem))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client.OnEntrySynthesized(func(e catalog.Entry) {
//	    log.Printf("learned %s", e.Name)
//	})
//
//	records, err := client.ReconcileBatch(ctx, "batch-1", []catalog.Detection{
//	    {Label: "laptop", BBox: catalog.BBox{10, 10, 300, 220}},
//	})
package carryon

import (
	"context"
	"strings"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/labels"
	"github.com/agentstation/carryon/pkg/logging"
	"github.com/agentstation/carryon/pkg/nameindex"
	"github.com/agentstation/carryon/pkg/oracle"
	"github.com/agentstation/carryon/pkg/reconcile"
	"github.com/agentstation/carryon/pkg/repository"
	"github.com/agentstation/carryon/pkg/synth"
	"github.com/agentstation/carryon/pkg/weights"
)

// Client manages reconciliation against a regulations catalog
type Client interface {
	// Matcher provides name suggestions
	Matcher

	// Reconciler resolves and stores detections
	Reconciler

	// Estimator predicts item weights
	Estimator

	// Catalog reads the regulations catalog
	Catalog

	// Hooks provides event callback registration
	Hooks
}

// Matcher provides name suggestions over the catalog names
type Matcher interface {
	// Autocomplete returns up to limit catalog names close to query, best first.
	// A limit of zero or less uses the default of 5.
	Autocomplete(ctx context.Context, query string, limit int) []string

	// BestMatch returns the closest catalog name scoring at least the suggest cutoff.
	BestMatch(ctx context.Context, query string) (nameindex.MatchResult, bool)
}

// Reconciler resolves and stores detections
type Reconciler interface {
	// ReconcileBatch resolves detections and returns the stored records in input order.
	ReconcileBatch(ctx context.Context, batchID string, detections []catalog.Detection) ([]catalog.DetectionRecord, error)

	// Reconcile resolves detections and returns the full per-detection report.
	Reconcile(ctx context.Context, batchID string, detections []catalog.Detection) (*reconcile.Result, error)

	// DeleteDetections removes records and returns what remains in the batch.
	DeleteDetections(ctx context.Context, batchID string, ids []uint) ([]catalog.DetectionRecord, error)

	// Results returns the batch's stored records ordered by id.
	Results(ctx context.Context, batchID string) ([]catalog.DetectionRecord, error)

	// SaveBatch records the image dimensions of a batch.
	SaveBatch(ctx context.Context, batch catalog.Batch) error
}

// Estimator predicts item weights
type Estimator interface {
	// EstimateWeights predicts weights for the batch's unestimated records.
	EstimateWeights(ctx context.Context, batchID string) ([]catalog.WeightEstimate, error)
}

// Catalog reads the regulations catalog
type Catalog interface {
	// Entry returns the catalog entry with the exact name.
	Entry(ctx context.Context, name string) (*catalog.Entry, error)

	// Names returns every catalog name from the current index snapshot.
	Names(ctx context.Context) []string

	// RefreshIndex rebuilds the name index from storage.
	RefreshIndex(ctx context.Context) error
}

// Compile-time interface check
var _ Client = (*client)(nil)

// client contains the reconciliation components
type client struct {
	store     repository.Store
	index     *nameindex.Index
	workflow  reconcile.Workflow
	estimator *weights.Estimator
	hooks     *hooks
}

// New creates a Client over store.
func New(store repository.Store, opts ...Option) (Client, error) {
	if store == nil {
		return nil, errors.NewValidationError("store", nil, "store is required")
	}

	cfg, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	orc := oracle.WithTimeout(cfg.oracle, cfg.oracleTimeout)

	indexOpts := []nameindex.Option{
		nameindex.WithInterval(cfg.indexInterval),
		nameindex.WithCutoff(cfg.suggestCutoff),
	}
	synthOpts := []synth.Option{}
	weightOpts := []weights.Option{}
	flowOpts := []reconcile.Option{reconcile.WithAcceptThreshold(cfg.acceptThreshold)}
	if cfg.recorder != nil {
		indexOpts = append(indexOpts, nameindex.WithRecorder(cfg.recorder))
		synthOpts = append(synthOpts, synth.WithRecorder(cfg.recorder))
		weightOpts = append(weightOpts, weights.WithRecorder(cfg.recorder))
		flowOpts = append(flowOpts, reconcile.WithRecorder(cfg.recorder))
	}

	mapper := cfg.mapper
	if mapper == nil {
		mapper = labels.Default(labels.WithThreshold(cfg.labelThreshold))
	}
	flowOpts = append(flowOpts, reconcile.WithLabelMapper(mapper))
	if cfg.synthesis {
		flowOpts = append(flowOpts, reconcile.WithSynthesizer(synth.New(orc, store, synthOpts...)))
	}

	index := nameindex.New(store, indexOpts...)
	workflow, err := reconcile.New(store, index, flowOpts...)
	if err != nil {
		return nil, err
	}

	return &client{
		store:     store,
		index:     index,
		workflow:  workflow,
		estimator: weights.New(orc, store, weightOpts...),
		hooks:     newHooks(),
	}, nil
}

// Autocomplete implements Matcher.
func (c *client) Autocomplete(ctx context.Context, query string, limit int) []string {
	return c.index.Autocomplete(ctx, query, limit)
}

// BestMatch implements Matcher.
func (c *client) BestMatch(ctx context.Context, query string) (nameindex.MatchResult, bool) {
	return c.index.BestMatch(ctx, query)
}

// ReconcileBatch implements Reconciler.
func (c *client) ReconcileBatch(ctx context.Context, batchID string, detections []catalog.Detection) ([]catalog.DetectionRecord, error) {
	result, err := c.Reconcile(ctx, batchID, detections)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// Reconcile implements Reconciler.
func (c *client) Reconcile(ctx context.Context, batchID string, detections []catalog.Detection) (*reconcile.Result, error) {
	result, err := c.workflow.Reconcile(ctx, batchID, detections)
	if err != nil {
		return nil, err
	}
	c.hooks.trigger(result.Synthesized, result.Records)
	return result, nil
}

// DeleteDetections implements Reconciler.
func (c *client) DeleteDetections(ctx context.Context, batchID string, ids []uint) ([]catalog.DetectionRecord, error) {
	return c.workflow.DeleteByIDs(ctx, batchID, ids)
}

// Results implements Reconciler.
func (c *client) Results(ctx context.Context, batchID string) ([]catalog.DetectionRecord, error) {
	// an empty id list deletes nothing and re-reads the batch
	return c.workflow.DeleteByIDs(ctx, batchID, nil)
}

// SaveBatch implements Reconciler.
func (c *client) SaveBatch(ctx context.Context, batch catalog.Batch) error {
	batch.ID = strings.TrimSpace(batch.ID)
	if batch.ID == "" {
		return errors.NewValidationError("batch_id", batch.ID, "batch id is required")
	}
	if batch.ImageWidth < 0 || batch.ImageHeight < 0 {
		return errors.NewValidationError("image_size", batch, "image dimensions must not be negative")
	}
	if err := c.store.SaveBatch(ctx, &batch); err != nil {
		return errors.WrapResource("save", "batch", batch.ID, err)
	}
	logging.FromContext(logging.WithBatch(ctx, batch.ID)).Debug().
		Int("width", batch.ImageWidth).
		Int("height", batch.ImageHeight).
		Msg("Saved batch")
	return nil
}

// EstimateWeights implements Estimator.
func (c *client) EstimateWeights(ctx context.Context, batchID string) ([]catalog.WeightEstimate, error) {
	return c.estimator.Estimate(ctx, batchID)
}

// Entry implements Catalog.
func (c *client) Entry(ctx context.Context, name string) (*catalog.Entry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", name, "name is required")
	}
	entry, err := c.store.EntryByName(ctx, name)
	if errors.IsNotFound(err) {
		return nil, errors.NewNotFoundError("catalog entry", name)
	}
	if err != nil {
		return nil, errors.WrapResource("get", "catalog entry", name, err)
	}
	return entry, nil
}

// Names implements Catalog.
func (c *client) Names(ctx context.Context) []string {
	return c.index.AllNames(ctx)
}

// RefreshIndex implements Catalog.
func (c *client) RefreshIndex(ctx context.Context) error {
	return c.index.Refresh(ctx)
}

// OnEntrySynthesized implements Hooks.
func (c *client) OnEntrySynthesized(fn EntrySynthesizedHook) {
	c.hooks.OnEntrySynthesized(fn)
}

// OnDetectionRecorded implements Hooks.
func (c *client) OnDetectionRecorded(fn DetectionRecordedHook) {
	c.hooks.OnDetectionRecorded(fn)
}
