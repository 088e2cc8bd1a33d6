package reconcile

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/logging"
	"github.com/agentstation/carryon/pkg/nameindex"
	"github.com/agentstation/carryon/pkg/oracle"
	"github.com/agentstation/carryon/pkg/repository"
	"github.com/agentstation/carryon/pkg/repository/memory"
	"github.com/agentstation/carryon/pkg/synth"
)

const forbiddenReply = `{"item_data":{"item_name":"xyz-unknown-item","carry_on_allowed":"아니요","checked_baggage_allowed":"아니요",
"notes":"반입 금지","item_name_EN":"Unknown","notes_EN":"Prohibited","source":"API"}}`

type fixture struct {
	store       *memory.Store
	index       *nameindex.Index
	oracleCalls *atomic.Int32
	workflow    Workflow
	recorder    *tierRecorder
}

type tierRecorder struct{ tiers []string }

func (r *tierRecorder) RecordResolution(tier string) { r.tiers = append(r.tiers, tier) }

type countingSource struct {
	repository.NameSource
	calls atomic.Int32
}

func (c *countingSource) AllNames(ctx context.Context) ([]catalog.NameRef, error) {
	c.calls.Add(1)
	return c.NameSource.AllNames(ctx)
}

func seed(t *testing.T, store *memory.Store) {
	t.Helper()
	entries := []catalog.Entry{
		{Name: "Laptop", NameEN: "Laptop", CarryOn: "예", Checked: "예", Source: catalog.SourceSeed},
		{Name: "Pen", CarryOn: "예", Checked: "예", Source: catalog.SourceSeed},
		{Name: "Knives", CarryOn: "아니요", Checked: "예 (특별 지침)", Source: catalog.SourceSeed},
		{Name: "Power Banks", CarryOn: "예 (특별 지침)", Checked: "아니요", Source: catalog.SourceSeed},
		{Name: "Shampoo", CarryOn: catalog.CarryOnLiquidLimit, Checked: "예", Source: catalog.SourceSeed},
	}
	for i := range entries {
		_, err := store.InsertEntry(context.Background(), &entries[i])
		require.NoError(t, err)
	}
}

func newFixture(t *testing.T, reply string, replyErr error) *fixture {
	t.Helper()

	store := memory.New()
	seed(t, store)

	calls := &atomic.Int32{}
	o := oracle.Func(func(context.Context, oracle.Request) (string, error) {
		calls.Add(1)
		return reply, replyErr
	})

	index := nameindex.New(store)
	rec := &tierRecorder{}
	wf, err := New(store, index,
		WithSynthesizer(synth.New(o, store)),
		WithRecorder(rec),
	)
	require.NoError(t, err)

	return &fixture{store: store, index: index, oracleCalls: calls, workflow: wf, recorder: rec}
}

func TestReconcileLaptopScenario(t *testing.T) {
	f := newFixture(t, "", nil)

	res, err := f.workflow.Reconcile(context.Background(), "img-1", []catalog.Detection{
		{Label: "laptop", BBox: catalog.BBox{0, 0, 0.3, 0.3}},
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "Laptop", rec.ResolvedName)
	assert.Equal(t, catalog.PackingBoth, rec.Packing)
	assert.Equal(t, "laptop", rec.RawLabel)
	assert.Equal(t, "img-1", rec.BatchID)
	assert.NotZero(t, rec.ID)

	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, TierFuzzy, res.Outcomes[0].Tier)
	assert.Equal(t, "Laptops", res.Outcomes[0].MappedName)
	assert.GreaterOrEqual(t, res.Outcomes[0].Score, 90.0)
	assert.Equal(t, int32(0), f.oracleCalls.Load())

	stored, err := f.store.DetectionsByBatch(context.Background(), "img-1")
	require.NoError(t, err)
	assert.Equal(t, res.Records, stored)
}

func TestReconcileSynthesizesUnknownItem(t *testing.T) {
	f := newFixture(t, forbiddenReply, nil)
	ctx := context.Background()

	res, err := f.workflow.Reconcile(ctx, "img-2", []catalog.Detection{{Label: "xyz-unknown-item", BBox: catalog.BBox{1, 1, 5, 5}}})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, catalog.PackingNone, res.Records[0].Packing)
	assert.Equal(t, TierSynthesized, res.Outcomes[0].Tier)

	entry, err := f.store.EntryByName(ctx, "xyz-unknown-item")
	require.NoError(t, err)
	assert.Equal(t, catalog.SourceAPI, entry.Source)
	assert.Equal(t, entry.ID, res.Records[0].CatalogID)
	require.Len(t, res.Synthesized, 1)
	assert.Equal(t, entry.ID, res.Synthesized[0].ID)

	_, ok := f.index.IDForName(ctx, "xyz-unknown-item")
	assert.True(t, ok, "the index is refreshed after synthesis")
}

func TestReconcileSynthesizesOncePerName(t *testing.T) {
	f := newFixture(t, forbiddenReply, nil)

	res, err := f.workflow.Reconcile(context.Background(), "img-3", []catalog.Detection{
		{Label: "xyz-unknown-item"},
		{Label: "xyz-unknown-item"},
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, int32(1), f.oracleCalls.Load())
	assert.Equal(t, TierSynthesized, res.Outcomes[0].Tier)
	assert.Equal(t, TierExact, res.Outcomes[1].Tier)
}

func TestReconcileUndecodableReplyDropsItem(t *testing.T) {
	f := newFixture(t, "Sorry, I cannot help with that.", nil)
	logger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), logger.Logger)

	res, err := f.workflow.Reconcile(ctx, "img-4", []catalog.Detection{
		{Label: "pen"},
		{Label: "xyz-unknown-item"},
	})
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	assert.Equal(t, "Pen", res.Records[0].ResolvedName)
	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, TierExact, res.Outcomes[0].Tier)
	assert.Equal(t, TierUnresolved, res.Outcomes[1].Tier)
	assert.Equal(t, 1, res.Metadata.Stats.Dropped())
	assert.True(t, res.HasWarnings())

	_, err = f.store.EntryByName(ctx, "xyz-unknown-item")
	assert.True(t, errors.IsNotFound(err), "no catalog entry is created")

	logger.AssertContains(t, "Skipping detection")
	logger.AssertContains(t, `"batch_id":"img-4"`)
	logger.AssertContains(t, `"raw_label":"xyz-unknown-item"`)
	assert.Equal(t, []string{"exact", "unresolved"}, f.recorder.tiers)
}

func TestReconcileOracleFailureDropsItem(t *testing.T) {
	f := newFixture(t, "", errors.ErrOracleUnavailable)

	res, err := f.workflow.Reconcile(context.Background(), "img-5", []catalog.Detection{{Label: "mystery"}})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, TierUnresolved, res.Outcomes[0].Tier)
}

func TestReconcileEmptyBatchHasNoSideEffects(t *testing.T) {
	store := memory.New()
	src := &countingSource{NameSource: store}
	index := nameindex.New(src)
	calls := &atomic.Int32{}
	o := oracle.Func(func(context.Context, oracle.Request) (string, error) {
		calls.Add(1)
		return forbiddenReply, nil
	})

	wf, err := New(store, index, WithSynthesizer(synth.New(o, store)))
	require.NoError(t, err)

	res, err := wf.Reconcile(context.Background(), "img-6", nil)
	require.NoError(t, err)
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
	assert.Equal(t, "Nothing to reconcile.", res.Summary())

	assert.Equal(t, int32(0), src.calls.Load())
	assert.Equal(t, int32(0), calls.Load())
}

func TestReconcileValidatesBeforeSideEffects(t *testing.T) {
	f := newFixture(t, forbiddenReply, nil)
	ctx := context.Background()

	_, err := f.workflow.Reconcile(ctx, "  ", []catalog.Detection{{Label: "pen"}})
	assert.True(t, errors.IsValidationError(err))

	_, err = f.workflow.Reconcile(ctx, "img-7", []catalog.Detection{{Label: "pen"}, {Label: " "}})
	require.Error(t, err)
	var verr *errors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "detections[1].label", verr.Field)

	recs, err := f.store.DetectionsByBatch(ctx, "img-7")
	require.NoError(t, err)
	assert.Empty(t, recs, "the valid first item was not stored")
}

func TestReconcilePackingClasses(t *testing.T) {
	f := newFixture(t, "", nil)

	res, err := f.workflow.Reconcile(context.Background(), "img-8", []catalog.Detection{
		{Label: "knife"},
		{Label: "portable-charger"},
		{Label: "shampoo"},
		{Label: "pen"},
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 4)

	got := make(map[string]catalog.PackingClass)
	for _, r := range res.Records {
		got[r.ResolvedName] = r.Packing
	}
	assert.Equal(t, map[string]catalog.PackingClass{
		"Knives":      catalog.PackingNone,
		"Power Banks": catalog.PackingNone,
		"Shampoo":     catalog.PackingChecked,
		"Pen":         catalog.PackingBoth,
	}, got)
}

func TestReconcileWithoutSynthesizer(t *testing.T) {
	store := memory.New()
	seed(t, store)
	wf, err := New(store, nameindex.New(store))
	require.NoError(t, err)

	res, err := wf.Reconcile(context.Background(), "img-9", []catalog.Detection{{Label: "xyz-unknown-item"}})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, TierUnresolved, res.Outcomes[0].Tier)
}

type brokenReads struct{ *memory.Store }

func (brokenReads) EntryByName(context.Context, string) (*catalog.Entry, error) {
	return nil, fmt.Errorf("database is locked")
}

func TestReconcileReadFailureSkipsItem(t *testing.T) {
	store := memory.New()
	seed(t, store)
	wf, err := New(brokenReads{store}, nameindex.New(store))
	require.NoError(t, err)

	res, err := wf.Reconcile(context.Background(), "img-10", []catalog.Detection{{Label: "pen"}})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, TierFailed, res.Outcomes[0].Tier)
	assert.Contains(t, res.Outcomes[0].Reason, "database is locked")
}

type brokenWrites struct{ *memory.Store }

func (brokenWrites) InsertDetection(context.Context, *catalog.DetectionRecord) (uint, error) {
	return 0, fmt.Errorf("disk full")
}

func TestReconcileWriteFailureAborts(t *testing.T) {
	store := memory.New()
	seed(t, store)
	wf, err := New(brokenWrites{store}, nameindex.New(store))
	require.NoError(t, err)

	res, err := wf.Reconcile(context.Background(), "img-11", []catalog.Detection{{Label: "pen"}, {Label: "laptop"}})
	require.Error(t, err)
	assert.Nil(t, res)

	var resErr *errors.ResourceError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "detection", resErr.Resource)
}

func TestDeleteByIDs(t *testing.T) {
	f := newFixture(t, "", nil)
	ctx := context.Background()

	res, err := f.workflow.Reconcile(ctx, "img-12", []catalog.Detection{{Label: "pen"}, {Label: "laptop"}, {Label: "knife"}})
	require.NoError(t, err)
	require.Len(t, res.Records, 3)

	t.Run("nonexistent id leaves the batch unchanged", func(t *testing.T) {
		remaining, err := f.workflow.DeleteByIDs(ctx, "img-12", []uint{9999})
		require.NoError(t, err)
		assert.Equal(t, res.Records, remaining)
	})

	t.Run("empty id list", func(t *testing.T) {
		remaining, err := f.workflow.DeleteByIDs(ctx, "img-12", nil)
		require.NoError(t, err)
		assert.Len(t, remaining, 3)
	})

	t.Run("deletes and re-reads", func(t *testing.T) {
		remaining, err := f.workflow.DeleteByIDs(ctx, "img-12", []uint{res.Records[1].ID})
		require.NoError(t, err)
		require.Len(t, remaining, 2)
		assert.Equal(t, "Pen", remaining[0].ResolvedName)
		assert.Equal(t, "Knives", remaining[1].ResolvedName)
	})

	t.Run("unknown batch", func(t *testing.T) {
		remaining, err := f.workflow.DeleteByIDs(ctx, "nope", []uint{1})
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})

	t.Run("batch id required", func(t *testing.T) {
		_, err := f.workflow.DeleteByIDs(ctx, "", []uint{1})
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestNewValidation(t *testing.T) {
	store := memory.New()

	_, err := New(nil, nameindex.New(store))
	assert.Error(t, err)

	_, err = New(store, nil)
	assert.Error(t, err)

	_, err = New(store, nameindex.New(store), WithAcceptThreshold(120))
	assert.Error(t, err)

	_, err = New(store, nameindex.New(store), WithLabelMapper(nil))
	assert.Error(t, err)
}

func TestResultReport(t *testing.T) {
	f := newFixture(t, "", nil)

	res, err := f.workflow.Reconcile(context.Background(), "img-13", []catalog.Detection{{Label: "laptop"}, {Label: "pen"}})
	require.NoError(t, err)

	assert.Equal(t, "Reconciled 2 of 2 detections (exact 1, fuzzy 1, synthesized 0, dropped 0).", res.Summary())
	report := res.Report()
	assert.Contains(t, report, "Batch: img-13")
	assert.Contains(t, report, "fuzzy")
}
