package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/repository"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Config{Path: MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEntries(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	laptop := &catalog.Entry{
		Name:    "Laptop",
		NameEN:  "Laptop",
		CarryOn: catalog.CarryOnAllowed,
		Checked: catalog.CheckedAllowed,
		Notes:   "배터리 분리 불가",
		Source:  catalog.SourceSeed,
		Weight:  &catalog.WeightReference{Range: "1-3kg", AvgValue: 2, AvgUnit: catalog.Kilograms},
	}
	id, err := s.InsertEntry(ctx, laptop)
	require.NoError(t, err)
	assert.Equal(t, id, laptop.ID)

	pen := &catalog.Entry{Name: "Pen", CarryOn: catalog.CarryOnAllowed, Checked: catalog.CheckedAllowed, Source: catalog.SourceAPI}
	_, err = s.InsertEntry(ctx, pen)
	require.NoError(t, err)

	t.Run("duplicate name", func(t *testing.T) {
		_, err := s.InsertEntry(ctx, &catalog.Entry{Name: "Laptop", CarryOn: catalog.CarryOnForbidden, Checked: catalog.CheckedForbidden})
		assert.ErrorIs(t, err, repository.ErrDuplicateName)
		assert.True(t, errors.IsAlreadyExists(err))
	})

	t.Run("by name round trips every field", func(t *testing.T) {
		got, err := s.EntryByName(ctx, "Laptop")
		require.NoError(t, err)
		assert.Equal(t, laptop, got)
	})

	t.Run("by name is exact", func(t *testing.T) {
		_, err := s.EntryByName(ctx, "laptop")
		assert.ErrorIs(t, err, repository.ErrEntryNotFound)
	})

	t.Run("by id", func(t *testing.T) {
		got, err := s.EntryByID(ctx, pen.ID)
		require.NoError(t, err)
		assert.Equal(t, "Pen", got.Name)
		assert.Nil(t, got.Weight)

		_, err = s.EntryByID(ctx, 999)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("all names", func(t *testing.T) {
		names, err := s.AllNames(ctx)
		require.NoError(t, err)
		assert.Equal(t, []catalog.NameRef{{ID: laptop.ID, Name: "Laptop"}, {ID: pen.ID, Name: "Pen"}}, names)
	})

	t.Run("name required", func(t *testing.T) {
		_, err := s.InsertEntry(ctx, &catalog.Entry{})
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestDetections(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	first := &catalog.DetectionRecord{
		BatchID:      "b1",
		RawLabel:     "laptop",
		ResolvedName: "Laptop",
		CatalogID:    7,
		BBox:         catalog.BBox{10, 20, 300, 400},
		Confidence:   0.91,
		Packing:      catalog.PackingBoth,
	}
	_, err := s.InsertDetection(ctx, first)
	require.NoError(t, err)
	for _, label := range []string{"pen", "bottle"} {
		_, err := s.InsertDetection(ctx, &catalog.DetectionRecord{BatchID: "b1", RawLabel: label, Packing: catalog.PackingNone})
		require.NoError(t, err)
	}
	_, err = s.InsertDetection(ctx, &catalog.DetectionRecord{BatchID: "b2", RawLabel: "knife", Packing: catalog.PackingNone})
	require.NoError(t, err)

	recs, err := s.DetectionsByBatch(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, *first, recs[0])

	n, err := s.DeleteDetections(ctx, []uint{recs[1].ID, 999})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.DeleteDetections(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	recs, err = s.DetectionsByBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	empty, err := s.DetectionsByBatch(ctx, "unknown")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = s.InsertDetection(ctx, &catalog.DetectionRecord{RawLabel: "orphan"})
	assert.True(t, errors.IsValidationError(err))
}

func TestWeightEstimatesAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	rec := &catalog.DetectionRecord{BatchID: "b1", RawLabel: "laptop", Packing: catalog.PackingBoth}
	id, err := s.InsertDetection(ctx, rec)
	require.NoError(t, err)

	err = s.SaveWeightEstimates(ctx, []catalog.WeightEstimate{
		{DetectionID: id, Value: 1.5, Unit: catalog.Kilograms},
		{DetectionID: 404, Value: 1, Unit: catalog.Grams},
	})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	recs, err := s.DetectionsByBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Nil(t, recs[0].Weight, "the transaction was rolled back")

	require.NoError(t, s.SaveWeightEstimates(ctx, []catalog.WeightEstimate{{DetectionID: id, Value: 1.5, Unit: catalog.Kilograms}}))
	recs, err = s.DetectionsByBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, &catalog.WeightEstimate{DetectionID: id, Value: 1.5, Unit: catalog.Kilograms}, recs[0].Weight)

	assert.NoError(t, s.SaveWeightEstimates(ctx, nil))
}

func TestBatches(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	_, err := s.Batch(ctx, "b1")
	assert.ErrorIs(t, err, repository.ErrBatchNotFound)

	require.NoError(t, s.SaveBatch(ctx, &catalog.Batch{ID: "b1", ImageWidth: 640, ImageHeight: 480}))
	require.NoError(t, s.SaveBatch(ctx, &catalog.Batch{ID: "b1", ImageWidth: 1280, ImageHeight: 960}))

	b, err := s.Batch(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, &catalog.Batch{ID: "b1", ImageWidth: 1280, ImageHeight: 960}, b)

	assert.True(t, errors.IsValidationError(s.SaveBatch(ctx, &catalog.Batch{})))
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "carryon.db")

	s, err := Open(ctx, Config{Path: path})
	require.NoError(t, err)
	_, err = s.InsertEntry(ctx, &catalog.Entry{Name: "Pen", CarryOn: catalog.CarryOnAllowed, Checked: catalog.CheckedAllowed, Source: catalog.SourceSeed})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, Config{Path: path})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.EntryByName(ctx, "Pen")
	require.NoError(t, err)
	assert.Equal(t, catalog.SourceSeed, got.Source)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
