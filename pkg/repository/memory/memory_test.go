package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/repository"
	"github.com/agentstation/carryon/pkg/repository/memory"
)

func TestStoreEntries(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	e := &catalog.Entry{Name: "Laptop", CarryOn: catalog.CarryOnAllowed, Checked: catalog.CheckedAllowed, Source: catalog.SourceSeed}
	id, err := s.InsertEntry(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, id, e.ID)

	_, err = s.InsertEntry(ctx, &catalog.Entry{Name: "Laptop"})
	assert.ErrorIs(t, err, repository.ErrDuplicateName)
	assert.True(t, errors.IsAlreadyExists(err))

	got, err := s.EntryByName(ctx, "Laptop")
	require.NoError(t, err)
	assert.Equal(t, *e, *got)

	_, err = s.EntryByName(ctx, "laptop")
	assert.ErrorIs(t, err, repository.ErrEntryNotFound)
	assert.True(t, errors.IsNotFound(err))

	_, err = s.EntryByID(ctx, 99)
	assert.True(t, errors.IsNotFound(err))

	names, err := s.AllNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []catalog.NameRef{{ID: id, Name: "Laptop"}}, names)
}

func TestStoreDetections(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	for _, label := range []string{"laptop", "pen", "bottle"} {
		_, err := s.InsertDetection(ctx, &catalog.DetectionRecord{BatchID: "b1", RawLabel: label})
		require.NoError(t, err)
	}
	_, err := s.InsertDetection(ctx, &catalog.DetectionRecord{BatchID: "b2", RawLabel: "knife"})
	require.NoError(t, err)

	recs, err := s.DetectionsByBatch(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "laptop", recs[0].RawLabel)

	n, err := s.DeleteDetections(ctx, []uint{recs[1].ID, 999})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	recs, err = s.DetectionsByBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	empty, err := s.DetectionsByBatch(ctx, "unknown")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestStoreWeightEstimatesAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	id, err := s.InsertDetection(ctx, &catalog.DetectionRecord{BatchID: "b1", RawLabel: "laptop"})
	require.NoError(t, err)

	err = s.SaveWeightEstimates(ctx, []catalog.WeightEstimate{
		{DetectionID: id, Value: 1.5, Unit: catalog.Kilograms},
		{DetectionID: 404, Value: 1, Unit: catalog.Grams},
	})
	require.Error(t, err)

	recs, err := s.DetectionsByBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Nil(t, recs[0].Weight)

	require.NoError(t, s.SaveWeightEstimates(ctx, []catalog.WeightEstimate{{DetectionID: id, Value: 1.5, Unit: catalog.Kilograms}}))
	recs, err = s.DetectionsByBatch(ctx, "b1")
	require.NoError(t, err)
	require.NotNil(t, recs[0].Weight)
	assert.Equal(t, 1.5, recs[0].Weight.Value)
}

func TestStoreBatches(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	_, err := s.Batch(ctx, "b1")
	assert.ErrorIs(t, err, repository.ErrBatchNotFound)

	require.NoError(t, s.SaveBatch(ctx, &catalog.Batch{ID: "b1", ImageWidth: 640, ImageHeight: 480}))
	b, err := s.Batch(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 640, b.ImageWidth)

	assert.True(t, errors.IsValidationError(s.SaveBatch(ctx, &catalog.Batch{})))
}
