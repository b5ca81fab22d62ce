package memory_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
	"github.com/mnemo-ai/mnemo/pkg/index/memory"
)

func meta(fragmentID, userID string) interfaces.VectorMetadata {
	return interfaces.VectorMetadata{
		FragmentID: model.FragmentID(fragmentID),
		UserID:     model.UserID(userID),
		Category:   types.CategoryInteraction,
	}
}

func TestIndexQuery(t *testing.T) {
	ctx := context.Background()
	idx := memory.New()

	gt.NoError(t, idx.Upsert(ctx, "v1", []float32{1, 0, 0}, meta("f1", "user-1"))).Required()
	gt.NoError(t, idx.Upsert(ctx, "v2", []float32{0.9, 0.1, 0}, meta("f2", "user-1"))).Required()
	gt.NoError(t, idx.Upsert(ctx, "v3", []float32{0, 1, 0}, meta("f3", "user-1"))).Required()
	gt.NoError(t, idx.Upsert(ctx, "v4", []float32{1, 0, 0}, meta("f4", "user-2"))).Required()

	t.Run("best first, user scoped, thresholded", func(t *testing.T) {
		matches, err := idx.Query(ctx, "user-1", []float32{1, 0, 0}, 10, 0.5)
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(2)
		gt.Value(t, matches[0].FragmentID).Equal(model.FragmentID("f1"))
		gt.Value(t, matches[1].FragmentID).Equal(model.FragmentID("f2"))
		gt.Bool(t, matches[0].Score >= matches[1].Score).True()
	})

	t.Run("topN bounds results", func(t *testing.T) {
		matches, err := idx.Query(ctx, "user-1", []float32{1, 0, 0}, 1, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(1)
		gt.Value(t, matches[0].FragmentID).Equal(model.FragmentID("f1"))
	})

	t.Run("other user's vectors are invisible", func(t *testing.T) {
		matches, err := idx.Query(ctx, "user-2", []float32{1, 0, 0}, 10, 0.5)
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(1)
		gt.Value(t, matches[0].FragmentID).Equal(model.FragmentID("f4"))
	})
}

func TestIndexUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	idx := memory.New()

	gt.NoError(t, idx.Upsert(ctx, "v1", []float32{1, 0}, meta("f1", "user-1"))).Required()
	gt.NoError(t, idx.Upsert(ctx, "v1", []float32{0, 1}, meta("f1", "user-1"))).Required()

	matches, err := idx.Query(ctx, "user-1", []float32{0, 1}, 10, 0.9)
	gt.NoError(t, err).Required()
	gt.Array(t, matches).Length(1)
}

func TestIndexDelete(t *testing.T) {
	ctx := context.Background()
	idx := memory.New()

	gt.NoError(t, idx.Upsert(ctx, "v1", []float32{1, 0}, meta("f1", "user-1"))).Required()
	gt.NoError(t, idx.Delete(ctx, "v1"))

	matches, err := idx.Query(ctx, "user-1", []float32{1, 0}, 10, 0)
	gt.NoError(t, err).Required()
	gt.Array(t, matches).Length(0)

	// Deleting an unknown vector is not an error.
	gt.NoError(t, idx.Delete(ctx, "v1"))
	gt.NoError(t, idx.Delete(ctx, "never-existed"))
}

func TestIndexInvalidUpsert(t *testing.T) {
	ctx := context.Background()
	idx := memory.New()

	gt.Error(t, idx.Upsert(ctx, "", []float32{1}, meta("f1", "user-1"))).Is(types.ErrInvalidInput)
	gt.Error(t, idx.Upsert(ctx, "v1", nil, meta("f1", "user-1"))).Is(types.ErrInvalidInput)
}
