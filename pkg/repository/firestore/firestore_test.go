package firestore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
	"github.com/mnemo-ai/mnemo/pkg/repository/firestore"
)

func newRepo(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	repo, err := firestore.New(context.Background(), projectID, databaseID)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func TestFirestoreFragmentLifecycle(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	fragment := &model.Fragment{
		ID:         model.NewFragmentID(),
		UserID:     model.UserID("test-user-" + time.Now().Format("20060102150405")),
		Content:    "User: hello\nAI: hi",
		Category:   types.CategoryInteraction,
		Importance: 3,
		Tier:       types.TierActive,
	}
	gt.NoError(t, repo.Fragment().Insert(ctx, fragment)).Required()
	t.Cleanup(func() {
		_ = repo.Fragment().Delete(ctx, fragment.ID)
	})

	got, err := repo.Fragment().Get(ctx, fragment.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Content).Equal(fragment.Content)
	gt.Value(t, got.Version).Equal(int64(1))

	t.Run("stale version conflicts", func(t *testing.T) {
		gt.NoError(t, repo.Fragment().TouchAccess(ctx, fragment.ID, time.Now().UTC()))

		err := repo.Fragment().UpdateTier(ctx, fragment.ID, types.TierArchive, 1)
		gt.Error(t, err).Is(types.ErrArchivalConflict)
	})

	t.Run("current version transitions", func(t *testing.T) {
		current, err := repo.Fragment().Get(ctx, fragment.ID)
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Fragment().UpdateTier(ctx, fragment.ID, types.TierArchive, current.Version))

		archived, err := repo.Fragment().Get(ctx, fragment.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, archived.Tier).Equal(types.TierArchive)
	})
}

func TestFirestoreProfile(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	userID := model.UserID("test-user-" + time.Now().Format("20060102150405.000"))
	profile := &model.UserProfile{
		UserID:    userID,
		Name:      "Test",
		Age:       70,
		Interests: []string{"reading"},
	}
	gt.NoError(t, repo.Profile().Put(ctx, profile)).Required()
	t.Cleanup(func() {
		_ = repo.Profile().Delete(ctx, userID)
	})

	got, err := repo.Profile().Get(ctx, userID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Name).Equal("Test")

	_, err = repo.Profile().Get(ctx, "missing-user")
	gt.Error(t, err).Is(types.ErrNotFound)
}
