package interfaces

import (
	"context"
	"time"

	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
)

// FragmentQueryFilter narrows structured fragment queries
type FragmentQueryFilter struct {
	Categories []types.Category
	Tiers      []types.Tier
	Limit      int
}

// FragmentRepository defines persistence for memory fragments. The
// structured store is the sole owner of fragment lifecycle state.
type FragmentRepository interface {
	// Insert creates a new fragment. The fragment must validate and its ID
	// must not already exist.
	Insert(ctx context.Context, fragment *model.Fragment) error

	// Get retrieves a fragment by ID
	Get(ctx context.Context, id model.FragmentID) (*model.Fragment, error)

	// QueryByUser retrieves fragments for a user, newest first
	QueryByUser(ctx context.Context, userID model.UserID, filter FragmentQueryFilter) ([]*model.Fragment, error)

	// UpdateTier transitions a fragment to a new tier under an optimistic
	// version check. It fails with types.ErrArchivalConflict when the stored
	// version differs from expectedVersion, and with types.ErrInvalidInput
	// when the transition is not a forward one.
	UpdateTier(ctx context.Context, id model.FragmentID, tier types.Tier, expectedVersion int64) error

	// TouchAccess bumps the fragment's last-accessed timestamp and version
	TouchAccess(ctx context.Context, id model.FragmentID, at time.Time) error

	// Delete removes a fragment permanently
	Delete(ctx context.Context, id model.FragmentID) error

	// ListByTierLastAccessedBefore returns up to limit fragments in the
	// given tier whose last access is older than cutoff, oldest first.
	// Used by the archival scheduler to find transition candidates.
	ListByTierLastAccessedBefore(ctx context.Context, tier types.Tier, cutoff time.Time, limit int) ([]*model.Fragment, error)

	// CountByUserAndTier returns the number of fragments a user has in a tier
	CountByUserAndTier(ctx context.Context, userID model.UserID, tier types.Tier) (int, error)
}
