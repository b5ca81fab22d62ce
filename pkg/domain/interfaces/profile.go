package interfaces

import (
	"context"

	"github.com/mnemo-ai/mnemo/pkg/domain/model"
)

// ProfileRepository defines persistence for user profiles
type ProfileRepository interface {
	// Put creates or replaces a user profile
	Put(ctx context.Context, profile *model.UserProfile) error

	// Get retrieves a profile by user ID
	Get(ctx context.Context, userID model.UserID) (*model.UserProfile, error)

	// Delete removes a profile
	Delete(ctx context.Context, userID model.UserID) error
}
