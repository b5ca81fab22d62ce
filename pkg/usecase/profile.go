package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
)

// PutProfile creates or replaces a user profile and invalidates the cached
// copy
func (uc *UseCases) PutProfile(ctx context.Context, profile *model.UserProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	now := uc.now()
	if profile.CreatedAt.IsZero() {
		if existing, err := uc.repo.Profile().Get(ctx, profile.UserID); err == nil {
			profile.CreatedAt = existing.CreatedAt
		} else {
			profile.CreatedAt = now
		}
	}
	profile.UpdatedAt = now

	if err := uc.repo.Profile().Put(ctx, profile); err != nil {
		return goerr.Wrap(err, "failed to store profile",
			goerr.V("user_id", profile.UserID))
	}
	uc.profileCache.Del(profile.UserID.String())
	return nil
}

// GetProfile retrieves a user profile, served from cache when warm
func (uc *UseCases) GetProfile(ctx context.Context, userID model.UserID) (*model.UserProfile, error) {
	return uc.getProfileCached(ctx, userID)
}

// ClearSession drops the ephemeral session buffer for a user. Fragments
// and the profile are untouched.
func (uc *UseCases) ClearSession(ctx context.Context, userID model.UserID) error {
	return uc.session.Clear(ctx, userID)
}

func (uc *UseCases) getProfileCached(ctx context.Context, userID model.UserID) (*model.UserProfile, error) {
	if v, ok := uc.profileCache.Get(userID.String()); ok {
		if profile, ok := v.(*model.UserProfile); ok {
			return profile, nil
		}
	}

	profile, err := uc.repo.Profile().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	uc.profileCache.SetWithTTL(userID.String(), profile, 1, profileCacheTTL)
	return profile, nil
}
