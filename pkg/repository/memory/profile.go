package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
)

type profileRepository struct {
	mu       sync.RWMutex
	profiles map[model.UserID]*model.UserProfile
}

func newProfileRepository() *profileRepository {
	return &profileRepository{
		profiles: make(map[model.UserID]*model.UserProfile),
	}
}

func copyProfile(p *model.UserProfile) *model.UserProfile {
	copied := *p
	copied.Conditions = append([]string(nil), p.Conditions...)
	copied.Interests = append([]string(nil), p.Interests...)
	return &copied
}

func (r *profileRepository) Put(ctx context.Context, profile *model.UserProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := copyProfile(profile)
	if existing, exists := r.profiles[stored.UserID]; exists {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	r.profiles[stored.UserID] = stored
	return nil
}

func (r *profileRepository) Get(ctx context.Context, userID model.UserID) (*model.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, exists := r.profiles[userID]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "profile not found", goerr.V("userID", userID))
	}
	return copyProfile(profile), nil
}

func (r *profileRepository) Delete(ctx context.Context, userID model.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[userID]; !exists {
		return goerr.Wrap(types.ErrNotFound, "profile not found", goerr.V("userID", userID))
	}
	delete(r.profiles, userID)
	return nil
}
