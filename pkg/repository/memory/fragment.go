package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
)

type fragmentRepository struct {
	mu        sync.RWMutex
	fragments map[model.FragmentID]*model.Fragment
	byUser    map[model.UserID][]model.FragmentID
}

func newFragmentRepository() *fragmentRepository {
	return &fragmentRepository{
		fragments: make(map[model.FragmentID]*model.Fragment),
		byUser:    make(map[model.UserID][]model.FragmentID),
	}
}

func copyFragment(f *model.Fragment) *model.Fragment {
	copied := *f
	return &copied
}

func (r *fragmentRepository) Insert(ctx context.Context, fragment *model.Fragment) error {
	if err := fragment.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyFragment(fragment)
	if stored.ID == "" {
		stored.ID = model.NewFragmentID()
	}
	if _, exists := r.fragments[stored.ID]; exists {
		return goerr.Wrap(types.ErrInvalidInput, "fragment already exists",
			goerr.V("fragmentID", stored.ID))
	}

	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.LastAccessedAt.IsZero() {
		stored.LastAccessedAt = stored.CreatedAt
	}
	if stored.Version == 0 {
		stored.Version = 1
	}

	r.fragments[stored.ID] = stored
	r.byUser[stored.UserID] = append(r.byUser[stored.UserID], stored.ID)
	fragment.ID = stored.ID
	fragment.CreatedAt = stored.CreatedAt
	fragment.LastAccessedAt = stored.LastAccessedAt
	fragment.Version = stored.Version
	return nil
}

func (r *fragmentRepository) Get(ctx context.Context, id model.FragmentID) (*model.Fragment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fragment, exists := r.fragments[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "fragment not found", goerr.V("fragmentID", id))
	}
	return copyFragment(fragment), nil
}

func (r *fragmentRepository) QueryByUser(ctx context.Context, userID model.UserID, filter interfaces.FragmentQueryFilter) ([]*model.Fragment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*model.Fragment, 0)
	for _, id := range r.byUser[userID] {
		fragment, exists := r.fragments[id]
		if !exists {
			continue
		}
		if !matchesFilter(fragment, filter) {
			continue
		}
		results = append(results, copyFragment(fragment))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}
	return results, nil
}

func matchesFilter(f *model.Fragment, filter interfaces.FragmentQueryFilter) bool {
	if len(filter.Categories) > 0 {
		found := false
		for _, c := range filter.Categories {
			if f.Category == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(filter.Tiers) > 0 {
		found := false
		for _, t := range filter.Tiers {
			if f.Tier == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *fragmentRepository) UpdateTier(ctx context.Context, id model.FragmentID, tier types.Tier, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fragment, exists := r.fragments[id]
	if !exists {
		return goerr.Wrap(types.ErrNotFound, "fragment not found", goerr.V("fragmentID", id))
	}
	if fragment.Version != expectedVersion {
		return goerr.Wrap(types.ErrArchivalConflict, "fragment version mismatch",
			goerr.V("fragmentID", id),
			goerr.V("expected", expectedVersion),
			goerr.V("actual", fragment.Version))
	}
	if !fragment.Tier.CanTransitionTo(tier) {
		return goerr.Wrap(types.ErrInvalidInput, "tier transition not allowed",
			goerr.V("fragmentID", id),
			goerr.V("from", fragment.Tier),
			goerr.V("to", tier))
	}

	fragment.Tier = tier
	fragment.Version++
	return nil
}

func (r *fragmentRepository) TouchAccess(ctx context.Context, id model.FragmentID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fragment, exists := r.fragments[id]
	if !exists {
		return goerr.Wrap(types.ErrNotFound, "fragment not found", goerr.V("fragmentID", id))
	}

	if at.After(fragment.LastAccessedAt) {
		fragment.LastAccessedAt = at
	}
	fragment.Version++
	return nil
}

func (r *fragmentRepository) Delete(ctx context.Context, id model.FragmentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fragment, exists := r.fragments[id]
	if !exists {
		return goerr.Wrap(types.ErrNotFound, "fragment not found", goerr.V("fragmentID", id))
	}

	delete(r.fragments, id)
	ids := r.byUser[fragment.UserID]
	for i, fid := range ids {
		if fid == id {
			r.byUser[fragment.UserID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fragmentRepository) ListByTierLastAccessedBefore(ctx context.Context, tier types.Tier, cutoff time.Time, limit int) ([]*model.Fragment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := make([]*model.Fragment, 0)
	for _, fragment := range r.fragments {
		if fragment.Tier != tier {
			continue
		}
		if !fragment.LastAccessedAt.Before(cutoff) {
			continue
		}
		candidates = append(candidates, copyFragment(fragment))
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].LastAccessedAt.Before(candidates[j].LastAccessedAt)
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (r *fragmentRepository) CountByUserAndTier(ctx context.Context, userID model.UserID, tier types.Tier) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, id := range r.byUser[userID] {
		if fragment, exists := r.fragments[id]; exists && fragment.Tier == tier {
			count++
		}
	}
	return count, nil
}
