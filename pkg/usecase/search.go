package usecase

import (
	"context"
	"errors"
	"slices"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
	"github.com/mnemo-ai/mnemo/pkg/utils/logging"
)

const (
	searchDefaultLimit = 20

	// Direct search casts a wider net than live context assembly
	searchThreshold = 0.5

	similarityWeight = 0.6
	importanceWeight = 0.4
)

// SearchMemories runs a direct semantic search over the user's fragments,
// joined with the structured store and filtered by category and tier.
// Unlike context assembly it is not budget-bound, and archived fragments
// are included by default. When the embedding service or index is down the
// search falls back to structured queries only.
func (uc *UseCases) SearchMemories(ctx context.Context, userID model.UserID, query string, filter interfaces.FragmentQueryFilter) ([]*model.SearchResult, error) {
	if userID == "" {
		return nil, goerr.Wrap(types.ErrInvalidInput, "user ID is required")
	}
	if filter.Limit <= 0 {
		filter.Limit = searchDefaultLimit
	}
	if len(filter.Tiers) == 0 {
		filter.Tiers = []types.Tier{types.TierActive, types.TierArchive}
	}

	if query != "" {
		results, err := uc.searchSemantic(ctx, userID, query, filter)
		if err == nil {
			return results, nil
		}
		logging.From(ctx).Warn("semantic search unavailable, falling back to structured query",
			"user_id", userID, "error", err.Error())
	}

	fragments, err := uc.repo.Fragment().QueryByUser(ctx, userID, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query fragments",
			goerr.V("user_id", userID))
	}
	results := make([]*model.SearchResult, 0, len(fragments))
	for _, fragment := range fragments {
		results = append(results, &model.SearchResult{Fragment: fragment})
	}
	return results, nil
}

func (uc *UseCases) searchSemantic(ctx context.Context, userID model.UserID, query string, filter interfaces.FragmentQueryFilter) ([]*model.SearchResult, error) {
	vector, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed search query")
	}

	matches, err := uc.index.Query(ctx, userID, vector, filter.Limit, searchThreshold)
	if err != nil {
		return nil, goerr.Wrap(err, "semantic index query failed")
	}

	results := make([]*model.SearchResult, 0, len(matches))
	for _, match := range matches {
		fragment, err := uc.repo.Fragment().Get(ctx, match.FragmentID)
		if err != nil {
			// The index can lag behind deletions; a dangling reference is
			// skipped, not an error.
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			return nil, goerr.Wrap(err, "failed to resolve search match",
				goerr.V("fragment_id", match.FragmentID))
		}
		if len(filter.Categories) > 0 && !slices.Contains(filter.Categories, fragment.Category) {
			continue
		}
		if !slices.Contains(filter.Tiers, fragment.Tier) {
			continue
		}

		score := similarityWeight*match.Score + importanceWeight*(float32(fragment.Importance)/5.0)
		results = append(results, &model.SearchResult{Fragment: fragment, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Fragment.LastAccessedAt.After(results[j].Fragment.LastAccessedAt)
	})
	if len(results) > filter.Limit {
		results = results[:filter.Limit]
	}
	return results, nil
}
