package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
	"github.com/mnemo-ai/mnemo/pkg/utils/logging"
)

// GetUserStats summarizes memory usage for a single user
func (uc *UseCases) GetUserStats(ctx context.Context, userID model.UserID) (*model.UserStats, error) {
	if _, err := uc.getProfileCached(ctx, userID); err != nil {
		return nil, goerr.Wrap(err, "unknown user", goerr.V("user_id", userID))
	}

	stats := &model.UserStats{UserID: userID}

	active, err := uc.repo.Fragment().CountByUserAndTier(ctx, userID, types.TierActive)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count active fragments")
	}
	stats.ActiveFragments = active

	archived, err := uc.repo.Fragment().CountByUserAndTier(ctx, userID, types.TierArchive)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count archived fragments")
	}
	stats.ArchivedFragments = archived

	total, err := uc.repo.InteractionLog().CountByUser(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count interactions")
	}
	stats.TotalInteractions = total

	if last, err := uc.repo.InteractionLog().LastByUser(ctx, userID); err == nil {
		stats.LastInteraction = last.CreatedAt
	} else if !errors.Is(err, types.ErrNotFound) {
		logging.From(ctx).Warn("failed to look up last interaction",
			"user_id", userID, "error", err.Error())
	}

	return stats, nil
}
