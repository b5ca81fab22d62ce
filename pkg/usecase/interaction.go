package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
	"github.com/mnemo-ai/mnemo/pkg/utils/async"
	"github.com/mnemo-ai/mnemo/pkg/utils/errutil"
	"github.com/mnemo-ai/mnemo/pkg/utils/retry"
)

// CreateInteraction records one conversational exchange: the fragment is
// written synchronously and durably, the session buffer and interaction log
// are updated, and the embedding upsert is submitted fire-and-forget.
// It returns as soon as the durable write completes.
func (uc *UseCases) CreateInteraction(ctx context.Context, userID model.UserID, message, response string) (model.FragmentID, error) {
	if userID == "" {
		return "", goerr.Wrap(types.ErrInvalidInput, "user ID is required")
	}
	if message == "" {
		return "", goerr.Wrap(types.ErrInvalidInput, "message is required")
	}
	if response == "" {
		return "", goerr.Wrap(types.ErrInvalidInput, "response is required")
	}
	if _, err := uc.getProfileCached(ctx, userID); err != nil {
		return "", goerr.Wrap(err, "unknown user", goerr.V("user_id", userID))
	}

	started := uc.now()
	category, importance := uc.classifier.Classify(ctx, message, response)

	fragment := &model.Fragment{
		ID:             model.NewFragmentID(),
		UserID:         userID,
		Content:        fmt.Sprintf("User: %s\nAI: %s", message, response),
		Category:       category,
		Importance:     importance,
		EmbeddingRef:   uuid.New().String(),
		CreatedAt:      started,
		LastAccessedAt: started,
		Tier:           types.TierActive,
		Version:        1,
	}
	if err := uc.repo.Fragment().Insert(ctx, fragment); err != nil {
		return "", goerr.Wrap(err, "failed to insert fragment",
			goerr.V("user_id", userID))
	}

	// Both turns go in one call; the session store keeps them adjacent even
	// when another exchange for the same user lands concurrently.
	turns := []model.SessionTurn{
		{UserID: userID, Role: types.RoleUser, Text: message, Timestamp: started},
		{UserID: userID, Role: types.RoleAI, Text: response, Timestamp: started},
	}
	if err := uc.session.Append(ctx, turns...); err != nil {
		errutil.Handle(ctx, err, "failed to append session turns")
	}

	log := &model.InteractionLog{
		ID:           uuid.New().String(),
		UserID:       userID,
		UserMessage:  message,
		AIResponse:   response,
		ResponseTime: uc.now().Sub(started),
		CreatedAt:    started,
	}
	if err := uc.repo.InteractionLog().Append(ctx, log); err != nil {
		errutil.Handle(ctx, err, "failed to append interaction log")
	}

	uc.submitEmbedding(ctx, fragment)

	return fragment.ID, nil
}

// submitEmbedding embeds the fragment content and upserts the vector in the
// background. Failures after retries leave the fragment without a vector;
// it stays reachable through structured queries.
func (uc *UseCases) submitEmbedding(ctx context.Context, fragment *model.Fragment) {
	content := fragment.Content
	meta := interfaces.VectorMetadata{
		FragmentID: fragment.ID,
		UserID:     fragment.UserID,
		Category:   fragment.Category,
	}
	vectorID := fragment.EmbeddingRef

	async.Dispatch(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		return retry.Do(ctx, retry.DefaultConfig, func() error {
			vector, err := uc.embedder.Embed(ctx, content)
			if err != nil {
				return err
			}
			return uc.index.Upsert(ctx, vectorID, vector, meta)
		})
	})
}
