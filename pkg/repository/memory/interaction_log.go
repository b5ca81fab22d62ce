package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
)

type interactionLogRepository struct {
	mu   sync.RWMutex
	logs map[model.UserID][]*model.InteractionLog
}

func newInteractionLogRepository() *interactionLogRepository {
	return &interactionLogRepository{
		logs: make(map[model.UserID][]*model.InteractionLog),
	}
}

func (r *interactionLogRepository) Append(ctx context.Context, log *model.InteractionLog) error {
	if log.UserID == "" {
		return goerr.Wrap(types.ErrInvalidInput, "interaction log user ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *log
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.logs[stored.UserID] = append(r.logs[stored.UserID], &stored)
	return nil
}

func (r *interactionLogRepository) CountByUser(ctx context.Context, userID model.UserID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.logs[userID])), nil
}

func (r *interactionLogRepository) LastByUser(ctx context.Context, userID model.UserID) (*model.InteractionLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logs := r.logs[userID]
	if len(logs) == 0 {
		return nil, goerr.Wrap(types.ErrNotFound, "no interactions logged", goerr.V("userID", userID))
	}
	last := *logs[len(logs)-1]
	return &last, nil
}
