package interfaces

import (
	"context"

	"github.com/mnemo-ai/mnemo/pkg/domain/model"
)

// InteractionLogRepository defines the append-only interaction log
type InteractionLogRepository interface {
	// Append records one conversational exchange
	Append(ctx context.Context, log *model.InteractionLog) error

	// CountByUser returns the total number of logged exchanges for a user
	CountByUser(ctx context.Context, userID model.UserID) (int64, error)

	// LastByUser returns the most recent exchange for a user
	LastByUser(ctx context.Context, userID model.UserID) (*model.InteractionLog, error)
}
