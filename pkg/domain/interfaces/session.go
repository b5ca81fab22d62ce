package interfaces

import (
	"context"

	"github.com/mnemo-ai/mnemo/pkg/domain/model"
)

// SessionStore is the ephemeral per-user buffer of recent conversation
// turns. Implementations must serialize appends per user so that turn
// ordering is preserved, keep at most K turns per user (FIFO eviction),
// and expire idle sessions after the configured TTL.
type SessionStore interface {
	// Append adds turns to the user's session buffer. All turns of a single
	// call are appended atomically so that concurrent interactions for the
	// same user never interleave within an exchange.
	Append(ctx context.Context, turns ...model.SessionTurn) error

	// Recent returns up to k most recent turns in chronological order
	Recent(ctx context.Context, userID model.UserID, k int) ([]model.SessionTurn, error)

	// Clear removes the user's session buffer
	Clear(ctx context.Context, userID model.UserID) error
}
