package model

import (
	"time"

	"github.com/mnemo-ai/mnemo/pkg/domain/types"
)

// SessionTurn is one utterance in the ephemeral per-user session buffer.
// Turns live only in the session store, bounded to the last K turns per
// user with FIFO eviction.
type SessionTurn struct {
	UserID    UserID
	Role      types.Role
	Text      string `masq:"secret"`
	Timestamp time.Time
}
