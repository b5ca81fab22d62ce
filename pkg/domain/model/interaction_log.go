package model

import "time"

// InteractionLog is an append-only record of one conversational exchange
type InteractionLog struct {
	ID           string
	UserID       UserID
	UserMessage  string `masq:"secret"`
	AIResponse   string `masq:"secret"`
	ResponseTime time.Duration
	CreatedAt    time.Time
}

// UserStats summarizes memory usage for a single user
type UserStats struct {
	UserID            UserID
	ActiveFragments   int
	ArchivedFragments int
	TotalInteractions int64
	LastInteraction   time.Time
}
