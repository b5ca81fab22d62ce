package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
)

// EmbeddingDimension is the vector size used by the semantic index
const EmbeddingDimension = 384

// FragmentID is a UUID-based identifier for a memory fragment
type FragmentID string

// NewFragmentID generates a new UUID v4 FragmentID
func NewFragmentID() FragmentID {
	return FragmentID(uuid.New().String())
}

// String returns the string representation of the fragment ID
func (id FragmentID) String() string {
	return string(id)
}

// UserID identifies a companion user
type UserID string

// String returns the string representation of the user ID
func (id UserID) String() string {
	return string(id)
}

// Fragment is a single persisted unit of memory: one classified interaction
// or extracted fact. The structured store is the sole owner of fragment
// lifecycle state; the semantic index only holds a back-reference from
// EmbeddingRef to the fragment ID.
//
// Version implements optimistic concurrency: every mutation increments it,
// and tier transitions carry the version the writer last observed so that a
// concurrent access bump is never overwritten.
type Fragment struct {
	ID             FragmentID
	UserID         UserID
	Content        string `masq:"secret"`
	Category       types.Category
	Importance     int
	EmbeddingRef   string
	CreatedAt      time.Time
	LastAccessedAt time.Time
	Tier           types.Tier
	Version        int64
}

// Validate checks structural invariants of the fragment
func (f *Fragment) Validate() error {
	if f.UserID == "" {
		return goerr.Wrap(types.ErrInvalidInput, "fragment user ID is required")
	}
	if f.Content == "" {
		return goerr.Wrap(types.ErrInvalidInput, "fragment content is required")
	}
	if !f.Category.IsValid() {
		return goerr.Wrap(types.ErrInvalidInput, "invalid fragment category",
			goerr.V("category", f.Category))
	}
	if f.Importance < 1 || f.Importance > 5 {
		return goerr.Wrap(types.ErrInvalidInput, "fragment importance must be between 1 and 5",
			goerr.V("importance", f.Importance))
	}
	if !f.Tier.IsValid() {
		return goerr.Wrap(types.ErrInvalidInput, "invalid fragment tier",
			goerr.V("tier", f.Tier))
	}
	return nil
}

// SearchResult pairs a fragment with its combined relevance score
type SearchResult struct {
	Fragment *Fragment
	Score    float32
}
