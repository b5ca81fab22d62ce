package interfaces

import (
	"context"

	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
)

// VectorMetadata is the weak back-reference stored alongside a vector.
// The index never owns fragment state; it can be rebuilt from the
// structured store at any time.
type VectorMetadata struct {
	FragmentID model.FragmentID
	UserID     model.UserID
	Category   types.Category
}

// Match is one semantic query hit
type Match struct {
	FragmentID model.FragmentID
	Score      float32
}

// SemanticIndex defines approximate-nearest-neighbor vector storage
type SemanticIndex interface {
	// Upsert stores or replaces a vector under vectorID
	Upsert(ctx context.Context, vectorID string, vector []float32, meta VectorMetadata) error

	// Query returns up to topN matches for the user's vectors with cosine
	// similarity at or above threshold, best first
	Query(ctx context.Context, userID model.UserID, vector []float32, topN int, threshold float32) ([]Match, error)

	// Delete removes a vector by ID. Deleting an unknown vector is not an
	// error.
	Delete(ctx context.Context, vectorID string) error
}
