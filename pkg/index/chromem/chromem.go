// Package chromem implements the semantic index on top of chromem-go, a
// pure-Go embedded vector database. Vectors are precomputed by the
// embedding client; chromem only stores and searches them.
package chromem

import (
	"context"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
)

const collectionName = "fragments"

// Index is the chromem-backed semantic index
type Index struct {
	db  *chromemgo.DB
	col *chromemgo.Collection

	// vector id -> owning user, kept so Delete does not need a user scope
	mu     sync.RWMutex
	owners map[string]model.UserID
}

var _ interfaces.SemanticIndex = &Index{}

// New creates an in-process chromem index
func New() (*Index, error) {
	db := chromemgo.NewDB()

	col, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create chromem collection")
	}

	return &Index{
		db:     db,
		col:    col,
		owners: make(map[string]model.UserID),
	}, nil
}

func (x *Index) Upsert(ctx context.Context, vectorID string, vector []float32, meta interfaces.VectorMetadata) error {
	if vectorID == "" || len(vector) == 0 {
		return goerr.Wrap(types.ErrInvalidInput, "vector ID and vector are required")
	}

	doc := chromemgo.Document{
		ID:        vectorID,
		Content:   string(meta.FragmentID),
		Embedding: vector,
		Metadata: map[string]string{
			"fragment_id": string(meta.FragmentID),
			"user_id":     string(meta.UserID),
			"category":    string(meta.Category),
		},
	}
	if err := x.col.AddDocument(ctx, doc); err != nil {
		return goerr.Wrap(types.ErrStoreUnavailable, "failed to upsert vector",
			goerr.V("vectorID", vectorID),
			goerr.V("cause", err.Error()))
	}

	x.mu.Lock()
	x.owners[vectorID] = meta.UserID
	x.mu.Unlock()
	return nil
}

func (x *Index) Query(ctx context.Context, userID model.UserID, vector []float32, topN int, threshold float32) ([]interfaces.Match, error) {
	if topN <= 0 {
		return nil, nil
	}

	where := map[string]string{"user_id": string(userID)}

	// chromem rejects nResults larger than the collection size
	n := topN
	if count := x.col.Count(); count < n {
		n = count
	}
	if n == 0 {
		return nil, nil
	}

	results, err := x.col.QueryEmbedding(ctx, vector, n, where, nil)
	if err != nil {
		return nil, goerr.Wrap(types.ErrStoreUnavailable, "semantic query failed",
			goerr.V("userID", userID),
			goerr.V("cause", err.Error()))
	}

	matches := make([]interfaces.Match, 0, len(results))
	for _, result := range results {
		if result.Similarity < threshold {
			continue
		}
		matches = append(matches, interfaces.Match{
			FragmentID: model.FragmentID(result.Metadata["fragment_id"]),
			Score:      result.Similarity,
		})
	}
	return matches, nil
}

func (x *Index) Delete(ctx context.Context, vectorID string) error {
	x.mu.RLock()
	_, known := x.owners[vectorID]
	x.mu.RUnlock()
	if !known {
		return nil
	}

	if err := x.col.Delete(ctx, nil, nil, vectorID); err != nil {
		return goerr.Wrap(types.ErrStoreUnavailable, "failed to delete vector",
			goerr.V("vectorID", vectorID),
			goerr.V("cause", err.Error()))
	}

	x.mu.Lock()
	delete(x.owners, vectorID)
	x.mu.Unlock()
	return nil
}
