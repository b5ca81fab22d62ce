// Package memory implements the semantic index with exact cosine search
// over in-process vectors. It is the development and test companion of the
// chromem backend.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
)

type entry struct {
	vector []float32
	meta   interfaces.VectorMetadata
}

// Index is the in-memory semantic index
type Index struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

var _ interfaces.SemanticIndex = &Index{}

// New creates an empty in-memory index
func New() *Index {
	return &Index{
		entries: make(map[string]*entry),
	}
}

func (x *Index) Upsert(ctx context.Context, vectorID string, vector []float32, meta interfaces.VectorMetadata) error {
	if vectorID == "" || len(vector) == 0 {
		return goerr.Wrap(types.ErrInvalidInput, "vector ID and vector are required")
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	stored := make([]float32, len(vector))
	copy(stored, vector)
	x.entries[vectorID] = &entry{vector: stored, meta: meta}
	return nil
}

func (x *Index) Query(ctx context.Context, userID model.UserID, vector []float32, topN int, threshold float32) ([]interfaces.Match, error) {
	if topN <= 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	matches := make([]interfaces.Match, 0)
	for _, e := range x.entries {
		if e.meta.UserID != userID {
			continue
		}
		score := cosineSimilarity(vector, e.vector)
		if score < threshold {
			continue
		}
		matches = append(matches, interfaces.Match{
			FragmentID: e.meta.FragmentID,
			Score:      score,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches, nil
}

func (x *Index) Delete(ctx context.Context, vectorID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	delete(x.entries, vectorID)
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
