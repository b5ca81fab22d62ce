package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
)

// Mock is a deterministic embedder for tests and local development. It
// derives a unit vector from a hash of the text, so equal texts always map
// to equal vectors and similarity search behaves consistently.
type Mock struct {
	dimension int
}

var _ interfaces.Embedder = &Mock{}

// NewMock creates a mock embedder with the default dimension
func NewMock() *Mock {
	return &Mock{dimension: model.EmbeddingDimension}
}

func (m *Mock) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vector := make([]float32, m.dimension)
	for i := range vector {
		seed = seed*6364136223846793005 + 1442695040888963407
		vector[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}
	return normalize(vector), nil
}

func (m *Mock) Dimensions() int {
	return m.dimension
}

func normalize(vector []float32) []float32 {
	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vector
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range vector {
		vector[i] *= scale
	}
	return vector
}
