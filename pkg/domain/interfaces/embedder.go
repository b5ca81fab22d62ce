package interfaces

import "context"

// Embedder converts text into a vector for the semantic index. The backing
// service is external and may fail or time out; callers treat failures as
// non-fatal (types.ErrEmbeddingFailure).
type Embedder interface {
	// Embed converts a single text to an embedding vector
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size
	Dimensions() int
}
