// Package embedding wraps the external embedding service. Failures are
// reported as types.ErrEmbeddingFailure so callers can fall back instead
// of blocking fragment creation.
package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
)

// Client generates embeddings through a gollem LLM client
type Client struct {
	llm       gollem.LLMClient
	dimension int
}

var _ interfaces.Embedder = &Client{}

// Option customizes the embedding client
type Option func(*Client)

// WithDimension overrides the embedding vector size
func WithDimension(dimension int) Option {
	return func(c *Client) {
		c.dimension = dimension
	}
}

// New creates an embedding client backed by the given LLM client
func New(llm gollem.LLMClient, opts ...Option) *Client {
	c := &Client{
		llm:       llm,
		dimension: model.EmbeddingDimension,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, goerr.Wrap(types.ErrInvalidInput, "embedding text is required")
	}

	embeddings, err := c.llm.GenerateEmbedding(ctx, c.dimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(types.ErrEmbeddingFailure, "embedding request failed",
			goerr.V("cause", err.Error()))
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, goerr.Wrap(types.ErrEmbeddingFailure, "embedding service returned empty result")
	}

	vector := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		vector[i] = float32(v)
	}
	return vector, nil
}

func (c *Client) Dimensions() int {
	return c.dimension
}
