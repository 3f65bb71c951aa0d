package embedding

import (
	"context"
	"fmt"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/llm"
)

// LLMEmbedder backs the Embedder port with a provider embeddings endpoint.
// The dimension must match what the configured embedding model returns.
type LLMEmbedder struct {
	client    llm.EmbedderClient
	name      string
	dimension int
}

func NewLLMEmbedder(client llm.EmbedderClient, name string, dimension int) *LLMEmbedder {
	if dimension <= 0 {
		dimension = 1536
	}
	return &LLMEmbedder{client: client, name: name, dimension: dimension}
}

func (e *LLMEmbedder) Name() string { return e.name }

func (e *LLMEmbedder) Dimension() int { return e.dimension }

func (e *LLMEmbedder) IsAvailable() bool { return e.client != nil }

func (e *LLMEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if !e.IsAvailable() {
		return nil, fmt.Errorf("embedder %q has no backing client", e.name)
	}
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := e.client.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	for i, v := range vectors {
		if len(v) != e.dimension {
			return nil, fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(v), e.dimension)
		}
	}
	return vectors, nil
}

func (e *LLMEmbedder) EmbedSingle(ctx context.Context, text string) ([]float64, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding returned no vector")
	}
	return vectors[0], nil
}
