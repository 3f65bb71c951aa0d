package embedding

import "context"

// Embedder maps text to a fixed-length numeric vector. Implementations must
// be deterministic: the same text always yields the same vector for the same
// embedder configuration.
type Embedder interface {
	Name() string
	Dimension() int
	IsAvailable() bool
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	EmbedSingle(ctx context.Context, text string) ([]float64, error)
}
