package llm

import "context"

// Response is a single model completion plus its token usage. Usage counts
// are zero when the provider does not report them.
type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Client generates text from a prompt. Implementations must be safe for
// concurrent use; MapReduce fans chunk prompts out across goroutines.
type Client interface {
	Generate(ctx context.Context, prompt string) (*Response, error)
}

// EmbedderClient turns texts into fixed-dimension vectors.
type EmbedderClient interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}
