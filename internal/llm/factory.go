package llm

import (
	"fmt"
	"strings"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/config"
)

// NewClient builds the chat and embedder clients for the configured
// provider. The embedder is nil for providers without an embeddings API.
func NewClient(cfg config.LLMConfig) (Client, EmbedderClient, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		c := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbeddingModel, cfg.BaseURL)
		return c, c, nil

	case "anthropic":
		return NewAnthropicClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil, nil

	case "ollama", "zhipu", "deepseek":
		// OpenAI-compatible endpoints. Ollama ignores the key but the
		// client requires one.
		baseURL := strings.TrimRight(cfg.BaseURL, "/")
		if baseURL != "" && !strings.HasSuffix(baseURL, "/v1") {
			baseURL += "/v1"
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = cfg.Provider
		}
		c := NewOpenAIClient(apiKey, cfg.Model, cfg.EmbeddingModel, baseURL)
		return c, c, nil

	default:
		return nil, nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
