package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/config"
)

func TestNewClient_OpenAI(t *testing.T) {
	client, embedder, err := NewClient(config.LLMConfig{Provider: "openai", APIKey: "sk-test", Model: "gpt-4o-mini"})

	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.NotNil(t, embedder)
}

func TestNewClient_AnthropicHasNoEmbedder(t *testing.T) {
	client, embedder, err := NewClient(config.LLMConfig{Provider: "anthropic", APIKey: "sk-ant", Model: "claude-sonnet"})

	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Nil(t, embedder)
}

func TestNewClient_CompatibleProviders(t *testing.T) {
	for _, provider := range []string{"ollama", "zhipu", "deepseek"} {
		client, embedder, err := NewClient(config.LLMConfig{
			Provider: provider,
			Model:    "some-model",
			BaseURL:  "http://localhost:11434",
		})
		require.NoError(t, err, provider)
		assert.NotNil(t, client, provider)
		assert.NotNil(t, embedder, provider)
	}
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, _, err := NewClient(config.LLMConfig{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}
