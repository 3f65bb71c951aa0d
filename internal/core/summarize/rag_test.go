package summarize

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/embedding"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/vectorstore"
)

func longArticle() string {
	var sb strings.Builder
	topics := []string{
		"人工智能技术在医疗领域的应用越来越广泛。",
		"机器学习模型需要大量标注数据进行训练。",
		"深度学习在图像识别任务上表现出色。",
		"自然语言处理让机器理解人类语言。",
		"知识图谱帮助组织结构化信息。",
	}
	for i := 0; i < 30; i++ {
		sb.WriteString(topics[i%len(topics)])
		sb.WriteString(strings.Repeat("补充说明内容。", 5))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func TestRAG_ShortTextGoesDirect(t *testing.T) {
	base := newMockSummarizer()
	store := vectorstore.NewMemory(16)
	rag := NewRAG(base, embedding.NewHashEmbedder(16), store, RAGOptions{ChunkSize: 500})

	summary, err := rag.Summarize(context.Background(), "短文本。", model.StyleConcise)

	require.NoError(t, err)
	assert.Equal(t, 1, base.callCount())
	assert.Equal(t, model.MethodRAG, summary.Method)
	assert.True(t, strings.HasPrefix(summary.ModelName, "rag-"))
	assert.Zero(t, store.Count())
}

func TestRAG_RetrievesBoundedContext(t *testing.T) {
	base := newMockSummarizer()
	store := vectorstore.NewMemory(16)
	rag := NewRAG(base, embedding.NewHashEmbedder(16), store, RAGOptions{
		ChunkSize: 100,
		TopK:      3,
		MinScore:  -1,
	})

	summary, err := rag.Summarize(context.Background(), longArticle(), model.StyleConcise)

	require.NoError(t, err)
	assert.Equal(t, model.MethodRAG, summary.Method)

	prompt := base.callInputs()[base.callCount()-1]
	assert.Contains(t, prompt, "[相关片段 1]")
	assert.NotContains(t, prompt, "[相关片段 4]")
}

func TestRAG_IndexIsEphemeral(t *testing.T) {
	base := newMockSummarizer()
	store := vectorstore.NewMemory(16)
	rag := NewRAG(base, embedding.NewHashEmbedder(16), store, RAGOptions{ChunkSize: 100})

	_, err := rag.Summarize(context.Background(), longArticle(), model.StyleConcise)

	require.NoError(t, err)
	assert.Zero(t, store.Count())
}

func TestRAG_EmbeddingFailureDegrades(t *testing.T) {
	base := newMockSummarizer()
	store := vectorstore.NewMemory(8)
	rag := NewRAG(base, failingEmbedder{}, store, RAGOptions{ChunkSize: 100})

	summary, err := rag.Summarize(context.Background(), longArticle(), model.StyleConcise)

	require.NoError(t, err)
	assert.Equal(t, 1, base.callCount())
	assert.Equal(t, model.MethodRAG, summary.Method)
	assert.Zero(t, store.Count())
}

func TestHyDE_UsesHypotheticalSummaryAsQuery(t *testing.T) {
	base := newMockSummarizer()
	store := vectorstore.NewMemory(16)
	hyde := NewHyDE(base, embedding.NewHashEmbedder(16), store, RAGOptions{ChunkSize: 100})

	summary, err := hyde.Summarize(context.Background(), longArticle(), model.StyleConcise)

	require.NoError(t, err)
	// one call for the hypothetical summary plus the final call
	assert.Equal(t, 2, base.callCount())
	assert.True(t, strings.HasPrefix(summary.ModelName, "hyde-"))
	assert.Equal(t, "hyde-mock", hyde.Name())
}

func TestRAG_Unavailable(t *testing.T) {
	base := newMockSummarizer()
	base.available = false
	rag := NewRAG(base, embedding.NewHashEmbedder(16), vectorstore.NewMemory(16), RAGOptions{})

	_, err := rag.Summarize(context.Background(), "text", model.StyleConcise)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRAG_EmptyContent(t *testing.T) {
	rag := NewRAG(newMockSummarizer(), embedding.NewHashEmbedder(16), vectorstore.NewMemory(16), RAGOptions{})

	_, err := rag.Summarize(context.Background(), "", model.StyleConcise)
	assert.ErrorIs(t, err, ErrEmptyContent)
}
