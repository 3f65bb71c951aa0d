package summarize

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/chunker"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/common"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/embedding"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
)

// VectorStore is the slice of the store contract the RAG pipeline needs.
// Callers own the store instance; the pipeline only writes per-call
// namespaces into it and cleans them up afterwards.
type VectorStore interface {
	Add(documents []model.VectorDocument) error
	Search(queryVector []float64, topK int, filterMetadata map[string]string) ([]model.SearchResult, error)
	Delete(ids []string)
}

// RAGOptions configure retrieval-augmented summarization.
type RAGOptions struct {
	ChunkSize int
	Overlap   int
	MaxChunks int
	TopK      int
	MinScore  float64
	Workers   int
	Logger    *logrus.Logger
}

func (o RAGOptions) withDefaults() RAGOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = 500
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	if o.MaxChunks <= 0 {
		o.MaxChunks = 50
	}
	if o.TopK <= 0 {
		o.TopK = 5
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}

// RAG indexes chunks of the input into a vector store, retrieves the most
// representative ones for a synthesized query and summarizes only that
// context. The index is ephemeral: documents carry a per-call article_id and
// are deleted before the call returns.
//
// With hyde enabled the retrieval query is a hypothetical summary generated
// by the base summarizer from a preview of the text, instead of the text's
// own opening sentences.
type RAG struct {
	base     Summarizer
	embedder embedding.Embedder
	store    VectorStore
	opts     RAGOptions
	hyde     bool
}

func NewRAG(base Summarizer, embedder embedding.Embedder, store VectorStore, opts RAGOptions) *RAG {
	return &RAG{base: base, embedder: embedder, store: store, opts: opts.withDefaults()}
}

// NewHyDE builds the HyDE variant of the RAG summarizer.
func NewHyDE(base Summarizer, embedder embedding.Embedder, store VectorStore, opts RAGOptions) *RAG {
	r := NewRAG(base, embedder, store, opts)
	r.hyde = true
	return r
}

func (r *RAG) strategy() string {
	if r.hyde {
		return "hyde"
	}
	return "rag"
}

func (r *RAG) Name() string { return r.strategy() + "-" + r.base.Name() }

func (r *RAG) Method() model.SummaryMethod { return model.MethodRAG }

func (r *RAG) IsAvailable() bool {
	return r.base.IsAvailable() && r.embedder != nil && r.embedder.IsAvailable() && r.store != nil
}

func (r *RAG) Summarize(ctx context.Context, content string, style model.SummaryStyle) (*model.Summary, error) {
	if !r.IsAvailable() {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, r.Name())
	}
	text := strings.TrimSpace(content)
	if text == "" {
		return nil, ErrEmptyContent
	}

	if len([]rune(text)) <= r.opts.ChunkSize {
		return r.finish(r.base.Summarize(ctx, text, style))
	}

	chunks := chunker.Split(text, chunker.Options{
		ChunkSize: r.opts.ChunkSize,
		Overlap:   r.opts.Overlap,
		MaxChunks: r.opts.MaxChunks,
		Logger:    r.opts.Logger,
	})

	articleID := uuid.New().String()
	ids, err := r.indexChunks(ctx, chunks, articleID)
	if err != nil {
		r.opts.Logger.WithError(err).Warn("indexing failed, degrading to direct summarization")
		return r.finish(r.base.Summarize(ctx, common.Truncate(text, 3000), style))
	}
	defer r.store.Delete(ids)

	query := r.buildQuery(ctx, text)
	queryVector, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		r.opts.Logger.WithError(err).Warn("query embedding failed, degrading to direct summarization")
		return r.finish(r.base.Summarize(ctx, common.Truncate(text, 3000), style))
	}

	results, err := r.store.Search(queryVector, r.opts.TopK, map[string]string{"article_id": articleID})
	if err != nil {
		r.opts.Logger.WithError(err).Warn("retrieval failed, degrading to direct summarization")
		return r.finish(r.base.Summarize(ctx, common.Truncate(text, 3000), style))
	}

	var retrieved []model.SearchResult
	for _, res := range results {
		if res.Score >= r.opts.MinScore {
			retrieved = append(retrieved, res)
		}
	}
	r.opts.Logger.WithFields(logrus.Fields{
		"chunks":    len(chunks),
		"retrieved": len(retrieved),
	}).Debug("retrieval complete")

	return r.finish(r.base.Summarize(ctx, r.buildContext(text, retrieved), style))
}

// indexChunks embeds and stores the chunks under a per-call namespace,
// returning the document ids for cleanup. Embedding runs in bounded
// concurrent batches.
func (r *RAG) indexChunks(ctx context.Context, chunks []model.Chunk, articleID string) ([]string, error) {
	const batchSize = 16

	vectors := make([][]float64, len(chunks))
	sem := make(chan struct{}, r.opts.Workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(start, end int) {
			defer wg.Done()
			defer func() { <-sem }()

			texts := make([]string, 0, end-start)
			for _, c := range chunks[start:end] {
				texts = append(texts, c.Text)
			}
			batch, err := r.embedder.Embed(ctx, texts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			copy(vectors[start:end], batch)
		}(start, end)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, fmt.Errorf("chunk embedding failed: %w", firstErr)
	}

	documents := make([]model.VectorDocument, len(chunks))
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		id := fmt.Sprintf("%s_%d", articleID, i)
		ids[i] = id
		documents[i] = model.VectorDocument{
			ID:     id,
			Text:   c.Text,
			Vector: vectors[i],
			Metadata: map[string]string{
				"article_id":  articleID,
				"chunk_index": fmt.Sprintf("%d", i),
			},
		}
	}
	if err := r.store.Add(documents); err != nil {
		return nil, fmt.Errorf("indexing failed: %w", err)
	}
	return ids, nil
}

// buildQuery synthesizes the retrieval query. RAG uses the opening sentences
// of the article; HyDE asks the base summarizer for a hypothetical summary
// of a preview first, falling back to the plain query on error.
func (r *RAG) buildQuery(ctx context.Context, text string) string {
	if r.hyde {
		preview := common.Truncate(text, 2000)
		hypothetical, err := r.base.Summarize(ctx, preview, model.StyleConcise)
		if err == nil && hypothetical.Content != "" {
			return hypothetical.Content
		}
		r.opts.Logger.WithError(err).Warn("hypothetical summary failed, falling back to lead query")
	}
	return leadQuery(text)
}

func leadQuery(text string) string {
	head := common.Truncate(text, 1000)
	var sentences []string
	var sb strings.Builder
	for _, ru := range head {
		sb.WriteRune(ru)
		if sentenceEnder(ru) {
			sentences = append(sentences, strings.TrimSpace(sb.String()))
			sb.Reset()
			if len(sentences) == 3 {
				break
			}
		}
	}
	if len(sentences) == 0 {
		return common.Truncate(head, 200)
	}
	return common.Truncate(strings.Join(sentences, " "), 200)
}

func sentenceEnder(r rune) bool {
	switch r {
	case '。', '！', '？', '.', '!', '?':
		return true
	}
	return false
}

// buildContext concatenates the retrieved fragments ahead of a bounded
// prefix of the original text.
func (r *RAG) buildContext(text string, retrieved []model.SearchResult) string {
	if len(retrieved) == 0 {
		return common.Truncate(text, 3000)
	}
	var parts []string
	for i, res := range retrieved {
		parts = append(parts, fmt.Sprintf("[相关片段 %d]\n%s", i+1, res.Document.Text))
	}
	return fmt.Sprintf("以下是文章的关键片段（按相关性排序）：\n\n%s\n\n---\n\n基于以上关键片段，请总结文章的主要内容：\n\n%s",
		strings.Join(parts, "\n\n"), common.Truncate(text, 3000))
}

// finish re-tags the base summary with the retrieval strategy.
func (r *RAG) finish(summary *model.Summary, err error) (*model.Summary, error) {
	if err != nil {
		return nil, err
	}
	tagged := model.NewSummary(summary.Content, model.MethodRAG, summary.Style)
	tagged.ModelName = r.strategy() + "-" + summary.ModelName
	tagged.InputTokens = summary.InputTokens
	tagged.OutputTokens = summary.OutputTokens
	return tagged.WithKeyPoints(summary.KeyPoints).WithTags(summary.Tags), nil
}
