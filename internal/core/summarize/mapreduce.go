package summarize

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/chunker"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/common"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
)

const mapPromptFormat = `请用不超过%d字概括以下内容，保留关键信息和数据：

%s`

const reducePromptFormat = `以下是一篇长文章各部分的摘要，请将它们整合成一个完整、连贯的总摘要。

%s

要求：
1. 提炼核心观点，去除重复内容
2. 保持逻辑连贯
3. 按照原文结构组织内容`

// MapReduceOptions configure chunking and the map phase.
type MapReduceOptions struct {
	ChunkSize int
	Overlap   int
	MaxChunks int
	// Workers bounds how many chunk summarizations run at once. The base
	// summarizer is typically a rate-limited API, so this is never unbounded.
	Workers int
	// ChunkSummaryLength is the target length in characters asked of each
	// chunk summary during the map phase.
	ChunkSummaryLength int
	Logger             *logrus.Logger
}

func (o MapReduceOptions) withDefaults() MapReduceOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = chunker.DefaultChunkSize
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	if o.MaxChunks <= 0 {
		o.MaxChunks = chunker.DefaultMaxChunks
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.ChunkSummaryLength <= 0 {
		o.ChunkSummaryLength = 300
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}

// MapReduce summarizes oversized text by chunking it, summarizing each chunk
// independently (map) and merging the partial summaries into one (reduce).
// Short inputs bypass the pipeline and go straight to the base summarizer.
type MapReduce struct {
	base Summarizer
	opts MapReduceOptions
}

func NewMapReduce(base Summarizer, opts MapReduceOptions) *MapReduce {
	return &MapReduce{base: base, opts: opts.withDefaults()}
}

func (m *MapReduce) Name() string { return "mapreduce-" + m.base.Name() }

func (m *MapReduce) Method() model.SummaryMethod { return m.base.Method() }

func (m *MapReduce) IsAvailable() bool { return m.base.IsAvailable() }

func (m *MapReduce) Summarize(ctx context.Context, content string, style model.SummaryStyle) (*model.Summary, error) {
	if !m.IsAvailable() {
		return nil, fmt.Errorf("%w: base summarizer %s", ErrUnavailable, m.base.Name())
	}
	text := strings.TrimSpace(content)
	if text == "" {
		return nil, ErrEmptyContent
	}

	if len([]rune(text)) <= m.opts.ChunkSize {
		m.opts.Logger.WithField("length", len([]rune(text))).Debug("text fits a single call, summarizing directly")
		return m.base.Summarize(ctx, text, style)
	}

	chunks := chunker.Split(text, chunker.Options{
		ChunkSize: m.opts.ChunkSize,
		Overlap:   m.opts.Overlap,
		MaxChunks: m.opts.MaxChunks,
		Logger:    m.opts.Logger,
	})
	m.opts.Logger.WithField("chunks", len(chunks)).Info("map phase starting")

	partials, err := m.mapPhase(ctx, chunks, style)
	if err != nil {
		return nil, err
	}
	return m.reducePhase(ctx, partials, style)
}

// mapPhase summarizes chunks concurrently, bounded by Workers. A failed
// chunk is logged and dropped; only a fully failed map phase is an error.
func (m *MapReduce) mapPhase(ctx context.Context, chunks []model.Chunk, style model.SummaryStyle) ([]*model.Summary, error) {
	results := make([]*model.Summary, len(chunks))
	sem := make(chan struct{}, m.opts.Workers)
	var wg sync.WaitGroup

	for i, chunk := range chunks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, chunk model.Chunk) {
			defer wg.Done()
			defer func() { <-sem }()

			prompt := fmt.Sprintf(mapPromptFormat, m.opts.ChunkSummaryLength, chunk.Text)
			summary, err := m.base.Summarize(ctx, prompt, style)
			if err != nil {
				m.opts.Logger.WithError(err).WithField("chunk", i).Warn("chunk summarization failed, skipping")
				return
			}
			results[i] = summary
		}(i, chunk)
	}
	wg.Wait()

	partials := make([]*model.Summary, 0, len(results))
	for _, s := range results {
		if s != nil {
			partials = append(partials, s)
		}
	}
	if len(partials) == 0 {
		return nil, fmt.Errorf("%w: %d chunks attempted", ErrAllChunksFailed, len(chunks))
	}
	return partials, nil
}

func (m *MapReduce) reducePhase(ctx context.Context, partials []*model.Summary, style model.SummaryStyle) (*model.Summary, error) {
	if len(partials) == 1 {
		only := *partials[0]
		only.ModelName = "mapreduce-" + only.ModelName
		return &only, nil
	}

	var parts []string
	var allKeyPoints, allTags []string
	var inputTokens, outputTokens int
	for i, s := range partials {
		parts = append(parts, fmt.Sprintf("【第%d部分】\n%s", i+1, s.Content))
		allKeyPoints = append(allKeyPoints, s.KeyPoints...)
		allTags = append(allTags, s.Tags...)
		inputTokens += s.InputTokens
		outputTokens += s.OutputTokens
	}
	combined := strings.Join(parts, "\n\n---\n\n")

	final, err := m.base.Summarize(ctx, fmt.Sprintf(reducePromptFormat, combined), style)
	if err != nil {
		m.opts.Logger.WithError(err).Error("reduce phase failed, concatenating chunk summaries")
		return m.fallbackSummary(partials, allKeyPoints, allTags, style), nil
	}

	merged := model.NewSummary(final.Content, m.Method(), style)
	merged.ModelName = "mapreduce-" + final.ModelName
	merged.InputTokens = inputTokens + final.InputTokens
	merged.OutputTokens = outputTokens + final.OutputTokens
	return merged.
		WithKeyPoints(capStrings(mergeKeyPoints(append(append([]string{}, final.KeyPoints...), allKeyPoints...)), 10)).
		WithTags(capStrings(mergeTags(append(append([]string{}, final.Tags...), allTags...)), 10)), nil
}

// fallbackSummary stitches the chunk summaries together when the final merge
// call fails; partial results beat none.
func (m *MapReduce) fallbackSummary(partials []*model.Summary, keyPoints, tags []string, style model.SummaryStyle) *model.Summary {
	var contents []string
	for _, s := range partials {
		contents = append(contents, s.Content)
	}
	summary := model.NewSummary(common.Truncate(strings.Join(contents, "\n\n"), 2000), m.Method(), style)
	summary.ModelName = m.Name()
	return summary.
		WithKeyPoints(capStrings(mergeKeyPoints(keyPoints), 10)).
		WithTags(capStrings(mergeTags(tags), 10))
}

// mergeKeyPoints removes exact duplicates (after trimming), preserving
// first-seen order. Near-duplicate phrasing is not collapsed.
func mergeKeyPoints(points []string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, p := range points {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		merged = append(merged, p)
	}
	return merged
}

// mergeTags deduplicates case-insensitively, keeping the first-seen casing.
func mergeTags(tags []string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, t)
	}
	return merged
}

func capStrings(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
