package summarize

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/chunker"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/common"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/community"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/extraction"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/graph"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
)

const globalSearchPrompt = `你是文章摘要助手。以下是从一篇文章中提取的知识社区概括，请基于这些社区信息生成文章的整体摘要。

%s

社区概括：
%s

请以JSON格式返回：
{"summary": "文章摘要", "key_points": ["要点1", "要点2"], "tags": ["标签1", "标签2"]}

只返回JSON，不要其他内容。`

const localSearchPrompt = `你是文章摘要助手。请结合以下从文章中提取的实体与关系信息，为文章生成摘要。

%s

实体信息：
%s

关系信息：
%s

文章内容：
%s

请以JSON格式返回：
{"summary": "文章摘要", "key_points": ["要点1", "要点2"], "tags": ["标签1", "标签2"]}

只返回JSON，不要其他内容。`

// GraphRAGOptions configures the knowledge graph summarization pipeline.
type GraphRAGOptions struct {
	ChunkSize       int
	Overlap         int
	MaxChunks       int
	UseGlobalSearch bool
	Logger          *logrus.Logger
}

func (o GraphRAGOptions) withDefaults() GraphRAGOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = 2000
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	if o.MaxChunks <= 0 {
		o.MaxChunks = 20
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}

// GraphRAG summarizes by building a knowledge graph from the article:
// entities and relationships are extracted per chunk, merged into one graph,
// clustered into communities, and the community (or entity) context drives
// the final summary. Any pipeline failure degrades to the base summarizer.
type GraphRAG struct {
	base      Summarizer
	extractor extraction.Extractor
	builder   *graph.Builder
	detector  community.Detector
	comm      *community.Summarizer
	opts      GraphRAGOptions

	mu        sync.Mutex
	lastGraph *model.KnowledgeGraph
}

func NewGraphRAG(base Summarizer, extractor extraction.Extractor, detector community.Detector, comm *community.Summarizer, opts GraphRAGOptions) *GraphRAG {
	opts = opts.withDefaults()
	if detector == nil {
		detector = community.NewConnectedComponents()
	}
	return &GraphRAG{
		base:      base,
		extractor: extractor,
		builder:   graph.NewBuilder(opts.Logger),
		detector:  detector,
		comm:      comm,
		opts:      opts,
	}
}

func (g *GraphRAG) Name() string { return "graphrag-" + g.base.Name() }

func (g *GraphRAG) Method() model.SummaryMethod { return model.MethodGraphRAG }

func (g *GraphRAG) IsAvailable() bool {
	return g.base.IsAvailable() && g.extractor != nil && g.extractor.IsAvailable()
}

// KnowledgeGraph returns the graph built by the most recent Summarize call,
// or nil before the first one.
func (g *GraphRAG) KnowledgeGraph() *model.KnowledgeGraph {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastGraph
}

func (g *GraphRAG) Summarize(ctx context.Context, content string, style model.SummaryStyle) (*model.Summary, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if !g.IsAvailable() {
		return nil, fmt.Errorf("%s: %w", g.Name(), ErrUnavailable)
	}

	kg, err := g.buildGraph(ctx, content)
	if err != nil {
		g.opts.Logger.WithError(err).Warn("graph pipeline failed, falling back to direct summarization")
		return g.fallback(ctx, content, style)
	}

	g.mu.Lock()
	g.lastGraph = kg
	g.mu.Unlock()

	if kg.EntityCount() == 0 {
		g.opts.Logger.Warn("no entities extracted, falling back to direct summarization")
		return g.fallback(ctx, content, style)
	}

	var summary *model.Summary
	if g.opts.UseGlobalSearch {
		summary, err = g.globalSearch(ctx, kg, style)
	} else {
		summary, err = g.localSearch(ctx, kg, content, style)
	}
	if err != nil {
		g.opts.Logger.WithError(err).Warn("graph search failed, falling back to direct summarization")
		return g.fallback(ctx, content, style)
	}

	if len(summary.KeyPoints) == 0 {
		summary = summary.WithKeyPoints(g.keyPointsFromGraph(kg))
	}
	if len(summary.Tags) == 0 {
		summary = summary.WithTags(g.tagsFromGraph(kg))
	}
	s := *summary
	s.Method = model.MethodGraphRAG
	s.ModelName = g.Name()
	return &s, nil
}

func (g *GraphRAG) buildGraph(ctx context.Context, content string) (*model.KnowledgeGraph, error) {
	chunks := chunker.Split(content, chunker.Options{
		ChunkSize: g.opts.ChunkSize,
		Overlap:   g.opts.Overlap,
		MaxChunks: g.opts.MaxChunks,
		Logger:    g.opts.Logger,
	})

	var extractions []*model.ExtractionResult
	failed := 0
	for i, chunk := range chunks {
		result, err := g.extractor.Extract(ctx, chunk.Text)
		if err != nil {
			failed++
			g.opts.Logger.WithError(err).WithField("chunk", i).Warn("entity extraction failed for chunk")
			continue
		}
		extractions = append(extractions, result)
	}
	if len(extractions) == 0 {
		return nil, fmt.Errorf("entity extraction failed for all %d chunks", len(chunks))
	}
	if failed > 0 {
		g.opts.Logger.WithFields(logrus.Fields{
			"failed": failed,
			"total":  len(chunks),
		}).Warn("some chunks skipped during extraction")
	}

	kg := g.builder.Build(extractions)

	communities, err := g.detector.Detect(kg)
	if err != nil {
		return nil, fmt.Errorf("community detection: %w", err)
	}
	for _, c := range communities {
		kg.AddCommunity(c)
	}

	if g.comm != nil {
		if err := g.comm.SummarizeAll(ctx, kg); err != nil {
			g.opts.Logger.WithError(err).Warn("community summarization failed, continuing without summaries")
		}
	}
	return kg, nil
}

// globalSearch drives the final summary from community summaries alone.
func (g *GraphRAG) globalSearch(ctx context.Context, kg *model.KnowledgeGraph, style model.SummaryStyle) (*model.Summary, error) {
	var lines []string
	for _, c := range kg.Communities() {
		line := fmt.Sprintf("- %s", c.Title)
		if c.Summary != "" {
			line += "：" + c.Summary
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("no communities to search")
	}
	prompt := fmt.Sprintf(globalSearchPrompt, styleInstructions[style], strings.Join(lines, "\n"))
	return g.base.Summarize(ctx, prompt, style)
}

// localSearch combines entity and relationship context with the article text.
func (g *GraphRAG) localSearch(ctx context.Context, kg *model.KnowledgeGraph, content string, style model.SummaryStyle) (*model.Summary, error) {
	var entityLines []string
	for _, entity := range kg.Entities() {
		line := fmt.Sprintf("- %s（%s）", entity.Name, entity.Type)
		if entity.Description != "" {
			line += "：" + entity.Description
		}
		entityLines = append(entityLines, line)
		if len(entityLines) >= 30 {
			break
		}
	}
	var relationLines []string
	for _, rel := range kg.Relationships() {
		src, _ := kg.GetEntity(rel.SourceID)
		tgt, _ := kg.GetEntity(rel.TargetID)
		relationLines = append(relationLines, fmt.Sprintf("- %s %s %s", src.Name, rel.Type, tgt.Name))
		if len(relationLines) >= 30 {
			break
		}
	}
	if len(relationLines) == 0 {
		relationLines = []string{"（无）"}
	}
	prompt := fmt.Sprintf(localSearchPrompt,
		styleInstructions[style],
		strings.Join(entityLines, "\n"),
		strings.Join(relationLines, "\n"),
		common.Truncate(content, 3000))
	return g.base.Summarize(ctx, prompt, style)
}

func (g *GraphRAG) fallback(ctx context.Context, content string, style model.SummaryStyle) (*model.Summary, error) {
	summary, err := g.base.Summarize(ctx, common.Truncate(content, 3000), style)
	if err != nil {
		return nil, err
	}
	s := *summary
	s.Method = model.MethodGraphRAG
	s.ModelName = g.Name()
	return &s, nil
}

// keyPointsFromGraph derives key points from entity descriptions and
// community summaries when the model returned none.
func (g *GraphRAG) keyPointsFromGraph(kg *model.KnowledgeGraph) []string {
	var points []string
	for _, c := range kg.Communities() {
		if c.Summary != "" {
			points = append(points, c.Summary)
		}
	}
	for _, entity := range kg.Entities() {
		if len(points) >= 10 {
			break
		}
		if entity.Description != "" {
			points = append(points, fmt.Sprintf("%s：%s", entity.Name, entity.Description))
		}
	}
	return capStrings(mergeKeyPoints(points), 10)
}

// tagsFromGraph derives tags from entity types and short entity names.
func (g *GraphRAG) tagsFromGraph(kg *model.KnowledgeGraph) []string {
	var tags []string
	for _, entity := range kg.Entities() {
		if len([]rune(entity.Name)) <= 8 {
			tags = append(tags, entity.Name)
		}
	}
	for _, entity := range kg.Entities() {
		tags = append(tags, entity.Type)
	}
	return capStrings(mergeTags(tags), 10)
}
