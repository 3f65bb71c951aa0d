package core

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/config"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/community"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/embedding"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/eval"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/extraction"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/summarize"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/vectorstore"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/llm"
)

// Strategy selects the summarization pipeline.
type Strategy string

const (
	StrategyAuto      Strategy = "auto"
	StrategyDirect    Strategy = "direct"
	StrategyMapReduce Strategy = "mapreduce"
	StrategyRAG       Strategy = "rag"
	StrategyHyDE      Strategy = "hyde"
	StrategyGraphRAG  Strategy = "graphrag"
)

// Service wires configuration, the LLM client, the embedder and the vector
// store into ready-to-use summarization pipelines plus an evaluator.
type Service struct {
	cfg       *config.Config
	logger    *logrus.Logger
	base      summarize.Summarizer
	embedder  embedding.Embedder
	store     *vectorstore.Memory
	extractor extraction.Extractor
	evaluator *eval.Evaluator
}

// NewService builds a service from configuration. Provider "simple" (or an
// empty API key for providers that require one) selects the rule-based
// summarizer and the local hash embedder so the service works offline.
func NewService(cfg *config.Config, logger *logrus.Logger) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	var base summarize.Summarizer
	var embedder embedding.Embedder
	var extractor extraction.Extractor

	if cfg.LLM.Provider == "simple" || cfg.LLM.Provider == "" {
		base = summarize.NewSimple()
		embedder = embedding.NewHashEmbedder(0)
		extractor = extraction.NewPatternExtractor()
	} else {
		client, embedderClient, err := llm.NewClient(cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("build llm client: %w", err)
		}
		base = summarize.NewLLM(client, cfg.LLM.Provider, cfg.LLM.Model, logger)
		if embedderClient != nil {
			embedder = embedding.NewLLMEmbedder(embedderClient, cfg.LLM.EmbeddingModel, 0)
		} else {
			embedder = embedding.NewHashEmbedder(0)
		}
		extractor = extraction.NewLLMExtractor(client, logger)
	}

	return &Service{
		cfg:       cfg,
		logger:    logger,
		base:      base,
		embedder:  embedder,
		store:     vectorstore.NewMemory(embedder.Dimension()),
		extractor: extractor,
		evaluator: eval.NewEvaluator(base, eval.Options{
			UseROUGE:         true,
			UseHallucination: true,
			PenaltyFactor:    cfg.Eval.HallucinationPenalty,
			Logger:           logger,
		}),
	}, nil
}

// Summarize runs the selected pipeline over the content. StrategyAuto picks
// mapreduce for texts larger than one chunk and the base summarizer
// otherwise.
func (s *Service) Summarize(ctx context.Context, content string, strategy Strategy, style model.SummaryStyle) (*model.Summary, error) {
	if strategy == "" || strategy == StrategyAuto {
		if len([]rune(content)) > s.cfg.Chunking.ChunkSize {
			strategy = StrategyMapReduce
		} else {
			strategy = StrategyDirect
		}
	}

	summarizer, err := s.Summarizer(strategy)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"strategy": string(strategy),
		"length":   len([]rune(content)),
	}).Info("summarizing article")
	return summarizer.Summarize(ctx, content, style)
}

// Summarizer returns the pipeline for a strategy without running it.
func (s *Service) Summarizer(strategy Strategy) (summarize.Summarizer, error) {
	switch strategy {
	case StrategyDirect:
		return s.base, nil
	case StrategyMapReduce:
		return summarize.NewMapReduce(s.base, summarize.MapReduceOptions{
			ChunkSize:          s.cfg.Chunking.ChunkSize,
			Overlap:            s.cfg.Chunking.Overlap,
			MaxChunks:          s.cfg.Chunking.MaxChunks,
			Workers:            s.cfg.MapReduce.Workers,
			ChunkSummaryLength: s.cfg.MapReduce.ChunkSummaryLength,
			Logger:             s.logger,
		}), nil
	case StrategyRAG:
		return summarize.NewRAG(s.base, s.embedder, s.store, s.ragOptions()), nil
	case StrategyHyDE:
		return summarize.NewHyDE(s.base, s.embedder, s.store, s.ragOptions()), nil
	case StrategyGraphRAG:
		var comm *community.Summarizer
		if llmBase, ok := s.base.(*summarize.LLM); ok {
			comm = community.NewSummarizer(llmBase.Client(), s.logger)
		} else {
			comm = community.NewSummarizer(nil, s.logger)
		}
		return summarize.NewGraphRAG(s.base, s.extractor, community.NewConnectedComponents(), comm, summarize.GraphRAGOptions{
			ChunkSize:       s.cfg.GraphRAG.ChunkSize,
			MaxChunks:       s.cfg.Chunking.MaxChunks,
			UseGlobalSearch: s.cfg.GraphRAG.UseGlobalSearch,
			Logger:          s.logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown summarization strategy %q", strategy)
	}
}

// Evaluate scores a produced summary against its original text and returns
// the metric report along with improvement suggestions.
func (s *Service) Evaluate(ctx context.Context, original, summary string) (*eval.EvaluationResult, []string) {
	result := s.evaluator.Evaluate(ctx, original, summary)
	return result, s.evaluator.GetImprovementSuggestions(result)
}

func (s *Service) ragOptions() summarize.RAGOptions {
	return summarize.RAGOptions{
		ChunkSize: s.cfg.RAG.ChunkSize,
		Overlap:   s.cfg.RAG.Overlap,
		TopK:      s.cfg.RAG.TopK,
		MinScore:  s.cfg.RAG.MinScore,
		Workers:   s.cfg.RAG.Workers,
		Logger:    s.logger,
	}
}
