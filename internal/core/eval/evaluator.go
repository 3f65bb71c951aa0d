package eval

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/common"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/summarize"
)

const judgePrompt = `请评估以下摘要的质量。

原文（部分）：
%s

摘要：
%s

请从以下四个维度进行评分（0-10分）：
1. 覆盖度（Coverage）：摘要是否覆盖了原文的关键信息和主要观点
2. 连贯性（Coherence）：摘要是否流畅、逻辑清晰、易于理解
3. 简洁性（Conciseness）：摘要是否简洁、无冗余信息
4. 准确性（Accuracy）：摘要是否准确、无事实错误或幻觉

请按以下JSON格式返回评估结果：
{"coverage": 分数, "coherence": 分数, "conciseness": 分数, "accuracy": 分数, "feedback": "简短的改进建议"}

只返回JSON，不要其他内容。`

type judgePayload struct {
	Coverage    float64 `json:"coverage"`
	Coherence   float64 `json:"coherence"`
	Conciseness float64 `json:"conciseness"`
	Accuracy    float64 `json:"accuracy"`
	Feedback    string  `json:"feedback"`
}

// HallucinationInfo reports summary content not supported by the original
// text. Ratio is suspicious tokens over all numeric and entity-like tokens
// in the summary, clamped to [0,1]. Any non-empty suspicious set marks the
// summary as hallucinated regardless of the ratio.
type HallucinationInfo struct {
	HasHallucination   bool
	HallucinationRatio float64
	SuspiciousEntities []string
	SuspiciousNumbers  []string
}

// EvaluationResult carries every computed metric. Pointer fields are nil
// when the corresponding evaluation did not run.
type EvaluationResult struct {
	Rouge1 float64
	Rouge2 float64
	RougeL float64

	BertPrecision *float64
	BertRecall    *float64
	BertF1        *float64

	Hallucination *HallucinationInfo

	CompressionRatio *float64
	KeywordCoverage  *float64

	Coverage    *float64
	Coherence   *float64
	Conciseness *float64
	Accuracy    *float64
	LLMFeedback string

	penaltyFactor float64
}

// Overall is the weighted combination of available metrics: ROUGE 20%,
// BERTScore 20%, LLM judge 40%, normalized over whichever are present, then
// scaled down multiplicatively when hallucination was detected.
func (r *EvaluationResult) Overall() float64 {
	var scores, weights []float64

	if r.Rouge1 > 0 || r.RougeL > 0 {
		scores = append(scores, (r.Rouge1+r.RougeL)/2)
		weights = append(weights, 0.2)
	}
	if r.BertF1 != nil {
		scores = append(scores, *r.BertF1)
		weights = append(weights, 0.2)
	}
	var llmScores []float64
	for _, s := range []*float64{r.Coverage, r.Coherence, r.Conciseness, r.Accuracy} {
		if s != nil {
			llmScores = append(llmScores, *s/10.0)
		}
	}
	if len(llmScores) > 0 {
		sum := 0.0
		for _, s := range llmScores {
			sum += s
		}
		scores = append(scores, sum/float64(len(llmScores)))
		weights = append(weights, 0.4)
	}

	if len(scores) == 0 {
		return 0
	}
	totalWeight := 0.0
	for _, w := range weights {
		totalWeight += w
	}
	weighted := 0.0
	for i, s := range scores {
		weighted += s * weights[i] / totalWeight
	}

	if r.Hallucination != nil && r.Hallucination.HasHallucination {
		factor := r.penaltyFactor
		if factor <= 0 {
			factor = 0.5
		}
		multiplier := 1 - r.Hallucination.HallucinationRatio*factor
		if multiplier < 0 {
			multiplier = 0
		}
		weighted *= multiplier
	}
	if weighted < 0 {
		return 0
	}
	return weighted
}

// Grade buckets the overall score into a human-readable quality level.
func (r *EvaluationResult) Grade() string {
	score := r.Overall()
	switch {
	case score >= 0.8:
		return "优秀"
	case score >= 0.6:
		return "良好"
	case score >= 0.35:
		return "中等"
	default:
		return "需改进"
	}
}

// HasQualityIssues reports whether the summary needs human review.
func (r *EvaluationResult) HasQualityIssues() bool {
	if r.Hallucination != nil && r.Hallucination.HasHallucination {
		return true
	}
	if r.Accuracy != nil && *r.Accuracy < 5 {
		return true
	}
	return r.Overall() < 0.35
}

// Options configures which evaluations run.
type Options struct {
	UseROUGE         bool
	UseHallucination bool
	UseLLM           bool
	PenaltyFactor    float64
	Logger           *logrus.Logger
}

func DefaultOptions() Options {
	return Options{
		UseROUGE:         true,
		UseHallucination: true,
		PenaltyFactor:    0.5,
		Logger:           logrus.StandardLogger(),
	}
}

// Evaluator scores a summary against its original text. The heuristic
// metrics are pure functions of the two strings; the optional LLM judge is
// only consulted when a summarizer was supplied and UseLLM is on.
type Evaluator struct {
	judge summarize.Summarizer
	opts  Options

	entityPatterns []*regexp.Regexp
	numberPattern  *regexp.Regexp
	cjkWordPattern *regexp.Regexp
}

func NewEvaluator(judge summarize.Summarizer, opts Options) *Evaluator {
	if opts.PenaltyFactor <= 0 {
		opts.PenaltyFactor = 0.5
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	patterns := []string{
		`[一-龥]{2,4}公司`,
		`[一-龥]{2,3}(?:市|省|区|县)`,
		`[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*`,
		`\d{4}年\d{1,2}月\d{1,2}日`,
		`\d+(?:\.\d+)?(?:%|万|亿|元)`,
	}
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return &Evaluator{
		judge:          judge,
		opts:           opts,
		entityPatterns: compiled,
		numberPattern:  regexp.MustCompile(`\d+(?:\.\d+)?`),
		cjkWordPattern: regexp.MustCompile(`[一-龥]{2,}`),
	}
}

func (e *Evaluator) IsAvailable() bool {
	return e.opts.UseROUGE || e.opts.UseHallucination || (e.opts.UseLLM && e.judge != nil)
}

// Evaluate scores summary against original. Identical inputs always yield
// an identical result when the LLM judge is off.
func (e *Evaluator) Evaluate(ctx context.Context, original, summary string) *EvaluationResult {
	result := &EvaluationResult{penaltyFactor: e.opts.PenaltyFactor}

	e.evaluateDensity(original, summary, result)

	if e.opts.UseROUGE {
		refTokens := tokenize(original)
		candTokens := tokenize(summary)
		result.Rouge1 = rougeN(refTokens, candTokens, 1)
		result.Rouge2 = rougeN(refTokens, candTokens, 2)
		result.RougeL = rougeL(refTokens, candTokens)
	}

	if e.opts.UseHallucination {
		result.Hallucination = e.detectHallucination(original, summary)
		if result.Hallucination.HasHallucination {
			e.opts.Logger.WithFields(logrus.Fields{
				"entities": result.Hallucination.SuspiciousEntities,
				"numbers":  result.Hallucination.SuspiciousNumbers,
			}).Warn("possible hallucination detected")
		}
	}

	if e.opts.UseLLM && e.judge != nil {
		e.evaluateLLM(ctx, original, summary, result)
	}
	return result
}

func (e *Evaluator) evaluateDensity(original, summary string, result *EvaluationResult) {
	summaryLen := len([]rune(summary))
	if summaryLen == 0 {
		return
	}
	ratio := float64(len([]rune(original))) / float64(summaryLen)
	result.CompressionRatio = &ratio

	originalWords := wordSet(e.cjkWordPattern.FindAllString(original, -1))
	if len(originalWords) == 0 {
		return
	}
	covered := 0
	for word := range wordSet(e.cjkWordPattern.FindAllString(summary, -1)) {
		if originalWords[word] {
			covered++
		}
	}
	coverage := float64(covered) / float64(len(originalWords))
	result.KeywordCoverage = &coverage
}

func (e *Evaluator) detectHallucination(original, summary string) *HallucinationInfo {
	originalEntities := make(map[string]bool)
	for _, pattern := range e.entityPatterns {
		for _, entity := range pattern.FindAllString(original, -1) {
			originalEntities[entity] = true
		}
	}
	originalNumbers := make(map[string]bool)
	for _, num := range e.numberPattern.FindAllString(original, -1) {
		originalNumbers[num] = true
	}

	var suspiciousEntities []string
	seenEntity := make(map[string]bool)
	for _, pattern := range e.entityPatterns {
		for _, entity := range pattern.FindAllString(summary, -1) {
			if seenEntity[entity] {
				continue
			}
			seenEntity[entity] = true
			if strings.Contains(original, entity) || originalEntities[entity] {
				continue
			}
			if fuzzyMatch(entity, originalEntities) {
				continue
			}
			suspiciousEntities = append(suspiciousEntities, entity)
		}
	}

	summaryNumbers := e.numberPattern.FindAllString(summary, -1)
	var suspiciousNumbers []string
	for _, num := range summaryNumbers {
		if !originalNumbers[num] && len(num) > 1 {
			suspiciousNumbers = append(suspiciousNumbers, num)
		}
	}

	totalTokens := len(e.cjkWordPattern.FindAllString(summary, -1)) + len(summaryNumbers)
	if totalTokens < 1 {
		totalTokens = 1
	}
	ratio := float64(len(suspiciousEntities)+len(suspiciousNumbers)) / float64(totalTokens)
	if ratio > 1 {
		ratio = 1
	}

	return &HallucinationInfo{
		HasHallucination:   len(suspiciousEntities) > 0 || len(suspiciousNumbers) > 0,
		HallucinationRatio: ratio,
		SuspiciousEntities: capList(suspiciousEntities, 10),
		SuspiciousNumbers:  capList(suspiciousNumbers, 10),
	}
}

func (e *Evaluator) evaluateLLM(ctx context.Context, original, summary string, result *EvaluationResult) {
	prompt := fmt.Sprintf(judgePrompt, common.Truncate(original, 3000), summary)
	judged, err := e.judge.Summarize(ctx, prompt, model.StyleConcise)
	if err != nil {
		e.opts.Logger.WithError(err).Warn("llm evaluation failed")
		return
	}
	payload, err := common.ParseJSON[judgePayload](judged.Content)
	if err != nil {
		e.opts.Logger.WithError(err).Warn("llm evaluation response parse failed")
		return
	}
	result.Coverage = &payload.Coverage
	result.Coherence = &payload.Coherence
	result.Conciseness = &payload.Conciseness
	result.Accuracy = &payload.Accuracy
	result.LLMFeedback = payload.Feedback
}

// GetImprovementSuggestions turns an evaluation into actionable advice.
func (e *Evaluator) GetImprovementSuggestions(result *EvaluationResult) []string {
	var suggestions []string

	if result.Rouge1 < 0.3 {
		suggestions = append(suggestions, "摘要与原文词汇重叠度低，建议提取更多原文关键词")
	}
	if result.RougeL < 0.2 {
		suggestions = append(suggestions, "摘要结构与原文差异较大，建议保持更多原文的表达方式")
	}
	if result.BertF1 != nil && *result.BertF1 < 0.6 {
		suggestions = append(suggestions, "语义相似度较低，建议摘要更准确地反映原文含义")
	}
	if result.Hallucination != nil && result.Hallucination.HasHallucination {
		suggestions = append(suggestions, "检测到可能的幻觉内容，请核实以下信息：")
		if len(result.Hallucination.SuspiciousEntities) > 0 {
			suggestions = append(suggestions, "可疑实体: "+strings.Join(capList(result.Hallucination.SuspiciousEntities, 5), ", "))
		}
		if len(result.Hallucination.SuspiciousNumbers) > 0 {
			suggestions = append(suggestions, "可疑数字: "+strings.Join(capList(result.Hallucination.SuspiciousNumbers, 5), ", "))
		}
	}
	if result.KeywordCoverage != nil && *result.KeywordCoverage < 0.3 {
		suggestions = append(suggestions, "关键词覆盖率低，建议纳入更多原文核心关键词")
	}
	if result.CompressionRatio != nil && *result.CompressionRatio < 3 {
		suggestions = append(suggestions, "摘要压缩比低，建议进一步精简内容")
	}
	if result.Coverage != nil && *result.Coverage < 6 {
		suggestions = append(suggestions, "覆盖度不足，建议确保摘要包含原文的核心观点")
	}
	if result.Coherence != nil && *result.Coherence < 6 {
		suggestions = append(suggestions, "连贯性不足，建议优化摘要的逻辑结构和过渡")
	}
	if result.Conciseness != nil && *result.Conciseness < 6 {
		suggestions = append(suggestions, "简洁性不足，建议删除冗余信息，精简表达")
	}
	if result.Accuracy != nil && *result.Accuracy < 6 {
		suggestions = append(suggestions, "准确性不足，建议核实摘要内容是否与原文一致")
	}
	if result.LLMFeedback != "" {
		suggestions = append(suggestions, "模型建议："+result.LLMFeedback)
	}
	return suggestions
}

// fuzzyMatch tolerates partial overlaps, a summary entity contained in an
// original one (or the reverse) is not suspicious.
func fuzzyMatch(entity string, originalEntities map[string]bool) bool {
	for e := range originalEntities {
		if strings.Contains(e, entity) || strings.Contains(entity, e) {
			return true
		}
	}
	return false
}

func wordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func capList(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
