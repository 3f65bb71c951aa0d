package extraction

import (
	"context"
	"regexp"
	"strings"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
)

// PatternExtractor is the lexical baseline: suffix patterns for CJK
// organizations and titled persons, a Latin run for technical terms. It
// extracts no relationships and exists so the graph pipeline works without
// any model behind it.
type PatternExtractor struct {
	maxEntities int
}

func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{maxEntities: 50}
}

var (
	orgPattern    = regexp.MustCompile(`[\p{Han}]{2,8}(?:公司|集团|大学|学院|研究院|中心|组织|协会|委员会|政府|部门)`)
	personPattern = regexp.MustCompile(`[\p{Han}]{2,4}(?:先生|女士|教授|博士|老师|院士|专家)`)
	techPattern   = regexp.MustCompile(`[A-Za-z][A-Za-z0-9.-]+(?:\s+[A-Za-z][A-Za-z0-9.-]+)*`)

	techStopwords = map[string]bool{
		"the": true, "a": true, "an": true, "is": true, "are": true,
		"was": true, "were": true, "and": true, "or": true, "of": true,
		"in": true, "to": true, "for": true,
	}
)

func (e *PatternExtractor) Name() string { return "pattern-extractor" }

func (e *PatternExtractor) IsAvailable() bool { return true }

func (e *PatternExtractor) Extract(_ context.Context, text string) (*model.ExtractionResult, error) {
	result := &model.ExtractionResult{SourceText: text}
	seen := make(map[string]bool)

	add := func(name, entityType string, minLen int) {
		name = strings.TrimSpace(name)
		if len([]rune(name)) < minLen || seen[name] {
			return
		}
		seen[name] = true
		result.Entities = append(result.Entities, model.Entity{
			ID:   entityID(name, entityType),
			Name: name,
			Type: entityType,
		})
	}

	for _, m := range orgPattern.FindAllString(text, -1) {
		add(m, "组织", 3)
	}
	for _, m := range personPattern.FindAllString(text, -1) {
		add(m, "人物", 2)
	}
	for _, m := range techPattern.FindAllString(text, -1) {
		if techStopwords[strings.ToLower(m)] {
			continue
		}
		add(m, "技术", 2)
	}

	if len(result.Entities) > e.maxEntities {
		result.Entities = result.Entities[:e.maxEntities]
	}
	return result, nil
}
