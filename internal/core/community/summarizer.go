package community

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/common"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/llm"
)

const communityPrompt = `你是知识图谱分析助手。下面是一个实体社区的成员及其关系，请用2-3句话概括这个社区的主题，并起一个简短的标题。

社区成员：
%s

成员关系：
%s

请以JSON格式返回：
{"title": "社区标题", "summary": "社区概括"}

只返回JSON，不要其他内容。`

type communityPayload struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Summarizer writes a title and summary onto each detected community. With
// an LLM client it asks the model; without one, or when a call fails, it
// falls back to a plain listing of member names grouped by type.
type Summarizer struct {
	client llm.Client
	logger *logrus.Logger
}

func NewSummarizer(client llm.Client, logger *logrus.Logger) *Summarizer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Summarizer{client: client, logger: logger}
}

// SummarizeCommunity produces a summary for one community. The community
// itself is not mutated.
func (s *Summarizer) SummarizeCommunity(ctx context.Context, c model.Community, graph *model.KnowledgeGraph) (title, summary string, err error) {
	members := make([]model.Entity, 0, len(c.EntityIDs))
	memberSet := make(map[string]bool, len(c.EntityIDs))
	for _, id := range c.EntityIDs {
		if entity, ok := graph.GetEntity(id); ok {
			members = append(members, entity)
			memberSet[id] = true
		}
	}
	if len(members) == 0 {
		return c.Title, "", nil
	}

	if s.client == nil {
		return c.Title, fallbackSummary(members), nil
	}

	var memberLines, relationLines []string
	for _, entity := range members {
		line := fmt.Sprintf("- %s（%s）", entity.Name, entity.Type)
		if entity.Description != "" {
			line += "：" + entity.Description
		}
		memberLines = append(memberLines, line)
	}
	for _, rel := range graph.Relationships() {
		if !memberSet[rel.SourceID] || !memberSet[rel.TargetID] {
			continue
		}
		src, _ := graph.GetEntity(rel.SourceID)
		tgt, _ := graph.GetEntity(rel.TargetID)
		relationLines = append(relationLines, fmt.Sprintf("- %s %s %s", src.Name, rel.Type, tgt.Name))
	}
	if len(relationLines) == 0 {
		relationLines = []string{"（无）"}
	}

	prompt := fmt.Sprintf(communityPrompt, strings.Join(memberLines, "\n"), strings.Join(relationLines, "\n"))
	response, err := s.client.Generate(ctx, prompt)
	if err != nil {
		s.logger.WithError(err).WithField("community", c.ID).Warn("community summary generation failed, using fallback")
		return c.Title, fallbackSummary(members), nil
	}

	payload, err := common.ParseJSON[communityPayload](response.Text)
	if err != nil {
		return c.Title, strings.TrimSpace(response.Text), nil
	}
	title = strings.TrimSpace(payload.Title)
	if title == "" {
		title = c.Title
	}
	summary = strings.TrimSpace(payload.Summary)
	if summary == "" {
		summary = fallbackSummary(members)
	}
	return title, summary, nil
}

// SummarizeAll fills Title and Summary on every community in the graph.
func (s *Summarizer) SummarizeAll(ctx context.Context, graph *model.KnowledgeGraph) error {
	for _, c := range graph.Communities() {
		title, summary, err := s.SummarizeCommunity(ctx, c, graph)
		if err != nil {
			return fmt.Errorf("summarize community %s: %w", c.ID, err)
		}
		c.Title = title
		c.Summary = summary
		graph.AddCommunity(c)
	}
	return nil
}

func fallbackSummary(members []model.Entity) string {
	byType := make(map[string][]string)
	var typeOrder []string
	for _, entity := range members {
		if _, ok := byType[entity.Type]; !ok {
			typeOrder = append(typeOrder, entity.Type)
		}
		byType[entity.Type] = append(byType[entity.Type], entity.Name)
	}
	var parts []string
	for _, t := range typeOrder {
		parts = append(parts, fmt.Sprintf("%s：%s", t, strings.Join(byType[t], "、")))
	}
	return "该社区包含 " + strings.Join(parts, "；")
}
