package community

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/llm"
)

type mockClient struct {
	response string
	err      error
	prompts  []string
}

func (m *mockClient) Generate(_ context.Context, prompt string) (*llm.Response, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return nil, m.err
	}
	return &llm.Response{Text: m.response}, nil
}

func communityGraph() *model.KnowledgeGraph {
	kg := model.NewKnowledgeGraph()
	kg.AddEntity(model.Entity{ID: "e1", Name: "深度学习", Type: "技术", Description: "神经网络方法"})
	kg.AddEntity(model.Entity{ID: "e2", Name: "图像识别", Type: "技术"})
	kg.AddEntity(model.Entity{ID: "e3", Name: "研究团队", Type: "组织"})
	kg.AddRelationship(model.Relationship{ID: "r1", SourceID: "e1", TargetID: "e2", Type: "应用于"})
	kg.AddCommunity(model.Community{ID: "c0", EntityIDs: []string{"e1", "e2"}, Title: "社区 1"})
	kg.AddCommunity(model.Community{ID: "c1", EntityIDs: []string{"e3"}, Title: "社区 2"})
	return kg
}

func TestSummarizeCommunity_WithLLM(t *testing.T) {
	client := &mockClient{response: `{"title": "深度学习应用", "summary": "该社区围绕深度学习在图像识别中的应用。"}`}
	s := NewSummarizer(client, nil)
	kg := communityGraph()

	title, summary, err := s.SummarizeCommunity(context.Background(), kg.Communities()[0], kg)

	require.NoError(t, err)
	assert.Equal(t, "深度学习应用", title)
	assert.Equal(t, "该社区围绕深度学习在图像识别中的应用。", summary)
	// prompt carries members and their relationship
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "深度学习")
	assert.Contains(t, client.prompts[0], "应用于")
}

func TestSummarizeCommunity_WithoutClientFallsBack(t *testing.T) {
	s := NewSummarizer(nil, nil)
	kg := communityGraph()

	title, summary, err := s.SummarizeCommunity(context.Background(), kg.Communities()[0], kg)

	require.NoError(t, err)
	assert.Equal(t, "社区 1", title)
	assert.Contains(t, summary, "技术")
	assert.Contains(t, summary, "深度学习")
}

func TestSummarizeCommunity_LLMErrorFallsBack(t *testing.T) {
	s := NewSummarizer(&mockClient{err: errors.New("backend down")}, nil)
	kg := communityGraph()

	title, summary, err := s.SummarizeCommunity(context.Background(), kg.Communities()[0], kg)

	require.NoError(t, err)
	assert.Equal(t, "社区 1", title)
	assert.NotEmpty(t, summary)
}

func TestSummarizeCommunity_NonJSONResponseUsedRaw(t *testing.T) {
	s := NewSummarizer(&mockClient{response: "这个社区关注深度学习。"}, nil)
	kg := communityGraph()

	_, summary, err := s.SummarizeCommunity(context.Background(), kg.Communities()[0], kg)

	require.NoError(t, err)
	assert.Equal(t, "这个社区关注深度学习。", summary)
}

func TestSummarizeAll_FillsEveryCommunity(t *testing.T) {
	client := &mockClient{response: `{"title": "主题", "summary": "概括"}`}
	s := NewSummarizer(client, nil)
	kg := communityGraph()

	err := s.SummarizeAll(context.Background(), kg)

	require.NoError(t, err)
	for _, c := range kg.Communities() {
		assert.Equal(t, "概括", c.Summary)
		assert.Equal(t, "主题", c.Title)
	}
	assert.Len(t, client.prompts, 2)
}
