package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/common"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/llm"
)

const llmSummaryPrompt = `你是一个专业的文章摘要助手。请为以下文章生成摘要。

**摘要要求**: %s

**输出格式**（严格的 JSON 格式）:
{
    "summary": "摘要正文",
    "key_points": ["关键点1", "关键点2"],
    "tags": ["标签1", "标签2"]
}

**文章内容**:
%s

请输出 JSON 格式的摘要结果：`

var styleInstructions = map[model.SummaryStyle]string{
	model.StyleConcise:      "简洁凝练，3-5 句话概括全文核心",
	model.StyleDetailed:     "详细全面，覆盖文章的主要论点、论据和结论",
	model.StyleBulletPoints: "以要点列表形式组织，每条一句话",
}

type llmSummaryPayload struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
	Tags      []string `json:"tags"`
}

// LLM is the base model-backed summarizer. One implementation covers every
// chat provider; the method is derived from the provider name.
type LLM struct {
	client    llm.Client
	provider  string
	modelName string
	logger    *logrus.Logger
}

func NewLLM(client llm.Client, provider, modelName string, logger *logrus.Logger) *LLM {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LLM{client: client, provider: strings.ToLower(provider), modelName: modelName, logger: logger}
}

func (s *LLM) Name() string { return s.provider }

func (s *LLM) Method() model.SummaryMethod {
	switch s.provider {
	case "anthropic":
		return model.MethodAnthropic
	case "ollama":
		return model.MethodOllama
	case "zhipu":
		return model.MethodZhipu
	case "deepseek":
		return model.MethodDeepSeek
	default:
		return model.MethodOpenAI
	}
}

func (s *LLM) IsAvailable() bool { return s.client != nil }

// Client exposes the backing chat client for pipelines that need raw
// generation, like community summarization.
func (s *LLM) Client() llm.Client { return s.client }

func (s *LLM) Summarize(ctx context.Context, content string, style model.SummaryStyle) (*model.Summary, error) {
	if !s.IsAvailable() {
		return nil, fmt.Errorf("%w: %s has no backing client", ErrUnavailable, s.provider)
	}
	text := strings.TrimSpace(content)
	if text == "" {
		return nil, ErrEmptyContent
	}

	instruction, ok := styleInstructions[style]
	if !ok {
		instruction = styleInstructions[model.StyleConcise]
	}

	resp, err := s.client.Generate(ctx, fmt.Sprintf(llmSummaryPrompt, instruction, text))
	if err != nil {
		return nil, fmt.Errorf("summarization call failed: %w", err)
	}

	summary := model.NewSummary("", s.Method(), style)
	summary.ModelName = s.modelName
	summary.InputTokens = resp.InputTokens
	summary.OutputTokens = resp.OutputTokens

	payload, err := common.ParseJSON[llmSummaryPayload](resp.Text)
	if err != nil || payload.Summary == "" {
		// Not all models obey the JSON contract; keep the raw text.
		s.logger.WithField("provider", s.provider).Debug("summary response was not valid JSON, using raw text")
		summary.Content = strings.TrimSpace(resp.Text)
		return summary, nil
	}

	summary.Content = payload.Summary
	return summary.WithKeyPoints(payload.KeyPoints).WithTags(payload.Tags), nil
}
