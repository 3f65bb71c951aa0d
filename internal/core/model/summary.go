package model

import "time"

// SummaryMethod identifies the strategy that produced a summary.
type SummaryMethod string

const (
	MethodSimple    SummaryMethod = "simple"
	MethodOpenAI    SummaryMethod = "openai"
	MethodAnthropic SummaryMethod = "anthropic"
	MethodOllama    SummaryMethod = "ollama"
	MethodZhipu     SummaryMethod = "zhipu"
	MethodDeepSeek  SummaryMethod = "deepseek"
	MethodRAG       SummaryMethod = "rag"
	MethodGraphRAG  SummaryMethod = "graphrag"
)

// SummaryStyle controls the tone and shape of generated summaries.
type SummaryStyle string

const (
	StyleConcise      SummaryStyle = "concise"
	StyleDetailed     SummaryStyle = "detailed"
	StyleBulletPoints SummaryStyle = "bullet"
)

// Summary is an immutable value object. Derived variants are produced with
// WithKeyPoints/WithTags instead of mutating an existing instance.
type Summary struct {
	Content   string
	KeyPoints []string
	Tags      []string

	Method    SummaryMethod
	Style     SummaryStyle
	ModelName string

	InputTokens  int
	OutputTokens int

	CreatedAt time.Time
}

// NewSummary builds a summary stamped with the current UTC time.
func NewSummary(content string, method SummaryMethod, style SummaryStyle) *Summary {
	return &Summary{
		Content:   content,
		Method:    method,
		Style:     style,
		CreatedAt: time.Now().UTC(),
	}
}

// TotalTokens is always InputTokens + OutputTokens.
func (s *Summary) TotalTokens() int {
	return s.InputTokens + s.OutputTokens
}

// WithKeyPoints returns a copy carrying the given key points.
func (s *Summary) WithKeyPoints(keyPoints []string) *Summary {
	c := s.clone()
	c.KeyPoints = append([]string(nil), keyPoints...)
	return c
}

// WithTags returns a copy carrying the given tags.
func (s *Summary) WithTags(tags []string) *Summary {
	c := s.clone()
	c.Tags = append([]string(nil), tags...)
	return c
}

func (s *Summary) clone() *Summary {
	c := *s
	c.KeyPoints = append([]string(nil), s.KeyPoints...)
	c.Tags = append([]string(nil), s.Tags...)
	return &c
}
