package summarize

import (
	"context"
	"errors"
	"sync"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
)

// mockSummarizer records every call and answers from a canned response or a
// per-call function.
type mockSummarizer struct {
	mu        sync.Mutex
	calls     []string
	response  *model.Summary
	respondFn func(content string) (*model.Summary, error)
	err       error
	available bool
}

func newMockSummarizer() *mockSummarizer {
	return &mockSummarizer{
		available: true,
		response:  model.NewSummary("摘要内容", model.MethodOpenAI, model.StyleConcise),
	}
}

func (m *mockSummarizer) Name() string { return "mock" }

func (m *mockSummarizer) Method() model.SummaryMethod { return model.MethodOpenAI }

func (m *mockSummarizer) IsAvailable() bool { return m.available }

func (m *mockSummarizer) Summarize(_ context.Context, content string, style model.SummaryStyle) (*model.Summary, error) {
	m.mu.Lock()
	m.calls = append(m.calls, content)
	m.mu.Unlock()

	if m.respondFn != nil {
		return m.respondFn(content)
	}
	if m.err != nil {
		return nil, m.err
	}
	s := *m.response
	s.Style = style
	return &s, nil
}

func (m *mockSummarizer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockSummarizer) callInputs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// failingEmbedder always errors, used to exercise degrade paths.
type failingEmbedder struct{}

func (failingEmbedder) Name() string      { return "failing" }
func (failingEmbedder) Dimension() int    { return 8 }
func (failingEmbedder) IsAvailable() bool { return true }

func (failingEmbedder) Embed(context.Context, []string) ([][]float64, error) {
	return nil, errors.New("embedding backend down")
}

func (failingEmbedder) EmbedSingle(context.Context, string) ([]float64, error) {
	return nil, errors.New("embedding backend down")
}
