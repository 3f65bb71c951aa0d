package summarize

import (
	"context"
	"errors"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
)

var (
	// ErrUnavailable means a summarizer's backing capability is not
	// configured. Callers should check IsAvailable before Summarize.
	ErrUnavailable = errors.New("summarizer unavailable")

	// ErrEmptyContent means there was nothing to summarize.
	ErrEmptyContent = errors.New("empty content")

	// ErrAllChunksFailed means every chunk of a MapReduce map phase failed.
	ErrAllChunksFailed = errors.New("all chunk summarizations failed")
)

// Summarizer condenses article text into a Summary. Implementations must be
// safe for concurrent calls.
type Summarizer interface {
	Summarize(ctx context.Context, content string, style model.SummaryStyle) (*model.Summary, error)
	IsAvailable() bool
	Name() string
	Method() model.SummaryMethod
}
