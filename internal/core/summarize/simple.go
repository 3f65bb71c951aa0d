package summarize

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/common"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
)

// Simple is a rule-based summarizer that needs no model: lead paragraphs for
// the body, numbered list items or first sentences for key points, frequent
// CJK words for tags. It is the always-available fallback.
type Simple struct {
	maxLength int
}

func NewSimple() *Simple {
	return &Simple{maxLength: 500}
}

func (s *Simple) Name() string { return "simple" }

func (s *Simple) Method() model.SummaryMethod { return model.MethodSimple }

func (s *Simple) IsAvailable() bool { return true }

var (
	listItemRe     = regexp.MustCompile(`^[\d一二三四五六七八九十①②③④⑤][.、)）]`)
	cjkWordRe      = regexp.MustCompile(`[\p{Han}]{2,4}`)
	cjkSentenceRe  = regexp.MustCompile(`[。！？]`)
	signalKeywords = []string{"重要", "关键", "核心", "总结", "结论", "因此", "所以", "总之", "首先", "其次"}
	tagStopwords   = map[string]bool{
		"的": true, "是": true, "在": true, "有": true, "和": true, "与": true,
		"了": true, "等": true, "也": true, "都": true, "而": true, "及": true, "或": true,
	}
)

func (s *Simple) Summarize(_ context.Context, content string, style model.SummaryStyle) (*model.Summary, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return nil, ErrEmptyContent
	}

	var paragraphs []string
	for _, p := range strings.Split(text, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var body string
	if style == model.StyleBulletPoints {
		body = s.keySentences(paragraphs)
	} else {
		body = s.leadParagraphs(paragraphs)
	}

	summary := model.NewSummary(body, model.MethodSimple, style)
	summary.ModelName = s.Name()
	return summary.WithKeyPoints(s.keyPoints(paragraphs)).WithTags(s.tags(text)), nil
}

// leadParagraphs takes paragraphs from the top until the length budget runs
// out. An oversized first paragraph is truncated rather than skipped.
func (s *Simple) leadParagraphs(paragraphs []string) string {
	var out []string
	length := 0
	for _, p := range paragraphs {
		n := len([]rune(p))
		if length+n > s.maxLength {
			if len(out) == 0 {
				out = append(out, common.Truncate(p, s.maxLength))
			}
			break
		}
		out = append(out, p)
		length += n
	}
	return strings.Join(out, "\n\n")
}

// keySentences picks sentences containing discourse keywords; without any it
// falls back to lead paragraphs.
func (s *Simple) keySentences(paragraphs []string) string {
	var picked []string
	length := 0
	for _, p := range paragraphs {
		for _, sent := range cjkSentenceRe.Split(p, -1) {
			sent = strings.TrimSpace(sent)
			if sent == "" {
				continue
			}
			for _, kw := range signalKeywords {
				if strings.Contains(sent, kw) {
					sent += "。"
					if length+len([]rune(sent)) > s.maxLength {
						return strings.Join(picked, "\n")
					}
					picked = append(picked, sent)
					length += len([]rune(sent))
					break
				}
			}
		}
	}
	if len(picked) == 0 {
		return s.leadParagraphs(paragraphs)
	}
	return strings.Join(picked, "\n")
}

func (s *Simple) keyPoints(paragraphs []string) []string {
	const maxPoints = 5
	var points []string

	limit := len(paragraphs)
	if limit > 10 {
		limit = 10
	}
	for _, p := range paragraphs[:limit] {
		if listItemRe.MatchString(p) {
			point := strings.TrimSpace(listItemRe.ReplaceAllString(p, ""))
			if point != "" && len([]rune(point)) < 100 {
				points = append(points, point)
			}
		}
		if len(points) >= maxPoints {
			return points
		}
	}
	if len(points) > 0 {
		return points
	}

	// No list items: first sentence of the leading paragraphs.
	for _, p := range paragraphs {
		if len(points) >= maxPoints {
			break
		}
		first := strings.TrimSpace(cjkSentenceRe.Split(p, -1)[0])
		if first != "" && len([]rune(first)) < 100 {
			points = append(points, first)
		}
	}
	return points
}

func (s *Simple) tags(text string) []string {
	const maxTags = 5
	counts := make(map[string]int)
	var order []string
	for _, w := range cjkWordRe.FindAllString(text, -1) {
		if tagStopwords[w] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxTags {
		order = order[:maxTags]
	}
	return order
}
