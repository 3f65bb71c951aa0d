package chunker

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
)

// Options bound how text is split.
type Options struct {
	// ChunkSize is the target chunk length in runes.
	ChunkSize int
	// Overlap is how many trailing runes of a chunk are repeated at the
	// start of the next one.
	Overlap int
	// MaxChunks caps the number of produced chunks. Text beyond the cap is
	// dropped; the truncation is logged but not an error.
	MaxChunks int
	// Tolerance is the slack allowed over ChunkSize so a chunk can end on a
	// sentence boundary instead of mid-sentence.
	Tolerance int

	Logger *logrus.Logger
}

const (
	DefaultChunkSize = 4000
	DefaultOverlap   = 200
	DefaultMaxChunks = 20
	DefaultTolerance = 200
)

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	if o.Overlap >= o.ChunkSize {
		o.Overlap = o.ChunkSize / 4
	}
	if o.MaxChunks <= 0 {
		o.MaxChunks = DefaultMaxChunks
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}

var sentenceEnders = map[rune]bool{
	'。': true, '！': true, '？': true,
	'.': true, '!': true, '?': true,
}

// Split cuts text into bounded, overlapping chunks. Splitting prefers
// paragraph boundaries, then sentence boundaries, then hard rune cuts.
// Input that already fits in one chunk is returned trimmed, as-is.
// With zero overlap the chunk texts concatenate back to the input, except
// for the paragraph joiners dropped at chunk boundaries and any tail cut
// by MaxChunks.
func Split(text string, opts Options) []model.Chunk {
	opts = opts.withDefaults()
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)

	if len(runes) <= opts.ChunkSize {
		return []model.Chunk{{Text: trimmed, Start: 0, End: len(runes)}}
	}

	var pieces []string
	current := ""

	for _, para := range splitParagraphs(trimmed) {
		if runeLen(current)+runeLen(para)+2 <= opts.ChunkSize {
			if current != "" {
				current += "\n\n"
			}
			current += para
			continue
		}
		if current != "" {
			pieces = append(pieces, current)
		}
		if runeLen(para) > opts.ChunkSize {
			sub := splitSentences(para, opts.ChunkSize, opts.Tolerance)
			if len(sub) > 1 {
				pieces = append(pieces, sub[:len(sub)-1]...)
			}
			current = sub[len(sub)-1]
		} else if len(pieces) > 0 && opts.Overlap > 0 {
			current = tail(pieces[len(pieces)-1], opts.Overlap) + "\n\n" + para
		} else {
			current = para
		}
	}
	if current != "" {
		pieces = append(pieces, current)
	}

	if len(pieces) > opts.MaxChunks {
		opts.Logger.WithFields(logrus.Fields{
			"chunks": len(pieces),
			"limit":  opts.MaxChunks,
		}).Warn("chunk count exceeds limit, truncating remainder")
		pieces = pieces[:opts.MaxChunks]
	}

	chunks := make([]model.Chunk, 0, len(pieces))
	offset := 0
	for _, p := range pieces {
		n := runeLen(p)
		chunks = append(chunks, model.Chunk{Text: p, Start: offset, End: offset + n})
		offset += n
	}
	return chunks
}

// splitParagraphs splits on blank lines, dropping empty paragraphs.
func splitParagraphs(text string) []string {
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			out = append(out, block)
		}
	}
	return out
}

// splitSentences breaks an oversized paragraph at sentence enders so that no
// piece exceeds limit. A single sentence may overrun limit by up to tolerance
// and still stand as its own piece; anything longer is hard-cut.
func splitSentences(para string, limit, tolerance int) []string {
	var sentences []string
	var sb strings.Builder
	for _, r := range para {
		sb.WriteRune(r)
		if sentenceEnders[r] {
			sentences = append(sentences, sb.String())
			sb.Reset()
		}
	}
	if sb.Len() > 0 {
		sentences = append(sentences, sb.String())
	}

	var out []string
	current := ""
	for _, s := range sentences {
		if runeLen(s) > limit+tolerance {
			if current != "" {
				out = append(out, current)
				current = ""
			}
			out = append(out, hardCut(s, limit)...)
			continue
		}
		if runeLen(current)+runeLen(s) <= limit {
			current += s
		} else {
			if current != "" {
				out = append(out, current)
			}
			current = s
		}
	}
	if current != "" {
		out = append(out, current)
	}
	if len(out) == 0 {
		out = []string{para}
	}
	return out
}

func hardCut(s string, limit int) []string {
	runes := []rune(s)
	var out []string
	for len(runes) > limit {
		out = append(out, string(runes[:limit]))
		runes = runes[limit:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

func runeLen(s string) int { return len([]rune(s)) }
