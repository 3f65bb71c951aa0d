package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	chunks := Split("  一段很短的文本。  ", Options{ChunkSize: 100})

	require.Len(t, chunks, 1)
	assert.Equal(t, "一段很短的文本。", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 8, chunks[0].End)
}

func TestSplit_RespectsSizeBound(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString(strings.Repeat("正文内容。", 8))
		sb.WriteString("\n\n")
	}
	opts := Options{ChunkSize: 100, Overlap: 20}
	chunks := Split(sb.String(), opts)

	require.Greater(t, len(chunks), 1)
	// overlap prefix and the paragraph joiner may push a chunk past the
	// target size, but never past ChunkSize + Overlap + 2
	bound := opts.ChunkSize + opts.Overlap + 2
	for i, c := range chunks {
		assert.LessOrEqual(t, c.Len(), bound, "chunk %d", i)
		assert.NotEmpty(t, strings.TrimSpace(c.Text))
	}
}

func TestSplit_PrefersParagraphBoundaries(t *testing.T) {
	text := "第一段落的内容。\n\n第二段落的内容。\n\n" + strings.Repeat("第三段很长。", 30)
	chunks := Split(text, Options{ChunkSize: 60})

	require.Greater(t, len(chunks), 1)
	assert.Contains(t, chunks[0].Text, "第一段落的内容。")
	assert.Contains(t, chunks[0].Text, "第二段落的内容。")
}

func TestSplit_OversizedSentenceHardCut(t *testing.T) {
	text := strings.Repeat("无标点超长文本", 50) // no sentence enders at all
	chunks := Split(text, Options{ChunkSize: 100, Overlap: 0})

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, c.Len(), 100)
	}
}

func TestSplit_SentencePiecesReconstructInput(t *testing.T) {
	input := strings.Repeat("一句完整的话。", 60) // one paragraph, no joiners
	chunks := Split(input, Options{ChunkSize: 50, Overlap: 0, MaxChunks: 50})

	require.Greater(t, len(chunks), 1)
	var sb strings.Builder
	for _, c := range chunks {
		sb.WriteString(c.Text)
	}
	assert.Equal(t, input, sb.String())
}

func TestSplit_ParagraphChunksReconstructModuloJoiners(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 12; i++ {
		sb.WriteString(strings.Repeat("段落内容。", 8))
		sb.WriteString("\n\n")
	}
	input := strings.TrimSpace(sb.String())
	chunks := Split(input, Options{ChunkSize: 100, Overlap: 0})

	require.Greater(t, len(chunks), 1)
	var joined strings.Builder
	for _, c := range chunks {
		joined.WriteString(c.Text)
	}
	// joiners between chunks are dropped, so compare with all of them removed
	assert.Equal(t,
		strings.ReplaceAll(input, "\n\n", ""),
		strings.ReplaceAll(joined.String(), "\n\n", ""))
}

func TestSplit_MaxChunksTruncates(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString(strings.Repeat("一句完整的话。", 10))
		sb.WriteString("\n\n")
	}
	chunks := Split(sb.String(), Options{ChunkSize: 80, MaxChunks: 5})

	assert.Len(t, chunks, 5)
}

func TestSplit_OverlapCarriesTailOfPreviousChunk(t *testing.T) {
	para := strings.Repeat("有效内容。", 12) // 60 runes per paragraph
	text := para + "\n\n" + para + "\n\n" + para
	chunks := Split(text, Options{ChunkSize: 70, Overlap: 10})

	require.Greater(t, len(chunks), 1)
	prevTail := string([]rune(chunks[0].Text)[len([]rune(chunks[0].Text))-10:])
	assert.True(t, strings.HasPrefix(chunks[1].Text, prevTail))
}

func TestSplit_OffsetsAreContiguous(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString(strings.Repeat("连续内容。", 10))
		sb.WriteString("\n\n")
	}
	chunks := Split(sb.String(), Options{ChunkSize: 120})

	offset := 0
	for _, c := range chunks {
		assert.Equal(t, offset, c.Start)
		assert.Equal(t, offset+c.Len(), c.End)
		offset = c.End
	}
}
