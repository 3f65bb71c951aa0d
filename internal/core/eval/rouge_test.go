package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tokens := tokenize("GPT-4模型在2024年发布")

	assert.Equal(t, []string{"gpt", "4", "模", "型", "在", "2024", "年", "发", "布"}, tokens)
}

func TestTokenize_Empty(t *testing.T) {
	assert.Empty(t, tokenize(""))
	assert.Empty(t, tokenize("  ,.!  "))
}

func TestRougeN_IdenticalSequences(t *testing.T) {
	tokens := tokenize("机器学习模型")

	assert.InDelta(t, 1.0, rougeN(tokens, tokens, 1), 1e-9)
	assert.InDelta(t, 1.0, rougeN(tokens, tokens, 2), 1e-9)
}

func TestRougeN_DisjointSequences(t *testing.T) {
	ref := tokenize("机器学习")
	cand := tokenize("weekend football")

	assert.Zero(t, rougeN(ref, cand, 1))
	assert.Zero(t, rougeN(ref, cand, 2))
}

func TestRougeN_PartialOverlap(t *testing.T) {
	ref := []string{"a", "b", "c", "d"}
	cand := []string{"a", "b"}

	// precision 1, recall 0.5, F = 2/3
	assert.InDelta(t, 2.0/3.0, rougeN(ref, cand, 1), 1e-9)
}

func TestRougeN_TooShortForNgram(t *testing.T) {
	assert.Zero(t, rougeN([]string{"a"}, []string{"a"}, 2))
}

func TestRougeL_SubsequenceNotSubstring(t *testing.T) {
	ref := []string{"a", "x", "b", "y", "c"}
	cand := []string{"a", "b", "c"}

	// LCS is a,b,c: precision 1, recall 3/5
	assert.InDelta(t, 0.75, rougeL(ref, cand), 1e-9)
}

func TestRougeL_Empty(t *testing.T) {
	assert.Zero(t, rougeL(nil, []string{"a"}))
	assert.Zero(t, rougeL([]string{"a"}, nil))
}
