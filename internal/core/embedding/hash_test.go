package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(64)

	a, err := e.EmbedSingle(context.Background(), "深度学习改变了图像识别")
	require.NoError(t, err)
	b, err := e.EmbedSingle(context.Background(), "深度学习改变了图像识别")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestHashEmbedder_Dimension(t *testing.T) {
	e := NewHashEmbedder(32)
	assert.Equal(t, 32, e.Dimension())

	vecs, err := e.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Len(t, vecs[0], 32)
	assert.Len(t, vecs[1], 32)
}

func TestHashEmbedder_DefaultDimension(t *testing.T) {
	e := NewHashEmbedder(0)
	assert.Equal(t, 256, e.Dimension())
}

func TestHashEmbedder_VectorsAreNormalized(t *testing.T) {
	e := NewHashEmbedder(64)

	vec, err := e.EmbedSingle(context.Background(), "normalized vector check 检查")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestHashEmbedder_SharedVocabularyScoresHigher(t *testing.T) {
	e := NewHashEmbedder(128)
	ctx := context.Background()

	query, _ := e.EmbedSingle(ctx, "机器学习模型训练")
	related, _ := e.EmbedSingle(ctx, "机器学习模型部署")
	unrelated, _ := e.EmbedSingle(ctx, "weekend football results")

	assert.Greater(t, cosine(query, related), cosine(query, unrelated))
}

func TestHashEmbedder_EmptyTextIsZeroVector(t *testing.T) {
	e := NewHashEmbedder(16)

	vec, err := e.EmbedSingle(context.Background(), "")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
