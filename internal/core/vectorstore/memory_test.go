package vectorstore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
)

func doc(id string, vector []float64, meta map[string]string) model.VectorDocument {
	return model.VectorDocument{ID: id, Text: "text-" + id, Vector: vector, Metadata: meta}
}

func TestMemory_AddAndGet(t *testing.T) {
	store := NewMemory(3)

	err := store.Add([]model.VectorDocument{doc("a", []float64{1, 0, 0}, nil)})
	require.NoError(t, err)

	got, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, "text-a", got.Text)
	assert.Equal(t, 1, store.Count())
}

func TestMemory_AddRejectsWrongDimension(t *testing.T) {
	store := NewMemory(3)

	err := store.Add([]model.VectorDocument{
		doc("a", []float64{1, 0, 0}, nil),
		doc("b", []float64{1, 0}, nil),
	})

	assert.ErrorIs(t, err, ErrDimensionMismatch)
	// a failed batch adds nothing
	assert.Zero(t, store.Count())
}

func TestMemory_AddUpserts(t *testing.T) {
	store := NewMemory(2)

	require.NoError(t, store.Add([]model.VectorDocument{doc("a", []float64{1, 0}, nil)}))
	updated := doc("a", []float64{0, 1}, nil)
	updated.Text = "updated"
	require.NoError(t, store.Add([]model.VectorDocument{updated}))

	got, _ := store.Get("a")
	assert.Equal(t, "updated", got.Text)
	assert.Equal(t, 1, store.Count())
}

func TestMemory_SearchRanksByCosineSimilarity(t *testing.T) {
	store := NewMemory(2)
	require.NoError(t, store.Add([]model.VectorDocument{
		doc("exact", []float64{1, 0}, nil),
		doc("orthogonal", []float64{0, 1}, nil),
		doc("close", []float64{1, 0.2}, nil),
	}))

	results, err := store.Search([]float64{1, 0}, 3, nil)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "exact", results[0].Document.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, "close", results[1].Document.ID)
	assert.Equal(t, "orthogonal", results[2].Document.ID)
	assert.InDelta(t, 0.0, results[2].Score, 1e-9)
}

func TestMemory_SearchTopKBound(t *testing.T) {
	store := NewMemory(2)
	for i := 0; i < 10; i++ {
		require.NoError(t, store.Add([]model.VectorDocument{
			doc(fmt.Sprintf("d%d", i), []float64{1, float64(i)}, nil),
		}))
	}

	results, err := store.Search([]float64{1, 0}, 3, nil)

	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestMemory_SearchTiesKeepInsertionOrder(t *testing.T) {
	store := NewMemory(2)
	require.NoError(t, store.Add([]model.VectorDocument{
		doc("first", []float64{1, 0}, nil),
		doc("second", []float64{2, 0}, nil), // same direction, same cosine
	}))

	results, err := store.Search([]float64{1, 0}, 2, nil)

	require.NoError(t, err)
	assert.Equal(t, "first", results[0].Document.ID)
	assert.Equal(t, "second", results[1].Document.ID)
}

func TestMemory_SearchMetadataFilter(t *testing.T) {
	store := NewMemory(2)
	require.NoError(t, store.Add([]model.VectorDocument{
		doc("a1", []float64{1, 0}, map[string]string{"article_id": "a"}),
		doc("b1", []float64{1, 0}, map[string]string{"article_id": "b"}),
		doc("a2", []float64{0, 1}, map[string]string{"article_id": "a"}),
	}))

	results, err := store.Search([]float64{1, 0}, 10, map[string]string{"article_id": "a"})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a1", results[0].Document.ID)
	assert.Equal(t, "a2", results[1].Document.ID)
}

func TestMemory_SearchRejectsWrongQueryDimension(t *testing.T) {
	store := NewMemory(3)

	_, err := store.Search([]float64{1, 0}, 5, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestMemory_DeleteIgnoresMissing(t *testing.T) {
	store := NewMemory(2)
	require.NoError(t, store.Add([]model.VectorDocument{
		doc("a", []float64{1, 0}, nil),
		doc("b", []float64{0, 1}, nil),
	}))

	store.Delete([]string{"a", "missing"})

	assert.Equal(t, 1, store.Count())
	_, ok := store.Get("a")
	assert.False(t, ok)
	_, ok = store.Get("b")
	assert.True(t, ok)
}

func TestMemory_Clear(t *testing.T) {
	store := NewMemory(2)
	require.NoError(t, store.Add([]model.VectorDocument{doc("a", []float64{1, 0}, nil)}))

	store.Clear()

	assert.Zero(t, store.Count())
	results, err := store.Search([]float64{1, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	store := NewMemory(2)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Add([]model.VectorDocument{
				doc(fmt.Sprintf("d%d", i), []float64{float64(i), 1}, nil),
			})
			_, _ = store.Search([]float64{1, 1}, 3, nil)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, store.Count())
}
