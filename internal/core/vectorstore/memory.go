package vectorstore

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
)

// ErrDimensionMismatch is returned when a vector's length does not match the
// store's fixed dimension. The check happens at Add time, never at Search.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Memory is an in-memory vector store using brute-force cosine similarity.
// It is safe for concurrent use: mutation takes the write lock, searches and
// reads share the read lock and always see a consistent snapshot.
type Memory struct {
	mu        sync.RWMutex
	dimension int
	documents map[string]model.VectorDocument
	order     []string
}

// NewMemory creates a store with a fixed vector dimension.
func NewMemory(dimension int) *Memory {
	if dimension <= 0 {
		dimension = 384
	}
	return &Memory{
		dimension: dimension,
		documents: make(map[string]model.VectorDocument),
	}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) IsAvailable() bool { return true }

// Dimension reports the fixed vector dimension of the store.
func (m *Memory) Dimension() int { return m.dimension }

// Add upserts documents by id. Every vector must match the store dimension,
// otherwise nothing is added and ErrDimensionMismatch is returned.
func (m *Memory) Add(documents []model.VectorDocument) error {
	for _, doc := range documents {
		if len(doc.Vector) != m.dimension {
			return fmt.Errorf("%w: expected %d, got %d for document %q",
				ErrDimensionMismatch, m.dimension, len(doc.Vector), doc.ID)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range documents {
		if _, exists := m.documents[doc.ID]; !exists {
			m.order = append(m.order, doc.ID)
		}
		m.documents[doc.ID] = doc
	}
	return nil
}

// Search returns up to topK documents ranked by descending cosine similarity
// to the query vector. Ties keep insertion order. filterMetadata, when
// non-nil, restricts candidates to documents whose metadata contains every
// given key/value pair.
func (m *Memory) Search(queryVector []float64, topK int, filterMetadata map[string]string) ([]model.SearchResult, error) {
	if len(queryVector) != m.dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d for query vector",
			ErrDimensionMismatch, m.dimension, len(queryVector))
	}
	if topK <= 0 {
		topK = 5
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		result model.SearchResult
		pos    int
	}
	candidates := make([]scored, 0, len(m.order))
	for pos, id := range m.order {
		doc := m.documents[id]
		if !matchMetadata(doc.Metadata, filterMetadata) {
			continue
		}
		candidates = append(candidates, scored{
			result: model.SearchResult{Document: doc, Score: cosineSimilarity(queryVector, doc.Vector)},
			pos:    pos,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].result.Score != candidates[j].result.Score {
			return candidates[i].result.Score > candidates[j].result.Score
		}
		return candidates[i].pos < candidates[j].pos
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}
	results := make([]model.SearchResult, 0, topK)
	for _, c := range candidates[:topK] {
		results = append(results, c.result)
	}
	return results, nil
}

// Delete removes the given ids. Missing ids are ignored.
func (m *Memory) Delete(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := m.documents[id]; ok {
			delete(m.documents, id)
			removed[id] = true
		}
	}
	if len(removed) == 0 {
		return
	}
	kept := m.order[:0]
	for _, id := range m.order {
		if !removed[id] {
			kept = append(kept, id)
		}
	}
	m.order = kept
}

// Get returns the document with the given id, if present.
func (m *Memory) Get(id string) (model.VectorDocument, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	return doc, ok
}

// Clear removes every document.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents = make(map[string]model.VectorDocument)
	m.order = nil
}

// Count reports the number of stored documents.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.documents)
}

func matchMetadata(docMeta, filter map[string]string) bool {
	for k, v := range filter {
		if docMeta[k] != v {
			return false
		}
	}
	return true
}

// cosineSimilarity returns dot(a,b)/(|a||b|). A zero-norm vector scores 0
// against everything; there is never a division by zero.
func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
