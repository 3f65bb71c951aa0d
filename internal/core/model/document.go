package model

// Chunk is a bounded substring of a source document. Start and End are rune
// offsets over the concatenated stream of produced chunk texts, not into
// the source: overlapping runes are counted in every chunk carrying them.
type Chunk struct {
	Text  string
	Start int
	End   int
}

// Len reports the chunk length in runes.
func (c Chunk) Len() int {
	return len([]rune(c.Text))
}

// VectorDocument is an embedded text record owned by a vector store.
// It is immutable once added.
type VectorDocument struct {
	ID       string
	Text     string
	Vector   []float64
	Metadata map[string]string
}

// SearchResult pairs a stored document with its cosine similarity to the
// query vector. Scores lie in [-1, 1].
type SearchResult struct {
	Document VectorDocument
	Score    float64
}
