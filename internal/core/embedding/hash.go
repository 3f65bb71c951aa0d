package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"unicode"
)

// HashEmbedder is a deterministic bag-of-words embedder: each token is FNV
// hashed into a bucket of a fixed-dimension vector, which is then L2
// normalized. It needs no model or network and serves as the offline
// fallback and the test embedder. Not semantically meaningful, but identical
// texts always land close together and share of vocabulary drives similarity.
type HashEmbedder struct {
	dimension int
}

func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = 256
	}
	return &HashEmbedder{dimension: dimension}
}

func (e *HashEmbedder) Name() string { return "hash" }

func (e *HashEmbedder) Dimension() int { return e.dimension }

func (e *HashEmbedder) IsAvailable() bool { return true }

func (e *HashEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, t := range texts {
		vectors[i] = e.embed(t)
	}
	return vectors, nil
}

func (e *HashEmbedder) EmbedSingle(_ context.Context, text string) ([]float64, error) {
	return e.embed(text), nil
}

func (e *HashEmbedder) embed(text string) []float64 {
	vec := make([]float64, e.dimension)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dimension]++
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// tokenize yields lowercased latin/digit runs as word tokens and each CJK
// rune as its own token.
func tokenize(text string) []string {
	var tokens []string
	var word []rune
	flush := func() {
		if len(word) > 0 {
			tokens = append(tokens, string(word))
			word = word[:0]
		}
	}
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word = append(word, unicode.ToLower(r))
		default:
			flush()
		}
	}
	flush()
	return tokens
}
