package eval

import "unicode"

// tokenize splits text into scoring tokens: each CJK rune is its own token,
// latin letter and digit runs form word tokens. No stemming, Chinese text
// does not need it.
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

// rougeN computes the ROUGE-N F-measure between reference and candidate
// token sequences for the given n-gram size.
func rougeN(reference, candidate []string, n int) float64 {
	refGrams := ngramCounts(reference, n)
	candGrams := ngramCounts(candidate, n)
	if len(refGrams) == 0 || len(candGrams) == 0 {
		return 0
	}

	overlap := 0
	candTotal := 0
	for gram, count := range candGrams {
		candTotal += count
		if refCount, ok := refGrams[gram]; ok {
			if count < refCount {
				overlap += count
			} else {
				overlap += refCount
			}
		}
	}
	refTotal := 0
	for _, count := range refGrams {
		refTotal += count
	}
	return fMeasure(overlap, candTotal, refTotal)
}

// rougeL computes the ROUGE-L F-measure based on the longest common
// subsequence of the two token sequences.
func rougeL(reference, candidate []string) float64 {
	if len(reference) == 0 || len(candidate) == 0 {
		return 0
	}
	lcs := lcsLength(reference, candidate)
	return fMeasure(lcs, len(candidate), len(reference))
}

func fMeasure(overlap, candTotal, refTotal int) float64 {
	if overlap == 0 || candTotal == 0 || refTotal == 0 {
		return 0
	}
	precision := float64(overlap) / float64(candTotal)
	recall := float64(overlap) / float64(refTotal)
	return 2 * precision * recall / (precision + recall)
}

func ngramCounts(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	if len(tokens) < n {
		return counts
	}
	for i := 0; i+n <= len(tokens); i++ {
		gram := tokens[i]
		for j := 1; j < n; j++ {
			gram += "\x00" + tokens[i+j]
		}
		counts[gram]++
	}
	return counts
}

// lcsLength runs the classic dynamic program with two rolling rows.
func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
