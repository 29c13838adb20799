// Package tfidf builds a sparse TF-IDF index over post texts. It backs
// the per-class lexicon construction in divergence and the word
// replacement mining, both of which need cheap cosine lookups without
// pulling in a vector database.
package tfidf

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Vec is a sparse vector keyed by term or document index.
type Vec = map[int]float64

// Index holds TF-IDF weighted document vectors over a fixed corpus.
type Index struct {
	vocab map[string]int
	words []string
	idf   []float64
	docs  []Vec
}

// Tokenize lowercases s and splits it into letter/digit runs.
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	var tokens []string
	var cur strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else {
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// Build indexes texts. Empty input yields a usable empty index.
func Build(texts []string) *Index {
	if len(texts) == 0 {
		return &Index{vocab: make(map[string]int)}
	}

	// Vocabulary in first-seen order.
	vocab := make(map[string]int)
	var words []string
	for _, text := range texts {
		for _, tok := range Tokenize(text) {
			if _, ok := vocab[tok]; !ok {
				vocab[tok] = len(vocab)
				words = append(words, tok)
			}
		}
	}

	// Document frequency.
	df := make([]int, len(vocab))
	docs := make([]Vec, len(texts))
	n := float64(len(texts))

	for i, text := range texts {
		tf := make(map[int]int)
		for _, tok := range Tokenize(text) {
			if idx, ok := vocab[tok]; ok {
				tf[idx]++
			}
		}
		vec := make(Vec, len(tf))
		for idx, count := range tf {
			vec[idx] = float64(count)
			df[idx]++
		}
		docs[i] = vec
	}

	// IDF.
	idf := make([]float64, len(vocab))
	for i, d := range df {
		if d > 0 {
			idf[i] = math.Log(n/float64(d)) + 1.0
		}
	}

	// Apply TF-IDF weighting.
	for _, vec := range docs {
		for idx := range vec {
			vec[idx] *= idf[idx]
		}
	}

	return &Index{
		vocab: vocab,
		words: words,
		idf:   idf,
		docs:  docs,
	}
}

// Len reports the number of indexed documents.
func (ix *Index) Len() int { return len(ix.docs) }

// VocabSize reports the number of distinct terms.
func (ix *Index) VocabSize() int { return len(ix.vocab) }

// Words returns the vocabulary in index order. The slice is shared;
// callers must not modify it.
func (ix *Index) Words() []string { return ix.words }

// DocVec returns the weighted vector for document i, nil when out of range.
func (ix *Index) DocVec(i int) Vec {
	if i < 0 || i >= len(ix.docs) {
		return nil
	}
	return ix.docs[i]
}

// QueryVec weights query terms against the corpus vocabulary. Terms
// absent from the vocabulary are dropped.
func (ix *Index) QueryVec(query string) Vec {
	tf := make(map[int]int)
	for _, tok := range Tokenize(query) {
		if i, ok := ix.vocab[tok]; ok {
			tf[i]++
		}
	}
	vec := make(Vec, len(tf))
	for i, count := range tf {
		vec[i] = float64(count) * ix.idf[i]
	}
	return vec
}

// TopK returns the indices of the k documents most similar to query,
// best first. Documents with zero similarity are excluded.
func (ix *Index) TopK(query string, k int) []int {
	if len(ix.docs) == 0 || k <= 0 {
		return nil
	}
	qvec := ix.QueryVec(query)
	if len(qvec) == 0 {
		return nil
	}

	type scored struct {
		index int
		score float64
	}
	var results []scored
	for i, dvec := range ix.docs {
		sim := Cosine(qvec, dvec)
		if sim > 0 {
			results = append(results, scored{i, sim})
		}
	}
	sort.Slice(results, func(a, b int) bool {
		return results[a].score > results[b].score
	})
	if len(results) > k {
		results = results[:k]
	}
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.index
	}
	return out
}

// WordVec returns the document-incidence vector for word: the TF-IDF
// weight the word carries in each document containing it, keyed by
// document index. Unknown words yield nil.
func (ix *Index) WordVec(word string) Vec {
	idx, ok := ix.vocab[strings.ToLower(word)]
	if !ok {
		return nil
	}
	vec := make(Vec)
	for i, dvec := range ix.docs {
		if w, ok := dvec[idx]; ok {
			vec[i] = w
		}
	}
	return vec
}

// WordSim pairs a vocabulary word with its similarity to a probe word.
type WordSim struct {
	Word string
	Sim  float64
}

// SimilarWords ranks vocabulary words by cosine similarity of their
// document-incidence vectors against word. The probe word itself is
// excluded, and only entries with similarity >= minSim are returned,
// best first, at most k.
func (ix *Index) SimilarWords(word string, k int, minSim float64) []WordSim {
	probe := ix.WordVec(word)
	if len(probe) == 0 || k <= 0 {
		return nil
	}
	lower := strings.ToLower(word)

	var results []WordSim
	for _, cand := range ix.words {
		if cand == lower {
			continue
		}
		sim := Cosine(probe, ix.WordVec(cand))
		if sim >= minSim && sim > 0 {
			results = append(results, WordSim{Word: cand, Sim: sim})
		}
	}
	sort.Slice(results, func(a, b int) bool {
		if results[a].Sim != results[b].Sim {
			return results[a].Sim > results[b].Sim
		}
		return results[a].Word < results[b].Word
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// MeanWeights averages each term's TF-IDF weight over the given
// documents. Terms that never occur in the subset are omitted. Out of
// range document indices are skipped.
func (ix *Index) MeanWeights(docIDs []int) map[string]float64 {
	if len(docIDs) == 0 {
		return map[string]float64{}
	}
	sums := make(map[int]float64)
	var n int
	for _, id := range docIDs {
		if id < 0 || id >= len(ix.docs) {
			continue
		}
		n++
		for idx, w := range ix.docs[id] {
			sums[idx] += w
		}
	}
	out := make(map[string]float64, len(sums))
	if n == 0 {
		return out
	}
	for idx, sum := range sums {
		out[ix.words[idx]] = sum / float64(n)
	}
	return out
}

// Cosine computes cosine similarity between two sparse vectors.
func Cosine(a, b Vec) float64 {
	var dot, normA, normB float64
	for i, va := range a {
		if vb, ok := b[i]; ok {
			dot += va * vb
		}
		normA += va * va
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
