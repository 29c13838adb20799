// Package replacement mines word-level advice from the corpus: words that
// show up often in low-engagement posts, paired with similar words the
// trained model considers important. Similarity comes from cosine over
// TF-IDF document-incidence vectors, so "similar" means "used in the same
// kinds of posts", not dictionary synonymy.
package replacement

import (
	"sort"
	"strings"

	"pawlift/internal/feature"
	"pawlift/internal/predict"
	"pawlift/internal/tfidf"
)

// Params tune the mining pass.
type Params struct {
	TopN       int     // important words taken from the artifact vocabulary
	MinCount   int     // occurrence floor in low-labeled posts
	MaxOptions int     // replacement options per word
	MinSim     float64 // cosine similarity floor
}

// Defaults mirror the knobs the mining was tuned with.
func Defaults() Params {
	return Params{TopN: 30, MinCount: 5, MaxOptions: 3, MinSim: 0.5}
}

// Option is one proposed replacement word.
type Option struct {
	Word       string  `json:"word"`
	Similarity float64 `json:"similarity"`
}

// Suggestion maps a frequent low-post word to its replacement options.
type Suggestion struct {
	Word    string   `json:"word"`
	Count   int      `json:"count"`
	Options []Option `json:"options"`
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "has": true,
	"have": true, "had": true, "this": true, "that": true, "with": true,
	"they": true, "them": true, "from": true, "she": true, "his": true,
	"him": true, "who": true, "will": true, "would": true, "there": true,
	"their": true, "what": true, "about": true, "which": true, "when": true,
	"your": true, "just": true, "into": true, "some": true, "could": true,
	"been": true, "were": true, "very": true, "also": true, "any": true,
	"because": true, "how": true, "its": true, "then": true, "than": true,
}

// Suggest runs the mining pass. vocab is the trained artifact's per-kind
// word importances; lowTexts are raw low-labeled post texts; allTexts is
// the whole corpus the incidence vectors are built over. An empty corpus
// or an artifact without vocabulary yields no suggestions, never an error.
func Suggest(vocab []predict.VocabWeight, lowTexts, allTexts []string, p Params) []Suggestion {
	if len(vocab) == 0 || len(allTexts) == 0 || p.TopN <= 0 || p.MaxOptions <= 0 {
		return nil
	}

	important := topImportant(vocab, p.TopN)
	if len(important) == 0 {
		return nil
	}
	importantSet := make(map[string]bool, len(important))
	for _, w := range important {
		importantSet[w] = true
	}

	counts := make(map[string]int)
	for _, text := range lowTexts {
		for _, tok := range tfidf.Tokenize(feature.CleanText(text)) {
			if len(tok) <= 2 || stopwords[tok] || importantSet[tok] {
				continue
			}
			counts[tok]++
		}
	}

	cleaned := make([]string, len(allTexts))
	for i, text := range allTexts {
		cleaned[i] = feature.CleanText(text)
	}
	ix := tfidf.Build(cleaned)

	var out []Suggestion
	for word, count := range counts {
		if count < p.MinCount {
			continue
		}
		probe := ix.WordVec(word)
		if len(probe) == 0 {
			continue
		}
		var options []Option
		for _, imp := range important {
			sim := tfidf.Cosine(probe, ix.WordVec(imp))
			if sim >= p.MinSim {
				options = append(options, Option{Word: imp, Similarity: sim})
			}
		}
		if len(options) == 0 {
			continue
		}
		sort.Slice(options, func(a, b int) bool {
			if options[a].Similarity != options[b].Similarity {
				return options[a].Similarity > options[b].Similarity
			}
			return options[a].Word < options[b].Word
		})
		if len(options) > p.MaxOptions {
			options = options[:p.MaxOptions]
		}
		out = append(out, Suggestion{Word: word, Count: count, Options: options})
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].Word < out[b].Word
	})
	return out
}

// topImportant ranks the vocabulary by weight and keeps usable words.
func topImportant(vocab []predict.VocabWeight, topN int) []string {
	ranked := make([]predict.VocabWeight, len(vocab))
	copy(ranked, vocab)
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].Weight != ranked[b].Weight {
			return ranked[a].Weight > ranked[b].Weight
		}
		return ranked[a].Word < ranked[b].Word
	})
	var out []string
	for _, vw := range ranked {
		w := strings.ToLower(vw.Word)
		if len(w) <= 2 || stopwords[w] {
			continue
		}
		out = append(out, w)
		if len(out) == topN {
			break
		}
	}
	return out
}
