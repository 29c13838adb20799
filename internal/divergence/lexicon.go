package divergence

import (
	"errors"
	"math"
	"sort"
	"strings"

	"pawlift/internal/tfidf"
)

// ErrUndefined marks a split with no usable weight mass: nothing selected,
// only unknown words selected, or every selected weight zero. Callers must
// surface it as indeterminate rather than inventing a 50/50.
var ErrUndefined = errors.New("divergence undefined: selection carries no weight")

// WordImportance is one word's non-negative contribution toward each class.
type WordImportance struct {
	Word      string  `json:"word"`
	DogWeight float64 `json:"dog_weight"`
	CatWeight float64 `json:"cat_weight"`
}

// Lexicon is an ordered word-importance table.
type Lexicon []WordImportance

// DemoLexicon returns the packaged eight-word table used by the interactive
// word-picking demo. Weights are fixed literals, not learned.
func DemoLexicon() Lexicon {
	return Lexicon{
		{Word: "sweet", DogWeight: 0.0284, CatWeight: 0.0214},
		{Word: "feral", DogWeight: 0.0012, CatWeight: 0.0356},
		{Word: "happy", DogWeight: 0.0213, CatWeight: 0.0208},
		{Word: "available", DogWeight: 0.0198, CatWeight: 0.0187},
		{Word: "train", DogWeight: 0.0221, CatWeight: 0.0040},
		{Word: "rehome", DogWeight: 0.0175, CatWeight: 0.0133},
		{Word: "love", DogWeight: 0.0374, CatWeight: 0.0297},
		{Word: "thank", DogWeight: 0.0151, CatWeight: 0.0162},
	}
}

// Find looks a word up case-insensitively.
func (l Lexicon) Find(word string) (WordImportance, bool) {
	word = strings.ToLower(word)
	for _, wi := range l {
		if wi.Word == word {
			return wi, true
		}
	}
	return WordImportance{}, false
}

// Words returns the table's vocabulary in order.
func (l Lexicon) Words() []string {
	out := make([]string, len(l))
	for i, wi := range l {
		out[i] = wi.Word
	}
	return out
}

// Share is the heuristic percentage split of a word selection between the
// two classes. The percentages always sum to 100.
type Share struct {
	DogPct int `json:"dog_pct"`
	CatPct int `json:"cat_pct"`
}

// Split sums the selected words' class weights and normalizes the dog share
// to a percentage; the cat share is its complement. The result is a
// probability-like heuristic, not a calibrated probability. Unknown words
// are skipped; a selection with zero total weight returns ErrUndefined.
func (l Lexicon) Split(selected []string) (Share, error) {
	var dogTotal, catTotal float64
	for _, w := range selected {
		wi, ok := l.Find(w)
		if !ok {
			continue
		}
		dogTotal += wi.DogWeight
		catTotal += wi.CatWeight
	}
	total := dogTotal + catTotal
	if total == 0 {
		return Share{}, ErrUndefined
	}
	dogPct := int(math.Round(100 * dogTotal / total))
	return Share{DogPct: dogPct, CatPct: 100 - dogPct}, nil
}

// BuildLexicon derives a word-importance table from raw post texts: one
// shared TF-IDF index over both classes, then per-class mean weights, kept
// to the topN words by absolute class difference. It generalizes the fixed
// demo table to whatever corpus is on hand.
func BuildLexicon(dogTexts, catTexts []string, topN int) Lexicon {
	if topN <= 0 || (len(dogTexts) == 0 && len(catTexts) == 0) {
		return Lexicon{}
	}
	all := make([]string, 0, len(dogTexts)+len(catTexts))
	all = append(all, dogTexts...)
	all = append(all, catTexts...)
	ix := tfidf.Build(all)

	dogIDs := make([]int, len(dogTexts))
	for i := range dogTexts {
		dogIDs[i] = i
	}
	catIDs := make([]int, len(catTexts))
	for i := range catTexts {
		catIDs[i] = len(dogTexts) + i
	}
	dogMeans := ix.MeanWeights(dogIDs)
	catMeans := ix.MeanWeights(catIDs)

	seen := make(map[string]bool, len(dogMeans)+len(catMeans))
	out := make(Lexicon, 0, len(dogMeans)+len(catMeans))
	for word, w := range dogMeans {
		seen[word] = true
		out = append(out, WordImportance{Word: word, DogWeight: w, CatWeight: catMeans[word]})
	}
	for word, w := range catMeans {
		if !seen[word] {
			out = append(out, WordImportance{Word: word, CatWeight: w})
		}
	}
	sort.Slice(out, func(a, b int) bool {
		da := math.Abs(out[a].DogWeight - out[a].CatWeight)
		db := math.Abs(out[b].DogWeight - out[b].CatWeight)
		if da != db {
			return da > db
		}
		return out[a].Word < out[b].Word
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}
