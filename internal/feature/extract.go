package feature

import (
	"regexp"
	"strings"

	"github.com/forPelevin/gomoji"
	"github.com/jdkato/prose/v2"

	"pawlift/internal/logging"
	"pawlift/internal/metrics"
)

var (
	urgencyWords  = []string{"urgent", "emergency", "last chance", "help", "please"}
	pronounWords  = []string{"you", "your", "we", "us"}
	moneyWords    = []string{"donation", "donate", "pledge", "$", "fund", "raise"}
	adoptionWords = []string{"adopt", "adoption", "adopted", "rescue", "rescued", "rehome", "shelter", "foster"}
	moneyPattern  = regexp.MustCompile(`\$\d+`)
)

// Extractor turns raw post text into a schema-ordered feature vector. It is
// stateless and safe for concurrent use; extraction is total, so any string
// input yields a full-schema vector and never an error.
type Extractor struct {
	schema *Schema
}

// NewExtractor builds an extractor over the given schema (builtin when nil).
func NewExtractor(s *Schema) *Extractor {
	if s == nil {
		s = Builtin()
	}
	return &Extractor{schema: s}
}

// Schema returns the extractor's schema.
func (e *Extractor) Schema() *Schema { return e.schema }

// Extract computes the feature vector for text. Empty or whitespace-only
// input yields the all-default vector, counted and logged, never an error.
func (e *Extractor) Extract(text string) Vector {
	if strings.TrimSpace(text) == "" {
		metrics.ExtractionDefaults.Inc()
		logging.Debug("extract_default", map[string]any{"reason": "empty input"})
		return Vector{schema: e.schema, values: e.schema.Defaults()}
	}

	cleaned := CleanText(text)
	adjectives, verbs, tagged := posCounts(cleaned)
	if !tagged {
		metrics.ExtractionDefaults.Inc()
		logging.Debug("extract_default", map[string]any{"reason": "pos tagging failed"})
	}

	computed := map[string]float64{
		"sentiment_score":         SentimentScore(cleaned),
		"num_adjectives":          float64(adjectives),
		"num_verbs":               float64(verbs),
		"num_exclamations":        float64(strings.Count(text, "!")),
		"has_question":            boolFeature(strings.Contains(text, "?")),
		"num_emojis":              float64(countEmojis(text)),
		"contains_adopt_keywords": boolFeature(containsAny(cleaned, adoptionWords)),
		"has_urgency_words":       boolFeature(containsAny(cleaned, urgencyWords)),
		"has_pronouns":            boolFeature(containsAny(cleaned, pronounWords)),
		"num_words":               float64(len(strings.Fields(cleaned))),
		"title_length":            float64(len([]rune(text))),
		"contains_money":          boolFeature(containsAny(cleaned, moneyWords) || moneyPattern.MatchString(cleaned)),
		"num_lines":               float64(strings.Count(text, "\n") + 1),
	}

	values := make([]float64, e.schema.Len())
	for i, f := range e.schema.Fields {
		if v, ok := computed[f.Name]; ok {
			values[i] = v
		} else {
			values[i] = f.Default
		}
	}
	return Vector{schema: e.schema, values: values}
}

// posCounts tags cleaned text and counts adjective and verb tokens. The
// false return marks a tagger failure; callers fall back to zero counts.
func posCounts(cleaned string) (adjectives, verbs int, ok bool) {
	if cleaned == "" {
		return 0, 0, true
	}
	doc, err := prose.NewDocument(cleaned, prose.WithExtraction(false), prose.WithSegmentation(false))
	if err != nil {
		return 0, 0, false
	}
	for _, tok := range doc.Tokens() {
		switch {
		case strings.HasPrefix(tok.Tag, "JJ"):
			adjectives++
		case strings.HasPrefix(tok.Tag, "VB"):
			verbs++
		}
	}
	return adjectives, verbs, true
}

// countEmojis counts emoji per Unicode codepoint, never byte length.
func countEmojis(text string) int {
	n := 0
	for _, r := range text {
		if gomoji.ContainsEmoji(string(r)) {
			n++
		}
	}
	return n
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
