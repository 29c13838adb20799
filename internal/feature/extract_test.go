package feature

import (
	"strings"
	"testing"
)

func TestExtractFullSchemaAndIdempotent(t *testing.T) {
	e := NewExtractor(nil)
	text := "URGENT: sweet senior cat needs a home! Can you help? 🐱 [pics](http://imgur.com/x)"
	v1 := e.Extract(text)
	v2 := e.Extract(text)
	if v1.Len() != e.Schema().Len() {
		t.Fatalf("vector has %d values, schema has %d fields", v1.Len(), e.Schema().Len())
	}
	if !v1.Equal(v2) {
		t.Fatalf("extraction is not idempotent: %v vs %v", v1.Values(), v2.Values())
	}
	for _, name := range e.Schema().FieldNames() {
		if _, ok := v1.Get(name); !ok {
			t.Fatalf("missing field %s", name)
		}
	}
}

func TestExtractEmptyYieldsDefaults(t *testing.T) {
	e := NewExtractor(nil)
	for _, in := range []string{"", "   ", "\n\t  \n"} {
		v := e.Extract(in)
		want := e.Schema().Defaults()
		for i := range want {
			if v.At(i) != want[i] {
				t.Fatalf("input %q: field %s = %v, want default %v", in, e.Schema().Fields[i].Name, v.At(i), want[i])
			}
		}
	}
}

func TestExtractCounts(t *testing.T) {
	e := NewExtractor(nil)
	text := "URGENT!! Please adopt this sweet kitten 🐱🐶\nCan you pledge $50?"
	v := e.Extract(text)

	got := func(name string) float64 {
		f, ok := v.Get(name)
		if !ok {
			t.Fatalf("field %s missing", name)
		}
		return f
	}
	if got("num_exclamations") != 2 {
		t.Fatalf("num_exclamations = %v", got("num_exclamations"))
	}
	if got("has_question") != 1 {
		t.Fatalf("has_question = %v", got("has_question"))
	}
	if got("num_emojis") != 2 {
		t.Fatalf("num_emojis = %v", got("num_emojis"))
	}
	if got("has_urgency_words") != 1 {
		t.Fatalf("has_urgency_words = %v", got("has_urgency_words"))
	}
	if got("contains_adopt_keywords") != 1 {
		t.Fatalf("contains_adopt_keywords = %v", got("contains_adopt_keywords"))
	}
	if got("has_pronouns") != 1 {
		t.Fatalf("has_pronouns = %v", got("has_pronouns"))
	}
	if got("contains_money") != 1 {
		t.Fatalf("contains_money = %v", got("contains_money"))
	}
	if got("num_lines") != 2 {
		t.Fatalf("num_lines = %v", got("num_lines"))
	}
	if got("title_length") != float64(len([]rune(text))) {
		t.Fatalf("title_length = %v", got("title_length"))
	}
	if got("num_words") <= 0 {
		t.Fatalf("num_words = %v", got("num_words"))
	}
}

func TestCleanText(t *testing.T) {
	in := "Meet  FLUFFY!  http://shelter.org/f [photos](www.pics.com/a)\n\nso   sweet"
	got := CleanText(in)
	if strings.Contains(got, "http") || strings.Contains(got, "www") {
		t.Fatalf("urls survived cleaning: %q", got)
	}
	if strings.Contains(got, "[") || strings.Contains(got, "](") {
		t.Fatalf("markdown survived cleaning: %q", got)
	}
	if got != strings.ToLower(got) {
		t.Fatalf("not lowercased: %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Fatalf("whitespace not collapsed: %q", got)
	}
}

func TestSentimentBoundsAndSign(t *testing.T) {
	pos := SentimentScore("sweet loving happy gentle friendly")
	neg := SentimentScore("sad abandoned sick injured scared")
	if pos <= 0 || pos > 1 {
		t.Fatalf("positive text scored %v", pos)
	}
	if neg >= 0 || neg < -1 {
		t.Fatalf("negative text scored %v", neg)
	}
	if SentimentScore("") != 0 {
		t.Fatalf("empty text should score 0")
	}
	plain := SentimentScore("happy")
	negated := SentimentScore("not happy")
	if plain <= 0 || negated >= 0 {
		t.Fatalf("negation did not flip: %v vs %v", plain, negated)
	}
}

func TestDetectKind(t *testing.T) {
	cases := map[string]Kind{
		"Sweet kitten looking for a home": Cat,
		"Senior cat needs adoption":       Cat,
		"Loyal dog seeks family":          Dog,
		"Bonded pair of bunnies":          Dog,
	}
	for text, want := range cases {
		if got := DetectKind(text); got != want {
			t.Fatalf("DetectKind(%q) = %s, want %s", text, got, want)
		}
	}
	if ParseKind("cat", "dog post") != Cat {
		t.Fatalf("explicit kind should win over detection")
	}
	if ParseKind("", "playful kitten") != Cat {
		t.Fatalf("blank kind should fall back to detection")
	}
}
