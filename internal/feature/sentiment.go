package feature

import (
	"math"
	"strings"
)

// Valence lexicon for short adoption-post language. Scores follow the usual
// -5..+5 convention; the compound score normalizes the token sum into [-1, 1].
var valence = map[string]float64{
	"love": 3, "loves": 3, "loved": 3, "loving": 3, "adore": 3, "adorable": 3,
	"sweet": 2, "sweetest": 3, "cute": 2, "cutest": 3, "happy": 3, "happiest": 3,
	"gentle": 2, "friendly": 2, "playful": 2, "affectionate": 3, "cuddly": 2,
	"beautiful": 3, "gorgeous": 3, "wonderful": 4, "amazing": 4, "great": 3,
	"good": 2, "best": 3, "perfect": 3, "thank": 2, "thanks": 2, "thankful": 3,
	"grateful": 3, "joy": 3, "smart": 2, "calm": 1, "safe": 1, "healthy": 2,
	"forever": 1, "home": 1, "excited": 2, "fun": 2, "soft": 1, "purr": 2,
	"purrs": 2, "snuggle": 2, "snuggles": 2, "tail": 0, "wag": 2, "wags": 2,
	"sad": -2, "sadly": -2, "scared": -2, "afraid": -2, "abandoned": -3,
	"abused": -3, "neglected": -3, "sick": -2, "injured": -2, "hurt": -2,
	"alone": -2, "lonely": -2, "starving": -3, "dying": -4, "dead": -3,
	"lost": -2, "stray": -1, "feral": -1, "aggressive": -2, "bite": -2,
	"bites": -2, "problem": -2, "problems": -2, "bad": -3, "worst": -3,
	"terrible": -3, "awful": -3, "cruel": -3, "kill": -4, "killed": -4,
	"euthanized": -4, "euthanasia": -4, "urgent": -1, "emergency": -2,
	"desperate": -2, "crying": -2, "cry": -2, "fear": -2, "pain": -2,
	"poor": -1, "shy": -1, "nervous": -1, "trauma": -3, "terrified": -3,
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "none": true, "cannot": true,
	"isnt": true, "isn't": true, "wasnt": true, "wasn't": true, "dont": true,
	"don't": true, "doesnt": true, "doesn't": true, "didnt": true, "didn't": true,
	"wont": true, "won't": true, "cant": true, "can't": true,
}

const compoundAlpha = 15

// SentimentScore computes a lexicon-based polarity in [-1, 1] for cleaned
// text. A negation in the preceding two tokens flips a word's contribution.
func SentimentScore(cleaned string) float64 {
	if cleaned == "" {
		return 0
	}
	tokens := strings.Fields(cleaned)
	sum := 0.0
	for i, tok := range tokens {
		w := strings.Trim(tok, ".,!?;:()[]\"'*")
		v, ok := valence[w]
		if !ok || v == 0 {
			continue
		}
		if negatedAt(tokens, i) {
			v = -v * 0.74
		}
		sum += v
	}
	if sum == 0 {
		return 0
	}
	return sum / math.Sqrt(sum*sum+compoundAlpha)
}

func negatedAt(tokens []string, i int) bool {
	for back := 1; back <= 2; back++ {
		j := i - back
		if j < 0 {
			break
		}
		if negations[strings.Trim(tokens[j], ".,!?;:()[]\"'*")] {
			return true
		}
	}
	return false
}
