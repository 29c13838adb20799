package feature

import "strings"

// Kind selects which trained parameter set scores a post.
type Kind string

const (
	Cat Kind = "cat"
	Dog Kind = "dog"
)

// DetectKind guesses the pet kind from the post text. Cat markers win;
// everything else falls through to dog, matching the corpus split.
func DetectKind(text string) Kind {
	lt := strings.ToLower(text)
	if strings.Contains(lt, "cat") || strings.Contains(lt, "kitten") {
		return Cat
	}
	return Dog
}

// ParseKind maps a user-supplied kind string, falling back to detection.
func ParseKind(s, text string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cat":
		return Cat
	case "dog":
		return Dog
	default:
		return DetectKind(text)
	}
}
