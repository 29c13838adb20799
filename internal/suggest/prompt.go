package suggest

import (
	"fmt"
	"regexp"
	"strings"

	"pawlift/internal/predict"
)

// SystemPrompt frames every generation call.
const SystemPrompt = "You are a pet adoption content optimization expert. " +
	"You help shelters and fosters rewrite posts so more adopters see and answer them."

// BuildPrompt renders the user prompt for one scored post. The model sees
// the predicted engagement so it knows how hard to push.
func BuildPrompt(p *predict.ScoredPost) string {
	tone := "low"
	if p.Label == predict.High {
		tone = "high"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "The following adoption post is for a %s. ", p.Kind)
	fmt.Fprintf(&b, "Our engagement model rates it as likely %s engagement (predicted probability: %.2f).\n\n", tone, p.Probability)
	b.WriteString("Rewrite the post to increase engagement (likes, comments, shares). Consider:\n")
	b.WriteString("- Emotional tone and word choice\n")
	b.WriteString("- Clarity and specificity of the pet's description\n")
	b.WriteString("- Use of urgency or calls to action\n")
	b.WriteString("- Community-oriented language\n\n")
	b.WriteString("Original post:\n")
	b.WriteString(p.Text)
	b.WriteString("\n\nReturn exactly three numbered rewrites (1. 2. 3.), each a complete replacement post. Only return the rewrites.")
	return b.String()
}

var itemPattern = regexp.MustCompile(`^\s*\d+[.)]\s*(.*)$`)

// ParseSuggestions splits raw generation output into candidate texts.
// Code fences are dropped, numbered items become separate candidates with
// continuation lines folded in, and un-numbered output falls back to a
// single candidate. Blank output yields none.
func ParseSuggestions(raw string) []string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}

	var items []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			items = append(items, s)
		}
		cur.Reset()
	}
	numbered := false
	for _, line := range kept {
		if m := itemPattern.FindStringSubmatch(line); m != nil {
			flush()
			numbered = true
			cur.WriteString(m[1])
			continue
		}
		if numbered {
			cur.WriteString("\n")
			cur.WriteString(line)
		}
	}
	flush()

	if !numbered {
		if s := strings.TrimSpace(strings.Join(kept, "\n")); s != "" {
			return []string{s}
		}
		return nil
	}
	return items
}
