// Package suggest runs the improvement loop: score a post, ask the
// generation provider for rewrites, re-score them, and report whether any
// candidate actually beats the original. Failures are never swallowed; a
// session always ends with a status and, when failed, a cause.
package suggest

import (
	"time"

	"pawlift/internal/predict"
)

// Status is the session state machine's terminal (or initial) state.
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusImproved      Status = "IMPROVED"
	StatusNoImprovement Status = "NO_IMPROVEMENT"
	StatusFailed        Status = "FAILED"
)

// Cause distinguishes why generation failed. Sessions that complete carry
// no cause.
type Cause string

const (
	CauseTimeout Cause = "GenerationTimeout"
	CauseError   Cause = "GenerationError"
	CauseEmpty   Cause = "GenerationEmpty"
)

// Attempt is one generation call's audit record. Attempts are appended in
// order regardless of outcome.
type Attempt struct {
	Index     int           `json:"index"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Raw       string        `json:"raw,omitempty"`
	Err       string        `json:"err,omitempty"`
	Cause     Cause         `json:"cause,omitempty"`
}

// Candidate is one generated rewrite, re-scored through the same pipeline
// as the original.
type Candidate struct {
	Text   string              `json:"text"`
	Scored *predict.ScoredPost `json:"scored"`
}

// Session is one full suggestion run over a single post.
type Session struct {
	Original   *predict.ScoredPost `json:"original"`
	Status     Status              `json:"status"`
	Cause      Cause               `json:"cause,omitempty"`
	Attempts   []Attempt           `json:"attempts"`
	Candidates []Candidate         `json:"candidates,omitempty"`
	Final      *Candidate          `json:"final,omitempty"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
}
