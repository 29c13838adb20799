package suggest

import (
	"context"
	"errors"
	"strings"
	"time"

	"pawlift/internal/config"
	"pawlift/internal/logging"
	"pawlift/internal/metrics"
	"pawlift/internal/predict"
)

// Orchestrator drives suggestion sessions. The generation call is the only
// blocking boundary in the scoring pipeline; every call gets its own
// deadline and bounded retries, and every outcome lands in the session's
// attempt log.
type Orchestrator struct {
	Gen       Generator
	Scorer    *predict.Scorer
	Opts      Options
	Timeout   time.Duration
	Retries   int
	Margin    float64
	CompareOn string
	Budget    *Budget

	provider string
}

// NewOrchestrator wires an orchestrator from config. gen may be nil for a
// degraded deployment; Suggest then refuses with ErrUnavailable.
func NewOrchestrator(gen Generator, scorer *predict.Scorer, cfg config.SuggestConfig, budget *Budget) *Orchestrator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}
	return &Orchestrator{
		Gen:       gen,
		Scorer:    scorer,
		Opts:      Options{MaxTokens: cfg.MaxTokens, Temperature: cfg.Temperature},
		Timeout:   timeout,
		Retries:   retries,
		Margin:    cfg.Margin,
		CompareOn: cfg.CompareOn,
		Budget:    budget,
		provider:  strings.ToLower(cfg.Provider),
	}
}

// Suggest runs one session over text. The returned session is terminal:
// IMPROVED, NO_IMPROVEMENT, or FAILED with a cause. An error return means
// the session could not run at all (scoring failure, exhausted budget,
// canceled caller) and carries no session.
func (o *Orchestrator) Suggest(ctx context.Context, text, kindOverride string) (*Session, error) {
	if o.Gen == nil {
		return nil, ErrUnavailable
	}
	original, err := o.Scorer.Score(text, kindOverride)
	if err != nil {
		return nil, err
	}
	if ok, err := o.Budget.Allow(ctx, time.Now().UTC()); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrBudgetExhausted
	}

	session := &Session{
		Original:  original,
		Status:    StatusPending,
		StartedAt: time.Now().UTC(),
	}
	prompt := BuildPrompt(original)

	tries := 1 + o.Retries
	for i := 0; i < tries; i++ {
		if i > 0 {
			metrics.IncGenerationRetry(o.provider)
		}
		attempt, candidates := o.attempt(ctx, i, prompt, original)
		session.Attempts = append(session.Attempts, attempt)

		if attempt.Cause == "" {
			o.finish(session, original, candidates)
			return session, nil
		}
		// A canceled caller abandons the session; partial attempts are
		// simply discarded.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logging.Warn("generation attempt failed", map[string]any{
			"attempt": i, "cause": string(attempt.Cause), "err": attempt.Err,
		})
	}

	last := session.Attempts[len(session.Attempts)-1]
	session.Status = StatusFailed
	session.Cause = last.Cause
	session.FinishedAt = time.Now().UTC()
	metrics.IncSuggestionSession(string(StatusFailed))
	return session, nil
}

// attempt performs one timed generation call and, on success, parses and
// re-scores the candidates. A non-empty Cause on the returned Attempt
// means the attempt failed.
func (o *Orchestrator) attempt(ctx context.Context, index int, prompt string, original *predict.ScoredPost) (Attempt, []Candidate) {
	attempt := Attempt{Index: index, StartedAt: time.Now().UTC()}

	actx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()
	start := time.Now()
	raw, err := o.Gen.Generate(actx, prompt, o.Opts)
	attempt.Duration = time.Since(start)
	metrics.ObserveGenerationLatency(start)
	if recordErr := o.Budget.Record(ctx, time.Now().UTC()); recordErr != nil {
		logging.Warn("budget record failed", map[string]any{"err": recordErr.Error()})
	}

	if err != nil {
		attempt.Err = err.Error()
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			attempt.Cause = CauseTimeout
		} else {
			attempt.Cause = CauseError
		}
		return attempt, nil
	}

	attempt.Raw = raw
	texts := ParseSuggestions(raw)
	if len(texts) == 0 {
		attempt.Cause = CauseEmpty
		return attempt, nil
	}

	var candidates []Candidate
	for _, t := range texts {
		scored, err := o.Scorer.Score(t, string(original.Kind))
		if err != nil {
			// Structural scoring failure; the candidate text itself can
			// never cause this.
			attempt.Err = err.Error()
			attempt.Cause = CauseError
			return attempt, nil
		}
		candidates = append(candidates, Candidate{Text: t, Scored: scored})
	}
	return attempt, candidates
}

func (o *Orchestrator) finish(session *Session, original *predict.ScoredPost, candidates []Candidate) {
	session.Candidates = candidates
	best := &candidates[0]
	for i := 1; i < len(candidates); i++ {
		if o.metric(candidates[i].Scored) > o.metric(best.Scored) {
			best = &candidates[i]
		}
	}
	session.Final = best
	if o.metric(best.Scored) > o.metric(original)+o.Margin {
		session.Status = StatusImproved
	} else {
		session.Status = StatusNoImprovement
	}
	session.FinishedAt = time.Now().UTC()
	metrics.IncSuggestionSession(string(session.Status))
	logging.Info("suggestion session finished", map[string]any{
		"status":     string(session.Status),
		"attempts":   len(session.Attempts),
		"candidates": len(candidates),
		"original":   o.metric(original),
		"best":       o.metric(best.Scored),
	})
}

// metric selects the comparison measure; regression score unless config
// asked for probability.
func (o *Orchestrator) metric(p *predict.ScoredPost) float64 {
	if o.CompareOn == "probability" {
		return p.Probability
	}
	return p.Score
}
