package suggest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"pawlift/internal/config"
)

// ErrUnavailable marks a disabled generation capability. Scoring surfaces
// keep working; only suggestion sessions refuse.
var ErrUnavailable = errors.New("generation capability unavailable")

// Options control one generation call.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Generator produces rewrite text for a prompt. Implementations must honor
// ctx cancellation and deadlines.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// NewGenerator builds the configured provider. Provider "none" (or empty)
// returns nil: callers treat a nil generator as a degraded deployment, not
// an error. An enabled provider without an API key is a config error.
func NewGenerator(cfg config.SuggestConfig) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return nil, nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("suggest provider openai: OPENAI_API_KEY not set")
		}
		return NewOpenAI(cfg.APIKey, cfg.Model), nil
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("suggest provider anthropic: ANTHROPIC_API_KEY not set")
		}
		return NewAnthropic(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown suggest provider %q", cfg.Provider)
	}
}

// newDefaultLimiter creates the provider rate limiter, with env overrides.
func newDefaultLimiter() *rate.Limiter {
	rps := 1.0
	burst := 3
	if v := os.Getenv("PAWLIFT_LLM_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			rps = f
		}
	}
	if v := os.Getenv("PAWLIFT_LLM_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			burst = n
		}
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil && i > 0 {
		return i
	}
	return def
}
