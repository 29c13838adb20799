package cmdlog

import (
	"time"

	"pawlift/internal/logging"
	"pawlift/internal/metrics"
)

// Run wraps a command body with counters and structured logs.
func Run(cmd string, f func() error) error {
	metrics.IncCommandRun(cmd)
	start := time.Now()
	err := f()
	if err != nil {
		metrics.IncCommandError(cmd)
		logging.Error(cmd+"_error", map[string]any{"error": err.Error(), "elapsed": time.Since(start).String()})
	} else {
		logging.Info(cmd+"_ok", map[string]any{"elapsed": time.Since(start).String()})
	}
	return err
}
