// Package supervisor is the top-level façade: it owns the retry loop
// around one client.Client, applying the config's constant reconnect
// delay (never exponential backoff) and forwarding status events to
// whatever sink the caller supplies.
package supervisor

import (
	"context"
	"time"

	"github.com/synergy-core/synergyc/internal/client"
	"github.com/synergy-core/synergyc/internal/config"
	"github.com/synergy-core/synergyc/internal/eventqueue"
	"github.com/synergy-core/synergyc/internal/screen"
	"github.com/synergy-core/synergyc/internal/util"
)

// Supervisor runs a client.Client to completion, reconnecting on
// FailedRetryable outcomes until ctx is cancelled, AutoRestart is false,
// or a FailedFatal outcome occurs.
type Supervisor struct {
	cfg    config.Config
	scr    screen.Screen
	status client.StatusFunc
}

// New creates a Supervisor for the given config, screen driver, and
// optional status sink (nil disables it).
func New(cfg config.Config, scr screen.Screen, status client.StatusFunc) *Supervisor {
	return &Supervisor{cfg: cfg, scr: scr, status: status}
}

// Run blocks until ctx is cancelled or a fatal/non-restarting outcome is
// reached, returning the last error seen, if any.
func (s *Supervisor) Run(ctx context.Context) error {
	var lastErr error
	for {
		if ctx.Err() != nil {
			return lastErr
		}

		q := eventqueue.New()
		c := client.New(s.cfg, s.scr, q, s.status)

		state, err := c.Run(ctx)
		lastErr = err

		switch state {
		case client.StateFailedFatal:
			util.LogError("giving up: %v", err)
			return err
		case client.StateFailedRetryable:
			if !s.cfg.AutoRestart {
				util.LogWarning("connection failed and auto-restart is disabled: %v", err)
				return err
			}
			util.LogWarning("connection failed, retrying in %s: %v", s.cfg.RetryDelay, err)
			if !sleepOrDone(ctx, s.cfg.RetryDelay) {
				return lastErr
			}
		case client.StateDisconnected:
			if !s.cfg.AutoRestart {
				return lastErr
			}
			if !sleepOrDone(ctx, s.cfg.RetryDelay) {
				return lastErr
			}
		}
	}
}

// sleepOrDone waits for d or ctx cancellation, reporting whether it slept
// the full duration (false means the caller should stop retrying).
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
