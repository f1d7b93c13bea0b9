package util

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"
)

// ──────────────────────────────────────────────────────────────────────────────
// Global stats singleton
// ──────────────────────────────────────────────────────────────────────────────

// Stats is the process-wide connection/traffic counter for the client's
// single server connection, reconnects included.
var Stats = &stats{}

type stats struct {
	ConnectAttempts atomic.Int64 // cumulative dial attempts since process start
	Disconnects     atomic.Int64 // cumulative lost/closed connections since process start
	BytesSent       atomic.Int64 // cumulative bytes written to the server
	BytesRecv       atomic.Int64 // cumulative bytes read from the server
}

func (s *stats) AddConnectAttempt() { s.ConnectAttempts.Add(1) }
func (s *stats) AddDisconnect()     { s.Disconnects.Add(1) }
func (s *stats) AddSent(n int)      { s.BytesSent.Add(int64(n)) }
func (s *stats) AddRecv(n int)      { s.BytesRecv.Add(int64(n)) }

// ──────────────────────────────────────────────────────────────────────────────
// Periodic reporter
// ──────────────────────────────────────────────────────────────────────────────

// StartStatsReporter launches a goroutine that logs connection statistics
// every 10 seconds. It stops when ctx is cancelled.
func StartStatsReporter(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		var prevSent, prevRecv, prevAttempts, prevDisconnects int64
		for {
			select {
			case <-ticker.C:
				attempts := Stats.ConnectAttempts.Load()
				disconnects := Stats.Disconnects.Load()
				sent := Stats.BytesSent.Load()
				recv := Stats.BytesRecv.Load()

				inS := float64(recv-prevRecv) / 10.0
				outS := float64(sent-prevSent) / 10.0
				newAttempts := attempts - prevAttempts
				newDisconnects := disconnects - prevDisconnects

				if newAttempts > 0 || newDisconnects > 0 || inS > 10 || outS > 10 {
					pterm.DefaultLogger.Info(formatStats(inS, outS, newAttempts, newDisconnects))
				}

				prevSent = sent
				prevRecv = recv
				prevAttempts = attempts
				prevDisconnects = disconnects

			case <-ctx.Done():
				return
			}
		}
	}()
}

// byteUnits defines the units for formatting byte counts in a human-readable way.
var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// formatBytes formats a byte count into a human-readable string with fixed width (exactly 8 chars)
// for example: "99.0   B", " 1.5 KiB", " 0.1 MiB", "98.9 GiB", etc.
func formatBytes(b float64) string {
	unitIdx := 0

	// to prevent "100.0 KiB", which is 9 chars
	for b > 99 && unitIdx < 5 {
		b /= 1024
		unitIdx++
	}

	return fmt.Sprintf("%4.1f %3s", b, byteUnits[unitIdx])
}

// formatStats returns a formatted string of the current stats for display in the logger.
func formatStats(inS, outS float64, attempts, disconnects int64) string {
	return fmt.Sprintf("Out: %s/s | In: %s/s | Dial: %2d | Lost: %2d",
		formatBytes(outS),
		formatBytes(inS),
		attempts,
		disconnects,
	)
}
