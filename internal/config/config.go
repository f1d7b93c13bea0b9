// Package config holds the client's runtime configuration, gathered from
// CLI flags and applied for the lifetime of one supervisor run.
package config

import "time"

// ScreenDriver names which screen.Screen implementation to use.
type ScreenDriver string

const (
	DriverRobotgo ScreenDriver = "robotgo"
	DriverConsole ScreenDriver = "console"
)

// Config holds everything the client needs to run: how to reach the
// server, what name to advertise, which local driver to synthesize input
// through, and the ambient knobs (retry delay, status sink, debug logging).
type Config struct {
	// ScreenName is this screen's name. The client shows it in its log and
	// status lines; no message the client sends to the server carries it.
	ScreenName string

	// ServerAddr is the host:port of the server to connect to.
	ServerAddr string

	// AutoRestart, when true, makes the supervisor retry after a
	// FailedRetryable disconnect instead of giving up.
	AutoRestart bool

	// RetryDelay is the constant delay between reconnect attempts
	// (deliberately constant, not exponential backoff).
	RetryDelay time.Duration

	// YScrollDelta is the wheel-tick size substituted for the server's
	// raw scroll units on platforms that need a scaling factor.
	YScrollDelta int

	// DisplayID names a specific local display/output. No screen driver in
	// this repository reads it, and no CLI flag sets it; drivers always use
	// their default display.
	DisplayID string

	// Driver selects which screen.Screen implementation to construct.
	Driver ScreenDriver

	// StatusAddr, if non-empty, is the "host:port" a status sink
	// WebSocket listener binds to. Empty disables the status sink.
	StatusAddr string

	// Debug enables debug-level logging.
	Debug bool
}

// DefaultRetryDelay is the constant-delay reconnect interval used when the
// caller does not override it.
const DefaultRetryDelay = 1 * time.Second

// DefaultYScrollDelta matches the conventional wheel-tick size used by the
// reference client this protocol originates from.
const DefaultYScrollDelta = 120

// New returns a Config with every ambient default filled in; callers
// overwrite whichever fields CLI flags provide.
func New() Config {
	return Config{
		AutoRestart:  true,
		RetryDelay:   DefaultRetryDelay,
		YScrollDelta: DefaultYScrollDelta,
		Driver:       DriverConsole,
	}
}
