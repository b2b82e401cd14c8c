// ABOUTME: Cooperative cancellation signal
// ABOUTME: Atomic flag set by signal handlers and observed by the poll loop
package engine

import "sync/atomic"

// Signal is a process-friendly stop flag. It is set at most a handful of
// times (interrupt, logoff, internal failure) and read every poll
// iteration; once set it never clears.
type Signal struct {
	fired atomic.Bool
}

// NewSignal creates an unset signal.
func NewSignal() *Signal {
	return &Signal{}
}

// Set requests a stop. Safe to call from any goroutine, any number of times.
func (s *Signal) Set() {
	s.fired.Store(true)
}

// IsSet reports whether a stop was requested.
func (s *Signal) IsSet() bool {
	return s.fired.Load()
}
