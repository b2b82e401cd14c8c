// ABOUTME: Stream engine state machine
// ABOUTME: Orchestrates negotiation, buffer ring and the poll-refill loop
package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/keepaudio/keepaudio-go/internal/audio"
	"github.com/keepaudio/keepaudio-go/internal/config"
	"github.com/keepaudio/keepaudio-go/internal/device"
	"github.com/keepaudio/keepaudio-go/internal/tone"
)

var (
	// ErrStartupFailed reports that the engine never reached Streaming.
	ErrStartupFailed = errors.New("startup failed")
	// ErrStreamInterrupted reports a mid-stream device failure; the engine
	// drains and closes instead of retrying a dead device.
	ErrStreamInterrupted = errors.New("stream interrupted")
)

// RunState is the forward-only lifecycle of one engine instance.
type RunState int32

const (
	StateIdle RunState = iota
	StatePriming
	StateStreaming
	StateDraining
	StateClosed
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePriming:
		return "priming"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Engine keeps one output device electrically active by streaming a
// synthesized tone through a fixed buffer pool. An instance runs once:
// Start moves it Idle→Priming→Streaming, RequestStop (or an internal
// failure) drives it through Draining to Closed, and a closed engine
// cannot be restarted.
type Engine struct {
	cfg     config.Stream
	backend device.Backend
	stop    *Signal
	state   atomic.Int32
	log     *logrus.Entry

	dev       device.Device
	ring      *Ring
	encoding  audio.Encoding
	toneState *tone.State
	amplitude float64

	done   chan struct{}
	runErr error
}

// New creates an idle engine. The configuration is clamped here so the
// core below only ever sees in-range values.
func New(cfg config.Stream, backend device.Backend) *Engine {
	return &Engine{
		cfg:     cfg.Clamp(),
		backend: backend,
		stop:    NewSignal(),
		done:    make(chan struct{}),
		log: logrus.WithFields(logrus.Fields{
			"run":     uuid.NewString(),
			"backend": backend.Name(),
		}),
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() RunState {
	return RunState(e.state.Load())
}

// Encoding returns the negotiated sample encoding; valid after Start.
func (e *Engine) Encoding() audio.Encoding {
	return e.encoding
}

// Config returns the clamped configuration the engine runs with.
func (e *Engine) Config() config.Stream {
	return e.cfg
}

// RequestStop asks the engine to drain and close. It is the single entry
// point for interrupts, session logoff and test harnesses, and is safe
// from any goroutine.
func (e *Engine) RequestStop() {
	e.stop.Set()
}

// Start negotiates the device, allocates and primes the ring, and launches
// the poll-refill loop in its own goroutine. On any failure it releases
// what was acquired, moves to Closed and reports ErrStartupFailed.
func (e *Engine) Start() error {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StatePriming)) {
		return fmt.Errorf("%w: engine already started (state %s)", ErrStartupFailed, e.State())
	}

	dev, enc, err := device.NewNegotiator(e.backend).Open(e.cfg, e.cfg.FramesPerBuffer)
	if err != nil {
		return e.failStartup(err)
	}
	e.dev = dev
	e.encoding = enc
	e.amplitude = tone.DBToAmplitude(e.cfg.LevelDB, enc)
	e.toneState = tone.NewState(e.cfg.FrequencyHz, e.cfg.SampleRateHz)

	format := audio.Format{SampleRate: e.cfg.SampleRateHz, Channels: e.cfg.Channels, Encoding: enc}
	ring, err := NewRing(dev, e.cfg.BufferCount, e.cfg.FramesPerBuffer*format.BytesPerFrame())
	if err != nil {
		e.closeDevice()
		return e.failStartup(err)
	}
	e.ring = ring

	if err := ring.Prime(e.fill); err != nil {
		ring.Release()
		e.closeDevice()
		return e.failStartup(err)
	}

	e.state.Store(int32(StateStreaming))
	e.log.WithFields(logrus.Fields{
		"encoding": enc.String(),
		"buffers":  e.cfg.BufferCount,
		"frames":   e.cfg.FramesPerBuffer,
	}).Info("Streaming started")

	go e.run()
	return nil
}

// failStartup releases nothing itself; callers clean up what they acquired
// before reporting. It moves the engine to Closed and unblocks Wait.
func (e *Engine) failStartup(err error) error {
	e.runErr = fmt.Errorf("%w: %w", ErrStartupFailed, err)
	e.state.Store(int32(StateClosed))
	close(e.done)
	return e.runErr
}

// Wait blocks until the engine reaches Closed and returns the run error,
// nil for a clean requested stop.
func (e *Engine) Wait() error {
	<-e.done
	return e.runErr
}

// fill writes one buffer of tone, advancing the shared phase state.
func (e *Engine) fill(buf []byte) {
	tone.Fill(buf, e.cfg.FramesPerBuffer, e.cfg.Channels, e.encoding, e.toneState, e.amplitude)
}

// run is the poll-refill-requeue loop. It re-checks the stop signal every
// iteration; the interval must stay short enough that the device queue
// never empties, since an empty queue is exactly the power-gating
// condition being prevented.
func (e *Engine) run() {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for !e.stop.IsSet() {
		<-ticker.C

		tokens, err := e.ring.PollCompleted()
		if err != nil {
			e.failStream("poll", err)
			break
		}
		for _, i := range tokens {
			if err := e.ring.RefillAndResubmit(i, e.fill); err != nil {
				e.failStream("resubmit", err)
				break
			}
		}
	}

	e.shutdown()
}

// failStream records a mid-stream device failure and turns it into an
// internal stop request; retrying a dead device would spin the poll loop.
func (e *Engine) failStream(op string, err error) {
	e.log.WithFields(logrus.Fields{
		"op":    op,
		"error": err.Error(),
	}).Error("Stream interrupted")
	if e.runErr == nil {
		e.runErr = fmt.Errorf("%w: %s: %v", ErrStreamInterrupted, op, err)
	}
	e.stop.Set()
}

// shutdown drains in-flight buffers, then releases the ring and the
// device handle exactly once. Closed is terminal.
func (e *Engine) shutdown() {
	e.state.Store(int32(StateDraining))

	if err := e.dev.Reset(); err != nil {
		e.log.WithField("error", err.Error()).Warn("Device reset failed")
	}
	if ok := e.ring.Drain(e.cfg.DrainTimeout, e.cfg.PollInterval); !ok {
		e.log.Warn("Drain timed out, releasing buffers anyway")
	}
	e.ring.Release()
	e.closeDevice()

	e.state.Store(int32(StateClosed))
	e.log.Info("Engine closed")
	close(e.done)
}

func (e *Engine) closeDevice() {
	if e.dev == nil {
		return
	}
	if err := e.dev.Close(); err != nil {
		e.log.WithField("error", err.Error()).Warn("Device close failed")
	}
	e.dev = nil
}
