// ABOUTME: Device capability interfaces and backend registry
// ABOUTME: Common surface for PortAudio and oto output backends
package device

import (
	"errors"
	"fmt"

	"github.com/keepaudio/keepaudio-go/internal/audio"
)

// ErrUnavailable reports that no output stream could be opened: every
// allowed encoding attempt failed, or the device selector was invalid.
var ErrUnavailable = errors.New("device unavailable")

// Info describes one enumerable output device.
type Info struct {
	Index             int
	Name              string
	MaxOutputChannels int
	DefaultSampleRate float64
}

// Device is an open output stream.
//
// Submit hands a filled buffer to the device; the token identifies the
// buffer so completions can be matched back to ring slots. A token is
// reported by PollCompleted exactly once per submission, after which the
// caller owns the buffer memory again. Completions are polled, never
// pushed.
type Device interface {
	Submit(token int, data []byte) error
	PollCompleted() ([]int, error)
	// Reset asks the device to flush pending writes ahead of a drain.
	Reset() error
	// Close releases the device. Callers must call it exactly once.
	Close() error
}

// Backend opens output devices for one audio host library.
type Backend interface {
	Name() string
	// Devices enumerates output devices for display and selector
	// validation. The streaming core itself never calls this.
	Devices() ([]Info, error)
	// Open opens an output stream on deviceIndex (or the system default
	// for config.DefaultDevice). queueDepth is the number of buffers the
	// caller will keep in flight.
	Open(deviceIndex int, format audio.Format, framesPerBuffer, queueDepth int) (Device, error)
}

// ForName returns the backend registered under name.
func ForName(name string) (Backend, error) {
	switch name {
	case "oto", "":
		return NewOto(), nil
	case "portaudio":
		return NewPortAudio(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (use oto or portaudio)", name)
	}
}
