//go:build portaudio

// ABOUTME: PortAudio output backend
// ABOUTME: Cross-platform device enumeration and blocking-write playback
package device

import (
	"fmt"

	"github.com/drgolem/go-portaudio/portaudio"

	"github.com/keepaudio/keepaudio-go/internal/audio"
	"github.com/keepaudio/keepaudio-go/internal/config"
)

// PortAudio backend over the drgolem bindings.
type PortAudio struct{}

// NewPortAudio creates the PortAudio backend.
func NewPortAudio() Backend {
	return &PortAudio{}
}

func (p *PortAudio) Name() string { return "portaudio" }

// Devices enumerates devices with output channels.
func (p *PortAudio) Devices() ([]Info, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	all, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	var out []Info
	for _, di := range all {
		if di.MaxOutputChannels <= 0 {
			continue
		}
		out = append(out, Info{
			Index:             di.Index,
			Name:              di.Name,
			MaxOutputChannels: di.MaxOutputChannels,
			DefaultSampleRate: di.DefaultSampleRate,
		})
	}
	return out, nil
}

// Open opens a blocking-I/O output stream. PortAudio keeps its own queue
// sized by the device's high-latency default, so queueDepth is not needed
// here; Pa_WriteStream blocking is what paces the refill loop.
func (p *PortAudio) Open(deviceIndex int, format audio.Format, framesPerBuffer, queueDepth int) (Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	index := deviceIndex
	if index == config.DefaultDevice {
		di, err := portaudio.DefaultOutputDevice()
		if err != nil {
			portaudio.Terminate()
			return nil, fmt.Errorf("no default output device: %w", err)
		}
		index = di.Index
	}

	sampleFormat := portaudio.SampleFmtInt16
	if format.Encoding == audio.Float32 {
		sampleFormat = portaudio.SampleFmtFloat32
	}

	params := portaudio.PaStreamParameters{
		DeviceIndex:  index,
		ChannelCount: format.Channels,
		SampleFormat: sampleFormat,
	}

	stream, err := portaudio.NewStream(params, float64(format.SampleRate))
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("format not supported: %w", err)
	}

	// Blocking I/O: high latency avoids underruns, ClipOff is safe since
	// the sine output never leaves [-1, 1].
	stream.StreamFlags = portaudio.ClipOff
	stream.UseHighLatency = true

	if err := stream.Open(framesPerBuffer); err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}
	if err := stream.StartStream(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start stream: %w", err)
	}

	return &paDevice{stream: stream, frames: framesPerBuffer}, nil
}

type paDevice struct {
	stream    *portaudio.PaStream
	frames    int
	completed []int
	stopped   bool
	closed    bool
}

// Submit writes the buffer to the stream. Pa_WriteStream copies the data
// and blocks until the host accepts it, so the slot is reusable as soon
// as Write returns.
func (d *paDevice) Submit(token int, data []byte) error {
	if err := d.stream.Write(d.frames, data); err != nil {
		return fmt.Errorf("stream write failed: %w", err)
	}
	d.completed = append(d.completed, token)
	return nil
}

func (d *paDevice) PollCompleted() ([]int, error) {
	out := d.completed
	d.completed = nil
	return out, nil
}

// Reset stops the stream, which plays out what the host already holds.
func (d *paDevice) Reset() error {
	if d.stopped {
		return nil
	}
	d.stopped = true
	return d.stream.StopStream()
}

func (d *paDevice) Close() error {
	if d.closed {
		return fmt.Errorf("portaudio device already closed")
	}
	d.closed = true

	if !d.stopped {
		if err := d.stream.StopStream(); err != nil {
			portaudio.Terminate()
			return fmt.Errorf("failed to stop stream: %w", err)
		}
		d.stopped = true
	}
	if err := d.stream.Close(); err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to close stream: %w", err)
	}
	return portaudio.Terminate()
}
