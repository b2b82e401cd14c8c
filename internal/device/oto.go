// ABOUTME: oto-based output backend
// ABOUTME: Bridges the push-model Device interface to oto's pull model
package device

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
	"github.com/smallnest/ringbuffer"

	"github.com/keepaudio/keepaudio-go/internal/audio"
	"github.com/keepaudio/keepaudio-go/internal/config"
)

// otoPlayer is the slice of *oto.Player this backend uses.
type otoPlayer interface {
	Play()
	Pause()
	Close() error
}

// otoContext is the slice of *oto.Context this backend uses. Player creation
// goes through it so tests can stand in for the real context, which needs a
// live audio host.
type otoContext interface {
	NewPlayer(src io.Reader) otoPlayer
	Suspend() error
	Resume() error
}

type realOtoContext struct {
	ctx *oto.Context
}

func (r realOtoContext) NewPlayer(src io.Reader) otoPlayer { return r.ctx.NewPlayer(src) }
func (r realOtoContext) Suspend() error                    { return r.ctx.Suspend() }
func (r realOtoContext) Resume() error                     { return r.ctx.Resume() }

var newOtoContext = func(opts *oto.NewContextOptions) (otoContext, error) {
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, err
	}
	<-ready
	return realOtoContext{ctx: ctx}, nil
}

// oto allows one context per process. The first successful Open creates it;
// a failed creation is retried on the next Open. Closing a device suspends
// the context, so reopening resumes it.
var (
	otoMu     sync.Mutex
	otoCtx    otoContext
	otoFormat audio.Format
)

// Oto is the pure-Go default backend. oto pulls samples from an io.Reader,
// so submitted buffers are staged in a byte ring the player reads from;
// a buffer is complete once the ring has accepted its bytes.
type Oto struct{}

// NewOto creates the oto backend.
func NewOto() Backend {
	return &Oto{}
}

func (o *Oto) Name() string { return "oto" }

// Devices returns the single default output; oto has no enumeration.
func (o *Oto) Devices() ([]Info, error) {
	return []Info{{Index: 0, Name: "system default output", MaxOutputChannels: 2}}, nil
}

// Open initializes or resumes the shared oto context and starts a player
// over the ring. The context keeps the format of the first successful Open;
// a later Open with a different format logs a warning and continues with
// the existing one, since oto cannot be reinitialized in-process.
func (o *Oto) Open(deviceIndex int, format audio.Format, framesPerBuffer, queueDepth int) (Device, error) {
	if deviceIndex != config.DefaultDevice && deviceIndex != 0 {
		return nil, fmt.Errorf("oto backend cannot select device %d, only the default output", deviceIndex)
	}

	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx == nil {
		otoFmt := oto.FormatSignedInt16LE
		if format.Encoding == audio.Float32 {
			otoFmt = oto.FormatFloat32LE
		}
		ctx, err := newOtoContext(&oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       otoFmt,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create oto context: %w", err)
		}
		otoCtx = ctx
		otoFormat = format
	} else {
		if format != otoFormat {
			logrus.WithFields(logrus.Fields{
				"have": otoFormat,
				"want": format,
			}).Warn("oto context already initialized with a different format, continuing with the existing one")
		}
		// A previous Close suspended the shared context; without the resume
		// the new player never drains the ring and the first refill would
		// block forever.
		if err := otoCtx.Resume(); err != nil {
			return nil, fmt.Errorf("failed to resume oto context: %w", err)
		}
	}

	// Sized for the caller's whole buffer pool so priming never blocks.
	ring := ringbuffer.New(queueDepth * framesPerBuffer * format.BytesPerFrame()).SetBlocking(true)

	d := &otoDevice{ring: ring}
	d.player = otoCtx.NewPlayer(ring)
	d.player.Play()

	return d, nil
}

type otoDevice struct {
	ring      *ringbuffer.RingBuffer
	player    otoPlayer
	completed []int
	closed    bool
}

// Submit copies data into the ring; the ring write blocks until the player
// has made room, which is what paces the refill loop on this backend.
func (d *otoDevice) Submit(token int, data []byte) error {
	if _, err := d.ring.Write(data); err != nil {
		return fmt.Errorf("ring write failed: %w", err)
	}
	d.completed = append(d.completed, token)
	return nil
}

func (d *otoDevice) PollCompleted() ([]int, error) {
	out := d.completed
	d.completed = nil
	return out, nil
}

// Reset discards staged bytes so a drain does not wait on unplayed audio.
func (d *otoDevice) Reset() error {
	d.player.Pause()
	d.ring.Reset()
	return nil
}

func (d *otoDevice) Close() error {
	if d.closed {
		return fmt.Errorf("oto device already closed")
	}
	d.closed = true

	d.ring.CloseWriter()
	if err := d.player.Close(); err != nil {
		return fmt.Errorf("failed to close oto player: %w", err)
	}
	// The context is process-wide and cannot be torn down; suspend it so
	// the host stops pulling until the next Open.
	otoMu.Lock()
	defer otoMu.Unlock()
	return otoCtx.Suspend()
}
