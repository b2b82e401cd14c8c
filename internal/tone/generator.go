// ABOUTME: Phase-continuous sine tone generator
// ABOUTME: Fills playback buffers for both PCM encodings from shared state
package tone

import (
	"encoding/binary"
	"math"

	"github.com/keepaudio/keepaudio-go/internal/audio"
)

// State carries the generator phase across buffer boundaries. The engine
// shares one State across all refills; resetting Phase restarts the tone.
type State struct {
	// Phase is the current oscillator angle in [0, 2π).
	Phase float64
	// Step is the per-frame phase advance: 2π·freq/sampleRate.
	Step float64
}

// NewState creates generator state for the given tone.
func NewState(frequencyHz float64, sampleRateHz int) *State {
	return &State{
		Step: 2 * math.Pi * frequencyHz / float64(sampleRateHz),
	}
}

// Fill writes frames samples into dst, duplicating across channels, and
// advances st. The amplitude is the linear value from DBToAmplitude for
// the same encoding. dst must hold frames*channels samples of enc size.
//
// Fill is deterministic for a given (st, amplitude, frames) and keeps the
// phase continuous between calls; a phase reset between buffers would be
// audible as a click.
func Fill(dst []byte, frames, channels int, enc audio.Encoding, st *State, amplitude float64) {
	switch enc {
	case audio.Float32:
		fillFloat32(dst, frames, channels, st, amplitude)
	default:
		fillInt16(dst, frames, channels, st, amplitude)
	}
}

func fillInt16(dst []byte, frames, channels int, st *State, amplitude float64) {
	pos := 0
	for i := 0; i < frames; i++ {
		s := int16(math.Round(math.Sin(st.Phase) * amplitude))
		st.advance()
		for c := 0; c < channels; c++ {
			binary.LittleEndian.PutUint16(dst[pos:], uint16(s))
			pos += 2
		}
	}
}

func fillFloat32(dst []byte, frames, channels int, st *State, amplitude float64) {
	pos := 0
	for i := 0; i < frames; i++ {
		s := float32(math.Sin(st.Phase) * amplitude)
		st.advance()
		for c := 0; c < channels; c++ {
			binary.LittleEndian.PutUint32(dst[pos:], math.Float32bits(s))
			pos += 4
		}
	}
}

func (s *State) advance() {
	s.Phase += s.Step
	if s.Phase >= 2*math.Pi {
		s.Phase -= 2 * math.Pi
	}
}
