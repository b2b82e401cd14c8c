// ABOUTME: Device and format negotiation
// ABOUTME: Picks an encoding from the preference and retries once on failure
package device

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/keepaudio/keepaudio-go/internal/audio"
	"github.com/keepaudio/keepaudio-go/internal/config"
)

// Float below this level benefits from float precision; auto preference
// picks Float32 first for such quiet tones.
const autoFloatThresholdDB = -96

// Negotiator opens an output device with a preferred sample encoding,
// falling back to the alternate encoding once when the preference allows.
type Negotiator struct {
	backend Backend
}

// NewNegotiator creates a negotiator over the given backend.
func NewNegotiator(backend Backend) *Negotiator {
	return &Negotiator{backend: backend}
}

// Open opens deviceIndex with the encoding derived from pref and levelDB
// and returns the open device together with the effective encoding.
//
// An explicit preference is attempted exactly once: the user's choice is
// never silently overridden. PreferAuto allows one fallback attempt with
// the other encoding. An out-of-range device index fails rather than
// substituting the default output.
func (n *Negotiator) Open(cfg config.Stream, framesPerBuffer int) (Device, audio.Encoding, error) {
	if err := n.validateSelector(cfg.Device); err != nil {
		return nil, 0, err
	}

	attempts := encodingAttempts(cfg.Encoding, cfg.LevelDB)

	var lastErr error
	for _, enc := range attempts {
		format := audio.Format{
			SampleRate: cfg.SampleRateHz,
			Channels:   cfg.Channels,
			Encoding:   enc,
		}
		dev, err := n.backend.Open(cfg.Device, format, framesPerBuffer, cfg.BufferCount)
		if err == nil {
			logrus.WithFields(logrus.Fields{
				"backend":  n.backend.Name(),
				"device":   cfg.Device,
				"encoding": enc.String(),
			}).Info("Output device opened")
			return dev, enc, nil
		}
		logrus.WithFields(logrus.Fields{
			"backend":  n.backend.Name(),
			"device":   cfg.Device,
			"encoding": enc.String(),
			"error":    err.Error(),
		}).Warn("Device open attempt failed")
		lastErr = err
	}

	return nil, 0, fmt.Errorf("%w: all encoding attempts failed, last error: %v", ErrUnavailable, lastErr)
}

// validateSelector checks an explicit index against the enumeration.
func (n *Negotiator) validateSelector(index int) error {
	if index == config.DefaultDevice {
		return nil
	}

	devices, err := n.backend.Devices()
	if err != nil {
		return fmt.Errorf("%w: enumeration failed: %v", ErrUnavailable, err)
	}
	for _, d := range devices {
		if d.Index == index {
			return nil
		}
	}
	return fmt.Errorf("%w: device index %d out of range (%d outputs)", ErrUnavailable, index, len(devices))
}

// encodingAttempts orders the encodings to try for a preference.
func encodingAttempts(pref audio.Preference, levelDB float64) []audio.Encoding {
	switch pref {
	case audio.PreferInt16:
		return []audio.Encoding{audio.Int16}
	case audio.PreferFloat32:
		return []audio.Encoding{audio.Float32}
	default:
		if levelDB <= autoFloatThresholdDB {
			return []audio.Encoding{audio.Float32, audio.Int16}
		}
		return []audio.Encoding{audio.Int16, audio.Float32}
	}
}
