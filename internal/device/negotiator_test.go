// ABOUTME: Tests for device and format negotiation
// ABOUTME: Uses a fake backend to exercise fallback and selector validation
package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepaudio/keepaudio-go/internal/audio"
	"github.com/keepaudio/keepaudio-go/internal/config"
)

// fakeBackend accepts opens only for the encodings in supported.
type fakeBackend struct {
	supported map[audio.Encoding]bool
	devices   []Info
	opened    []audio.Encoding
	enumErr   error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Devices() ([]Info, error) {
	return f.devices, f.enumErr
}

func (f *fakeBackend) Open(deviceIndex int, format audio.Format, framesPerBuffer, queueDepth int) (Device, error) {
	f.opened = append(f.opened, format.Encoding)
	if !f.supported[format.Encoding] {
		return nil, errors.New("format not supported")
	}
	return &fakeDevice{}, nil
}

type fakeDevice struct{}

func (d *fakeDevice) Submit(token int, data []byte) error { return nil }
func (d *fakeDevice) PollCompleted() ([]int, error)       { return nil, nil }
func (d *fakeDevice) Reset() error                        { return nil }
func (d *fakeDevice) Close() error                        { return nil }

func quietConfig(pref audio.Preference, levelDB float64) config.Stream {
	cfg := config.Default()
	cfg.Encoding = pref
	cfg.LevelDB = levelDB
	return cfg
}

func TestAutoPrefersFloat32ForQuietTones(t *testing.T) {
	backend := &fakeBackend{supported: map[audio.Encoding]bool{audio.Float32: true, audio.Int16: true}}
	neg := NewNegotiator(backend)

	dev, enc, err := neg.Open(quietConfig(audio.PreferAuto, -100), 1024)
	require.NoError(t, err)
	require.NotNil(t, dev)
	assert.Equal(t, audio.Float32, enc)
	assert.Equal(t, []audio.Encoding{audio.Float32}, backend.opened)
}

func TestAutoPrefersInt16ForLouderTones(t *testing.T) {
	backend := &fakeBackend{supported: map[audio.Encoding]bool{audio.Float32: true, audio.Int16: true}}
	neg := NewNegotiator(backend)

	_, enc, err := neg.Open(quietConfig(audio.PreferAuto, -60), 1024)
	require.NoError(t, err)
	assert.Equal(t, audio.Int16, enc)
}

func TestAutoFallsBackToInt16(t *testing.T) {
	// Float32 open fails, Int16 succeeds; auto at -100 dB prefers float
	// but must report the effective encoding, not an error.
	backend := &fakeBackend{supported: map[audio.Encoding]bool{audio.Int16: true}}
	neg := NewNegotiator(backend)

	dev, enc, err := neg.Open(quietConfig(audio.PreferAuto, -100), 1024)
	require.NoError(t, err)
	require.NotNil(t, dev)
	assert.Equal(t, audio.Int16, enc)
	assert.Equal(t, []audio.Encoding{audio.Float32, audio.Int16}, backend.opened)
}

func TestExplicitPreferenceDoesNotFallBack(t *testing.T) {
	backend := &fakeBackend{supported: map[audio.Encoding]bool{audio.Float32: true}}
	neg := NewNegotiator(backend)

	_, _, err := neg.Open(quietConfig(audio.PreferInt16, -100), 1024)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, []audio.Encoding{audio.Int16}, backend.opened)
}

func TestBothAttemptsFail(t *testing.T) {
	backend := &fakeBackend{supported: map[audio.Encoding]bool{}}
	neg := NewNegotiator(backend)

	_, _, err := neg.Open(quietConfig(audio.PreferAuto, -100), 1024)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Len(t, backend.opened, 2)
}

func TestSelectorOutOfRange(t *testing.T) {
	backend := &fakeBackend{
		supported: map[audio.Encoding]bool{audio.Int16: true},
		devices:   []Info{{Index: 0, Name: "Speakers"}},
	}
	neg := NewNegotiator(backend)

	cfg := quietConfig(audio.PreferAuto, -100)
	cfg.Device = 5
	_, _, err := neg.Open(cfg, 1024)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, backend.opened, "must not substitute the default device")
}

func TestSelectorValidIndex(t *testing.T) {
	backend := &fakeBackend{
		supported: map[audio.Encoding]bool{audio.Int16: true},
		devices:   []Info{{Index: 0, Name: "Speakers"}, {Index: 2, Name: "USB DAC"}},
	}
	neg := NewNegotiator(backend)

	cfg := quietConfig(audio.PreferInt16, -60)
	cfg.Device = 2
	_, enc, err := neg.Open(cfg, 1024)
	require.NoError(t, err)
	assert.Equal(t, audio.Int16, enc)
}

func TestEnumerationFailure(t *testing.T) {
	backend := &fakeBackend{enumErr: errors.New("host api down")}
	neg := NewNegotiator(backend)

	cfg := quietConfig(audio.PreferAuto, -100)
	cfg.Device = 0
	_, _, err := neg.Open(cfg, 1024)
	assert.ErrorIs(t, err, ErrUnavailable)
}
