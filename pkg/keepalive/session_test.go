// ABOUTME: Tests for the public session API
// ABOUTME: Verifies config translation and input validation
package keepalive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepaudio/keepaudio-go/internal/audio"
	"github.com/keepaudio/keepaudio-go/internal/config"
)

func TestToInternalDefaults(t *testing.T) {
	stream, backend, err := toInternal(Config{})
	require.NoError(t, err)

	assert.Equal(t, config.Default(), stream)
	assert.Equal(t, "oto", backend.Name())
}

func TestToInternalOverrides(t *testing.T) {
	idx := 0
	stream, backend, err := toInternal(Config{
		FrequencyHz:     25,
		LevelDB:         -70,
		SampleRateHz:    44100,
		Channels:        2,
		FramesPerBuffer: 512,
		BufferCount:     4,
		DeviceIndex:     &idx,
		Encoding:        "float32",
		Backend:         "portaudio",
		PollInterval:    2 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, 25.0, stream.FrequencyHz)
	assert.Equal(t, -70.0, stream.LevelDB)
	assert.Equal(t, 44100, stream.SampleRateHz)
	assert.Equal(t, 2, stream.Channels)
	assert.Equal(t, 512, stream.FramesPerBuffer)
	assert.Equal(t, 4, stream.BufferCount)
	assert.Equal(t, 0, stream.Device)
	assert.Equal(t, audio.PreferFloat32, stream.Encoding)
	assert.Equal(t, 2*time.Millisecond, stream.PollInterval)
	assert.Equal(t, "portaudio", backend.Name())
}

func TestToInternalRejectsUnknownEncoding(t *testing.T) {
	_, _, err := toInternal(Config{Encoding: "pcm24"})
	assert.Error(t, err)
}

func TestToInternalRejectsUnknownBackend(t *testing.T) {
	_, _, err := toInternal(Config{Backend: "jack"})
	assert.Error(t, err)
}

func TestListDevicesRejectsUnknownBackend(t *testing.T) {
	_, err := ListDevices("jack")
	assert.Error(t, err)
}

func TestListDevicesOto(t *testing.T) {
	// The oto backend enumerates a single default output without
	// touching the audio host.
	devices, err := ListDevices("oto")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, 0, devices[0].Index)
}
